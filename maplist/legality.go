package maplist

import "github.com/splatseries/bracket-system/models"

// Legal computes, for each entry of the candidate pool, whether it may
// be selected given the stages already banned or played and the modes
// blocked for the picking team.
//
// A mode restriction only applies when the pool spans more than one
// mode, and never when every mode in the pool is blocked. If stage and
// mode rules together would eliminate every candidate, every candidate
// is treated as legal instead: selection must never deadlock.
func Legal(pool []models.ModeStage, unavailableStages map[int]bool, blockedModes map[models.Mode]bool) []bool {
	out := make([]bool, len(pool))

	modes := ModesOf(pool)
	applyModes := len(modes) > 1 && !allModesBlocked(modes, blockedModes)

	anyLegal := false
	for i, m := range pool {
		legal := !unavailableStages[m.StageID]
		if legal && applyModes && blockedModes[m.Mode] {
			legal = false
		}
		out[i] = legal
		anyLegal = anyLegal || legal
	}

	if !anyLegal {
		for i := range out {
			out[i] = true
		}
	}
	return out
}

// IsLegal answers the question for one candidate against the pool.
func IsLegal(candidate models.ModeStage, pool []models.ModeStage, unavailableStages map[int]bool, blockedModes map[models.Mode]bool) bool {
	legal := Legal(pool, unavailableStages, blockedModes)
	for i, m := range pool {
		if m == candidate {
			return legal[i]
		}
	}
	return false
}

func allModesBlocked(modes []models.Mode, blocked map[models.Mode]bool) bool {
	if len(blocked) == 0 {
		return false
	}
	for _, m := range modes {
		if !blocked[m] {
			return false
		}
	}
	return true
}
