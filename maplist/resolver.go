package maplist

import (
	"math/rand"
	"strconv"

	"github.com/splatseries/bracket-system/models"
)

// DefaultPool is used when neither team submitted a map pool.
var DefaultPool = []models.ModeStage{
	{Mode: models.ModeSplatZones, StageID: 1},
	{Mode: models.ModeSplatZones, StageID: 6},
	{Mode: models.ModeTowerCtrl, StageID: 2},
	{Mode: models.ModeTowerCtrl, StageID: 9},
	{Mode: models.ModeRainmaker, StageID: 3},
	{Mode: models.ModeRainmaker, StageID: 10},
	{Mode: models.ModeClamBlitz, StageID: 4},
	{Mode: models.ModeClamBlitz, StageID: 11},
}

// ResolveInput carries everything the resolver needs; it performs no
// I/O itself.
type ResolveInput struct {
	Config       *models.RoundMapConfig
	PickingStyle models.MapPickingStyle
	MatchID      int
	Teams        [2]int
	TeamPools    [2][]models.ModeStage
	Tiebreaker   []models.ModeStage
	PickBans     []models.PickBanEvent
}

// Resolve builds the ordered positional map list for a match. Position
// i is the map of game i+1; entries removed by bans keep their slot
// and carry BannedByTeamID instead.
func Resolve(in ResolveInput) ([]ListedMap, error) {
	if in.Config == nil {
		return nil, nil
	}

	base, err := baseList(in)
	if err != nil {
		return nil, err
	}
	if base == nil {
		return nil, nil
	}

	if in.Config.PickBan == models.PickBanBan2 {
		annotateBans(base, in.Teams, in.PickBans)
	}

	if in.Config.PickBan == models.PickBanCounterpick {
		for _, ev := range in.PickBans {
			if ev.Type != models.PickBanEventPick {
				continue
			}
			base = append(base, ListedMap{
				ModeStage: models.ModeStage{Mode: ev.Mode, StageID: ev.StageID},
				Source:    models.SourceCounterpick,
			})
		}
	}

	return base, nil
}

func baseList(in ResolveInput) ([]ListedMap, error) {
	cfg := in.Config

	if in.PickingStyle == models.PickingStyleTO {
		out := make([]ListedMap, 0, len(cfg.List))
		for _, m := range cfg.List {
			out = append(out, ListedMap{ModeStage: m, Source: models.SourceOrganizer})
		}
		return out, nil
	}

	// Team-pool based generation. BAN_2 needs two extra maps so the
	// list still covers a full set after both bans; counterpick seeds
	// a single starter map and grows via pick events.
	n := cfg.Count
	switch cfg.PickBan {
	case models.PickBanBan2:
		n = cfg.Count + 2
	case models.PickBanCounterpick:
		n = 1
	}

	return generate(in, n)
}

// generate deterministically interleaves the two team pools (shared
// maps count for both) into n entries without stage repeats, closing
// with a tiebreaker map when one is configured.
func generate(in ResolveInput, n int) ([]ListedMap, error) {
	type candidate struct {
		models.ModeStage
		source string
	}

	bySource := make(map[models.ModeStage]string)
	for side, pool := range in.TeamPools {
		for _, m := range pool {
			if _, ok := bySource[m]; ok {
				bySource[m] = models.SourceBoth
			} else {
				bySource[m] = strconv.Itoa(in.Teams[side])
			}
		}
	}
	if len(bySource) == 0 {
		for _, m := range DefaultPool {
			bySource[m] = models.SourceDefault
		}
	}

	candidates := make([]candidate, 0, len(bySource))
	for m, src := range bySource {
		candidates = append(candidates, candidate{ModeStage: m, source: src})
	}

	r := seededRand(in.MatchID, in.Teams[0], in.Teams[1], n)
	candidates = shuffled(r, candidates)

	usedStages := make(map[int]bool)
	out := make([]ListedMap, 0, n)

	tiebreakerSlot := -1
	if len(in.Tiebreaker) > 0 && n > 1 {
		tiebreakerSlot = n - 1
	}

	prevSource := ""
	for len(out) < n {
		if len(out) == tiebreakerSlot {
			tb, ok := pickTiebreaker(r, in.Tiebreaker, usedStages)
			if !ok {
				return nil, ErrListExhausted
			}
			out = append(out, tb)
			break
		}

		idx := -1
		for i, c := range candidates {
			if usedStages[c.StageID] {
				continue
			}
			idx = i
			// Prefer handing the next slot to the other team.
			if c.source != prevSource || c.source == models.SourceBoth || c.source == models.SourceDefault {
				break
			}
		}
		if idx == -1 {
			return nil, ErrListExhausted
		}

		c := candidates[idx]
		usedStages[c.StageID] = true
		prevSource = c.source
		out = append(out, ListedMap{ModeStage: c.ModeStage, Source: c.source})
	}

	return out, nil
}

func pickTiebreaker(r *rand.Rand, tiebreaker []models.ModeStage, usedStages map[int]bool) (ListedMap, bool) {
	for _, m := range shuffled(r, tiebreaker) {
		if !usedStages[m.StageID] {
			return ListedMap{ModeStage: m, Source: models.SourceTiebreaker}, true
		}
	}
	return ListedMap{}, false
}

// annotateBans marks banned entries: the first recorded ban belongs to
// the second picker (teams[1], who bans first), the second to teams[0].
func annotateBans(list []ListedMap, teams [2]int, events []models.PickBanEvent) {
	banIdx := 0
	for _, ev := range events {
		if ev.Type != models.PickBanEventBan {
			continue
		}
		owner := 0
		switch banIdx {
		case 0:
			owner = teams[1]
		case 1:
			owner = teams[0]
		default:
			// More than two bans under BAN_2 is a broken precondition
			// upstream; leave the extras unattributed.
			banIdx++
			continue
		}
		banIdx++

		for i := range list {
			if list[i].Mode == ev.Mode && list[i].StageID == ev.StageID {
				o := owner
				list[i].BannedByTeamID = &o
				break
			}
		}
	}
}
