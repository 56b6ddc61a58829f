package services

import "errors"

// Sentinel errors shared across services and the HTTP error mapping.
var (
	// Resource lookups
	ErrMatchNotFound      = errors.New("match not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrResultNotFound     = errors.New("game result not found")

	// Validation and business rules
	ErrUnauthorized        = errors.New("user may not perform this action")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidWinner       = errors.New("winner team id is invalid")
	ErrInvalidRoster       = errors.New("active roster is missing or has the wrong size")
	ErrPointsRule          = errors.New("points violate the winner-has-more rule")
	ErrMatchLocked         = errors.New("match is locked for casting")
	ErrMatchNotLockable    = errors.New("match can only be locked while both opponent slots are empty")
	ErrTournamentFinalized = errors.New("tournament is finalized")
	ErrMatchOver           = errors.New("match is already over")
	ErrOpponentsMissing    = errors.New("both opponents must be assigned")
	ErrNotYourTurn         = errors.New("it is not this team's turn to pick or ban")
	ErrIllegalMap          = errors.New("map is not a legal selection")
	ErrScoresTied          = errors.New("cannot reopen a match with tied scores")
	ErrUnknownAction       = errors.New("unknown action type")
	ErrUnknownCastAccount  = errors.New("twitch account is not a cast account of this tournament")

	// Conflict: a downstream match already depends on this one.
	ErrBracketProgressed = errors.New("bracket has already progressed past this match")

	// Broken precondition elsewhere in the system. Never shown to the
	// user as-is, always surfaced as a server error.
	ErrInvariant = errors.New("invariant violation")
)
