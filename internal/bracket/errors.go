package bracket

import "github.com/cockroachdb/errors"

// Categories. Every specific error below is marked with one of them so callers
// can branch on the category with errors.Is, from this package or the
// standard library.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("operation not allowed for the current user")
)

var (
	ErrNotEnoughPlayers      = MarkCategory(errors.New("at least 2 players are required"), ErrValidation)
	ErrNotEnoughGroupPlayers = MarkCategory(errors.New("at least 4 players are required for a group stage"), ErrValidation)
	ErrDuplicatePlayer       = MarkCategory(errors.New("player is already in the tournament"), ErrValidation)
	ErrReservedName          = MarkCategory(errors.Newf("%q is reserved for empty bracket slots", TBDName), ErrValidation)
	ErrRosterLocked          = MarkCategory(errors.New("roster can only change before the bracket is generated"), ErrValidation)
	ErrInvalidFormat         = MarkCategory(errors.New("unknown tournament format"), ErrValidation)
	ErrInvalidTransition     = MarkCategory(errors.New("invalid tournament status transition"), ErrValidation)
	ErrGroupStageIncomplete  = MarkCategory(errors.New("every group match must be decided first"), ErrValidation)
	ErrGroupStageLocked      = MarkCategory(errors.New("group results are fixed once the knockout stage exists"), ErrValidation)
	ErrKnockoutExists        = MarkCategory(errors.New("knockout stage already generated"), ErrValidation)
	ErrNoGroupStage          = MarkCategory(errors.New("tournament has no group stage"), ErrValidation)
	ErrFinalUndecided        = MarkCategory(errors.New("the final has no winner yet"), ErrValidation)
	ErrMatchNotReady         = MarkCategory(errors.New("both players must be known before scoring"), ErrValidation)
	ErrKnockoutTie           = MarkCategory(errors.New("knockout matches cannot end in a tie"), ErrValidation)
	ErrNegativeScore         = MarkCategory(errors.New("scores must be non-negative"), ErrValidation)
	ErrTournamentCompleted   = MarkCategory(errors.New("tournament is already completed"), ErrValidation)
	ErrBrokenLink            = MarkCategory(errors.New("match links do not form a valid bracket"), ErrValidation)

	ErrMatchNotFound      = MarkCategory(errors.New("match not found"), ErrNotFound)
	ErrPlayerNotFound     = MarkCategory(errors.New("player not found"), ErrNotFound)
	ErrTournamentNotFound = MarkCategory(errors.New("tournament not found"), ErrNotFound)
)

// categorized carries a cockroach mark for errors.Is of this module and an Is
// method for the standard library, which does not see marks.
type categorized struct {
	cause    error
	category error
}

// MarkCategory tags err with category. The message is err's.
func MarkCategory(err, category error) error {
	if err == nil {
		return nil
	}
	return &categorized{cause: errors.Mark(err, category), category: category}
}

func (e *categorized) Error() string { return e.cause.Error() }

func (e *categorized) Unwrap() error { return e.cause }

func (e *categorized) Is(target error) bool {
	return target == e.category || errors.Is(e.category, target)
}
