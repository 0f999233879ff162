package counting

import (
	"strconv"
	"strings"
)

// State mirrors one guild's counting_states row.
type State struct {
	Count      int
	LastUserID string
	MaxCount   int
}

type Outcome int

const (
	// OutcomeNotNumber rejects a message that does not parse as an integer;
	// state is unchanged.
	OutcomeNotNumber Outcome = iota
	// OutcomeSameUser rejects a consecutive turn by the same user; state is
	// unchanged.
	OutcomeSameUser
	// OutcomeReset means the wrong number was posted; state returns to zero.
	OutcomeReset
	// OutcomeAccept advances the count.
	OutcomeAccept
	// OutcomeVictory is an accept that reached max_count; state returns to
	// zero for the next round.
	OutcomeVictory
)

type Result struct {
	Outcome Outcome
	State   State
	// Number is the value the message carried, when it parsed.
	Number int
	// Expected is the value that would have been accepted.
	Expected int
}

// Advance applies one message to the game. It is pure: callers persist
// Result.State and act on Result.Outcome.
func Advance(state State, userID, content string) Result {
	expected := state.Count + 1

	n, err := strconv.Atoi(strings.TrimSpace(content))
	if err != nil {
		return Result{Outcome: OutcomeNotNumber, State: state, Expected: expected}
	}

	if state.LastUserID != "" && userID == state.LastUserID {
		return Result{Outcome: OutcomeSameUser, State: state, Number: n, Expected: expected}
	}

	if n != expected {
		reset := State{Count: 0, LastUserID: "", MaxCount: state.MaxCount}
		return Result{Outcome: OutcomeReset, State: reset, Number: n, Expected: expected}
	}

	if n >= state.MaxCount {
		reset := State{Count: 0, LastUserID: "", MaxCount: state.MaxCount}
		return Result{Outcome: OutcomeVictory, State: reset, Number: n, Expected: expected}
	}

	next := State{Count: n, LastUserID: userID, MaxCount: state.MaxCount}
	return Result{Outcome: OutcomeAccept, State: next, Number: n, Expected: expected}
}

const (
	MinMaxCount = 1
	MaxMaxCount = 1000
)

// ValidMaxCount bounds the admin-configurable round target.
func ValidMaxCount(value int) bool {
	return value >= MinMaxCount && value <= MaxMaxCount
}
