package counting

import "testing"

func TestAcceptNextNumber(t *testing.T) {
	state := State{Count: 5, LastUserID: "A", MaxCount: 100}
	result := Advance(state, "B", "6")
	if result.Outcome != OutcomeAccept {
		t.Fatalf("expected accept, got %v", result.Outcome)
	}
	if result.State.Count != 6 || result.State.LastUserID != "B" {
		t.Fatalf("expected state (6, B), got (%d, %q)", result.State.Count, result.State.LastUserID)
	}
}

func TestRejectSameUserTwice(t *testing.T) {
	state := State{Count: 5, LastUserID: "A", MaxCount: 100}
	result := Advance(state, "A", "6")
	if result.Outcome != OutcomeSameUser {
		t.Fatalf("expected same-user rejection, got %v", result.Outcome)
	}
	if result.State != state {
		t.Fatalf("state must be unchanged on rejection, got %+v", result.State)
	}
}

func TestWrongNumberResets(t *testing.T) {
	state := State{Count: 5, LastUserID: "A", MaxCount: 100}
	result := Advance(state, "B", "7")
	if result.Outcome != OutcomeReset {
		t.Fatalf("expected reset, got %v", result.Outcome)
	}
	if result.State.Count != 0 || result.State.LastUserID != "" {
		t.Fatalf("expected state (0, none), got (%d, %q)", result.State.Count, result.State.LastUserID)
	}
	if result.Expected != 6 {
		t.Fatalf("expected announcement value 6, got %d", result.Expected)
	}
}

func TestNonIntegerRejected(t *testing.T) {
	state := State{Count: 5, LastUserID: "A", MaxCount: 100}
	result := Advance(state, "B", "six")
	if result.Outcome != OutcomeNotNumber {
		t.Fatalf("expected not-a-number rejection, got %v", result.Outcome)
	}
	if result.State != state {
		t.Fatalf("state must be unchanged, got %+v", result.State)
	}
}

func TestVictoryResetsForNewRound(t *testing.T) {
	state := State{Count: 9, LastUserID: "A", MaxCount: 10}
	result := Advance(state, "B", "10")
	if result.Outcome != OutcomeVictory {
		t.Fatalf("expected victory, got %v", result.Outcome)
	}
	if result.Number != 10 {
		t.Fatalf("expected winning number 10, got %d", result.Number)
	}
	if result.State.Count != 0 || result.State.LastUserID != "" {
		t.Fatalf("expected reset after victory, got (%d, %q)", result.State.Count, result.State.LastUserID)
	}
	if result.State.MaxCount != 10 {
		t.Fatalf("max count must survive the reset, got %d", result.State.MaxCount)
	}
}

func TestFreshGuildScenario(t *testing.T) {
	state := State{Count: 0, LastUserID: "", MaxCount: 100}

	result := Advance(state, "A", "1")
	if result.Outcome != OutcomeAccept || result.State.Count != 1 {
		t.Fatalf("first count by A should be accepted, got %v count=%d", result.Outcome, result.State.Count)
	}
	state = result.State

	result = Advance(state, "A", "2")
	if result.Outcome != OutcomeSameUser || result.State.Count != 1 {
		t.Fatalf("A counting twice should be rejected, got %v count=%d", result.Outcome, result.State.Count)
	}
	state = result.State

	result = Advance(state, "B", "2")
	if result.Outcome != OutcomeAccept || result.State.Count != 2 || result.State.LastUserID != "B" {
		t.Fatalf("B's 2 should be accepted, got %v state=%+v", result.Outcome, result.State)
	}
}

func TestValidMaxCount(t *testing.T) {
	for value, want := range map[int]bool{0: false, 1: true, 100: true, 1000: true, 1001: false, -5: false} {
		if got := ValidMaxCount(value); got != want {
			t.Fatalf("ValidMaxCount(%d) = %t, want %t", value, got, want)
		}
	}
}
