package svcquery

import (
	"errors"
	"testing"
)

func TestTranslateKnownStates(t *testing.T) {
	want := map[int]string{
		1: "STOPPED",
		2: "START_PENDING",
		3: "STOP_PENDING",
		4: "RUNNING",
		5: "CONTINUE_PENDING",
		6: "PAUSE_PENDING",
		7: "PAUSED",
	}
	for code, label := range want {
		got, err := Translate(code)
		if err != nil {
			t.Fatalf("Translate(%d): %v", code, err)
		}
		if got != label {
			t.Fatalf("Translate(%d) = %q, want %q", code, got, label)
		}
	}
}

func TestTranslateUnknownStateCode(t *testing.T) {
	for _, code := range []int{-1, 0, 8, 42} {
		_, err := Translate(code)
		if !errors.Is(err, ErrUnknownStateCode) {
			t.Fatalf("Translate(%d) = %v, want ErrUnknownStateCode", code, err)
		}

		var stateErr *UnknownStateError
		if !errors.As(err, &stateErr) {
			t.Fatalf("Translate(%d) error is %T, want *UnknownStateError", code, err)
		}
		if stateErr.Code != code {
			t.Fatalf("Code = %d, want %d", stateErr.Code, code)
		}
	}
}

func TestStateStringNeverLooksKnown(t *testing.T) {
	if got := StateRunning.String(); got != "RUNNING" {
		t.Fatalf("StateRunning.String() = %q", got)
	}
	if got := State(9).String(); got != "UNKNOWN(9)" {
		t.Fatalf("State(9).String() = %q", got)
	}
	if State(9).Known() {
		t.Fatal("State(9) should not be known")
	}
	if !StatePaused.Known() {
		t.Fatal("StatePaused should be known")
	}
}

func TestServiceRecordIsActive(t *testing.T) {
	if !(ServiceRecord{Name: "Spooler", ProcessID: 1234}).IsActive() {
		t.Fatal("record with a pid should be active")
	}
	if (ServiceRecord{Name: "Spooler"}).IsActive() {
		t.Fatal("record without a pid should not be active")
	}
}
