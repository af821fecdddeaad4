package flow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/louisbranch/rawcn/internal/services/registration/form"
)

func TestSubmitOnceSuccessReportsNavigation(t *testing.T) {
	c := newCollaborators()
	outcome, err := SubmitOnce(context.Background(), newTestSubmitter(t, c), validInput(), false)
	if err != nil {
		t.Fatalf("submit once: %v", err)
	}
	if !outcome.Result.OK() || outcome.State.Phase != form.PhaseSuccess {
		t.Fatalf("outcome = %+v", outcome)
	}
	if outcome.NextScreen != LoginScreen || outcome.NavigateAfter != 2000*time.Millisecond {
		t.Fatalf("navigation = %q after %s", outcome.NextScreen, outcome.NavigateAfter)
	}
}

func TestSubmitOnceFailureStaysOnForm(t *testing.T) {
	c := newCollaborators()
	c.accounts.err = errors.New("boom")
	outcome, err := SubmitOnce(context.Background(), newTestSubmitter(t, c), validInput(), false)
	if err != nil {
		t.Fatalf("submit once: %v", err)
	}
	if outcome.State.Phase != form.PhaseFailed || outcome.State.Error != "Error registering the user: boom" {
		t.Fatalf("state = %s %q", outcome.State.Phase, outcome.State.Error)
	}
	if outcome.NextScreen != "" || outcome.NavigateAfter != 0 {
		t.Fatalf("unexpected navigation %q", outcome.NextScreen)
	}
}

func TestSubmitOnceRequiresRegistrar(t *testing.T) {
	if _, err := SubmitOnce(context.Background(), nil, validInput(), false); err == nil {
		t.Fatal("expected missing registrar error")
	}
}
