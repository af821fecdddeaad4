package flow

import (
	"context"
	"sync"
	"time"

	"github.com/louisbranch/rawcn/internal/services/registration/form"
)

// Outcome is what a screen shows after one submission attempt.
type Outcome struct {
	Result form.Result
	State  form.State
	// NextScreen is the screen the form navigates to, empty after a failure.
	NextScreen string
	// NavigateAfter is the delay before NextScreen is shown.
	NavigateAfter time.Duration
}

// SubmitOnce opens a form prefilled with in, submits it once and reports the
// resulting screen state instead of waiting for the navigation delay.
func SubmitOnce(ctx context.Context, registrar Registrar, in form.Input, isProducer bool) (Outcome, error) {
	nav := &recordingNavigator{}
	var delay time.Duration
	ctrl, err := NewController(registrar, nav, isProducer,
		WithInput(in),
		WithScheduler(func(d time.Duration, fn func()) func() bool {
			delay = d
			fn()
			return func() bool { return false }
		}),
	)
	if err != nil {
		return Outcome{}, err
	}
	defer ctrl.Close()

	result, _ := ctrl.Submit(ctx)
	outcome := Outcome{Result: result, State: ctrl.State()}
	if screen := nav.last(); screen != "" {
		outcome.NextScreen = screen
		outcome.NavigateAfter = delay
	}
	return outcome, nil
}

type recordingNavigator struct {
	mu     sync.Mutex
	screen string
}

func (n *recordingNavigator) NavigateTo(screen string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.screen = screen
}

func (n *recordingNavigator) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.screen
}
