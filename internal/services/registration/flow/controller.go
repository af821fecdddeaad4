package flow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/louisbranch/rawcn/internal/platform/requestctx"
	"github.com/louisbranch/rawcn/internal/services/registration/form"
)

// Registrar runs one submission attempt.
type Registrar interface {
	Submit(ctx context.Context, in form.Input, isProducer bool) form.Result
}

// Scheduler runs fn once after delay and returns a function that cancels it.
type Scheduler func(delay time.Duration, fn func()) (stop func() bool)

// TimerScheduler schedules fn on a runtime timer.
func TimerScheduler(delay time.Duration, fn func()) func() bool {
	return time.AfterFunc(delay, fn).Stop
}

// ErrControllerClosed is returned for calls after Close.
var ErrControllerClosed = errors.New("registration form is closed")

// Controller is one registration screen instance. It serializes edits,
// ignores submits while one is in flight and schedules navigation to the
// login screen after a success.
type Controller struct {
	registrar Registrar
	navigator Navigator
	schedule  Scheduler

	mu      sync.Mutex
	state   form.State
	stopNav func() bool
	closed  bool
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithScheduler overrides the timer used for delayed navigation.
func WithScheduler(schedule Scheduler) ControllerOption {
	return func(c *Controller) {
		if schedule != nil {
			c.schedule = schedule
		}
	}
}

// WithInput opens the form prefilled with in.
func WithInput(in form.Input) ControllerOption {
	return func(c *Controller) {
		c.state.Input = in
	}
}

// NewController opens a form for a buyer or a producer.
func NewController(registrar Registrar, navigator Navigator, isProducer bool, opts ...ControllerOption) (*Controller, error) {
	if registrar == nil {
		return nil, errors.New("registrar is required")
	}
	if navigator == nil {
		return nil, errors.New("navigator is required")
	}
	c := &Controller{
		registrar: registrar,
		navigator: navigator,
		schedule:  TimerScheduler,
		state:     form.NewState(isProducer),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// State returns a snapshot of the form.
func (c *Controller) State() form.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Set applies one field edit.
func (c *Controller) Set(field form.Field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrControllerClosed
	}
	next, err := c.state.Edit(field, value)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

// SelectImage replaces the selected profile image; nil clears it.
func (c *Controller) SelectImage(image *form.LocalImage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrControllerClosed
	}
	next, err := c.state.SelectImage(image)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

// Submit runs one attempt. It returns false without doing anything when a
// submission is already in flight, the form already succeeded or the
// controller is closed. Validation failures never enter the submitting phase.
func (c *Controller) Submit(ctx context.Context) (form.Result, bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return form.Result{}, false
	}
	next, ok := c.state.Begin()
	if !ok {
		c.mu.Unlock()
		return form.Result{}, false
	}
	if err := form.Validate(next.Input, next.IsProducer); err != nil {
		result := ValidationFailure(err, requestctx.LocaleFromContext(ctx))
		c.state = next.Finish(result)
		c.mu.Unlock()
		return result, true
	}
	c.state = next
	input, isProducer := next.Input, next.IsProducer
	c.mu.Unlock()

	result := c.registrar.Submit(ctx, input, isProducer)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = c.state.Finish(result)
	if result.OK() && !c.closed {
		c.stopNav = c.schedule(NavigationDelay, func() {
			c.navigator.NavigateTo(LoginScreen)
		})
	}
	return result, true
}

// Close discards the form and cancels a pending navigation.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.stopNav != nil {
		c.stopNav()
		c.stopNav = nil
	}
}
