package form

import "errors"

// Phase is the screen phase.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseSuccess
	PhaseFailed
)

// String returns the phase name used by the outer surfaces.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSuccess:
		return "success"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrFormClosed is returned for edits after a successful registration.
var ErrFormClosed = errors.New("registration already completed")

// State is one form instance: the phase, the record being edited and the
// text currently displayed.
type State struct {
	Phase      Phase
	Input      Input
	IsProducer bool
	Error      string
	Success    string
}

// NewState returns the state shown on screen entry.
func NewState(isProducer bool) State {
	return State{Phase: PhaseIdle, Input: NewInput(), IsProducer: isProducer}
}

// Submitting reports whether a submission is in flight.
func (s State) Submitting() bool {
	return s.Phase == PhaseSubmitting
}

// Begin starts a submission attempt. It clears the displayed text and
// returns false when a submission is in flight or the form already succeeded.
func (s State) Begin() (State, bool) {
	switch s.Phase {
	case PhaseSubmitting, PhaseSuccess:
		return s, false
	}
	s.Phase = PhaseSubmitting
	s.Error = ""
	s.Success = ""
	return s, true
}

// Finish records the outcome of the attempt started by Begin.
func (s State) Finish(result Result) State {
	if result.ProfileImageURL != "" {
		s.Input.ProfileImageURL = result.ProfileImageURL
		s.Input.Image = nil
	}
	if result.OK() {
		s.Phase = PhaseSuccess
		s.Success = result.Reason
		s.Error = ""
		return s
	}
	s.Phase = PhaseFailed
	s.Error = result.Reason
	s.Success = ""
	return s
}

// Edit applies one field edit. A failed form returns to idle; the error text
// stays until the next attempt.
func (s State) Edit(field Field, value string) (State, error) {
	if s.Phase == PhaseSuccess {
		return s, ErrFormClosed
	}
	if err := s.Input.Set(field, value); err != nil {
		return s, err
	}
	if s.Phase == PhaseFailed {
		s.Phase = PhaseIdle
	}
	return s, nil
}

// SelectImage replaces the selected image. A nil image clears the selection
// and any URL hosted for a previous one.
func (s State) SelectImage(image *LocalImage) (State, error) {
	if s.Phase == PhaseSuccess {
		return s, ErrFormClosed
	}
	s.Input.Image = image
	s.Input.ProfileImageURL = ""
	if s.Phase == PhaseFailed {
		s.Phase = PhaseIdle
	}
	return s, nil
}
