package wizard

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Step identifies one page of the wizard.
type Step int

const (
	StepBasicInfo Step = iota
	StepInvitation
	StepGuests
	StepScheduling
	StepReview
)

var stepNames = [...]string{"basic_info", "invitation", "guests", "scheduling", "review"}

func (s Step) String() string {
	if s < StepBasicInfo || s > StepReview {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

// ParseStep maps a step name back to its Step.
func ParseStep(name string) (Step, bool) {
	for i, n := range stepNames {
		if n == name {
			return Step(i), true
		}
	}
	return 0, false
}

func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Step) UnmarshalText(b []byte) error {
	step, ok := ParseStep(string(b))
	if !ok {
		return fmt.Errorf("wizard: unknown step %q", b)
	}
	*s = step
	return nil
}

var (
	ErrNoNextStep    = errors.New("wizard: review is the last step")
	ErrStepMismatch  = errors.New("wizard: patch does not belong to the current step")
	ErrSessionClosed = errors.New("wizard: event already launched")
)

// Controller owns the canonical wizard state. Steps read it through
// Snapshot and write to it only through Merge.
type Controller struct {
	step   Step
	state  State
	closed bool
}

func NewController() *Controller {
	return &Controller{step: StepBasicInfo, state: NewState()}
}

func (c *Controller) Step() Step {
	return c.step
}

// Closed reports whether the wizard was launched successfully.
func (c *Controller) Closed() bool {
	return c.closed
}

// Snapshot returns a copy of the state; mutating it does not affect the
// controller.
func (c *Controller) Snapshot() State {
	return c.state.clone()
}

// Merge applies a patch from the current step. Fields the patch does not
// carry keep their previous value.
func (c *Controller) Merge(p Patch) error {
	if c.closed {
		return ErrSessionClosed
	}
	if p.Step() != c.step {
		return fmt.Errorf("%w: got %s, current %s", ErrStepMismatch, p.Step(), c.step)
	}
	p.apply(&c.state)
	return nil
}

// Validate checks the current step against the state.
func (c *Controller) Validate() FieldErrors {
	return ValidateStep(c.step, c.state)
}

// Advance moves to the next step when the current one is valid.
func (c *Controller) Advance() error {
	if c.closed {
		return ErrSessionClosed
	}
	if c.step == StepReview {
		return ErrNoNextStep
	}
	if fields := c.Validate(); !fields.Valid() {
		return &StepError{Step: c.step, Fields: fields}
	}
	c.step++
	return nil
}

// Retreat moves one step back; it is a no-op on the first step.
func (c *Controller) Retreat() error {
	if c.closed {
		return ErrSessionClosed
	}
	if c.step > StepBasicInfo {
		c.step--
	}
	return nil
}

func (c *Controller) close() {
	c.closed = true
}

type controllerJSON struct {
	Step   Step  `json:"step"`
	State  State `json:"state"`
	Closed bool  `json:"closed"`
}

func (c *Controller) MarshalJSON() ([]byte, error) {
	return json.Marshal(controllerJSON{Step: c.step, State: c.state, Closed: c.closed})
}

func (c *Controller) UnmarshalJSON(b []byte) error {
	var v controllerJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v.Step < StepBasicInfo || v.Step > StepReview {
		return fmt.Errorf("wizard: step %d out of range", int(v.Step))
	}
	if v.State.Guests == nil {
		v.State.Guests = []GuestDraft{}
	}
	c.step, c.state, c.closed = v.Step, v.State, v.Closed
	return nil
}
