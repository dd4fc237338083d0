package wizard

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is one user's wizard in progress, as kept by a session store.
type Session struct {
	ID        uuid.UUID   `json:"id"`
	OwnerID   uuid.UUID   `json:"owner_id"`
	Wizard    *Controller `json:"wizard"`
	Attempt   *Attempt    `json:"launch"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func NewSession(ownerID uuid.UUID) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Wizard:    NewController(),
		Attempt:   NewAttempt(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Launch persists the wizard from the review step. The wizard is closed
// once every write succeeded; after a failure the session can retry.
func (s *Session) Launch(ctx context.Context, l *Launcher) (*Result, error) {
	if s.Wizard.Closed() {
		return nil, ErrAlreadyLaunched
	}
	if s.Wizard.Step() != StepReview {
		return nil, ErrNotOnReview
	}
	if s.Attempt == nil {
		s.Attempt = NewAttempt()
	}
	res, err := l.Launch(ctx, s.OwnerID, s.Wizard.Snapshot(), s.Attempt)
	if err != nil {
		return nil, err
	}
	s.Wizard.close()
	return res, nil
}

// View is the read model of a session returned to the admin UI.
type View struct {
	ID       uuid.UUID            `json:"id"`
	Step     Step                 `json:"step"`
	State    State                `json:"state"`
	Steps    map[Step]FieldErrors `json:"steps"`
	Guests   Summary              `json:"guest_summary"`
	Preview  string               `json:"invitation_preview"`
	Launch   *Attempt             `json:"launch"`
	Launched bool                 `json:"launched"`
}

// View validates every step against the current state so the UI can show
// which ones are complete.
func (s *Session) View() View {
	state := s.Wizard.Snapshot()
	steps := make(map[Step]FieldErrors, int(StepReview)+1)
	for step := StepBasicInfo; step <= StepReview; step++ {
		steps[step] = ValidateStep(step, state)
	}
	return View{
		ID:       s.ID,
		Step:     s.Wizard.Step(),
		State:    state,
		Steps:    steps,
		Guests:   Summarize(state.Guests),
		Preview:  Preview(state),
		Launch:   s.Attempt,
		Launched: s.Wizard.Closed(),
	}
}
