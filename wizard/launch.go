package wizard

import (
	"context"
	"errors"
	"fmt"

	"ari-backend/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Backend persists the three records a launch produces.
type Backend interface {
	// CreateEvent inserts the event, or returns the row already stored
	// under the same LaunchKey.
	CreateEvent(ctx context.Context, event *models.Event) (*models.Event, error)
	BulkCreateGuests(ctx context.Context, guests []models.Guest) error
	UpsertEventStatus(ctx context.Context, status *models.EventStatus) error
}

// CodeUniqueViolation is the Postgres code for a unique constraint failure.
const CodeUniqueViolation = "23505"

// RemoteError is a failure reported by the database, with the provider's
// code, message and optional hint.
type RemoteError struct {
	Code    string
	Message string
	Hint    string
	Err     error
}

func (e *RemoteError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (code %s)", e.Message, e.Code)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

var (
	ErrDuplicateGuestPhone = errors.New("a guest with one of these phone numbers already exists in another event")
	ErrAlreadyLaunched     = errors.New("wizard: event already launched")
	ErrNotOnReview         = errors.New("wizard: launch is only available on the review step")
)

const duplicatePhoneMessage = "A guest with one of these phone numbers already exists in another event. Please check your guest list for duplicates."

// LaunchStage names the write that failed.
type LaunchStage string

const (
	StageEvent  LaunchStage = "event"
	StageGuests LaunchStage = "guests"
	StageStatus LaunchStage = "event_status"
)

// LaunchError aggregates a failed launch into one readable message.
type LaunchError struct {
	Stage LaunchStage
	Err   error
}

func (e *LaunchError) Error() string {
	msg := "Failed to create event. "
	if errors.Is(e.Err, ErrDuplicateGuestPhone) {
		return msg + duplicatePhoneMessage
	}
	var remote *RemoteError
	if errors.As(e.Err, &remote) {
		msg += remote.Message
		if remote.Hint != "" {
			msg += " Hint: " + remote.Hint
		}
		return msg
	}
	return msg + e.Err.Error()
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// LaunchStatus follows idle -> launching -> success | error. An attempt in
// error goes back to launching on retry.
type LaunchStatus string

const (
	LaunchIdle      LaunchStatus = "idle"
	LaunchLaunching LaunchStatus = "launching"
	LaunchSucceeded LaunchStatus = "success"
	LaunchFailed    LaunchStatus = "error"
)

// Attempt tracks one session's launch across retries. Key is the
// idempotency key stored on the event; the stage flags make a retry resume
// after the last completed write.
type Attempt struct {
	Key           uuid.UUID    `json:"key"`
	Status        LaunchStatus `json:"status"`
	EventID       *uuid.UUID   `json:"event_id,omitempty"`
	GuestsCreated bool         `json:"guests_created"`
	StatusSaved   bool         `json:"status_saved"`
	Error         string       `json:"error,omitempty"`
}

func NewAttempt() *Attempt {
	return &Attempt{Key: uuid.New(), Status: LaunchIdle}
}

// Result is returned by a successful launch.
type Result struct {
	EventID uuid.UUID `json:"event_id"`
	Guests  int       `json:"guests"`
}

type Launcher struct {
	Backend Backend
}

func NewLauncher(backend Backend) *Launcher {
	return &Launcher{Backend: backend}
}

// Launch writes the event, then the guests, then the status record. Writes
// an earlier call of the same attempt completed are skipped.
func (l *Launcher) Launch(ctx context.Context, ownerID uuid.UUID, s State, a *Attempt) (*Result, error) {
	if a.Status == LaunchSucceeded {
		return nil, ErrAlreadyLaunched
	}
	a.Status = LaunchLaunching
	a.Error = ""
	logger := log.With().Str("launch_key", a.Key.String()).Str("event_name", s.Name).Logger()

	if a.EventID == nil {
		event, err := l.Backend.CreateEvent(ctx, EventFromState(ownerID, s, a.Key))
		if err != nil {
			return nil, l.fail(a, StageEvent, err)
		}
		a.EventID = &event.ID
		logger.Info().Str("event_id", event.ID.String()).Msg("event created")
	}
	eventID := *a.EventID

	if !a.GuestsCreated {
		if guests := GuestsFromState(eventID, s); len(guests) > 0 {
			if err := l.Backend.BulkCreateGuests(ctx, guests); err != nil {
				if IsUniqueViolation(err) {
					err = fmt.Errorf("%w: %w", ErrDuplicateGuestPhone, err)
				}
				return nil, l.fail(a, StageGuests, err)
			}
			logger.Info().Int("guests", len(guests)).Msg("guests created")
		}
		a.GuestsCreated = true
	}

	if !a.StatusSaved {
		if err := l.Backend.UpsertEventStatus(ctx, EventStatusFromState(eventID, s)); err != nil {
			return nil, l.fail(a, StageStatus, err)
		}
		a.StatusSaved = true
	}

	a.Status = LaunchSucceeded
	logger.Info().Str("event_id", eventID.String()).Msg("event launched")
	return &Result{EventID: eventID, Guests: len(s.Guests)}, nil
}

func (l *Launcher) fail(a *Attempt, stage LaunchStage, err error) error {
	lerr := &LaunchError{Stage: stage, Err: err}
	a.Status = LaunchFailed
	a.Error = lerr.Error()
	log.Error().Err(err).Str("launch_key", a.Key.String()).Str("stage", string(stage)).Msg("launch failed")
	return lerr
}

// IsUniqueViolation reports whether err carries the unique-violation code.
func IsUniqueViolation(err error) bool {
	var remote *RemoteError
	return errors.As(err, &remote) && remote.Code == CodeUniqueViolation
}
