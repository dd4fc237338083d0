package wizard

import (
	"errors"
	"io"
	"strings"

	"ari-backend/models"
)

var ErrGuestIndex = errors.New("wizard: no guest at that position")

// Summary counts the roster for the guests step.
type Summary struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Invalid int `json:"invalid"`
}

// Ready reports whether the guests step can be left.
func (s Summary) Ready() bool {
	return s.Total > 0 && s.Invalid == 0
}

func Summarize(guests []GuestDraft) Summary {
	sum := Summary{Total: len(guests)}
	for _, g := range guests {
		if g.Valid() {
			sum.Valid++
		}
	}
	sum.Invalid = sum.Total - sum.Valid
	return sum
}

// GuestEdit is an inline edit of one roster row.
type GuestEdit struct {
	Name                *string         `json:"name"`
	PhoneNumber         *string         `json:"phone_number"`
	MessagingPreference *models.Channel `json:"messaging_preference"`
}

// ImportGuests parses a CSV upload and replaces the roster with the accepted
// rows. The roster is left untouched when parsing fails.
func (c *Controller) ImportGuests(r io.Reader) (ImportResult, error) {
	res, err := ParseCSV(r)
	if err != nil {
		return res, err
	}
	guests := res.Guests
	return res, c.Merge(GuestsPatch{Guests: &guests})
}

// AddGuest appends a manually entered guest.
func (c *Controller) AddGuest(g GuestDraft) error {
	return c.editRoster(func(guests []GuestDraft) ([]GuestDraft, error) {
		g.Name = strings.TrimSpace(g.Name)
		g.PhoneNumber = strings.TrimSpace(g.PhoneNumber)
		return append(guests, g), nil
	})
}

func (c *Controller) UpdateGuest(index int, edit GuestEdit) error {
	return c.editRoster(func(guests []GuestDraft) ([]GuestDraft, error) {
		if index < 0 || index >= len(guests) {
			return nil, ErrGuestIndex
		}
		g := &guests[index]
		if edit.Name != nil {
			g.Name = strings.TrimSpace(*edit.Name)
		}
		if edit.PhoneNumber != nil {
			g.PhoneNumber = strings.TrimSpace(*edit.PhoneNumber)
		}
		if edit.MessagingPreference != nil {
			g.MessagingPreference = models.ParseChannel(string(*edit.MessagingPreference))
		}
		return guests, nil
	})
}

func (c *Controller) RemoveGuest(index int) error {
	return c.editRoster(func(guests []GuestDraft) ([]GuestDraft, error) {
		if index < 0 || index >= len(guests) {
			return nil, ErrGuestIndex
		}
		return append(guests[:index], guests[index+1:]...), nil
	})
}

func (c *Controller) ClearGuests() error {
	return c.editRoster(func([]GuestDraft) ([]GuestDraft, error) {
		return []GuestDraft{}, nil
	})
}

// editRoster runs fn on a copy of the roster and merges the result as a
// guests patch, so the single-writer rule of Merge applies.
func (c *Controller) editRoster(fn func([]GuestDraft) ([]GuestDraft, error)) error {
	guests, err := fn(c.Snapshot().Guests)
	if err != nil {
		return err
	}
	return c.Merge(GuestsPatch{Guests: &guests})
}
