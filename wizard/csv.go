package wizard

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"ari-backend/models"
)

// TemplateFilename is the name the template download is served under.
const TemplateFilename = "guest_list_template.csv"

var ErrEmptyFile = errors.New("CSV file must contain headers and at least one row")

// ImportResult is the outcome of one CSV import. Dropped counts data rows
// that lacked a name or a phone number.
type ImportResult struct {
	Guests  []GuestDraft `json:"guests"`
	Dropped int          `json:"dropped"`
}

type csvField int

const (
	fieldIgnored csvField = iota
	fieldName
	fieldPhone
	fieldEmail
	fieldChannel
	fieldPlusOne
	fieldDietary
)

var headerSynonyms = map[string]csvField{
	"name":                 fieldName,
	"phone":                fieldPhone,
	"phone_number":         fieldPhone,
	"phone number":         fieldPhone,
	"email":                fieldEmail,
	"messaging_preference": fieldChannel,
	"preference":           fieldChannel,
	"plus_one":             fieldPlusOne,
	"plus_one_allowed":     fieldPlusOne,
	"dietary_restrictions": fieldDietary,
	"dietary":              fieldDietary,
}

// ParseCSV reads a guest list. The first non-blank record is the header;
// unknown columns are ignored. Quoted fields may contain commas.
func ParseCSV(r io.Reader) (ImportResult, error) {
	records, err := readRecords(r)
	if err != nil {
		return ImportResult{}, err
	}
	if len(records) < 2 {
		return ImportResult{}, ErrEmptyFile
	}

	columns := make([]csvField, len(records[0]))
	for i, h := range records[0] {
		columns[i] = headerSynonyms[strings.ToLower(strings.TrimSpace(h))]
	}

	res := ImportResult{Guests: []GuestDraft{}}
	for _, rec := range records[1:] {
		g := GuestDraft{MessagingPreference: models.ChannelSMS}
		for i, col := range columns {
			if i >= len(rec) {
				break
			}
			value := strings.TrimSpace(rec[i])
			switch col {
			case fieldName:
				g.Name = value
			case fieldPhone:
				g.PhoneNumber = value
			case fieldEmail:
				g.Email = value
			case fieldChannel:
				g.MessagingPreference = models.ParseChannel(value)
			case fieldPlusOne:
				g.PlusOneAllowed = strings.EqualFold(value, "true") || value == "1"
			case fieldDietary:
				g.DietaryRestrictions = value
			}
		}
		if g.Name == "" || g.PhoneNumber == "" {
			res.Dropped++
			continue
		}
		res.Guests = append(res.Guests, g)
	}
	return res, nil
}

func readRecords(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(records) == 0 && len(rec) > 0 {
			rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
		}
		if blankRecord(rec) {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

var (
	templateHeader  = []string{"name", "phone", "email", "messaging_preference", "plus_one_allowed", "dietary_restrictions"}
	templateExample = []string{"John Doe", "+1234567890", "john@example.com", "whatsapp", "true", "Vegetarian"}
)

// Template returns the downloadable CSV: a header and one example row.
func Template() string {
	return strings.Join(templateHeader, ",") + "\n" + strings.Join(templateExample, ",")
}
