package services

import (
	"strings"
	"unicode"

	"ari-backend/models"
)

// ClassifyReply maps a guest's free-text reply to an RSVP status. The
// reminder asks for 1, 2 or 3; keywords are accepted too. ok is false when
// the reply is not a clear answer.
func ClassifyReply(text string) (status models.RSVPStatus, ok bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return "", false
	}

	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	if len(words) > 0 {
		switch words[0] {
		case "1":
			return models.RSVPAttending, true
		case "2":
			return models.RSVPDeclined, true
		case "3":
			return models.RSVPMaybe, true
		}
	}

	// negative phrases contain positive words ("not coming"), so check them first
	if containsAny(text, "not coming", "can't come", "cannot come", "won't come", "can't make it", "cannot make it", "decline", "declining", "❌") {
		return models.RSVPDeclined, true
	}
	if containsAny(text, "ask me later", "not sure", "don't know yet") || hasWord(words, "maybe", "later", "perhaps") {
		return models.RSVPMaybe, true
	}
	if containsAny(text, "accept", "attending", "coming", "will come", "will be there", "✅") || hasWord(words, "yes", "yep", "yeah", "sure") {
		return models.RSVPAttending, true
	}
	if hasWord(words, "no", "nope") {
		return models.RSVPDeclined, true
	}
	return "", false
}

// containsAny checks if the text contains any of the given keywords
func containsAny(text string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

func hasWord(words []string, candidates ...string) bool {
	for _, w := range words {
		for _, c := range candidates {
			if w == c {
				return true
			}
		}
	}
	return false
}
