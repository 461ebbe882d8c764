package dialog

import "strings"

type Intent string

const (
	IntentPositive Intent = "positive"
	IntentExit     Intent = "exit"
	IntentQuestion Intent = "question"
	IntentNeutral  Intent = "neutral"
)

// ParseIntent accepts exactly one known label, tolerating case, whitespace
// and trailing punctuation. Anything else is reported as not ok.
func ParseIntent(s string) (Intent, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, ".!?\"'`")
	switch Intent(s) {
	case IntentPositive, IntentExit, IntentQuestion, IntentNeutral:
		return Intent(s), true
	default:
		return IntentNeutral, false
	}
}

// Normalize is the form utterances are stored and classified in.
func Normalize(utterance string) string {
	return strings.ToLower(strings.TrimSpace(utterance))
}
