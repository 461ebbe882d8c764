package dialog

import "testing"

func TestParseIntent(t *testing.T) {
	cases := []struct {
		in   string
		want Intent
		ok   bool
	}{
		{"positive", IntentPositive, true},
		{" Exit.\n", IntentExit, true},
		{"QUESTION", IntentQuestion, true},
		{"neutral", IntentNeutral, true},
		{"maybe", IntentNeutral, false},
		{"positive exit", IntentNeutral, false},
		{"", IntentNeutral, false},
	}
	for _, tc := range cases {
		got, ok := ParseIntent(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseIntent(%q): want=%s,%v got=%s,%v", tc.in, tc.want, tc.ok, got, ok)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  Yes, Tell Me MORE "); got != "yes, tell me more" {
		t.Fatalf("Normalize: got=%q", got)
	}
}
