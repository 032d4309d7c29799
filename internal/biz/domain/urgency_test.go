package domain

import "testing"

func TestIsUrgent_Keywords(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"this is an EMERGENCY", true},
		{"please call asap", true},
		{"I'm at the hospital", true},
		{"Urgent: call me back", true},
		{"hey, how are you?", false},
		{"lunch tomorrow?", false},
		{"", false},
	}

	for _, c := range cases {
		if got := IsUrgent(c.text); got != c.want {
			t.Errorf("IsUrgent(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestIsUrgent_ExclamationMarks(t *testing.T) {
	if !IsUrgent("call me back!!!") {
		t.Error("Expected 3 exclamation marks to be urgent")
	}
	if !IsUrgent("what! is! this!") {
		t.Error("Expected 3 scattered exclamation marks to be urgent")
	}
	if IsUrgent("nice!!") {
		t.Error("Expected 2 exclamation marks to not be urgent")
	}
}

func TestIsUrgent_CapsRatio(t *testing.T) {
	if !IsUrgent("WHERE ARE YOU RIGHT THIS SECOND") {
		t.Error("Expected mostly-caps long text to be urgent")
	}
	if IsUrgent("where are you right this second") {
		t.Error("Expected lowercase text to not be urgent")
	}
}

func TestIsUrgent_ShortCapsNotUrgent(t *testing.T) {
	// The caps rule only applies past 10 letters, so short all-caps
	// strings never trip it.
	for _, text := range []string{"OK", "OK!", "YES", "LOL OK"} {
		if IsUrgent(text) {
			t.Errorf("Expected short caps string %q to not be urgent", text)
		}
	}
}
