package domain

import "strings"

// urgentKeywords trigger immediate escalation when present anywhere in the text
var urgentKeywords = []string{
	"emergency",
	"urgent",
	"asap",
	"now",
	"immediately",
	"help",
	"911",
	"critical",
	"important",
	"hospital",
	"police",
}

// IsUrgent classifies a message as urgent. A message is urgent if it
// contains an urgent keyword, has 3 or more exclamation marks, or is
// written mostly in capitals (only checked past 10 letters, so short
// strings like "OK" never trip the caps rule).
func IsUrgent(text string) bool {
	if text == "" {
		return false
	}

	lower := strings.ToLower(text)
	for _, keyword := range urgentKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}

	if strings.Count(text, "!") >= 3 {
		return true
	}

	capsCount := 0
	letterCount := 0
	for _, r := range text {
		switch {
		case r >= 'A' && r <= 'Z':
			capsCount++
			letterCount++
		case r >= 'a' && r <= 'z':
			letterCount++
		}
	}
	if letterCount > 10 && capsCount*2 > letterCount {
		return true
	}

	return false
}
