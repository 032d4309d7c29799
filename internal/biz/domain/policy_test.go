package domain

import "testing"

func TestShouldAutoRespond_DecisionTable(t *testing.T) {
	cases := []struct {
		status UserStatus
		urgent bool
		want   bool
	}{
		{StatusAvailable, false, false},
		{StatusAvailable, true, false},
		{StatusBusy, false, true},
		{StatusBusy, true, false},
		{StatusAway, false, true},
		{StatusAway, true, false},
		{StatusSleep, false, true},
		{StatusSleep, true, false},
		{StatusDND, false, true},
		{StatusDND, true, false},
	}

	for _, c := range cases {
		if got := ShouldAutoRespond(c.status, c.urgent, true); got != c.want {
			t.Errorf("ShouldAutoRespond(%s, urgent=%v, allowed) = %v, want %v", c.status, c.urgent, got, c.want)
		}
	}
}

func TestShouldAutoRespond_ContactOptOut(t *testing.T) {
	for _, status := range AllStatuses {
		if ShouldAutoRespond(status, false, false) {
			t.Errorf("Expected contact opt-out to override status %s", status)
		}
	}
}
