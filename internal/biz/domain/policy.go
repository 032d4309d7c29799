package domain

// ShouldAutoRespond decides whether an inbound contact message gets an
// automated reply. Urgent messages always go to the primary user, and a
// contact's opt-out overrides every status. Otherwise "available" means
// the primary user answers personally and every other status delegates
// to automation.
func ShouldAutoRespond(status UserStatus, isUrgent, contactAllows bool) bool {
	if isUrgent {
		return false
	}
	if !contactAllows {
		return false
	}

	switch status {
	case StatusBusy, StatusAway, StatusSleep, StatusDND:
		return true
	default:
		return false
	}
}
