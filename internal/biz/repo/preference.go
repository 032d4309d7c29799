package repo

import "context"

// PreferenceRepo is the per-contact preference store interface
type PreferenceRepo interface {
	// AutoRespondAllowed reports whether the contact accepts automated
	// replies. Contacts with no stored preference are allowed.
	AutoRespondAllowed(ctx context.Context, contactID string) (bool, error)

	// SetAutoRespondAllowed stores the contact's preference
	SetAutoRespondAllowed(ctx context.Context, contactID string, allowed bool) error
}
