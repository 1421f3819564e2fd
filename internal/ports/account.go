package ports

import "context"

// AccountPort reads and updates the account profiles players sit down with.
type AccountPort interface {
	// DisplayName returns the name a user plays under.
	// Falls back to the username when no display name is set.
	DisplayName(ctx context.Context, userID string) (string, error)
	// UpdateProfile sets the display name of the given user.
	UpdateProfile(ctx context.Context, userID, displayName string) error
}
