package nakama

import (
	"context"
	"fmt"

	"coup/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaAccountAdapter implements ports.AccountPort using Nakama's account API.
type NakamaAccountAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaAccountAdapter creates a new account adapter.
func NewNakamaAccountAdapter(nk runtime.NakamaModule) *NakamaAccountAdapter {
	return &NakamaAccountAdapter{nk: nk}
}

// DisplayName reads the account of userID from Nakama.
func (a *NakamaAccountAdapter) DisplayName(ctx context.Context, userID string) (string, error) {
	account, err := a.nk.AccountGetId(ctx, userID)
	if err != nil {
		return "", err
	}
	user := account.GetUser()
	if user == nil {
		return "", fmt.Errorf("account %s has no user", userID)
	}
	if user.GetDisplayName() != "" {
		return user.GetDisplayName(), nil
	}
	return user.GetUsername(), nil
}

// UpdateProfile updates the account display name in Nakama. The username is left unchanged.
func (a *NakamaAccountAdapter) UpdateProfile(ctx context.Context, userID, displayName string) error {
	return a.nk.AccountUpdateId(ctx, userID, "", nil, displayName, "", "", "", "")
}

var _ ports.AccountPort = (*NakamaAccountAdapter)(nil)
