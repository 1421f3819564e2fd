package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"coup/internal/ports"
)

// Service handles post-auth onboarding for new users.
type Service struct {
	accounts ports.AccountPort
	rng      *rand.Rand
}

// NewService constructs an onboarding service.
// rng may be nil to use a time-seeded default.
func NewService(accounts ports.AccountPort, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		accounts: accounts,
		rng:      rng,
	}
}

// OnboardNewUser gives a newly created account a display name, which is the
// name it sits down with when joining a match without choosing one.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (string, error) {
	if s.accounts == nil {
		return "", fmt.Errorf("onboarding service not configured")
	}

	displayName := s.generateFriendlyName()
	if err := s.accounts.UpdateProfile(ctx, userID, displayName); err != nil {
		return "", fmt.Errorf("update profile of %s: %w", userID, err)
	}
	return displayName, nil
}

func (s *Service) generateFriendlyName() string {
	adjectives := []string{"Sly", "Bold", "Silent", "Cunning", "Loyal", "Shrewd", "Grim", "Gilded", "Wary", "Restless"}
	nouns := []string{"Courtier", "Envoy", "Duke", "Regent", "Marshal", "Magistrate", "Consul", "Steward", "Herald", "Chancellor"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
