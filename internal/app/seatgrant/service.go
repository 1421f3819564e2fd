// Package seatgrant issues and verifies signed tokens that reserve a seat with
// a chosen name and role in one match.
package seatgrant

import (
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

var (
	ErrGrantInvalid  = errors.New("seat grant is invalid")
	ErrGrantExpired  = errors.New("seat grant has expired")
	ErrGrantMismatch = errors.New("seat grant does not match this match or user")
)

// Grant is the verified content of a seat grant.
type Grant struct {
	MatchID string
	UserID  string
	Name    string
	Role    string
}

type claims struct {
	MatchID string `json:"mid"`
	Name    string `json:"name"`
	Role    string `json:"role,omitempty"`
	jwt.StandardClaims
}

type Service struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewService(secret, issuer string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs an HS256 grant for userID to sit in matchID as name.
// An empty role lets the match assign one.
func (s *Service) Issue(matchID, userID, name, role string) (string, error) {
	if s == nil || len(s.secret) == 0 {
		return "", fmt.Errorf("seat grant secret is not configured")
	}
	if matchID == "" || userID == "" || name == "" {
		return "", fmt.Errorf("match id, user id and name are required")
	}

	now := s.now()
	c := claims{
		MatchID: matchID,
		Name:    name,
		Role:    role,
		StandardClaims: jwt.StandardClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(s.secret)
}

// Verify checks signature, expiry and that the grant belongs to matchID and userID.
func (s *Service) Verify(tokenString, matchID, userID string) (Grant, error) {
	var c claims
	_, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return Grant{}, ErrGrantExpired
		}
		return Grant{}, fmt.Errorf("%w: %v", ErrGrantInvalid, err)
	}
	if c.Issuer != s.issuer {
		return Grant{}, fmt.Errorf("%w: issuer %q", ErrGrantInvalid, c.Issuer)
	}
	if c.MatchID != matchID || c.Subject != userID {
		return Grant{}, ErrGrantMismatch
	}
	return Grant{MatchID: c.MatchID, UserID: c.Subject, Name: c.Name, Role: c.Role}, nil
}
