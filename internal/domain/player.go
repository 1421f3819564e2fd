package domain

import "github.com/google/uuid"

// PlayerID is the opaque identifier the engine keys players by.
type PlayerID string

// PeekResult is what a Spy learns about its target.
type PeekResult struct {
	Target string
	Coins  int
	Role   Role
}

// Player holds the state of one seated participant.
// Fields are mutated only through Match operations.
type Player struct {
	id   PlayerID
	name string
	role Role
	seat int

	coins      int
	alive      bool
	sanctioned bool

	// Spy only.
	lastPeek *PeekResult
}

func newPlayer(name string, role Role, seat int) *Player {
	return &Player{
		id:    PlayerID(uuid.New().String()),
		name:  name,
		role:  role,
		seat:  seat,
		alive: true,
	}
}

func (p *Player) ID() PlayerID { return p.id }
func (p *Player) Name() string { return p.name }
func (p *Player) Role() Role { return p.role }
func (p *Player) Seat() int { return p.seat }
func (p *Player) Coins() int { return p.coins }
func (p *Player) IsAlive() bool { return p.alive }
func (p *Player) IsSanctioned() bool { return p.sanctioned }

// LastPeek returns the most recent peek of a Spy, or nil.
func (p *Player) LastPeek() *PeekResult {
	if p.lastPeek == nil {
		return nil
	}
	out := *p.lastPeek
	return &out
}

// setCoins is the only writer of coins. Negative balances are rejected.
func (p *Player) setCoins(amount int) error {
	if amount < 0 {
		return errInvalidAction("Coin count cannot be negative.")
	}
	p.coins = amount
	return nil
}

// PlayerView is a read-only snapshot of a player for observers.
type PlayerView struct {
	ID         PlayerID
	Name       string
	Role       Role
	Seat       int
	Coins      int
	Alive      bool
	Sanctioned bool
}

func (p *Player) view() PlayerView {
	return PlayerView{
		ID:         p.id,
		Name:       p.name,
		Role:       p.role,
		Seat:       p.seat,
		Coins:      p.coins,
		Alive:      p.alive,
		Sanctioned: p.sanctioned,
	}
}
