package bot

import (
	"coup/internal/app"
	"coup/internal/domain"
)

// BotLevel selects the strategy a bot plays with.
type BotLevel int

const (
	BotLevelGood BotLevel = iota
	BotLevelSmart
)

// Move represents the decision made by the AI.
type Move struct {
	Pass    bool
	Command app.Command
}

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	// CalculateMove picks the action for self's own turn.
	CalculateMove(match *domain.Match, self *domain.Player) (Move, error)
	// React picks an out-of-turn ability (undo, peek) or reports false.
	React(match *domain.Match, self *domain.Player) (Move, bool)
}
