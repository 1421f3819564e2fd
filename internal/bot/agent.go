package bot

import (
	"coup/internal/domain"
)

// Agent represents an autonomous bot player.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// NewAgent builds an agent for a bot identity. The difficulty picks the brain.
func NewAgent(identity BotIdentity) (*Agent, error) {
	brain, err := NewBrain(ParseLevel(identity.Difficulty))
	if err != nil {
		return nil, err
	}
	return &Agent{ID: identity.UserID, Name: identity.Name(), Strategy: brain}, nil
}

// Play asks the agent to calculate its move based on the current match state.
func (a *Agent) Play(match *domain.Match) (Move, error) {
	player, err := match.Player(a.Name)
	if err != nil {
		// Agent is not part of this match
		return Move{Pass: true}, nil
	}

	move, err := a.Strategy.CalculateMove(match, player)
	if err != nil {
		return Move{Pass: true}, err
	}
	return move, nil
}

// React asks the agent whether it wants to use an out-of-turn ability now.
func (a *Agent) React(match *domain.Match) (Move, bool) {
	player, err := match.Player(a.Name)
	if err != nil {
		return Move{}, false
	}
	return a.Strategy.React(match, player)
}
