package bot

import (
	"coup/internal/app"
	"coup/internal/domain"
)

// GoodBot plays a greedy economy: coup when affordable, otherwise take the
// best income available.
type GoodBot struct{}

func (b *GoodBot) CalculateMove(match *domain.Match, self *domain.Player) (Move, error) {
	if self == nil || !self.IsAlive() || match.IsGameOver() {
		return Move{Pass: true}, nil
	}

	opps := opponents(match, self)
	var candidates []app.Command
	candidates = append(candidates, targeted(domain.ActionCoup, opps)...)
	candidates = append(candidates, plain(domain.ActionInvest, domain.ActionTax, domain.ActionGather)...)
	candidates = append(candidates, targeted(domain.ActionArrest, opps)...)
	candidates = append(candidates, targeted(domain.ActionSanction, opps)...)

	if move, ok := firstLegal(match, self, candidates); ok {
		return move, nil
	}
	return Move{Pass: true}, nil
}

func (b *GoodBot) React(match *domain.Match, self *domain.Player) (Move, bool) {
	return reviveSelf(match, self)
}
