package bot

import (
	"coup/internal/app"
	"coup/internal/domain"
)

// sanctionThreat is the coin count at which an opponent is worth sanctioning.
const sanctionThreat = domain.CoupCost - domain.TaxIncome

// SmartBot uses role abilities and reacts to other players' actions.
type SmartBot struct{}

func (b *SmartBot) CalculateMove(match *domain.Match, self *domain.Player) (Move, error) {
	if self == nil || !self.IsAlive() || match.IsGameOver() {
		return Move{Pass: true}, nil
	}

	opps := opponents(match, self)
	var candidates []app.Command

	// A General holding the coins to veto will likely revive itself; hit it last.
	candidates = append(candidates, targeted(domain.ActionCoup, reviveRiskLast(opps))...)
	candidates = append(candidates, plain(domain.ActionInvest)...)

	var threats []domain.PlayerView
	for _, o := range opps {
		if o.Coins >= sanctionThreat && !o.Sanctioned {
			threats = append(threats, o)
		}
	}
	candidates = append(candidates, targeted(domain.ActionSanction, threats)...)
	candidates = append(candidates, plain(domain.ActionTax)...)
	candidates = append(candidates, targeted(domain.ActionArrest, opps)...)
	candidates = append(candidates, plain(domain.ActionGather)...)

	if move, ok := firstLegal(match, self, candidates); ok {
		return move, nil
	}
	return Move{Pass: true}, nil
}

func (b *SmartBot) React(match *domain.Match, self *domain.Player) (Move, bool) {
	if move, ok := reviveSelf(match, self); ok {
		return move, true
	}
	if !self.IsAlive() || match.IsGameOver() {
		return Move{}, false
	}

	opps := opponents(match, self)
	switch self.Role() {
	case domain.RoleGovernor:
		return firstLegal(match, self, targeted(domain.ActionUndoTax, opps))
	case domain.RoleJudge:
		return firstLegal(match, self, targeted(domain.ActionUndoBribe, opps))
	case domain.RoleSpy:
		if self.Coins() == 0 {
			return Move{}, false
		}
		return firstLegal(match, self, targeted(domain.ActionPeek, opps))
	}
	return Move{}, false
}

func reviveRiskLast(opps []domain.PlayerView) []domain.PlayerView {
	var safe, risky []domain.PlayerView
	for _, o := range opps {
		if o.Role == domain.RoleGeneral && o.Coins >= domain.UndoCoupCost {
			risky = append(risky, o)
		} else {
			safe = append(safe, o)
		}
	}
	return append(safe, risky...)
}
