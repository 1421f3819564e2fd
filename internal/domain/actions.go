package domain

// Gather grants one coin and ends the turn.
func (m *Match) Gather(p *Player) error {
	return m.earn(p, ActionGather, GatherIncome)
}

// Tax grants the role's tax income and ends the turn.
func (m *Match) Tax(p *Player) error {
	if err := m.checkActor(p); err != nil {
		return err
	}
	return m.earn(p, ActionTax, p.role.taxIncome())
}

func (m *Match) earn(p *Player, kind ActionKind, amount int) error {
	if err := m.checkTurn(p); err != nil {
		return err
	}
	if p.sanctioned {
		return errInvalidAction(p.name + " is sanctioned and cannot " + string(kind) + ".")
	}
	if err := checkForcedCoup(p); err != nil {
		return err
	}

	if err := p.setCoins(p.coins + amount); err != nil {
		return err
	}
	m.recordAction(p, kind, nil)
	m.advance()
	return nil
}

// Bribe buys an extra action. The turn stays with p.
func (m *Match) Bribe(p *Player) error {
	if err := m.checkTurn(p); err != nil {
		return err
	}
	if err := checkForcedCoup(p); err != nil {
		return err
	}
	if p.coins < BribeCost {
		return errInsufficientFunds(BribeCost, p.coins)
	}

	if err := p.setCoins(p.coins - BribeCost); err != nil {
		return err
	}
	m.recordAction(p, ActionBribe, nil)
	return nil
}

// Arrest takes a coin from target. A Merchant target pays two coins to no one.
func (m *Match) Arrest(p, target *Player) error {
	if err := m.checkTurn(p); err != nil {
		return err
	}
	if err := checkForcedCoup(p); err != nil {
		return err
	}
	if err := m.checkTarget(p, target, "arrest"); err != nil {
		return err
	}
	if !target.alive {
		return errPlayerEliminated(target.name)
	}
	if target.coins < ArrestTheft {
		return errInvalidAction(target.name + " has no coins to take.")
	}
	if need := target.role.arrestMinimum(); target.coins < need {
		return errInsufficientFunds(need, target.coins)
	}
	if m.arrestBlocked[p.id] {
		return errInvalidAction(p.name + " is blocked from arresting this turn.")
	}
	if memo := m.lastArrest; memo != nil && memo.attacker == p.id && memo.target == target.id {
		return errInvalidAction("Cannot arrest " + target.name + " twice in a row.")
	}

	out := target.role.onArrest()
	if err := target.setCoins(target.coins + out.targetDelta); err != nil {
		return err
	}
	if err := p.setCoins(p.coins + out.attackerDelta); err != nil {
		return err
	}
	m.lastArrest = &arrestMemo{attacker: p.id, target: target.id}
	m.recordAction(p, ActionArrest, target)
	m.advance()
	return nil
}

// Sanction bars target from gather and tax until the round ends.
func (m *Match) Sanction(p, target *Player) error {
	if err := m.checkTurn(p); err != nil {
		return err
	}
	if err := checkForcedCoup(p); err != nil {
		return err
	}
	if err := m.checkTarget(p, target, "sanction"); err != nil {
		return err
	}
	if !target.alive {
		return errPlayerEliminated(target.name)
	}
	cost := target.role.sanctionCost()
	if p.coins < cost {
		return errInsufficientFunds(cost, p.coins)
	}

	target.sanctioned = true
	if bonus := target.role.onSanctionBonus(); bonus > 0 {
		target.coins += bonus
	}
	if err := p.setCoins(p.coins - cost); err != nil {
		return err
	}
	m.recordAction(p, ActionSanction, target)
	m.advance()
	return nil
}

// Coup eliminates target. The elimination stays vetoable until p's next turn.
// Coup is the one action open to a player at or above the forced-coup threshold.
func (m *Match) Coup(p, target *Player) error {
	if err := m.checkTurn(p); err != nil {
		return err
	}
	if err := m.checkTarget(p, target, "coup"); err != nil {
		return err
	}
	if !target.alive {
		return errPlayerEliminated(target.name)
	}
	if p.coins < CoupCost {
		return errInsufficientFunds(CoupCost, p.coins)
	}

	target.alive = false
	if err := p.setCoins(p.coins - CoupCost); err != nil {
		return err
	}
	m.pendingCoups = append(m.pendingCoups, PendingCoup{Attacker: p.id, Target: target.id})
	m.recordAction(p, ActionCoup, target)
	m.advance()
	return nil
}
