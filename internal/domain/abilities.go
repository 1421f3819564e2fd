package domain

// requireRole rejects an ability call from a player of another role.
func requireRole(p *Player, want Role, ability ActionKind) error {
	if p.role != want {
		return errUndoNotPermitted(p.role, string(ability))
	}
	return nil
}

// checkReactor validates a caller of a turn-independent ability.
func (m *Match) checkReactor(p *Player, want Role, ability ActionKind) error {
	if err := m.checkActor(p); err != nil {
		return err
	}
	if err := requireRole(p, want, ability); err != nil {
		return err
	}
	if !p.alive {
		return errPlayerEliminated(p.name)
	}
	return nil
}

// UndoTax reverses target's most recent tax. Governor only, once per round.
func (m *Match) UndoTax(g, target *Player) error {
	if err := m.checkReactor(g, RoleGovernor, ActionUndoTax); err != nil {
		return err
	}
	if err := m.member(target); err != nil {
		return err
	}
	if !m.CanUndo(target, ActionTax) {
		return errUndoNotPermitted(g.role, string(ActionUndoTax))
	}
	if m.flags.undoTax {
		return errAlreadyConsumed(string(ActionUndoTax))
	}
	if target == g {
		return errSelfTarget("undo tax of")
	}
	amount := target.role.undoTaxAmount()
	if target.coins < amount {
		return errInsufficientFunds(amount, target.coins)
	}

	if err := target.setCoins(target.coins - amount); err != nil {
		return err
	}
	m.cancelLastAction(target)
	m.flags.undoTax = true
	m.log("[undo_tax] performed by %s on %s (coins: %d)", g.name, target.name, target.coins)
	return nil
}

// UndoBribe cancels target's bribe. Judge only, once per round. If the
// briber still holds the turn, the turn ends.
func (m *Match) UndoBribe(j, target *Player) error {
	if err := m.checkReactor(j, RoleJudge, ActionUndoBribe); err != nil {
		return err
	}
	if err := m.member(target); err != nil {
		return err
	}
	if !m.CanUndo(target, ActionBribe) {
		return errUndoNotPermitted(j.role, string(ActionUndoBribe))
	}
	if m.flags.undoBribe {
		return errAlreadyConsumed(string(ActionUndoBribe))
	}
	if target == j {
		return errSelfTarget("undo bribe of")
	}

	m.cancelLastAction(target)
	m.flags.undoBribe = true
	m.recordAction(j, ActionUndoBribe, target)
	if m.players[m.cursor] == target {
		m.advance()
	}
	return nil
}

// UndoCoup revives target of a pending coup. General only, once per round.
// A dead General may revive itself.
func (m *Match) UndoCoup(gen, target *Player) error {
	if err := m.checkActor(gen); err != nil {
		return err
	}
	if err := requireRole(gen, RoleGeneral, ActionUndoCoup); err != nil {
		return err
	}
	if err := m.member(target); err != nil {
		return err
	}
	if !gen.alive && gen != target {
		return errPlayerEliminated(gen.name)
	}
	if gen.coins < UndoCoupCost {
		return errInsufficientFunds(UndoCoupCost, gen.coins)
	}
	if !m.IsCoupPendingOn(target) {
		return errInvalidAction("No coup to block on this target.")
	}
	if m.flags.undoCoup {
		return errAlreadyConsumed(string(ActionUndoCoup))
	}

	if err := gen.setCoins(gen.coins - UndoCoupCost); err != nil {
		return err
	}
	kept := m.pendingCoups[:0]
	for _, c := range m.pendingCoups {
		if c.Target != target.id {
			kept = append(kept, c)
		}
	}
	m.pendingCoups = kept
	target.alive = true
	m.flags.undoCoup = true
	m.log("[undo_coup] performed by %s on %s (coins: %d)", gen.name, target.name, target.coins)
	return nil
}

// PeekAndDisable reveals target's coins and role to the Spy and blocks target
// from arresting on its next turn. It does not use the Spy's turn.
func (m *Match) PeekAndDisable(s, target *Player) (PeekResult, error) {
	if err := m.checkReactor(s, RoleSpy, ActionPeek); err != nil {
		return PeekResult{}, err
	}
	if err := m.member(target); err != nil {
		return PeekResult{}, err
	}
	if m.flags.peek {
		return PeekResult{}, errAlreadyConsumed(string(ActionPeek))
	}
	if target == s {
		return PeekResult{}, errSelfTarget("peek at")
	}
	if !target.alive {
		return PeekResult{}, errPlayerEliminated(target.name)
	}
	if m.arrestBlocked[target.id] {
		return PeekResult{}, errInvalidAction(target.name + " is already blocked from arresting.")
	}

	res := PeekResult{Target: target.name, Coins: target.coins, Role: target.role}
	s.lastPeek = &res
	m.arrestBlocked[target.id] = true
	m.flags.peek = true
	m.log("[Spy] %s peeked at %s: coins=%d, role=%s", s.name, target.name, target.coins, target.role)
	return res, nil
}

// Invest pays three coins and receives six. Baron only.
func (m *Match) Invest(b *Player) error {
	if err := m.checkTurn(b); err != nil {
		return err
	}
	if err := requireRole(b, RoleBaron, ActionInvest); err != nil {
		return err
	}
	if err := checkForcedCoup(b); err != nil {
		return err
	}
	if b.coins < InvestMinimum {
		return errInsufficientFunds(InvestMinimum, b.coins)
	}

	if err := b.setCoins(b.coins + InvestPayout); err != nil {
		return err
	}
	m.recordAction(b, ActionInvest, nil)
	m.advance()
	return nil
}
