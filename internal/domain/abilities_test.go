package domain

import (
	"errors"
	"testing"
)

func TestUndoTax(t *testing.T) {
	m, ps := newTestMatch(t, RoleGovernor, RoleGovernor, RoleSpy)
	g, o, s := ps[0], ps[1], ps[2]

	if err := m.Tax(g); err != nil {
		t.Fatalf("tax: %v", err)
	}
	if g.Coins() != 3 {
		t.Fatalf("governor tax = %d, want 3", g.Coins())
	}
	if err := m.Tax(o); err != nil {
		t.Fatalf("tax: %v", err)
	}
	if err := m.Tax(s); err != nil {
		t.Fatalf("tax: %v", err)
	}

	if err := m.UndoTax(g, o); err != nil {
		t.Fatalf("undo tax: %v", err)
	}
	if o.Coins() != 0 {
		t.Fatalf("undone governor coins = %d, want 0", o.Coins())
	}
	if _, ok := m.LastAction(o); ok {
		t.Fatalf("undone action should be cleared")
	}
	if !m.AbilityUsed(ActionUndoTax) {
		t.Fatalf("undo tax flag should be set")
	}

	expectKind(t, m.UndoTax(g, s), KindAlreadyConsumed)
	if s.Coins() != 2 {
		t.Fatalf("spy coins = %d, want 2", s.Coins())
	}
	// the governor still owns the turn; undo is a reaction
	if got := mustTurn(t, m); got != "P1" {
		t.Fatalf("turn = %s, want P1", got)
	}
}

func TestUndoTaxPreconditions(t *testing.T) {
	m, ps := newTestMatch(t, RoleGovernor, RoleSpy, RoleSpy)
	g, a, b := ps[0], ps[1], ps[2]

	if err := m.Tax(g); err != nil {
		t.Fatalf("tax: %v", err)
	}
	if err := m.Gather(a); err != nil {
		t.Fatalf("gather: %v", err)
	}

	expectKind(t, m.UndoTax(g, a), KindUndoNotPermitted)
	expectKind(t, m.UndoTax(g, g), KindSelfTarget)
	expectKind(t, m.UndoTax(a, g), KindUndoNotPermitted)

	if err := m.Tax(b); err != nil {
		t.Fatalf("tax: %v", err)
	}
	b.coins = 1
	expectKind(t, m.UndoTax(g, b), KindInsufficientFunds)
	if m.AbilityUsed(ActionUndoTax) {
		t.Fatalf("failed undo must not consume the round flag")
	}
}

func TestUndoTaxExpiresAfterOneRound(t *testing.T) {
	m, ps := newTestMatch(t, RoleGovernor, RoleSpy)
	g, s := ps[0], ps[1]

	if err := m.Tax(s); err == nil {
		t.Fatalf("spy acted out of turn")
	}
	if err := m.Gather(g); err != nil {
		t.Fatalf("gather: %v", err)
	}
	if err := m.Tax(s); err != nil {
		t.Fatalf("tax: %v", err)
	}
	if !m.CanUndo(s, ActionTax) {
		t.Fatalf("tax should be fresh")
	}
	if err := m.Gather(g); err != nil {
		t.Fatalf("gather: %v", err)
	}
	if m.CanUndo(s, ActionTax) {
		t.Fatalf("tax should expire after a full round")
	}
	expectKind(t, m.UndoTax(g, s), KindUndoNotPermitted)
}

func TestUndoBribe(t *testing.T) {
	m, ps := newTestMatch(t, RoleSpy, RoleJudge, RoleJudge)
	s, j, j2 := ps[0], ps[1], ps[2]
	s.coins = 4
	j.coins = 4

	expectKind(t, m.UndoBribe(j, s), KindUndoNotPermitted)

	if err := m.Bribe(s); err != nil {
		t.Fatalf("bribe: %v", err)
	}
	if err := m.UndoBribe(j, s); err != nil {
		t.Fatalf("undo bribe: %v", err)
	}
	if _, ok := m.LastAction(s); ok {
		t.Fatalf("bribe should be cleared")
	}
	if s.Coins() != 0 {
		t.Fatalf("bribe cost must not be refunded, coins = %d", s.Coins())
	}
	if got := mustTurn(t, m); got != "P2" {
		t.Fatalf("turn = %s, want P2", got)
	}

	if err := m.Bribe(j); err != nil {
		t.Fatalf("bribe: %v", err)
	}
	expectKind(t, m.UndoBribe(j2, j), KindAlreadyConsumed)
	expectKind(t, m.UndoBribe(s, j), KindUndoNotPermitted)
}

func TestUndoBribeSelfTarget(t *testing.T) {
	m, ps := newTestMatch(t, RoleJudge, RoleSpy)
	ps[0].coins = 4
	if err := m.Bribe(ps[0]); err != nil {
		t.Fatalf("bribe: %v", err)
	}
	expectKind(t, m.UndoBribe(ps[0], ps[0]), KindSelfTarget)
}

func TestPeekAndDisable(t *testing.T) {
	m, ps := newTestMatch(t, RoleSpy, RoleMerchant, RoleSpy)
	spy, merchant, other := ps[0], ps[1], ps[2]
	merchant.coins = 2
	spy.coins = 2

	res, err := m.PeekAndDisable(other, merchant)
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	if res.Coins != 2 || res.Role != RoleMerchant || res.Target != "P2" {
		t.Fatalf("peek result = %+v", res)
	}
	if last := other.LastPeek(); last == nil || *last != res {
		t.Fatalf("last peek = %+v, want %+v", last, res)
	}
	if !m.IsArrestBlocked(merchant) {
		t.Fatalf("target should be arrest-blocked")
	}
	if got := mustTurn(t, m); got != "P1" {
		t.Fatalf("peek used the turn, now %s", got)
	}

	_, err = m.PeekAndDisable(spy, other)
	expectKind(t, err, KindAlreadyConsumed)

	if err := m.Gather(spy); err != nil {
		t.Fatalf("gather: %v", err)
	}
	expectKind(t, m.Arrest(merchant, spy), KindInvalidAction)
	if err := m.Gather(merchant); err != nil {
		t.Fatalf("gather: %v", err)
	}
	if m.IsArrestBlocked(merchant) {
		t.Fatalf("block should clear once the blocked player's turn ends")
	}
}

func TestPeekPreconditions(t *testing.T) {
	m, ps := newTestMatch(t, RoleSpy, RoleSpy, RoleBaron)
	ps[2].alive = false

	_, err := m.PeekAndDisable(ps[0], ps[0])
	expectKind(t, err, KindSelfTarget)
	_, err = m.PeekAndDisable(ps[0], ps[2])
	expectKind(t, err, KindPlayerEliminated)

	m.arrestBlocked[ps[1].id] = true
	_, err = m.PeekAndDisable(ps[0], ps[1])
	expectKind(t, err, KindInvalidAction)
	if m.AbilityUsed(ActionPeek) {
		t.Fatalf("failed peek must not consume the round flag")
	}
}

func TestPeekResetsEachRound(t *testing.T) {
	m, ps := newTestMatch(t, RoleSpy, RoleSpy)

	if _, err := m.PeekAndDisable(ps[0], ps[1]); err != nil {
		t.Fatalf("peek: %v", err)
	}
	if err := m.Gather(ps[0]); err != nil {
		t.Fatalf("gather: %v", err)
	}
	if err := m.Gather(ps[1]); err != nil {
		t.Fatalf("gather: %v", err)
	}
	if m.AbilityUsed(ActionPeek) {
		t.Fatalf("peek flag should reset when the round wraps")
	}
	if _, err := m.PeekAndDisable(ps[0], ps[1]); err != nil {
		t.Fatalf("peek in new round: %v", err)
	}
}

func TestInvest(t *testing.T) {
	m, ps := newTestMatch(t, RoleBaron, RoleSpy, RoleBaron)
	b := ps[0]

	b.coins = 2
	err := m.Invest(b)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want insufficient funds", err)
	}
	if b.Coins() != 2 {
		t.Fatalf("coins = %d, want 2", b.Coins())
	}

	b.coins = 3
	if err := m.Invest(b); err != nil {
		t.Fatalf("invest: %v", err)
	}
	if b.Coins() != 6 {
		t.Fatalf("coins = %d, want 6", b.Coins())
	}
	if got := mustTurn(t, m); got != "P2" {
		t.Fatalf("turn = %s, want P2", got)
	}

	ps[1].coins = 5
	expectKind(t, m.Invest(ps[1]), KindUndoNotPermitted)
}

func TestCoupUndoRoundTrip(t *testing.T) {
	m, ps := newTestMatch(t, RoleSpy, RoleSpy, RoleGeneral, RoleSpy)
	a, b, gen, c := ps[0], ps[1], ps[2], ps[3]
	a.coins = 7
	b.coins = 7
	gen.coins = 10
	c.coins = 2

	if err := m.Coup(a, c); err != nil {
		t.Fatalf("coup: %v", err)
	}
	if err := m.Coup(b, a); err != nil {
		t.Fatalf("coup: %v", err)
	}
	if len(m.PendingCoups()) != 2 {
		t.Fatalf("pending coups = %d, want 2", len(m.PendingCoups()))
	}

	if err := m.UndoCoup(gen, c); err != nil {
		t.Fatalf("undo coup: %v", err)
	}
	if !c.IsAlive() || c.Coins() != 2 {
		t.Fatalf("revived target alive=%v coins=%d, want alive with 2", c.IsAlive(), c.Coins())
	}
	if gen.Coins() != 5 {
		t.Fatalf("general coins = %d, want 5", gen.Coins())
	}
	for _, pc := range m.PendingCoups() {
		if pc.Target == c.ID() {
			t.Fatalf("pending coup on revived target remains")
		}
	}

	expectKind(t, m.UndoCoup(gen, c), KindInvalidAction)
	expectKind(t, m.UndoCoup(gen, a), KindAlreadyConsumed)
	if a.IsAlive() || gen.Coins() != 5 {
		t.Fatalf("rejected undo changed state")
	}
}

func TestUndoCoupPreconditions(t *testing.T) {
	m, ps := newTestMatch(t, RoleSpy, RoleGeneral, RoleSpy)
	a, gen, c := ps[0], ps[1], ps[2]
	a.coins = 7
	gen.coins = 4

	if err := m.Coup(a, c); err != nil {
		t.Fatalf("coup: %v", err)
	}
	expectKind(t, m.UndoCoup(gen, c), KindInsufficientFunds)
	expectKind(t, m.UndoCoup(a, c), KindUndoNotPermitted)

	gen.coins = 5
	if err := m.Gather(gen); err != nil {
		t.Fatalf("gather: %v", err)
	}
	// the attacker's turn has come around; the veto window is closed
	if len(m.PendingCoups()) != 0 {
		t.Fatalf("pending coups = %+v, want none", m.PendingCoups())
	}
	expectKind(t, m.UndoCoup(gen, c), KindInvalidAction)
}

func TestGeneralRevivesItself(t *testing.T) {
	m, ps := newTestMatch(t, RoleSpy, RoleGeneral, RoleSpy)
	ps[0].coins = 7
	ps[1].coins = 5

	if err := m.Coup(ps[0], ps[1]); err != nil {
		t.Fatalf("coup: %v", err)
	}
	if err := m.UndoCoup(ps[1], ps[1]); err != nil {
		t.Fatalf("self revive: %v", err)
	}
	if !ps[1].IsAlive() {
		t.Fatalf("general should be alive")
	}
}

func TestMerchantTurnStartBonus(t *testing.T) {
	tests := []struct {
		name  string
		coins int
		want  int
	}{
		{name: "below threshold", coins: 2, want: 2},
		{name: "at threshold", coins: 3, want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ps := newTestMatch(t, RoleSpy, RoleMerchant)
			ps[1].coins = tt.coins
			if err := m.Gather(ps[0]); err != nil {
				t.Fatalf("gather: %v", err)
			}
			if ps[1].Coins() != tt.want {
				t.Fatalf("merchant coins = %d, want %d", ps[1].Coins(), tt.want)
			}
		})
	}
}

func TestUndoExpiresWithEliminatedSeats(t *testing.T) {
	m, ps := newTestMatch(t, RoleGovernor, RoleSpy, RoleSpy, RoleSpy)
	g, s := ps[0], ps[1]
	ps[2].alive = false
	ps[3].alive = false

	if err := m.Gather(g); err != nil {
		t.Fatalf("gather: %v", err)
	}
	if err := m.Tax(s); err != nil {
		t.Fatalf("tax: %v", err)
	}
	if !m.CanUndo(s, ActionTax) {
		t.Fatalf("tax should be fresh right after it")
	}
	if err := m.Gather(g); err != nil {
		t.Fatalf("gather: %v", err)
	}

	if m.CanUndo(s, ActionTax) {
		t.Fatalf("tax is a full round old, round=%d turn=%d", m.Round(), m.TurnNumber())
	}
	expectKind(t, m.UndoTax(g, s), KindUndoNotPermitted)
	if s.Coins() != 2 {
		t.Fatalf("spy coins = %d, want 2", s.Coins())
	}
}

func TestUndoBribeAfterTurnPassedKeepsTurn(t *testing.T) {
	m, ps := newTestMatch(t, RoleSpy, RoleSpy, RoleJudge)
	s, j := ps[0], ps[2]
	s.coins = 4

	if err := m.Bribe(s); err != nil {
		t.Fatalf("bribe: %v", err)
	}
	if err := m.NextTurn(); err != nil {
		t.Fatalf("next turn: %v", err)
	}
	if err := m.UndoBribe(j, s); err != nil {
		t.Fatalf("undo bribe: %v", err)
	}
	if got := mustTurn(t, m); got != "P2" {
		t.Fatalf("turn = %s, want P2 to keep its turn", got)
	}
}

func TestRoundAbilitiesResetAfterWrap(t *testing.T) {
	must := func(t *testing.T, err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	tests := []struct {
		name   string
		roles  []Role
		kind   ActionKind
		first  func(t *testing.T, m *Match, ps []*Player)
		second func(t *testing.T, m *Match, ps []*Player)
	}{
		{
			name:  "undo tax",
			roles: []Role{RoleGovernor, RoleSpy, RoleSpy},
			kind:  ActionUndoTax,
			first: func(t *testing.T, m *Match, ps []*Player) {
				must(t, m.Gather(ps[0]))
				must(t, m.Tax(ps[1]))
				must(t, m.UndoTax(ps[0], ps[1]))
			},
			second: func(t *testing.T, m *Match, ps []*Player) {
				must(t, m.Tax(ps[2]))
				must(t, m.UndoTax(ps[0], ps[2]))
			},
		},
		{
			name:  "undo bribe",
			roles: []Role{RoleSpy, RoleJudge, RoleSpy},
			kind:  ActionUndoBribe,
			first: func(t *testing.T, m *Match, ps []*Player) {
				ps[0].coins = 8
				must(t, m.Bribe(ps[0]))
				must(t, m.UndoBribe(ps[1], ps[0]))
				must(t, m.Gather(ps[1]))
				ps[2].coins = 4
				must(t, m.Bribe(ps[2]))
				expectKind(t, m.UndoBribe(ps[1], ps[2]), KindAlreadyConsumed)
			},
			second: func(t *testing.T, m *Match, ps []*Player) {
				must(t, m.Gather(ps[2]))
				must(t, m.Bribe(ps[0]))
				must(t, m.UndoBribe(ps[1], ps[0]))
			},
		},
		{
			name:  "undo coup",
			roles: []Role{RoleSpy, RoleGeneral, RoleSpy, RoleSpy},
			kind:  ActionUndoCoup,
			first: func(t *testing.T, m *Match, ps []*Player) {
				ps[0].coins = 7
				ps[1].coins = 9
				must(t, m.Coup(ps[0], ps[3]))
				must(t, m.UndoCoup(ps[1], ps[3]))
			},
			second: func(t *testing.T, m *Match, ps []*Player) {
				must(t, m.Gather(ps[1]))
				ps[2].coins = 7
				must(t, m.Coup(ps[2], ps[3]))
				must(t, m.UndoCoup(ps[1], ps[3]))
				if !ps[3].IsAlive() {
					t.Fatalf("target should be revived again")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ps := newTestMatch(t, tt.roles...)
			tt.first(t, m, ps)
			if !m.AbilityUsed(tt.kind) || m.Round() != 0 {
				t.Fatalf("after first use: used=%v round=%d", m.AbilityUsed(tt.kind), m.Round())
			}
			tt.second(t, m, ps)
			if m.Round() != 1 {
				t.Fatalf("round = %d, want 1 after the cursor wrapped", m.Round())
			}
			if !m.AbilityUsed(tt.kind) {
				t.Fatalf("second use in the new round should set the flag again")
			}
		})
	}
}
