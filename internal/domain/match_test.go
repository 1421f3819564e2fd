package domain

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func newTestMatch(t *testing.T, roles ...Role) (*Match, []*Player) {
	t.Helper()
	m := NewMatch(nil)
	players := make([]*Player, len(roles))
	for i, r := range roles {
		p, err := m.AddPlayer(fmt.Sprintf("P%d", i+1), string(r))
		if err != nil {
			t.Fatalf("add player %d: %v", i+1, err)
		}
		players[i] = p
	}
	return m, players
}

func expectKind(t *testing.T, err error, want Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := KindOf(err); got != want {
		t.Fatalf("error kind = %s (%v), want %s", got, err, want)
	}
}

func mustTurn(t *testing.T, m *Match) string {
	t.Helper()
	name, err := m.Turn()
	if err != nil {
		t.Fatalf("turn: %v", err)
	}
	return name
}

func TestAddPlayer(t *testing.T) {
	m := NewMatch(nil)
	if _, err := m.AddPlayer("Ana", "Spy"); err != nil {
		t.Fatalf("add player: %v", err)
	}

	tests := []struct {
		name string
		pn   string
		role string
		want Kind
	}{
		{name: "duplicate name", pn: "Ana", role: "Baron", want: KindDuplicatePlayerName},
		{name: "unknown role", pn: "Bo", role: "Jester", want: KindInvalidAction},
		{name: "empty name", pn: "  ", role: "Spy", want: KindInvalidAction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.AddPlayer(tt.pn, tt.role)
			expectKind(t, err, tt.want)
		})
	}

	if got := m.Players(); !reflect.DeepEqual(got, []string{"Ana"}) {
		t.Fatalf("players = %v, want [Ana]", got)
	}

	m.EndGame()
	_, err := m.AddPlayer("Cy", "Judge")
	expectKind(t, err, KindGameAlreadyOver)
}

func TestTurnOnEmptyMatch(t *testing.T) {
	m := NewMatch(nil)
	_, err := m.Turn()
	expectKind(t, err, KindInvalidAction)
	expectKind(t, m.NextTurn(), KindInvalidAction)
}

func TestPhaseTransitions(t *testing.T) {
	m, ps := newTestMatch(t, RoleSpy, RoleSpy)
	if m.Phase() != PhaseSetup {
		t.Fatalf("phase = %s, want setup", m.Phase())
	}
	if err := m.Gather(ps[0]); err != nil {
		t.Fatalf("gather: %v", err)
	}
	if m.Phase() != PhaseInProgress {
		t.Fatalf("phase = %s, want in_progress", m.Phase())
	}
	m.EndGame()
	if m.Phase() != PhaseOver {
		t.Fatalf("phase = %s, want over", m.Phase())
	}
}

func TestNextTurnSkipsEliminatedSeats(t *testing.T) {
	m, ps := newTestMatch(t, RoleSpy, RoleSpy, RoleSpy)
	ps[1].alive = false

	if err := m.NextTurn(); err != nil {
		t.Fatalf("next turn: %v", err)
	}
	if got := mustTurn(t, m); got != "P3" {
		t.Fatalf("turn = %s, want P3", got)
	}
	if m.Round() != 0 {
		t.Fatalf("round = %d, want 0", m.Round())
	}

	if err := m.NextTurn(); err != nil {
		t.Fatalf("next turn: %v", err)
	}
	if got := mustTurn(t, m); got != "P1" {
		t.Fatalf("turn = %s, want P1", got)
	}
	if m.Round() != 1 {
		t.Fatalf("round = %d, want 1 after wrap", m.Round())
	}
}

func TestRoundWrapClearsSanctions(t *testing.T) {
	m, ps := newTestMatch(t, RoleSpy, RoleSpy)
	ps[0].coins = 3

	if err := m.Sanction(ps[0], ps[1]); err != nil {
		t.Fatalf("sanction: %v", err)
	}
	if !ps[1].IsSanctioned() {
		t.Fatalf("P2 should be sanctioned")
	}
	expectKind(t, m.Gather(ps[1]), KindInvalidAction)
	expectKind(t, m.Tax(ps[1]), KindInvalidAction)

	if err := m.NextTurn(); err != nil {
		t.Fatalf("next turn: %v", err)
	}
	if ps[1].IsSanctioned() {
		t.Fatalf("sanction should be cleared when the round wraps")
	}
}

func TestScenarioCoupEndsTwoPlayerMatch(t *testing.T) {
	m, ps := newTestMatch(t, RoleSpy, RoleSpy)
	ps[0].coins = 7

	if _, err := m.Winner(); !errors.Is(err, ErrGameNotOver) {
		t.Fatalf("winner before end: %v, want game not over", err)
	}

	if err := m.Coup(ps[0], ps[1]); err != nil {
		t.Fatalf("coup: %v", err)
	}
	if ps[1].IsAlive() {
		t.Fatalf("P2 should be eliminated")
	}
	if ps[0].Coins() != 0 {
		t.Fatalf("P1 coins = %d, want 0", ps[0].Coins())
	}
	want := []PendingCoup{{Attacker: ps[0].ID(), Target: ps[1].ID()}}
	if got := m.PendingCoups(); !reflect.DeepEqual(got, want) {
		t.Fatalf("pending coups = %+v, want %+v", got, want)
	}
	if !m.IsGameOver() {
		t.Fatalf("game should be over")
	}
	winner, err := m.Winner()
	if err != nil {
		t.Fatalf("winner: %v", err)
	}
	if winner != "P1" {
		t.Fatalf("winner = %s, want P1", winner)
	}
	expectKind(t, m.NextTurn(), KindGameAlreadyOver)
}

func TestGameOverRejectsEveryAction(t *testing.T) {
	m, ps := newTestMatch(t, RoleBaron, RoleGovernor, RoleSpy, RoleJudge, RoleGeneral)
	for _, p := range ps {
		p.coins = 8
	}
	m.EndGame()

	calls := map[string]func() error{
		"gather":   func() error { return m.Gather(ps[0]) },
		"tax":      func() error { return m.Tax(ps[0]) },
		"bribe":    func() error { return m.Bribe(ps[0]) },
		"arrest":   func() error { return m.Arrest(ps[0], ps[1]) },
		"sanction": func() error { return m.Sanction(ps[0], ps[1]) },
		"coup":     func() error { return m.Coup(ps[0], ps[1]) },
		"invest":   func() error { return m.Invest(ps[0]) },
		"undo_tax": func() error { return m.UndoTax(ps[1], ps[0]) },
		"peek": func() error {
			_, err := m.PeekAndDisable(ps[2], ps[0])
			return err
		},
		"undo_bribe": func() error { return m.UndoBribe(ps[3], ps[0]) },
		"undo_coup":  func() error { return m.UndoCoup(ps[4], ps[0]) },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			expectKind(t, call(), KindGameAlreadyOver)
		})
	}
	for _, p := range ps {
		if p.Coins() != 8 {
			t.Fatalf("%s coins = %d, want 8", p.Name(), p.Coins())
		}
	}
}

func TestResetWipesState(t *testing.T) {
	m, ps := newTestMatch(t, RoleSpy, RoleSpy)
	ps[0].coins = 7
	if err := m.Coup(ps[0], ps[1]); err != nil {
		t.Fatalf("coup: %v", err)
	}

	m.Reset()

	if m.IsGameOver() || len(m.Players()) != 0 || len(m.PendingCoups()) != 0 || m.TurnNumber() != 0 {
		t.Fatalf("reset left state behind: over=%v players=%v", m.IsGameOver(), m.Players())
	}
	if _, err := m.AddPlayer("P1", "Spy"); err != nil {
		t.Fatalf("re-adding a name after reset: %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m, ps := newTestMatch(t, RoleSpy, RoleSpy)
	c := m.Clone()

	cp, err := c.Player("P1")
	if err != nil {
		t.Fatalf("clone lookup: %v", err)
	}
	if err := c.Gather(cp); err != nil {
		t.Fatalf("gather on clone: %v", err)
	}

	if ps[0].Coins() != 0 || mustTurn(t, m) != "P1" {
		t.Fatalf("original changed by clone: coins=%d turn=%s", ps[0].Coins(), mustTurn(t, m))
	}
	// players of the original are not members of the clone
	expectKind(t, c.Gather(ps[1]), KindPlayerNotFound)
}

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Debug(string, ...interface{}) {}
func (l *recordingLogger) Info(format string, v ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}
func (l *recordingLogger) Warn(string, ...interface{})  {}
func (l *recordingLogger) Error(string, ...interface{}) {}

func TestActionLogLine(t *testing.T) {
	logger := &recordingLogger{}
	m := NewMatch(logger)
	g, _ := m.AddPlayer("Ana", "Governor")
	o, _ := m.AddPlayer("Bo", "Spy")
	o.coins = 2

	if err := m.Tax(g); err != nil {
		t.Fatalf("tax: %v", err)
	}
	if err := m.Arrest(o, g); err != nil {
		t.Fatalf("arrest: %v", err)
	}

	want := "[arrest] performed by Bo (coins: 3) on Ana (coins: 2)"
	found := false
	for _, line := range logger.lines {
		if line == want {
			found = true
		}
	}
	if !found {
		t.Fatalf("log lines %q missing %q", logger.lines, want)
	}
	if m.nameOf("missing") != "unknown" {
		t.Fatalf("unknown id should degrade to placeholder")
	}
}
