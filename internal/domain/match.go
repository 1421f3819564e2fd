package domain

import (
	"fmt"
	"strings"
)

// PendingCoup is an elimination a General may still veto. It stays pending
// until the attacker's next turn begins.
type PendingCoup struct {
	Attacker PlayerID
	Target   PlayerID
}

type recordedAction struct {
	kind ActionKind
	turn int
}

type arrestMemo struct {
	attacker PlayerID
	target   PlayerID
}

// roundFlags are one-shot abilities shared by every holder of the role.
// Only resetRound clears them.
type roundFlags struct {
	undoTax   bool
	undoBribe bool
	peek      bool
	undoCoup  bool
}

// Match is the authoritative state of one game: roster, turn cursor and the
// ledgers the undo subsystem reads.
type Match struct {
	logger Logger

	players []*Player
	byName  map[string]*Player
	byID    map[PlayerID]*Player

	cursor int
	over   bool
	turn   int
	round  int

	lastActions   map[PlayerID]recordedAction
	lastArrest    *arrestMemo
	arrestBlocked map[PlayerID]bool
	pendingCoups  []PendingCoup
	flags         roundFlags

	lastLog string
}

// NewMatch creates an empty match. A nil logger discards log lines.
func NewMatch(logger Logger) *Match {
	if logger == nil {
		logger = noopLogger{}
	}
	m := &Match{logger: logger}
	m.init()
	m.log("[Game] Initialized new game.")
	return m
}

func (m *Match) init() {
	m.players = nil
	m.byName = make(map[string]*Player)
	m.byID = make(map[PlayerID]*Player)
	m.cursor = 0
	m.over = false
	m.turn = 0
	m.round = 0
	m.lastActions = make(map[PlayerID]recordedAction)
	m.lastArrest = nil
	m.arrestBlocked = make(map[PlayerID]bool)
	m.pendingCoups = nil
	m.flags = roundFlags{}
}

// AddPlayer seats a new player with the given role name at the end of the roster.
func (m *Match) AddPlayer(name, role string) (*Player, error) {
	if err := m.ensureActive(); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errInvalidAction("Player name is required.")
	}
	if _, taken := m.byName[name]; taken {
		return nil, errDuplicatePlayerName(name)
	}
	r, err := ParseRole(role)
	if err != nil {
		return nil, err
	}

	p := newPlayer(name, r, len(m.players))
	m.players = append(m.players, p)
	m.byName[name] = p
	m.byID[p.id] = p
	m.log("[Game] Added player: %s (%s)", name, r)
	return p, nil
}

// Player returns the player with the given display name, alive or not.
func (m *Match) Player(name string) (*Player, error) {
	p, ok := m.byName[name]
	if !ok {
		return nil, errPlayerNotFound(name)
	}
	return p, nil
}

// PlayerByID returns the player with the given id.
func (m *Match) PlayerByID(id PlayerID) (*Player, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, errPlayerNotFound(string(id))
	}
	return p, nil
}

// Turn returns the name of the player whose turn it is.
func (m *Match) Turn() (string, error) {
	p, err := m.Current()
	if err != nil {
		return "", err
	}
	return p.name, nil
}

// Current returns the player whose turn it is.
func (m *Match) Current() (*Player, error) {
	if len(m.players) == 0 {
		return nil, errInvalidAction("No players in game.")
	}
	return m.players[m.cursor], nil
}

// Players returns the names of alive players in seat order.
func (m *Match) Players() []string {
	var alive []string
	for _, p := range m.players {
		if p.alive {
			alive = append(alive, p.name)
		}
	}
	return alive
}

// Roster returns a snapshot of every seated player, eliminated ones included.
func (m *Match) Roster() []PlayerView {
	out := make([]PlayerView, 0, len(m.players))
	for _, p := range m.players {
		out = append(out, p.view())
	}
	return out
}

// IsGameOver reports whether the match reached its terminal state.
func (m *Match) IsGameOver() bool {
	return m.over
}

// Phase derives the lifecycle stage from the match state.
func (m *Match) Phase() Phase {
	switch {
	case m.over:
		return PhaseOver
	case m.turn == 0 && len(m.lastActions) == 0:
		return PhaseSetup
	default:
		return PhaseInProgress
	}
}

// Winner returns the last player standing.
func (m *Match) Winner() (string, error) {
	alive := m.Players()
	if len(alive) != 1 {
		return "", errGameNotOver()
	}
	return alive[0], nil
}

// TurnNumber is the count of turn advances since the match started.
func (m *Match) TurnNumber() int { return m.turn }

// Round is the count of completed rounds.
func (m *Match) Round() int { return m.round }

// LastLog returns the most recent action or lifecycle line. Turn bookkeeping
// is logged but not kept.
func (m *Match) LastLog() string { return m.lastLog }

// PendingCoups returns the coups that may still be vetoed, oldest first.
func (m *Match) PendingCoups() []PendingCoup {
	out := make([]PendingCoup, len(m.pendingCoups))
	copy(out, m.pendingCoups)
	return out
}

// IsCoupPendingOn reports whether a vetoable coup targets p.
func (m *Match) IsCoupPendingOn(p *Player) bool {
	for _, c := range m.pendingCoups {
		if c.Target == p.id {
			return true
		}
	}
	return false
}

// IsArrestBlocked reports whether p may not arrest this turn.
func (m *Match) IsArrestBlocked(p *Player) bool {
	return m.arrestBlocked[p.id]
}

// LastAction returns the most recent recorded action of p.
func (m *Match) LastAction(p *Player) (ActionKind, bool) {
	a, ok := m.lastActions[p.id]
	return a.kind, ok
}

// CanUndo reports whether p's most recent action is of the expected kind and
// still fresh, i.e. recorded less than one full round of turns ago. A round
// is as many turns as there are seats still in play.
func (m *Match) CanUndo(p *Player, expected ActionKind) bool {
	a, ok := m.lastActions[p.id]
	if !ok || a.kind != expected {
		return false
	}
	return m.turn-a.turn < m.aliveCount()
}

// AbilityUsed reports whether the round-scoped one-shot for kind is consumed.
func (m *Match) AbilityUsed(kind ActionKind) bool {
	switch kind {
	case ActionUndoTax:
		return m.flags.undoTax
	case ActionUndoBribe:
		return m.flags.undoBribe
	case ActionPeek:
		return m.flags.peek
	case ActionUndoCoup:
		return m.flags.undoCoup
	default:
		return false
	}
}

// NextTurn hands the turn to the next alive seat.
func (m *Match) NextTurn() error {
	if err := m.ensureActive(); err != nil {
		return err
	}
	if len(m.players) == 0 {
		return errInvalidAction("No players in game.")
	}
	m.advance()
	return nil
}

// EndGame forces the match into its terminal state.
func (m *Match) EndGame() {
	m.over = true
	m.log("[Game] Game has ended.")
}

// Reset wipes the roster and every ledger back to an empty match.
func (m *Match) Reset() {
	m.init()
	m.log("[Game] Reset complete.")
}

// Clone returns an independent copy that logs nowhere. Player pointers of the
// copy are distinct; look them up by name or id.
func (m *Match) Clone() *Match {
	c := &Match{logger: noopLogger{}}
	c.init()
	for _, p := range m.players {
		cp := *p
		if p.lastPeek != nil {
			peek := *p.lastPeek
			cp.lastPeek = &peek
		}
		c.players = append(c.players, &cp)
		c.byName[cp.name] = &cp
		c.byID[cp.id] = &cp
	}
	c.cursor = m.cursor
	c.over = m.over
	c.turn = m.turn
	c.round = m.round
	for id, a := range m.lastActions {
		c.lastActions[id] = a
	}
	if m.lastArrest != nil {
		memo := *m.lastArrest
		c.lastArrest = &memo
	}
	for id, blocked := range m.arrestBlocked {
		c.arrestBlocked[id] = blocked
	}
	c.pendingCoups = m.PendingCoups()
	c.flags = m.flags
	c.lastLog = m.lastLog
	return c
}

func (m *Match) ensureActive() error {
	if m.over {
		return errGameAlreadyOver()
	}
	return nil
}

// member rejects players that were not seated in this match.
func (m *Match) member(p *Player) error {
	if p == nil {
		return errPlayerNotFound("<nil>")
	}
	if seated, ok := m.byID[p.id]; !ok || seated != p {
		return errPlayerNotFound(p.name)
	}
	return nil
}

// checkActor validates a caller that does not need the turn.
func (m *Match) checkActor(p *Player) error {
	if err := m.ensureActive(); err != nil {
		return err
	}
	return m.member(p)
}

// checkTurn validates a caller that must own the current turn.
func (m *Match) checkTurn(p *Player) error {
	if err := m.checkActor(p); err != nil {
		return err
	}
	current, err := m.Current()
	if err != nil {
		return err
	}
	if current != p {
		return errNotYourTurn(p.name)
	}
	return nil
}

func (m *Match) checkTarget(p, target *Player, action string) error {
	if err := m.member(target); err != nil {
		return err
	}
	if target == p {
		return errSelfTarget(action)
	}
	return nil
}

func checkForcedCoup(p *Player) error {
	if p.coins >= ForcedCoupThreshold {
		return errCoupRequired()
	}
	return nil
}

func (m *Match) aliveCount() int {
	n := 0
	for _, p := range m.players {
		if p.alive {
			n++
		}
	}
	return n
}

// advance moves the cursor and runs the turn-boundary bookkeeping.
func (m *Match) advance() {
	if m.aliveCount() <= 1 {
		m.over = true
		if winner, err := m.Winner(); err == nil {
			m.logger.Info("[Game] Winner is: %s", winner)
		}
		return
	}

	prev := m.players[m.cursor]
	n := len(m.players)
	idx := m.cursor
	wrapped := false
	for {
		idx = (idx + 1) % n
		if idx == 0 {
			wrapped = true
		}
		if m.players[idx].alive {
			break
		}
	}
	m.cursor = idx
	m.turn++
	current := m.players[idx]

	kept := m.pendingCoups[:0]
	for _, c := range m.pendingCoups {
		if c.Attacker != current.id {
			kept = append(kept, c)
		}
	}
	m.pendingCoups = kept

	delete(m.arrestBlocked, prev.id)

	if wrapped {
		m.resetRound()
	}

	m.logger.Debug("[Turn] %s ended. %s begins.", prev.name, current.name)

	if bonus := current.role.onTurnStartBonus(current.coins); bonus > 0 {
		current.coins += bonus
		m.logger.Info("[%s] %s gained %d bonus coin at start of turn. Total: %d", current.role, current.name, bonus, current.coins)
	}
}

func (m *Match) resetRound() {
	m.round++
	m.flags = roundFlags{}
	for _, p := range m.players {
		p.sanctioned = false
	}
	m.logger.Debug("[Round] Round %d begins.", m.round+1)
}

func (m *Match) recordAction(p *Player, kind ActionKind, target *Player) {
	m.lastActions[p.id] = recordedAction{kind: kind, turn: m.turn}

	line := fmt.Sprintf("[%s] performed by %s (coins: %d)", kind, p.name, p.coins)
	if target != nil {
		line += fmt.Sprintf(" on %s (coins: %d)", m.nameOf(target.id), target.coins)
	}
	m.log("%s", line)
}

func (m *Match) cancelLastAction(p *Player) {
	delete(m.lastActions, p.id)
	m.log("[Undo] Cancelled last action of: %s", m.nameOf(p.id))
}

// nameOf resolves a display name for log lines; unknown ids degrade to a placeholder.
func (m *Match) nameOf(id PlayerID) string {
	if p, ok := m.byID[id]; ok {
		return p.name
	}
	return "unknown"
}

func (m *Match) log(format string, v ...interface{}) {
	m.lastLog = fmt.Sprintf(format, v...)
	m.logger.Info("%s", m.lastLog)
}
