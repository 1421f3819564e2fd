package app

import (
	"errors"
	"math/rand"
	"time"

	"coup/internal/domain"
)

// Service contains Coup use-cases operating on domain state.
type Service struct {
	rng    *rand.Rand
	logger domain.Logger
}

// NewService constructs a Service with provided rng or a time-seeded default.
// The logger is handed to every match the service starts.
func NewService(rng *rand.Rand, logger domain.Logger) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng, logger: logger}
}

var (
	ErrTooFewPlayers  = errors.New("not enough players to start")
	ErrUnknownAction  = errors.New("unknown action")
	ErrTargetRequired = errors.New("action requires a target")
	ErrNoMatch        = errors.New("no match in progress")
)

// Seat is a player taking part in a new match, in seat order.
type Seat struct {
	Name string
	Role domain.Role
}

// Command is one request from a player: an action and an optional target name.
type Command struct {
	Action domain.ActionKind
	Target string
}

// RandomRole picks a role for a player that joined without choosing one.
func (s *Service) RandomRole() domain.Role {
	return domain.Roles[s.rng.Intn(len(domain.Roles))]
}

// StartGame builds a new match with the given seats.
func (s *Service) StartGame(seats []Seat) (*domain.Match, []Event, error) {
	if len(seats) < MinPlayersToStartGame {
		return nil, nil, ErrTooFewPlayers
	}

	match := domain.NewMatch(s.logger)
	for _, seat := range seats {
		if _, err := match.AddPlayer(seat.Name, string(seat.Role)); err != nil {
			return nil, nil, err
		}
	}

	turn, err := match.Turn()
	if err != nil {
		return nil, nil, err
	}
	return match, []Event{{
		Kind:    EventGameStarted,
		Payload: GameStartedPayload{Players: match.Roster(), Turn: turn},
	}}, nil
}

// Act applies cmd on behalf of the named player and reports what changed.
// A failed command leaves the match untouched and returns no events.
func (s *Service) Act(match *domain.Match, actorName string, cmd Command) ([]Event, error) {
	if match == nil {
		return nil, ErrNoMatch
	}

	before := match.Roster()
	prevTurn, _ := match.Turn()
	prevRound := match.Round()

	peek, err := Apply(match, actorName, cmd)
	if err != nil {
		return nil, err
	}
	actor, _ := match.Player(actorName)

	events := []Event{{
		Kind: EventActionPerformed,
		Payload: ActionPerformedPayload{
			Actor:  actor.Name(),
			Action: cmd.Action,
			Target: cmd.Target,
			Log:    match.LastLog(),
			Coins:  coinsByName(match.Roster()),
		},
	}}

	if peek != nil {
		events = append(events, Event{
			Kind:       EventPeekResult,
			Payload:    PeekResultPayload{Spy: actor.Name(), Result: *peek},
			Recipients: []string{actor.Name()},
		})
	}

	after := match.Roster()
	for i := range after {
		switch {
		case before[i].Alive && !after[i].Alive:
			events = append(events, Event{
				Kind:    EventPlayerEliminated,
				Payload: PlayerEliminatedPayload{Name: after[i].Name, By: actor.Name()},
			})
		case !before[i].Alive && after[i].Alive:
			events = append(events, Event{
				Kind:    EventPlayerRevived,
				Payload: PlayerRevivedPayload{Name: after[i].Name, By: actor.Name()},
			})
		}
	}

	if match.IsGameOver() {
		winner, _ := match.Winner()
		events = append(events, Event{
			Kind:    EventGameEnded,
			Payload: GameEndedPayload{Winner: winner},
		})
		return events, nil
	}

	if turn, _ := match.Turn(); turn != prevTurn || match.Round() != prevRound {
		events = append(events, Event{
			Kind:    EventTurnChanged,
			Payload: TurnChangedPayload{Previous: prevTurn, Turn: turn, Round: match.Round()},
		})
	}
	return events, nil
}

// SkipTurn hands the turn on without an action. Used when the current player
// left the match or ran out of legal moves.
func (s *Service) SkipTurn(match *domain.Match) ([]Event, error) {
	if match == nil {
		return nil, ErrNoMatch
	}
	prevTurn, _ := match.Turn()
	if err := match.NextTurn(); err != nil {
		return nil, err
	}
	if match.IsGameOver() {
		winner, _ := match.Winner()
		return []Event{{Kind: EventGameEnded, Payload: GameEndedPayload{Winner: winner}}}, nil
	}
	turn, _ := match.Turn()
	return []Event{{
		Kind:    EventTurnChanged,
		Payload: TurnChangedPayload{Previous: prevTurn, Turn: turn, Round: match.Round()},
	}}, nil
}

// EndGame forces the match to end.
func (s *Service) EndGame(match *domain.Match) ([]Event, error) {
	if match == nil {
		return nil, ErrNoMatch
	}
	if match.IsGameOver() {
		return nil, domain.ErrGameAlreadyOver
	}
	match.EndGame()
	winner, _ := match.Winner()
	return []Event{{
		Kind:    EventGameEnded,
		Payload: GameEndedPayload{Winner: winner, Forced: true},
	}}, nil
}

// Snapshot is the observable state of a match.
type Snapshot struct {
	Phase        domain.Phase
	Turn         string
	Round        int
	Players      []domain.PlayerView
	Winner       string
	PendingCoups []PendingCoupView
	Used         map[domain.ActionKind]bool
}

// PendingCoupView names the players of a vetoable coup.
type PendingCoupView struct {
	Attacker string
	Target   string
}

// Snapshot captures the state observers render.
func (s *Service) Snapshot(match *domain.Match) Snapshot {
	if match == nil {
		return Snapshot{Phase: domain.PhaseSetup}
	}
	snap := Snapshot{
		Phase:   match.Phase(),
		Round:   match.Round(),
		Players: match.Roster(),
		Used:    make(map[domain.ActionKind]bool),
	}
	snap.Turn, _ = match.Turn()
	snap.Winner, _ = match.Winner()
	for _, pc := range match.PendingCoups() {
		view := PendingCoupView{}
		if p, err := match.PlayerByID(pc.Attacker); err == nil {
			view.Attacker = p.Name()
		}
		if p, err := match.PlayerByID(pc.Target); err == nil {
			view.Target = p.Name()
		}
		snap.PendingCoups = append(snap.PendingCoups, view)
	}
	for _, kind := range []domain.ActionKind{domain.ActionUndoTax, domain.ActionUndoBribe, domain.ActionPeek, domain.ActionUndoCoup} {
		snap.Used[kind] = match.AbilityUsed(kind)
	}
	return snap
}

// Apply runs cmd against match without producing events. Bots use it on
// cloned matches to test candidate moves.
func Apply(match *domain.Match, actorName string, cmd Command) (*domain.PeekResult, error) {
	actor, err := match.Player(actorName)
	if err != nil {
		return nil, err
	}

	var target *domain.Player
	if needsTarget(cmd.Action) {
		if cmd.Target == "" {
			return nil, ErrTargetRequired
		}
		if target, err = match.Player(cmd.Target); err != nil {
			return nil, err
		}
	}

	switch cmd.Action {
	case domain.ActionGather:
		return nil, match.Gather(actor)
	case domain.ActionTax:
		return nil, match.Tax(actor)
	case domain.ActionBribe:
		return nil, match.Bribe(actor)
	case domain.ActionArrest:
		return nil, match.Arrest(actor, target)
	case domain.ActionSanction:
		return nil, match.Sanction(actor, target)
	case domain.ActionCoup:
		return nil, match.Coup(actor, target)
	case domain.ActionInvest:
		return nil, match.Invest(actor)
	case domain.ActionUndoTax:
		return nil, match.UndoTax(actor, target)
	case domain.ActionUndoBribe:
		return nil, match.UndoBribe(actor, target)
	case domain.ActionUndoCoup:
		return nil, match.UndoCoup(actor, target)
	case domain.ActionPeek:
		res, err := match.PeekAndDisable(actor, target)
		if err != nil {
			return nil, err
		}
		return &res, nil
	default:
		return nil, ErrUnknownAction
	}
}

func needsTarget(kind domain.ActionKind) bool {
	switch kind {
	case domain.ActionArrest, domain.ActionSanction, domain.ActionCoup,
		domain.ActionUndoTax, domain.ActionUndoBribe, domain.ActionUndoCoup, domain.ActionPeek:
		return true
	default:
		return false
	}
}

func coinsByName(roster []domain.PlayerView) map[string]int {
	out := make(map[string]int, len(roster))
	for _, p := range roster {
		out[p.Name] = p.Coins
	}
	return out
}
