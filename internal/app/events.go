package app

import "coup/internal/domain"

// EventKind identifies emitted domain events for Nakama dispatch.
type EventKind string

const (
	EventGameStarted      EventKind = "game_started"
	EventActionPerformed  EventKind = "action_performed"
	EventTurnChanged      EventKind = "turn_changed"
	EventPeekResult       EventKind = "peek_result"
	EventPlayerEliminated EventKind = "player_eliminated"
	EventPlayerRevived    EventKind = "player_revived"
	EventGameEnded        EventKind = "game_ended"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // player names; empty means broadcast
}

type GameStartedPayload struct {
	Players []domain.PlayerView
	Turn    string
}

type ActionPerformedPayload struct {
	Actor  string
	Action domain.ActionKind
	Target string
	Log    string
	Coins  map[string]int
}

type TurnChangedPayload struct {
	Previous string
	Turn     string
	Round    int
}

type PeekResultPayload struct {
	Spy    string
	Result domain.PeekResult
}

type PlayerEliminatedPayload struct {
	Name string
	By   string
}

type PlayerRevivedPayload struct {
	Name string
	By   string
}

type GameEndedPayload struct {
	Winner string
	Forced bool
}
