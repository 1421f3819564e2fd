package domain

import (
	"fmt"
	"strconv"

	"google.golang.org/grpc/codes"
)

// Kind is a machine-readable error kind. The set is closed.
type Kind string

const (
	KindNotYourTurn         Kind = "NOT_YOUR_TURN"
	KindInvalidAction       Kind = "INVALID_ACTION"
	KindGameAlreadyOver     Kind = "GAME_ALREADY_OVER"
	KindGameNotOver         Kind = "GAME_NOT_OVER"
	KindPlayerNotFound      Kind = "PLAYER_NOT_FOUND"
	KindDuplicatePlayerName Kind = "DUPLICATE_PLAYER_NAME"
	KindPlayerEliminated    Kind = "PLAYER_ELIMINATED"
	KindSelfTarget          Kind = "SELF_TARGET"
	KindInsufficientFunds   Kind = "INSUFFICIENT_FUNDS"
	KindCoupRequired        Kind = "COUP_REQUIRED"
	KindUndoNotPermitted    Kind = "UNDO_NOT_PERMITTED"
	KindAlreadyConsumed     Kind = "ALREADY_CONSUMED"
)

// GRPCCode maps an error kind to the status code reported to clients.
func (k Kind) GRPCCode() codes.Code {
	switch k {
	case KindInvalidAction,
		KindSelfTarget,
		KindDuplicatePlayerName:
		return codes.InvalidArgument

	case KindNotYourTurn,
		KindGameAlreadyOver,
		KindGameNotOver,
		KindPlayerEliminated,
		KindInsufficientFunds,
		KindCoupRequired,
		KindUndoNotPermitted,
		KindAlreadyConsumed:
		return codes.FailedPrecondition

	case KindPlayerNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}

// Error is the error type returned by every failing engine operation.
type Error struct {
	Kind     Kind
	Message  string
	Metadata map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target has the same kind, so errors.Is works against the
// Err* sentinels regardless of the message.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Sentinels for errors.Is comparisons.
var (
	ErrNotYourTurn         = &Error{Kind: KindNotYourTurn, Message: "Not your turn."}
	ErrInvalidAction       = &Error{Kind: KindInvalidAction, Message: "Invalid action."}
	ErrGameAlreadyOver     = &Error{Kind: KindGameAlreadyOver, Message: "Game is already over."}
	ErrGameNotOver         = &Error{Kind: KindGameNotOver, Message: "Game is not over yet."}
	ErrPlayerNotFound      = &Error{Kind: KindPlayerNotFound, Message: "Player not found."}
	ErrDuplicatePlayerName = &Error{Kind: KindDuplicatePlayerName, Message: "Player name already taken."}
	ErrPlayerEliminated    = &Error{Kind: KindPlayerEliminated, Message: "Player is eliminated."}
	ErrSelfTarget          = &Error{Kind: KindSelfTarget, Message: "Cannot target yourself."}
	ErrInsufficientFunds   = &Error{Kind: KindInsufficientFunds, Message: "Not enough coins."}
	ErrCoupRequired        = &Error{Kind: KindCoupRequired, Message: "Coup required."}
	ErrUndoNotPermitted    = &Error{Kind: KindUndoNotPermitted, Message: "Undo not permitted."}
	ErrAlreadyConsumed     = &Error{Kind: KindAlreadyConsumed, Message: "Ability already used this round."}
)

// KindOf returns the kind of a domain error, or "" for any other error.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return ""
}

func errNotYourTurn(name string) *Error {
	return &Error{
		Kind:     KindNotYourTurn,
		Message:  "It's not your turn.",
		Metadata: map[string]string{"player": name},
	}
}

func errInvalidAction(reason string) *Error {
	return &Error{
		Kind:    KindInvalidAction,
		Message: "Invalid action: " + reason,
	}
}

func errGameAlreadyOver() *Error {
	return &Error{Kind: KindGameAlreadyOver, Message: "Game is already over."}
}

func errGameNotOver() *Error {
	return &Error{Kind: KindGameNotOver, Message: "Game is not over yet."}
}

func errPlayerNotFound(name string) *Error {
	return &Error{
		Kind:     KindPlayerNotFound,
		Message:  "Player not found: " + name,
		Metadata: map[string]string{"player": name},
	}
}

func errDuplicatePlayerName(name string) *Error {
	return &Error{
		Kind:     KindDuplicatePlayerName,
		Message:  "Player name already exists: " + name,
		Metadata: map[string]string{"player": name},
	}
}

func errPlayerEliminated(name string) *Error {
	return &Error{
		Kind:     KindPlayerEliminated,
		Message:  "Player is already out: " + name,
		Metadata: map[string]string{"player": name},
	}
}

func errSelfTarget(action string) *Error {
	return &Error{
		Kind:     KindSelfTarget,
		Message:  "Cannot " + action + " yourself.",
		Metadata: map[string]string{"action": action},
	}
}

func errInsufficientFunds(required, actual int) *Error {
	return &Error{
		Kind:    KindInsufficientFunds,
		Message: fmt.Sprintf("Not enough coins. Required: %d, but have: %d", required, actual),
		Metadata: map[string]string{
			"required": strconv.Itoa(required),
			"actual":   strconv.Itoa(actual),
		},
	}
}

func errCoupRequired() *Error {
	return &Error{
		Kind:    KindCoupRequired,
		Message: fmt.Sprintf("Player has %d or more coins and must perform a coup.", ForcedCoupThreshold),
	}
}

func errUndoNotPermitted(role Role, undo string) *Error {
	return &Error{
		Kind:     KindUndoNotPermitted,
		Message:  fmt.Sprintf("%s cannot perform %s.", role, undo),
		Metadata: map[string]string{"role": string(role), "undo": undo},
	}
}

func errAlreadyConsumed(ability string) *Error {
	return &Error{
		Kind:     KindAlreadyConsumed,
		Message:  "Already used this round: " + ability,
		Metadata: map[string]string{"ability": ability},
	}
}
