package nakama

import (
	"fmt"
	"strings"

	"coup/internal/app"
	"coup/internal/domain"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

var labelMarshal = protojson.MarshalOptions{EmitUnpopulated: true}

// marshalPayload encodes a wire payload as protojson. Values must be
// structpb-compatible: scalars, []interface{} and map[string]interface{}.
func marshalPayload(fields map[string]interface{}) ([]byte, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return protojson.Marshal(s)
}

// decodeCommand reads an OpAction message: {"action": "...", "target": "..."}.
func decodeCommand(data []byte) (app.Command, error) {
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(data, s); err != nil {
		return app.Command{}, fmt.Errorf("decode action: %w", err)
	}
	fields := s.GetFields()
	action := strings.TrimSpace(fields["action"].GetStringValue())
	if action == "" {
		return app.Command{}, fmt.Errorf("decode action: missing action")
	}
	return app.Command{
		Action: domain.ActionKind(action),
		Target: strings.TrimSpace(fields["target"].GetStringValue()),
	}, nil
}

func playersToList(players []domain.PlayerView) []interface{} {
	out := make([]interface{}, 0, len(players))
	for _, p := range players {
		out = append(out, map[string]interface{}{
			"name":       p.Name,
			"role":       string(p.Role),
			"seat":       p.Seat,
			"coins":      p.Coins,
			"alive":      p.Alive,
			"sanctioned": p.Sanctioned,
		})
	}
	return out
}

func coinsToMap(coins map[string]int) map[string]interface{} {
	out := make(map[string]interface{}, len(coins))
	for name, c := range coins {
		out[name] = c
	}
	return out
}

// eventMessage maps an app event to its op code and wire fields.
func eventMessage(ev app.Event) (int64, map[string]interface{}, error) {
	switch ev.Kind {
	case app.EventGameStarted:
		p := ev.Payload.(app.GameStartedPayload)
		return OpGameStarted, map[string]interface{}{
			"players": playersToList(p.Players),
			"turn":    p.Turn,
		}, nil
	case app.EventActionPerformed:
		p := ev.Payload.(app.ActionPerformedPayload)
		return OpActionPerformed, map[string]interface{}{
			"actor":  p.Actor,
			"action": string(p.Action),
			"target": p.Target,
			"log":    p.Log,
			"coins":  coinsToMap(p.Coins),
		}, nil
	case app.EventTurnChanged:
		p := ev.Payload.(app.TurnChangedPayload)
		return OpTurnChanged, map[string]interface{}{
			"previous": p.Previous,
			"turn":     p.Turn,
			"round":    p.Round,
		}, nil
	case app.EventPeekResult:
		p := ev.Payload.(app.PeekResultPayload)
		return OpPeekResult, map[string]interface{}{
			"spy":    p.Spy,
			"target": p.Result.Target,
			"coins":  p.Result.Coins,
			"role":   string(p.Result.Role),
		}, nil
	case app.EventPlayerEliminated:
		p := ev.Payload.(app.PlayerEliminatedPayload)
		return OpPlayerEliminated, map[string]interface{}{"name": p.Name, "by": p.By}, nil
	case app.EventPlayerRevived:
		p := ev.Payload.(app.PlayerRevivedPayload)
		return OpPlayerRevived, map[string]interface{}{"name": p.Name, "by": p.By}, nil
	case app.EventGameEnded:
		p := ev.Payload.(app.GameEndedPayload)
		return OpGameEnded, map[string]interface{}{"winner": p.Winner, "forced": p.Forced}, nil
	default:
		return 0, nil, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
}

// matchLabel renders the label used by quick_match queries.
func matchLabel(open int, state string) (string, error) {
	s, err := structpb.NewStruct(map[string]interface{}{
		MatchLabelKeyOpenSeats: open,
		"state":                state,
		"game":                 GameLabel,
	})
	if err != nil {
		return "", err
	}
	b, err := labelMarshal.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
