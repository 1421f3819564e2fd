package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"coup/internal/app/seatgrant"
	"coup/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/grpc/codes"
)

// QuickMatchResponse is the payload returned to clients when requesting a lobby-capable match.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// CreateMatchResponse is returned by create_match.
type CreateMatchResponse struct {
	MatchID string `json:"match_id"`
}

// SeatGrantRequest asks for a signed seat in a match.
type SeatGrantRequest struct {
	MatchID string `json:"match_id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
}

// SeatGrantResponse carries the token to pass as join metadata.
type SeatGrantResponse struct {
	Token string `json:"token"`
}

// RegisterRPCs registers Nakama RPC endpoints. seat_grant is only served
// when grants are configured.
func RegisterRPCs(initializer runtime.Initializer, maxPlayers int, grants *seatgrant.Service) error {
	if err := initializer.RegisterRpc(RpcQuickMatch, newRpcQuickMatch(maxPlayers)); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcCreateMatch, rpcCreateMatch); err != nil {
		return err
	}
	if grants != nil {
		if err := initializer.RegisterRpc(RpcSeatGrant, newRpcSeatGrant(grants)); err != nil {
			return err
		}
	}
	return nil
}

func newRpcQuickMatch(maxPlayers int) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		// Find any lobby of our game with a free seat.
		query := fmt.Sprintf("+label.%s:>=1 +label.game:%s +label.state:%s", MatchLabelKeyOpenSeats, GameLabel, LabelStateLobby)

		limit := 10
		authoritative := true

		minSize := 1
		maxSize := maxPlayers - 1

		matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, query)
		if err != nil {
			logger.Error("MatchList error: %v", err)
			return "", err
		}

		if len(matches) > 0 {
			resp := QuickMatchResponse{MatchID: matches[0].MatchId, IsNew: false}
			b, _ := json.Marshal(resp)
			return string(b), nil
		}

		// Seat and owner assignment happen in MatchJoin.
		matchID, err := nk.MatchCreate(ctx, MatchNameCoup, map[string]interface{}{})
		if err != nil {
			logger.Error("MatchCreate error: %v", err)
			return "", err
		}

		resp := QuickMatchResponse{MatchID: matchID, IsNew: true}
		b, _ := json.Marshal(resp)
		return string(b), nil
	}
}

func rpcCreateMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	matchID, err := nk.MatchCreate(ctx, MatchNameCoup, map[string]interface{}{})
	if err != nil {
		logger.Error("rpcCreateMatch [User:%s]: Failed to create match: %v", userID, err)
		return "", err
	}
	logger.Info("rpcCreateMatch [User:%s]: Created new match %s", userID, matchID)

	b, _ := json.Marshal(CreateMatchResponse{MatchID: matchID})
	return string(b), nil
}

func newRpcSeatGrant(grants *seatgrant.Service) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if !ok || userID == "" {
			return "", runtime.NewError("authentication required", int(codes.Unauthenticated))
		}

		var req SeatGrantRequest
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("invalid payload", int(codes.InvalidArgument))
		}
		req.MatchID = strings.TrimSpace(req.MatchID)
		req.Name = strings.TrimSpace(req.Name)
		if req.MatchID == "" || req.Name == "" {
			return "", runtime.NewError("match_id and name are required", int(codes.InvalidArgument))
		}
		if req.Role != "" {
			if _, err := domain.ParseRole(req.Role); err != nil {
				return "", runtime.NewError(err.Error(), int(codes.InvalidArgument))
			}
		}

		token, err := grants.Issue(req.MatchID, userID, req.Name, req.Role)
		if err != nil {
			logger.Error("rpcSeatGrant [User:%s]: Failed to issue grant: %v", userID, err)
			return "", runtime.NewError("failed to issue seat grant", int(codes.Internal))
		}

		b, _ := json.Marshal(SeatGrantResponse{Token: token})
		return string(b), nil
	}
}
