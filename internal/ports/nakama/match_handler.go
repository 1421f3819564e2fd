package nakama

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"coup/internal/app"
	"coup/internal/app/seatgrant"
	"coup/internal/bot"
	"coup/internal/config"
	"coup/internal/domain"
	"coup/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/grpc/codes"
)

// seatRequest is what a join attempt resolved for a user before the seat is assigned.
type seatRequest struct {
	Name string
	Role domain.Role
}

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Seats     []string               `json:"seats"`      // User IDs by seat, empty string means seat is empty
	Names     map[string]string      `json:"names"`      // UserId -> name played under
	Roles     map[string]domain.Role `json:"roles"`      // UserId -> chosen role, random at start when absent
	OwnerSeat int                    `json:"owner_seat"` // Seat index of the match owner
	Tick      int64                  `json:"tick"`       // Current tick of the match

	Presences map[string]runtime.Presence `json:"-"` // Map UserId -> Presence for targeted messaging
	Pending   map[string]seatRequest      `json:"-"` // Accepted join attempts awaiting MatchJoin
	App       *app.Service                `json:"-"`
	Match     *domain.Match               `json:"-"` // nil while in the lobby
	Config    *config.Config              `json:"-"`
	Grants    *seatgrant.Service          `json:"-"` // nil when seat grants are disabled
	Accounts  ports.AccountPort           `json:"-"`

	BotWaitUntil         int64                 `json:"bot_wait_until"`          // Tick when the bot should act
	LastSinglePlayerTick int64                 `json:"last_single_player_tick"` // Tick when a single player started waiting
	Bots                 map[string]*bot.Agent `json:"-"`                       // Agents by seat user id, including stand-ins for departed humans
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	return len(ms.Seats) - ms.GetOpenSeatsCount()
}

// GetHumanPlayerCount counts connected human players.
func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if isConnectedHuman(seat, ms.Presences) {
			count++
		}
	}
	return count
}

// inGame reports whether a match is being played right now.
func (ms *MatchState) inGame() bool {
	return ms.Match != nil && !ms.Match.IsGameOver()
}

func (ms *MatchState) seatOf(userID string) int {
	for i, seat := range ms.Seats {
		if seat != "" && seat == userID {
			return i
		}
	}
	return -1
}

// userIDForName maps a seat name back to the user holding it.
func (ms *MatchState) userIDForName(name string) (string, bool) {
	for userID, n := range ms.Names {
		if n == name {
			return userID, true
		}
	}
	return "", false
}

// nameTaken reports whether name is used by anyone other than userID.
func (ms *MatchState) nameTaken(name, userID string) bool {
	for id, n := range ms.Names {
		if n == name && id != userID {
			return true
		}
	}
	for id, req := range ms.Pending {
		if req.Name == name && id != userID {
			return true
		}
	}
	return false
}

func (ms *MatchState) labelState() string {
	switch {
	case ms.Match == nil:
		return LabelStateLobby
	case ms.Match.IsGameOver():
		return LabelStateEnded
	default:
		return LabelStatePlaying
	}
}

// isBotUserId reports whether the given user id represents a bot seat.
func isBotUserId(userId string) bool {
	return bot.IsBot(userId)
}

func isConnectedHuman(userID string, presences map[string]runtime.Presence) bool {
	if userID == "" || isBotUserId(userID) {
		return false
	}
	_, ok := presences[userID]
	return ok
}

// findFirstHumanSeat returns the first seat index with a connected human or -1 if none exist.
func findFirstHumanSeat(seats []string, presences map[string]runtime.Presence) int {
	for i, userId := range seats {
		if isConnectedHuman(userId, presences) {
			return i
		}
	}
	return -1
}

// shouldTerminateNoHumans returns true when no human is connected to the match.
func shouldTerminateNoHumans(seats []string, presences map[string]runtime.Presence) bool {
	return findFirstHumanSeat(seats, presences) == -1
}

type matchHandler struct {
	cfg      *config.Config
	grants   *seatgrant.Service
	accounts ports.AccountPort
}

// newMatchHandler builds a handler. A nil accounts port falls back to the
// Nakama account API at MatchInit.
func newMatchHandler(cfg *config.Config, grants *seatgrant.Service, accounts ports.AccountPort) *matchHandler {
	return &matchHandler{cfg: cfg, grants: grants, accounts: accounts}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	accounts := mh.accounts
	if accounts == nil {
		accounts = NewNakamaAccountAdapter(nk)
	}

	state := &MatchState{
		Seats:     make([]string, mh.cfg.MaxPlayers),
		Names:     make(map[string]string),
		Roles:     make(map[string]domain.Role),
		OwnerSeat: -1,
		Tick:      time.Now().Unix(),
		Presences: make(map[string]runtime.Presence),
		Pending:   make(map[string]seatRequest),
		App:       app.NewService(nil, logger),
		Config:    mh.cfg,
		Grants:    mh.grants,
		Accounts:  accounts,
		Bots:      make(map[string]*bot.Agent),
	}

	label, err := matchLabel(state.GetOpenSeatsCount(), state.labelState())
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	userID := presence.GetUserId()

	// Seated players may always come back, including mid-game.
	if matchState.seatOf(userID) >= 0 {
		return matchState, true, ""
	}
	if matchState.inGame() {
		return matchState, false, "Match in progress"
	}

	if matchState.GetOpenSeatsCount() <= 0 {
		hasBot := false
		for _, seat := range matchState.Seats {
			if isBotUserId(seat) {
				hasBot = true
				break
			}
		}
		if !hasBot {
			return matchState, false, "Match full"
		}
	}

	req, err := mh.resolveSeatRequest(ctx, matchState, presence, metadata)
	if err != nil {
		logger.Warn("MatchJoinAttempt: Rejecting %s: %v", userID, err)
		return matchState, false, err.Error()
	}
	if matchState.nameTaken(req.Name, userID) {
		return matchState, false, domain.ErrDuplicatePlayerName.Error()
	}

	matchState.Pending[userID] = req
	return matchState, true, ""
}

// resolveSeatRequest reads the seat name and role from a verified grant when
// grants are enabled, otherwise from join metadata and the user's account.
func (mh *matchHandler) resolveSeatRequest(ctx context.Context, state *MatchState, presence runtime.Presence, metadata map[string]string) (seatRequest, error) {
	var req seatRequest
	name, role := metadata[MetadataName], metadata[MetadataRole]

	if state.Grants != nil {
		matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
		grant, err := state.Grants.Verify(metadata[MetadataGrant], matchID, presence.GetUserId())
		if err != nil {
			return req, err
		}
		name, role = grant.Name, grant.Role
	}

	if role != "" {
		r, err := domain.ParseRole(role)
		if err != nil {
			return req, err
		}
		req.Role = r
	}

	if name == "" && state.Accounts != nil {
		if displayName, err := state.Accounts.DisplayName(ctx, presence.GetUserId()); err == nil {
			name = displayName
		}
	}
	if name == "" {
		name = presence.GetUsername()
	}
	if name == "" {
		return req, errors.New("player name is required")
	}
	req.Name = name
	return req, nil
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p

		if seat := matchState.seatOf(userID); seat >= 0 {
			// Back from a disconnect: the stand-in agent hands the seat back.
			if _, standIn := matchState.Bots[userID]; standIn {
				delete(matchState.Bots, userID)
				logger.Info("MatchJoin: User %s reclaimed seat %d from its stand-in.", userID, seat)
			}
			continue
		}

		req, ok := matchState.Pending[userID]
		delete(matchState.Pending, userID)
		if !ok {
			req = seatRequest{Name: p.GetUsername()}
		}

		assigned := -1
		for i, seatUserId := range matchState.Seats {
			if seatUserId == "" {
				assigned = i
				break
			}
		}
		if assigned < 0 && matchState.Match == nil {
			for i, seatUserId := range matchState.Seats {
				if isBotUserId(seatUserId) {
					logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserId, userID, i)
					matchState.freeSeat(i)
					assigned = i
					break
				}
			}
		}
		if assigned < 0 {
			logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", userID)
			continue
		}

		matchState.Seats[assigned] = userID
		matchState.Names[userID] = req.Name
		if req.Role != "" {
			matchState.Roles[userID] = req.Role
		}
		logger.Debug("MatchJoin: User %s seated at %d as %s.", userID, assigned, req.Name)
	}

	mh.ensureOwner(matchState, logger)
	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)

	return matchState
}

// freeSeat clears a seat and everything keyed by its occupant.
func (ms *MatchState) freeSeat(i int) {
	userID := ms.Seats[i]
	ms.Seats[i] = ""
	delete(ms.Names, userID)
	delete(ms.Roles, userID)
	delete(ms.Bots, userID)
}

// ensureOwner keeps the owner seat on a connected human.
func (mh *matchHandler) ensureOwner(state *MatchState, logger runtime.Logger) {
	if state.OwnerSeat >= 0 && state.OwnerSeat < len(state.Seats) && isConnectedHuman(state.Seats[state.OwnerSeat], state.Presences) {
		return
	}
	state.OwnerSeat = findFirstHumanSeat(state.Seats, state.Presences)
	if state.OwnerSeat >= 0 {
		logger.Debug("Owner set to human seat %d.", state.OwnerSeat)
	}
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)
		delete(matchState.Pending, userID)

		seat := matchState.seatOf(userID)
		if seat < 0 {
			continue
		}
		if !matchState.inGame() {
			matchState.freeSeat(seat)
			logger.Debug("MatchLeave: User %s left, seat %d freed.", userID, seat)
			continue
		}

		// Mid-game the seat stays in play under a stand-in agent.
		agent, err := bot.NewAgent(bot.BotIdentity{UserID: userID, DisplayName: matchState.Names[userID]})
		if err != nil {
			logger.Error("MatchLeave: Failed to create stand-in for %s: %v", userID, err)
			continue
		}
		matchState.Bots[userID] = agent
		logger.Info("MatchLeave: User %s left mid-game, a bot now plays seat %d.", userID, seat)
	}

	if shouldTerminateNoHumans(matchState.Seats, matchState.Presences) {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.ensureOwner(matchState, logger)
	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpAction:
			mh.handleAction(ctx, matchState, dispatcher, logger, msg)
		case OpEndGame:
			mh.handleEndGame(ctx, matchState, dispatcher, logger, msg)
		case OpResetMatch:
			mh.handleReset(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	mh.processBots(ctx, matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// 1. Auto-fill a solo lobby with bots after a delay.
	if state.Match == nil && state.Config.BotsEnabled {
		if state.GetHumanPlayerCount() == 1 {
			if state.LastSinglePlayerTick == 0 {
				state.LastSinglePlayerTick = state.Tick
				logger.Debug("processBots: Single player detected, starting auto-fill timer.")
			}
			if state.Tick-state.LastSinglePlayerTick >= int64(state.Config.BotAutoFillDelaySeconds) {
				if mh.autoFill(state, logger) {
					mh.updateLabel(state, dispatcher, logger)
					mh.broadcastMatchState(state, dispatcher, logger)
				}
				state.LastSinglePlayerTick = 0
			}
		} else {
			state.LastSinglePlayerTick = 0
		}
	}

	if !state.inGame() {
		state.BotWaitUntil = 0
		return
	}

	// 2. Out-of-turn abilities, at most one per tick.
	for _, userID := range state.Seats {
		agent, ok := state.Bots[userID]
		if !ok {
			continue
		}
		move, ok := agent.React(state.Match)
		if !ok {
			continue
		}
		events, err := state.App.Act(state.Match, agent.Name, move.Command)
		if err != nil {
			logger.Debug("processBots: Reaction %s by %s rejected: %v", move.Command.Action, agent.Name, err)
			continue
		}
		mh.broadcastEvents(ctx, state, dispatcher, logger, events)
		break
	}
	if !state.inGame() {
		return
	}

	// 3. The current turn, after a thinking delay.
	current, err := state.Match.Current()
	if err != nil {
		return
	}
	currentUserID, _ := state.userIDForName(current.Name())
	agent, ok := state.Bots[currentUserID]
	if !ok {
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		minDelay, maxDelay := state.Config.BotMinDelaySeconds, state.Config.BotMaxDelaySeconds
		delay := rand.Intn(maxDelay-minDelay+1) + minDelay
		state.BotWaitUntil = state.Tick + int64(delay)
		logger.Debug("processBots: Bot %s will act at tick %d (current %d)", agent.Name, state.BotWaitUntil, state.Tick)
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	move, err := agent.Play(state.Match)
	if err != nil {
		logger.Error("processBots: Bot %s failed to calculate move: %v", agent.Name, err)
	}

	var events []app.Event
	if !move.Pass {
		events, err = state.App.Act(state.Match, agent.Name, move.Command)
		if err != nil {
			logger.Warn("processBots: Bot %s move %s rejected: %v", agent.Name, move.Command.Action, err)
		}
	}
	if move.Pass || err != nil {
		events, err = state.App.SkipTurn(state.Match)
		if err != nil {
			logger.Error("processBots: Failed to skip turn of %s: %v", agent.Name, err)
			return
		}
	}
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)
}

// autoFill seats bots in empty seats until the lobby reaches its target size.
func (mh *matchHandler) autoFill(state *MatchState, logger runtime.Logger) bool {
	target := autoFillTarget
	if state.Config.MaxPlayers < target {
		target = state.Config.MaxPlayers
	}

	added := false
	for i := range state.Seats {
		if state.GetOccupiedSeatCount() >= target {
			break
		}
		if state.Seats[i] != "" {
			continue
		}
		identity := bot.GetBotIdentity(i)
		botID := identity.UserID
		if state.seatOf(botID) >= 0 {
			continue
		}
		name := identity.Name()
		if state.nameTaken(name, botID) {
			name = fmt.Sprintf("%s %d", name, i+1)
		}
		identity.DisplayName = name

		agent, err := bot.NewAgent(identity)
		if err != nil {
			logger.Error("Failed to create bot agent for %s: %v", botID, err)
			continue
		}
		state.Seats[i] = botID
		state.Names[botID] = name
		state.Bots[botID] = agent
		logger.Info("processBots: Added bot %s (%s) to seat %d", name, botID, i)
		added = true
	}
	return added
}

func (mh *matchHandler) broadcastMatchState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	seats := make([]interface{}, 0, len(state.Seats))
	for i, userID := range state.Seats {
		if userID == "" {
			continue
		}
		_, connected := state.Presences[userID]
		seats = append(seats, map[string]interface{}{
			"seat":      i,
			"user_id":   userID,
			"name":      state.Names[userID],
			"role":      string(state.Roles[userID]),
			"is_owner":  i == state.OwnerSeat,
			"is_bot":    isBotUserId(userID),
			"connected": connected,
		})
	}

	fields := map[string]interface{}{
		"seats":      seats,
		"owner_seat": state.OwnerSeat,
		"tick":       state.Tick,
		"state":      state.labelState(),
	}
	if state.Match != nil {
		snap := state.App.Snapshot(state.Match)
		coups := make([]interface{}, 0, len(snap.PendingCoups))
		for _, pc := range snap.PendingCoups {
			coups = append(coups, map[string]interface{}{"attacker": pc.Attacker, "target": pc.Target})
		}
		used := make(map[string]interface{}, len(snap.Used))
		for kind, v := range snap.Used {
			used[string(kind)] = v
		}
		fields["game"] = map[string]interface{}{
			"phase":         string(snap.Phase),
			"turn":          snap.Turn,
			"round":         snap.Round,
			"winner":        snap.Winner,
			"players":       playersToList(snap.Players),
			"pending_coups": coups,
			"used":          used,
		}
	}

	data, err := marshalPayload(fields)
	if err != nil {
		logger.Error("Failed to marshal match state: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpMatchState, data, nil, nil, true)
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := state.seatOf(senderID)

	logger.Info("StartGame: Request received from %s (seat=%d, owner_seat=%d, occupied=%d)", senderID, senderSeat, state.OwnerSeat, state.GetOccupiedSeatCount())

	if senderSeat < 0 || senderSeat != state.OwnerSeat {
		logger.Warn("StartGame: User %s tried to start game but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		return
	}
	if state.Match != nil {
		mh.sendError(state, dispatcher, logger, senderID, errors.New("a game is already running, reset the match first"))
		return
	}

	activeCount := state.GetOccupiedSeatCount()
	if activeCount < state.Config.MinPlayers {
		logger.Warn("StartGame: Cannot start with %d players. Need at least %d.", activeCount, state.Config.MinPlayers)
		mh.sendError(state, dispatcher, logger, senderID, app.ErrTooFewPlayers)
		return
	}

	seats := make([]app.Seat, 0, activeCount)
	for _, userID := range state.Seats {
		if userID == "" {
			continue
		}
		role, ok := state.Roles[userID]
		if !ok {
			role = state.App.RandomRole()
			state.Roles[userID] = role
		}
		seats = append(seats, app.Seat{Name: state.Names[userID], Role: role})
	}

	match, events, err := state.App.StartGame(seats)
	if err != nil {
		logger.Error("StartGame: Failed to start game: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	state.Match = match
	state.BotWaitUntil = 0

	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)

	logger.Info("StartGame: Game started with %d players.", activeCount)
}

func (mh *matchHandler) handleAction(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	name, seated := state.Names[senderID]
	if !seated {
		logger.Warn("handleAction: User %s is not seated.", senderID)
		return
	}
	if state.Match == nil {
		mh.sendError(state, dispatcher, logger, senderID, app.ErrNoMatch)
		return
	}

	cmd, err := decodeCommand(msg.GetData())
	if err != nil {
		logger.Warn("handleAction: Invalid payload from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}

	events, err := state.App.Act(state.Match, name, cmd)
	if err != nil {
		logger.Warn("handleAction: %s failed to %s: %v", name, cmd.Action, err)
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) handleEndGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.seatOf(senderID) != state.OwnerSeat {
		logger.Warn("EndGame: User %s is not owner.", senderID)
		return
	}
	events, err := state.App.EndGame(state.Match)
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)
}

// handleReset returns a finished match to the lobby. Seats of humans who
// left during the game are released.
func (mh *matchHandler) handleReset(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.seatOf(senderID) != state.OwnerSeat {
		logger.Warn("ResetMatch: User %s is not owner.", senderID)
		return
	}
	if state.Match == nil {
		return
	}
	if !state.Match.IsGameOver() {
		mh.sendError(state, dispatcher, logger, senderID, domain.ErrGameNotOver)
		return
	}

	state.Match = nil
	state.BotWaitUntil = 0
	for i, userID := range state.Seats {
		if userID == "" || isBotUserId(userID) {
			continue
		}
		if _, connected := state.Presences[userID]; !connected {
			state.freeSeat(i)
		}
	}

	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastMatchState(state, dispatcher, logger)
}

func (mh *matchHandler) broadcastEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, fields, err := eventMessage(ev)
	if err != nil {
		logger.Warn("broadcastEvent: %v", err)
		return
	}
	data, err := marshalPayload(fields)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	if ev.Kind == app.EventGameEnded {
		matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
		logger.WithField("match_id", matchID).Info("Game ended: %s", string(data))
		mh.updateLabel(state, dispatcher, logger)
	}

	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, name := range ev.Recipients {
			userID, ok := state.userIDForName(name)
			if !ok {
				continue
			}
			if p, ok := state.Presences[userID]; ok {
				recipients = append(recipients, p)
			}
		}

		// If we had intended recipients but none are connected (e.g. they are bots),
		// we MUST NOT broadcast to everyone else.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, data, recipients, nil, true)
}

// sendError sends a game error to a specific user. Engine errors carry
// their kind and metadata.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, cause error) {
	code := codes.InvalidArgument
	kind := domain.KindOf(cause)
	if kind != "" {
		code = kind.GRPCCode()
	}
	fields := map[string]interface{}{
		"code":    int(code),
		"kind":    string(kind),
		"message": cause.Error(),
	}
	var engineErr *domain.Error
	if errors.As(cause, &engineErr) && len(engineErr.Metadata) > 0 {
		metadata := make(map[string]interface{}, len(engineErr.Metadata))
		for k, v := range engineErr.Metadata {
			metadata[k] = v
		}
		fields["metadata"] = metadata
	}

	data, err := marshalPayload(fields)
	if err != nil {
		logger.Error("Failed to marshal game error: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	dispatcher.BroadcastMessage(OpGameError, data, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := matchLabel(state.GetOpenSeatsCount(), state.labelState())
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminating with %d seconds grace", graceSeconds)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
