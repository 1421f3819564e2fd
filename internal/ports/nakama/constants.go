package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"
	// RpcCreateMatch always creates a new match.
	RpcCreateMatch = "create_match"
	// RpcSeatGrant issues a signed seat grant for a match.
	RpcSeatGrant = "seat_grant"

	// MatchNameCoup is the authoritative match handler name registered with Nakama.
	MatchNameCoup = "coup_match"

	// GameLabel identifies this game in match labels.
	GameLabel = "coup"

	// MatchLabelKeyOpenSeats is the label key holding the open seat count.
	MatchLabelKeyOpenSeats = "open"
)

// Match label states.
const (
	LabelStateLobby   = "lobby"
	LabelStatePlaying = "playing"
	LabelStateEnded   = "ended"
)

// Match metadata keys read on join.
const (
	MetadataGrant = "grant"
	MetadataName  = "name"
	MetadataRole  = "role"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame  int64 = 1
	OpAction     int64 = 2
	OpEndGame    int64 = 3
	OpResetMatch int64 = 4

	// Server -> Client events
	OpMatchState       int64 = 101
	OpGameStarted      int64 = 102
	OpActionPerformed  int64 = 103
	OpTurnChanged      int64 = 104
	OpPeekResult       int64 = 105 // send privately
	OpPlayerEliminated int64 = 106
	OpPlayerRevived    int64 = 107
	OpGameEnded        int64 = 108
	OpGameError        int64 = 109
)

// autoFillTarget is how many seats bot auto-fill occupies in a solo lobby.
const autoFillTarget = 4
