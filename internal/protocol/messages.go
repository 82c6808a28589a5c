// Package protocol defines the JSON message shapes exchanged over the
// client control websocket (§6). Messages are tagged by a "type" field and
// decoded in two passes: an envelope carrying only "type", then a
// type-specific struct once the kind is known.
package protocol

import "encoding/json"

// Client -> server message types.
const (
	TypeSubscribe   = "subscribe"
	TypeUnsubscribe = "unsubscribe"
)

// Server -> client message types.
const (
	TypeSubscribed = "subscribed"
	TypeState      = "state"
	TypeError      = "error"
)

// Envelope is decoded first to dispatch on Type before unmarshaling the
// full message.
type Envelope struct {
	Type string `json:"type"`
}

// Subscribe is sent by a client to bind a connection to a room as a given
// player. Full requests an absolute snapshot on the first state message
// instead of a delta (S4 reconnect scenario).
type Subscribe struct {
	Type     string `json:"type"`
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	Password string `json:"password"`
	Full     bool   `json:"full,omitempty"`
}

// Unsubscribe detaches the connection from its current room without
// closing the socket.
type Unsubscribe struct {
	Type string `json:"type"`
}

// Subscribed acknowledges a successful subscribe.
type Subscribed struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	Full   bool   `json:"full"`
}

// ErrorMessage carries a human-readable failure; the error kind itself is
// not part of the wire shape (§7 kinds are a server-internal taxonomy).
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// State is the tailored per-subscriber broadcast payload. UsePackedDeltas
// is part of the wire shape but the server never sets it: every
// NationView.TerritoryDeltaForClient is sent in the paired-array form
// required by §9, and internal/delta.Pack is not used on this path.
type State struct {
	Type             string       `json:"type"`
	TickCount        uint64       `json:"tickCount"`
	RoomName         string       `json:"roomName"`
	RoomCreator      string       `json:"roomCreator"`
	GameState        GameState    `json:"gameState"`
	UsePackedDeltas  bool         `json:"usePackedDeltas,omitempty"`
	WinningNation    *WinningInfo `json:"winningNation,omitempty"`
}

// WinningInfo is attached to the final state message of a room that just
// ended by victory (S5).
type WinningInfo struct {
	Owner string `json:"owner"`
}

// GameState wraps the per-nation views included in a state message.
type GameState struct {
	Nations []NationView `json:"nations"`
}

// Coords is the paired-array coordinate representation shared by full
// territory snapshots and delta add/sub sides.
type Coords struct {
	X []int32 `json:"x"`
	Y []int32 `json:"y"`
}

// TerritoryDelta is the add/sub pair describing how a subscriber's prior
// territory snapshot transforms into the current one.
type TerritoryDelta struct {
	Add Coords `json:"add"`
	Sub Coords `json:"sub"`
}

// NationView is the tailored, per-subscriber view of one nation: exactly
// one of Territory or TerritoryDeltaForClient is populated depending on
// whether this broadcast is a full resync or an incremental delta.
type NationView struct {
	Owner                  string          `json:"owner"`
	Status                 string          `json:"status"`
	Population             float64         `json:"population"`
	NationalWill           float64         `json:"nationalWill"`
	Resources              map[string]float64 `json:"resources,omitempty"`
	Territory              *Coords         `json:"territory,omitempty"`
	TerritoryDeltaForClient *TerritoryDelta `json:"territoryDeltaForClient,omitempty"`
}

// ParseEnvelope extracts just the "type" discriminator from a raw client
// message so the hub can dispatch before fully unmarshaling.
func ParseEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	err := json.Unmarshal(data, &env)
	return env, err
}
