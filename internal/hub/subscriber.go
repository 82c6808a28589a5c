package hub

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/s4lvi/historyengine-sub001/internal/protocol"
	"github.com/s4lvi/historyengine-sub001/internal/room"
)

// Keepalive timing, named after niceyeti-tabular's server/server.go: a
// ping every 30s (§4.H), each write bounded by a short deadline so a dead
// socket can't hang the hub.
const (
	pingPeriod     = 30 * time.Second
	writeWait      = 5 * time.Second
	maxMissedPings = 2

	// maxMessageSize bounds an incoming client message; subscribe/unsubscribe
	// frames are tiny, this just guards against abuse.
	maxMessageSize = 4096
)

// AuthFunc authenticates a subscribe request's userId+password against a
// room's current player list.
type AuthFunc func(roomID, userID, password string) bool

// StateLookup fetches a room's current snapshot for the initial
// "subscribed" ack; ok is false if the room does not exist.
type StateLookup func(roomID string) (*room.State, bool)

// Subscriber is one websocket connection bound (at most) to one room at a
// time. It owns its own read and write pumps, mirroring the teacher's
// ClientConnection split.
type Subscriber struct {
	conn *websocket.Conn
	log  *zap.Logger
	hub  *Hub

	auth    AuthFunc
	lookup  StateLookup

	mu        sync.Mutex
	roomID    string
	userID    string
	wantsFull bool
	deltas    *nationDeltaState

	isAlive     atomic.Bool
	missedPings int

	sendChan chan []byte
	done     chan struct{}
	closeOnce sync.Once
}

// NewSubscriber wraps an upgraded websocket connection. Call Serve to run
// its pumps; Serve blocks until the connection closes.
func NewSubscriber(conn *websocket.Conn, h *Hub, auth AuthFunc, lookup StateLookup, log *zap.Logger) *Subscriber {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Subscriber{
		conn:     conn,
		log:      log,
		hub:      h,
		auth:     auth,
		lookup:   lookup,
		deltas:   newNationDeltaState(),
		sendChan: make(chan []byte, 64),
		done:     make(chan struct{}),
	}
	s.isAlive.Store(true)
	return s
}

func (s *Subscriber) userIDSafe() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Serve runs the subscriber's read and write pumps until the connection
// closes, then unregisters it from whatever room it was bound to.
func (s *Subscriber) Serve() {
	go s.writePump()
	s.readPump() // blocks

	s.mu.Lock()
	roomID := s.roomID
	s.mu.Unlock()
	if roomID != "" {
		s.hub.Unregister(roomID, s)
	}
}

// Close terminates the connection. Safe to call more than once.
func (s *Subscriber) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

func (s *Subscriber) readPump() {
	defer s.Close()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetPongHandler(func(string) error {
		s.isAlive.Store(true)
		return nil
	})

	go s.keepalive()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		s.handleMessage(data)
	}
}

func (s *Subscriber) keepalive() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if !s.isAlive.Load() {
				s.missedPings++
				if s.missedPings >= maxMissedPings {
					s.log.Debug("subscriber missed too many pings, closing", zap.String("user", s.userIDSafe()))
					s.Close()
					return
				}
			} else {
				s.missedPings = 0
			}
			s.isAlive.Store(false)
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Subscriber) writePump() {
	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-s.sendChan:
			if !ok {
				return
			}
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}

func (s *Subscriber) handleMessage(data []byte) {
	env, err := protocol.ParseEnvelope(data)
	if err != nil {
		s.sendError("malformed message")
		return
	}

	switch env.Type {
	case protocol.TypeSubscribe:
		var msg protocol.Subscribe
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError("malformed subscribe")
			return
		}
		s.handleSubscribe(msg)
	case protocol.TypeUnsubscribe:
		s.handleUnsubscribe()
	default:
		s.sendError("unknown message type")
	}
}

func (s *Subscriber) handleSubscribe(msg protocol.Subscribe) {
	if !s.auth(msg.RoomID, msg.UserID, msg.Password) {
		s.sendError("authentication failed")
		return
	}

	s.mu.Lock()
	prevRoom := s.roomID
	s.roomID = msg.RoomID
	s.userID = msg.UserID
	s.wantsFull = msg.Full
	s.mu.Unlock()

	if prevRoom != "" && prevRoom != msg.RoomID {
		s.hub.Unregister(prevRoom, s)
	}
	s.hub.Register(msg.RoomID, s)

	ack, _ := json.Marshal(protocol.Subscribed{Type: protocol.TypeSubscribed, RoomID: msg.RoomID, Full: msg.Full})
	s.deliver(ack)

	if snap, ok := s.lookup(msg.RoomID); ok {
		s.deliver(s.buildPayload(snap))
	}
}

func (s *Subscriber) handleUnsubscribe() {
	s.mu.Lock()
	roomID := s.roomID
	s.roomID = ""
	s.mu.Unlock()
	if roomID != "" {
		s.hub.Unregister(roomID, s)
	}
}

func (s *Subscriber) sendError(message string) {
	payload, _ := json.Marshal(protocol.ErrorMessage{Type: protocol.TypeError, Message: message})
	s.deliver(payload)
}

// deliver enqueues a payload non-blockingly; it returns false if the
// subscriber's buffer is full or already closed, signaling the caller to
// drop this subscriber rather than block the broadcaster.
func (s *Subscriber) deliver(payload []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.sendChan <- payload:
		return true
	default:
		return false
	}
}

// buildPayload turns a room snapshot into this subscriber's tailored
// state message: absolute territory when the subscriber asked for
// full:true (consumed by the first payload after that request), add/sub
// deltas otherwise. A nation's first delta is taken against an empty
// baseline, so it lists every owned cell under add.
func (s *Subscriber) buildPayload(snap *room.State) []byte {
	s.mu.Lock()
	wantsFull := s.wantsFull
	s.wantsFull = false
	s.mu.Unlock()

	nations := make([]protocol.NationView, 0, len(snap.Nations))
	for _, owner := range snap.SortedOwners() {
		n := snap.Nations[owner]
		view := protocol.NationView{
			Owner:        n.Owner,
			Status:       string(n.Status),
			Population:   n.Population,
			NationalWill: float64(n.NationalWill),
			Resources:    n.Resources,
		}

		if n.Status == room.NationDefeated {
			if wantsFull {
				s.deltas.forget(owner)
				view.Territory = &protocol.Coords{X: []int32{}, Y: []int32{}}
			} else {
				d := s.deltas.defeated(owner)
				view.TerritoryDeltaForClient = &protocol.TerritoryDelta{
					Add: protocol.Coords{X: d.AddX, Y: d.AddY},
					Sub: protocol.Coords{X: d.SubX, Y: d.SubY},
				}
			}
		} else if wantsFull {
			d := s.deltas.full(owner, n.Territory)
			view.Territory = &protocol.Coords{X: append([]int32(nil), d.AddX...), Y: append([]int32(nil), d.AddY...)}
		} else {
			d := s.deltas.diff(owner, n.Territory)
			view.TerritoryDeltaForClient = &protocol.TerritoryDelta{
				Add: protocol.Coords{X: d.AddX, Y: d.AddY},
				Sub: protocol.Coords{X: d.SubX, Y: d.SubY},
			}
		}
		nations = append(nations, view)
	}

	state := protocol.State{
		Type:        protocol.TypeState,
		TickCount:   snap.TickCount,
		RoomName:    snap.RoomName,
		RoomCreator: snap.Creator,
		GameState:   protocol.GameState{Nations: nations},
	}
	if snap.Status == room.StatusEnded {
		for _, n := range snap.Nations {
			if n.Status == room.NationWinner {
				state.WinningNation = &protocol.WinningInfo{Owner: n.Owner}
				break
			}
		}
	}

	payload, err := json.Marshal(state)
	if err != nil {
		s.log.Error("failed to marshal state payload", zap.Error(err))
		return nil
	}
	return payload
}
