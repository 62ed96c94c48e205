// Package relay implements the signaling relay: a websocket endpoint grouping
// clients into rooms and forwarding every frame a client sends, unchanged, to
// the other members of its room.
package relay

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/dimspell/trapline/internal/app/logger/logging"
	"github.com/dimspell/trapline/internal/metrics"
	"github.com/google/uuid"
)

const (
	SubProtocol = "trapline-signal"
	DefaultRoom = "trapline"

	writeTimeout = 5 * time.Second
	readLimit    = 1 << 20
)

type Server struct {
	sync.RWMutex
	Rooms map[string]*Room
}

type Room struct {
	Name    string
	Members *Members
}

func NewServer() *Server {
	metrics.InitRelay()
	return &Server{
		Rooms: make(map[string]*Room),
	}
}

func (s *Server) GetRoom(name string) (*Room, bool) {
	s.RLock()
	room, ok := s.Rooms[name]
	s.RUnlock()
	return room, ok
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roomName := r.URL.Query().Get("room")
	if roomName == "" {
		roomName = DefaultRoom
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols: []string{SubProtocol},
	})
	if err != nil {
		slog.Error("Could not accept the connection",
			logging.Error(err),
			"origin", r.Header.Get("Origin"),
			"room", roomName)
		metrics.RelayErrors.WithLabelValues("accept").Inc()
		return
	}
	defer conn.CloseNow()

	if conn.Subprotocol() != SubProtocol {
		_ = conn.Close(websocket.StatusPolicyViolation, "client must speak the "+SubProtocol+" subprotocol")
		return
	}
	conn.SetReadLimit(readLimit)

	id := uuid.New().String()
	room := s.Join(roomName, id, conn)
	defer s.Leave(roomName, id)

	metrics.ConnectedClients.Inc()
	defer metrics.ConnectedClients.Dec()

	slog.Debug("Client joined the room", "room", roomName, logging.PeerID(id))

	for {
		typ, payload, err := conn.Read(r.Context())
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if r.Context().Err() == nil {
					slog.Warn("Could not read the message", logging.Error(err), logging.PeerID(id))
					metrics.RelayErrors.WithLabelValues("read").Inc()
				}
			}
			return
		}
		room.Forward(r.Context(), id, typ, payload)
	}
}

// Join adds the connection to the room, creating the room on first use.
func (s *Server) Join(roomName, id string, conn *websocket.Conn) *Room {
	s.Lock()
	defer s.Unlock()

	room, ok := s.Rooms[roomName]
	if !ok {
		room = &Room{Name: roomName, Members: NewMembers()}
		s.Rooms[roomName] = room
		metrics.ActiveRooms.Inc()
	}
	room.Members.Set(id, conn)
	return room
}

// Leave removes the member and drops the room once it is empty.
func (s *Server) Leave(roomName, id string) {
	s.Lock()
	defer s.Unlock()

	room, ok := s.Rooms[roomName]
	if !ok {
		return
	}
	room.Members.Delete(id)
	if room.Members.Count() == 0 {
		delete(s.Rooms, roomName)
		metrics.ActiveRooms.Dec()
	}
	slog.Debug("Client left the room", "room", roomName, logging.PeerID(id))
}

// Forward writes payload to every member of the room except the sender,
// keeping the frame type it was received with.
func (r *Room) Forward(ctx context.Context, from string, typ websocket.MessageType, payload []byte) {
	r.Members.Range(from, func(id string, ws *websocket.Conn) bool {
		ctx, cancel := context.WithTimeout(ctx, writeTimeout)
		defer cancel()

		if err := ws.Write(ctx, typ, payload); err != nil {
			slog.Warn("Could not forward the message", logging.Error(err), logging.PeerID(id), "room", r.Name)
			metrics.RelayErrors.WithLabelValues("write").Inc()
			return true
		}
		metrics.FramesForwarded.Inc()
		metrics.BytesForwarded.Add(float64(len(payload)))
		return true
	})
}
