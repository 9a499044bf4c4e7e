package live

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/coder/websocket"

	"github.com/panzoom/panzoom/internal/dom"
	"github.com/panzoom/panzoom/internal/engine"
	"github.com/panzoom/panzoom/internal/viewbox"
)

// Lookup resolves a view id to the engine driving it.
type Lookup func(viewID string) (*engine.Engine, error)

// Room holds the observers of one view and the subscription that feeds
// them view box changes.
type Room struct {
	viewID   string
	engine   *engine.Engine
	clients  map[string]*Client // clientID -> client
	presence *PresenceManager
	seq      atomic.Int64
	cancel   func()
}

func NewRoom(viewID string, e *engine.Engine) *Room {
	return &Room{
		viewID:   viewID,
		engine:   e,
		clients:  make(map[string]*Client),
		presence: NewPresenceManager(),
	}
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // viewID -> room
	lookup     Lookup
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
}

func NewHub(lookup Lookup) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		lookup:     lookup,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			return
		}
	}
}

// Stop ends Run and disconnects every client.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)

		h.mu.Lock()
		defer h.mu.Unlock()
		for id, room := range h.rooms {
			room.cancel()
			for _, c := range room.clients {
				c.close()
				c.conn.Close(websocket.StatusGoingAway, "server shutting down")
			}
			delete(h.rooms, id)
		}
	})
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.close()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) addClient(client *Client) {
	e, err := h.lookup(client.ViewID)
	if err != nil {
		client.Send(errorMessage(CodeViewGone, err.Error()))
		client.close()
		return
	}

	h.mu.Lock()
	room, ok := h.rooms[client.ViewID]
	if !ok || room.engine != e {
		if ok {
			room.cancel()
		}
		room = NewRoom(client.ViewID, e)
		viewID := client.ViewID
		room.cancel = e.Subscribe(func(vb viewbox.ViewBox) {
			h.broadcastState(viewID, vb)
		})
		h.rooms[client.ViewID] = room
	}
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	welcome, _ := json.Marshal(WelcomePayload{
		ClientID:   client.ClientID,
		CanControl: client.CanControl,
		State:      e.Snapshot(),
		Cursors:    room.presence.GetAll(),
	})
	client.Send(&Message{
		Type:     TypeWelcome,
		ViewID:   client.ViewID,
		ClientID: client.ClientID,
		Seq:      room.seq.Load(),
		Payload:  welcome,
	})

	joinPayload, _ := json.Marshal(PresenceJoinPayload{
		ClientID:   client.ClientID,
		CanControl: client.CanControl,
	})
	joinMsg := &Message{
		Type:     TypePresenceJoin,
		ClientID: client.ClientID,
		Payload:  joinPayload,
	}
	h.broadcastToRoom(client.ViewID, joinMsg, client.ClientID)

	slog.Info("client joined", "client", client.ClientID, "view", client.ViewID, "control", client.CanControl)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.ViewID]
	if !ok {
		h.mu.Unlock()
		client.close()
		return
	}

	delete(room.clients, client.ClientID)
	client.close()
	room.presence.Remove(client.ClientID)

	if len(room.clients) == 0 {
		room.cancel()
		delete(h.rooms, client.ViewID)
	}
	h.mu.Unlock()

	leavePayload, _ := json.Marshal(PresenceLeavePayload{ClientID: client.ClientID})
	leaveMsg := &Message{
		Type:     TypePresenceLeave,
		ClientID: client.ClientID,
		Payload:  leavePayload,
	}
	h.broadcastToRoom(client.ViewID, leaveMsg, "")

	slog.Info("client left", "client", client.ClientID, "view", client.ViewID)
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypeViewWheel:
		h.handleWheel(sender, msg)
	case TypeCursorUpdate:
		h.handleCursorUpdate(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "client", sender.ClientID)
		sender.Send(errorMessage(CodeUnknownType, "unknown message type "+msg.Type))
	}
}

// handleWheel zooms the view. The resulting state reaches every observer,
// the sender included, through the room's subscription.
func (h *Hub) handleWheel(sender *Client, msg *Message) {
	if !sender.CanControl {
		sender.Send(errorMessage(CodeForbidden, "a view token is required to zoom"))
		return
	}

	var ev dom.Wheel
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		sender.Send(errorMessage(CodeInvalidPayload, err.Error()))
		return
	}

	h.mu.RLock()
	room, ok := h.rooms[sender.ViewID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	if err := room.engine.HandleWheel(ev); err != nil {
		slog.Debug("wheel rejected", "view", sender.ViewID, "error", err)
		sender.Send(errorMessage(CodeZoomFailed, err.Error()))
	}
}

func (h *Hub) handleCursorUpdate(sender *Client, msg *Message) {
	var cursor CursorPayload
	if err := json.Unmarshal(msg.Payload, &cursor); err != nil {
		sender.Send(errorMessage(CodeInvalidPayload, err.Error()))
		return
	}

	h.mu.RLock()
	room, ok := h.rooms[sender.ViewID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	room.presence.Update(sender.ClientID, &cursor)

	outPayload, _ := json.Marshal(cursor)
	outMsg := &Message{
		Type:     TypeCursorUpdate,
		ClientID: sender.ClientID,
		Payload:  outPayload,
	}
	h.broadcastToRoom(sender.ViewID, outMsg, sender.ClientID)
}

func (h *Hub) broadcastState(viewID string, vb viewbox.ViewBox) {
	h.mu.RLock()
	room, ok := h.rooms[viewID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	payload, err := json.Marshal(ViewStatePayload{ViewBox: vb})
	if err != nil {
		slog.Error("marshal view state", "view", viewID, "error", err)
		return
	}
	h.broadcastToRoom(viewID, &Message{
		Type:    TypeViewState,
		ViewID:  viewID,
		Seq:     room.seq.Add(1),
		Payload: payload,
	}, "")
}

func (h *Hub) broadcastToRoom(viewID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[viewID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}

// Clients returns the number of observers of a view.
func (h *Hub) Clients(viewID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if room, ok := h.rooms[viewID]; ok {
		return len(room.clients)
	}
	return 0
}
