package live

import (
	"encoding/json"

	"github.com/panzoom/panzoom/internal/engine"
	"github.com/panzoom/panzoom/internal/geom"
	"github.com/panzoom/panzoom/internal/viewbox"
)

type Message struct {
	Type     string          `json:"type"`
	ViewID   string          `json:"viewId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

const (
	// Connection
	TypeWelcome = "welcome"
	TypeError   = "error"

	// View
	TypeViewState = "view.state"
	TypeViewWheel = "view.wheel"

	// Cursors of other observers
	TypeCursorUpdate  = "cursor.update"
	TypePresenceJoin  = "presence.join"
	TypePresenceLeave = "presence.leave"
)

// WelcomePayload is the first message on every connection.
type WelcomePayload struct {
	ClientID   string                    `json:"clientId"`
	CanControl bool                      `json:"canControl"`
	State      engine.State              `json:"state"`
	Cursors    map[string]*CursorPayload `json:"cursors"`
}

// ViewStatePayload is broadcast whenever the view box changes.
type ViewStatePayload struct {
	ViewBox viewbox.ViewBox `json:"viewBox"`
}

// CursorPayload is an observer's pointer position in its own viewport.
// A nil Cursor means the pointer left the element.
type CursorPayload struct {
	Cursor *geom.ViewPortPos `json:"cursor,omitempty"`
}

type PresenceJoinPayload struct {
	ClientID   string `json:"clientId"`
	CanControl bool   `json:"canControl"`
}

type PresenceLeavePayload struct {
	ClientID string `json:"clientId"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	CodeForbidden      = "forbidden"
	CodeInvalidPayload = "invalid_payload"
	CodeZoomFailed     = "zoom_failed"
	CodeUnknownType    = "unknown_type"
	CodeViewGone       = "view_gone"
)

func errorMessage(code, text string) *Message {
	payload, _ := json.Marshal(ErrorPayload{Code: code, Message: text})
	return &Message{Type: TypeError, Payload: payload}
}
