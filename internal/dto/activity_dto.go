package dto

import "time"

// ActivityMessage is the payload published on the activity bus whenever a
// session does something that should reset its inactivity clock.
type ActivityMessage struct {
	SessionId string    `json:"session_id"`
	Kind      string    `json:"kind"`
	At        time.Time `json:"at"`
}

const (
	ActivityKindHTTP      = "http_request"
	ActivityKindWebSocket = "ws_frame"
	ActivityKindExtend    = "manual_extend"
)
