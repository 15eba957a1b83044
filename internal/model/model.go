package model

import (
	"encoding/json"
	"time"
)

// Action classifies a recognized subject: "allow" passes silently,
// "alert" counts toward the tenant's notification threshold.
type Action string

const (
	ActionAllow Action = "allow"
	ActionAlert Action = "alert"
)

// Valid reports whether the action is one of the known classifications.
func (a Action) Valid() bool { return a == ActionAllow || a == ActionAlert }

// DefaultAlertThreshold is used until a tenant's settings row exists or
// while a cold cache load is still outstanding.
const DefaultAlertThreshold = 100

// WebSocket control events. Binary messages carry raw frame blobs and
// need no envelope; everything else is a JSON Event.
const (
	EventJoinAsCamera  = "join-as-camera"
	EventJoinAsMonitor = "join-as-monitor"
	EventCameraStatus  = "camera-status"
)

// Camera presence values broadcast to a tenant room.
const (
	CameraStatusOnline  = "online"
	CameraStatusOffline = "offline"
)

// Event is the JSON envelope for text messages on the stream socket.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// CameraStatus is the payload of a camera-status event.
type CameraStatus struct {
	Status string `json:"status"`
}

// Settings is the cached per-tenant view of TenantSettings.
type Settings struct {
	TenantID       string `json:"-"`
	AlertThreshold int    `json:"alert_threshold"`
}

// UpdateSettingsRequest is the body of PUT /api/settings.
type UpdateSettingsRequest struct {
	AlertThreshold *int `json:"alert_threshold" binding:"required"`
}

// SubmitLogRequest is the body of POST /api/logs — one detection result
// reported by a camera page.
type SubmitLogRequest struct {
	Name   string `json:"name" binding:"required"`
	Action Action `json:"action" binding:"required"`
}

// LogEntry is the API view of an AlertLog row.
type LogEntry struct {
	ID          string    `json:"id"`
	SubjectName string    `json:"name"`
	Action      Action    `json:"action"`
	Timestamp   time.Time `json:"timestamp"`
}

// CreateFaceRequest is the body of POST /api/faces.
type CreateFaceRequest struct {
	Name       string    `json:"name" binding:"required"`
	Descriptor []float64 `json:"descriptor" binding:"required"`
	Action     Action    `json:"action" binding:"omitempty,oneof=allow alert"`
}

// FaceView is the API view of a Face row.
type FaceView struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Descriptor []float64 `json:"descriptor"`
	Action     Action    `json:"action"`
}

// ImportFacesRequest replaces the tenant's whole face registry.
type ImportFacesRequest struct {
	Faces []CreateFaceRequest `json:"faces" binding:"required"`
}
