package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Priority controls gateway delivery hints and UI interruption behavior
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Notification type tags; drive client-side routing
const (
	TypeGeneral          = "general"
	TypeNewAppointment   = "new_appointment"
	TypeNewBindRequest   = "new_bind_request"
	TypeNewUnbindRequest = "new_unbind_request"
	TypeChat             = "chat"
	TypeTest             = "test"
)

// PlatformWeb is the default envelope-shaping hint for queued records.
const PlatformWeb = "web"

// NotificationRecord is one queued push notification awaiting delivery
// (MongoDB, fcm_notifications collection). The terminal fields Processed,
// ProcessedAt, Success and Result are written together exactly once.
type NotificationRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TargetUID   string             `bson:"target_uid" json:"targetUid"`
	Title       string             `bson:"title" json:"title"`
	Body        string             `bson:"body" json:"body"`
	Type        string             `bson:"type" json:"type"`
	Data        map[string]string  `bson:"data,omitempty" json:"data,omitempty"`
	Priority    Priority           `bson:"priority" json:"priority"`
	Platform    string             `bson:"platform" json:"platform"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	Processed   bool               `bson:"processed" json:"processed"`
	ProcessedAt *time.Time         `bson:"processed_at,omitempty" json:"processedAt,omitempty"`
	Success     bool               `bson:"success,omitempty" json:"success,omitempty"`
	Result      string             `bson:"result,omitempty" json:"result,omitempty"`
}

// EnqueueNotificationRequest is the producer-facing enqueue payload,
// validated at the insertion boundary before it reaches the dispatch queue.
type EnqueueNotificationRequest struct {
	TargetUID string            `json:"targetUid" validate:"required"`
	Title     string            `json:"title" validate:"required"`
	Body      string            `json:"body" validate:"required"`
	Type      string            `json:"type,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
	Priority  Priority          `json:"priority,omitempty" validate:"omitempty,oneof=normal high urgent"`
	Platform  string            `json:"platform,omitempty"`
}

// DirectSendRequest is the body of the minimal single-token delivery endpoint.
type DirectSendRequest struct {
	Token string `json:"token" validate:"required"`
	Title string `json:"title" validate:"required"`
	Body  string `json:"body" validate:"required"`
}

// NotificationStats summarizes an admin's notification feed.
type NotificationStats struct {
	Total       int64     `json:"total"`
	Unread      int64     `json:"unread"`
	Today       int64     `json:"today"`
	LastUpdated time.Time `json:"lastUpdated"`
}
