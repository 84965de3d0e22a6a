package dispatch

import (
	"time"

	"github.com/gympulse/gym-notify/backend/internal/models"
)

// AddressingMode selects how the gateway addresses an envelope.
type AddressingMode string

const (
	// AddressSingle targets exactly one device token with a direct send.
	AddressSingle AddressingMode = "single"
	// AddressMulti targets two or more tokens with one batched send.
	AddressMulti AddressingMode = "multi"
)

// Alert is the human-readable section shown by the receiving platform.
type Alert struct {
	Title string
	Body  string
	Icon  string
}

// WebPush carries browser-specific delivery hints.
type WebPush struct {
	RequireInteraction bool
	Tag                string
	Link               string
}

// AndroidHint carries Android-specific delivery hints.
type AndroidHint struct {
	Priority  string
	ChannelID string
	Sound     string
}

// APNSHint carries iOS-specific delivery hints.
type APNSHint struct {
	Sound string
	Badge int
}

// Envelope is a constructed, platform-segmented push message. It is built
// once per queue record and consumed immediately by the gateway; it is never
// persisted.
type Envelope struct {
	Mode    AddressingMode
	Token   string
	Tokens  []string
	Alert   Alert
	Data    map[string]string
	WebPush WebPush
	Android AndroidHint
	APNS    APNSHint
}

// Builder constructs envelopes from queue records. Pure: no I/O, total over
// valid inputs.
type Builder struct {
	baseURL string
	icon    string
}

// NewBuilder creates a Builder. baseURL prefixes click-action routes into
// absolute links; icon is the web notification icon path.
func NewBuilder(baseURL, icon string) *Builder {
	return &Builder{baseURL: baseURL, icon: icon}
}

// Build composes the envelope for a record and its resolved token set.
// Tokens must be non-empty; the consumer short-circuits empty resolutions
// before this stage.
func (b *Builder) Build(record *models.NotificationRecord, tokens []string) *Envelope {
	priority := record.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}
	notifType := record.Type
	if notifType == "" {
		notifType = models.TypeGeneral
	}

	// Machine-readable section: defaults first, then the record's free-form
	// data. Producer-supplied keys win on collision.
	data := map[string]string{
		"type":           notifType,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"notificationId": record.ID.Hex(),
	}
	for k, v := range record.Data {
		data[k] = v
	}

	clickAction := record.Data["clickAction"]
	if clickAction == "" {
		clickAction = "/"
	}

	interrupt := priority == models.PriorityHigh || priority == models.PriorityUrgent
	androidPriority := "normal"
	if interrupt {
		androidPriority = "high"
	}

	env := &Envelope{
		Alert: Alert{
			Title: record.Title,
			Body:  record.Body,
			Icon:  b.icon,
		},
		Data: data,
		WebPush: WebPush{
			RequireInteraction: interrupt,
			Tag:                notifType,
			Link:               b.baseURL + clickAction,
		},
		Android: AndroidHint{
			Priority:  androidPriority,
			ChannelID: "admin_notifications",
			Sound:     "default",
		},
		APNS: APNSHint{
			Sound: "default",
			Badge: 1,
		},
	}

	if len(tokens) == 1 {
		env.Mode = AddressSingle
		env.Token = tokens[0]
	} else {
		env.Mode = AddressMulti
		env.Tokens = tokens
	}
	return env
}
