package dispatch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gympulse/gym-notify/backend/internal/dispatch"
	"github.com/gympulse/gym-notify/backend/internal/models"
)

const (
	testBaseURL = "https://app.example.com"
	testIcon    = "/favicon.ico"
)

func newRecord() *models.NotificationRecord {
	return &models.NotificationRecord{
		ID:    primitive.NewObjectID(),
		Title: "New Appointment Request",
		Body:  "Alice requested an appointment",
	}
}

func TestBuilder_Defaults(t *testing.T) {
	b := dispatch.NewBuilder(testBaseURL, testIcon)
	record := newRecord()

	env := b.Build(record, []string{"tokA"})

	assert.Equal(t, "New Appointment Request", env.Alert.Title)
	assert.Equal(t, "Alice requested an appointment", env.Alert.Body)
	assert.Equal(t, testIcon, env.Alert.Icon)

	assert.Equal(t, models.TypeGeneral, env.Data["type"])
	assert.Equal(t, record.ID.Hex(), env.Data["notificationId"])
	assert.NotEmpty(t, env.Data["timestamp"])

	assert.False(t, env.WebPush.RequireInteraction)
	assert.Equal(t, models.TypeGeneral, env.WebPush.Tag)
	assert.Equal(t, testBaseURL+"/", env.WebPush.Link)
	assert.Equal(t, "normal", env.Android.Priority)
}

func TestBuilder_DataMergeRecordKeysWin(t *testing.T) {
	b := dispatch.NewBuilder(testBaseURL, testIcon)
	record := newRecord()
	record.Type = "new_appointment"
	record.Data = map[string]string{
		"k":    "v",
		"type": "overridden",
	}

	env := b.Build(record, []string{"tokA"})

	assert.Equal(t, "v", env.Data["k"])
	// Producer-supplied context is more specific than the seeded defaults.
	assert.Equal(t, "overridden", env.Data["type"])
	assert.Equal(t, record.ID.Hex(), env.Data["notificationId"])
	assert.NotEmpty(t, env.Data["timestamp"])
}

func TestBuilder_ClickActionResolvedAgainstBaseURL(t *testing.T) {
	b := dispatch.NewBuilder(testBaseURL, testIcon)
	record := newRecord()
	record.Data = map[string]string{"clickAction": "/appointments"}

	env := b.Build(record, []string{"tokA"})

	assert.Equal(t, testBaseURL+"/appointments", env.WebPush.Link)
}

func TestBuilder_AddressingMode(t *testing.T) {
	b := dispatch.NewBuilder(testBaseURL, testIcon)

	single := b.Build(newRecord(), []string{"tokA"})
	assert.Equal(t, dispatch.AddressSingle, single.Mode)
	assert.Equal(t, "tokA", single.Token)
	assert.Empty(t, single.Tokens)

	multi := b.Build(newRecord(), []string{"tokA", "tokB"})
	assert.Equal(t, dispatch.AddressMulti, multi.Mode)
	assert.Empty(t, multi.Token)
	assert.Equal(t, []string{"tokA", "tokB"}, multi.Tokens)
}

func TestBuilder_InterruptionFollowsPriority(t *testing.T) {
	b := dispatch.NewBuilder(testBaseURL, testIcon)

	tests := []struct {
		priority  models.Priority
		interrupt bool
	}{
		{models.PriorityNormal, false},
		{models.PriorityHigh, true},
		{models.PriorityUrgent, true},
		{"", false},
	}

	for _, tc := range tests {
		record := newRecord()
		record.Priority = tc.priority

		env := b.Build(record, []string{"tokA"})
		assert.Equal(t, tc.interrupt, env.WebPush.RequireInteraction, "priority %q", tc.priority)

		wantAndroid := "normal"
		if tc.interrupt {
			wantAndroid = "high"
		}
		assert.Equal(t, wantAndroid, env.Android.Priority, "priority %q", tc.priority)
	}
}
