package dispatch

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// DeliveryOutcome reports the result of one completed gateway call.
type DeliveryOutcome struct {
	DeliveryID   string
	SuccessCount int
	FailureCount int
}

// Gateway abstracts delivery through the push service. A returned error means
// the call itself failed (transport-level); per-token rejections inside a
// completed batch call are reported through the outcome counters instead.
type Gateway interface {
	Send(ctx context.Context, env *Envelope) (*DeliveryOutcome, error)
}

// FCMGateway delivers envelopes through Firebase Cloud Messaging.
type FCMGateway struct {
	client *messaging.Client
	logger *zap.Logger
}

// NewFCMGateway creates a new FCMGateway
func NewFCMGateway(client *messaging.Client, logger *zap.Logger) *FCMGateway {
	return &FCMGateway{client: client, logger: logger}
}

// Send delivers a single-target envelope with one direct call and a
// multi-target envelope with one batched call. Individual token failures in
// a batch are logged and counted but do not fail the operation; stale or
// revoked tokens are an expected steady-state condition.
func (g *FCMGateway) Send(ctx context.Context, env *Envelope) (*DeliveryOutcome, error) {
	if env.Mode == AddressSingle {
		msg := &messaging.Message{
			Token:        env.Token,
			Notification: notification(env),
			Data:         env.Data,
			Webpush:      webpushConfig(env),
			Android:      androidConfig(env),
			APNS:         apnsConfig(env),
		}

		deliveryID, err := g.client.Send(ctx, msg)
		if err != nil {
			return nil, fmt.Errorf("fcm send: %w", err)
		}
		g.logger.Info("single message sent", zap.String("delivery_id", deliveryID))
		return &DeliveryOutcome{DeliveryID: deliveryID, SuccessCount: 1}, nil
	}

	msg := &messaging.MulticastMessage{
		Tokens:       env.Tokens,
		Notification: notification(env),
		Data:         env.Data,
		Webpush:      webpushConfig(env),
		Android:      androidConfig(env),
		APNS:         apnsConfig(env),
	}

	res, err := g.client.SendEachForMulticast(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("fcm multicast send: %w", err)
	}

	for idx, resp := range res.Responses {
		if !resp.Success {
			g.logger.Warn("failed to send to token",
				zap.String("token", env.Tokens[idx]),
				zap.Error(resp.Error))
		}
	}
	g.logger.Info("multicast message sent",
		zap.Int("success_count", res.SuccessCount),
		zap.Int("failure_count", res.FailureCount))

	return &DeliveryOutcome{
		SuccessCount: res.SuccessCount,
		FailureCount: res.FailureCount,
	}, nil
}

func notification(env *Envelope) *messaging.Notification {
	return &messaging.Notification{
		Title: env.Alert.Title,
		Body:  env.Alert.Body,
	}
}

func webpushConfig(env *Envelope) *messaging.WebpushConfig {
	requireInteraction := env.WebPush.RequireInteraction
	return &messaging.WebpushConfig{
		Notification: &messaging.WebpushNotification{
			Title:              env.Alert.Title,
			Body:               env.Alert.Body,
			Icon:               env.Alert.Icon,
			Badge:              env.Alert.Icon,
			Tag:                env.WebPush.Tag,
			RequireInteraction: requireInteraction,
		},
		FCMOptions: &messaging.WebpushFCMOptions{
			Link: env.WebPush.Link,
		},
	}
}

func androidConfig(env *Envelope) *messaging.AndroidConfig {
	notifPriority := messaging.PriorityDefault
	if env.Android.Priority == "high" {
		notifPriority = messaging.PriorityHigh
	}
	return &messaging.AndroidConfig{
		Priority: env.Android.Priority,
		Notification: &messaging.AndroidNotification{
			ChannelID: env.Android.ChannelID,
			Sound:     env.Android.Sound,
			Priority:  notifPriority,
		},
	}
}

func apnsConfig(env *Envelope) *messaging.APNSConfig {
	badge := env.APNS.Badge
	return &messaging.APNSConfig{
		Payload: &messaging.APNSPayload{
			Aps: &messaging.Aps{
				Alert: &messaging.ApsAlert{
					Title: env.Alert.Title,
					Body:  env.Alert.Body,
				},
				Sound: env.APNS.Sound,
				Badge: &badge,
			},
		},
	}
}
