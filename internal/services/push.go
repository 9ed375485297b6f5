package services

import (
	"fmt"

	"whereabouts-backend/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// PushNotifier sends APNs notifications to users' registered devices.
// A nil notifier silently skips every push, so callers never need to check
// whether push is configured.
type PushNotifier struct {
	client *apns2.Client
	topic  string
}

// NewPushNotifier creates an APNs notifier from config. Returns nil (push
// disabled) when no key path is configured.
func NewPushNotifier(cfg config.APNSConfig) (*PushNotifier, error) {
	if cfg.KeyPath == "" {
		return nil, nil
	}

	authKey, err := token.AuthKeyFromFile(cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs auth key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	})
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &PushNotifier{client: client, topic: cfg.Topic}, nil
}

// NotifyContactRequest pushes a "new contact request" alert to a device
func (n *PushNotifier) NotifyContactRequest(deviceToken, fromName string) {
	if n == nil || deviceToken == "" {
		return
	}

	notification := &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       n.topic,
		Payload: payload.NewPayload().
			AlertTitle("New contact request").
			AlertBody(fmt.Sprintf("%s wants to share locations with you", fromName)).
			Sound("default"),
	}

	res, err := n.client.Push(notification)
	if err != nil {
		log.Error().Err(err).Msg("Failed to send push notification")
		return
	}
	if !res.Sent() {
		log.Warn().
			Int("status", res.StatusCode).
			Str("reason", res.Reason).
			Msg("Push notification rejected")
	}
}
