package services

import (
	"context"
	"fmt"
	"time"

	"relief-backend/internal/config"
	"relief-backend/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/certificate"
	"github.com/sideshow/apns2/payload"
)

const pushTimeout = 15 * time.Second

type apnsPusher interface {
	PushWithContext(ctx apns2.Context, n *apns2.Notification) (*apns2.Response, error)
}

// AdminTokenSource lists the device tokens of admins
type AdminTokenSource interface {
	AdminPushTokens(ctx context.Context) ([]string, error)
}

// PushNotifier sends an APNs alert to every admin device when an SOS is
// raised. Delivery failures are logged and never reach the caller.
type PushNotifier struct {
	client apnsPusher
	tokens AdminTokenSource
	topic  string
}

// NewPushNotifier loads the APNs certificate. It returns nil when push is
// not configured.
func NewPushNotifier(cfg config.PushConfig, tokens AdminTokenSource) (*PushNotifier, error) {
	if cfg.CertPath == "" {
		return nil, nil
	}

	cert, err := certificate.FromP12File(cfg.CertPath, cfg.CertPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to load push certificate: %w", err)
	}

	client := apns2.NewClient(cert)
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &PushNotifier{client: client, tokens: tokens, topic: cfg.Topic}, nil
}

// SOSRaised pushes to admins in the background
func (p *PushNotifier) SOSRaised(ctx context.Context, alert *models.SOS) {
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
		defer cancel()
		p.notifyAdmins(ctx, alert)
	}()
}

// SOSResolved is a no-op; admins learn about resolutions over the live feed
func (p *PushNotifier) SOSResolved(context.Context, *models.SOS) {}

// notifyAdmins returns the number of notifications APNs accepted
func (p *PushNotifier) notifyAdmins(ctx context.Context, alert *models.SOS) int {
	tokens, err := p.tokens.AdminPushTokens(ctx)
	if err != nil {
		log.Error().Err(err).Int64("sos_id", alert.ID).Msg("Failed to load admin push tokens")
		return 0
	}

	persons := 1
	if alert.Persons != nil {
		persons = *alert.Persons
	}

	body := payload.NewPayload().
		AlertTitle("SOS raised").
		AlertBody(fmt.Sprintf("%d person(s) need help at %.5f, %.5f", persons, alert.Latitude, alert.Longitude)).
		Sound("default").
		Custom("sos_id", alert.ID)

	sent := 0
	for _, token := range tokens {
		res, err := p.client.PushWithContext(ctx, &apns2.Notification{
			DeviceToken: token,
			Topic:       p.topic,
			Payload:     body,
			Priority:    apns2.PriorityHigh,
		})
		if err != nil {
			log.Error().Err(err).Int64("sos_id", alert.ID).Msg("Failed to send push notification")
			continue
		}
		if !res.Sent() {
			log.Warn().
				Int("status", res.StatusCode).
				Str("reason", res.Reason).
				Int64("sos_id", alert.ID).
				Msg("Push notification rejected")
			continue
		}
		sent++
	}

	log.Debug().Int64("sos_id", alert.ID).Int("sent", sent).Int("devices", len(tokens)).Msg("SOS push delivered")
	return sent
}
