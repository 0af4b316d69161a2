package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Yasserk123/HealthVision-Projet/internal/model"
	"github.com/Yasserk123/HealthVision-Projet/internal/session"
	apperrors "github.com/Yasserk123/HealthVision-Projet/pkg/errors"
	"github.com/Yasserk123/HealthVision-Projet/pkg/messaging"
)

// Stream relays broker notification events to the user they belong to.
type Stream struct {
	broker messaging.Broker
	logger zerolog.Logger
}

func NewStream(broker messaging.Broker, logger zerolog.Logger) *Stream {
	if broker == nil {
		broker = messaging.NopBroker{}
	}
	return &Stream{
		broker: broker,
		logger: logger.With().Str("service", "notification-stream").Logger(),
	}
}

// Subscribe returns the caller's events until ctx is done. The channel is
// closed when the subscription ends.
func (s *Stream) Subscribe(ctx context.Context) (<-chan *model.NotificationEvent, error) {
	user, ok := session.UserFrom(ctx)
	if !ok {
		return nil, apperrors.ErrNoSession
	}

	raw, err := s.broker.Subscribe(ctx, Channel)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to notifications: %w", err)
	}

	out := make(chan *model.NotificationEvent)
	go func() {
		defer close(out)
		for payload := range raw {
			var event model.NotificationEvent
			if err := json.Unmarshal(payload, &event); err != nil {
				s.logger.Warn().Err(err).Msg("Dropping malformed notification event")
				continue
			}
			if event.UserID != user.ID {
				continue
			}
			select {
			case out <- &event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
