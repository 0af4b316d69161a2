package notification_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yasserk123/HealthVision-Projet/internal/model"
	"github.com/Yasserk123/HealthVision-Projet/internal/service/notification"
	apperrors "github.com/Yasserk123/HealthVision-Projet/pkg/errors"
	"github.com/Yasserk123/HealthVision-Projet/pkg/messaging"
)

func TestStreamDeliversOnlyCallerEvents(t *testing.T) {
	broker := messaging.NewLocalBroker()
	svc := notification.NewService(&memRepo{}, broker, zerolog.Nop())
	stream := notification.NewStream(broker, zerolog.Nop())

	me, other := uuid.New(), uuid.New()
	ctx, cancel := context.WithCancel(asUser(me))
	defer cancel()

	events, err := stream.Subscribe(ctx)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), other, "Autre", "Pas pour moi", model.NotificationTypeInfo)
	require.NoError(t, err)
	mine, err := svc.Create(context.Background(), me, "Rappel", "Pour moi", model.NotificationTypeReminder)
	require.NoError(t, err)

	select {
	case event := <-events:
		require.NotNil(t, event)
		assert.Equal(t, mine.ID, event.NotificationID)
		assert.Equal(t, me, event.UserID)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-events:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestStreamNeedsSession(t *testing.T) {
	stream := notification.NewStream(messaging.NewLocalBroker(), zerolog.Nop())

	_, err := stream.Subscribe(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNoSession)
}

func TestStreamReportsSubscribeFailure(t *testing.T) {
	stream := notification.NewStream(&recordingBroker{}, zerolog.Nop())

	_, err := stream.Subscribe(asUser(uuid.New()))
	assert.Error(t, err)
}
