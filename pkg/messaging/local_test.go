package messaging_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yasserk123/HealthVision-Projet/pkg/messaging"
)

func TestLocalBrokerDeliversToChannelSubscribers(t *testing.T) {
	b := messaging.NewLocalBroker()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := b.Subscribe(ctx, "notifications")
	require.NoError(t, err)
	other, err := b.Subscribe(ctx, "other")
	require.NoError(t, err)

	require.NoError(t, b.Publish(context.Background(), "notifications", map[string]string{"title": "ok"}))

	select {
	case payload := <-events:
		assert.JSONEq(t, `{"title":"ok"}`, string(payload))
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}
	assert.Empty(t, other)
}

func TestLocalBrokerClosesOnCancel(t *testing.T) {
	b := messaging.NewLocalBroker()
	ctx, cancel := context.WithCancel(context.Background())

	events, err := b.Subscribe(ctx, "notifications")
	require.NoError(t, err)
	cancel()

	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-events:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, b.Publish(context.Background(), "notifications", "late"))
	require.NoError(t, b.Close())
	_, err = b.Subscribe(context.Background(), "notifications")
	assert.Error(t, err)
}
