package events_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/swsaga/progression-api/internal/entities/saga"
	"github.com/swsaga/progression-api/internal/errors"
	"github.com/swsaga/progression-api/internal/events"
)

func TestPublishDeliversInSubscriptionOrder(t *testing.T) {
	bus := events.NewBus()
	var order []string

	bus.Subscribe(events.TopicSessionCompleted, func(ctx context.Context, e events.Event) error {
		order = append(order, "first")
		return nil
	})
	bus.Subscribe(events.TopicSessionCompleted, func(ctx context.Context, e events.Event) error {
		order = append(order, "second")
		return nil
	})

	bus.Publish(context.Background(), events.Event{
		Topic:       events.TopicSessionCompleted,
		CharacterID: "char_1",
		Mode:        saga.ModeCreation,
	})

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestPublishIgnoresOtherTopics(t *testing.T) {
	bus := events.NewBus()
	called := false

	bus.Subscribe(events.TopicStepChanged, func(ctx context.Context, e events.Event) error {
		called = true
		return nil
	})

	bus.Publish(context.Background(), events.Event{Topic: events.TopicSessionUpdated})
	assert.False(t, called)
}

func TestPanickingSubscriberDoesNotBlockOthers(t *testing.T) {
	bus := events.NewBus()
	delivered := false

	bus.Subscribe(events.TopicSessionCompleted, func(ctx context.Context, e events.Event) error {
		panic("subscriber exploded")
	})
	bus.Subscribe(events.TopicSessionCompleted, func(ctx context.Context, e events.Event) error {
		delivered = true
		return nil
	})

	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), events.Event{Topic: events.TopicSessionCompleted})
	})
	assert.True(t, delivered)
}

func TestErroringSubscriberIsSwallowed(t *testing.T) {
	bus := events.NewBus()
	delivered := false

	bus.Subscribe(events.TopicSessionCompleted, func(ctx context.Context, e events.Event) error {
		return errors.Internal("observer failed")
	})
	bus.Subscribe(events.TopicSessionCompleted, func(ctx context.Context, e events.Event) error {
		delivered = true
		return nil
	})

	bus.Publish(context.Background(), events.Event{Topic: events.TopicSessionCompleted})
	assert.True(t, delivered)
}
