package internal

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/trendsniper/trendsniper/shared/events"
)

// Publisher is satisfied by *mq.Broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// emitter routes analysis events. With a publisher the broker is the single
// source for the hub (see Server.tail); without one events go straight to it.
type emitter struct {
	pub Publisher
	hub *Hub
}

func (e *emitter) emit(ctx context.Context, routingKey string, payload any) {
	b, err := events.Wrap(routingKey, payload)
	if err != nil {
		log.Error().Err(err).Str("key", routingKey).Msg("wrap event")
		return
	}
	if e.pub == nil {
		e.hub.BroadcastRaw(b)
		return
	}
	if err := e.pub.Publish(context.WithoutCancel(ctx), routingKey, b); err != nil {
		log.Warn().Err(err).Str("key", routingKey).Msg("publish event failed")
	}
}
