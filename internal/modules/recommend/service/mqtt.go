package service

import (
	"context"
	"time"

	"github.com/ebitech02/WanderWise/internal/mqtt"
)

const invalidationTimeout = 5 * time.Second

// Register attaches the cache invalidation handler to subscriber.
func (s *Service) Register(subscriber mqtt.MQTTSubscriber) {
	subscriber.SetMessageHandler(s.handleInvalidation)
}

func (s *Service) handleInvalidation(msg mqtt.Invalidation) error {
	ctx, cancel := context.WithTimeout(context.Background(), invalidationTimeout)
	defer cancel()

	s.logger.Debug("processing invalidation message", "country", msg.Country, "all", msg.All)
	if msg.All {
		return s.ClearClimate(ctx, "mqtt")
	}
	return s.InvalidateClimate(ctx, msg.Country, "mqtt")
}
