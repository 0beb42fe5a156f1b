package infra

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// SaleNotifier publishes settled-sale events on a Redis pub/sub channel for
// cross-terminal fan-out. Delivery is fire-and-forget: a settle never fails
// because the notification could not go out. Publishing goes through a
// circuit breaker so a down Redis does not stall the worker pool.
type SaleNotifier struct {
	rdb     *redis.Client
	channel string
	cb      *CircuitBreaker
}

func NewSaleNotifier(rdb *redis.Client, channel string) *SaleNotifier {
	return &SaleNotifier{
		rdb:     rdb,
		channel: channel,
		cb:      NewCircuitBreaker(DefaultCBConfig()),
	}
}

// Publish sends one event payload to every subscribed terminal.
func (n *SaleNotifier) Publish(ctx context.Context, payload []byte) error {
	return n.cb.Execute(func() error {
		return n.rdb.Publish(ctx, n.channel, payload).Err()
	})
}

// CircuitState exposes the breaker state for the health endpoint.
func (n *SaleNotifier) CircuitState() string {
	return n.cb.State().String()
}
