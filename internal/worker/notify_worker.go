package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"tillpos/internal/infra"
)

// NotifyWorker fans out settled-sale events to every subscribed terminal via
// the Redis pub/sub notifier. Failures are retried by the pool and eventually
// land in the DLQ — never bubbled back to the settle path.
type NotifyWorker struct {
	notifier *infra.SaleNotifier
}

func NewNotifyWorker(notifier *infra.SaleNotifier) *NotifyWorker {
	return &NotifyWorker{notifier: notifier}
}

func (w *NotifyWorker) Handle(ctx context.Context, payload json.RawMessage) error {
	var ev SaleEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return fmt.Errorf("notify: bad payload: %w", err)
	}

	if err := w.notifier.Publish(ctx, payload); err != nil {
		return fmt.Errorf("notify: publish sale %s: %w", ev.SaleID, err)
	}

	log.Debug().Str("sale_id", ev.SaleID).Str("total", ev.Total).Msg("sale event published")
	return nil
}
