package fuelkpi

import (
	"context"

	"github.com/gridsmith/powerplan/core/events"
	"github.com/gridsmith/powerplan/core/logger"
	"github.com/gridsmith/powerplan/core/metrics/fuel"
	"github.com/gridsmith/powerplan/internal/eventbus"
)

// Collect subscribes to the event bus and records one fuel KPI row per
// simulated year. It stops when the context is canceled.
func Collect(ctx context.Context, bus eventbus.EventBus, store fuel.Store, log logger.Logger) {
	if bus == nil || store == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				e, ok := ev.(events.YearSimulated)
				if !ok {
					continue
				}
				rec := fuel.Record{
					RunID:        e.RunID,
					Year:         e.Year,
					DeliveredMWh: e.Summary.EnergyDeliveredMWh,
					FuelMMBtu:    e.Summary.FuelMMBtu,
					GasMCF:       e.Summary.GasMCF,
				}
				if err := store.Add(rec); err != nil && log != nil {
					log.Errorf("fuel kpi add run=%s year=%d: %v", e.RunID, e.Year, err)
				}
			}
		}
	}()
}
