package simulation

import (
	"context"

	"github.com/aristath/stoxy/internal/events"
)

// Publisher is a tick observer that emits PricesTicked
type Publisher struct {
	events *events.Manager
}

// NewPublisher creates the event publishing observer
func NewPublisher(eventManager *events.Manager) *Publisher {
	return &Publisher{events: eventManager}
}

// Name implements Observer
func (p *Publisher) Name() string { return "event_publisher" }

// OnTick implements Observer
func (p *Publisher) OnTick(_ context.Context, t Tick) error {
	p.events.EmitTyped("simulation", &events.PricesTickedData{
		Tick:       t.Seq,
		TotalValue: t.Portfolio.TotalValue.Float(),
		TodayGain:  t.Portfolio.TodayGain.Float(),
	})
	return nil
}
