// Package simulation drives the simulated price walk.
//
// Each tick moves watchlist prices and holding values, recomputes the
// portfolio totals in the same critical section, then runs the registered
// observers in registration order.
package simulation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aristath/stoxy/internal/domain"
	"github.com/aristath/stoxy/internal/state"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
)

// JobName is the scheduler name of the tick job
const JobName = "price_tick"

// Tick describes one completed price update
type Tick struct {
	Seq       uint64
	At        time.Time
	Portfolio domain.Portfolio
}

// Observer runs after every tick, once the state lock is released
type Observer interface {
	Name() string
	OnTick(ctx context.Context, t Tick) error
}

// ObserverFunc adapts a function to Observer
type ObserverFunc struct {
	ObserverName string
	Fn           func(ctx context.Context, t Tick) error
}

// Name returns the observer name
func (o ObserverFunc) Name() string { return o.ObserverName }

// OnTick calls Fn
func (o ObserverFunc) OnTick(ctx context.Context, t Tick) error { return o.Fn(ctx, t) }

// Ticker applies the price walk to the app state
type Ticker struct {
	state  *state.AppState
	log    zerolog.Logger
	random func() float64
	now    func() time.Time

	mu        sync.Mutex
	observers []Observer
	seq       atomic.Uint64
}

// NewTicker creates a ticker over appState
func NewTicker(appState *state.AppState, log zerolog.Logger) *Ticker {
	return &Ticker{
		state:  appState,
		log:    log.With().Str("component", "simulation").Logger(),
		random: rand.Float64,
		now:    time.Now,
	}
}

// WithRandom replaces the uniform [0,1) source, for deterministic runs
func (t *Ticker) WithRandom(fn func() float64) *Ticker {
	t.random = fn
	return t
}

// Register appends an observer. Observers run in registration order.
func (t *Ticker) Register(o Observer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, o)
}

// Observers returns the registered observer names in run order
func (t *Ticker) Observers() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	names := make([]string, len(t.observers))
	for i, o := range t.observers {
		names[i] = o.Name()
	}
	return names
}

// Name implements scheduler.Job
func (t *Ticker) Name() string { return JobName }

// Run implements scheduler.Job
func (t *Ticker) Run() error {
	_, err := t.Tick(context.Background())
	return err
}

// Tick moves prices once and notifies observers. An observer error or panic
// is logged and does not stop later observers; the first error is returned.
func (t *Ticker) Tick(ctx context.Context) (Tick, error) {
	var summary domain.Portfolio
	t.state.Update(func(d *state.Data) {
		t.step(d)
		summary = d.Portfolio
	})

	tick := Tick{Seq: t.seq.Add(1), At: t.now(), Portfolio: summary}

	t.mu.Lock()
	observers := append([]Observer(nil), t.observers...)
	t.mu.Unlock()

	var firstErr error
	for _, o := range observers {
		if err := t.notify(ctx, o, tick); err != nil {
			t.log.Error().Err(err).Str("observer", o.Name()).Uint64("tick", tick.Seq).Msg("Tick observer failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return tick, firstErr
}

func (t *Ticker) notify(ctx context.Context, o Observer, tick Tick) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("observer %s panicked: %v", o.Name(), r)
		}
	}()
	return o.OnTick(ctx, tick)
}

// step mutates d in place. Caller holds the state lock.
func (t *Ticker) step(d *state.Data) {
	for i := range d.Watchlist {
		item := &d.Watchlist[i]
		change := domain.Number((t.random() - 0.5) * 2)
		item.Price += change
		item.Change += change
		item.ChangePercent = item.Change / (item.Price - item.Change) * 100
	}

	for i := range d.Holdings {
		h := &d.Holdings[i]
		change := domain.Number((t.random() - 0.5) * 5)
		h.Value += change * h.Quantity
		h.ChangePercent = domain.Number((t.random() - 0.5) * 3)
	}

	RecomputeTotals(d)
	d.Portfolio.TodayGain = domain.Number((t.random() - 0.3) * 3000)
	d.Portfolio.TodayGainPercent = d.Portfolio.TodayGain / d.Portfolio.TotalValue * 100
}

// RecomputeTotals sets the portfolio total and the stocks/crypto split from
// the holdings. ETFs and untyped holdings count toward the total only.
// NaN values propagate into the sums.
func RecomputeTotals(d *state.Data) {
	values := make([]float64, 0, len(d.Holdings))
	var stocks, crypto []float64
	for _, h := range d.Holdings {
		values = append(values, h.Value.Float())
		switch h.Type {
		case domain.AssetStock:
			stocks = append(stocks, h.Value.Float())
		case domain.AssetCrypto:
			crypto = append(crypto, h.Value.Float())
		}
	}

	d.Portfolio.TotalValue = domain.Number(floats.Sum(values))
	d.Portfolio.Stocks = domain.Number(floats.Sum(stocks))
	d.Portfolio.Crypto = domain.Number(floats.Sum(crypto))
}
