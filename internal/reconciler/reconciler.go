// Package reconciler decides, once per load, where each piece of dashboard
// state comes from: the backend, the local store, or the built-in defaults.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aristath/stoxy/internal/clients/stoxyapi"
	"github.com/aristath/stoxy/internal/domain"
	"github.com/aristath/stoxy/internal/events"
	"github.com/aristath/stoxy/internal/localstore"
	"github.com/aristath/stoxy/internal/state"
	"github.com/rs/zerolog"
)

// Phase is a step of the load state machine
type Phase string

const (
	PhaseProbing       Phase = "probing"
	PhaseRemoteLoad    Phase = "remote_load"
	PhaseLocalFallback Phase = "local_fallback"
	PhaseDone          Phase = "done"
)

// Source records where a resource's current value came from
type Source string

const (
	SourceDefault Source = "default"
	SourceRemote  Source = "remote"
	SourceLocal   Source = "local"
)

// Resource names a reconciled piece of state
type Resource string

const (
	ResourcePortfolio        Resource = "portfolio"
	ResourceHoldings         Resource = "holdings"
	ResourceWatchlist        Resource = "watchlist"
	ResourceAlerts           Resource = "alerts"
	ResourcePortfolios       Resource = "portfolios"
	ResourceSettings         Resource = "settings"
	ResourceUserProfile      Resource = "user_profile"
	ResourceCurrentPortfolio Resource = "current_portfolio"
)

// Gateway is the subset of the API client the reconciler reads from
type Gateway interface {
	Health(ctx context.Context) stoxyapi.Result[stoxyapi.HealthStatus]
	GetPortfolio(ctx context.Context) stoxyapi.Result[*stoxyapi.PortfolioRecord]
	GetHoldings(ctx context.Context) stoxyapi.Result[[]stoxyapi.HoldingRecord]
	GetWatchlist(ctx context.Context) stoxyapi.Result[[]stoxyapi.WatchlistRecord]
	GetAlerts(ctx context.Context) stoxyapi.Result[[]stoxyapi.AlertRecord]
	GetPortfolios(ctx context.Context) stoxyapi.Result[[]stoxyapi.ContainerRecord]
}

// LocalStore is the snapshot reader used by the fallback phase
type LocalStore interface {
	Load(key localstore.Key, v interface{}) error
}

// Outcome describes one reconcile pass
type Outcome struct {
	Phases  []Phase
	Sources map[Resource]Source
}

// Source returns where r came from (default when untouched)
func (o Outcome) Source(r Resource) Source {
	if s, ok := o.Sources[r]; ok {
		return s
	}
	return SourceDefault
}

// Reconciler runs the load state machine against an app state
type Reconciler struct {
	gateway Gateway
	store   LocalStore
	state   *state.AppState
	events  *events.Manager
	log     zerolog.Logger
	now     func() time.Time
}

// New creates a reconciler. eventManager may be nil.
func New(gateway Gateway, store LocalStore, appState *state.AppState, eventManager *events.Manager, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		gateway: gateway,
		store:   store,
		state:   appState,
		events:  eventManager,
		log:     log.With().Str("component", "reconciler").Logger(),
		now:     time.Now,
	}
}

// run tracks one pass
type run struct {
	mu      sync.Mutex
	outcome Outcome
}

func (r *run) enter(p Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcome.Phases = append(r.outcome.Phases, p)
}

func (r *run) set(res Resource, src Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcome.Sources[res] = src
}

// Run performs one pass: Probing, then RemoteLoad or LocalFallback, then Done.
// It never fails; every problem degrades to local or default data.
func (r *Reconciler) Run(ctx context.Context) Outcome {
	pass := &run{outcome: Outcome{Sources: make(map[Resource]Source)}}

	pass.enter(PhaseProbing)
	health := r.gateway.Health(ctx)

	if health.Failed() || !health.Data.OK() {
		r.log.Warn().
			Err(health.Err).
			Str("status", health.Data.Status).
			Msg("Backend unavailable, using local data")
		r.localFallback(pass)
	} else if err := r.remoteLoad(ctx, pass); err != nil {
		r.log.Error().Err(err).Msg("Remote load aborted, using local data")
		r.localFallback(pass)
	}

	r.loadPreferences(pass)

	pass.enter(PhaseDone)
	r.publish(pass.outcome)
	return pass.outcome
}

// Reload resets the state to defaults and runs a fresh pass.
// Notification history and market status are not loaded data and survive the reset.
func (r *Reconciler) Reload(ctx context.Context) Outcome {
	fresh := state.DefaultData(r.now())
	r.state.Update(func(d *state.Data) {
		fresh.Notifications = d.Notifications
		fresh.Market = d.Market
		*d = fresh
	})
	return r.Run(ctx)
}

// remoteLoad fetches the independent resources concurrently.
// Each one is applied in its own critical section as soon as it arrives.
func (r *Reconciler) remoteLoad(ctx context.Context, pass *run) (err error) {
	pass.enter(PhaseRemoteLoad)

	loaders := []func(){
		func() { r.applyRemotePortfolio(ctx, pass) },
		func() { r.applyRemoteHoldings(ctx, pass) },
		func() { r.applyRemoteWatchlist(ctx, pass) },
		func() { r.applyRemoteAlerts(ctx, pass) },
		func() { r.applyRemotePortfolios(ctx, pass) },
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var panics []error

	for _, load := range loaders {
		wg.Add(1)
		go func(load func()) {
			defer wg.Done()
			defer func() {
				if p := recover(); p != nil {
					mu.Lock()
					panics = append(panics, fmt.Errorf("panic: %v", p))
					mu.Unlock()
				}
			}()
			load()
		}(load)
	}
	wg.Wait()

	return errors.Join(panics...)
}

func (r *Reconciler) applyRemotePortfolio(ctx context.Context, pass *run) {
	res := r.gateway.GetPortfolio(ctx)
	if res.Failed() || res.Data == nil {
		return
	}
	p, ok := res.Data.ToDomain()
	if !ok {
		r.log.Warn().Msg("Remote portfolio has no total_value, keeping current")
		return
	}
	r.state.Update(func(d *state.Data) { d.Portfolio = p })
	pass.set(ResourcePortfolio, SourceRemote)
	r.log.Info().Msg("Portfolio loaded from API")
}

func (r *Reconciler) applyRemoteHoldings(ctx context.Context, pass *run) {
	res := r.gateway.GetHoldings(ctx)
	if res.Failed() {
		return
	}
	holdings, ok := NormalizeHoldings(res.Data)
	if !ok {
		r.log.Warn().Int("count", len(res.Data)).Msg("Remote holdings missing or malformed, keeping current")
		return
	}
	r.state.Update(func(d *state.Data) { d.Holdings = holdings })
	pass.set(ResourceHoldings, SourceRemote)
	r.log.Info().Int("count", len(holdings)).Msg("Holdings loaded from API")
}

func (r *Reconciler) applyRemoteWatchlist(ctx context.Context, pass *run) {
	res := r.gateway.GetWatchlist(ctx)
	if res.Failed() {
		return
	}
	items, ok := NormalizeWatchlist(res.Data)
	if !ok {
		r.log.Warn().Int("count", len(res.Data)).Msg("Remote watchlist missing or malformed, keeping current")
		return
	}
	r.state.Update(func(d *state.Data) { d.Watchlist = items })
	pass.set(ResourceWatchlist, SourceRemote)
	r.log.Info().Int("count", len(items)).Msg("Watchlist loaded from API")
}

func (r *Reconciler) applyRemoteAlerts(ctx context.Context, pass *run) {
	res := r.gateway.GetAlerts(ctx)
	if res.Failed() {
		return
	}
	alerts, ok := NormalizeAlerts(res.Data)
	if !ok {
		r.log.Warn().Int("count", len(res.Data)).Msg("Remote alerts missing or malformed, keeping current")
		return
	}
	r.state.Update(func(d *state.Data) { d.Alerts = alerts })
	pass.set(ResourceAlerts, SourceRemote)
	r.log.Info().Int("count", len(alerts)).Msg("Alerts loaded from API")
}

func (r *Reconciler) applyRemotePortfolios(ctx context.Context, pass *run) {
	res := r.gateway.GetPortfolios(ctx)
	if res.Failed() {
		return
	}
	containers, ok := NormalizeContainers(res.Data)
	if !ok {
		return
	}
	r.state.Update(func(d *state.Data) { d.Portfolios = containers })
	pass.set(ResourcePortfolios, SourceRemote)
}

// localFallback overwrites state with every snapshot present in the store
func (r *Reconciler) localFallback(pass *run) {
	pass.enter(PhaseLocalFallback)

	if p, ok := loadLocal[domain.Portfolio](r, localstore.KeyPortfolio); ok {
		r.state.Update(func(d *state.Data) { d.Portfolio = p })
		pass.set(ResourcePortfolio, SourceLocal)
	}
	if h, ok := loadLocal[[]domain.Holding](r, localstore.KeyHoldings); ok && len(h) > 0 {
		r.state.Update(func(d *state.Data) { d.Holdings = h })
		pass.set(ResourceHoldings, SourceLocal)
	}
	if w, ok := loadLocal[[]domain.WatchlistItem](r, localstore.KeyWatchlist); ok && len(w) > 0 {
		r.state.Update(func(d *state.Data) { d.Watchlist = w })
		pass.set(ResourceWatchlist, SourceLocal)
	}
	if a, ok := loadLocal[[]domain.Alert](r, localstore.KeyAlerts); ok && len(a) > 0 {
		r.state.Update(func(d *state.Data) { d.Alerts = a })
		pass.set(ResourceAlerts, SourceLocal)
	}
	if c, ok := loadLocal[[]domain.PortfolioContainer](r, localstore.KeyPortfolios); ok && len(c) > 0 {
		r.state.Update(func(d *state.Data) { d.Portfolios = c })
		pass.set(ResourcePortfolios, SourceLocal)
	}

	r.log.Info().Interface("sources", pass.outcome.Sources).Msg("Local data loaded")
}

// loadPreferences applies the local-only keys. The backend never stores these,
// so they are read on both paths.
func (r *Reconciler) loadPreferences(pass *run) {
	if s, ok := loadLocal[domain.Settings](r, localstore.KeySettings); ok {
		r.state.Update(func(d *state.Data) { d.Settings = s })
		pass.set(ResourceSettings, SourceLocal)
	}
	if p, ok := loadLocal[domain.UserProfile](r, localstore.KeyUserProfile); ok {
		r.state.Update(func(d *state.Data) { d.UserProfile = p })
		pass.set(ResourceUserProfile, SourceLocal)
	}
	if id, ok := loadLocal[int64](r, localstore.KeyCurrentPortfolio); ok && id > 0 {
		r.state.Update(func(d *state.Data) { d.CurrentPortfolio = id })
		pass.set(ResourceCurrentPortfolio, SourceLocal)
	}
}

func loadLocal[T any](r *Reconciler, key localstore.Key) (T, bool) {
	var v T
	if r.store == nil {
		return v, false
	}
	if err := r.store.Load(key, &v); err != nil {
		if !errors.Is(err, localstore.ErrNotFound) {
			r.log.Warn().Err(err).Str("key", string(key)).Msg("Failed to read local snapshot")
		}
		return v, false
	}
	return v, true
}

func (r *Reconciler) publish(o Outcome) {
	if r.events == nil {
		return
	}
	phases := make([]string, len(o.Phases))
	for i, p := range o.Phases {
		phases[i] = string(p)
	}
	sources := make(map[string]string, len(o.Sources))
	for res, src := range o.Sources {
		sources[string(res)] = string(src)
	}
	r.events.EmitTyped("reconciler", &events.StateLoadedData{Phases: phases, Sources: sources})
}
