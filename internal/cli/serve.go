package cli

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"github.com/aristath/stoxy/internal/dashboard"
)

type serveCmd struct{}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the dashboard server and its background jobs" }
func (*serveCmd) Usage() string {
	return `stoxy serve

  Loads the portfolio from the API (or the local store when the API is
  unreachable), starts the price tick, autosave and housekeeping jobs and
  serves the dashboard on DASHBOARD_PORT. The state is flushed to the local
  store on shutdown.
`
}

func (*serveCmd) SetFlags(*flag.FlagSet) {}

func (*serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := open(ctx, true)
	if err != nil {
		return fail(err)
	}
	c := s.container

	outcome := c.Start(ctx)
	s.log.Info().
		Str("holdings", string(outcome.Sources["holdings"])).
		Str("portfolio", string(outcome.Sources["portfolio"])).
		Msg("Initial load completed")

	srv := dashboard.New(dashboard.Config{
		Log:      s.log,
		Port:     s.cfg.DashboardPort,
		DevMode:  s.cfg.DevMode,
		State:    c.State,
		Gateway:  c.Gateway,
		Pipeline: c.Pipeline,
		Transfer: c.Transfer,
		Reloader: c.Reconciler,
		Flusher:  c.Autosave,
		Storage:  c.Store,
		Bus:      c.EventBus,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	// c.Stop is the unload flush
	status := serveUntil(s.log, srv, quit, c.Stop)
	if status == subcommands.ExitSuccess {
		s.log.Info().Msg("Dashboard stopped")
	}
	return status
}

type listener interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// serveUntil runs srv until quit fires or srv stops on its own, then shuts it
// down and calls stop. stop runs on every path.
func serveUntil(log zerolog.Logger, srv listener, quit <-chan os.Signal, stop func() error) subcommands.ExitStatus {
	errc := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	status := subcommands.ExitSuccess
	select {
	case <-quit:
	case err := <-errc:
		log.Error().Err(err).Msg("Dashboard server failed")
		status = subcommands.ExitFailure
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Dashboard forced to shutdown")
	}

	if err := stop(); err != nil {
		log.Error().Err(err).Msg("Final flush failed")
		return subcommands.ExitFailure
	}
	return status
}
