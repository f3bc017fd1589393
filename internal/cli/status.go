package cli

import (
	"context"
	"flag"

	"github.com/google/subcommands"
)

type statusCmd struct {
	offline bool
}

func (*statusCmd) Name() string     { return "status" }
func (*statusCmd) Synopsis() string { return "print the portfolio, alerts and sync state" }
func (*statusCmd) Usage() string {
	return `stoxy status [-offline]

  Loads the portfolio the same way the dashboard does and prints it. With
  -offline only the local store is read.
`
}

func (c *statusCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.offline, "offline", false, "skip the API and read the local store only")
}

func (c *statusCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := open(ctx, false)
	if err != nil {
		return fail(err)
	}
	defer s.close()

	if c.offline {
		// a cancelled context fails the probe, which forces the local fallback
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		ctx = cancelled
	}

	report := StatusReport{
		UserID:  s.cfg.UserID,
		Outcome: s.container.Reconciler.Run(ctx),
	}
	s.container.MarketStatus.Check()
	report.Data = s.container.State.Snapshot()

	if kb, err := s.container.Store.SizeKB(); err == nil {
		report.StorageKB = kb
	}
	if t, ok, err := s.container.Store.LastSync(); err == nil && ok {
		report.LastSync = t
	}

	printMarkdown(StatusMarkdown(report))
	return subcommands.ExitSuccess
}
