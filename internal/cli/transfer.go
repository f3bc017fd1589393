package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/aristath/stoxy/internal/autosave"
	"github.com/aristath/stoxy/internal/transfer"
)

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the local data to a JSON backup file" }
func (*exportCmd) Usage() string {
	return `stoxy export [-o <file>]

  Refreshes the local store from the API when it is reachable, then writes
  portfolio, holdings, watchlist, alerts, news, settings and profile to a
  JSON document. The default file name is stoxy_backup_<date>.json; use
  -o - for stdout.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "output file (default stoxy_backup_<date>.json, - for stdout)")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := open(ctx, false)
	if err != nil {
		return fail(err)
	}
	defer s.close()

	s.container.Reconciler.Run(ctx)
	if err := s.container.Autosave.Flush(autosave.ReasonManual); err != nil {
		return fail(err)
	}

	if c.output == "-" {
		if err := s.container.Transfer.WriteTo(os.Stdout); err != nil {
			return fail(err)
		}
		return subcommands.ExitSuccess
	}

	name := c.output
	if name == "" {
		name = transfer.FileName(time.Now())
	}
	f, err := os.Create(name)
	if err != nil {
		return fail(err)
	}
	if err := s.container.Transfer.WriteTo(f); err != nil {
		f.Close()
		return fail(err)
	}
	if err := f.Close(); err != nil {
		return fail(err)
	}
	fmt.Fprintln(os.Stderr, "exported to", name)
	return subcommands.ExitSuccess
}

type importCmd struct{}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "load a JSON backup file into the local store" }
func (*importCmd) Usage() string {
	return `stoxy import <file>

  Writes every collection present in the file to the local store. A file
  that does not parse writes nothing.
`
}

func (*importCmd) SetFlags(*flag.FlagSet) {}

func (*importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "import requires exactly one file")
		return subcommands.ExitUsageError
	}

	file, err := os.Open(f.Arg(0))
	if err != nil {
		return fail(err)
	}
	defer file.Close()

	s, err := open(ctx, false)
	if err != nil {
		return fail(err)
	}
	defer s.close()

	keys, err := s.container.Transfer.Import(ctx, file)
	if err != nil {
		return fail(err)
	}
	for _, k := range keys {
		fmt.Println("imported", k)
	}
	return subcommands.ExitSuccess
}
