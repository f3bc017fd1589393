package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/aristath/stoxy/internal/autosave"
)

type backupCmd struct {
	list bool
}

func (*backupCmd) Name() string     { return "backup" }
func (*backupCmd) Synopsis() string { return "upload an export to the backup bucket" }
func (*backupCmd) Usage() string {
	return `stoxy backup [-list]

  Uploads the current export to BACKUP_BUCKET, or lists the stored backups
  with -list. Requires BACKUP_ENABLED.
`
}

func (c *backupCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.list, "list", false, "list stored backups instead of uploading")
}

func (c *backupCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := open(ctx, false)
	if err != nil {
		return fail(err)
	}
	defer s.close()

	svc := s.container.Backup
	if svc == nil {
		return fail(errors.New("backups are not enabled (set BACKUP_ENABLED and BACKUP_BUCKET)"))
	}

	if c.list {
		backups, err := svc.ListBackups(ctx)
		if err != nil {
			return fail(err)
		}
		printMarkdown(BackupsMarkdown(backups))
		return subcommands.ExitSuccess
	}

	s.container.Reconciler.Run(ctx)
	if err := s.container.Autosave.Flush(autosave.ReasonManual); err != nil {
		return fail(err)
	}
	key, err := svc.CreateAndUpload(ctx)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintln(os.Stderr, "uploaded", key)
	return subcommands.ExitSuccess
}
