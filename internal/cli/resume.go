package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/andywolf/stigmergy/internal/errs"
)

// defaultResumeTimeout bounds a standalone resume invocation the same way
// the Recovery Coordinator bounds its own best-effort resume attempts.
const defaultResumeTimeout = 10 * time.Second

var resumeCmd = &cobra.Command{
	Use:   "resume <cli> [limit]",
	Short: "Run a CLI's own session-resume command directly",
	Long: `Invoke the resume command the registry has on file for cli, the same
command the Recovery Coordinator runs best-effort between retries, without
going through a task prompt.

limit overrides the resume command's timeout in seconds (default 10).

Examples:
  stigmergy resume claude
  stigmergy resume qwen 20`,
	Args: cobra.RangeArgs(1, 2),
	RunE: resumeCli,
}

func init() {
	rootCmd.AddCommand(resumeCmd)
}

func resumeCli(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	application, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer application.close()

	cliName := args[0]
	timeout := defaultResumeTimeout
	if len(args) == 2 {
		secs, err := strconv.Atoi(args[1])
		if err != nil || secs <= 0 {
			return fmt.Errorf("invalid limit %q: expected a positive number of seconds", args[1])
		}
		timeout = time.Duration(secs) * time.Second
	}

	d, ok := application.registry.Get(cliName)
	if !ok {
		fmt.Fprintf(os.Stderr, "%v: unknown cli %q\n", errs.ErrMisconfiguration, cliName)
		os.Exit(2)
	}
	if len(d.ResumeCommand) == 0 {
		fmt.Fprintf(os.Stderr, "cli %q has no resume command configured\n", cliName)
		os.Exit(2)
	}

	resumeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	outcome := application.supervisor.Run(resumeCtx, d.Name, d.Binary, d.ResumeCommand, timeout, os.Stdout, os.Stderr)
	if err := application.sink.RecordOutcome(executionRecordFrom(outcome)); err != nil {
		application.sink.Warning("record execution outcome: %v", err)
	}

	if !outcome.Success {
		os.Exit(1)
	}
	return nil
}
