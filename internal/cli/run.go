package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andywolf/stigmergy/internal/orchestrator"
)

var runCmd = &cobra.Command{
	Use:   "run <cli> \"<task>\"",
	Short: "Invoke one or more AI CLIs non-interactively",
	Long: `Invoke a registered AI CLI (claude, gemini, qwen, iflow, qodercli,
codebuddy, codex, copilot, kode) non-interactively on a task, optionally
with automatic resume/fallback recovery or fan-out across several CLIs.

Examples:
  stigmergy run qwen "sum 1..10"
  stigmergy run --auto claude "refactor the payment module"
  stigmergy run --parallel claude,qwen,iflow "refactor X"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTask,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("auto", false, "enable resume/fallback recovery")
	runCmd.Flags().String("parallel", "", "comma-separated CLI list to run concurrently")
	runCmd.Flags().Bool("no-context", false, "skip prepending the Status Board context summary")
}

func runTask(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	cancelled := false
	go func() {
		<-sigCh
		cancelled = true
		fmt.Fprintln(os.Stderr, "\nreceived interrupt, cancelling...")
		cancel()
	}()

	application, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer application.close()

	parallelFlag, _ := cmd.Flags().GetString("parallel")
	autoFlag, _ := cmd.Flags().GetBool("auto")
	noContext, _ := cmd.Flags().GetBool("no-context")

	includeCtx := !noContext
	opts := orchestrator.Options{IncludeContext: &includeCtx}

	var agg orchestrator.AggregateOutcome

	switch {
	case parallelFlag != "":
		cliList := strings.Split(parallelFlag, ",")
		for i := range cliList {
			cliList[i] = strings.TrimSpace(cliList[i])
		}
		task := strings.Join(args, " ")
		agg, err = application.orchestrator.Execute(ctx, task, orchestrator.ModeParallel, "", cliList, opts)

	case autoFlag:
		if len(args) < 2 {
			return fmt.Errorf("usage: stigmergy run --auto <cli> \"<task>\"")
		}
		cli := args[0]
		task := strings.Join(args[1:], " ")
		agg, err = application.orchestrator.Execute(ctx, task, orchestrator.ModeAutoFallback, cli, nil, opts)

	default:
		if len(args) < 2 {
			return fmt.Errorf("usage: stigmergy run <cli> \"<task>\"")
		}
		cli := args[0]
		task := strings.Join(args[1:], " ")
		agg, err = application.orchestrator.Execute(ctx, task, orchestrator.ModeSingle, cli, nil, opts)
	}

	if err != nil {
		application.sink.Error("execute: %v", err)
		os.Exit(2)
	}

	for _, outcome := range agg.Outcomes {
		printOutcome(outcome)
		recordOutcomeLog(application, outcome)
	}

	if cancelled {
		os.Exit(3)
	}
	if agg.AllFailed() {
		os.Exit(1)
	}
	return nil
}

func printOutcome(o orchestrator.Outcome) {
	status := "FAILED"
	if o.Success {
		status = "OK"
	}
	fmt.Printf("[%s] %s (state=%s, attempts=%d)\n", o.Cli, status, o.FinalState, len(o.Attempts))
	for _, attempt := range o.Attempts {
		if attempt.Stdout != "" {
			fmt.Print(attempt.Stdout)
		}
		if attempt.Stderr != "" {
			fmt.Fprint(os.Stderr, attempt.Stderr)
		}
	}
}

func recordOutcomeLog(a *app, o orchestrator.Outcome) {
	if len(o.Attempts) == 0 {
		return
	}
	last := o.Attempts[len(o.Attempts)-1]
	rec := executionRecordFrom(last)
	if err := a.sink.RecordOutcome(rec); err != nil {
		a.sink.Warning("record execution outcome: %v", err)
	}
}
