package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the Status Board report",
	Long: `Print a human-readable dump of the project's Status Board: current CLI,
task queue, findings, decisions and collaboration history.

Examples:
  stigmergy status
  stigmergy status --watch --interval 5s`,
	Args: cobra.NoArgs,
	RunE: showStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().Bool("watch", false, "re-print the report on an interval")
	statusCmd.Flags().Duration("interval", 5*time.Second, "watch interval")
}

func showStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	application, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer application.close()

	watch, _ := cmd.Flags().GetBool("watch")
	interval, _ := cmd.Flags().GetDuration("interval")

	for {
		report, err := application.board.Report()
		if err != nil {
			return fmt.Errorf("read status board: %w", err)
		}
		fmt.Print(report)

		if !watch {
			return nil
		}

		fmt.Println("\n---")
		time.Sleep(interval)
	}
}
