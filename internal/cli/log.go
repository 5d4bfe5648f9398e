package cli

import (
	"time"

	"github.com/andywolf/stigmergy/internal/cloudlog"
	"github.com/andywolf/stigmergy/internal/supervisor"
)

func executionRecordFrom(o supervisor.ExecutionOutcome) cloudlog.OutcomeRecord {
	return cloudlog.OutcomeRecord{
		Timestamp:     time.Now(),
		CLI:           o.Cli,
		Success:       o.Success,
		ExitCode:      o.ExitCode,
		ElapsedMillis: o.Elapsed.Milliseconds(),
		NeedsRecovery: o.NeedsRecovery,
		Error:         o.Error,
	}
}
