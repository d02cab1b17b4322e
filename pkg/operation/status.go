package operation

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/status"
)

// Status runs the batch as a dry run.
// Returns true if any file would be rewritten, false otherwise
func (o *Orchestrator) Status(ctx context.Context) (bool, *status.Report, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Msg("checking status")

	report, err := o.run(ctx, true)
	if err != nil {
		return false, nil, err
	}

	if report.Changed > 0 {
		logger.Debug().Int("pending", report.Changed).Msg("files would be rewritten")
		return true, report, nil
	}

	logger.Debug().Msg("all files are up to date")
	return false, report, nil
}
