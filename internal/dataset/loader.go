package dataset

import (
	"log/slog"

	"github.com/ulleunglab/transport-dashboard/internal/observability"
)

// Loader reads the CSV sources. The logger carries row accounting at
// debug level and source-level problems at warn; a missing source is
// never an error.
type Loader struct {
	log     *slog.Logger
	metrics *observability.Metrics
}

// NewLoader builds a Loader. Both arguments are required.
func NewLoader(logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{log: logger, metrics: metrics}
}
