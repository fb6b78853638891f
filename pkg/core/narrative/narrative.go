// Package narrative produces the prose sections of a report. Narrators are
// strictly downstream of the numeric engine: they phrase computed results and
// are never allowed to alter or invent a number.
package narrative

import (
	"context"

	"consensus_valuation/pkg/core/consensus"
	"consensus_valuation/pkg/core/report"
)

// Narrator turns an analysis into the report's prose sections.
type Narrator interface {
	Generate(ctx context.Context, a *consensus.Analysis) (*report.Narrative, error)
}

// maxItems caps each considerations section at the report template's four
// numbered points.
const maxItems = 4
