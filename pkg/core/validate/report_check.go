package validate

import (
	"fmt"
	"strings"

	"consensus_valuation/pkg/core/consensus"
	"consensus_valuation/pkg/core/utils"
)

// =============================================================================
// REPORT LINKAGE
// The rendered markdown is checked back against the analysis it came from.
// A report that drifts from its own numbers is worse than no report.
// =============================================================================

// ReportLinkage holds the structural and verdict checks for one rendered
// report.
type ReportLinkage struct {
	ParsesAsMarkdown   bool     `json:"parses_as_markdown"`
	HasDecisionMatrix  bool     `json:"has_decision_matrix"`
	HasFinalAssessment bool     `json:"has_final_assessment"`
	HasRecommendation  bool     `json:"has_recommendation"`
	HasTargetRange     bool     `json:"has_target_range"`
	MatrixRows         int      `json:"matrix_rows"`
	ExpectedRows       int      `json:"expected_rows"`
	VerdictLinked      bool     `json:"verdict_linked"`
	AllPassed          bool     `json:"all_passed"`
	FailedChecks       []string `json:"failed_checks,omitempty"`
}

// ValidateReportOutput checks a rendered report against its source analysis:
// required sections present, one matrix row per method, and the same verdict
// in the assessment and recommendation headings.
func ValidateReportOutput(markdown string, a *consensus.Analysis) *ReportLinkage {
	verdict := string(a.Recommendation.OverallSignal)

	link := &ReportLinkage{
		ParsesAsMarkdown:   utils.ValidateMarkdown(markdown),
		HasDecisionMatrix:  strings.Contains(markdown, "## Investment Decision Matrix"),
		HasFinalAssessment: strings.Contains(markdown, "## Final Assessment:"),
		HasRecommendation:  strings.Contains(markdown, "## Recommendation:"),
		HasTargetRange:     strings.Contains(markdown, "**Risk-Adjusted Target:** $"),
		MatrixRows:         countMatrixRows(markdown),
		ExpectedRows:       len(a.Results),
	}
	link.VerdictLinked = strings.Contains(markdown, fmt.Sprintf("## Final Assessment: **%s**", verdict)) &&
		strings.Contains(markdown, fmt.Sprintf("## Recommendation: **%s**", verdict))

	link.AllPassed = true
	failIf := func(bad bool, reason string) {
		if bad {
			link.AllPassed = false
			link.FailedChecks = append(link.FailedChecks, reason)
		}
	}
	failIf(!link.ParsesAsMarkdown, "report does not parse as markdown")
	failIf(!link.HasDecisionMatrix, "missing decision matrix section")
	failIf(!link.HasFinalAssessment, "missing final assessment section")
	failIf(!link.HasRecommendation, "missing recommendation section")
	failIf(!link.HasTargetRange, "missing target range line")
	failIf(link.MatrixRows != link.ExpectedRows,
		fmt.Sprintf("matrix has %d rows, analysis has %d methods", link.MatrixRows, link.ExpectedRows))
	failIf(!link.VerdictLinked, fmt.Sprintf("verdict %s not stated consistently", verdict))

	return link
}

// countMatrixRows counts decision-matrix data rows. Data rows are the only
// table lines carrying a bold signal cell.
func countMatrixRows(markdown string) int {
	rows := 0
	for _, line := range strings.Split(markdown, "\n") {
		if strings.HasPrefix(line, "| ") && strings.Contains(line, "| **") {
			rows++
		}
	}
	return rows
}
