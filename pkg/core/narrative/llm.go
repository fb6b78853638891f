package narrative

import (
	"context"
	"encoding/json"
	"fmt"

	"consensus_valuation/pkg/core/consensus"
	"consensus_valuation/pkg/core/llm"
	"consensus_valuation/pkg/core/prompt"
	"consensus_valuation/pkg/core/report"
	"consensus_valuation/pkg/core/utils"
)

const narrativeSystemPrompt = `You are an equity research editor. You receive a completed valuation analysis as JSON and write the prose sections of the report around it.

Rules:
- Respond with a single JSON object: {"strengths": [{"title", "detail"}], "risks": [{"title", "detail"}], "growth_analysis": "...", "recommendation": "..."}.
- Provide up to 4 strengths and up to 4 risks.
- Use only numbers that appear in the input. Never compute, extrapolate or invent figures.
- Do not contradict the overall signal or any per-method signal.`

// LLMNarrator asks a provider to phrase the report sections. The provider
// output is repaired and validated; anything unusable drops to the fallback
// so a report is always written.
type LLMNarrator struct {
	Provider llm.Provider
	Fallback Narrator
	Options  map[string]interface{}
}

var _ Narrator = (*LLMNarrator)(nil)

func NewLLMNarrator(provider llm.Provider) *LLMNarrator {
	return &LLMNarrator{
		Provider: provider,
		Fallback: &TemplateNarrator{},
	}
}

func (l *LLMNarrator) Generate(ctx context.Context, a *consensus.Analysis) (*report.Narrative, error) {
	n, err := l.generateLLM(ctx, a)
	if err != nil {
		fmt.Printf("[NARRATIVE] LLM narrator failed, using template fallback: %v\n", err)
		return l.Fallback.Generate(ctx, a)
	}
	return n, nil
}

func (l *LLMNarrator) generateLLM(ctx context.Context, a *consensus.Analysis) (*report.Narrative, error) {
	payload, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis: %w", err)
	}

	options := map[string]interface{}{
		"response_format": map[string]interface{}{"type": "json_object"},
	}
	for k, v := range l.Options {
		options[k] = v
	}

	systemPrompt, userPrompt := l.prompts(string(payload))
	raw, err := l.Provider.GenerateResponse(ctx, userPrompt, systemPrompt, options)
	if err != nil {
		return nil, err
	}

	var n report.Narrative
	if _, err := utils.SmartParse(raw, &n); err != nil {
		return nil, err
	}
	n.GrowthAnalysis = utils.CleanMarkdown(n.GrowthAnalysis)
	n.Recommendation = utils.CleanMarkdown(n.Recommendation)
	if err := validate(&n); err != nil {
		return nil, err
	}
	return &n, nil
}

// prompts resolves the prompt pair from the loaded library, falling back to
// the built-in wording when no library entry exists.
func (l *LLMNarrator) prompts(payload string) (systemPrompt, userPrompt string) {
	systemPrompt = narrativeSystemPrompt
	userPrompt = fmt.Sprintf("Write the narrative sections for this analysis:\n\n%s", payload)

	pt, err := prompt.Get().GetPrompt(prompt.PromptIDs.NarrativeReportSections)
	if err != nil {
		return systemPrompt, userPrompt
	}
	if pt.SystemPrompt != "" {
		systemPrompt = pt.SystemPrompt
	}
	if rendered, err := prompt.RenderUserPrompt(pt, map[string]interface{}{"AnalysisJSON": payload}); err == nil && rendered != "" {
		userPrompt = rendered
	}
	return systemPrompt, userPrompt
}

// validate enforces the template contract on model output.
func validate(n *report.Narrative) error {
	if len(n.Strengths) == 0 || len(n.Risks) == 0 {
		return fmt.Errorf("NARRATIVE_INCOMPLETE: missing strengths or risks")
	}
	if n.GrowthAnalysis == "" || n.Recommendation == "" {
		return fmt.Errorf("NARRATIVE_INCOMPLETE: missing growth analysis or recommendation")
	}
	if len(n.Strengths) > maxItems {
		n.Strengths = n.Strengths[:maxItems]
	}
	if len(n.Risks) > maxItems {
		n.Risks = n.Risks[:maxItems]
	}
	for _, item := range append(append([]report.NarrativeItem{}, n.Strengths...), n.Risks...) {
		if item.Title == "" || item.Detail == "" {
			return fmt.Errorf("NARRATIVE_INCOMPLETE: empty consideration item")
		}
	}
	return nil
}
