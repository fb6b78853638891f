package prompt

// Convenience functions for common prompt operations

// GetNarrativePrompt returns a narrative prompt's system prompt by name
func GetNarrativePrompt(name string) (string, error) {
	id := "narrative." + name
	return Get().GetSystemPrompt(id)
}

// PromptIDs contains all known prompt identifiers
var PromptIDs = struct {
	NarrativeReportSections string
}{
	NarrativeReportSections: "narrative.report_sections",
}
