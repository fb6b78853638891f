// Package prompt is the externalized prompt library. Prompts live in JSON
// files under resources/ and load at runtime, so wording changes never need
// a rebuild; callers keep a built-in fallback for when no library is loaded.
package prompt

// PromptTemplate is one reusable prompt with its metadata.
type PromptTemplate struct {
	ID             string           `json:"id"`                   // e.g. "narrative.report_sections"
	Name           string           `json:"name"`                 // Human-readable name
	Category       string           `json:"category"`             // Folder-derived grouping
	Description    string           `json:"description"`          // What the prompt is for
	SystemPrompt   string           `json:"system_prompt"`        // The system prompt content
	UserPromptTmpl string           `json:"user_prompt_template"` // Go template for the user prompt
	Variables      []PromptVariable `json:"variables"`            // Variables the template expects
	Version        string           `json:"version"`              // Version for tracking changes
}

// PromptVariable documents one template variable.
type PromptVariable struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // string, int, float, array, object
	Description string `json:"description"`
	Required    bool   `json:"required"`
}
