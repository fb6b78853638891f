// Package llm holds the text-generation providers that back report
// narratives. Providers are interchangeable transports: the engine's numbers
// are computed before any provider runs and no provider output feeds back
// into them.
package llm

import "context"

// Provider is the interface for all LLM providers. Options carry
// provider-specific knobs ("model", "api_key", "response_format") that each
// implementation reads as it understands them.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}

// wantsJSON reports whether the caller asked for a JSON-object response.
func wantsJSON(options map[string]interface{}) bool {
	val, ok := options["response_format"].(map[string]interface{})
	return ok && val["type"] == "json_object"
}
