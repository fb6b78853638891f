// Package agent routes narrative roles to configured LLM providers.
package agent

import (
	"context"
	"fmt"
	"sort"

	"consensus_valuation/pkg/core/llm"
)

// Config is the models.yaml shape: one globally active provider plus
// per-role overrides.
type Config struct {
	ActiveProvider string                `yaml:"active_provider"`
	Roles          map[string]RoleConfig `yaml:"roles"`
}

// RoleConfig overrides the provider or model for one narrative role.
type RoleConfig struct {
	Provider    string `yaml:"provider"` // optional override
	Model       string `yaml:"model"`    // optional override
	Description string `yaml:"description"`
}

// Manager owns the provider registry and resolves roles against the config.
type Manager struct {
	config    Config
	providers map[string]llm.Provider
}

func NewManager(config Config) *Manager {
	return &Manager{
		config: config,
		providers: map[string]llm.Provider{
			"deepseek":      &llm.DeepSeekProvider{},
			"gemini":        &llm.GeminiProvider{},
			"gemini_legacy": &llm.GeminiLegacyProvider{},
			"qwen":          &llm.QwenProvider{},
		},
	}
}

// GetProvider resolves a role to a provider: role override first, then the
// globally active provider, then DeepSeek.
func (m *Manager) GetProvider(role string) llm.Provider {
	if roleCfg, ok := m.config.Roles[role]; ok && roleCfg.Provider != "" {
		if p, ok := m.providers[roleCfg.Provider]; ok {
			return p
		}
	}
	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return p
	}
	return m.providers["deepseek"]
}

// GetProviderByName retrieves a provider by its registry name.
func (m *Manager) GetProviderByName(name string) llm.Provider {
	return m.providers[name]
}

// ExecutePrompt resolves the role and forwards the prompt, injecting any
// configured model override into the options.
func (m *Manager) ExecutePrompt(ctx context.Context, role string, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	provider := m.GetProvider(role)
	if options == nil {
		options = map[string]interface{}{}
	}
	if roleCfg, ok := m.config.Roles[role]; ok && roleCfg.Model != "" {
		if _, set := options["model"]; !set {
			options["model"] = roleCfg.Model
		}
	}
	return provider.GenerateResponse(ctx, prompt, systemPrompt, options)
}

// RoleProvider exposes one configured role as a plain Provider, so callers
// that only speak the Provider interface still get role routing and model
// overrides.
type RoleProvider struct {
	mgr  *Manager
	role string
}

// ForRole returns a Provider bound to the given role.
func (m *Manager) ForRole(role string) *RoleProvider {
	return &RoleProvider{mgr: m, role: role}
}

func (r *RoleProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	return r.mgr.ExecutePrompt(ctx, r.role, prompt, systemPrompt, options)
}

// SetGlobalProvider switches the active provider at runtime.
func (m *Manager) SetGlobalProvider(name string) error {
	if _, ok := m.providers[name]; !ok {
		return fmt.Errorf("provider %s not found", name)
	}
	m.config.ActiveProvider = name
	fmt.Printf("[AGENT] Global provider set to: %s\n", name)
	return nil
}

// GetActiveProvider returns the current global provider name.
func (m *Manager) GetActiveProvider() string {
	return m.config.ActiveProvider
}

// ProviderNames lists the registry in stable order.
func (m *Manager) ProviderNames() []string {
	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
