package config

import (
	"testing"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

func TestFinalizeAgentDefaults(t *testing.T) {
	cfg := gaconfig.AgentConfig{}
	t.Setenv(EnvAgentModelName, "llama3.1:8b")

	if err := FinalizeAgent(&cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Name != "default-agent" {
		t.Errorf("Name = %q, expected default-agent", cfg.Name)
	}
	if cfg.Client == nil || cfg.Client.Provider == nil {
		t.Fatal("expected client provider config")
	}
	if cfg.Client.Provider.Name != "ollama" {
		t.Errorf("provider = %q, expected ollama", cfg.Client.Provider.Name)
	}
	if cfg.Client.Provider.Model == nil || cfg.Client.Provider.Model.Name != "llama3.1:8b" {
		t.Errorf("model = %v, expected llama3.1:8b", cfg.Client.Provider.Model)
	}
}

func TestFinalizeAgentEnvOverrides(t *testing.T) {
	t.Setenv(EnvAgentProviderName, "azure")
	t.Setenv(EnvAgentBaseURL, "https://example.openai.azure.com")
	t.Setenv(EnvAgentModelName, "gpt-4o")
	t.Setenv(EnvAgentDeployment, "concord-gpt4o")
	t.Setenv(EnvAgentAuthType, "token")

	cfg := gaconfig.AgentConfig{Name: "crosswalk-oracle"}
	if err := FinalizeAgent(&cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	provider := cfg.Client.Provider
	if provider.Name != "azure" {
		t.Errorf("provider = %q, expected azure", provider.Name)
	}
	if provider.BaseURL != "https://example.openai.azure.com" {
		t.Errorf("base url = %q", provider.BaseURL)
	}
	if provider.Model.Name != "gpt-4o" {
		t.Errorf("model = %q, expected gpt-4o", provider.Model.Name)
	}
	if provider.Options["deployment"] != "concord-gpt4o" {
		t.Errorf("deployment option = %v", provider.Options["deployment"])
	}
	if provider.Options["auth_type"] != "token" {
		t.Errorf("auth_type option = %v", provider.Options["auth_type"])
	}
}

func TestFinalizeAgentMissingModel(t *testing.T) {
	cfg := gaconfig.AgentConfig{Name: "crosswalk-oracle"}
	if err := FinalizeAgent(&cfg); err == nil {
		t.Fatal("expected error for missing model name")
	}
}
