package api

import (
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/concordsec/concord/internal/config"
	"github.com/concordsec/concord/internal/infrastructure"
	"github.com/concordsec/concord/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration: the oracle
// agent, the embedding provider settings, risk weighting, and pagination.
type Runtime struct {
	*infrastructure.Infrastructure
	Agent      gaconfig.AgentConfig
	Embeddings config.EmbeddingsConfig
	Risk       config.RiskConfig
	Pagination pagination.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
		},
		Agent:      cfg.Agent,
		Embeddings: cfg.Embeddings,
		Risk:       cfg.Risk,
		Pagination: cfg.API.Pagination,
	}
}
