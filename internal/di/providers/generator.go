package providers

import (
	"github.com/samber/do/v2"

	"github.com/alibiapp/alibi-server/internal/config"
	"github.com/alibiapp/alibi-server/internal/llm"
	"github.com/alibiapp/alibi-server/internal/logger"
)

// GeneratorHandle carries the LLM client. Client is nil when no API key is
// configured; the excuse service then serves catalog fallbacks instead.
type GeneratorHandle struct {
	Client *llm.Client
}

// ProvideGenerator provides the remote excuse generator.
func ProvideGenerator(i do.Injector) (*GeneratorHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.LLM.APIKey == "" {
		log.Warn("No Anthropic API key configured - serving local catalog excuses only")
		return &GeneratorHandle{}, nil
	}

	client := llm.New(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Timeout, log.Logger)
	log.Info("Remote excuse generation enabled", "model", cfg.LLM.Model)

	return &GeneratorHandle{Client: client}, nil
}
