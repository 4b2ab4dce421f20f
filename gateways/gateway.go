package gateways

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/reusee/quizrun/configs"
	"github.com/reusee/quizrun/generators"
	"github.com/reusee/quizrun/logs"
	"github.com/reusee/quizrun/tools"
	"github.com/reusee/quizrun/vars"
)

type Temperature float32

func (Module) Temperature(
	loader configs.Loader,
) Temperature {
	if value, err := firstFloat(loader, "temperature"); err == nil {
		return Temperature(value)
	}
	return 0.1
}

func firstFloat(loader configs.Loader, path string) (float64, error) {
	var value float64
	if err := loader.AssignFirst(path, &value); err != nil {
		return 0, err
	}
	return value, nil
}

type MaxGenerateTokens int

func (Module) MaxGenerateTokens(
	loader configs.Loader,
) MaxGenerateTokens {
	return vars.FirstNonZero(
		configs.First[MaxGenerateTokens](loader, "max_generate_tokens"),
		MaxGenerateTokens(8*generators.K),
	)
}

// Gateway is the only path to the reasoning service. It binds the tool
// declarations and decoding settings, and goes through the shared
// RateLimiter. It never retries.
type Gateway struct {
	getGenerator func() (generators.Generator, error)
	limiter      *RateLimiter
	options      generators.GenerateOptions
	logger       logs.Logger
}

func (Module) Gateway(
	getGenerator generators.GetDefaultGenerator,
	limiter *RateLimiter,
	registry *tools.Registry,
	temperature Temperature,
	maxTokens MaxGenerateTokens,
	logger logs.Logger,
) *Gateway {
	return &Gateway{
		getGenerator: sync.OnceValues((func() (generators.Generator, error))(getGenerator)),
		limiter:      limiter,
		options: generators.GenerateOptions{
			Tools:             registry.Decls(),
			Temperature:       vars.PtrTo(float32(temperature)),
			MaxGenerateTokens: vars.PtrTo(int(maxTokens)),
		},
		logger: logger,
	}
}

func (g *Gateway) Options() generators.GenerateOptions {
	return g.options
}

// Invoke sends the whole conversation and returns the reasoner message.
func (g *Gateway) Invoke(ctx context.Context, conv *generators.Conversation) (ret *generators.Content, err error) {
	generator, err := g.getGenerator()
	if err != nil {
		return nil, fmt.Errorf("get generator: %w", err)
	}

	if tokens, err := generators.CountConversation(generator, conv); err == nil {
		g.logger.DebugContext(ctx, "reasoning request",
			"messages", conv.Len(),
			"tokens", tokens,
		)
	}

	err = g.limiter.Do(ctx, func() error {
		started := time.Now()
		ret, err = generator.Generate(ctx, conv, g.options)
		g.logger.InfoContext(ctx, "reasoning call",
			"model", generator.Args().Model,
			"duration", time.Since(started),
			"ok", err == nil,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}
