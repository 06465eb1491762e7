//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"journey-narrator/internal/application/narration"
	"journey-narrator/internal/config"
	"journey-narrator/internal/infrastructure/llm"
	"journey-narrator/internal/workflow/chain"
	workflowport "journey-narrator/internal/workflow/port"
	workflowprompt "journey-narrator/internal/workflow/prompt"
)

// InitializeNarrator 初始化叙述流水线（CLI 使用）
func InitializeNarrator(ctx context.Context, cfg *config.Config) (*Narrator, func(), error) {
	wire.Build(
		InfraSet,
		NarrationSet,
		wire.Struct(new(Narrator), "*"),
	)
	return nil, nil, nil
}

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	wire.Build(
		InfraSet,
		NarrationSet,
		RouterSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}

// InfraSet 基础设施提供者集合
var InfraSet = wire.NewSet(
	ProvideRedisClient,
	ProvideNATSConn,
	ProvidePublisher,
	ProvideSynthesizer,
	ProvideWorkerPool,
	ProvideChatModelFactory,
	wire.Bind(new(workflowport.ChatModelFactory), new(*llm.EinoFactory)),
)

// NarrationSet 叙述流水线提供者集合
var NarrationSet = wire.NewSet(
	workflowprompt.NewRegistry,
	chain.NewOutlineChain,
	chain.NewSegmentChain,
	ProvideSizer,
	ProvideOutlineGenerator,
	ProvideSegmentGenerator,
	ProvideOrchestrator,
	narration.NewSessionManager,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideRateLimiter,
	ProvideTokenParser,
	ProvideHealthHandler,
	ProvideJourneyHandler,
	ProvideRouter,
)
