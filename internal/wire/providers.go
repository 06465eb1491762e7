package wire

import (
	"context"

	"github.com/nats-io/nats.go"
	"github.com/panjf2000/ants/v2"

	"journey-narrator/internal/application/narration"
	"journey-narrator/internal/config"
	"journey-narrator/internal/domain/service"
	"journey-narrator/internal/infrastructure/audio"
	"journey-narrator/internal/infrastructure/llm"
	"journey-narrator/internal/infrastructure/messaging"
	"journey-narrator/internal/infrastructure/persistence/redis"
	"journey-narrator/internal/interfaces/http/handler"
	"journey-narrator/internal/interfaces/http/middleware"
	"journey-narrator/internal/interfaces/http/router"
	"journey-narrator/internal/workflow/chain"
	wfmodel "journey-narrator/internal/workflow/model"
	"journey-narrator/pkg/logger"
	"journey-narrator/pkg/utils"
)

const defaultWorkerPoolSize = 4

// Narrator 不带 HTTP 的叙述运行时
type Narrator struct {
	Orchestrator *narration.Orchestrator
	Sessions     *narration.SessionManager
	RedisClient  *redis.Client
}

// App HTTP 服务运行时
type App struct {
	Router   *router.Router
	Sessions *narration.SessionManager
}

// ProvideRedisClient 仅在限流或事件流启用时连接 Redis，否则返回 nil
func ProvideRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.NeedsRedis() {
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(ctx, cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideNATSConn 仅在启用 NATS 发布时连接，否则返回 nil
func ProvideNATSConn(ctx context.Context, cfg *config.Config) (*nats.Conn, func(), error) {
	if !cfg.Messaging.NATS.Enabled {
		return nil, func() {}, nil
	}
	conn, err := messaging.ConnectNATS(ctx, cfg.Messaging.NATS)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = conn.Drain()
	}
	return conn, cleanup, nil
}

// ProvidePublisher 组合已启用的片段事件发布器；都未启用时返回 nil（编排器改用空发布器）
func ProvidePublisher(cfg *config.Config, client *redis.Client, natsConn *nats.Conn) service.SegmentEventPublisher {
	var fan messaging.FanOut
	if rs := cfg.Messaging.RedisStream; rs.Enabled && client != nil {
		stream := messaging.StreamJourneySegments
		if rs.Stream != "" {
			stream = messaging.Stream(rs.Stream)
		}
		fan = append(fan, messaging.NewPublisher(client.Redis(), stream, int64(rs.MaxLen)))
	}
	if natsConn != nil {
		fan = append(fan, messaging.NewNATSPublisher(natsConn, cfg.Messaging.NATS.SubjectPrefix))
	}
	switch len(fan) {
	case 0:
		return nil
	case 1:
		return fan[0]
	default:
		return fan
	}
}

// ProvideSynthesizer 提供语音合成后端
func ProvideSynthesizer(cfg *config.Config) (service.Synthesizer, error) {
	return audio.NewSynthesizer(cfg.Audio, cfg.Narration.WordsPerMinute)
}

// ProvideWorkerPool 提供执行语音合成的协程池
func ProvideWorkerPool(cfg *config.Config) (*ants.Pool, func(), error) {
	size := cfg.Pipeline.WorkerPoolSize
	if size <= 0 {
		size = defaultWorkerPoolSize
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, nil, err
	}
	return pool, pool.Release, nil
}

// ProvideChatModelFactory 提供 LLM ChatModel 工厂
func ProvideChatModelFactory(cfg *config.Config) *llm.EinoFactory {
	return llm.NewEinoFactory(cfg.LLM)
}

// ProvideSizer 提供片段规划器
func ProvideSizer(cfg *config.Config) narration.Sizer {
	return narration.NewSizer(cfg.Narration.SegmentSeconds, cfg.Narration.WordsPerMinute)
}

// ProvideOutlineGenerator 提供大纲生成器
func ProvideOutlineGenerator(cfg *config.Config, c *chain.OutlineChain) *narration.OutlineGenerator {
	return narration.NewOutlineGenerator(c, GenerationOptions(cfg, cfg.Narration.Outline))
}

// ProvideSegmentGenerator 提供片段生成器
func ProvideSegmentGenerator(cfg *config.Config, c *chain.SegmentChain, sizer narration.Sizer) *narration.SegmentGenerator {
	return narration.NewSegmentGenerator(c, GenerationOptions(cfg, cfg.Narration.Segment), sizer, cfg.Narration.ContextChars)
}

// ProvideOrchestrator 组装编排器
func ProvideOrchestrator(
	cfg *config.Config,
	sizer narration.Sizer,
	outline *narration.OutlineGenerator,
	segments *narration.SegmentGenerator,
	synth service.Synthesizer,
	pool *ants.Pool,
	publisher service.SegmentEventPublisher,
) *narration.Orchestrator {
	return narration.NewOrchestrator(sizer, outline, segments, synth, pool, publisher, narration.PolicyFromConfig(cfg.Pipeline))
}

// ProvideRateLimiter 提供旅程启动限流器，未启用时返回 nil
func ProvideRateLimiter(cfg *config.Config, client *redis.Client) middleware.RateLimiter {
	if !cfg.Security.RateLimit.Enabled || client == nil {
		return nil
	}
	return redis.NewRateLimiter(client)
}

// ProvideTokenParser 配置了 JWKS 时提供 RS256 验证器，否则返回 nil（由中间件按密钥验证）
func ProvideTokenParser(cfg *config.Config) (middleware.TokenParser, func(), error) {
	jwtCfg := cfg.Security.JWT
	if !jwtCfg.Enabled || jwtCfg.JWKSURL == "" {
		return nil, func() {}, nil
	}
	verifier, err := utils.NewJWKSVerifier(jwtCfg.JWKSURL, jwtCfg.Issuer)
	if err != nil {
		return nil, nil, err
	}
	return verifier, verifier.Close, nil
}

// ProvideHealthHandler 提供健康检查处理器
func ProvideHealthHandler(cfg *config.Config, client *redis.Client) *handler.HealthHandler {
	if client == nil {
		return handler.NewHealthHandler(cfg.App.Version, nil)
	}
	return handler.NewHealthHandler(cfg.App.Version, client)
}

// ProvideJourneyHandler 提供旅程处理器
func ProvideJourneyHandler(cfg *config.Config, sessions *narration.SessionManager) *handler.JourneyHandler {
	return handler.NewJourneyHandler(sessions, cfg.Audio.DefaultVoice)
}

// ProvideRouter 提供路由器
func ProvideRouter(ctx context.Context, cfg *config.Config, health *handler.HealthHandler, journey *handler.JourneyHandler, limiter middleware.RateLimiter, parser middleware.TokenParser) *router.Router {
	if cfg.Security.RateLimit.Enabled && limiter == nil {
		logger.Warn(ctx, "rate limit enabled but redis unavailable, journeys are not limited")
	}
	return router.New(cfg, router.Handlers{
		Health:      health,
		Journey:     journey,
		RateLimiter: limiter,
		TokenParser: parser,
	})
}

// GenerationOptions 由配置构造单类请求的模型参数
func GenerationOptions(cfg *config.Config, p config.GenerationParams) wfmodel.GenerationOptions {
	opts := wfmodel.GenerationOptions{Provider: cfg.LLM.DefaultProvider}
	if pc, ok := cfg.LLM.Providers[opts.Provider]; ok {
		opts.Model = pc.Model
		opts.Timeout = pc.Timeout
	}
	if p.Temperature > 0 {
		t := float32(p.Temperature)
		opts.Temperature = &t
	}
	if p.MaxTokens > 0 {
		n := p.MaxTokens
		opts.MaxTokens = &n
	}
	return opts
}
