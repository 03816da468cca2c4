package bootstrap

import (
	"context"
	"time"

	"guideline-agent-be/internal/config"
	"guideline-agent-be/internal/controller"
	"guideline-agent-be/internal/pkg/logger"
	"guideline-agent-be/internal/repository/memory"
	"guideline-agent-be/internal/repository/unitofwork"
	"guideline-agent-be/internal/service"
	"guideline-agent-be/pkg/database"
	"guideline-agent-be/pkg/embedding"
	embeddingFactory "guideline-agent-be/pkg/embedding/factory"
	llmFactory "guideline-agent-be/pkg/llm/factory"
	"guideline-agent-be/pkg/matching"
	pktNats "guideline-agent-be/pkg/nats"
	"guideline-agent-be/pkg/prompt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Logger logger.ILogger

	// Controllers
	ChatController         controller.IChatController
	GuidelineController    controller.IGuidelineController
	ConversationController controller.IConversationController
	EmbeddingController    controller.IEmbeddingController
	AnalyticsController    controller.IAnalyticsController
	HealthController       controller.IHealthController

	// Background Services (Exposed for main.go to run)
	UsageConsumerService service.IUsageConsumerService
	AnalyticsService     service.IAnalyticsService

	// Orchestrators finish their usage writes on shutdown
	Orchestrators []*matching.Orchestrator

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	c := &Container{Logger: sysLogger}

	// 2. Usage Bus
	// Publish returns once the consumer acked, so waiting on publishers covers the DB write.
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{BlockPublishUntilSubscriberAck: true},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS Publisher, analytics events disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		c.closers = append(c.closers, natsPub.Close)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS Subscriber", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		c.closers = append(c.closers, natsSub.Close)
	}

	rdb := newRedisClient(cfg, sysLogger, c)
	var remoteCache embedding.RemoteCache
	if rdb != nil {
		remoteCache = embedding.NewRedisCache(rdb)
	}

	// 4. Providers
	embeddingProvider, err := newEmbeddingProvider(cfg, sysLogger)
	if err != nil {
		return nil, err
	}

	llmProvider, err := llmFactory.NewLLMProvider(llmFactory.ProviderConfig{
		Provider:    cfg.Ai.LLMProvider,
		Model:       cfg.Ai.LLMModel,
		APIKey:      cfg.LLMAPIKey(),
		BaseURL:     llmBaseURL(cfg),
		Temperature: cfg.Ai.Temperature,
		MaxTokens:   cfg.Ai.MaxTokens,
	})
	if err != nil {
		return nil, err
	}
	sysLogger.Info("BOOTSTRAP", "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	// 5. Services
	sessionCache := memory.NewSessionGuidelineCache(cfg.Guideline.CacheTTL)
	guidelineService := service.NewGuidelineService(uowFactory, sessionCache, sysLogger)
	conversationService := service.NewConversationService(uowFactory, sysLogger)
	usagePublisher := service.NewUsagePublisherService(cfg.App.UsageTopic, pubSub)
	c.UsageConsumerService = service.NewUsageConsumerService(pubSub, cfg.App.UsageTopic, conversationService, sysLogger)

	var embedder *embedding.CachedEmbedder
	if embeddingProvider != nil {
		opts := []embedding.CachedEmbedderOption{
			embedding.WithMessageStore(service.NewMessageEmbeddingStore(uowFactory)),
		}
		if remoteCache != nil {
			opts = append(opts, embedding.WithRemoteCache(remoteCache))
		}
		embedder = embedding.NewCachedEmbedder(embeddingProvider, cfg.Guideline.EmbeddingCacheTTL, sysLogger, opts...)
	}

	matchingCfg := matchingConfig(cfg.Guideline)
	bonus := matching.NewContextBonusCalculator(nil)

	lexical := matching.NewOrchestrator(matchingCfg, sessionCache, guidelineService, conversationService, usagePublisher,
		matching.NewLexicalStrategy(matchingCfg, bonus), sysLogger)
	c.Orchestrators = append(c.Orchestrators, lexical)

	var vector service.TurnRanker
	var embeddingService service.IEmbeddingService
	if embedder != nil {
		vectorOrchestrator := matching.NewOrchestrator(matchingCfg, sessionCache, guidelineService, conversationService, usagePublisher,
			matching.NewVectorStrategy(matchingCfg, embedder, guidelineService, bonus, sysLogger), sysLogger)
		c.Orchestrators = append(c.Orchestrators, vectorOrchestrator)
		vector = vectorOrchestrator
		embeddingService = service.NewEmbeddingService(uowFactory, embedder, sysLogger)
	} else {
		embeddingService = service.NewEmbeddingService(uowFactory, nil, sysLogger)
	}

	var eventPublisher service.EventPublisher
	if natsPub != nil {
		eventPublisher = natsPub
	}
	var eventSubscriber service.EventSubscriber
	if natsSub != nil {
		eventSubscriber = natsSub
	}

	chatService := service.NewChatService(
		conversationService,
		lexical,
		vector,
		prompt.NewBuilder(cfg.App.SystemPrompt),
		llmProvider,
		eventPublisher,
		sysLogger,
	)
	c.AnalyticsService = service.NewAnalyticsService(eventSubscriber, sysLogger)

	// 6. Controllers
	c.ChatController = controller.NewChatController(chatService)
	c.GuidelineController = controller.NewGuidelineController(guidelineService, embeddingService)
	c.ConversationController = controller.NewConversationController(conversationService)
	c.EmbeddingController = controller.NewEmbeddingController(embeddingService)
	c.AnalyticsController = controller.NewAnalyticsController(c.AnalyticsService)
	checks := map[string]controller.HealthCheck{
		"database": func(ctx context.Context) error { return database.Ping(ctx, db) },
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	c.HealthController = controller.NewHealthController(checks)

	return c, nil
}

// WaitForUsage blocks until pending usage writes are queued or the timeout elapses.
func (c *Container) WaitForUsage(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	done := true
	for _, o := range c.Orchestrators {
		done = o.Wait(time.Until(deadline)) && done
	}
	return done
}

// Close releases the bus, NATS and Redis connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func matchingConfig(g config.GuidelineConfig) matching.Config {
	return matching.Config{
		MaxGuidelinesPerResponse:  g.MaxGuidelinesPerResponse,
		FatigueFactor:             g.FatigueFactor,
		RecentMessagesContext:     g.RecentMessagesContext,
		MatchThreshold:            g.MatchThreshold,
		HybridWeight:              g.HybridWeight,
		VectorSimilarityThreshold: g.VectorSimilarityThreshold,
		VectorSearchLimit:         g.VectorSearchLimit,
		ExternalCallTimeout:       g.ExternalCallTimeout,
	}.Normalize()
}

// newEmbeddingProvider returns nil when vector search is not configured; turns then rank lexically.
func newEmbeddingProvider(cfg *config.Config, log logger.ILogger) (embedding.EmbeddingProvider, error) {
	if !cfg.VectorSearchConfigured() {
		log.Warn("BOOTSTRAP", "Embedding provider not configured, vector matching disabled", map[string]interface{}{
			"provider": cfg.Ai.EmbeddingProvider,
		})
		return nil, nil
	}

	provider, err := embeddingFactory.NewEmbeddingProvider(cfg.Ai.EmbeddingProvider, cfg.EmbeddingAPIKey(), cfg.Ai.OllamaModel, cfg.Ai.OllamaBaseURL)
	if err != nil {
		return nil, err
	}
	if provider != nil {
		log.Info("BOOTSTRAP", "Embedding provider ready", map[string]interface{}{
			"provider": cfg.Ai.EmbeddingProvider,
			"model":    provider.ModelName(),
		})
	}
	return provider, nil
}

// newRedisClient returns nil when Redis is not configured or unreachable.
func newRedisClient(cfg *config.Config, log logger.ILogger, c *Container) *redis.Client {
	if cfg.App.RedisURL == "" {
		return nil
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Warn("BOOTSTRAP", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{
			"error": err.Error(),
		})
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("BOOTSTRAP", "Failed to connect to Redis, shared embedding cache disabled", map[string]interface{}{
			"error": err.Error(),
		})
		_ = rdb.Close()
		return nil
	}

	c.closers = append(c.closers, func() { _ = rdb.Close() })
	return rdb
}

func llmBaseURL(cfg *config.Config) string {
	if cfg.Ai.LLMBaseURL != "" {
		return cfg.Ai.LLMBaseURL
	}
	if cfg.Ai.LLMProvider == "ollama" {
		return cfg.Ai.OllamaBaseURL
	}
	return ""
}
