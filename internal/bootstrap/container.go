package bootstrap

import (
	"context"
	"log"

	"jenny-assistant-be/internal/config"
	"jenny-assistant-be/internal/controller"
	"jenny-assistant-be/internal/pkg/logger"
	"jenny-assistant-be/internal/pkg/mailer"
	"jenny-assistant-be/internal/repository/cache"
	"jenny-assistant-be/internal/repository/implementation"
	"jenny-assistant-be/internal/repository/memory"
	"jenny-assistant-be/internal/repository/unitofwork"
	"jenny-assistant-be/internal/service"
	"jenny-assistant-be/internal/websocket"
	"jenny-assistant-be/pkg/assistant/agents"
	"jenny-assistant-be/pkg/assistant/audit"
	"jenny-assistant-be/pkg/assistant/dispatcher"
	"jenny-assistant-be/pkg/assistant/intent"
	"jenny-assistant-be/pkg/assistant/session"
	"jenny-assistant-be/pkg/calendar"
	"jenny-assistant-be/pkg/llm"
	"jenny-assistant-be/pkg/llm/factory"
	"jenny-assistant-be/pkg/llm/gemini"
	"jenny-assistant-be/pkg/mem0"
	pktNats "jenny-assistant-be/pkg/nats"
	"jenny-assistant-be/pkg/transcription"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AssistantController    controller.IAssistantController
	MemoryController       controller.IMemoryController
	CalendarController     controller.ICalendarController
	HealthController       controller.IHealthController
	NotificationController controller.INotificationController

	// Background services, started by main
	ReminderService service.IReminderService
	WebSocketHub    *websocket.Hub

	Logger logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	reminderLogger := logger.NewIsolatedLogger(cfg.App.ReminderLogPath)
	c := &Container{Logger: sysLogger}

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Redis, shared by the session mirror and the websocket fan-out
	var rdb *redis.Client
	if cfg.Session.UseRedis {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			sysLogger.Warn("Bootstrap", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			sysLogger.Warn("Bootstrap", "Redis unavailable, sessions stay in memory", map[string]interface{}{"error": err.Error()})
			_ = rdb.Close()
			rdb = nil
		} else {
			client := rdb
			c.closers = append(c.closers, func() { _ = client.Close() })
		}
	}

	// 4. Session store
	var durable session.DurableCache
	if rdb != nil {
		durable = cache.NewRedisSessionCache(rdb)
	}
	sessions := session.NewStore(
		memory.NewSessionRepository(),
		durable,
		session.Options{
			TTL:        cfg.Session.TTL,
			MaxHistory: cfg.Session.MaxHistory,
			KeyPrefix:  cfg.Session.KeyPrefix,
		},
		sysLogger,
	)

	// 5. Audit sink: through NATS when available so the audit worker persists
	// off the request path, straight to postgres otherwise.
	var sink audit.Sink = audit.NewRepositorySink(implementation.NewInteractionRepository(db))
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("Bootstrap", "Failed to connect to NATS Publisher, auditing to database", map[string]interface{}{"error": err.Error()})
		} else {
			sink = audit.NewEventSink(natsPub)
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	// 6. Collaborators
	llmProvider := newLLMProvider(cfg, sysLogger)
	transcriber := newTranscriber(cfg)
	memoryClient := mem0.NewClient(cfg.Services.MemoryBaseURL, cfg.Services.MemoryTimeout)

	publisherService := service.NewPublisherService(cfg.App.TaskTopic, pubSub)
	taskService := service.NewTaskService(uowFactory, publisherService, sysLogger)
	profileService := service.NewProfileService(uowFactory)
	calendarTokens := service.NewCalendarTokenService(uowFactory)
	memoryService := service.NewMemoryService(memoryClient)

	oauthConfigs := calendarConfigs(cfg)
	var (
		calendarService agents.CalendarService
		connector       controller.CalendarConnector
		providerNames   []string
	)
	if len(oauthConfigs) > 0 {
		var providers []calendar.Provider
		if conf, ok := oauthConfigs[calendar.ProviderGoogle]; ok {
			providers = append(providers, calendar.NewGoogleProvider(conf, calendarTokens))
		}
		if conf, ok := oauthConfigs[calendar.ProviderMicrosoft]; ok {
			providers = append(providers, calendar.NewMicrosoftProvider(conf, calendarTokens))
		}
		unified := calendar.NewUnified(sysLogger, providers...)
		calendarService = unified
		connector = calendar.NewConnector(calendarTokens, oauthConfigs)
		providerNames = unified.Providers()
	}

	// 7. Routing core
	d := dispatcher.New(sessions, intent.NewClassifier(intent.DefaultRules(), ""), sink, sysLogger)
	for _, h := range agents.Default(agents.Deps{
		Memory:       memoryClient,
		Tasks:        taskService,
		Profiles:     profileService,
		Calendar:     calendarService,
		LLM:          llmProvider,
		ModelName:    cfg.Ai.LLMModel,
		Capabilities: d.Names,
		Logger:       sysLogger,
	}) {
		d.Register(h)
	}
	conversationService := service.NewConversationService(sessions, d, transcriber, sysLogger)

	// 8. Reminders
	wsHub := websocket.NewHub(rdb, reminderLogger)
	reminderService := service.NewReminderService(pubSub, cfg.App.TaskTopic, wsHub, emailService, profileService, taskService, reminderLogger)

	// 9. Controllers
	c.AssistantController = controller.NewAssistantController(conversationService, reminderService)
	c.MemoryController = controller.NewMemoryController(memoryService)
	c.CalendarController = controller.NewCalendarController(connector, calendarTokens, providerNames, sysLogger)
	c.HealthController = controller.NewHealthController(sessions.MemoryOnly, d.Names)
	c.NotificationController = controller.NewNotificationController(wsHub, cfg.App.JWTSecret, reminderLogger)
	c.ReminderService = reminderService
	c.WebSocketHub = wsHub

	return c
}

// Close releases connections in reverse order of acquisition.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func newLLMProvider(cfg *config.Config, log logger.ILogger) llm.LLMProvider {
	fc := factory.Config{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		Timeout:  cfg.Ai.RequestTimeout,
	}
	switch cfg.Ai.LLMProvider {
	case "ollama":
		fc.BaseURL = cfg.Ai.OllamaBaseURL
	case "deepseek", "openai":
		fc.BaseURL = cfg.Ai.DeepSeekURL
		fc.APIKey = cfg.Keys.DeepSeek
	case "gemini":
		fc.Model = cfg.Ai.GeminiModel
		fc.APIKey = cfg.Keys.GoogleGemini
	}

	provider, err := factory.NewLLMProvider(fc)
	if err != nil {
		log.Warn("Bootstrap", "Failed to initialize LLM provider, answering offline", map[string]interface{}{
			"provider": cfg.Ai.LLMProvider,
			"error":    err.Error(),
		})
		return llm.OfflineProvider{}
	}
	log.Info("Bootstrap", "Using LLM provider", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    fc.Model,
	})
	return provider
}

func newTranscriber(cfg *config.Config) transcription.Transcriber {
	if cfg.Keys.GoogleGemini == "" {
		log.Println("[INFO] Voice transcription disabled (GOOGLE_GEMINI_API_KEY not set)")
		return transcription.Disabled{}
	}
	provider := gemini.NewProvider(cfg.Keys.GoogleGemini, cfg.Ai.AudioModel, cfg.Ai.RequestTimeout)
	return transcription.NewGeminiTranscriber(provider, cfg.Ai.RequestTimeout)
}

func calendarConfigs(cfg *config.Config) map[string]*oauth2.Config {
	out := map[string]*oauth2.Config{}
	if cfg.Calendar.GoogleClientID != "" {
		out[calendar.ProviderGoogle] = calendar.GoogleConfig(
			cfg.Calendar.GoogleClientID,
			cfg.Calendar.GoogleClientSecret,
			cfg.Calendar.RedirectURL,
		)
	}
	if cfg.Calendar.MicrosoftClientID != "" {
		out[calendar.ProviderMicrosoft] = calendar.MicrosoftConfig(
			cfg.Calendar.MicrosoftClientID,
			cfg.Calendar.MicrosoftClientSecret,
			cfg.Calendar.MicrosoftTenant,
			cfg.Calendar.RedirectURL,
		)
	}
	return out
}
