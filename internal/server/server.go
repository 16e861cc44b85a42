package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"parley/internal/ai"
	"parley/internal/config"
	"parley/internal/handler"
	"parley/internal/pkg/cache"
	"parley/internal/pkg/mongodb"
	"parley/internal/repository"
	"parley/internal/server/middleware"
	"parley/internal/service"
)

// Server HTTP 服务器
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	mongo  *mongodb.Client
	redis  *cache.RedisCache
}

// New 创建服务器实例
// Mongo / Redis / 生成端都在这里显式构造一次, 按引用注入下游, 不走包级全局状态
func New(cfg *config.Config) (*Server, error) {
	// 设置 Gin 模式
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建 Gin 引擎
	engine := gin.New()

	// 初始化 MongoDB (不可达时继续启动, 接口按不可用降级)
	var mongoClient *mongodb.Client
	if cfg.Mongo.URI != "" {
		client, err := mongodb.New(&cfg.Mongo)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to MongoDB, continuing without it")
		} else {
			mongoClient = client
			log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

			// 创建索引
			if err := mongodb.EnsureIndexes(mongoClient.Database()); err != nil {
				log.Warn().Err(err).Msg("failed to ensure indexes")
			}
		}
	}

	// 初始化 Redis (可选)
	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without it")
		} else {
			redisCache = rc
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		}
	}

	srv := &Server{
		cfg:    cfg,
		engine: engine,
		mongo:  mongoClient,
		redis:  redisCache,
	}

	// 设置路由
	srv.setupRoutes()

	return srv, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())

	// 健康检查
	healthHandler := handler.NewHealthHandler()
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 初始化生成端 (可选, 失败时 model_name 记为 unknown, 生成接口报不可用)
	var generator service.Generator
	if s.cfg.Generation.BaseURL != "" || s.cfg.Generation.APIKey != "" {
		client, err := ai.NewClient(context.Background(), &s.cfg.Generation)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize generator, continuing without it")
		} else {
			generator = client
			log.Info().
				Str("base_url", s.cfg.Generation.BaseURL).
				Str("model", s.cfg.Generation.Model).
				Msg("initialized generator")
		}
	}

	// 会话服务 (Mongo 不可用时 handler 统一返回 503)
	var chatSvc *service.ChatService
	if s.mongo != nil {
		repo := repository.NewChatRepo(s.mongo.Database())
		chatSvc = service.NewChatService(repo, generator, s.redis)
	} else {
		log.Warn().Msg("MongoDB not configured, chat endpoints disabled")
	}
	chatHdl := handler.NewChatHandler(chatSvc)

	// API v1
	v1 := s.engine.Group("/api/v1")
	{
		v1.POST("/chat/generate", chatHdl.Generate)

		v1.POST("/chats", chatHdl.Create)
		v1.GET("/chats", chatHdl.List)
		v1.GET("/chats/:id", chatHdl.Get)
		v1.DELETE("/chats/:id", chatHdl.Delete)

		v1.GET("/export/:format", chatHdl.Export)
	}
}

// Run 启动服务器
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	// 启动服务器
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待关闭信号或错误
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		// 关闭连接
		if s.mongo != nil {
			if err := s.mongo.Close(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to close MongoDB connection")
			}
		}
		if s.redis != nil {
			if err := s.redis.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close Redis connection")
			}
		}

		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
