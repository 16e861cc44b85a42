package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"parley/internal/model"
	"parley/internal/pkg/cache"
	"parley/internal/repository"
)

// ErrGeneratorUnavailable 生成端未配置或初始化失败
var ErrGeneratorUnavailable = errors.New("text generator unavailable")

// 标题预览截断长度 (按 rune 计)
const titleLen = 30

// 列表固定页大小
const defaultPerPage = 10

// ChatStore 会话存储接口 (测试时可用内存替身)
type ChatStore interface {
	Create(ctx context.Context, title, modelName string) (string, error)
	AppendMessage(ctx context.Context, id, role, content string) error
	History(ctx context.Context, id string) ([]model.Message, error)
	PatchLastAssistantMeta(ctx context.Context, id string, meta map[string]any) error
	ListPage(ctx context.Context, page, perPage int, f repository.ChatFilter) ([]model.ChatSummary, int64, int, error)
	ListForExport(ctx context.Context, f repository.ChatFilter) ([]*model.Chat, error)
	FindByID(ctx context.Context, id string) (*model.Chat, error)
	Delete(ctx context.Context, id string) error
}

// Generator 文本生成协作方接口
type Generator interface {
	Generate(ctx context.Context, history []model.Message) (string, error)
	ModelName() string
}

// ChatService 会话服务 - 业务逻辑层
// 职责: 编排存储层与生成端, 实现会话流程
type ChatService struct {
	store     ChatStore
	generator Generator
	cache     *cache.RedisCache
}

// NewChatService 创建会话服务
// generator / redisCache 可为 nil, 对应能力降级
func NewChatService(store ChatStore, generator Generator, redisCache *cache.RedisCache) *ChatService {
	return &ChatService{
		store:     store,
		generator: generator,
		cache:     redisCache,
	}
}

// modelName 向生成端查询当前模型标识, 不可用时落到 unknown
func (s *ChatService) modelName() string {
	if s.generator == nil {
		return model.UnknownModel
	}
	return s.generator.ModelName()
}

// CreateChat 创建空会话
func (s *ChatService) CreateChat(ctx context.Context, title string) (string, error) {
	return s.store.Create(ctx, title, s.modelName())
}

// Generate 处理一轮对话
// 流程: (建会话) -> 存用户消息 -> 取历史 -> 调生成端 -> 存回复 -> 补生成元数据
// 生成失败时用户消息已落库, 这一轮只是没有回答
func (s *ChatService) Generate(ctx context.Context, req *model.GenerateRequest) (*model.GenerateResponse, error) {
	start := time.Now()
	chatID := req.ChatID

	if chatID == "" {
		id, err := s.store.Create(ctx, chatTitle(req.Prompt), s.modelName())
		if err != nil {
			log.Error().Err(err).Msg("failed to create chat")
			return nil, fmt.Errorf("create chat: %w", err)
		}
		chatID = id
		log.Info().Str("chat_id", chatID).Msg("created new chat")
	}
	logger := log.With().Str("chat_id", chatID).Logger()

	if err := s.store.AppendMessage(ctx, chatID, model.RoleUser, req.Prompt); err != nil {
		logger.Error().Err(err).Msg("failed to save user message")
		return nil, err
	}
	s.invalidate(ctx, chatID)

	history, err := s.store.History(ctx, chatID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load history")
		return nil, err
	}

	if s.generator == nil {
		return nil, ErrGeneratorUnavailable
	}
	reply, err := s.generator.Generate(ctx, history)
	if err != nil {
		logger.Error().Err(err).Msg("generation failed, user message kept")
		return nil, fmt.Errorf("generate reply: %w", err)
	}

	if err := s.store.AppendMessage(ctx, chatID, model.RoleAssistant, reply); err != nil {
		logger.Warn().Err(err).Msg("failed to save assistant message")
	} else {
		elapsed := math.Round(time.Since(start).Seconds()*100) / 100
		meta := map[string]any{
			"processing_time": elapsed,
			"model_used":      s.generator.ModelName(),
		}
		if err := s.store.PatchLastAssistantMeta(ctx, chatID, meta); err != nil {
			logger.Warn().Err(err).Msg("failed to patch assistant metadata")
		}
		logger.Info().Float64("processing_time", elapsed).Msg("chat turn completed")
	}
	s.invalidate(ctx, chatID)

	return &model.GenerateResponse{
		ChatID:   chatID,
		Response: reply,
	}, nil
}

// History 会话完整转录
func (s *ChatService) History(ctx context.Context, id string) ([]model.Message, error) {
	return s.store.History(ctx, id)
}

// ListChats 过滤 + 分页列表
func (s *ChatService) ListChats(ctx context.Context, page int, f repository.ChatFilter) ([]model.ChatSummary, int64, int, error) {
	return s.store.ListPage(ctx, page, defaultPerPage, f)
}

// Details 会话详情, 带 Redis 读穿缓存
func (s *ChatService) Details(ctx context.Context, id string) (*model.Chat, error) {
	if s.cache != nil {
		var cached model.Chat
		if err := s.cache.Get(ctx, cache.ChatCacheKey(id), &cached); err == nil {
			return &cached, nil
		}
	}

	chat, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.ChatCacheKey(id), chat, cache.ChatCacheTTL); err != nil {
			log.Warn().Err(err).Str("chat_id", id).Msg("failed to cache chat")
		}
	}
	return chat, nil
}

// Delete 删除会话
func (s *ChatService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// Export 过滤后的全部会话 (导出用)
func (s *ChatService) Export(ctx context.Context, f repository.ChatFilter) ([]*model.Chat, error) {
	return s.store.ListForExport(ctx, f)
}

// invalidate 写操作后失效详情缓存
func (s *ChatService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.ChatCacheKey(id)); err != nil {
		log.Warn().Err(err).Str("chat_id", id).Msg("failed to invalidate chat cache")
	}
}

// chatTitle 从首条 prompt 派生会话标题
func chatTitle(prompt string) string {
	runes := []rune(prompt)
	if len(runes) > titleLen {
		runes = runes[:titleLen]
	}
	return "Chat: " + string(runes) + "..."
}
