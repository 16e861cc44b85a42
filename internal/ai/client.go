package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"parley/internal/ai/component"
	"parley/internal/config"
	"parley/internal/model"
)

// Client 文本生成协作方
// 职责: history in, text out; 系统指令在这里注入, 调用方只传 user/assistant 消息
type Client struct {
	cfg       *config.GenerationConfig
	chatModel einomodel.ChatModel
}

// NewClient 创建生成客户端
func NewClient(ctx context.Context, cfg *config.GenerationConfig) (*Client, error) {
	chatModel, err := component.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	return &Client{
		cfg:       cfg,
		chatModel: chatModel,
	}, nil
}

// ModelName 当前配置的模型标识
func (c *Client) ModelName() string {
	return c.cfg.Model
}

// Generate 基于完整会话历史生成一条回复
func (c *Client) Generate(ctx context.Context, history []model.Message) (string, error) {
	if len(history) == 0 {
		return "", errors.New("empty history")
	}

	messages := make([]*schema.Message, 0, len(history)+1)
	messages = append(messages, schema.SystemMessage(c.cfg.SystemPrompt))
	for _, m := range history {
		switch m.Role {
		case model.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(m.Content, nil))
		default:
			messages = append(messages, schema.UserMessage(m.Content))
		}
	}

	resp, err := c.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	return strings.TrimSpace(resp.Content), nil
}
