package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 消息角色, 仅允许 user / assistant
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultTitle 未指定标题时的占位标题
const DefaultTitle = "New Chat"

// UnknownModel 生成端不可用时记录的模型标识
const UnknownModel = "unknown"

// Chat 会话实体 - 元数据加一段有序消息转录
type Chat struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	ModelName string             `bson:"model_name" json:"model_name"`
	Messages  []Message          `bson:"messages" json:"messages"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Message 会话中的一条消息
// 核心字段固定; 生成元数据 (processing_time / model_used 等) 放在 Meta 扩展映射里
type Message struct {
	Role      string         `bson:"role" json:"role"`
	Content   string         `bson:"content" json:"content"`
	Timestamp time.Time      `bson:"timestamp" json:"timestamp"`
	Meta      map[string]any `bson:"meta,omitempty" json:"meta,omitempty"`
}

// ValidRole 校验消息角色取值
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAssistant
}

// ChatSummary 会话列表摘要 (不含完整转录)
type ChatSummary struct {
	ID                 string     `json:"chat_id"`
	Title              string     `json:"title"`
	CreatedAt          time.Time  `json:"created_at"`
	ModelName          string     `json:"model_name"`
	LastMessagePreview string     `json:"last_message_preview"`
	LastMessageTime    *time.Time `json:"last_message_time,omitempty"`
}
