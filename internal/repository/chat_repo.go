package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"parley/internal/model"
)

// 存储层错误, 调用方用 errors.Is 判别
var (
	ErrInvalidID          = errors.New("invalid chat id")
	ErrInvalidRole        = errors.New("invalid message role")
	ErrNotFound           = errors.New("chat not found")
	ErrNoAssistantMessage = errors.New("no assistant message in chat")
	ErrNotModified        = errors.New("write modified no documents")
)

// ChatRepo 会话仓库
// chats 集合的所有读写都经由这里, 调用方不接触存储引擎的查询语言
type ChatRepo struct {
	collection *mongo.Collection
}

// NewChatRepo 创建会话仓库
func NewChatRepo(db *mongo.Database) *ChatRepo {
	return &ChatRepo{
		collection: db.Collection("chats"),
	}
}

// Create 创建空会话, 返回新 ID 的十六进制形式
// title 为空时使用占位标题; modelName 由调用方向生成端查询得到
func (r *ChatRepo) Create(ctx context.Context, title, modelName string) (string, error) {
	if title == "" {
		title = model.DefaultTitle
	}

	chat := &model.Chat{
		Title:     title,
		ModelName: modelName,
		Messages:  []model.Message{},
		CreatedAt: time.Now().UTC(),
	}

	result, err := r.collection.InsertOne(ctx, chat)
	if err != nil {
		return "", fmt.Errorf("insert chat: %w", err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return oid.Hex(), nil
}

// AppendMessage 向会话追加一条消息
// 角色取值和 ID 格式在任何存储调用之前校验
func (r *ChatRepo) AppendMessage(ctx context.Context, id, role, content string) error {
	if !model.ValidRole(role) {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	msg := model.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$push": bson.M{"messages": msg}},
	)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// History 返回会话的完整消息转录, 最旧在前
// 会话不存在返回 ErrNotFound; 存在但无消息返回空切片
func (r *ChatRepo) History(ctx context.Context, id string) ([]model.Message, error) {
	chat, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if chat.Messages == nil {
		return []model.Message{}, nil
	}
	return chat.Messages, nil
}

// PatchLastAssistantMeta 向最近一条 assistant 消息合并元数据键值
// 读取-修改-回写整个文档; 读取与回写之间并发追加的消息会丢失, 暂不做版本校验
func (r *ChatRepo) PatchLastAssistantMeta(ctx context.Context, id string, meta map[string]any) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	var chat model.Chat
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&chat); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return fmt.Errorf("load chat: %w", err)
	}

	idx := -1
	for i := len(chat.Messages) - 1; i >= 0; i-- {
		if chat.Messages[i].Role == model.RoleAssistant {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrNoAssistantMessage
	}

	if chat.Messages[idx].Meta == nil {
		chat.Messages[idx].Meta = make(map[string]any, len(meta))
	}
	for k, v := range meta {
		chat.Messages[idx].Meta[k] = v
	}

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": objectID}, &chat)
	if err != nil {
		return fmt.Errorf("replace chat: %w", err)
	}
	if result.ModifiedCount == 0 {
		return ErrNotModified
	}
	return nil
}

// ListPage 过滤 + 分页的会话摘要列表, 按创建时间倒序
// 返回 (页内摘要, 总数, 总页数)
func (r *ChatRepo) ListPage(ctx context.Context, page, perPage int, f ChatFilter) ([]model.ChatSummary, int64, int, error) {
	page, perPage = NormalizePage(page, perPage)
	query := BuildFilter(f)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("count chats: %w", err)
	}
	totalPages := TotalPages(total, perPage)

	// 列表只需要最后一条消息做预览
	opts := options.Find().
		SetProjection(bson.M{"messages": bson.M{"$slice": -1}}).
		SetSort(bson.D{bson.E{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("find chats: %w", err)
	}
	defer cursor.Close(ctx)

	var chats []model.Chat
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, 0, 0, fmt.Errorf("decode chats: %w", err)
	}

	summaries := make([]model.ChatSummary, 0, len(chats))
	for _, chat := range chats {
		summary := model.ChatSummary{
			ID:        chat.ID.Hex(),
			Title:     chat.Title,
			CreatedAt: chat.CreatedAt,
			ModelName: chat.ModelName,
		}
		if len(chat.Messages) > 0 {
			last := chat.Messages[len(chat.Messages)-1]
			summary.LastMessagePreview = Preview(last.Content)
			ts := last.Timestamp
			summary.LastMessageTime = &ts
		} else {
			summary.LastMessagePreview = Preview("")
		}
		summaries = append(summaries, summary)
	}

	return summaries, total, totalPages, nil
}

// ListForExport 过滤后的全部会话 (不分页), 按创建时间倒序, 含完整消息
func (r *ChatRepo) ListForExport(ctx context.Context, f ChatFilter) ([]*model.Chat, error) {
	query := BuildFilter(f)
	opts := options.Find().SetSort(bson.D{bson.E{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find chats for export: %w", err)
	}
	defer cursor.Close(ctx)

	var chats []*model.Chat
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, fmt.Errorf("decode chats for export: %w", err)
	}
	return chats, nil
}

// FindByID 返回完整会话文档
func (r *ChatRepo) FindByID(ctx context.Context, id string) (*model.Chat, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	var chat model.Chat
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&chat); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find chat: %w", err)
	}
	return &chat, nil
}

// Delete 删除会话, 仅当恰好删除一个文档时视为成功
func (r *ChatRepo) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
