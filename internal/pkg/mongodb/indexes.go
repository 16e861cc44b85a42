package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes 应用启动时创建索引
func EnsureIndexes(db *mongo.Database) error {
	ctx := context.Background()

	// chats 集合索引: 列表与导出都按创建时间倒序
	chatColl := db.Collection("chats")
	chatIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created"),
		},
	}

	return CreateIndexes(ctx, chatColl, chatIndexes)
}

// CreateIndexes 辅助函数：创建索引
func CreateIndexes(ctx context.Context, coll *mongo.Collection, indexes []mongo.IndexModel) error {
	if len(indexes) == 0 {
		return nil
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
