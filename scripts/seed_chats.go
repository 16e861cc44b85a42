package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/bson"

	"parley/internal/config"
	"parley/internal/model"
	"parley/internal/pkg/logger"
	"parley/internal/pkg/mongodb"
)

// 往 chats 集合灌演示数据, 方便本地联调列表 / 过滤 / 导出
// 用法: go run scripts/seed_chats.go
func main() {
	// 1. 加载配置（与 cmd/root.go 保持一致的搜索路径）
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.parley")

	viper.SetEnvPrefix("PARLEY")
	viper.AutomaticEnv()

	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "parley")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("log.output", "stdout")

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found, using defaults")
	}

	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to unmarshal config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	// 2. 连接 MongoDB
	client, err := mongodb.New(&cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	defer client.Close(ctx)

	if err := mongodb.EnsureIndexes(client.Database()); err != nil {
		log.Warn().Err(err).Msg("failed to ensure indexes")
	}

	// 3. 写入演示会话
	now := time.Now().UTC()
	seeds := []*model.Chat{
		&model.Chat{
			Title:     "Chat: What is the capital of France?...",
			ModelName: "qwen2:0.5b-instruct",
			CreatedAt: now.Add(-48 * time.Hour),
			Messages: []model.Message{
				{
					Role:      model.RoleUser,
					Content:   "What is the capital of France?",
					Timestamp: now.Add(-48 * time.Hour),
				},
				{
					Role:      model.RoleAssistant,
					Content:   "The capital of France is Paris.",
					Timestamp: now.Add(-48*time.Hour + 2*time.Second),
					Meta: map[string]any{
						"processing_time": 1.87,
						"model_used":      "qwen2:0.5b-instruct",
					},
				},
			},
		},
		&model.Chat{
			Title:     "Chat: Write a haiku about autumn...",
			ModelName: "qwen2:0.5b-instruct",
			CreatedAt: now.Add(-24 * time.Hour),
			Messages: []model.Message{
				{
					Role:      model.RoleUser,
					Content:   "Write a haiku about autumn",
					Timestamp: now.Add(-24 * time.Hour),
				},
				{
					Role:      model.RoleAssistant,
					Content:   "Crimson leaves drifting\nover the quiet river\nsummer lets go now",
					Timestamp: now.Add(-24*time.Hour + 3*time.Second),
					Meta: map[string]any{
						"processing_time": 2.31,
						"model_used":      "qwen2:0.5b-instruct",
					},
				},
			},
		},
		&model.Chat{
			Title:     model.DefaultTitle,
			ModelName: model.UnknownModel,
			CreatedAt: now,
			Messages:  []model.Message{},
		},
	}

	collection := client.Collection("chats")

	// 避免重复执行时堆积演示数据
	for _, chat := range seeds {
		n, err := collection.CountDocuments(ctx, bson.M{"title": chat.Title, "created_at": chat.CreatedAt})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to check existing seed data")
		}
		if n > 0 {
			log.Info().Str("title", chat.Title).Msg("seed chat already present, skipping")
			continue
		}
		result, err := collection.InsertOne(ctx, chat)
		if err != nil {
			log.Fatal().Err(err).Str("title", chat.Title).Msg("failed to insert seed chat")
		}
		log.Info().
			Str("title", chat.Title).
			Interface("id", result.InsertedID).
			Msg("inserted seed chat")
	}

	log.Info().Msg("seeding complete")
}
