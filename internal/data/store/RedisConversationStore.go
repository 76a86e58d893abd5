package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Jsrodrigue/sidekickAI/internal/config"
	"github.com/Jsrodrigue/sidekickAI/internal/data/redisStore"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/chatModel"
	"github.com/Jsrodrigue/sidekickAI/pkg/logger_i"
)

type RedisConversationStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisConversationStore(ctx context.Context) *RedisConversationStore {
	redis := redisStore.GetRedisStore(ctx, config.RedisConversationStore)
	if redis == nil {
		return nil
	}
	return &RedisConversationStore{
		store:  redis,
		logger: logger_i.NewLogger("ConversationStore"),
	}
}

func conversationKey(folderId string) string {
	return "conversation:" + folderId
}

func (s *RedisConversationStore) GetHistory(ctx context.Context, folderId string) ([]chatModel.Message, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "folder Id", folderId)
	log.Debug("getting conversation history")

	raw, err := s.store.ListGetAll(ctx, conversationKey(folderId))
	if s.store.IsNil(err) {
		return []chatModel.Message{}, nil
	} else if err != nil {
		log.Error("Error getting history", "error", err)
		return nil, err
	}

	history := make([]chatModel.Message, 0, len(raw))
	for _, item := range raw {
		var msg chatModel.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			log.Error("Skipping malformed history entry", "error", err)
			continue
		}
		history = append(history, msg)
	}
	return history, nil
}

func (s *RedisConversationStore) AppendMessages(ctx context.Context, folderId string, messages []chatModel.Message) error {
	if len(messages) == 0 {
		return nil
	}
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "folder Id", folderId)

	values := make([]interface{}, 0, len(messages))
	for _, msg := range messages {
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("marshalling message: %w", err)
		}
		values = append(values, data)
	}

	//single RPUSH keeps the turn suffix atomic
	err := s.store.ListPush(ctx, conversationKey(folderId), values...)
	if err != nil {
		log.Error("error appending turn messages", "error", err)
		return err
	}
	log.Debug("Appended turn messages", "count", len(messages))
	return nil
}

func (s *RedisConversationStore) PurgeHistory(ctx context.Context, folderId string) error {
	return s.store.Del(ctx, conversationKey(folderId))
}

func TestConversationStore(store *redisStore.Store) *RedisConversationStore {
	return &RedisConversationStore{
		store:  store,
		logger: logger_i.NewLogger("test conversation store"),
	}
}
