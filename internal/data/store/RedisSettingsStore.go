package store

import (
	"context"
	"encoding/json"

	"github.com/Jsrodrigue/sidekickAI/internal/config"
	"github.com/Jsrodrigue/sidekickAI/internal/data/redisStore"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/commonModels"
	"github.com/Jsrodrigue/sidekickAI/pkg/logger_i"
)

type RedisSettingsStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisSettingsStore(ctx context.Context) *RedisSettingsStore {
	redis := redisStore.GetRedisStore(ctx, config.RedisSettingsStore)
	if redis == nil {
		return nil
	}
	return &RedisSettingsStore{
		store:  redis,
		logger: logger_i.NewLogger("SettingsStore"),
	}
}

func settingsKey(folderId string) string {
	return "folder_settings:" + folderId
}

func (s *RedisSettingsStore) GetSettings(ctx context.Context, folderId string) (commonModels.FolderSettings, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "folder Id", folderId)

	val, err := s.store.Get(ctx, settingsKey(folderId))
	if s.store.IsNil(err) {
		return commonModels.DefaultFolderSettings(folderId), nil
	} else if err != nil {
		log.Error("Error getting settings", "error", err)
		return commonModels.FolderSettings{}, err
	}

	var settings commonModels.FolderSettings
	if err := json.Unmarshal([]byte(val), &settings); err != nil {
		log.Error("Corrupt settings entry, falling back to defaults", "error", err)
		return commonModels.DefaultFolderSettings(folderId), nil
	}
	return settings, nil
}

func (s *RedisSettingsStore) SaveSettings(ctx context.Context, settings commonModels.FolderSettings) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "folder Id", settings.FolderId)
	if err := settings.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	//settings never expire, the folder delete path removes them
	err = s.store.Set(ctx, settingsKey(settings.FolderId), data, 0)
	if err != nil {
		log.Error("Error saving settings", "error", err)
	}
	return err
}

func (s *RedisSettingsStore) DeleteSettings(ctx context.Context, folderId string) error {
	return s.store.Del(ctx, settingsKey(folderId))
}

func TestSettingsStore(store *redisStore.Store) *RedisSettingsStore {
	return &RedisSettingsStore{
		store:  store,
		logger: logger_i.NewLogger("test settings store"),
	}
}
