package store

import (
	"context"
	"sync"

	"github.com/Jsrodrigue/sidekickAI/internal/domain/commonModels"
)

type InMemorySettingsStore struct {
	lock        *sync.RWMutex
	settingsMap map[string]commonModels.FolderSettings
}

func InitInMemorySettingsStore() *InMemorySettingsStore {
	return &InMemorySettingsStore{
		lock:        new(sync.RWMutex),
		settingsMap: make(map[string]commonModels.FolderSettings),
	}
}

func (store *InMemorySettingsStore) GetSettings(ctx context.Context, folderId string) (commonModels.FolderSettings, error) {
	store.lock.RLock()
	defer store.lock.RUnlock()
	if settings, ok := store.settingsMap[folderId]; ok {
		return settings, nil
	}
	return commonModels.DefaultFolderSettings(folderId), nil
}

func (store *InMemorySettingsStore) SaveSettings(ctx context.Context, settings commonModels.FolderSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	store.lock.Lock()
	defer store.lock.Unlock()
	store.settingsMap[settings.FolderId] = settings
	return nil
}

func (store *InMemorySettingsStore) DeleteSettings(ctx context.Context, folderId string) error {
	store.lock.Lock()
	defer store.lock.Unlock()
	delete(store.settingsMap, folderId)
	return nil
}
