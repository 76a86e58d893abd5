package store

import (
	"context"
	"sync"

	"github.com/Jsrodrigue/sidekickAI/internal/domain/chatModel"
)

type InMemoryConversationStore struct {
	chatLock *sync.RWMutex
	chatMap  map[string][]chatModel.Message
}

func InitInMemoryConversationStore() *InMemoryConversationStore {
	return &InMemoryConversationStore{
		chatLock: new(sync.RWMutex),
		chatMap:  make(map[string][]chatModel.Message),
	}
}

func (store *InMemoryConversationStore) GetHistory(ctx context.Context, folderId string) ([]chatModel.Message, error) {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	history := store.chatMap[folderId]
	out := make([]chatModel.Message, len(history))
	copy(out, history)
	return out, nil
}

func (store *InMemoryConversationStore) AppendMessages(ctx context.Context, folderId string, messages []chatModel.Message) error {
	if len(messages) == 0 {
		return nil
	}
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.chatMap[folderId] = append(store.chatMap[folderId], messages...)
	return nil
}

func (store *InMemoryConversationStore) PurgeHistory(ctx context.Context, folderId string) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	delete(store.chatMap, folderId)
	return nil
}
