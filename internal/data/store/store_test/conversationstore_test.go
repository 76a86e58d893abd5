package store_test

import (
	"context"
	"testing"

	"github.com/Jsrodrigue/sidekickAI/internal/config"
	"github.com/Jsrodrigue/sidekickAI/internal/data/redisStore"
	"github.com/Jsrodrigue/sidekickAI/internal/data/store"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/chatModel"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisConversationStore_TurnAppend(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	convStore := store.TestConversationStore(redisStore.NewTestStore(client))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	folderId := "docs"

	t.Run("Empty history for fresh folder", func(t *testing.T) {
		history, err := convStore.GetHistory(ctx, folderId)
		if err != nil {
			t.Fatalf("GetHistory failed: %v", err)
		}
		if len(history) != 0 {
			t.Errorf("expected empty history, got %d messages", len(history))
		}
	})

	t.Run("Whole turn lands in order", func(t *testing.T) {
		turn := []chatModel.Message{
			chatModel.NewUserMessage("what is in the readme?"),
			chatModel.NewAssistantMessage("", []chatModel.ToolCall{{Id: "c1", Name: "search_documents", Args: map[string]any{"query": "readme"}}}),
			chatModel.NewToolMessage("c1", "search_documents", "Doc 1 (README.md):\nHello"),
			chatModel.NewAssistantMessage("The readme says hello.", nil),
		}
		if err := convStore.AppendMessages(ctx, folderId, turn); err != nil {
			t.Fatalf("AppendMessages failed: %v", err)
		}

		history, err := convStore.GetHistory(ctx, folderId)
		if err != nil {
			t.Fatalf("GetHistory failed: %v", err)
		}
		if len(history) != 4 {
			t.Fatalf("expected 4 messages, got %d", len(history))
		}
		if history[0].Role != chatModel.RoleUser || history[3].Role != chatModel.RoleAssistant {
			t.Errorf("turn order lost: first=%s last=%s", history[0].Role, history[3].Role)
		}
		if history[2].ToolCallId != "c1" {
			t.Errorf("tool result not linked to its call: %q", history[2].ToolCallId)
		}
	})

	t.Run("Purge removes transcript", func(t *testing.T) {
		if err := convStore.PurgeHistory(ctx, folderId); err != nil {
			t.Fatalf("PurgeHistory failed: %v", err)
		}
		history, _ := convStore.GetHistory(ctx, folderId)
		if len(history) != 0 {
			t.Errorf("expected empty history after purge, got %d", len(history))
		}
	})

	t.Run("Folders stay isolated", func(t *testing.T) {
		_ = convStore.AppendMessages(ctx, "folder-a", []chatModel.Message{chatModel.NewUserMessage("a")})
		_ = convStore.AppendMessages(ctx, "folder-b", []chatModel.Message{chatModel.NewUserMessage("b")})
		historyA, _ := convStore.GetHistory(ctx, "folder-a")
		if len(historyA) != 1 || historyA[0].Content != "a" {
			t.Errorf("folder-a history leaked: %+v", historyA)
		}
	})
}
