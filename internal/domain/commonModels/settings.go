package commonModels

import (
	"context"

	"github.com/Jsrodrigue/sidekickAI/internal/config"
)

func DefaultFolderSettings(folderId string) FolderSettings {
	tools := make([]string, len(config.DefaultEnabledTools))
	copy(tools, config.DefaultEnabledTools)
	return FolderSettings{
		FolderId:       folderId,
		ChunkSize:      config.DefaultChunkSize,
		ChunkOverlap:   config.DefaultChunkOverlap,
		RetrievalCount: config.DefaultRetrievalCount,
		ToolCallBound:  config.DefaultToolCallBound,
		EnabledTools:   tools,
	}
}

// SettingsStore persists per-folder settings. Get returns the defaults when
// nothing was saved for the folder yet.
type SettingsStore interface {
	GetSettings(ctx context.Context, folderId string) (FolderSettings, error)
	SaveSettings(ctx context.Context, settings FolderSettings) error
	DeleteSettings(ctx context.Context, folderId string) error
}
