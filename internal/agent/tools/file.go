package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Jsrodrigue/sidekickAI/internal/agent"
	"github.com/Jsrodrigue/sidekickAI/internal/agent/llm"
)

const readFileLimit = 32 * 1024

// NewReadFileTool lets the model read a file under the folder's root path.
// Paths resolving outside the root are rejected.
func NewReadFileTool() agent.Descriptor {
	return agent.Descriptor{
		Name:        "read_file",
		Description: "Read a file from the active folder by its relative path.",
		Params: []llm.Param{
			{Name: "path", Type: "string", Description: "Path of the file, relative to the folder root.", Required: true},
		},
		Handler: func(ctx context.Context, inv agent.Invocation) (string, error) {
			relPath, ok := inv.Args["path"].(string)
			if !ok || relPath == "" {
				return "", fmt.Errorf("path argument is required")
			}
			if inv.Settings.RootPath == "" {
				return "", fmt.Errorf("folder has no root path configured")
			}

			root, err := filepath.Abs(inv.Settings.RootPath)
			if err != nil {
				return "", err
			}
			target := filepath.Clean(filepath.Join(root, relPath))
			if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
				return "", fmt.Errorf("path escapes the folder root: %s", relPath)
			}

			data, err := os.ReadFile(target)
			if err != nil {
				return "", err
			}
			if len(data) > readFileLimit {
				return string(data[:readFileLimit]) + "\n...[truncated]", nil
			}
			return string(data), nil
		},
	}
}
