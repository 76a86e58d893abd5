package tools

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/Jsrodrigue/sidekickAI/internal/agent"
	"github.com/Jsrodrigue/sidekickAI/internal/agent/llm"
)

const commandTimeout = 30 * time.Second
const commandOutputLimit = 16 * 1024

// NewRunCommandTool executes a shell command in the folder root. It is not
// in the default tool set, a folder has to enable it explicitly.
func NewRunCommandTool() agent.Descriptor {
	return agent.Descriptor{
		Name:        "run_command",
		Description: "Run a shell command in the folder root and return its output.",
		Params: []llm.Param{
			{Name: "command", Type: "string", Description: "The shell command to run.", Required: true},
		},
		Handler: func(ctx context.Context, inv agent.Invocation) (string, error) {
			command, ok := inv.Args["command"].(string)
			if !ok || strings.TrimSpace(command) == "" {
				return "", fmt.Errorf("command argument is required")
			}

			execCtx, cancel := context.WithTimeout(ctx, commandTimeout)
			defer cancel()

			cmd := exec.CommandContext(execCtx, "/bin/sh", "-c", command)
			if inv.Settings.RootPath != "" {
				cmd.Dir = inv.Settings.RootPath
			}

			output, err := cmd.CombinedOutput()
			if len(output) > commandOutputLimit {
				output = append(output[:commandOutputLimit], []byte("\n...[truncated]")...)
			}
			if err != nil {
				//the exit status is useful context for the model
				return fmt.Sprintf("command failed: %v\n%s", err, output), nil
			}
			return string(output), nil
		},
	}
}
