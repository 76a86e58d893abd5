package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/Jsrodrigue/sidekickAI/internal/agent/llm"
	"github.com/Jsrodrigue/sidekickAI/internal/config"
)

// buildSystemPrompt assembles the per-turn system instruction: persona,
// success criteria when the caller gave one, the enabled tools with their
// per-turn call bound, and the current time.
func buildSystemPrompt(folderId string, successCriteria string, tools []llm.ToolDecl, toolCallBound int) string {
	var b strings.Builder
	b.WriteString(config.ModelPersona)
	b.WriteString(fmt.Sprintf("\n\nThe active folder is %q. Its indexed documents are reachable through the search_documents tool.", folderId))

	if successCriteria != "" {
		b.WriteString("\n\nThe success criteria for this task: ")
		b.WriteString(successCriteria)
	}

	if len(tools) > 0 {
		b.WriteString("\n\nYou have the following tools available:")
		for _, t := range tools {
			b.WriteString(fmt.Sprintf("\n- %s: %s", t.Name, t.Description))
		}
		b.WriteString(fmt.Sprintf("\nYou may make at most %d tool calls in this turn.", toolCallBound))
	} else {
		b.WriteString("\n\nNo tools are enabled for this folder, answer from the conversation alone.")
	}

	b.WriteString("\n\nThe current time is " + time.Now().UTC().Format(time.RFC1123))
	return b.String()
}
