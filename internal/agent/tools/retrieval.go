package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/Jsrodrigue/sidekickAI/internal/agent"
	"github.com/Jsrodrigue/sidekickAI/internal/agent/llm"
	"github.com/Jsrodrigue/sidekickAI/internal/rag/index"
)

const snippetLimit = 500

// NewSearchDocumentsTool exposes the folder's knowledge base to the model.
// An empty or missing index yields an empty result, the model is told so
// and answers from the conversation instead.
func NewSearchDocumentsTool(indexSvc index.Service) agent.Descriptor {
	return agent.Descriptor{
		Name:        "search_documents",
		Description: "Search the indexed documents of the active folder and return the most relevant passages.",
		Params: []llm.Param{
			{Name: "query", Type: "string", Description: "What to look for in the folder's documents.", Required: true},
		},
		Handler: func(ctx context.Context, inv agent.Invocation) (string, error) {
			query, ok := inv.Args["query"].(string)
			if !ok || strings.TrimSpace(query) == "" {
				return "", fmt.Errorf("query argument is required")
			}

			hits, err := indexSvc.Search(ctx, inv.FolderId, query, inv.Settings.RetrievalCount)
			if err != nil {
				return "", err
			}
			if len(hits) == 0 {
				return "", nil
			}

			parts := make([]string, 0, len(hits))
			for i, hit := range hits {
				content := hit.Chunk.Chunk
				//rune based so a cut never splits a multi-byte character
				if runes := []rune(content); len(runes) > snippetLimit {
					content = string(runes[:snippetLimit]) + "..."
				}
				parts = append(parts, fmt.Sprintf("Doc %d (%s):\n%s", i+1, hit.Chunk.Doc.Name, content))
			}
			return strings.Join(parts, "\n---\n"), nil
		},
	}
}
