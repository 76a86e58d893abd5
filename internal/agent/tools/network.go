package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Jsrodrigue/sidekickAI/internal/agent"
	"github.com/Jsrodrigue/sidekickAI/internal/agent/llm"
	"github.com/Jsrodrigue/sidekickAI/internal/customHttpClient"
)

// NewWebSearchTool queries the DuckDuckGo instant answer API. No api key
// needed, which keeps the default tool set self-contained.
func NewWebSearchTool() agent.Descriptor {
	return agent.Descriptor{
		Name:        "web_search",
		Description: "Search the web for a short factual answer.",
		Params: []llm.Param{
			{Name: "query", Type: "string", Description: "The search query.", Required: true},
		},
		Handler: func(ctx context.Context, inv agent.Invocation) (string, error) {
			query, ok := inv.Args["query"].(string)
			if !ok || strings.TrimSpace(query) == "" {
				return "", fmt.Errorf("query argument is required")
			}

			endpoint := "https://api.duckduckgo.com/?format=json&no_html=1&q=" + url.QueryEscape(query)
			body, err := fetch(ctx, endpoint)
			if err != nil {
				return "", err
			}

			var payload struct {
				AbstractText  string `json:"AbstractText"`
				AbstractURL   string `json:"AbstractURL"`
				Answer        string `json:"Answer"`
				RelatedTopics []struct {
					Text string `json:"Text"`
				} `json:"RelatedTopics"`
			}
			if err := json.Unmarshal(body, &payload); err != nil {
				return "", fmt.Errorf("decoding search response: %w", err)
			}

			if payload.Answer != "" {
				return payload.Answer, nil
			}
			if payload.AbstractText != "" {
				return fmt.Sprintf("%s (%s)", payload.AbstractText, payload.AbstractURL), nil
			}
			var topics []string
			for i, topic := range payload.RelatedTopics {
				if i == 3 {
					break
				}
				if topic.Text != "" {
					topics = append(topics, topic.Text)
				}
			}
			if len(topics) == 0 {
				return "no results found", nil
			}
			return strings.Join(topics, "\n"), nil
		},
	}
}

// NewEncyclopediaTool fetches an article summary from the Wikipedia REST API.
func NewEncyclopediaTool() agent.Descriptor {
	return agent.Descriptor{
		Name:        "encyclopedia",
		Description: "Look up an encyclopedia summary for a topic.",
		Params: []llm.Param{
			{Name: "topic", Type: "string", Description: "The topic to look up.", Required: true},
		},
		Handler: func(ctx context.Context, inv agent.Invocation) (string, error) {
			topic, ok := inv.Args["topic"].(string)
			if !ok || strings.TrimSpace(topic) == "" {
				return "", fmt.Errorf("topic argument is required")
			}

			title := strings.ReplaceAll(strings.TrimSpace(topic), " ", "_")
			endpoint := "https://en.wikipedia.org/api/rest_v1/page/summary/" + url.PathEscape(title)
			body, err := fetch(ctx, endpoint)
			if err != nil {
				return "", err
			}

			var payload struct {
				Title   string `json:"title"`
				Extract string `json:"extract"`
			}
			if err := json.Unmarshal(body, &payload); err != nil {
				return "", fmt.Errorf("decoding summary response: %w", err)
			}
			if payload.Extract == "" {
				return "no article found for " + topic, nil
			}
			return fmt.Sprintf("%s: %s", payload.Title, payload.Extract), nil
		},
	}
}

func fetch(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "sidekickAI/1.0")

	resp, err := customHttpClient.GetClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}
