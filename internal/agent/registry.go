package agent

import (
	"context"
	"fmt"

	"github.com/Jsrodrigue/sidekickAI/internal/agent/llm"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/commonModels"
)

// Invocation carries everything a tool handler needs for one call.
type Invocation struct {
	FolderId string
	Args     map[string]any
	Settings commonModels.FolderSettings
}

type Handler func(ctx context.Context, inv Invocation) (string, error)

// Descriptor binds a tool declaration to its handler.
type Descriptor struct {
	Name        string
	Description string
	Params      []llm.Param
	Handler     Handler
}

// Registry holds every tool the assistant can ever use. Which of them a
// folder actually gets is decided per call from the folder settings, the
// registry itself is folder-agnostic.
type Registry struct {
	order []string
	tools map[string]Descriptor
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Descriptor)}
}

func (r *Registry) Register(d Descriptor) error {
	if d.Name == "" || d.Handler == nil {
		return fmt.Errorf("tool descriptor needs a name and a handler")
	}
	if _, exists := r.tools[d.Name]; exists {
		return fmt.Errorf("tool %q already registered", d.Name)
	}
	r.order = append(r.order, d.Name)
	r.tools[d.Name] = d
	return nil
}

// Descriptors returns the declarations for the enabled tools, in
// registration order.
func (r *Registry) Descriptors(settings commonModels.FolderSettings) []llm.ToolDecl {
	var decls []llm.ToolDecl
	for _, name := range r.order {
		if !settings.ToolEnabled(name) {
			continue
		}
		d := r.tools[name]
		decls = append(decls, llm.ToolDecl{
			Name:        d.Name,
			Description: d.Description,
			Params:      d.Params,
		})
	}
	return decls
}

// Dispatch runs one tool call. Enablement is checked here, at dispatch time,
// so a tool disabled mid-conversation fails even on calls the model issued
// while it was still listed.
func (r *Registry) Dispatch(ctx context.Context, name string, inv Invocation) (string, error) {
	d, ok := r.tools[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", commonModels.ErrUnknownTool, name)
	}
	if !inv.Settings.ToolEnabled(name) {
		return "", fmt.Errorf("%w: %s", commonModels.ErrToolDisabled, name)
	}
	out, err := d.Handler(ctx, inv)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", commonModels.ErrToolExecution, name, err)
	}
	return out, nil
}
