package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/Jsrodrigue/sidekickAI/internal/agent/llm"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/commonModels"
)

func echoTool(name string) Descriptor {
	return Descriptor{
		Name:        name,
		Description: "echo " + name,
		Params:      []llm.Param{{Name: "text", Type: "string", Required: true}},
		Handler: func(ctx context.Context, inv Invocation) (string, error) {
			text, _ := inv.Args["text"].(string)
			return name + ":" + text, nil
		},
	}
}

func settingsWith(tools ...string) commonModels.FolderSettings {
	s := commonModels.DefaultFolderSettings("docs")
	s.EnabledTools = tools
	return s
}

func TestRegistry_RegistrationOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := r.Register(echoTool(name)); err != nil {
			t.Fatalf("Register(%s) failed: %v", name, err)
		}
	}

	decls := r.Descriptors(settingsWith("zeta", "alpha", "mid"))
	if len(decls) != 3 {
		t.Fatalf("expected 3 declarations, got %d", len(decls))
	}
	want := []string{"zeta", "alpha", "mid"}
	for i, d := range decls {
		if d.Name != want[i] {
			t.Errorf("declaration %d: got %s, want %s", i, d.Name, want[i])
		}
	}
}

func TestRegistry_DuplicateRejected(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(echoTool("dup"))
	if err := r.Register(echoTool("dup")); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestRegistry_DescriptorsFilterDisabled(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(echoTool("enabled"))
	_ = r.Register(echoTool("disabled"))

	decls := r.Descriptors(settingsWith("enabled"))
	if len(decls) != 1 || decls[0].Name != "enabled" {
		t.Errorf("expected only the enabled tool, got %+v", decls)
	}
}

func TestRegistry_Dispatch(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(echoTool("echo"))
	ctx := context.Background()

	t.Run("runs enabled tool", func(t *testing.T) {
		out, err := r.Dispatch(ctx, "echo", Invocation{
			FolderId: "docs",
			Args:     map[string]any{"text": "hi"},
			Settings: settingsWith("echo"),
		})
		if err != nil {
			t.Fatalf("Dispatch failed: %v", err)
		}
		if out != "echo:hi" {
			t.Errorf("got %q", out)
		}
	})

	t.Run("unknown tool", func(t *testing.T) {
		_, err := r.Dispatch(ctx, "nope", Invocation{Settings: settingsWith("echo")})
		if !errors.Is(err, commonModels.ErrUnknownTool) {
			t.Errorf("expected ErrUnknownTool, got %v", err)
		}
	})

	t.Run("disabled at dispatch time", func(t *testing.T) {
		_, err := r.Dispatch(ctx, "echo", Invocation{Settings: settingsWith()})
		if !errors.Is(err, commonModels.ErrToolDisabled) {
			t.Errorf("expected ErrToolDisabled, got %v", err)
		}
	})

	t.Run("handler error becomes ErrToolExecution", func(t *testing.T) {
		_ = r.Register(Descriptor{
			Name:        "broken",
			Description: "always fails",
			Handler: func(ctx context.Context, inv Invocation) (string, error) {
				return "", errors.New("boom")
			},
		})
		_, err := r.Dispatch(ctx, "broken", Invocation{Settings: settingsWith("broken")})
		if !errors.Is(err, commonModels.ErrToolExecution) {
			t.Errorf("expected ErrToolExecution, got %v", err)
		}
	})
}
