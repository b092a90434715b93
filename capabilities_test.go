package chatreply

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCatalog_EmbeddedProviders(t *testing.T) {
	registry := GetCatalogRegistry()

	for _, id := range []ProviderID{ProviderOpenAI, ProviderAzure, ProviderClaude, ProviderChatGLM, ProviderChatboxAI, ProviderLorem} {
		t.Run(id.String(), func(t *testing.T) {
			catalog, err := registry.GetProviderCatalog(id)
			if err != nil {
				t.Fatalf("GetProviderCatalog(%s) error = %v", id, err)
			}
			if len(catalog.Models) == 0 {
				t.Errorf("catalog for %s has no models", id)
			}
		})
	}
}

func TestCatalog_GetModel_KnownModel(t *testing.T) {
	info, err := GetCatalogRegistry().GetModel(ProviderChatGLM, "chatglm-6b")
	if err != nil {
		t.Fatalf("GetModel() error = %v", err)
	}
	if info.ContextWindow != 2048 {
		t.Errorf("ContextWindow = %d, want 2048", info.ContextWindow)
	}
	if info.Features.Streaming {
		t.Error("chatglm-6b should not be marked as streaming")
	}
}

func TestCatalog_GetModel_UnknownModel(t *testing.T) {
	if _, err := GetCatalogRegistry().GetModel(ProviderOpenAI, "no-such-model"); err == nil {
		t.Error("expected error for unknown model")
	}
	if GetCatalogRegistry().KnowsModel(ProviderOpenAI, "no-such-model") {
		t.Error("KnowsModel() should be false for unknown model")
	}
}

func TestCatalog_SupportsVision(t *testing.T) {
	registry := GetCatalogRegistry()
	if !registry.SupportsVision(ProviderOpenAI, "gpt-4o") {
		t.Error("gpt-4o should support vision")
	}
	if registry.SupportsVision(ProviderOpenAI, "gpt-3.5-turbo") {
		t.Error("gpt-3.5-turbo should not support vision")
	}
}

func TestCatalog_ModelNamesSorted(t *testing.T) {
	names := GetCatalogRegistry().ModelNames(ProviderLorem)
	want := []string{"lorem-fast", "lorem-medium", "lorem-slow"}
	if len(names) != len(want) {
		t.Fatalf("ModelNames() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("ModelNames()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestCatalog_LoadCatalog(t *testing.T) {
	registry := NewCatalogRegistry()

	data := []byte(`
version: "0.1.0"
provider: openai
models:
  local-model:
    display_name: Local
    context_window: 4096
    features:
      streaming: true
`)
	if err := registry.LoadCatalog(data); err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if !registry.KnowsModel(ProviderOpenAI, "local-model") {
		t.Error("loaded model should be known")
	}

	if err := registry.LoadCatalog([]byte("models: {}")); err == nil {
		t.Error("expected error for catalog without provider")
	}
	if err := registry.LoadCatalog([]byte("provider: [")); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestCatalog_LoadCatalogFromFile(t *testing.T) {
	registry := NewCatalogRegistry()
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("provider: lorem\nmodels:\n  lorem-custom:\n    context_window: 100\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := registry.LoadCatalogFromFile(path); err != nil {
		t.Fatalf("LoadCatalogFromFile() error = %v", err)
	}
	info, err := registry.GetModel(ProviderLorem, "lorem-custom")
	if err != nil || info.ContextWindow != 100 {
		t.Errorf("GetModel() = %+v, %v", info, err)
	}

	if err := registry.LoadCatalogFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
