package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/takumik/keizu/internal/config"
	"github.com/takumik/keizu/pkg/cache"
	"github.com/takumik/keizu/pkg/pipeline"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{pipeline.FormatSVG}},
		{"pdf", []string{"pdf"}},
		{"svg,pdf,html", []string{"svg", "pdf", "html"}},
	}

	for _, tt := range tests {
		got := parseFormats(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "ledger.xlsx", "ledger"},
		{"out.svg", "ledger.xlsx", "out"},
		{"out.pdf", "ledger.xlsx", "out"},
		{"diagrams/tree", "ledger.xlsx", "diagrams/tree"},
		{"out.xlsx", "ledger.xlsx", "out.xlsx"}, // not a format extension
	}

	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "a", "b"); got != "a" {
		t.Errorf("firstNonEmpty = %q", got)
	}
	if got := firstNonEmpty("", ""); got != "" {
		t.Errorf("firstNonEmpty = %q, want empty", got)
	}
}

func TestNewRunnerCacheScope(t *testing.T) {
	ctx := context.Background()

	cfg := config.Defaults()
	cfg.Cache.Dir = t.TempDir()
	cfg.Cache.Scope = "plant-a"

	runner, err := newRunner(ctx, cfg, false)
	if err != nil {
		t.Fatalf("newRunner: %v", err)
	}
	defer runner.Close()

	key := runner.Keyer.TreeKey("hash", "Sheet1")
	if !strings.HasPrefix(key, "plant-a:") {
		t.Errorf("scoped key = %q, want plant-a: prefix", key)
	}

	// Without a scope, keys carry no prefix
	cfg.Cache.Scope = ""
	runner, err = newRunner(ctx, cfg, false)
	if err != nil {
		t.Fatalf("newRunner: %v", err)
	}
	defer runner.Close()
	if key := runner.Keyer.TreeKey("hash", "Sheet1"); strings.HasPrefix(key, "plant-a:") {
		t.Errorf("unscoped key = %q, should have no prefix", key)
	}
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()

	// noCache forces the null backend regardless of config
	cfg := config.Defaults()
	c, err := newCache(ctx, cfg, true)
	if err != nil {
		t.Fatalf("newCache: %v", err)
	}
	if _, ok := c.(*cache.NullCache); !ok {
		t.Errorf("noCache should yield NullCache, got %T", c)
	}

	// backend none also disables caching
	cfg.Cache.Backend = config.CacheBackendNone
	c, _ = newCache(ctx, cfg, false)
	if _, ok := c.(*cache.NullCache); !ok {
		t.Errorf("backend none should yield NullCache, got %T", c)
	}

	// file backend
	cfg = config.Defaults()
	cfg.Cache.Dir = t.TempDir()
	c, err = newCache(ctx, cfg, false)
	if err != nil {
		t.Fatalf("newCache file: %v", err)
	}
	if _, ok := c.(*cache.FileCache); !ok {
		t.Errorf("file backend should yield FileCache, got %T", c)
	}
}
