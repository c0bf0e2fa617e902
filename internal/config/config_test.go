package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"xiangqi/internal/engine"
	"xiangqi/internal/predict"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadOverridesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xiangqi.json")
	body := `{"addr":"127.0.0.1:9000","difficulty":"hard","time_ms":500,"tt_bits":20}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9000" || cfg.DifficultyLevel() != engine.Hard {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Budget() != 500*time.Millisecond || cfg.EngineOptions().TTBits != 20 {
		t.Fatalf("budget/tt not applied: %v %d", cfg.Budget(), cfg.TTBits)
	}
	// 文件里没写的字段保留默认
	if cfg.LogLevel != "info" || cfg.Confidence != predict.DefaultConfidence {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestHelpers(t *testing.T) {
	cfg := Default()
	cfg.Difficulty = "impossible"
	if cfg.DifficultyLevel() != engine.Normal {
		t.Fatalf("unknown difficulty should fall back to normal")
	}
	cfg.TimeMs = 0
	if cfg.Budget() != 0 {
		t.Fatalf("zero time means no deadline")
	}
	if _, ok := cfg.Predictor().(predict.NoOp); !ok {
		t.Fatalf("no model paths should give NoOp")
	}
}

func TestModelPaths(t *testing.T) {
	cfg := Default()
	if (cfg.ModelPaths() != predict.Paths{}) {
		t.Fatalf("default config should not load models")
	}
	cfg.ModelDir = "models"
	got := cfg.ModelPaths()
	if got.Tree != filepath.Join("models", predict.TreeFile) || got.Summary != filepath.Join("models", predict.SummaryFile) {
		t.Fatalf("unexpected paths %+v", got)
	}
	cfg.NetworkModel = "other/net.gob"
	if got := cfg.ModelPaths(); got.Network != "other/net.gob" || got.Tree != filepath.Join("models", predict.TreeFile) {
		t.Fatalf("explicit network path should override the dir: %+v", got)
	}
	// 目录里没有文件：照常下棋
	cfg.ModelDir = t.TempDir()
	cfg.NetworkModel = ""
	if _, ok := cfg.Predictor().(predict.NoOp); !ok {
		t.Fatalf("empty model dir should give NoOp")
	}
}
