package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing config file should not error: %v", err)
	}
	if cfg.Mode != ModeMixed {
		t.Errorf("default mode = %q, want %q", cfg.Mode, ModeMixed)
	}
	if cfg.Video.Width != 1080 || cfg.Video.Height != 1920 {
		t.Errorf("default canvas = %dx%d, want 1080x1920", cfg.Video.Width, cfg.Video.Height)
	}
	if cfg.Video.MaxDurationSec != 29.5 {
		t.Errorf("default duration cap = %v, want 29.5", cfg.Video.MaxDurationSec)
	}
	if len(cfg.Modes) == 0 {
		t.Error("default mode catalog empty")
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("mode: Spooky_Story\nparts_per_series: 7\nseeds:\n  - \"The attic\"\n  - \"  \"\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != "spooky_story" {
		t.Errorf("mode = %q, want normalized spooky_story", cfg.Mode)
	}
	if cfg.PartsPerSeries != 7 {
		t.Errorf("parts_per_series = %d, want 7", cfg.PartsPerSeries)
	}
	if len(cfg.Seeds) != 1 || cfg.Seeds[0] != "The attic" {
		t.Errorf("seeds = %v, want blank entries dropped", cfg.Seeds)
	}
	// File values merge over defaults, not replace them wholesale.
	if cfg.Content.Model == "" {
		t.Error("content defaults lost on file load")
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\n  - ["), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("CONTENT_MODE", "Voxel_Story")
	t.Setenv("SEEDS", "Alpha, Beta ,,")
	t.Setenv("PARTS_PER_SERIES", "4")
	t.Setenv("LANGUAGE", "de")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("BLUESKY_HANDLE", "me.bsky.social")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.Mode != "voxel_story" {
		t.Errorf("mode = %q", cfg.Mode)
	}
	if len(cfg.Seeds) != 2 || cfg.Seeds[0] != "Alpha" || cfg.Seeds[1] != "Beta" {
		t.Errorf("seeds = %v", cfg.Seeds)
	}
	if cfg.PartsPerSeries != 4 {
		t.Errorf("parts = %d", cfg.PartsPerSeries)
	}
	if cfg.Language != "de" {
		t.Errorf("language = %q", cfg.Language)
	}
	if cfg.Content.APIKey != "sk-test" || cfg.Speech.APIKey != "sk-test" {
		t.Error("API key not propagated")
	}
	if cfg.Publish.BlueskyHandle != "me.bsky.social" {
		t.Error("bluesky handle not picked up")
	}
}

func TestApplyEnvIgnoresInvalidParts(t *testing.T) {
	t.Setenv("PARTS_PER_SERIES", "banana")
	cfg := Default()
	cfg.ApplyEnv()
	if cfg.PartsPerSeries != Default().PartsPerSeries {
		t.Errorf("invalid PARTS_PER_SERIES changed config: %d", cfg.PartsPerSeries)
	}
}

func TestModeSettingsUnknownMode(t *testing.T) {
	mc := Default().ModeSettings("interpretive_dance")
	if mc.ImagePrompt == "" {
		t.Error("unknown mode must still get a prompt template")
	}
	if len(mc.Hashtags) == 0 {
		t.Error("unknown mode must still get hashtags")
	}
}
