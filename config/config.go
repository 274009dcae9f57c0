package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ModeMixed is the catch-all mode: it draws one seed from every configured mode.
const ModeMixed = "mixed"

// Config is the full configuration surface of the pipeline. Everything is
// defaulted, so a missing config file is not an error. Business logic never
// reads the process environment directly; env overrides are applied once via
// ApplyEnv.
type Config struct {
	Mode           string   `yaml:"mode"`
	Seeds          []string `yaml:"seeds"`
	PartsPerSeries int      `yaml:"parts_per_series"`
	Language       string   `yaml:"language"`
	OutDir         string   `yaml:"out_dir"`
	StatePath      string   `yaml:"state_path"`
	AffiliateURL   string   `yaml:"affiliate_url"`

	Modes     map[string]ModeConfig `yaml:"modes"`
	Discovery DiscoveryConfig       `yaml:"discovery"`
	Content   ContentConfig         `yaml:"content"`
	Speech    SpeechConfig          `yaml:"speech"`
	Video     VideoConfig           `yaml:"video"`

	// Credentials are env-only; never read from the config file.
	Publish PublishConfig `yaml:"-"`
}

// ModeConfig describes one content category: its default seeds, the image
// prompt template used for backgrounds, and the hashtags attached to posts.
// The catalog is plain configuration; callers may replace or extend it.
type ModeConfig struct {
	Seeds       []string `yaml:"seeds"`
	ImagePrompt string   `yaml:"image_prompt"`
	Hashtags    []string `yaml:"hashtags"`
}

// DiscoveryConfig controls trending-seed discovery, used only when no seeds
// are configured.
type DiscoveryConfig struct {
	Enabled     bool     `yaml:"enabled"`
	NewsQueries []string `yaml:"news_queries"`
	Subreddits  []string `yaml:"subreddits"`
	MaxSeeds    int      `yaml:"max_seeds"`
}

// ContentConfig points at an OpenAI-compatible chat completions endpoint.
type ContentConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	APIKey      string  `yaml:"-"`
}

// SpeechConfig points at an OpenAI-compatible text-to-speech endpoint.
type SpeechConfig struct {
	Endpoint string  `yaml:"endpoint"`
	Model    string  `yaml:"model"`
	Voice    string  `yaml:"voice"`
	Speed    float64 `yaml:"speed"`
	APIKey   string  `yaml:"-"`
}

// VideoConfig fixes the output canvas and caption styling.
type VideoConfig struct {
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
	FPS             int     `yaml:"fps"`
	MaxDurationSec  float64 `yaml:"max_duration_sec"`
	FontSize        int     `yaml:"font_size"`
	CaptionMaxWidth int     `yaml:"caption_max_width"`
	CaptionPadding  int     `yaml:"caption_padding"`
	CaptionBGAlpha  int     `yaml:"caption_bg_alpha"`
	CaptionAnchor   float64 `yaml:"caption_anchor"`
}

// PublishConfig holds publisher credentials, all sourced from env.
type PublishConfig struct {
	BlueskyHandle      string
	BlueskyAppPassword string
	YouTubeClientID    string
	YouTubeSecret      string
	YouTubeRefresh     string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Mode:           ModeMixed,
		PartsPerSeries: 5,
		Language:       "en",
		OutDir:         "out",
		StatePath:      "out/series_state.json",
		Modes: map[string]ModeConfig{
			"funny_texts": {
				Seeds: []string{"Texts from my landlord", "Group chat gone wrong"},
				ImagePrompt: "Vertical 1080x1920 clean minimal background suitable for overlay text, " +
					"playful vibe, fits theme '%s', Part %d.",
				Hashtags: []string{"#funny", "#texts", "#comedy", "#shorts"},
			},
			"spooky_story": {
				Seeds: []string{"The house at the end of the street", "Night shift at the museum"},
				ImagePrompt: "Vertical 1080x1920 eerie cinematic illustration, moody lighting, " +
					"subtle horror (no gore), fits theme '%s', Part %d.",
				Hashtags: []string{"#scary", "#horror", "#creepy", "#shorts"},
			},
			"voxel_story": {
				Seeds: []string{"The lost mine", "Island survival diaries"},
				ImagePrompt: "Vertical 1080x1920 digital art in a voxel/blocky sandbox style (no logos), " +
					"dramatic lighting, scene that fits the theme '%s', episode Part %d. " +
					"High contrast, cinematic, clean focal point.",
				Hashtags: []string{"#gaming", "#voxel", "#story", "#shorts"},
			},
		},
		Discovery: DiscoveryConfig{
			NewsQueries: []string{"entertainment", "technology", "fun"},
			MaxSeeds:    5,
		},
		Content: ContentConfig{
			Endpoint:    "https://api.openai.com/v1/chat/completions",
			Model:       "gpt-4o",
			Temperature: 0.7,
		},
		Speech: SpeechConfig{
			Endpoint: "https://api.openai.com/v1/audio/speech",
			Model:    "tts-1",
			Voice:    "alloy",
			Speed:    1.0,
		},
		Video: VideoConfig{
			Width:           1080,
			Height:          1920,
			FPS:             30,
			MaxDurationSec:  29.5,
			FontSize:        56,
			CaptionMaxWidth: 1000,
			CaptionPadding:  24,
			CaptionBGAlpha:  120,
			CaptionAnchor:   0.8,
		},
	}
}

// Load reads a YAML config file over the defaults. A missing file is fine:
// the defaults stand.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// ApplyEnv overlays environment variables onto the config. Called once from
// main, so the rest of the code can treat the config as the single source of
// configuration.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("CONTENT_MODE"); v != "" {
		c.Mode = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("SEEDS"); v != "" {
		c.Seeds = splitSeeds(v)
	}
	if v := os.Getenv("PARTS_PER_SERIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.PartsPerSeries = n
		}
	}
	if v := os.Getenv("LANGUAGE"); v != "" {
		c.Language = v
	}
	if v := os.Getenv("OUT_DIR"); v != "" {
		c.OutDir = v
	}
	if v := os.Getenv("AFFILIATE_URL"); v != "" {
		c.AffiliateURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Content.APIKey = v
		c.Speech.APIKey = v
	}
	c.Publish.BlueskyHandle = os.Getenv("BLUESKY_HANDLE")
	c.Publish.BlueskyAppPassword = os.Getenv("BLUESKY_APP_PASSWORD")
	c.Publish.YouTubeClientID = os.Getenv("YT_CLIENT_ID")
	c.Publish.YouTubeSecret = os.Getenv("YT_CLIENT_SECRET")
	c.Publish.YouTubeRefresh = os.Getenv("YT_REFRESH_TOKEN")
	c.normalize()
}

// Mode settings for an unknown mode fall back to a neutral template so a
// custom mode never crashes prompt building.
func (c *Config) ModeSettings(mode string) ModeConfig {
	if mc, ok := c.Modes[mode]; ok {
		return mc
	}
	return ModeConfig{
		ImagePrompt: "Vertical 1080x1920 cinematic illustration, dramatic, clean focal point, " +
			"fits theme '%s', Part %d.",
		Hashtags: []string{"#shorts"},
	}
}

func (c *Config) normalize() {
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	if c.Mode == "" {
		c.Mode = ModeMixed
	}
	if c.PartsPerSeries <= 0 {
		c.PartsPerSeries = 5
	}
	var seeds []string
	for _, s := range c.Seeds {
		if s = strings.TrimSpace(s); s != "" {
			seeds = append(seeds, s)
		}
	}
	c.Seeds = seeds
	if c.Discovery.MaxSeeds <= 0 {
		c.Discovery.MaxSeeds = 5
	}
	if c.Video.FPS <= 0 {
		c.Video.FPS = 30
	}
	if c.Video.MaxDurationSec <= 0 {
		c.Video.MaxDurationSec = 29.5
	}
}

func splitSeeds(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
