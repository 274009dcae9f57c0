package visuals

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shorts-pipeline/config"
	"shorts-pipeline/types"
	"shorts-pipeline/util"
)

// Generator fetches vertical background images from Pollinations.ai, a free
// keyless image generation endpoint.
type Generator struct {
	cfg        *config.Config
	httpClient *http.Client
}

// New creates an image Generator.
func New(cfg *config.Config) *Generator {
	return &Generator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Run generates the background image for a topic and saves it under the
// output directory. The prompt comes from the topic's mode template.
func (g *Generator) Run(ctx context.Context, topic types.Topic) (string, error) {
	prompt := g.buildPrompt(topic)

	if err := util.EnsureDir(g.cfg.OutDir); err != nil {
		return "", err
	}
	slug := util.SafeFilename(strings.ToLower(fmt.Sprintf("%s-part-%d", topic.Meta.Seed, topic.Meta.Part)))
	outFile := filepath.Join(g.cfg.OutDir, slug+".jpg")

	imageURL := fmt.Sprintf(
		"https://image.pollinations.ai/prompt/%s?width=%d&height=%d&nologo=true&model=flux&seed=%d",
		url.PathEscape(prompt),
		g.cfg.Video.Width, g.cfg.Video.Height,
		topic.Meta.Part*42+7, // deterministic per part for reproducibility
	)

	log.Printf("[visuals] generating background for %q: %q", topic.Title, truncate(prompt, 60))

	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		err = g.download(ctx, imageURL, outFile)
		if err == nil {
			log.Printf("[visuals] background saved: %s", outFile)
			return outFile, nil
		}
		log.Printf("[visuals] attempt %d failed: %v", attempt, err)
		select {
		case <-time.After(time.Duration(attempt) * 3 * time.Second):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("image generation failed after 3 attempts: %w", err)
}

func (g *Generator) buildPrompt(topic types.Topic) string {
	template := g.cfg.ModeSettings(topic.Meta.Mode).ImagePrompt
	return fmt.Sprintf(template, topic.Meta.Seed, topic.Meta.Part)
}

func (g *Generator) download(ctx context.Context, imageURL, outFile string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; shorts-pipeline/1.0)")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from image endpoint", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	// An error page instead of image bytes comes back tiny.
	if len(data) < 100 {
		return fmt.Errorf("response too small (%d bytes)", len(data))
	}
	return os.WriteFile(outFile, data, 0644)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
