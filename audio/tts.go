package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"shorts-pipeline/config"
	"shorts-pipeline/util"
)

// Synthesizer turns narration text into a voice-over track via an
// OpenAI-compatible text-to-speech endpoint.
type Synthesizer struct {
	cfg        *config.Config
	httpClient *http.Client
}

// New creates a speech Synthesizer.
func New(cfg *config.Config) *Synthesizer {
	return &Synthesizer{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

type speechRequest struct {
	Model string  `json:"model"`
	Voice string  `json:"voice"`
	Input string  `json:"input"`
	Speed float64 `json:"speed"`
}

// Run synthesizes text and writes the audio next to the other artifacts for
// this slug. Transient failures are retried with exponential backoff.
func (s *Synthesizer) Run(ctx context.Context, text, slug string) (string, error) {
	if s.cfg.Speech.APIKey == "" {
		return "", fmt.Errorf("speech API key not set")
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty narration text")
	}
	if err := util.EnsureDir(s.cfg.OutDir); err != nil {
		return "", err
	}
	outFile := filepath.Join(s.cfg.OutDir, slug+".mp3")

	log.Printf("[audio] synthesizing %d chars of narration", len(text))

	body, err := json.Marshal(speechRequest{
		Model: s.cfg.Speech.Model,
		Voice: s.cfg.Speech.Voice,
		Input: text,
		Speed: s.cfg.Speech.Speed,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(1<<attempt) * time.Second):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		if err := s.synthesize(ctx, body, outFile); err != nil {
			lastErr = err
			log.Printf("[audio] attempt %d failed: %v", attempt+1, err)
			continue
		}
		log.Printf("[audio] voice-over saved: %s", outFile)
		return outFile, nil
	}
	return "", fmt.Errorf("speech synthesis failed: %w", lastErr)
}

func (s *Synthesizer) synthesize(ctx context.Context, body []byte, outFile string) error {
	req, err := http.NewRequestWithContext(ctx, "POST", s.cfg.Speech.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.Speech.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("HTTP %d from speech endpoint: %s", resp.StatusCode, snippet)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("speech endpoint returned no audio")
	}
	return os.WriteFile(outFile, data, 0644)
}

// Duration measures an audio file's length in seconds with ffprobe.
func Duration(audioFile string) (float64, error) {
	out, err := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		audioFile,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", audioFile, err)
	}
	var dur float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &dur); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	return dur, nil
}
