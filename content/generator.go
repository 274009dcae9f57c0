package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"shorts-pipeline/config"
	"shorts-pipeline/types"
)

// Generator produces the narration script and publish metadata for one topic
// via an OpenAI-compatible chat completions endpoint.
type Generator struct {
	cfg        *config.Config
	httpClient *http.Client
}

// New creates a content Generator.
func New(cfg *config.Config) *Generator {
	return &Generator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Run generates script, tweet, title, description and hashtags for a topic.
// Transient failures are retried with exponential backoff; parse failures of
// the model output fall back to progressively looser parsing and only give up
// when nothing usable remains.
func (g *Generator) Run(ctx context.Context, topic types.Topic) (*types.Content, error) {
	if g.cfg.Content.APIKey == "" {
		return nil, fmt.Errorf("content API key not set")
	}

	log.Printf("[content] generating script for %q", topic.Title)

	reqBody := chatRequest{
		Model: g.cfg.Content.Model,
		Messages: []chatMessage{
			{Role: "user", Content: g.buildPrompt(topic)},
		},
		Temperature: g.cfg.Content.Temperature,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(1<<attempt) * time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		raw, err := g.complete(ctx, bodyBytes)
		if err != nil {
			lastErr = err
			log.Printf("[content] attempt %d failed: %v", attempt+1, err)
			continue
		}

		result := parseContent(raw)
		if result.Script == "" {
			lastErr = fmt.Errorf("model returned no usable script")
			continue
		}
		result.Hashtags = normalizeHashtags(result.Hashtags, g.cfg.ModeSettings(topic.Meta.Mode).Hashtags)
		if result.Title == "" {
			result.Title = topic.Title
		}
		log.Printf("[content] script ready: %d chars, %d hashtags", len(result.Script), len(result.Hashtags))
		return result, nil
	}
	return nil, fmt.Errorf("content generation failed: %w", lastErr)
}

func (g *Generator) complete(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", g.cfg.Content.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.Content.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return "", fmt.Errorf("parse chat response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("chat error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func (g *Generator) buildPrompt(topic types.Topic) string {
	cta := g.cfg.AffiliateURL
	if cta == "" {
		cta = "Support the channel"
	}

	var sb strings.Builder
	sb.WriteString("You are a creative content creator for social media platforms. ")
	fmt.Fprintf(&sb, "Create the following items for a 30 second vertical video, part %d of a %d-part %q series titled %q:\n",
		topic.Meta.Part, g.cfg.PartsPerSeries, topic.Meta.Mode, topic.Meta.Seed)
	fmt.Fprintf(&sb, "1. SCRIPT: A narrative script in %s lasting roughly 30 seconds. ", languageName(g.cfg.Language))
	sb.WriteString("Start with a strong hook in the first two seconds. Continue the series naturally from the previous part. ")
	fmt.Fprintf(&sb, "Conclude with a call-to-action directing viewers to %s.\n", cta)
	fmt.Fprintf(&sb, "2. TWEET: A short message under 280 characters promoting the video with a call to action to %s.\n", cta)
	sb.WriteString("3. TITLE: A concise, attention grabbing YouTube Short title that includes the part number.\n")
	fmt.Fprintf(&sb, "4. DESCRIPTION: A longer description for the video including a call to action directing viewers to %s.\n", cta)
	sb.WriteString("5. HASHTAGS: A list of 6-10 relevant hashtags.\n")
	sb.WriteString("Format your answer as JSON with the keys script, tweet, title, description, hashtags (the hashtags as a list).")
	return sb.String()
}

// parseContent copes with models that wrap JSON in fences, embed it in prose,
// or skip JSON entirely and answer with labeled lines.
func parseContent(raw string) *types.Content {
	raw = strings.TrimSpace(raw)

	var c types.Content
	if err := json.Unmarshal([]byte(stripFences(raw)), &c); err == nil {
		return &c
	}

	// JSON buried somewhere inside the response.
	if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start != -1 && end > start {
		if err := json.Unmarshal([]byte(raw[start:end+1]), &c); err == nil {
			return &c
		}
	}

	// Last resort: labeled lines ("Script: ...", "Hashtags: #a #b").
	result := &types.Content{}
	for _, line := range strings.Split(raw, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		switch {
		case strings.HasPrefix(key, "script"):
			result.Script = value
		case strings.HasPrefix(key, "tweet"):
			result.Tweet = value
		case strings.HasPrefix(key, "title"):
			result.Title = value
		case strings.HasPrefix(key, "description"):
			result.Description = value
		case strings.HasPrefix(key, "hashtags"):
			for _, t := range strings.Fields(strings.ReplaceAll(value, ",", " ")) {
				if t = strings.TrimPrefix(t, "#"); t != "" {
					result.Hashtags = append(result.Hashtags, "#"+t)
				}
			}
		}
	}
	return result
}

// normalizeHashtags #-prefixes model output and falls back to the mode's
// hashtag set when the model produced none.
func normalizeHashtags(tags, fallback []string) []string {
	var out []string
	for _, t := range tags {
		t = strings.TrimSpace(strings.TrimPrefix(t, "#"))
		if t != "" {
			out = append(out, "#"+t)
		}
	}
	if len(out) == 0 {
		out = append(out, fallback...)
	}
	return out
}

// stripFences removes a markdown code fence if the model wrapped its JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func languageName(code string) string {
	names := map[string]string{
		"en": "English",
		"de": "German",
		"es": "Spanish",
		"fr": "French",
	}
	if n, ok := names[strings.ToLower(code)]; ok {
		return n
	}
	return code
}
