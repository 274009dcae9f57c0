package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"shorts-pipeline/config"
)

const defaultBlueskyHost = "https://bsky.social"

// Bluesky posts to a Bluesky feed over the XRPC HTTP API. Without
// credentials every post is skipped cleanly.
type Bluesky struct {
	cfg        *config.Config
	host       string
	httpClient *http.Client
}

// NewBluesky creates a Bluesky publisher.
func NewBluesky(cfg *config.Config) *Bluesky {
	return &Bluesky{
		cfg:        cfg,
		host:       defaultBlueskyHost,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type blueskySession struct {
	AccessJWT string `json:"accessJwt"`
	DID       string `json:"did"`
}

// Post publishes text with an optional image and link. Never panics past its
// boundary: the caller gets Skipped without credentials, or an error it is
// expected to log and move on from.
func (b *Bluesky) Post(ctx context.Context, text, imagePath, link string) (Status, error) {
	handle := b.cfg.Publish.BlueskyHandle
	password := b.cfg.Publish.BlueskyAppPassword
	if handle == "" || password == "" {
		log.Println("[publish] bluesky credentials missing, skipping post")
		return StatusSkipped, nil
	}
	if strings.TrimSpace(text) == "" {
		return StatusSkipped, nil
	}

	session, err := b.createSession(ctx, handle, password)
	if err != nil {
		return StatusOK, fmt.Errorf("bluesky login: %w", err)
	}

	fullText := strings.TrimSpace(text)
	if link != "" {
		fullText = fullText + " " + strings.TrimSpace(link)
	}

	record := map[string]any{
		"$type":     "app.bsky.feed.post",
		"text":      fullText,
		"createdAt": time.Now().UTC().Format(time.RFC3339),
	}

	if imagePath != "" {
		if blob, err := b.uploadBlob(ctx, session, imagePath); err != nil {
			log.Printf("[publish] bluesky image upload failed, posting without it: %v", err)
		} else {
			record["embed"] = map[string]any{
				"$type": "app.bsky.embed.images",
				"images": []map[string]any{
					{"image": blob, "alt": "thumbnail"},
				},
			}
		}
	}

	body := map[string]any{
		"repo":       session.DID,
		"collection": "app.bsky.feed.post",
		"record":     record,
	}
	if err := b.xrpc(ctx, session.AccessJWT, "com.atproto.repo.createRecord", body, nil); err != nil {
		return StatusOK, fmt.Errorf("bluesky post: %w", err)
	}

	log.Println("[publish] bluesky post created")
	return StatusOK, nil
}

func (b *Bluesky) createSession(ctx context.Context, handle, password string) (*blueskySession, error) {
	var session blueskySession
	body := map[string]string{"identifier": handle, "password": password}
	if err := b.xrpc(ctx, "", "com.atproto.server.createSession", body, &session); err != nil {
		return nil, err
	}
	if session.AccessJWT == "" || session.DID == "" {
		return nil, fmt.Errorf("empty session response")
	}
	return &session, nil
}

// uploadBlob sends raw image bytes and returns the blob reference to embed.
func (b *Bluesky) uploadBlob(ctx context.Context, session *blueskySession, imagePath string) (json.RawMessage, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, "POST",
		b.host+"/xrpc/com.atproto.repo.uploadBlob", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "image/jpeg")
	req.Header.Set("Authorization", "Bearer "+session.AccessJWT)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, snippet)
	}

	var parsed struct {
		Blob json.RawMessage `json:"blob"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	return parsed.Blob, nil
}

func (b *Bluesky) xrpc(ctx context.Context, token, method string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, "POST",
		b.host+"/xrpc/"+method, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("%s: HTTP %d: %s", method, resp.StatusCode, snippet)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
