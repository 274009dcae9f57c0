package publish

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"shorts-pipeline/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// YouTube uploads finished videos as public Shorts via the Data API v3.
// Without OAuth credentials every upload is skipped cleanly.
type YouTube struct {
	cfg *config.Config
}

// NewYouTube creates a YouTube publisher.
func NewYouTube(cfg *config.Config) *YouTube {
	return &YouTube{cfg: cfg}
}

// Upload pushes the video with its metadata. Best-effort: missing
// credentials yield Skipped, failures an error the caller logs and survives.
func (y *YouTube) Upload(ctx context.Context, videoPath, title, description string, tags []string) (Status, error) {
	creds := y.cfg.Publish
	if creds.YouTubeClientID == "" || creds.YouTubeSecret == "" || creds.YouTubeRefresh == "" {
		log.Printf("[publish] youtube credentials missing, video kept at %s", videoPath)
		return StatusSkipped, nil
	}

	svc, err := youtube.NewService(ctx, option.WithHTTPClient(y.oauthClient(ctx)))
	if err != nil {
		return StatusOK, fmt.Errorf("youtube service: %w", err)
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       title,
			Description: description,
			Tags:        cleanTags(tags),
			CategoryId:  "22", // People & Blogs
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           "public",
			SelfDeclaredMadeForKids: false,
		},
	}

	f, err := os.Open(videoPath)
	if err != nil {
		return StatusOK, fmt.Errorf("open video: %w", err)
	}
	defer f.Close()

	log.Printf("[publish] uploading %q to youtube", title)
	uploaded, err := svc.Videos.Insert([]string{"snippet", "status"}, video).Media(f).Do()
	if err != nil {
		return StatusOK, fmt.Errorf("youtube upload: %w", err)
	}

	log.Printf("[publish] uploaded: https://www.youtube.com/watch?v=%s", uploaded.Id)
	return StatusOK, nil
}

func (y *YouTube) oauthClient(ctx context.Context) *http.Client {
	conf := &oauth2.Config{
		ClientID:     y.cfg.Publish.YouTubeClientID,
		ClientSecret: y.cfg.Publish.YouTubeSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope},
	}
	token := &oauth2.Token{
		RefreshToken: y.cfg.Publish.YouTubeRefresh,
		Expiry:       time.Now().Add(-time.Hour), // force refresh on first use
	}
	return oauth2.NewClient(ctx, conf.TokenSource(ctx, token))
}

// cleanTags strips hashtag markers; the API wants bare keywords.
func cleanTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		if t = strings.TrimSpace(strings.TrimPrefix(t, "#")); t != "" {
			out = append(out, t)
		}
	}
	return out
}
