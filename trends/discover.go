package trends

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"shorts-pipeline/config"
	"shorts-pipeline/util"

	"github.com/mmcdole/gofeed"
	"github.com/vartanbeno/go-reddit/v2/reddit"
)

// Discoverer pulls trending headlines from public sources and turns them into
// seed candidates. It only runs when no seeds are configured; selection over
// the result stays deterministic.
type Discoverer struct {
	cfg    *config.Config
	parser *gofeed.Parser
}

// NewDiscoverer creates a discoverer for the configured sources.
func NewDiscoverer(cfg *config.Config) *Discoverer {
	parser := gofeed.NewParser()
	parser.UserAgent = "Mozilla/5.0 (compatible; shorts-pipeline/1.0)"
	return &Discoverer{cfg: cfg, parser: parser}
}

// Run gathers candidate seeds from Google News RSS and Reddit, deduplicated
// by slug and filtered to ASCII titles. Source failures are logged and
// skipped; discovery is best-effort.
func (d *Discoverer) Run(ctx context.Context) []string {
	var candidates []string
	candidates = append(candidates, d.newsSeeds(ctx)...)
	candidates = append(candidates, d.redditSeeds(ctx)...)

	var seeds []string
	seenSlugs := make(map[string]bool)
	for _, title := range candidates {
		title = strings.TrimSpace(title)
		slug := util.Slugify(title)
		if slug == "" || seenSlugs[slug] {
			continue
		}
		if !isASCII(title) {
			continue
		}
		seenSlugs[slug] = true
		seeds = append(seeds, title)
		if len(seeds) >= d.cfg.Discovery.MaxSeeds {
			break
		}
	}
	log.Printf("[trends] discovered %d seed(s) from trending sources", len(seeds))
	return seeds
}

func (d *Discoverer) newsSeeds(ctx context.Context) []string {
	var titles []string
	for _, query := range d.cfg.Discovery.NewsQueries {
		feedURL := fmt.Sprintf(
			"https://news.google.com/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en",
			url.QueryEscape(query),
		)
		feedCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		feed, err := d.parser.ParseURLWithContext(feedURL, feedCtx)
		cancel()
		if err != nil {
			log.Printf("[trends] news feed %q failed: %v", query, err)
			continue
		}
		for i, item := range feed.Items {
			if i >= 5 {
				break
			}
			titles = append(titles, item.Title)
		}
	}
	return titles
}

func (d *Discoverer) redditSeeds(ctx context.Context) []string {
	if len(d.cfg.Discovery.Subreddits) == 0 {
		return nil
	}
	client, err := reddit.NewReadonlyClient()
	if err != nil {
		log.Printf("[trends] reddit client: %v", err)
		return nil
	}
	var titles []string
	for _, sub := range d.cfg.Discovery.Subreddits {
		posts, _, err := client.Subreddit.HotPosts(ctx, sub, &reddit.ListOptions{Limit: 5})
		if err != nil {
			log.Printf("[trends] subreddit %q failed: %v", sub, err)
			continue
		}
		for _, p := range posts {
			titles = append(titles, p.Title)
		}
	}
	return titles
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return false
		}
	}
	return true
}
