package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"shorts-pipeline/config"
	"shorts-pipeline/publish"
	"shorts-pipeline/series"
	"shorts-pipeline/types"
	"shorts-pipeline/util"
)

// Collaborator interfaces. The orchestrator only depends on these, so tests
// can drive a full run with fakes.
type (
	// TopicSource selects the topics to process this run.
	TopicSource interface {
		Run(ctx context.Context) ([]types.Topic, error)
	}
	// ContentGenerator produces narration and metadata for a topic.
	ContentGenerator interface {
		Run(ctx context.Context, topic types.Topic) (*types.Content, error)
	}
	// ImageGenerator produces the background image for a topic.
	ImageGenerator interface {
		Run(ctx context.Context, topic types.Topic) (string, error)
	}
	// SpeechSynthesizer produces the voice-over track for a script.
	SpeechSynthesizer interface {
		Run(ctx context.Context, text, slug string) (string, error)
	}
	// Compositor assembles video and thumbnail from the generated assets.
	Compositor interface {
		Run(ctx context.Context, imagePath, audioPath, narration, slug string) (video, thumb string, err error)
	}
	// SocialPublisher posts to a social feed, best-effort.
	SocialPublisher interface {
		Post(ctx context.Context, text, imagePath, link string) (publish.Status, error)
	}
	// VideoPublisher uploads to a video platform, best-effort.
	VideoPublisher interface {
		Upload(ctx context.Context, videoPath, title, description string, tags []string) (publish.Status, error)
	}
)

// Outcome classifies how one topic's sub-pipeline ended.
type Outcome int

const (
	// Produced: video and thumbnail exist and the series advanced.
	Produced Outcome = iota
	// Skipped: nothing usable to build from (e.g. empty script); no advance.
	Skipped
	// Failed: a stage errored; no advance, no partial publish.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Produced:
		return "produced"
	case Skipped:
		return "skipped"
	default:
		return "failed"
	}
}

// TopicResult records one topic's outcome for the run summary.
type TopicResult struct {
	Topic     types.Topic
	Outcome   Outcome
	Err       error
	VideoPath string
	ThumbPath string
	Social    publish.Status
	Video     publish.Status
}

// Summary is the per-run report: topics attempted versus actually produced.
type Summary struct {
	Attempted int
	Produced  int
	Results   []TopicResult
}

// Pipeline drives the per-topic state machine: Generate, Synthesize,
// Composite, Publish, AdvanceSeries. A failure in one topic is contained
// there; the run carries on with the next topic.
type Pipeline struct {
	Cfg     *config.Config
	Store   *series.Store
	Topics  TopicSource
	Content ContentGenerator
	Images  ImageGenerator
	Speech  SpeechSynthesizer
	Video   Compositor
	Social  SocialPublisher
	Uploads VideoPublisher
}

// Run executes one full pipeline run. The returned error is reserved for
// store-fatal conditions: anything that risks losing series progress aborts
// instead of quietly drifting state.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	topics, err := p.Topics.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("select topics: %w", err)
	}
	if len(topics) == 0 {
		log.Println("[pipeline] no topics to process")
		return &Summary{}, nil
	}

	summary := &Summary{Attempted: len(topics)}
	for _, topic := range topics {
		result := p.runTopic(ctx, topic)
		summary.Results = append(summary.Results, result)

		switch result.Outcome {
		case Produced:
			// Only a fully composited video advances the series. Losing this
			// write risks duplicate parts next run, so it is fatal.
			if err := p.Store.Advance(topic.Meta.SeriesKey); err != nil {
				return summary, fmt.Errorf("advance series %q: %w", topic.Meta.SeriesKey, err)
			}
			summary.Produced++
		case Failed:
			log.Printf("[pipeline] topic %q failed: %v", topic.Title, result.Err)
		case Skipped:
			log.Printf("[pipeline] topic %q skipped: %v", topic.Title, result.Err)
		}
	}

	log.Printf("[pipeline] run complete: %d/%d topic(s) produced", summary.Produced, summary.Attempted)
	return summary, nil
}

// runTopic executes all stages for one topic. Publish results are recorded
// but never turn a produced video into a failure.
func (p *Pipeline) runTopic(ctx context.Context, topic types.Topic) TopicResult {
	result := TopicResult{Topic: topic}
	log.Printf("[pipeline] processing %q", topic.Title)

	content, err := p.Content.Run(ctx, topic)
	if err != nil {
		result.Outcome, result.Err = Failed, fmt.Errorf("content: %w", err)
		return result
	}
	if strings.TrimSpace(content.Script) == "" {
		result.Outcome, result.Err = Skipped, fmt.Errorf("empty script")
		return result
	}

	imagePath, err := p.Images.Run(ctx, topic)
	if err != nil {
		result.Outcome, result.Err = Failed, fmt.Errorf("image: %w", err)
		return result
	}

	slug := util.SafeFilename(strings.ToLower(fmt.Sprintf("%s-part-%d", topic.Meta.Seed, topic.Meta.Part)))
	audioPath, err := p.Speech.Run(ctx, content.Script, slug)
	if err != nil {
		result.Outcome, result.Err = Failed, fmt.Errorf("speech: %w", err)
		return result
	}

	videoPath, thumbPath, err := p.Video.Run(ctx, imagePath, audioPath, content.Script, slug)
	if err != nil {
		result.Outcome, result.Err = Failed, fmt.Errorf("composite: %w", err)
		return result
	}
	result.VideoPath, result.ThumbPath = videoPath, thumbPath
	result.Outcome = Produced

	// Publishing is best-effort from here on.
	result.Social, result.Video = p.publishTopic(ctx, topic, content, videoPath, thumbPath)
	return result
}

func (p *Pipeline) publishTopic(ctx context.Context, topic types.Topic, content *types.Content, videoPath, thumbPath string) (publish.Status, publish.Status) {
	social := publish.StatusSkipped
	if content.Tweet != "" {
		var err error
		social, err = p.Social.Post(ctx, content.Tweet, thumbPath, p.Cfg.AffiliateURL)
		if err != nil {
			log.Printf("[pipeline] social post for %q failed: %v", topic.Title, err)
		}
	}

	description := content.Description
	if p.Cfg.AffiliateURL != "" {
		description = description + "\n\n" + p.Cfg.AffiliateURL
	}
	upload, err := p.Uploads.Upload(ctx, videoPath, content.Title, description, content.Hashtags)
	if err != nil {
		log.Printf("[pipeline] video upload for %q failed: %v", topic.Title, err)
	}
	return social, upload
}
