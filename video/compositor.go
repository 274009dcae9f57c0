package video

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"shorts-pipeline/audio"
	"shorts-pipeline/config"
	"shorts-pipeline/util"
)

// Compositor assembles the final vertical video: background image scaled to
// fill the canvas with a slow zoom, timed caption overlays, and the narration
// audio, plus a thumbnail of the finished composition.
type Compositor struct {
	cfg *config.Config
}

// New creates a Compositor.
func New(cfg *config.Config) *Compositor {
	return &Compositor{cfg: cfg}
}

// Run builds <slug>.mp4 and <slug>_thumb.jpg in the output directory.
// Outputs are written under temporary names and renamed on completion, so a
// failed run never leaves a partial artifact under a final name.
func (c *Compositor) Run(ctx context.Context, imagePath, audioPath, narration, slug string) (string, string, error) {
	if err := util.EnsureDir(c.cfg.OutDir); err != nil {
		return "", "", err
	}

	audioSec, err := audio.Duration(audioPath)
	if err != nil {
		return "", "", fmt.Errorf("measure audio: %w", err)
	}
	duration := ClampDuration(audioSec, c.cfg.Video.MaxDurationSec)
	if duration < audioSec {
		log.Printf("[video] audio %.1fs exceeds cap, truncating to %.1fs", audioSec, duration)
	}

	segments := PartitionSegments(SplitSentences(narration), duration)
	log.Printf("[video] %d caption segment(s) over %.1fs", len(segments), duration)

	captionDir, err := os.MkdirTemp(c.cfg.OutDir, slug+"-captions-")
	if err != nil {
		return "", "", fmt.Errorf("caption dir: %w", err)
	}
	defer os.RemoveAll(captionDir)

	captionFiles, err := c.renderCaptions(segments, captionDir)
	if err != nil {
		return "", "", err
	}

	videoPath := filepath.Join(c.cfg.OutDir, slug+".mp4")
	if err := c.encode(ctx, imagePath, audioPath, captionFiles, segments, duration, videoPath); err != nil {
		return "", "", err
	}

	thumbPath := filepath.Join(c.cfg.OutDir, slug+"_thumb.jpg")
	if err := c.extractThumbnail(ctx, videoPath, thumbPath); err != nil {
		return "", "", err
	}

	log.Printf("[video] video ready: %s", videoPath)
	return videoPath, thumbPath, nil
}

func (c *Compositor) renderCaptions(segments []Segment, dir string) ([]string, error) {
	style := CaptionStyle{
		MaxWidth: c.cfg.Video.CaptionMaxWidth,
		FontSize: c.cfg.Video.FontSize,
		Padding:  c.cfg.Video.CaptionPadding,
		BGAlpha:  uint8(c.cfg.Video.CaptionBGAlpha),
	}
	files := make([]string, len(segments))
	for i, seg := range segments {
		img := RenderCaption(seg.Text, style)
		path := filepath.Join(dir, fmt.Sprintf("caption_%03d.png", i))
		if err := writePNG(img, path); err != nil {
			return nil, fmt.Errorf("write caption %d: %w", i, err)
		}
		files[i] = path
	}
	return files, nil
}

// encode runs the single ffmpeg pass that scales and zooms the background,
// overlays each caption during its window, and muxes the narration.
func (c *Compositor) encode(ctx context.Context, imagePath, audioPath string, captionFiles []string, segments []Segment, duration float64, finalPath string) error {
	args := []string{"-y",
		"-loop", "1", "-i", imagePath,
		"-i", audioPath,
	}
	for _, f := range captionFiles {
		args = append(args, "-i", f)
	}

	filter, outLabel := BuildFilterGraph(c.cfg.Video, segments, duration)
	partial := finalPath + ".partial"

	args = append(args,
		"-filter_complex", filter,
		"-map", outLabel,
		"-map", "1:a",
		"-t", fmt.Sprintf("%.3f", duration),
		"-r", fmt.Sprintf("%d", c.cfg.Video.FPS),
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		"-shortest",
		"-movflags", "+faststart",
		"-f", "mp4",
		partial,
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("ffmpeg encode: %w", err)
	}
	if err := os.Rename(partial, finalPath); err != nil {
		return fmt.Errorf("finalize video: %w", err)
	}
	return nil
}

// extractThumbnail grabs frame 0 of the finished composition, so the
// thumbnail carries the overlay and zoom, not the raw background.
func (c *Compositor) extractThumbnail(ctx context.Context, videoPath, thumbPath string) error {
	partial := thumbPath + ".partial"
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "2",
		"-f", "image2",
		partial,
	)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("ffmpeg thumbnail: %w", err)
	}
	if err := os.Rename(partial, thumbPath); err != nil {
		return fmt.Errorf("finalize thumbnail: %w", err)
	}
	return nil
}

// BuildFilterGraph assembles the ffmpeg filter_complex string: background
// scaled and cropped to fill the canvas, a monotonic bounded zoom over the
// whole duration, and one overlay per caption enabled during its [start, end)
// window. Returns the graph and the label of the final video stream.
func BuildFilterGraph(v config.VideoConfig, segments []Segment, duration float64) (string, string) {
	totalFrames := int(duration*float64(v.FPS)) + 1
	maxZoom := 1.04 + 0.02*duration

	var sb strings.Builder
	fmt.Fprintf(&sb,
		"[0:v]scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,"+
			"zoompan=z='min(1.04+0.02*on/%d,%.3f)':x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':d=%d:s=%dx%d:fps=%d[bg]",
		v.Width, v.Height, v.Width, v.Height,
		v.FPS, maxZoom, totalFrames, v.Width, v.Height, v.FPS,
	)

	if len(segments) == 0 {
		return sb.String(), "[bg]"
	}

	anchorY := int(float64(v.Height) * v.CaptionAnchor)
	current := "[bg]"
	for i, seg := range segments {
		next := fmt.Sprintf("[v%d]", i+1)
		fmt.Fprintf(&sb,
			";%s[%d:v]overlay=x=(W-w)/2:y=%d:enable='gte(t,%.3f)*lt(t,%.3f)'%s",
			current, i+2, anchorY, seg.Start, seg.End, next,
		)
		current = next
	}
	return sb.String(), current
}
