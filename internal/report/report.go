// Package report renders the summary printed after a decode run.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/zsiec/ringvideo/internal/pipeline"
	"github.com/zsiec/ringvideo/internal/ringvideo/decoder"
	"github.com/zsiec/ringvideo/internal/ringvideo/marker"
)

const (
	// FrameRate is the playback rate of decoded frames.
	FrameRate = 18
	// AudioRate and AudioChannels describe the raw audio stream.
	AudioRate     = 17640
	AudioChannels = 2
)

// Render formats s as a bordered panel.
func Render(s *pipeline.Summary) string {
	rows := []string{
		row("Frames", framesValue(s)),
		row("Mode", fmt.Sprintf("%s, %s flip", s.Mode, s.Flip)),
		row("Variants", variantsValue(s.Variants)),
		row("Resyncs", resyncValue(s)),
		row("Video", fmt.Sprintf("%dx%d RGB24 @ %d fps, %s", decoder.Width, decoder.Height, FrameRate, VideoDuration(s.Frames))),
		row("Audio", fmt.Sprintf("%s samples, u8 %dch %d Hz, %s", FormatNumber(int64(s.AudioSamples)), AudioChannels, AudioRate, AudioDuration(s.AudioSamples))),
		row("Capture", fmt.Sprintf("%s, %s scanned", FormatBytes(s.Size), FormatBytes(s.BytesScanned))),
		row("Index", indexValue(s)),
		row("Run", fmt.Sprintf("%s in %s", s.RunID, s.Duration.Round(time.Millisecond))),
	}

	body := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return lipgloss.JoinVertical(lipgloss.Left,
		HeaderStyle.Render("ringvideo"),
		PanelStyle.Render(body),
	)
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, LabelStyle.Render(label), ValueStyle.Render(value))
}

func framesValue(s *pipeline.Summary) string {
	if s.Frames == 0 {
		return WarningStyle.Render("0 frames found")
	}
	return SuccessStyle.Render(fmt.Sprintf("%d frames found", s.Frames))
}

func resyncValue(s *pipeline.Summary) string {
	if s.Resyncs == 0 {
		return "none"
	}
	return WarningStyle.Render(fmt.Sprintf("%d (max drift %s)", s.Resyncs, FormatBytes(s.MaxDrift)))
}

func indexValue(s *pipeline.Summary) string {
	if s.CacheHit {
		return "replayed from cache"
	}
	return "built by scanning"
}

func variantsValue(counts map[marker.Variant]int) string {
	if len(counts) == 0 {
		return "-"
	}
	vs := make([]marker.Variant, 0, len(counts))
	for v := range counts {
		vs = append(vs, v)
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i] < vs[j] })

	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprintf("%s x%d", v, counts[v])
	}
	return strings.Join(parts, ", ")
}

// VideoDuration is the playback time of n frames.
func VideoDuration(frames int) time.Duration {
	return time.Duration(frames) * time.Second / FrameRate
}

// AudioDuration is the playback time of n interleaved samples.
func AudioDuration(samples int) time.Duration {
	return time.Duration(samples) * time.Second / (AudioRate * AudioChannels)
}

// FormatNumber abbreviates large counts.
func FormatNumber(num int64) string {
	if num >= 1000000000 {
		return fmt.Sprintf("%.1fB", float64(num)/1000000000)
	} else if num >= 1000000 {
		return fmt.Sprintf("%.1fM", float64(num)/1000000)
	} else if num >= 1000 {
		return fmt.Sprintf("%.1fK", float64(num)/1000)
	}
	return fmt.Sprintf("%d", num)
}

// FormatBytes formats byte counts with appropriate units
func FormatBytes(bytes int64) string {
	if bytes >= 1024*1024*1024 {
		return fmt.Sprintf("%.1f GB", float64(bytes)/(1024*1024*1024))
	} else if bytes >= 1024*1024 {
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	} else if bytes >= 1024 {
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	}
	return fmt.Sprintf("%d B", bytes)
}
