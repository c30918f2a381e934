package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FFmpeg runs the ffmpeg binary as a subprocess.
type FFmpeg struct {
	Bin string
}

func New(bin string) *FFmpeg {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &FFmpeg{Bin: bin}
}

// ExtractAudio writes the audio track of videoPath to outPath as VBR mp3.
func (f *FFmpeg) ExtractAudio(ctx context.Context, videoPath, outPath string) error {
	return f.run(ctx, extractArgs(videoPath, outPath))
}

// SplitAudio cuts audioPath into fixed-length mp3 segments inside dir and returns
// their paths in playback order.
func (f *FFmpeg) SplitAudio(ctx context.Context, audioPath, dir string, segment time.Duration) ([]string, error) {
	if segment <= 0 {
		segment = 10 * time.Minute
	}
	if err := f.run(ctx, splitArgs(audioPath, dir, segment)); err != nil {
		return nil, err
	}
	chunks, err := filepath.Glob(filepath.Join(dir, chunkPrefix+"*.mp3"))
	if err != nil {
		return nil, err
	}
	sort.Strings(chunks)
	return chunks, nil
}

const chunkPrefix = "chunk_"

func extractArgs(videoPath, outPath string) []string {
	// ffmpeg -y -i input -q:a 0 -map a output.mp3
	return []string{"-y", "-i", videoPath, "-q:a", "0", "-map", "a", outPath}
}

func splitArgs(audioPath, dir string, segment time.Duration) []string {
	return []string{
		"-y", "-i", audioPath,
		"-f", "segment",
		"-segment_time", strconv.Itoa(int(segment.Seconds())),
		"-c", "copy",
		filepath.Join(dir, chunkPrefix+"%03d.mp3"),
	}
}

func (f *FFmpeg) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, f.Bin, append([]string{"-hide_banner", "-loglevel", "error"}, args...)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("ffmpeg: %w: %s", err, msg)
		}
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}
