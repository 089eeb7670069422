package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
)

// FFprobe implements Prober by shelling out to ffprobe.
type FFprobe struct {
	path string
}

// NewFFprobe creates a prober using the given ffprobe binary.
func NewFFprobe(path string) *FFprobe {
	return &FFprobe{path: path}
}

// ffprobeOutput defines the structure for ffprobe JSON output.
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Duration uses ffprobe to get the duration of an audio file in seconds.
func (p *FFprobe) Duration(ctx context.Context, inputFile string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		inputFile,
	}

	cmd := exec.CommandContext(ctx, p.path, args...)
	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe execution failed for %s: %w\nFFprobe Error: %s", inputFile, err, stderr.String())
	}
	return parseDuration(out.Bytes())
}

func parseDuration(raw []byte) (float64, error) {
	var probeData ffprobeOutput
	if err := json.Unmarshal(raw, &probeData); err != nil {
		return 0, fmt.Errorf("failed to unmarshal ffprobe output: %w\nFFprobe Output: %s", err, string(raw))
	}
	if probeData.Format.Duration == "" {
		return 0, fmt.Errorf("duration not found in ffprobe output\nFFprobe Output: %s", string(raw))
	}
	duration, err := strconv.ParseFloat(probeData.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration string %q: %w", probeData.Format.Duration, err)
	}
	return duration, nil
}
