package encoder

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"vidbatch/logger"
	"vidbatch/models"
)

// framePattern names extracted stills; the zero padding keeps lexicographic
// order equal to temporal order.
const framePattern = "frame_%03d" + models.FrameExt

// FrameName returns the still-image file name of frame index i.
func FrameName(i int) string {
	return fmt.Sprintf(framePattern, i)
}

// CountFrames asks ImageMagick how many frames input holds.
func CountFrames(ctx context.Context, input string) (int, error) {
	out, err := runTool(ctx, currentTools().Magick, []string{"identify", "-format", `%n\n`, input}, nil)
	if err != nil {
		return 0, fmt.Errorf("identify %s: %w", input, err)
	}
	return parseFrameCount(out)
}

// parseFrameCount reads the first %n value; identify repeats it per frame.
func parseFrameCount(out []byte) (int, error) {
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			return 0, fmt.Errorf("unexpected frame count %q: %w", line, err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("identify returned no frame count")
}

// ExtractFrames writes every frame of an animated image to workDir as
// frame_000.png, frame_001.png, ... and returns how many were written.
// Single-frame or still images are a no-op returning 0.
func ExtractFrames(ctx context.Context, input, workDir string) (int, error) {
	n, err := CountFrames(ctx, input)
	if err != nil {
		return 0, err
	}
	if n <= 1 {
		logger.Debugf("%s is not animated, no frames extracted", input)
		return 0, nil
	}

	// -coalesce renders each frame onto the full canvas so every still stands alone
	args := []string{input, "-coalesce", "+adjoin", filepath.Join(workDir, framePattern)}
	if _, err := runTool(ctx, currentTools().Magick, args, nil); err != nil {
		return 0, fmt.Errorf("extract frames from %s: %w", input, err)
	}

	frames, err := ListFrames(workDir)
	if err != nil {
		return 0, err
	}
	logger.Debugf("extracted %d of %d frames from %s", len(frames), n, input)
	return len(frames), nil
}

// ListFrames returns the still images in dir sorted lexicographically.
func ListFrames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame folder %s: %w", dir, err)
	}
	var frames []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), models.FrameExt) {
			continue
		}
		frames = append(frames, e.Name())
	}
	sort.Strings(frames)
	return frames, nil
}
