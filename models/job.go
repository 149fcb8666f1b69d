package models

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	MinFrameRate     = 1
	MaxFrameRate     = 120
	DefaultFrameRate = 30

	// OutputExt is the container extension of every produced file.
	OutputExt = ".mp4"
	// FrameExt is the lossless still format used for extracted frames.
	FrameExt = ".png"
)

var ErrInvalidFrameRate = errors.New("frame rate out of range")

// SourceKind selects the conversion strategy for a source file
type SourceKind int

const (
	KindVideo SourceKind = iota
	KindAnimatedImage
)

func (k SourceKind) String() string {
	switch k {
	case KindAnimatedImage:
		return "animated-image"
	case KindVideo:
		return "video"
	default:
		return "unknown"
	}
}

// AnimatedImageSuffix is the one suffix routed through frame extraction.
const AnimatedImageSuffix = ".webp"

// VideoSuffixes are direct-transcoded regardless of which one matched.
var VideoSuffixes = []string{".mp4", ".avi", ".mov", ".mkv"}

// JobParams are the three operator inputs of a batch
type JobParams struct {
	InputDir  string `json:"input_dir"`
	OutputDir string `json:"output_dir"`
	FrameRate int    `json:"frame_rate"`
}

// Validate checks the frame rate bound. Missing directories are reported by
// the scanner as a warning, not here.
func (p JobParams) Validate() error {
	if p.FrameRate < MinFrameRate || p.FrameRate > MaxFrameRate {
		return fmt.Errorf("%w: %d (allowed %d-%d)", ErrInvalidFrameRate, p.FrameRate, MinFrameRate, MaxFrameRate)
	}
	return nil
}

// SourceFile is one recognized entry of the input directory
type SourceFile struct {
	Path string
	Name string
	Kind SourceKind
}

// ClassifyName returns the kind for a file name and whether it is recognized.
// Matching is by exact, case-sensitive suffix.
func ClassifyName(name string) (SourceKind, bool) {
	if strings.HasSuffix(name, AnimatedImageSuffix) {
		return KindAnimatedImage, true
	}
	for _, suffix := range VideoSuffixes {
		if strings.HasSuffix(name, suffix) {
			return KindVideo, true
		}
	}
	return KindVideo, false
}

// BaseName is the source name without its extension.
func (s SourceFile) BaseName() string {
	return strings.TrimSuffix(s.Name, filepath.Ext(s.Name))
}
