package encoder

import (
	"context"
	"os/exec"
	"sync"

	"vidbatch/logger"
	"vidbatch/models"
)

// EncodeFunc converts one source file into output
type EncodeFunc func(ctx context.Context, input, output string, opts EncodeOptions) (Result, error)

type EncodeOptions struct {
	FrameRate int    // honored by the frame route only
	WorkDir   string // scratch directory owned by the caller
}

// Result describes what an EncodeFunc produced
type Result struct {
	Frames  int  // frames staged by the frame route
	Written bool // whether output was created
}

// Tools holds the resolved locations of the external encoders.
type Tools struct {
	FFmpeg string
	Magick string
}

var (
	// Registry maps source kind → conversion strategy
	Registry = map[models.SourceKind]EncodeFunc{}

	toolsMu sync.RWMutex
	tools   = Tools{FFmpeg: "ffmpeg", Magick: "magick"}
)

func currentTools() Tools {
	toolsMu.RLock()
	defer toolsMu.RUnlock()
	return tools
}

// SetTools replaces the encoder locations without touching the registry.
func SetTools(t Tools) {
	toolsMu.Lock()
	defer toolsMu.Unlock()
	tools = t
}

// Register adds fn for kind if every command it needs resolves, logs status
func Register(kind models.SourceKind, fn EncodeFunc, cmds ...string) bool {
	for _, cmd := range cmds {
		if _, err := exec.LookPath(cmd); err != nil {
			logger.Warnf("encoder [%s] skipped: command '%s' not found", kind, cmd)
			delete(Registry, kind)
			return false
		}
	}
	Registry[kind] = fn
	logger.Debugf("encoder [%s] registered (commands: %v)", kind, cmds)
	return true
}

// Get looks up the strategy for a source kind
func Get(kind models.SourceKind) (EncodeFunc, bool) {
	fn, ok := Registry[kind]
	return fn, ok
}

// RegisterDefaults installs both strategies against the given tool paths.
func RegisterDefaults(t Tools) {
	SetTools(t)
	Registry = map[models.SourceKind]EncodeFunc{}
	Register(models.KindVideo, EncodeVideo, t.FFmpeg)
	Register(models.KindAnimatedImage, EncodeAnimated, t.Magick, t.FFmpeg)
}

// EncodeVideo is the direct-transcode route.
func EncodeVideo(ctx context.Context, input, output string, _ EncodeOptions) (Result, error) {
	if err := Transcode(ctx, input, output); err != nil {
		return Result{}, err
	}
	return Result{Written: true}, nil
}

// EncodeAnimated stages the frames of an animated image in opts.WorkDir and
// reassembles them at opts.FrameRate. A still image produces nothing.
func EncodeAnimated(ctx context.Context, input, output string, opts EncodeOptions) (Result, error) {
	frames, err := ExtractFrames(ctx, input, opts.WorkDir)
	if err != nil {
		return Result{}, err
	}
	written, err := AssembleFrames(ctx, opts.WorkDir, output, opts.FrameRate)
	if err != nil {
		return Result{Frames: frames}, err
	}
	return Result{Frames: frames, Written: written > 0}, nil
}
