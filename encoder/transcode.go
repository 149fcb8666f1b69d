package encoder

import (
	"context"
	"fmt"

	"vidbatch/logger"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// TranscodeFrameRate is the fixed output rate of the direct-transcode route.
// It does not follow the operator's rate; only the frame route does.
const TranscodeFrameRate = 30

// transcodeArgs is the fixed ffmpeg template; only the paths vary.
func transcodeArgs(input, output string) []string {
	return ffmpeg.Input(input).
		Output(output, ffmpeg.KwArgs{
			"vf":     fmt.Sprintf("fps=%d", TranscodeFrameRate),
			"c:v":    "libx264",
			"crf":    23,
			"preset": "medium",
		}).
		OverWriteOutput().
		GetArgs()
}

// Transcode re-encodes input into an H.264 MP4 at output. Any non-zero exit
// of ffmpeg is returned as a *ToolError; a partial output is left in place.
func Transcode(ctx context.Context, input, output string) error {
	ff := currentTools().FFmpeg
	args := transcodeArgs(input, output)
	logger.Debugf("transcoding %s -> %s", input, output)

	if _, err := runTool(ctx, ff, args, nil); err != nil {
		return fmt.Errorf("transcode %s: %w", input, err)
	}
	return nil
}
