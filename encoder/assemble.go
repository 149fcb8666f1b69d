package encoder

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"vidbatch/logger"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// FourCC is the codec tag written by the frame route (MPEG-4 part 2).
const FourCC = "mp4v"

// assembleArgs reads raw rgb24 frames of size w×h from stdin.
func assembleArgs(output string, w, h, fps int) []string {
	return ffmpeg.Input("pipe:", ffmpeg.KwArgs{
		"format":    "rawvideo",
		"pix_fmt":   "rgb24",
		"s":         fmt.Sprintf("%dx%d", w, h),
		"framerate": fps,
	}).
		Output(output, ffmpeg.KwArgs{
			"c:v":   "mpeg4",
			"tag:v": FourCC,
		}).
		OverWriteOutput().
		GetArgs()
}

// AssembleFrames encodes the still images in workDir, in lexicographic order,
// into output at fps. The first frame fixes the resolution. No frames means no
// output and no error. It returns the number of frames written.
func AssembleFrames(ctx context.Context, workDir, output string, fps int) (int, error) {
	frames, err := ListFrames(workDir)
	if err != nil {
		return 0, err
	}
	if len(frames) == 0 {
		return 0, nil
	}

	first, err := decodeFrame(filepath.Join(workDir, frames[0]))
	if err != nil {
		return 0, err
	}
	size := first.Bounds().Size()

	ff := currentTools().FFmpeg
	cmd := exec.CommandContext(ctx, ff, assembleArgs(output, size.X, size.Y, fps)...)
	stderr := newTailBuffer(stderrTailSize)
	cmd.Stderr = stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return 0, fmt.Errorf("failed to open encoder input: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return 0, toolError(ff, err, stderr)
	}

	written, writeErr := writeFrames(stdin, workDir, frames, first)
	stdin.Close()
	if err := cmd.Wait(); err != nil {
		return written, fmt.Errorf("assemble %s: %w", output, toolError(ff, err, stderr))
	}
	if writeErr != nil {
		return written, fmt.Errorf("assemble %s: %w", output, writeErr)
	}

	logger.Debugf("wrote %d frames (%dx%d @ %d fps) to %s", written, size.X, size.Y, fps, output)
	return written, nil
}

func writeFrames(w io.Writer, dir string, frames []string, first image.Image) (int, error) {
	bw := bufio.NewWriter(w)
	size := first.Bounds().Size()
	buf := make([]byte, size.X*size.Y*3)

	for i, name := range frames {
		img := first
		if i > 0 {
			var err error
			if img, err = decodeFrame(filepath.Join(dir, name)); err != nil {
				return i, err
			}
		}
		if got := img.Bounds().Size(); got != size {
			return i, fmt.Errorf("frame %s is %dx%d, expected %dx%d", name, got.X, got.Y, size.X, size.Y)
		}
		packRGB(buf, img)
		if _, err := bw.Write(buf); err != nil {
			return i, fmt.Errorf("failed to write frame %s: %w", name, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return len(frames), fmt.Errorf("failed to flush frames: %w", err)
	}
	return len(frames), nil
}

func decodeFrame(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode frame %s: %w", path, err)
	}
	return img, nil
}

// packRGB flattens img into buf as tightly packed rgb24. Alpha is dropped and
// the stored colour values are kept, not premultiplied.
func packRGB(buf []byte, img image.Image) {
	b := img.Bounds()
	i := 0
	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := nrgba.Pix[nrgba.PixOffset(b.Min.X, y):]
			for x := 0; x < b.Dx(); x++ {
				copy(buf[i:i+3], row[x*4:x*4+3])
				i += 3
			}
		}
		return
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			buf[i] = c.R
			buf[i+1] = c.G
			buf[i+2] = c.B
			i += 3
		}
	}
}
