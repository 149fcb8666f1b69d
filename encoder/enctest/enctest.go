// Package enctest builds stand-in encoder executables for tests. The fakes
// are POSIX shell scripts, so callers should skip on Windows.
package enctest

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// SkipUnlessPOSIX skips tests that rely on shell-script tools.
func SkipUnlessPOSIX(t testing.TB) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake encoders are shell scripts")
	}
}

// lastPath sets $out to the last argument that is not -y.
const lastPath = `out=""
for a in "$@"; do
	if [ "$a" != "-y" ]; then out="$a"; fi
done
`

func writeScript(t testing.TB, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatalf("failed to write fake %s: %v", name, err)
	}
	return path
}

// FFmpeg is a fake ffmpeg. Every call appends its output path to CallLog;
// stdin is copied into the output file, so a frame-pipe run produces a file
// of exactly frames*w*h*3 bytes and a transcode run an empty file.
type FFmpeg struct {
	Path    string
	CallLog string
	ArgLog  string
}

// NewFFmpeg writes a fake ffmpeg that succeeds.
func NewFFmpeg(t testing.TB) *FFmpeg {
	return newFFmpeg(t, "")
}

// NewFailingFFmpeg writes a fake ffmpeg that logs the call then exits with
// status code after printing a message on stderr.
func NewFailingFFmpeg(t testing.TB, code int) *FFmpeg {
	return newFFmpeg(t, fmt.Sprintf("echo 'Conversion failed!' >&2\nexit %d\n", code))
}

func newFFmpeg(t testing.TB, failure string) *FFmpeg {
	t.Helper()
	dir := t.TempDir()
	f := &FFmpeg{
		CallLog: filepath.Join(dir, "calls.log"),
		ArgLog:  filepath.Join(dir, "args.log"),
	}
	body := lastPath +
		fmt.Sprintf("echo \"$out\" >> %q\n", f.CallLog) +
		fmt.Sprintf("echo \"$*\" >> %q\n", f.ArgLog) +
		failure +
		"cat > \"$out\"\n"
	f.Path = writeScript(t, dir, "ffmpeg", body)
	return f
}

// Calls returns the output paths ffmpeg was asked to write, in order.
func (f *FFmpeg) Calls(t testing.TB) []string {
	t.Helper()
	return readLines(t, f.CallLog)
}

// Args returns the argument line of each call.
func (f *FFmpeg) Args(t testing.TB) []string {
	t.Helper()
	return readLines(t, f.ArgLog)
}

// NewMagick writes a fake ImageMagick whose identify reports frames for
// every input, and whose extraction copies framePNG once per frame to the
// printf pattern given as last argument.
func NewMagick(t testing.TB, frames int, framePNG string) string {
	t.Helper()
	return NewMagickCounts(t, frames, nil, framePNG)
}

// NewMagickCounts is NewMagick with per-file frame counts keyed by base name;
// files not in counts report def frames.
func NewMagickCounts(t testing.TB, def int, counts map[string]int, framePNG string) string {
	t.Helper()
	var cases strings.Builder
	for name, n := range counts {
		fmt.Fprintf(&cases, "\t%q) n=%d;;\n", name, n)
	}
	body := `if [ "$1" = "identify" ]; then src="$4"; else src="$1"; fi
case "$(basename "$src")" in
` + cases.String() + fmt.Sprintf("\t*) n=%d;;\n", def) + `esac
if [ "$1" = "identify" ]; then
	i=0
	while [ $i -lt $n ]; do echo $n; i=$((i+1)); done
	exit 0
fi
` + lastPath + `i=0
while [ $i -lt $n ]; do
	cp ` + fmt.Sprintf("%q", framePNG) + ` "$(printf "$out" $i)"
	i=$((i+1))
done
`
	return writeScript(t, t.TempDir(), "magick", body)
}

// WritePNG writes a solid w×h PNG to path.
func WritePNG(t testing.TB, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 90, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode %s: %v", path, err)
	}
}

func readLines(t testing.TB, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	var lines []string
	start := 0
	for i, b := range data {
		if b == '\n' {
			lines = append(lines, string(data[start:i]))
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, string(data[start:]))
	}
	return lines
}
