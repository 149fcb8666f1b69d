package writerbackends

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"vidbatch/logger"
)

// writeLocal mirrors a video into settings["baseDir"]/settings["folder"].
// When reader is the very file at the destination, nothing is written.
func writeLocal(settings map[string]string, name string, reader io.Reader) error {
	fullDir := filepath.Join(settings["baseDir"], settings["folder"])
	fullPath := filepath.Join(fullDir, name)

	if src, ok := reader.(*os.File); ok && sameFile(src, fullPath) {
		logger.Debugf("'%s' is already at '%s'", name, fullPath)
		return nil
	}

	if err := os.MkdirAll(fullDir, 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", fullPath, err)
	}
	if _, err := io.Copy(file, reader); err != nil {
		file.Close()
		return fmt.Errorf("failed to write to file %s: %w", fullPath, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file %s: %w", fullPath, err)
	}

	logger.Debugf("Saved '%s' to '%s'", name, fullPath)
	return nil
}

func sameFile(src *os.File, path string) bool {
	srcInfo, err := src.Stat()
	if err != nil {
		return false
	}
	dstInfo, err := os.Stat(path)
	if err != nil {
		return false
	}
	return os.SameFile(srcInfo, dstInfo)
}
