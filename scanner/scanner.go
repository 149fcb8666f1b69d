package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"vidbatch/logger"
	"vidbatch/models"
)

var (
	// ErrMissingDirectories means the input or output directory was not chosen.
	ErrMissingDirectories = errors.New("please select both input and output folders")
	// ErrNoMatchingFiles means the input directory holds no recognized file.
	ErrNoMatchingFiles = errors.New("no supported video files found in the input folder")
)

// IsWarning reports whether err is a configuration condition that should be
// shown to the operator as a warning rather than a failure.
func IsWarning(err error) bool {
	return errors.Is(err, ErrMissingDirectories) || errors.Is(err, ErrNoMatchingFiles)
}

// Scan lists the recognized files directly inside inputDir, in name order.
// Sub-directories are never entered.
func Scan(inputDir, outputDir string) ([]models.SourceFile, error) {
	if inputDir == "" || outputDir == "" {
		return nil, ErrMissingDirectories
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input folder %s: %w", inputDir, err)
	}

	var sources []models.SourceFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		kind, ok := models.ClassifyName(entry.Name())
		if !ok {
			logger.Debugf("skipping unsupported file %s", entry.Name())
			continue
		}
		sources = append(sources, models.SourceFile{
			Path: filepath.Join(inputDir, entry.Name()),
			Name: entry.Name(),
			Kind: kind,
		})
	}

	if len(sources) == 0 {
		return nil, ErrNoMatchingFiles
	}
	return sources, nil
}

// OutputPath is the destination of src: same base name, .mp4, in outputDir.
func OutputPath(outputDir string, src models.SourceFile) string {
	return filepath.Join(outputDir, src.BaseName()+models.OutputExt)
}
