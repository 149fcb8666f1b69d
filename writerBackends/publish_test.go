package writerbackends

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidbatch/models"
)

func TestPublishFilesLocal(t *testing.T) {
	src := t.TempDir()
	var paths []string
	for _, name := range []string{"clip.mp4", "anim.mp4"} {
		p := filepath.Join(src, name)
		if err := os.WriteFile(p, []byte("video:"+name), 0644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}

	base := t.TempDir()
	dest := models.Destination{Type: "local", Settings: map[string]string{"baseDir": base, "folder": "batch"}}
	done, err := PublishFiles(context.Background(), dest, paths)
	if err != nil {
		t.Fatalf("PublishFiles failed: %v", err)
	}
	if len(done) != 2 {
		t.Errorf("Expected 2 published files, got %d", len(done))
	}
	data, err := os.ReadFile(filepath.Join(base, "batch", "anim.mp4"))
	if err != nil || string(data) != "video:anim.mp4" {
		t.Errorf("Unexpected mirrored content %q (%v)", data, err)
	}
}

func TestPublishFilesLocalSameFolder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(path, []byte("video:clip"), 0644); err != nil {
		t.Fatal(err)
	}

	dest := models.Destination{Type: "local", Settings: map[string]string{"baseDir": dir}}
	done, err := PublishFiles(context.Background(), dest, []string{path})
	if err != nil || len(done) != 1 {
		t.Fatalf("Publishing onto itself should be a no-op, got %v (%v)", done, err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "video:clip" {
		t.Errorf("Source was damaged: %q (%v)", data, err)
	}
}

func TestPublishFilesStopsOnMissingFile(t *testing.T) {
	dest := models.Destination{Type: "local", Settings: map[string]string{"baseDir": t.TempDir()}}
	done, err := PublishFiles(context.Background(), dest, []string{filepath.Join(t.TempDir(), "missing.mp4")})
	if err == nil {
		t.Fatal("Expected error for a missing file")
	}
	if len(done) != 0 {
		t.Errorf("Nothing should be published, got %v", done)
	}
}

func TestPublishUnknownBackend(t *testing.T) {
	err := Publish(context.Background(), models.Destination{Type: "ftp"}, "x.mp4", strings.NewReader(""))
	if err == nil || !strings.Contains(err.Error(), "unknown backend type") {
		t.Errorf("Expected unknown backend error, got %v", err)
	}
}

func TestObjectKey(t *testing.T) {
	if got := objectKey(map[string]string{"prefix": "videos/2024"}, "a.mp4"); got != "videos/2024/a.mp4" {
		t.Errorf("Unexpected key %s", got)
	}
	if got := objectKey(map[string]string{}, "a.mp4"); got != "a.mp4" {
		t.Errorf("Unexpected key %s", got)
	}
}

func TestSFTPSettingsValidation(t *testing.T) {
	if _, err := sftpAuth(map[string]string{}); err == nil {
		t.Error("Expected missing auth to fail")
	}
	auths, err := sftpAuth(map[string]string{"password": "secret"})
	if err != nil || len(auths) != 1 {
		t.Errorf("Expected password auth, got %v (%v)", auths, err)
	}
	if _, err := sftpHostKey(map[string]string{"hostKey": "not a key"}); err == nil {
		t.Error("Expected malformed host key to fail")
	}
	err = uploadToSFTP(context.Background(), map[string]string{"host": "h"}, "a.mp4", strings.NewReader(""))
	if err == nil || !strings.Contains(err.Error(), "missing required settings") {
		t.Errorf("Expected settings error, got %v", err)
	}
}
