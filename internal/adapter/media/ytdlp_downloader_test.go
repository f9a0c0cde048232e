package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"quiztube/internal/config"
	"quiztube/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDownloader(t *testing.T, run runCommandFunc) *YtDlpDownloader {
	t.Helper()
	d, err := NewYtDlpDownloader(config.MediaConfig{Root: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)
	d.run = run
	return d
}

func domainCode(t *testing.T, err error) domain.ErrorCode {
	t.Helper()
	var de *domain.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %v", err)
	return de.Code
}

func TestDownload_Success(t *testing.T) {
	var d *YtDlpDownloader
	d = newTestDownloader(t, func(ctx context.Context, name string, args ...string) ([]byte, error) {
		// Simulate yt-dlp writing the converted file.
		path := filepath.Join(d.outDir, "dQw4w9WgXcQ.mp3")
		require.NoError(t, os.WriteFile(path, []byte("mp3"), 0o644))
		return nil, nil
	})

	path, err := d.Download(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, "dQw4w9WgXcQ.mp3", filepath.Base(path))
}

func TestDownload_InvalidURL(t *testing.T) {
	called := false
	d := newTestDownloader(t, func(ctx context.Context, name string, args ...string) ([]byte, error) {
		called = true
		return nil, nil
	})

	_, err := d.Download(context.Background(), "not a url")
	assert.Equal(t, domain.ErrInvalidURL, domainCode(t, err))
	assert.False(t, called, "yt-dlp must not run for an invalid URL")
}

func TestDownload_NetworkFailure(t *testing.T) {
	d := newTestDownloader(t, func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("ERROR: [youtube] dQw4w9WgXcQ: Video unavailable"), errors.New("exit status 1")
	})

	_, err := d.Download(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	assert.Equal(t, domain.ErrFetchFailed, domainCode(t, err))
}

func TestDownload_PostProcessingFailure(t *testing.T) {
	d := newTestDownloader(t, func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("ERROR: Postprocessing: ffprobe and ffmpeg not found"), errors.New("exit status 1")
	})

	_, err := d.Download(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	assert.Equal(t, domain.ErrPostProcessingFailed, domainCode(t, err))
}

func TestDownload_MissingOutputFile(t *testing.T) {
	d := newTestDownloader(t, func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, nil // clean exit, but no file written
	})

	_, err := d.Download(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	assert.Equal(t, domain.ErrPostProcessingFailed, domainCode(t, err))
}

func TestNewYtDlpDownloader_CreatesStagingDir(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "media")
	_, err := NewYtDlpDownloader(config.MediaConfig{Root: root}, zap.NewNop())
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(root, "audio"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
