package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"quiztube/internal/config"
	"quiztube/internal/domain"
	"quiztube/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// audioSubdir is the staging subdirectory under the media root.
const audioSubdir = "audio"

// runCommandFunc executes an external command and returns its combined output.
type runCommandFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// YtDlpDownloader implements domain.MediaDownloader by shelling out to
// yt-dlp, which downloads bestaudio and re-encodes it to mp3 via ffmpeg.
// The output file is named after the platform's own video id, so re-fetching
// the same video overwrites the same file. Concurrent downloads of the same
// video id are collapsed into a single yt-dlp run via singleflight.
type YtDlpDownloader struct {
	binPath string
	outDir  string
	logger  *zap.Logger
	group   singleflight.Group
	run     runCommandFunc
}

// NewYtDlpDownloader creates the staging directory if absent and returns a
// downloader writing into <root>/audio.
func NewYtDlpDownloader(mediaCfg config.MediaConfig, logger *zap.Logger) (*YtDlpDownloader, error) {
	outDir := filepath.Join(mediaCfg.Root, audioSubdir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot prepare media directory %s: %w", outDir, err)
	}

	binPath := mediaCfg.YtDlpPath
	if binPath == "" {
		binPath = "yt-dlp"
	}

	return &YtDlpDownloader{
		binPath: binPath,
		outDir:  outDir,
		logger:  logger,
		run:     runCommand,
	}, nil
}

// Download implements domain.MediaDownloader.
func (d *YtDlpDownloader) Download(ctx context.Context, url string) (string, error) {
	videoID, err := util.ExtractVideoID(url)
	if err != nil {
		return "", err
	}

	// Two invocations for the same video would race on the same output
	// path; the singleflight key makes them share one download instead.
	v, err, shared := d.group.Do(videoID, func() (interface{}, error) {
		return d.download(ctx, videoID, url)
	})
	if err != nil {
		return "", err
	}
	if shared {
		d.logger.Debug("Shared in-flight download", zap.String("videoID", videoID))
	}
	return v.(string), nil
}

func (d *YtDlpDownloader) download(ctx context.Context, videoID, url string) (string, error) {
	args := []string{
		"--format", "bestaudio/best",
		"--extract-audio",
		"--audio-format", "mp3",
		"--output", filepath.Join(d.outDir, "%(id)s.%(ext)s"),
		"--no-progress",
		"--quiet",
		url,
	}

	d.logger.Info("Downloading audio",
		zap.String("videoID", videoID),
		zap.String("outDir", d.outDir))

	output, err := d.run(ctx, d.binPath, args...)
	if err != nil {
		if isPostProcessingFailure(output) {
			d.logger.Error("Audio post-processing failed",
				zap.String("videoID", videoID),
				zap.ByteString("output", output),
				zap.Error(err))
			return "", domain.NewPostProcessingFailedError(err)
		}
		d.logger.Error("Audio download failed",
			zap.String("videoID", videoID),
			zap.ByteString("output", output),
			zap.Error(err))
		return "", domain.NewFetchFailedError(err)
	}

	audioPath, err := filepath.Abs(filepath.Join(d.outDir, videoID+".mp3"))
	if err != nil {
		return "", domain.NewFetchFailedError(err)
	}
	if _, err := os.Stat(audioPath); err != nil {
		// yt-dlp exited cleanly but the expected mp3 is not there; the
		// converter stage is the usual culprit.
		return "", domain.NewPostProcessingFailedError(fmt.Errorf("expected audio file missing: %w", err))
	}

	return audioPath, nil
}

// isPostProcessingFailure distinguishes the ffmpeg/conversion failure domain
// from plain download failures by inspecting the tool's output.
func isPostProcessingFailure(output []byte) bool {
	s := strings.ToLower(string(output))
	return strings.Contains(s, "ffmpeg") || strings.Contains(s, "ffprobe") || strings.Contains(s, "postprocess")
}

var _ domain.MediaDownloader = (*YtDlpDownloader)(nil)
