package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ekisa-team/fairjudge/internal/config"
)

const (
	defaultRetryDelay = 2 * time.Second
	defaultMaxRetries = 3
	defaultTimeout    = 30 * time.Minute
	markerFilename    = ".fairjudge-downloaded"
)

// RunFunc runs a command and returns its combined output.
type RunFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// HuggingFaceDownloader downloads a model repository with the hf CLI.
type HuggingFaceDownloader struct {
	run        RunFunc
	retryDelay time.Duration
}

// NewHuggingFaceDownloader creates a downloader. A nil run uses os/exec.
func NewHuggingFaceDownloader(run RunFunc) *HuggingFaceDownloader {
	if run == nil {
		run = execRun
	}
	return &HuggingFaceDownloader{run: run, retryDelay: defaultRetryDelay}
}

// Download downloads a Hugging Face repository into targetDir and returns the
// repository directory. cached is true when an up-to-date copy was found.
func (d *HuggingFaceDownloader) Download(ctx context.Context, src config.ModelSource, targetDir string) (string, bool, error) {
	hfSource, ok := src.(config.HuggingFaceSource)
	if !ok {
		return "", false, fmt.Errorf("%w: %T", ErrInvalidSource, src)
	}

	repo := strings.TrimSpace(hfSource.Repo)
	if repo == "" || strings.Contains(repo, "..") {
		return "", false, fmt.Errorf("%w: invalid repo name %q", ErrInvalidSource, repo)
	}

	fullPath := filepath.Join(targetDir, repo)
	markerPath := filepath.Join(fullPath, markerFilename)
	markerContent := d.markerContent(hfSource)

	if !hfSource.ForceDownload && !d.shouldRedownload(markerPath, markerContent) {
		slog.Info("Model already downloaded and up-to-date, skipping", "repo", repo, "path", fullPath)
		return fullPath, true, nil
	}

	if err := os.MkdirAll(fullPath, 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create directory: %w", err)
	}

	args := d.buildArgs(hfSource, fullPath)

	var lastErr error
	for attempt := range defaultMaxRetries {
		if attempt > 0 {
			slog.Info("Retrying download", "repo", repo, "attempt", attempt+1, "last_error", lastErr)
			select {
			case <-ctx.Done():
				return "", false, fmt.Errorf("download canceled: %w", ctx.Err())
			case <-time.After(d.retryDelay):
			}
		} else {
			slog.Info("Downloading model", "repo", repo, "path", fullPath)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
		output, err := d.run(attemptCtx, "hf", args...)
		cancel()

		if err == nil {
			if err := os.WriteFile(markerPath, []byte(markerContent), 0o644); err != nil {
				slog.Warn("Failed to write download marker", "path", markerPath, "error", err)
			}

			slog.Info("Model downloaded successfully", "repo", repo, "path", fullPath, "attempt", attempt+1)
			return fullPath, false, nil
		}

		lastErr = fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
		slog.Error("Failed to download model", "repo", repo, "attempt", attempt+1, "error", lastErr)

		if errors.Is(ctx.Err(), context.Canceled) {
			return "", false, fmt.Errorf("download canceled: %w", ctx.Err())
		}
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			slog.Warn("Download timed out", "repo", repo, "attempt", attempt+1)
		}
	}

	return "", false, fmt.Errorf("download %s: %w", repo, lastErr)
}

func (d *HuggingFaceDownloader) buildArgs(src config.HuggingFaceSource, dir string) []string {
	args := []string{"download", src.Repo, "--local-dir", dir}

	if src.Revision != "" {
		args = append(args, "--revision", src.Revision)
	}
	if src.RepoType != "" {
		args = append(args, "--repo-type", src.RepoType)
	}
	for _, inc := range src.Include {
		args = append(args, "--include", inc)
	}
	for _, exc := range src.Exclude {
		args = append(args, "--exclude", exc)
	}
	if src.ForceDownload {
		args = append(args, "--force-download")
	}
	if src.Token != "" {
		args = append(args, "--token", src.Token)
	}
	if src.MaxWorkers > 0 {
		args = append(args, "--max-workers", fmt.Sprintf("%d", src.MaxWorkers))
	}

	return args
}

// markerContent identifies a download so config changes trigger a new one.
func (d *HuggingFaceDownloader) markerContent(src config.HuggingFaceSource) string {
	return fmt.Sprintf("repo: %s\nrevision: %s\ninclude: %s\n", src.Repo, src.Revision, strings.Join(src.Include, ","))
}

// shouldRedownload compares the marker on disk with the expected content.
func (d *HuggingFaceDownloader) shouldRedownload(markerPath, expectedContent string) bool {
	content, err := os.ReadFile(markerPath)
	if err != nil {
		return true
	}

	if string(content) != expectedContent {
		slog.Info("Model config changed, will redownload", "marker_path", markerPath)
		return true
	}

	return false
}
