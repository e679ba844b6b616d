// Package source turns configured model sources into files on disk.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ekisa-team/fairjudge/internal/config"
	"github.com/ekisa-team/fairjudge/internal/xfs"
)

// Error definitions for the source package.
var (
	ErrInvalidSource     = errors.New("invalid model source")
	ErrUnsupportedSource = errors.New("unsupported model source")
	ErrUnknownModel      = errors.New("unknown model")
)

// defaultGGUFInclude selects a single quantization from a GGUF repository.
var defaultGGUFInclude = []string{"*q4_k_m.gguf", "*Q4_K_M.gguf"}

// Downloader fetches a model source into a target directory.
type Downloader interface {
	Download(ctx context.Context, src config.ModelSource, targetDir string) (path string, cached bool, err error)
}

// LocalDownloader serves models that are already on disk.
type LocalDownloader struct{}

// Download returns the local path after checking that it exists.
func (LocalDownloader) Download(_ context.Context, src config.ModelSource, _ string) (string, bool, error) {
	local, ok := src.(config.LocalSource)
	if !ok {
		return "", false, fmt.Errorf("%w: %T", ErrInvalidSource, src)
	}

	path := xfs.ExpandTilde(local.Path)
	if _, err := os.Stat(path); err != nil {
		return "", false, fmt.Errorf("local model: %w", err)
	}

	return path, true, nil
}

// Fetcher picks a Downloader per source type.
type Fetcher struct {
	downloaders map[config.SourceType]Downloader
}

// NewFetcher creates a Fetcher with the Hugging Face and local downloaders.
func NewFetcher(hf Downloader) *Fetcher {
	if hf == nil {
		hf = NewHuggingFaceDownloader(nil)
	}

	return &Fetcher{
		downloaders: map[config.SourceType]Downloader{
			config.SourceTypeHuggingFace: hf,
			config.SourceTypeLocal:       LocalDownloader{},
		},
	}
}

// GetDownloader returns the downloader for a source type.
func (f *Fetcher) GetDownloader(t config.SourceType) (Downloader, error) {
	d, ok := f.downloaders[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, t)
	}
	return d, nil
}

// Fetch resolves name to a model source and downloads it into modelsDir.
//
// name is looked up, in order, as a configured model ID, an existing file
// path, and a Hugging Face repository ("owner/repo").
func (f *Fetcher) Fetch(ctx context.Context, name string, models map[string]config.ModelConfig, modelsDir string) (string, error) {
	src, err := Resolve(name, models)
	if err != nil {
		return "", err
	}

	d, err := f.GetDownloader(src.Type())
	if err != nil {
		return "", err
	}

	modelsDir = xfs.ExpandTilde(modelsDir)
	if src.Type() != config.SourceTypeLocal {
		if err := EnsureModelsDirectory(modelsDir); err != nil {
			return "", err
		}
	}

	path, _, err := d.Download(ctx, src, modelsDir)
	if err != nil {
		return "", err
	}

	return path, nil
}

// Resolve maps a model name to its source.
func Resolve(name string, models map[string]config.ModelConfig) (config.ModelSource, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrUnknownModel)
	}

	if mc, ok := models[name]; ok {
		return mc.GetSource()
	}

	if xfs.FileExists(xfs.ExpandTilde(name)) {
		return config.LocalSource{Path: name}, nil
	}

	if owner, repo, ok := strings.Cut(name, "/"); ok && owner != "" && repo != "" && !strings.Contains(repo, "/") {
		return config.HuggingFaceSource{Repo: name, Include: defaultGGUFInclude}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownModel, name)
}

// EnsureModelsDirectory creates the models directory if needed.
func EnsureModelsDirectory(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty models directory", ErrInvalidSource)
	}
	if err := os.MkdirAll(xfs.ExpandTilde(path), 0o755); err != nil {
		return fmt.Errorf("failed to create models directory %s: %w", path, err)
	}
	return nil
}
