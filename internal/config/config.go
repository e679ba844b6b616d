package config

import (
	"errors"
	"time"
)

// SourceType represents the type of model source.
type SourceType string

const (
	// SourceTypeHuggingFace represents a Hugging Face model repository source.
	SourceTypeHuggingFace SourceType = "huggingface"

	// SourceTypeLocal represents a model file already present on disk.
	SourceTypeLocal SourceType = "local"
)

// Config holds the main configuration for the application.
type Config struct {
	Version  string         `json:"version"           yaml:"version"`
	Server   ServerConfig   `json:"server"            yaml:"server"`
	Storage  StorageConfig  `json:"storage,omitempty" yaml:"storage,omitempty"`
	Logging  LoggingConfig  `json:"logging,omitempty" yaml:"logging,omitempty"`
	Backends BackendsConfig `json:"backends"          yaml:"backends"`
	Judge    JudgeConfig    `json:"judge"             yaml:"judge"`
}

// ServerConfig holds the listener configuration.
type ServerConfig struct {
	Host     string `json:"host"      yaml:"host"`
	HTTPPort int    `json:"http_port" yaml:"http_port"`
	GRPCPort int    `json:"grpc_port" yaml:"grpc_port"`
}

// StorageConfig holds configuration for downloaded models.
type StorageConfig struct {
	ModelsDir string `json:"models_dir,omitempty" yaml:"models_dir,omitempty"`
}

// LoggingConfig holds file logging configuration.
type LoggingConfig struct {
	File   string `json:"file,omitempty"    yaml:"file,omitempty"`
	ToFile bool   `json:"to_file,omitempty" yaml:"to_file,omitempty"`
}

// BackendsConfig holds configuration for every backend kind.
type BackendsConfig struct {
	LocalServer LocalServerConfig `json:"local_server" yaml:"local_server"`
	InProcess   InProcessConfig   `json:"in_process"   yaml:"in_process"`
}

// LocalServerConfig configures the local model server backend.
type LocalServerConfig struct {
	BaseURL         string   `json:"base_url"                   yaml:"base_url"`
	APIKey          string   `json:"api_key,omitempty"          yaml:"api_key,omitempty"`
	DefaultModel    string   `json:"default_model"              yaml:"default_model"`
	SuggestedModels []string `json:"suggested_models,omitempty" yaml:"suggested_models,omitempty"`
	Concurrency     int      `json:"concurrency,omitempty"      yaml:"concurrency,omitempty"`
}

// InProcessConfig configures the backend that loads a model into a
// dedicated llama-server process.
type InProcessConfig struct {
	Models       map[string]ModelConfig `json:"models,omitempty"     yaml:"models,omitempty"`
	Parameters   map[string]any         `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	BinPath      string                 `json:"bin_path"             yaml:"bin_path"`
	DefaultModel string                 `json:"default_model"        yaml:"default_model"`
	Host         string                 `json:"host"                 yaml:"host"`
	Port         int                    `json:"port"                 yaml:"port"`
	ReadyTimeout time.Duration          `json:"ready_timeout"        yaml:"ready_timeout"`
	Parallel     int                    `json:"parallel,omitempty"   yaml:"parallel,omitempty"`
	ContextSize  int                    `json:"ctx_size,omitempty"   yaml:"ctx_size,omitempty"`
	GPULayers    int                    `json:"gpu_layers,omitempty" yaml:"gpu_layers,omitempty"`
}

// JudgeConfig configures the bias judgment pipeline.
type JudgeConfig struct {
	Parameters  map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	CallTimeout time.Duration  `json:"call_timeout"         yaml:"call_timeout"`
}

// ModelConfig holds configuration for a named in-process model.
type ModelConfig struct {
	Source SourceConfig `json:"source" yaml:"source"`
	Tags   []string     `json:"tags"   yaml:"tags"`
}

// SourceConfig wraps optional sources (only one should be set).
type SourceConfig struct {
	HuggingFace *HuggingFaceSource `json:"huggingface,omitempty" yaml:"huggingface,omitempty"`
	Local       *LocalSource       `json:"local,omitempty"       yaml:"local,omitempty"`
}

// -------------------------
// Source definitions
// -------------------------

// ModelSource represents a source for a model.
type ModelSource interface {
	Type() SourceType
}

// HuggingFaceSource represents a Hugging Face model repository source.
type HuggingFaceSource struct {
	Repo          string   `json:"repo"                     yaml:"repo"`
	Revision      string   `json:"revision,omitempty"       yaml:"revision,omitempty"`
	RepoType      string   `json:"repo_type,omitempty"      yaml:"repo_type,omitempty"`
	Token         string   `json:"token,omitempty"          yaml:"token,omitempty"`
	Include       []string `json:"include,omitempty"        yaml:"include,omitempty"`
	Exclude       []string `json:"exclude,omitempty"        yaml:"exclude,omitempty"`
	MaxWorkers    int      `json:"max_workers,omitempty"    yaml:"max_workers,omitempty"`
	ForceDownload bool     `json:"force_download,omitempty" yaml:"force_download,omitempty"`
}

// Type returns the Hugging Face source type.
func (h HuggingFaceSource) Type() SourceType {
	return SourceTypeHuggingFace
}

// LocalSource is a model file on disk.
type LocalSource struct {
	Path string `json:"path" yaml:"path"`
}

// Type returns the local source type.
func (l LocalSource) Type() SourceType {
	return SourceTypeLocal
}

// GetSource returns the active source for the model.
func (m *ModelConfig) GetSource() (ModelSource, error) {
	switch {
	case m.Source.HuggingFace != nil:
		return *m.Source.HuggingFace, nil
	case m.Source.Local != nil:
		return *m.Source.Local, nil
	}

	return nil, errors.New("no source configured for model")
}

// SetHuggingFaceSource sets the Hugging Face source.
func (m *ModelConfig) SetHuggingFaceSource(source HuggingFaceSource) {
	m.Source.HuggingFace = &source
	m.Source.Local = nil
}

// SetLocalSource sets the local source.
func (m *ModelConfig) SetLocalSource(source LocalSource) {
	m.Source.Local = &source
	m.Source.HuggingFace = nil
}
