package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Default values.
const (
	DefaultHTTPPort          = 8000
	DefaultGRPCPort          = 50051
	DefaultLocalServerURL    = "http://localhost:11434/v1"
	DefaultLocalServerModel  = "llama3.2"
	DefaultInProcessModel    = "qwen2.5-1.5b-instruct"
	DefaultLlamaServerBinary = "llama-server"
	DefaultLlamaServerPort   = 8081
	DefaultCallTimeout       = 2 * time.Minute
	DefaultReadyTimeout      = 5 * time.Minute
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Version: "1",
		Server: ServerConfig{
			Host:     "0.0.0.0",
			HTTPPort: DefaultHTTPPort,
			GRPCPort: DefaultGRPCPort,
		},
		Storage: StorageConfig{
			ModelsDir: DefaultModelsPath(),
		},
		Backends: BackendsConfig{
			LocalServer: LocalServerConfig{
				BaseURL:         DefaultLocalServerURL,
				APIKey:          "ollama",
				DefaultModel:    DefaultLocalServerModel,
				SuggestedModels: []string{"llama3.2", "llama3", "qwen2.5", "phi4"},
				Concurrency:     3,
			},
			InProcess: InProcessConfig{
				BinPath:      DefaultLlamaServerBinary,
				DefaultModel: DefaultInProcessModel,
				Host:         "127.0.0.1",
				Port:         DefaultLlamaServerPort,
				ReadyTimeout: DefaultReadyTimeout,
				Parallel:     1,
				Models: map[string]ModelConfig{
					DefaultInProcessModel: {
						Source: SourceConfig{
							HuggingFace: &HuggingFaceSource{
								Repo:    "Qwen/Qwen2.5-1.5B-Instruct-GGUF",
								Include: []string{"*q4_k_m.gguf"},
							},
						},
						Tags: []string{"multilingual", "instruct"},
					},
				},
			},
		},
		Judge: JudgeConfig{
			CallTimeout: DefaultCallTimeout,
		},
	}
}

// DefaultConfigPath returns the default path for the fairjudge config directory.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "fairjudge", "config")
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "fairjudge")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "fairjudge")
	default: // Linux, BSD, etc.
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "fairjudge")
		}
		return filepath.Join(home, ".config", "fairjudge")
	}
}

// DefaultModelsPath returns the default path for the fairjudge models directory.
func DefaultModelsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "fairjudge", "models")
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Local", "fairjudge", "models")
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "fairjudge", "models")
	default:
		if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
			return filepath.Join(xdg, "fairjudge", "models")
		}
		return filepath.Join(home, ".cache", "fairjudge", "models")
	}
}
