package config

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/sethvargo/go-envconfig"
	"go.yaml.in/yaml/v3"
)

//go:embed schema.json
var schemaJSON string

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("fairjudge.v1.schema.json", schemaJSON)
})

// Load returns the defaults overlaid with the file at path (if non-empty) and
// environment overrides.
func Load(ctx context.Context, path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		cfg, err = LoadAndValidate(path)
		if err != nil {
			return nil, err
		}
	}

	if err := ApplyEnv(ctx, cfg, envconfig.OsLookuper()); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadAndValidate loads and validates the configuration file at path on top
// of the defaults.
func LoadAndValidate(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return Parse(data)
}

// Parse validates YAML data against the schema and decodes it on top of the
// defaults.
func Parse(data []byte) (*Config, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	// The validator expects JSON values, so normalize YAML scalars first.
	normalized, err := toJSONValue(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize config: %w", err)
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	if err := schema.Validate(normalized); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal into Config struct: %w", err)
	}

	return cfg, nil
}

func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// envOverrides lists the settings that can be overridden from the environment.
type envOverrides struct {
	HTTPPort        int    `env:"FAIRJUDGE_HTTP_PORT"`
	GRPCPort        int    `env:"FAIRJUDGE_GRPC_PORT"`
	ModelsPath      string `env:"FAIRJUDGE_MODELS_PATH"`
	LocalServerURL  string `env:"FAIRJUDGE_LOCAL_SERVER_URL"`
	LlamaServerBin  string `env:"FAIRJUDGE_LLAMA_SERVER_BIN"`
	LogFile         string `env:"FAIRJUDGE_LOG_FILE"`
	LocalModel      string `env:"FAIRJUDGE_LOCAL_SERVER_MODEL"`
	InProcessModel  string `env:"FAIRJUDGE_IN_PROCESS_MODEL"`
	CallTimeoutSecs int    `env:"FAIRJUDGE_CALL_TIMEOUT_SECONDS"`
}

// ApplyEnv overrides cfg with the environment variables found by lookuper.
func ApplyEnv(ctx context.Context, cfg *Config, lookuper envconfig.Lookuper) error {
	var o envOverrides
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &o,
		Lookuper: lookuper,
	}); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	if o.HTTPPort != 0 {
		cfg.Server.HTTPPort = o.HTTPPort
	}
	if o.GRPCPort != 0 {
		cfg.Server.GRPCPort = o.GRPCPort
	}
	if o.ModelsPath != "" {
		cfg.Storage.ModelsDir = o.ModelsPath
	}
	if o.LocalServerURL != "" {
		cfg.Backends.LocalServer.BaseURL = o.LocalServerURL
	}
	if o.LlamaServerBin != "" {
		cfg.Backends.InProcess.BinPath = o.LlamaServerBin
	}
	if o.LogFile != "" {
		cfg.Logging.File = o.LogFile
		cfg.Logging.ToFile = true
	}
	if o.LocalModel != "" {
		cfg.Backends.LocalServer.DefaultModel = o.LocalModel
	}
	if o.InProcessModel != "" {
		cfg.Backends.InProcess.DefaultModel = o.InProcessModel
	}
	if o.CallTimeoutSecs > 0 {
		cfg.Judge.CallTimeout = time.Duration(o.CallTimeoutSecs) * time.Second
	}

	return nil
}
