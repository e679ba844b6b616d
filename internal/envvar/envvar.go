// Package envvar names the environment variables read by fairjudge.
package envvar

const (
	// FairjudgeEnv selects the runtime environment (development or production).
	FairjudgeEnv = "FAIRJUDGE_ENV"

	// FairjudgeConfig is the path of the YAML config file.
	FairjudgeConfig = "FAIRJUDGE_CONFIG"

	// FairjudgeHTTPPort overrides the HTTP port.
	FairjudgeHTTPPort = "FAIRJUDGE_HTTP_PORT"

	// FairjudgeGRPCPort overrides the gRPC port.
	FairjudgeGRPCPort = "FAIRJUDGE_GRPC_PORT"

	// FairjudgeModelsPath overrides the directory where in-process models are stored.
	FairjudgeModelsPath = "FAIRJUDGE_MODELS_PATH"

	// FairjudgeLocalServerURL overrides the base URL of the local model server.
	FairjudgeLocalServerURL = "FAIRJUDGE_LOCAL_SERVER_URL"

	// FairjudgeLlamaServerBin overrides the llama-server binary used by the in-process backend.
	FairjudgeLlamaServerBin = "FAIRJUDGE_LLAMA_SERVER_BIN"

	// FairjudgeLogFile enables file logging to the given path.
	FairjudgeLogFile = "FAIRJUDGE_LOG_FILE"
)
