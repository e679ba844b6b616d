package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"sync"
	"time"
)

// ServerManager manages backend server processes.
type ServerManager struct {
	servers map[string]*ServerProcess
	client  *http.Client
	mu      sync.Mutex
}

// ServerProcess represents a running server process.
type ServerProcess struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
}

// ServerConfig defines how to start and check a backend server.
type ServerConfig struct {
	Env          map[string]string
	Name         string
	BinPath      string
	Host         string
	HealthPath   string
	Args         []string
	Port         int
	ReadyTimeout time.Duration
}

// NewServerManager initializes a ServerManager.
func NewServerManager() *ServerManager {
	return &ServerManager{
		servers: map[string]*ServerProcess{},
		client:  &http.Client{Timeout: 1 * time.Second},
	}
}

func serverKey(name string, port int) string {
	return fmt.Sprintf("%s-%d", name, port)
}

// StartServer starts a backend server and blocks until its health endpoint
// answers, the ready timeout elapses, or ctx is done.
func (sm *ServerManager) StartServer(ctx context.Context, cfg ServerConfig) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	key := serverKey(cfg.Name, cfg.Port)
	if _, exists := sm.servers[key]; exists {
		return fmt.Errorf("%s server already running on port %d", cfg.Name, cfg.Port)
	}

	binPath, err := exec.LookPath(cfg.BinPath)
	if err != nil {
		return fmt.Errorf("failed to start %s server: %w", cfg.Name, err)
	}

	procCtx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(procCtx, binPath, cfg.Args...)
	cmd.Env = os.Environ()
	for k, v := range cfg.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to start %s server: %w", cfg.Name, err)
	}

	host := cfg.Host
	if host == "" {
		host = "127.0.0.1"
	}

	healthPath := cfg.HealthPath
	if healthPath == "" {
		healthPath = "/health"
	}

	timeout := cfg.ReadyTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	url := fmt.Sprintf("http://%s:%d%s", host, cfg.Port, healthPath)
	if err := sm.waitForServer(ctx, url, timeout); err != nil {
		cancel()
		if err := cmd.Process.Kill(); err != nil {
			slog.Error("Failed to kill server process", "error", err)
		}
		_ = cmd.Wait()
		return fmt.Errorf("%s server did not become ready: %w", cfg.Name, err)
	}

	sm.servers[key] = &ServerProcess{
		cmd:    cmd,
		cancel: cancel,
	}

	slog.Info("Server started", "name", cfg.Name, "port", cfg.Port, "pid", cmd.Process.Pid)
	return nil
}

// StopServer terminates a backend server.
func (sm *ServerManager) StopServer(name string, port int) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	key := serverKey(name, port)
	srv, exists := sm.servers[key]
	if !exists {
		return fmt.Errorf("server %s not found", key)
	}

	sm.stop(srv)
	delete(sm.servers, key)

	slog.Info("Server stopped", "name", name, "port", port)
	return nil
}

// StopAll terminates all running servers.
func (sm *ServerManager) StopAll() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for _, srv := range sm.servers {
		sm.stop(srv)
	}
	sm.servers = map[string]*ServerProcess{}

	slog.Info("All servers stopped")
}

func (sm *ServerManager) stop(srv *ServerProcess) {
	srv.cancel()
	if err := srv.cmd.Process.Kill(); err != nil {
		slog.Debug("Failed to kill server process", "error", err)
	}
	_ = srv.cmd.Wait()
}

// waitForServer polls url until it answers 200.
func (sm *ServerManager) waitForServer(ctx context.Context, url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := sm.client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("server failed to respond at %s within %v: %w", url, timeout, ctx.Err())
		case <-ticker.C:
		}
	}
}
