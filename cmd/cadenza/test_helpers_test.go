package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cadenza/internal/config"
	"cadenza/internal/engine"
	"cadenza/internal/ipc"
	"cadenza/internal/logging"
	"cadenza/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	engine     *engine.Engine
	server     *ipc.Server
	socketPath string
	configPath string
	logPath    string
	cancel     context.CancelFunc
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	homeDir := filepath.Join(t.TempDir(), "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	mother := newMotherStub(t)
	cfg := testsupport.NewConfig(t, testsupport.WithMotherEndpoint(mother.URL))

	logPath := filepath.Join(cfg.Paths.LogDir, "cadenza-test.log")
	if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatalf("mkdir log dir: %v", err)
	}
	if err := os.WriteFile(logPath, nil, 0o644); err != nil {
		t.Fatalf("create log file: %v", err)
	}

	configPath := filepath.Join(homeDir, ".config", "cadenza", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	logger := logging.NewNop()
	eng, err := engine.New(cfg, logger)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	socketPath := filepath.Join(cfg.Paths.LogDir, "cli.sock")
	srv, err := ipc.NewServer(ctx, socketPath, eng, logPath, logger)
	if err != nil {
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	env := &cliTestEnv{
		cfg:        cfg,
		engine:     eng,
		server:     srv,
		socketPath: socketPath,
		configPath: configPath,
		logPath:    logPath,
		cancel:     cancel,
	}

	t.Cleanup(func() {
		cancel()
		srv.Close()
		_ = eng.Close()
	})

	return env
}

func newMotherStub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/experiences", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"experiences": []map[string]any{
				{"id": 228, "title": "Deep Focus", "artist_id": 4},
				{"id": 301, "title": "Ambient Dawn", "artist_id": 7},
			},
		})
	})
	mux.HandleFunc("/api/v1/artists", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"artists": []map[string]any{{"id": 4, "name": "Aria"}},
		})
	})
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"token": "jwt", "user_id": "user-9"})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--socket", socket}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nworking_dir = %q\nlog_dir = %q\nsocket_path = %q\n\n[mother]\nendpoint = %q\n",
		cfg.Paths.WorkingDir,
		cfg.Paths.LogDir,
		cfg.Paths.SocketPath,
		cfg.Mother.Endpoint,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
