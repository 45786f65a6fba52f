package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"cadenza/internal/config"
	"cadenza/internal/engine"
	"cadenza/internal/ipc"
	"cadenza/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "cadenzad: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logPath := buildLogPath(cfg)
	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	eng, err := engine.New(cfg, logger)
	if err != nil {
		if errors.Is(err, engine.ErrAlreadyRunning) {
			return err
		}
		return fmt.Errorf("start engine: %w", err)
	}
	defer func() {
		if err := eng.Close(); err != nil {
			log.Printf("engine close: %v", err)
		}
	}()

	ipcServer, err := ipc.NewServer(ctx, cfg.Paths.SocketPath, eng, logPath, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	logger.Info("cadenzad ready",
		logging.String("socket", cfg.Paths.SocketPath),
		logging.String("session_id", eng.SessionID()))

	<-ctx.Done()
	logger.Info("cadenzad shutting down")
	return nil
}

func buildLogPath(cfg *config.Config) string {
	if cfg == nil {
		return "cadenzad.log"
	}
	return filepath.Join(cfg.Paths.LogDir, "cadenzad.log")
}
