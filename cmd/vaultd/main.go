package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"yieldvault/config"
	"yieldvault/native/vault"
	"yieldvault/observability/logging"
	"yieldvault/rpc"
	"yieldvault/rpc/modules"
	"yieldvault/storage"
)

const shutdownGrace = 10 * time.Second

type staticPauses struct {
	vault bool
}

func (p staticPauses) IsPaused(module string) bool {
	return module == "vault" && p.vault
}

type attributed interface {
	Attributes() map[string]string
}

// logEmitter forwards vault events to the structured logger.
type logEmitter struct {
	log *slog.Logger
}

func (l logEmitter) Emit(event vault.Event) {
	args := []any{slog.String("type", event.EventType())}
	if payload, ok := event.(attributed); ok {
		for key, value := range payload.Attributes() {
			args = append(args, slog.String(key, value))
		}
	}
	l.log.Info("vault event", args...)
}

func buildFarm(kind string) (vault.RewardAdapter, bool) {
	switch strings.TrimSpace(strings.ToLower(kind)) {
	case "null":
		return vault.NullFarm{}, true
	case "blocked":
		return vault.BlockedFarm{}, true
	case "failing":
		return vault.FailingFarm{}, true
	}
	return nil, false
}

func main() {
	configPath := flag.String("config", "./vaultd.toml", "path to the vaultd configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup("vaultd", cfg.Environment)

	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "vault"))
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("close database", "error", err)
		}
	}()

	registry := vault.NewRegistry()
	for _, farm := range cfg.Farms {
		adapter, ok := buildFarm(farm.Kind)
		if !ok {
			logger.Error("unknown farm kind", "kind", farm.Kind)
			os.Exit(1)
		}
		registry.Register(adapter)
	}
	logger.Info("registered reward adapters", "adapters", registry.Names())

	engine := vault.NewEngine()
	engine.SetState(vault.NewPositionStore(db, registry))
	engine.SetEmitter(logEmitter{log: logger})
	if cfg.PauseVault {
		engine.SetPauses(staticPauses{vault: true})
		logger.Warn("vault module starting paused")
	}

	rpcServer := rpc.NewServer(modules.NewVaultModule(engine, registry), cfg.RPCToken)

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())
	router.Handle("/", rpcServer.Handler())

	server := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("vaultd listening", "address", cfg.ListenAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
