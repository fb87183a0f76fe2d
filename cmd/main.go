package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roomhub/auth"
	"roomhub/contract"
	"roomhub/runtime"
	"roomhub/runtime/workers"
	"roomhub/web"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so deferred cleanups execute before exit.
//
// The dispatcher drain loop is the only path that delivers any event, so a
// fault escaping it is surfaced here and terminates the process. There is
// no restart: a half-alive hub that accepts connections but delivers
// nothing would be worse than a dead one.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Core services: tokens, registry, dispatcher
	tokens, err := auth.NewTokenService()
	if err != nil {
		return fmt.Errorf("token service init failed: %w", err)
	}
	registry := runtime.NewRegistry()
	dispatcher := workers.NewDispatcher(log, registry, config.QueueSize)

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Drain loop
	errChan := make(chan error, 2)
	go func() {
		log.Info("Starting worker", "name", contract.GetWorkerName(dispatcher))
		if err := dispatcher.Run(ctx); err != nil {
			errChan <- fmt.Errorf("dispatcher drain loop died: %w", err)
		}
	}()

	// 5. HTTP/WebSocket ingress
	server := web.NewServer(log, registry, dispatcher, tokens, registry,
		config.ConnectionBufferSize, config.WriteTimeout, config.PongWait)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{
		Addr:              address,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("Starting hub", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 7. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown did not finish cleanly", "error", err)
	}
	log.Info("Program stopped cleanly")

	return nil
}
