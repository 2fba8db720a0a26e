package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blast-arena/server/internal/config"
	"blast-arena/server/internal/directory"
	"blast-arena/server/internal/game"
	netapi "blast-arena/server/internal/net"
	"blast-arena/server/internal/net/ws"
	"blast-arena/server/logging"
	"blast-arena/server/logging/sinks"
)

func main() {
	cfg := config.Load()

	logCfg := logging.DefaultConfig()
	logCfg.EnabledSinks = cfg.LogSinks
	var named []logging.NamedSink
	if logCfg.HasSink("console") {
		named = append(named, logging.NamedSink{Name: "console", Sink: sinks.NewConsoleSink(os.Stdout)})
	}
	logRouter := logging.NewRouter(logging.SystemClock{}, logCfg, named)

	gateway := ws.NewGateway(logRouter)
	dir := directory.New(directory.Config{
		Tuning:      game.DefaultTuning(),
		TickRate:    cfg.TickRate,
		Publisher:   logRouter,
		Broadcaster: gateway,
	})
	gateway.Bind(dir)

	api := netapi.NewServer(dir, gateway, logRouter)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		log.Printf("shutting down")
		dir.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(ctx)
	}()

	log.Printf("arena server listening on :%s (tick rate %d Hz)", cfg.Port, cfg.TickRate)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("http server: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := logRouter.Close(ctx); err != nil {
		log.Printf("close log router: %v", err)
	}
}
