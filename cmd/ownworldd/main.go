// Command ownworldd runs the OwnWorld simulation server: it loads or
// creates a world from its checkpoint database, accepts WebSocket
// connections, and advances the tick loop until asked to stop.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	flags "github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"

	"github.com/Vitadek/ownworld/internal/balance"
	"github.com/Vitadek/ownworld/internal/engine"
	"github.com/Vitadek/ownworld/internal/session"
	"github.com/Vitadek/ownworld/internal/store"
)

type options struct {
	Port       int    `short:"p" long:"port" description:"WebSocket listen port" default:"8080"`
	Seed       uint64 `long:"seed" description:"World seed; a checkpoint's stored seed is only compared against it and a mismatch is logged" default:"1"`
	DB         string `long:"db" description:"Path to the sqlite checkpoint database" default:"ownworld.db"`
	MaxPlayers int    `long:"max-players" description:"Maximum registered players, 0 for unlimited" default:"0"`
}

// parseOptions parses the CLI, falling back to defaults on any failure
// (unknown flag, bad value) instead of aborting the process: a
// misconfigured flag should never keep an otherwise-healthy world from
// booting. The --help exit that flags.Default normally provides is
// preserved.
func parseOptions(log zerolog.Logger) options {
	opts := options{Port: 8080, Seed: 1, DB: "ownworld.db", MaxPlayers: 0}
	parser := flags.NewParser(&opts, flags.Default)
	parser.Name = "ownworldd"
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		log.Warn().Err(err).Msg("argument parse error; continuing with defaults for any unrecognized flags")
	}
	return opts
}

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	opts := parseOptions(log)

	st, err := store.Open(opts.DB)
	if err != nil {
		log.Fatal().Err(err).Str("db", opts.DB).Msg("failed to open checkpoint database")
	}
	defer st.Close()
	if err := st.Bootstrap(); err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap schema")
	}

	w, err := engine.LoadOrInit(st, opts.Seed, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load world")
	}

	e := engine.NewEngine(w, st, log, balance.DefaultPersistEveryTick)
	hub := session.NewHub(e, log, opts.MaxPlayers)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeHTTP)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var shutdownRequested atomic.Bool
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownRequested.Store(true)
	}()

	go func() {
		log.Info().Int("port", opts.Port).Msg("listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server stopped unexpectedly")
			shutdownRequested.Store(true)
		}
	}()

	tickInterval := time.Second / time.Duration(balance.DefaultTickRateHz)
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	log.Info().Int64("tick", w.CurrentTick).Msg("tick loop starting")
	for !shutdownRequested.Load() {
		<-ticker.C
		hub.RunTick()
	}

	log.Info().Msg("shutdown requested; closing sessions and flushing")
	hub.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	server.Shutdown(shutdownCtx)
	cancel()

	if err := e.Flush(w.CurrentTick); err != nil {
		log.Error().Err(err).Msg("final flush failed")
		os.Exit(1)
	}
	log.Info().Msg("clean shutdown complete")
}
