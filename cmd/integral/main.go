package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/chesscore/internal/search"
	"github.com/hailam/chesscore/internal/uci"
)

var (
	logLevel   = flag.String("loglevel", "info", "log level (debug, info, warn, error)")
	cpuprofile = flag.String("cpuprofile", "", "write a cpu profile into this directory")
)

func main() {
	flag.Parse()

	// stdout carries the protocol; logs go to stderr.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		log.Fatal().Err(err).Str("level", *logLevel).Msg("bad-log-level")
	}
	zerolog.SetGlobalLevel(level)

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(profilePath), profile.NoShutdownHook).Stop()
		log.Info().Str("path", profilePath).Msg("cpu-profiling")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	protocol := uci.New(search.New(search.Neutral{}), os.Stdin, os.Stdout)
	if err := protocol.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("uci-loop")
	}
}
