package main

import (
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"

	"vast-chess/engine"
	"vast-chess/uci"
	"vast-chess/vastmg"
)

func main() {
	verbose := flag.Bool("v", false, "debug logging on stderr")
	hashMB := flag.Int("hash", 16, "transposition table size in MB")
	ratio := flag.Int("ratio", 25, "divide the clock budget by this to get the move deadline")
	seed := flag.Uint64("seed", vastmg.DefaultSeed, "seed for magic numbers and Zobrist keys")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	tables, err := vastmg.NewTablesWithLogger(*seed, log)
	if err != nil {
		log.Fatal().Err(err).Msg("building attack tables")
	}

	e := engine.NewEngine(engine.Options{HashMB: *hashMB, TimeRatio: *ratio, Logger: &log})
	if err := uci.New(tables, e, os.Stdout, log).Run(os.Stdin); err != nil {
		log.Fatal().Err(err).Msg("uci")
	}
}
