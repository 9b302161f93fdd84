package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"vast-chess/vastmg"
)

func main() {
	fen := flag.String("fen", vastmg.FENStartPos, "FEN string (defaults to initial position)")
	depth := flag.Int("depth", 0, "Perft depth (required)")
	divide := flag.Bool("divide", false, "Print per-move node counts at root")
	parallel := flag.Bool("parallel", false, "Search root moves concurrently (implies -divide)")
	repeat := flag.Int("repeat", 1, "Repeat perft N times and report aggregate")
	cpuProf := flag.String("cpuprofile", "", "Write CPU profile to file during run")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	if *depth <= 0 {
		log.Error().Int("depth", *depth).Msg("-depth must be > 0")
		os.Exit(2)
	}

	tables, err := vastmg.NewTablesWithLogger(vastmg.DefaultSeed, log)
	if err != nil {
		log.Fatal().Err(err).Msg("building attack tables")
	}
	pos, err := vastmg.ParseFEN(tables, *fen)
	if err != nil {
		log.Error().Err(err).Msg("parse FEN")
		os.Exit(2)
	}

	if *cpuProf != "" {
		f, err := os.Create(*cpuProf)
		if err != nil {
			log.Fatal().Err(err).Msg("creating cpuprofile")
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("start cpu profile")
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	if *divide || *parallel {
		start := time.Now()
		var div map[vastmg.Move]uint64
		if *parallel {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			div, err = vastmg.ParallelPerftDivide(ctx, pos, *depth)
			stop()
			if err != nil {
				log.Error().Err(err).Msg("perft interrupted")
				return
			}
		} else {
			div = vastmg.PerftDivide(pos, *depth)
		}

		moves := lo.Keys(div)
		sort.Slice(moves, func(i, j int) bool { return moves[i].String() < moves[j].String() })
		for _, m := range moves {
			fmt.Printf("%s: %d\n", m, div[m])
		}
		fmt.Printf("Total: %d\n", lo.Sum(lo.Values(div)))
		log.Debug().Dur("elapsed", time.Since(start)).Int("moves", len(moves)).Msg("divide done")
		return
	}

	var totalNodes uint64
	start := time.Now()
	for i := 0; i < *repeat; i++ {
		totalNodes += vastmg.Perft(pos, *depth)
	}
	elapsed := time.Since(start)
	nps := float64(totalNodes) / elapsed.Seconds()

	// Depth Nodes Time NPS
	fmt.Printf("%d \t%d \t%s \t%.0f\n", *depth, totalNodes, elapsed, nps)
}
