package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog"

	"vast-chess/engine"
	"vast-chess/vastmg"
)

func main() {
	depthFlag := flag.Int("depth", 8, "search depth in plies")
	repeatFlag := flag.Int("repeat", 1, "number of searches to run")
	fenFlag := flag.String("fen", "", "FEN to search (empty = the bench suite)")
	hashMB := flag.Int("hash", 16, "transposition table size in MB")
	cpuProfile := flag.String("cpuprofile", "", "write CPU profile to file")
	memProfile := flag.String("memprofile", "", "write memory profile (heap) to file")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	if *depthFlag <= 0 {
		log.Fatal().Int("depth", *depthFlag).Msg("depth must be positive")
	}

	if *cpuProfile != "" {
		cpuFile, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		if err := pprof.StartCPUProfile(cpuFile); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer func() {
			pprof.StopCPUProfile()
			cpuFile.Close()
		}()
	}

	tables, err := vastmg.NewTablesWithLogger(vastmg.DefaultSeed, log)
	if err != nil {
		log.Fatal().Err(err).Msg("building attack tables")
	}
	e := engine.NewEngine(engine.Options{HashMB: *hashMB, Logger: &log})

	startAll := time.Now()
	for i := 0; i < *repeatFlag; i++ {
		if *fenFlag == "" {
			res, err := e.Bench(tables, engine.BenchFENs, *depthFlag)
			if err != nil {
				log.Fatal().Err(err).Msg("bench")
			}
			fmt.Printf("run %d: %d positions, %d nodes, %v, %d nps\n",
				i+1, res.Positions, res.Nodes, res.Elapsed, res.NPS())
			continue
		}

		pos, err := vastmg.ParseFEN(tables, *fenFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("parse FEN")
		}
		e.NewGame()
		info := e.Search(context.Background(), pos, engine.Limits{Depth: *depthFlag})
		fmt.Printf("run %d: bestmove %s score %d nodes %d time %v pv %s\n",
			i+1, info.BestMove, info.Score, info.Nodes, info.Elapsed, engine.PVString(info.PV))
		log.Debug().EmbedObject(e.Stats).Float64("ordering", e.Stats.MoveOrderingRate()).Msg("cut statistics")
	}
	fmt.Printf("total time: %v\n", time.Since(startAll))

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create memory profile")
		}
		defer f.Close()

		runtime.GC() // get up-to-date heap info
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not write memory profile")
		}
	}
}
