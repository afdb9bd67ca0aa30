// Command analyze prints shuffle statistics for the presets in the configs
// directory. For each preset it replays the shuffles a session would see and
// reports how many are solvable and how far they start from the solution.
package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/fifteen/game/engine"
)

// Stats summarizes a run of shuffles
type Stats struct {
	Preset         string
	Seed           uint64
	Games          int
	Solvable       int
	AlreadySolved  int
	MinMisplaced   int
	MaxMisplaced   int
	TotalMisplaced int
}

// SolvableRatio is the share of solvable shuffles
func (s Stats) SolvableRatio() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Solvable) / float64(s.Games)
}

// MeanMisplaced is the average number of tiles away from home
func (s Stats) MeanMisplaced() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.TotalMisplaced) / float64(s.Games)
}

// Analyze shuffles games boards from r, the way a session deals one board per game
func Analyze(preset string, seed uint64, games int, r *rand.Rand) Stats {
	games = max(games, 0)
	stats := Stats{Preset: preset, Seed: seed, Games: games, MinMisplaced: engine.TileCount}
	for i := 0; i < games; i++ {
		board := engine.Shuffle(r)
		if engine.IsSolvable(board) {
			stats.Solvable++
		}
		if board.Solved() {
			stats.AlreadySolved++
		}

		n := board.Misplaced()
		stats.TotalMisplaced += n
		stats.MinMisplaced = min(stats.MinMisplaced, n)
		stats.MaxMisplaced = max(stats.MaxMisplaced, n)
	}
	if games <= 0 {
		stats.MinMisplaced = 0
	}
	return stats
}

// analyzeDir runs Analyze for every preset file of dir. Unseeded presets use
// fallbackSeed so a run can be repeated.
func analyzeDir(dir string, games int, fallbackSeed uint64) ([]Stats, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to find config files: %w", err)
	}
	sort.Strings(files)

	results := make([]Stats, 0, len(files))
	for _, file := range files {
		cfg, err := engine.LoadGameConfig(file)
		if err != nil {
			log.WithError(err).WithField("file", filepath.Base(file)).Warn("skipping preset")
			continue
		}
		seed := cfg.Seed
		if seed == 0 {
			seed = fallbackSeed
		}
		results = append(results, Analyze(cfg.Name, seed, games, engine.NewRand(seed)))
	}
	return results, nil
}

func printStats(w io.Writer, s Stats) {
	fmt.Fprintf(w, "\n=== %s (seed %d) ===\n", s.Preset, s.Seed)
	fmt.Fprintf(w, "Games: %d\n", s.Games)
	fmt.Fprintf(w, "Solvable: %d (%.1f%%)\n", s.Solvable, 100*s.SolvableRatio())
	fmt.Fprintf(w, "Misplaced tiles: min %d, mean %.2f, max %d\n", s.MinMisplaced, s.MeanMisplaced(), s.MaxMisplaced)
	if s.AlreadySolved > 0 {
		fmt.Fprintf(w, "⚠️  %d shuffle(s) dealt an already solved board\n", s.AlreadySolved)
	}
	if s.Solvable < s.Games {
		fmt.Fprintf(w, "⚠️  %d shuffle(s) cannot be solved by sliding tiles\n", s.Games-s.Solvable)
	} else {
		fmt.Fprintln(w, "✅ Every shuffle is solvable")
	}
}

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "print shuffle solvability statistics for each preset",
		ArgsUsage: "[dir]",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "games", Value: 1000, Usage: "shuffles per preset"},
			&cli.IntFlag{Name: "seed", Value: 1, Usage: "seed for presets without one"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := "configs"
			if cmd.Args().Present() {
				dir = cmd.Args().First()
			}
			results, err := analyzeDir(dir, int(cmd.Int("games")), uint64(cmd.Int("seed")))
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Printf("No presets found in %s\n", dir)
			}
			for _, s := range results {
				printStats(os.Stdout, s)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.WithError(err).Fatal("analyze failed")
	}
}
