// Package config resolves the engine's startup configuration: the CLI
// flags grounded on the teacher's own flag-based cmd/chessplay-uci
// startup, extended with this engine's hash-size/variant/learn-file
// knobs. Everything else (depth, node, and time budgets; board/variant
// state) is runtime configuration carried entirely by the xboard
// protocol's own commands, not by flags.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

// learnDirName is the directory badger creates for the persistent learn
// table, analogous to the original engine's "learn.dat" file name.
const learnDirName = "sunshouse-learn.db"

// Config holds the engine's startup configuration.
type Config struct {
	HashMB   int
	Variant  string // "crazyhouse" or "bughouse"
	LearnDir string // "" disables the persistent learn table
}

// Parse parses args (typically os.Args[1:]) into a Config, applying the
// DB_DIRECTORY / cwd / HOME search order for the learn table directory
// when -learn-dir isn't given explicitly.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("sunshouse", flag.ContinueOnError)
	hashMB := fs.Int("hash", 64, "transposition table size in MiB")
	variant := fs.String("variant", "crazyhouse", "rules to play: crazyhouse or bughouse")
	learnDir := fs.String("learn-dir", "", "directory for the persistent learn table (default: search DB_DIRECTORY, cwd, then HOME)")
	noLearn := fs.Bool("no-learn", false, "disable the persistent learn table entirely")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch *variant {
	case "crazyhouse", "bughouse":
	default:
		return nil, fmt.Errorf("invalid -variant %q: must be crazyhouse or bughouse", *variant)
	}
	if *hashMB <= 0 {
		return nil, fmt.Errorf("invalid -hash %d: must be positive", *hashMB)
	}

	cfg := &Config{HashMB: *hashMB, Variant: *variant}
	if *noLearn {
		return cfg, nil
	}
	if *learnDir != "" {
		cfg.LearnDir = *learnDir
	} else {
		cfg.LearnDir = findLearnDir()
	}
	return cfg, nil
}

// findLearnDir implements the original engine's file search order
// (DB_DIRECTORY environment variable, then the current directory, then
// HOME), preferring a candidate that already exists so a learn table
// from a previous run is picked back up, and otherwise defaulting to the
// first candidate so a fresh one gets created there.
func findLearnDir() string {
	var candidates []string
	if dir := os.Getenv("DB_DIRECTORY"); dir != "" {
		candidates = append(candidates, filepath.Join(dir, learnDirName))
	}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, learnDirName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, learnDirName))
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return learnDirName
}
