// Command sunshouse is a Crazyhouse/Bughouse engine speaking the xboard
// textual protocol over stdin/stdout, in the spirit of the teacher's own
// cmd/chessplay-uci entry point.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nullmove/sunshouse/internal/config"
	"github.com/nullmove/sunshouse/internal/logx"
	"github.com/nullmove/sunshouse/internal/ttable"
	"github.com/nullmove/sunshouse/internal/xboard"
)

var log = logx.Component("main")

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "sunshouse:", err)
		os.Exit(1)
	}

	tt := ttable.SafeNew(cfg.HashMB)
	if tt == nil {
		log.Printf("fatal: could not allocate a %d MiB hash table, not even the minimum fallback", cfg.HashMB)
		os.Exit(1)
	}

	var learn *ttable.LearnTable
	if cfg.LearnDir != "" {
		learn, err = ttable.OpenLearnTable(cfg.LearnDir)
		if err != nil {
			log.Printf("learn table disabled: %v", err)
			learn = nil
		} else {
			defer learn.Close()
		}
	}

	eng := xboard.New(tt, learn, os.Stdout)

	// Feed an initial "variant" line ahead of stdin so a non-default
	// startup variant is applied before the first real command arrives,
	// without the engine needing a separate pre-Run configuration path.
	var in io.Reader = os.Stdin
	if cfg.Variant == "bughouse" {
		in = io.MultiReader(strings.NewReader("variant bughouse\n"), os.Stdin)
	}
	eng.Run(in)
}
