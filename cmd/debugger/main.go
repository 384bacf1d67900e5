// Command debugger launches the interactive TUI debugger against a
// ROM, single-stepping the CPU under operator control instead of
// running it at frame rate.
package main

import (
	"flag"

	"github.com/golang/glog"

	"github.com/bdwalton/nescore/cartridge"
	"github.com/bdwalton/nescore/config"
	"github.com/bdwalton/nescore/debugtui"
	"github.com/bdwalton/nescore/nescore"
)

func main() {
	romPath := flag.String("rom", "", "path to an iNES ROM file")
	flag.Parse()

	if *romPath == "" {
		glog.Fatalf("debugger: -rom is required")
	}

	rom, err := cartridge.Load(*romPath)
	if err != nil {
		glog.Fatalf("debugger: loading %q: %v", *romPath, err)
	}

	hooks := debugtui.NewHooks()
	opts := config.Default()
	opts.TraceMemory = true
	console, err := nescore.NewFromROM(rom, opts, hooks)
	if err != nil {
		glog.Fatalf("debugger: %v", err)
	}

	if err := debugtui.Run(console.CPU, console.Step, hooks); err != nil {
		glog.Fatalf("debugger: %v", err)
	}
}
