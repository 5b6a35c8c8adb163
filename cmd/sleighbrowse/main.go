// Command sleighbrowse is an interactive TUI over a loaded
// specification: a tree of subtables and constructors, a pane showing
// the selected constructor's lengths, print preview, and operand,
// context-op and template-op counts (not its pattern), and a
// hex-input pane that disassembles against the live Translator.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lookbusy1344/sleigh-lift/config"
	"github.com/lookbusy1344/sleigh-lift/translator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	specPath := flag.String("spec", cfg.Loader.SpecPath, "path to the SLEIGH XML specification")
	pcRegister := flag.String("pc", cfg.Translator.ProgramCounter, "program-counter register name")
	processor := flag.String("processor", "", "architecture processor name")
	endian := flag.String("endian", "little", "architecture endianness")
	bits := flag.Int("bits", 32, "architecture address width in bits")
	flag.Parse()

	if *specPath == "" {
		fmt.Fprintln(os.Stderr, "sleighbrowse: no specification path given; pass --spec")
		os.Exit(1)
	}

	arch := translator.ArchitectureDef{Processor: *processor, Endian: *endian, Bits: *bits}
	t, err := translator.LoadFromFile(*specPath, *pcRegister, arch, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sleighbrowse: failed to load %s: %v\n", *specPath, err)
		os.Exit(1)
	}

	browser := NewBrowser(t)
	if err := browser.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "sleighbrowse: %v\n", err)
		os.Exit(1)
	}
}
