// Command sleighdump is a small Cobra CLI over the translator facade:
// disasm/pcode/ecode decode one instruction from a hex byte string,
// spec-info summarizes the loaded specification. Modeled on
// oisee-z80-optimizer/cmd/z80opt/main.go's single-file root-command-
// plus-subcommands shape.
package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/lookbusy1344/sleigh-lift/config"
	"github.com/lookbusy1344/sleigh-lift/il"
	"github.com/lookbusy1344/sleigh-lift/sleighctx"
	"github.com/lookbusy1344/sleigh-lift/translator"
)

var (
	specPath    string
	pcRegister  string
	archName    string
	archEndian  string
	archBits    int
	archVariant string
	verbose     bool
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	rootCmd := &cobra.Command{
		Use:   "sleighdump",
		Short: "Decode machine-code bytes into disassembly, P-code, or E-code",
	}
	rootCmd.PersistentFlags().StringVar(&specPath, "spec", cfg.Loader.SpecPath, "path to the SLEIGH XML specification")
	rootCmd.PersistentFlags().StringVar(&pcRegister, "pc", cfg.Translator.ProgramCounter, "program-counter register name")
	rootCmd.PersistentFlags().StringVar(&archName, "processor", "", "architecture processor name")
	rootCmd.PersistentFlags().StringVar(&archEndian, "endian", "little", "architecture endianness (little, big)")
	rootCmd.PersistentFlags().IntVar(&archBits, "bits", 32, "architecture address width in bits")
	rootCmd.PersistentFlags().StringVar(&archVariant, "variant", "", "architecture variant name")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging to stderr")

	var addrStr, bytesHex string
	addDecodeFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&addrStr, "addr", "0x0", "instruction address (hex, e.g. 0x1000)")
		cmd.Flags().StringVar(&bytesHex, "bytes", "", "instruction bytes as a hex string")
		cmd.MarkFlagRequired("bytes")
	}

	disasmCmd := &cobra.Command{
		Use:   "disasm",
		Short: "Disassemble one instruction",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, db, err := loadTranslator()
			if err != nil {
				return err
			}
			addr, bytes, err := parseAddrBytes(addrStr, bytesHex)
			if err != nil {
				return err
			}
			inst, err := t.Disassemble(db, addr, bytes)
			if err != nil {
				return err
			}
			fmt.Printf("0x%x: %s (%d bytes, %d delay slots)\n", inst.Addr, inst.Text, inst.Len, inst.DelaySlots)
			return nil
		},
	}
	addDecodeFlags(disasmCmd)

	pcodeCmd := &cobra.Command{
		Use:   "pcode",
		Short: "Lift one instruction to P-code",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, db, err := loadTranslator()
			if err != nil {
				return err
			}
			addr, bytes, err := parseAddrBytes(addrStr, bytesHex)
			if err != nil {
				return err
			}
			pcode, err := t.LiftPCode(db, addr, bytes)
			if err != nil {
				return err
			}
			fmt.Printf("0x%x: (%d bytes, %d delay slots)\n", pcode.Addr, pcode.Len, pcode.DelaySlots)
			for _, op := range pcode.Ops {
				fmt.Printf("  %s\n", op)
			}
			return nil
		},
	}
	addDecodeFlags(pcodeCmd)

	ecodeCmd := &cobra.Command{
		Use:   "ecode",
		Short: "Lift one instruction to E-code",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, db, err := loadTranslator()
			if err != nil {
				return err
			}
			addr, bytes, err := parseAddrBytes(addrStr, bytesHex)
			if err != nil {
				return err
			}
			ecode, err := t.LiftECode(db, addr, bytes)
			if err != nil {
				return err
			}
			fmt.Printf("0x%x: (%d bytes, %d delay slots)\n", ecode.Addr, ecode.Len, ecode.DelaySlots)
			printStmts(ecode.Stmts, "  ")
			return nil
		},
	}
	addDecodeFlags(ecodeCmd)

	specInfoCmd := &cobra.Command{
		Use:   "spec-info",
		Short: "Print a summary of the loaded specification",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, _, err := loadTranslator()
			if err != nil {
				return err
			}
			fmt.Printf("name:        %s\n", t.Prog.Name)
			fmt.Printf("processor:   %s\n", t.Arch.Processor)
			fmt.Printf("endian:      %s\n", t.Arch.Endian)
			fmt.Printf("bits:        %d\n", t.Arch.Bits)
			fmt.Printf("align bytes: %d\n", t.Prog.AlignBytes)
			fmt.Printf("symbols:     %d\n", len(t.Prog.Symbols))
			fmt.Printf("subtables:   %d\n", len(t.Prog.Subtables))
			return nil
		},
	}

	rootCmd.AddCommand(disasmCmd, pcodeCmd, ecodeCmd, specInfoCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadTranslator() (*translator.Translator, *sleighctx.Database, error) {
	if specPath == "" {
		return nil, nil, fmt.Errorf("no specification path given; pass --spec or set loader.spec_path in the config file")
	}
	if verbose {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	arch := translator.ArchitectureDef{Processor: archName, Endian: archEndian, Bits: archBits, Variant: archVariant}
	t, err := translator.LoadFromFile(specPath, pcRegister, arch, nil)
	if err != nil {
		return nil, nil, err
	}
	return t, t.Prog.Context.Clone(), nil
}

func parseAddrBytes(addrStr, bytesHex string) (uint64, []byte, error) {
	var addr uint64
	if _, err := fmt.Sscanf(addrStr, "0x%x", &addr); err != nil {
		if _, err2 := fmt.Sscanf(addrStr, "%d", &addr); err2 != nil {
			return 0, nil, fmt.Errorf("invalid --addr %q", addrStr)
		}
	}
	bytes, err := hex.DecodeString(bytesHex)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid --bytes %q: %w", bytesHex, err)
	}
	return addr, bytes, nil
}

func printStmts(stmts []il.Stmt, indent string) {
	for _, s := range stmts {
		fmt.Printf("%s%s\n", indent, s)
	}
}
