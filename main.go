package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/rv32emu/rv32emu/config"
	"github.com/rv32emu/rv32emu/debugger"
	"github.com/rv32emu/rv32emu/encoder"
	"github.com/rv32emu/rv32emu/loader"
	"github.com/rv32emu/rv32emu/parser"
	"github.com/rv32emu/rv32emu/vm"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"     // Version number (set by git tag at build time)
	Commit  = "unknown" // Git commit hash
	Date    = "unknown" // Build date
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	var (
		showVersion  = flag.Bool("version", false, "Show version information")
		showHelp     = flag.Bool("help", false, "Show help information")
		debugMode    = flag.Bool("debug", false, "Start in debugger mode")
		tuiMode      = flag.Bool("tui", false, "Use TUI (Text User Interface) debugger")
		maxCycles    = flag.Uint64("max-cycles", cfg.Execution.MaxCycles, "Maximum CPU cycles before halt")
		entrySymbol  = flag.String("entry", "", "Entry point symbol (default: \"main\" label, or text base if absent)")
		readOnlyCode = flag.Bool("read-only-code", cfg.Execution.ReadOnlyCode, "Fault on any write into the text segment")
		verboseMode  = flag.Bool("verbose", false, "Verbose output")

		enableTrace = flag.Bool("trace", cfg.Execution.EnableTrace, "Enable execution trace")
		traceFile   = flag.String("trace-file", cfg.Trace.OutputFile, "Trace output file")
		enableStats = flag.Bool("stats", cfg.Execution.EnableStats, "Enable performance statistics")
		statsFile   = flag.String("stats-file", cfg.Statistics.OutputFile, "Statistics output file")

		dumpSymbols = flag.Bool("dump-symbols", false, "Dump symbol table and exit")
		symbolsFile = flag.String("symbols-file", "", "Symbol dump output file (default: stdout)")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("rv32emu %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp || flag.NArg() == 0 {
		printHelp()
		os.Exit(0)
	}

	asmFile := flag.Arg(0)
	source, err := os.ReadFile(asmFile) // #nosec G304 -- user-specified assembly source path
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot read %s: %v\n", asmFile, err)
		os.Exit(1)
	}

	if *verboseMode {
		fmt.Printf("Assembling %s\n", asmFile)
	}

	statements, perr := parser.NewParser(string(source), asmFile).Parse()
	if perr != nil {
		fmt.Fprintf(os.Stderr, "Parse error:\n%v\n", perr)
		os.Exit(1)
	}

	symbols, berr := parser.BuildSymbolTable(statements)
	if berr != nil {
		fmt.Fprintf(os.Stderr, "Symbol table error:\n%v\n", berr)
		os.Exit(1)
	}

	out, errs := encoder.Encode(statements, symbols, string(source))
	if errs.HasErrors() {
		fmt.Fprintf(os.Stderr, "Assembly errors:\n%v\n", errs)
		os.Exit(1)
	}
	if *verboseMode {
		fmt.Printf("Encoded %d bytes text, %d bytes data\n", len(out.Text), len(out.Data))
	}

	if *dumpSymbols {
		if err := dumpSymbolTable(symbols, *symbolsFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error dumping symbols: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	machine := vm.NewVM()
	if *readOnlyCode {
		machine.Memory.MakeCodeReadOnly()
	}

	if err := loader.Load(machine, out, symbols, *entrySymbol); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	if *verboseMode {
		fmt.Printf("Entry point: 0x%08X\n", machine.CPU.PC)
	}

	var traceWriter *os.File
	if *enableTrace {
		traceWriter, err = os.Create(traceFileOrDefault(*traceFile)) // #nosec G304 -- user-specified trace output path
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating trace file: %v\n", err)
			os.Exit(1)
		}
		defer traceWriter.Close()
		machine.Trace = vm.NewExecutionTrace(traceWriter)
		if *verboseMode {
			fmt.Printf("Execution trace enabled: %s\n", traceFileOrDefault(*traceFile))
		}
	}

	machine.Statistics.Enabled = *enableStats

	allSymbols := make(map[string]uint32, len(symbols.GetAllSymbols()))
	for name, sym := range symbols.GetAllSymbols() {
		allSymbols[name] = sym.Value
	}
	sourceMap := make(map[uint32]string, len(out.DebugMap))
	for addr, entry := range out.DebugMap {
		sourceMap[addr] = entry.RawText
	}

	if *debugMode || *tuiMode {
		dbg := debugger.NewDebugger(machine)
		dbg.LoadSymbols(allSymbols)
		dbg.LoadSourceMap(sourceMap)

		if *tuiMode {
			if err := debugger.RunTUI(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
				os.Exit(1)
			}
		} else {
			fmt.Println("RV32I Debugger - Type 'help' for commands")
			fmt.Printf("Program loaded: %s\n", asmFile)
			fmt.Println()

			if err := debugger.RunCLI(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "Debugger error: %v\n", err)
				os.Exit(1)
			}
		}
		return
	}

	if *verboseMode {
		fmt.Println("\nStarting execution...")
		fmt.Println("----------------------------------------")
	}

	runErr := machine.Run(func() bool { return machine.CPU.Cycles < *maxCycles })

	exitCode := 0
	switch e := runErr.(type) {
	case nil:
		fmt.Fprintf(os.Stderr, "Cycle limit reached (%d cycles) at PC=0x%08X\n", *maxCycles, machine.CPU.PC)
		exitCode = 1
	case *vm.EbreakError:
		if *verboseMode {
			fmt.Printf("\nebreak at 0x%08X, program halted\n", e.PC)
		}
	case *vm.EcallError:
		fmt.Printf("\necall at 0x%08X (a7=x17=%d, a0=x10=%d)\n", e.PC, machine.CPU.Read(17), machine.CPU.Read(10))
		exitCode = int(int32(machine.CPU.Read(10)))
	default:
		fmt.Fprintf(os.Stderr, "\nRuntime error at PC=0x%08X: %v\n", machine.CPU.PC, runErr)
		exitCode = 1
	}

	if *verboseMode {
		fmt.Println("----------------------------------------")
		fmt.Println("Execution complete")
		fmt.Printf("CPU cycles: %d\n", machine.CPU.Cycles)
	}

	if machine.Statistics.Enabled {
		if err := writeStatistics(machine.Statistics, statsFileOrDefault(*statsFile)); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing statistics: %v\n", err)
		} else if *verboseMode {
			fmt.Printf("Statistics written: %s\n", statsFileOrDefault(*statsFile))
		}
	}

	os.Exit(exitCode)
}

func traceFileOrDefault(path string) string {
	if path != "" {
		return path
	}
	return "trace.log"
}

func statsFileOrDefault(path string) string {
	if path != "" {
		return path
	}
	return "stats.json"
}

// writeStatistics renders a plain-text instruction breakdown; no
// JSON/CSV export machinery here since the only consumer so far is a
// human reading the file after a run.
func writeStatistics(stats *vm.PerformanceStatistics, path string) error {
	f, err := os.Create(path) // #nosec G304 -- user-specified statistics output path
	if err != nil {
		return fmt.Errorf("failed to create statistics file: %w", err)
	}
	defer f.Close()

	fmt.Fprintf(f, "Total instructions: %d\n", stats.TotalInstructions)
	fmt.Fprintf(f, "Branches: %d (taken: %d)\n", stats.BranchCount, stats.BranchTakenCount)
	fmt.Fprintln(f, "\nInstruction breakdown:")
	for _, row := range stats.Breakdown() {
		fmt.Fprintf(f, "  %-8s %d\n", row.Mnemonic, row.Count)
	}
	return nil
}

func printHelp() {
	fmt.Printf(`rv32emu %s

Usage: rv32emu [options] <assembly-file>

Options:
  -help              Show this help message
  -version           Show version information
  -debug             Start in debugger mode (CLI)
  -tui               Start in TUI debugger mode
  -max-cycles N      Set maximum CPU cycles (default: %d)
  -entry SYMBOL      Entry point label (default: "main" label, or text base)
  -read-only-code    Fault on any write into the text segment
  -verbose           Enable verbose output

Tracing & Statistics:
  -trace             Enable execution trace
  -trace-file FILE   Trace output file (default: trace.log)
  -stats             Enable performance statistics
  -stats-file FILE   Statistics output file (default: stats.json)

Symbol Options:
  -dump-symbols      Dump symbol table and exit
  -symbols-file FILE Symbol dump output file (default: stdout)

Examples:
  # Run a program directly
  rv32emu examples/hello.s

  # Run with debugger
  rv32emu -debug examples/fibonacci.s

  # Run with TUI debugger
  rv32emu -tui examples/bubble_sort.s

  # Run with execution trace and statistics
  rv32emu -trace -stats -verbose program.s

  # Dump symbol table
  rv32emu -dump-symbols program.s

Debugger Commands (when in -debug mode):
  run, r             Start/restart program execution
  continue, c        Continue execution
  step, s            Execute single instruction
  next, n            Step over function calls
  break ADDR         Set breakpoint at address/label
  info registers     Show all registers
  print EXPR         Evaluate and print expression
  help               Show debugger help

For more information, see the README.md file.
`, Version, uint64(1_000_000))
}

// dumpSymbolTable outputs the symbol table in a readable format.
func dumpSymbolTable(st *parser.SymbolTable, filename string) error {
	var writer *os.File
	var err error

	if filename == "" {
		writer = os.Stdout
	} else {
		writer, err = os.Create(filename) // #nosec G304 -- user-specified symbol output path
		if err != nil {
			return fmt.Errorf("failed to create symbol file: %w", err)
		}
		defer writer.Close()
	}

	allSymbols := st.GetAllSymbols()
	if len(allSymbols) == 0 {
		fmt.Fprintln(writer, "No symbols defined")
		return nil
	}

	fmt.Fprintln(writer, "Symbol Table")
	fmt.Fprintln(writer, "============")
	fmt.Fprintln(writer)
	fmt.Fprintf(writer, "%-30s %-10s %s\n", "Name", "Address", "Status")
	fmt.Fprintln(writer, "--------------------------------------------------")

	type symbolEntry struct {
		name   string
		symbol *parser.Symbol
	}
	entries := make([]symbolEntry, 0, len(allSymbols))
	for name, sym := range allSymbols {
		entries = append(entries, symbolEntry{name, sym})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].symbol.Value < entries[j].symbol.Value
	})

	for _, entry := range entries {
		status := "Defined"
		if !entry.symbol.Defined {
			status = "Undefined"
		}
		fmt.Fprintf(writer, "%-30s 0x%08X %s\n", entry.name, entry.symbol.Value, status)
	}

	fmt.Fprintln(writer)
	fmt.Fprintf(writer, "Total symbols: %d\n", len(allSymbols))

	return nil
}
