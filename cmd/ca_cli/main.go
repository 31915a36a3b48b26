// Command ca_cli exercises the counting automaton package from the shell.
//
// Usage:
//
//	ca_cli lines <pattern> <file>
//	ca_cli debug ca <pattern> [--check]
//	ca_cli debug csa <pattern> [--check]
package main

import (
	"bufio"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/coregx/countauto/ca"
	"github.com/coregx/countauto/csa"
	"github.com/coregx/countauto/exitcode"
	"github.com/coregx/countauto/simd"
)

// splitLinesSIMD is a bufio.SplitFunc that finds line breaks with
// simd.IndexNewline instead of bufio.ScanLines's byte-by-byte search.
func splitLinesSIMD(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := simd.IndexNewline(data); i >= 0 {
		line := data[:i]
		line = dropTrailingCR(line)
		return i + 1, line, nil
	}
	if atEOF {
		return len(data), dropTrailingCR(data), nil
	}
	return 0, nil, nil
}

func dropTrailingCR(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\r' {
		return b[:n-1]
	}
	return b
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut *os.File) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 1
	}

	switch args[0] {
	case "lines":
		return cmdLines(args[1:], out, errOut)
	case "debug":
		return cmdDebug(args[1:], out, errOut)
	case "-h", "--help", "help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "error: unknown command %q\n", args[0])
		printUsage(errOut)
		return 1
	}
}

func printUsage(w *os.File) {
	fmt.Fprintln(w, "ca_cli - run with one of the subcommands")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  lines <pattern> <file>    count lines matching pattern")
	fmt.Fprintln(w, "  debug ca <pattern>        print the counting automaton in DOT format")
	fmt.Fprintln(w, "  debug csa <pattern>       print the counting-set automaton in DOT format")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Both debug forms take a --check flag that suppresses the graph output")
	fmt.Fprintln(w, "and only reports whether the pattern compiles.")
}

// cmdLines implements "ca_cli lines <pattern> <file>".
func cmdLines(args []string, out, errOut *os.File) int {
	flags := flag.NewFlagSet("lines", flag.ContinueOnError)
	flags.SetOutput(errOut)
	if err := flags.Parse(args); err != nil {
		return 1
	}
	rest := flags.Args()
	if len(rest) != 2 {
		fmt.Fprintln(errOut, "usage: ca_cli lines <pattern> <file>")
		return 1
	}
	pattern, file := rest[0], rest[1]

	m, err := csa.Compile(pattern)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.For(err)
	}

	f, err := os.Open(file)
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to open file %s: %v\n", file, err)
		return 1
	}
	defer f.Close()

	var matches int
	scanner := bufio.NewScanner(f)
	scanner.Split(splitLinesSIMD)
	for scanner.Scan() {
		ok, err := m.Match(scanner.Bytes())
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.For(err)
		}
		if ok {
			matches++
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(errOut, "error: reading %s: %v\n", file, err)
		return 1
	}

	fmt.Fprintln(out, matches)
	return 0
}

// cmdDebug implements "ca_cli debug <ca|csa> <pattern> [--check]".
func cmdDebug(args []string, out, errOut *os.File) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: ca_cli debug <ca|csa> <pattern> [--check]")
		return 1
	}
	automaton := args[0]
	rest := args[1:]

	flags := flag.NewFlagSet("debug", flag.ContinueOnError)
	flags.SetOutput(errOut)
	check := flags.Bool("check", false, "do not print the graph, only check that the pattern compiles")
	maxNodes := flags.Int("max-nodes", 10000, "cap on explored csa shapes")
	if err := flags.Parse(rest); err != nil {
		return 1
	}
	patternArgs := flags.Args()
	if len(patternArgs) != 1 {
		fmt.Fprintln(errOut, "usage: ca_cli debug <ca|csa> <pattern> [--check]")
		return 1
	}
	pattern := patternArgs[0]

	switch automaton {
	case "ca":
		a, err := ca.Compile(pattern)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.For(err)
		}
		if !*check {
			a.WriteDOT(out, "ca")
		}
		return 0

	case "csa":
		a, err := ca.Compile(pattern)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.For(err)
		}
		if !*check {
			graph := csa.NewCSA(a).ExpandAll(*maxNodes)
			graph.WriteDOT(out, "csa")
		}
		return 0

	default:
		fmt.Fprintln(errOut, "error: automaton must be either ca or csa")
		return 1
	}
}
