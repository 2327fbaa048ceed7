// Command simbridge-log views and analyzes simbridge trace files.
//
// Trace files are written by simbridge when started with -trace.
//
// Usage:
//
//	simbridge-log <command> [flags] <file.strace>
//
// Commands:
//
//	view     View trace file in human-readable format
//	export   Export trace file as JSON lines
//	stats    Show statistics about the trace file
//
// Examples:
//
//	# View all events
//	simbridge-log view session.strace
//
//	# View only value replies of the Fuel group
//	simbridge-log view -category value -group Fuel session.strace
//
//	# Export outgoing calls to JSONL
//	simbridge-log export -direction out -o calls.jsonl session.strace
//
//	# Show statistics
//	simbridge-log stats session.strace
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/simbridge/simbridge-go/cmd/simbridge-log/commands"
)

const usage = `simbridge-log - simbridge trace analyzer

Usage:
  simbridge-log <command> [flags] <file.strace>

Commands:
  view     View trace file in human-readable format
  export   Export trace file as JSON lines
  stats    Show statistics about the trace file

Use "simbridge-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// filterFlags registers the shared filter flags on fs.
func filterFlags(fs *flag.FlagSet) *commands.FilterOptions {
	var opts commands.FilterOptions
	fs.StringVar(&opts.SessionID, "session", "", "Filter by session ID")
	fs.StringVar(&opts.Direction, "direction", "", "Filter by direction (in, out)")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (state, declare, request, write, value, event, subscription, error)")
	fs.StringVar(&opts.Group, "group", "", "Filter by property group name")
	fs.StringVar(&opts.Field, "field", "", "Filter by field id")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	return &opts
}

func parseArgs(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: trace file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `simbridge-log view - View trace file in human-readable format

Usage:
  simbridge-log view [flags] <file.strace>

Flags:
`)
		fs.PrintDefaults()
	}
	opts := filterFlags(fs)
	path := parseArgs(fs, args)

	filter, err := commands.BuildFilter(*opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `simbridge-log export - Export trace file as JSON lines

Usage:
  simbridge-log export [flags] <file.strace>

Flags:
`)
		fs.PrintDefaults()
	}
	output := fs.String("o", "", "Output file (default: stdout)")
	opts := filterFlags(fs)
	path := parseArgs(fs, args)

	filter, err := commands.BuildFilter(*opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := commands.RunExport(path, filter, *output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `simbridge-log stats - Show statistics about the trace file

Usage:
  simbridge-log stats <file.strace>

`)
	}
	path := parseArgs(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
