package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: repo2pdf <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert     Clone or update the configured repository and render it to PDF")
	fmt.Fprintln(w, "  doctor      Check pandoc, xelatex and inkscape")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "'repo2pdf -c repo.yaml' is short for 'repo2pdf convert -c repo.yaml'.")
	fmt.Fprintln(w, "Run 'repo2pdf help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: repo2pdf convert -c <config> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Clone or update the repository named in the config file and render")
	fmt.Fprintln(w, "it to <output_dir>/<repo>_<YYYYMMDD_HHmmss>.pdf.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path (required)")
	fmt.Fprintln(w, "  -t, --template <name>     Document template: default, kindle, technical, or")
	fmt.Fprintln(w, "                            templates/<name>.yaml next to the config")
	fmt.Fprintln(w, "  -d, --device <name>       Device preset: desktop, kindle7, tablet, mobile")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (overrides output_dir)")
	fmt.Fprintln(w, "      --workspace <dir>     Clone directory (overrides workspace_dir)")
	fmt.Fprintln(w, "      --timeout <d>         Typesetting timeout (default 10m)")
	fmt.Fprintln(w, "      --keep-temp           Keep the intermediate work directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  REPO2PDF_CONFIG, REPO2PDF_DEVICE, REPO2PDF_TEMPLATE, REPO2PDF_OUTPUT_DIR,")
	fmt.Fprintln(w, "  REPO2PDF_WORKSPACE_DIR, REPO2PDF_TIMEOUT")
	fmt.Fprintln(w, "  Precedence: flags > environment > config file > defaults.")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: repo2pdf doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that the external tools are installed.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: repo2pdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: repo2pdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
