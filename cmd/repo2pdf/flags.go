package main

import (
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common    commonFlags
	template  string
	device    string
	output    string
	workspace string
	timeout   string
	keepTemp  bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and pandoc output")
}

// buildConvertFlagSet registers the convert flags into f. Completion
// generation reuses it as the single source of flag definitions.
func buildConvertFlagSet(f *convertFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)

	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.template, "template", "t", "", "document template name")
	fs.StringVarP(&f.device, "device", "d", "", "device preset (desktop, kindle7, tablet, mobile)")
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.StringVar(&f.workspace, "workspace", "", "directory receiving the clone")
	fs.StringVar(&f.timeout, "timeout", "", "typesetting timeout (e.g., 90s, 15m)")
	fs.BoolVar(&f.keepTemp, "keep-temp", false, "keep the intermediate work directory")

	return fs
}

// parseConvertFlags parses convert command flags. Positional arguments
// are rejected: the repository comes from the config file.
func parseConvertFlags(args []string, stderr io.Writer) (*convertFlags, error) {
	f := &convertFlags{}
	fs := buildConvertFlagSet(f)
	fs.SetOutput(stderr)
	fs.Usage = func() { printConvertUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: %s (the repository is set in the config file)", ErrUnexpectedArgument, fs.Arg(0))
	}
	return f, nil
}
