package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"slices"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-repo2pdf/internal/fileutil"
	"github.com/alnah/go-repo2pdf/internal/hints"
)

// versionTimeout bounds each `<tool> --version` probe.
const versionTimeout = 10 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Tools    []toolInfo `json:"tools"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// toolInfo holds the detection result for one external program.
type toolInfo struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
	Found    bool   `json:"found"`
	Version  string `json:"version,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// doctorTools lists the probed programs. pandoc drives xelatex, inkscape
// is only the SVG fallback.
var doctorTools = []struct {
	name     string
	required bool
	hint     string
}{
	{"pandoc", true, hints.ForPandocMissing()},
	{"xelatex", true, hints.ForPandocMissing()},
	{"inkscape", false, hints.ForInkscapeMissing()},
}

// buildDoctorFlagSet registers the doctor flags into jsonOutput.
func buildDoctorFlagSet(jsonOutput *bool) *flag.FlagSet {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.BoolVar(jsonOutput, "json", false, "machine-readable output")
	return fs
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	var jsonOutput bool
	fs := buildDoctorFlagSet(&jsonOutput)
	fs.SetOutput(env.Stderr)
	fs.Usage = func() { printDoctorUsage(env.Stdout) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(env.Stderr, "%v: %s\n", ErrUnexpectedArgument, fs.Arg(0))
		return ExitUsage
	}

	result := runDoctor(context.Background(), env)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
		},
	}

	checkTools(ctx, env, result)
	checkEnvironment(result)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}
	return result
}

// checkTools detects the external programs and their versions.
func checkTools(ctx context.Context, env *Environment, result *doctorResult) {
	for _, tool := range doctorTools {
		info := toolInfo{Name: tool.name, Required: tool.required}
		if !env.LookPath(tool.name) {
			msg := tool.name + " not found" + tool.hint
			if tool.required {
				result.Errors = append(result.Errors, msg)
			} else {
				result.Warnings = append(result.Warnings, msg)
			}
			result.Tools = append(result.Tools, info)
			continue
		}
		info.Found = true
		info.Version = toolVersion(ctx, env, tool.name)
		result.Tools = append(result.Tools, info)
	}
}

// toolVersion returns the first line of `name --version`, or "".
func toolVersion(ctx context.Context, env *Environment, name string) string {
	if env.Runner == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	stdout, _, err := env.Runner.Run(ctx, "", name, "--version")
	if err != nil {
		return ""
	}
	first, _, _ := strings.Cut(strings.TrimSpace(stdout), "\n")
	return strings.TrimSpace(first)
}

// ciVariables are set by the common CI providers.
var ciVariables = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI", "BUILDKITE"}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()
	result.Env.CI = slices.ContainsFunc(ciVariables, func(v string) bool { return os.Getenv(v) != "" })
}

// isContainer reports the first container signal found.
func isContainer() (bool, string) {
	signals := []struct {
		hint   string
		detect func() bool
	}{
		{"REPO2PDF_CONTAINER=1", func() bool { return os.Getenv("REPO2PDF_CONTAINER") == "1" }},
		{"/.dockerenv", func() bool { return fileutil.FileExists("/.dockerenv") }},
		{"/run/.containerenv", func() bool { return fileutil.FileExists("/run/.containerenv") }},
		{"KUBERNETES_SERVICE_HOST", func() bool { return os.Getenv("KUBERNETES_SERVICE_HOST") != "" }},
	}
	for _, s := range signals {
		if s.detect() {
			return true, s.hint
		}
	}
	return false, ""
}

// checkSystem verifies the temp directory, which holds the work directory.
func checkSystem(result *doctorResult) {
	f, err := os.CreateTemp("", "repo2pdf-doctor-")
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot create work directories under %s: %v", os.TempDir(), err))
		return
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	result.System.TempWritable = true
}

// doctorLine writes one report line tagged with its level.
func doctorLine(w io.Writer, level, format string, args ...any) {
	fmt.Fprintf(w, "  [%s] %s\n", level, fmt.Sprintf(format, args...))
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprint(w, "repo2pdf doctor\n\nTools\n")
	for _, t := range r.Tools {
		switch {
		case !t.Found && t.Required:
			doctorLine(w, "ERROR", "%s: not found", t.Name)
		case !t.Found:
			doctorLine(w, "WARN", "%s: not found (optional)", t.Name)
		case t.Version == "":
			doctorLine(w, "OK", "%s", t.Name)
		default:
			doctorLine(w, "OK", "%s: %s", t.Name, t.Version)
		}
	}

	fmt.Fprint(w, "\nEnvironment\n")
	doctorLine(w, "OK", "Platform: %s/%s", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		doctorLine(w, "OK", "Container: detected (%s)", r.Env.ContainerHint)
	}
	if r.Env.CI {
		doctorLine(w, "OK", "CI: detected")
	}

	fmt.Fprint(w, "\nSystem\n")
	if r.System.TempWritable {
		doctorLine(w, "OK", "Temp directory: writable")
	} else {
		doctorLine(w, "ERROR", "Temp directory: not writable")
	}

	for _, group := range []struct {
		title, level string
		items        []string
	}{
		{"Warnings", "WARN", r.Warnings},
		{"Errors", "ERROR", r.Errors},
	} {
		if len(group.items) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n", group.title)
		for _, item := range group.items {
			doctorLine(w, group.level, "%s", item)
		}
	}

	verdicts := map[string]string{
		"ready":    "Ready to convert",
		"warnings": "Ready with warnings",
		"errors":   "Not ready (see errors above)",
	}
	fmt.Fprintf(w, "\nStatus: %s\n", verdicts[r.Status])
}
