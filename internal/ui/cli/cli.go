package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
)

const versionString = "1.4.0"

// errUnitsFailed makes the process exit non-zero after a run in which at
// least one unit failed. The failures themselves were already reported.
var errUnitsFailed = errors.New("one or more source units failed")

type CLI struct {
	Config string `help:"Path to config file." type:"path" placeholder:"FILE"`
	Debug  bool   `help:"Enable debug messages."`

	Generate  GenerateCmd  `cmd:"" default:"withargs" help:"Generate stubs for the given files and directories."`
	Watch     WatchCmd     `cmd:"" help:"Regenerate stubs whenever sources change."`
	Tree      TreeCmd      `cmd:"" help:"Print the declaration tree of a source file."`
	Inspect   InspectCmd   `cmd:"" help:"Print the type resolution report of a source file as YAML."`
	Docstring DocstringCmd `cmd:"" help:"Print the docstrings of a source file rewritten for documentation."`
	Version   VersionCmd   `cmd:"" help:"Print version and exit."`
}

// Run parses args and executes the selected command. It returns the process
// exit code.
func Run(args []string) int {
	return run(args, os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	var cli CLI
	exitCode := -1
	parser, err := kong.New(&cli,
		kong.Name("genstub"),
		kong.Description("Generate Python stub files from docstring signatures."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { exitCode = code }),
	)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	kctx, err := parser.Parse(args)
	if exitCode >= 0 {
		// --help already printed usage.
		return exitCode
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	cleanupLogs := configureLogging(stderr, cli.Debug)
	defer cleanupLogs()

	rt := &runtime{globals: &cli, stdout: stdout, stderr: stderr}
	if err := kctx.Run(rt); err != nil {
		if !errors.Is(err, errUnitsFailed) {
			fmt.Fprintln(stderr, "genstub:", err)
		}
		return 1
	}
	return 0
}

type VersionCmd struct{}

func (c *VersionCmd) Run(rt *runtime) error {
	fmt.Fprintf(rt.stdout, "genstub %s\n", versionString)
	return nil
}
