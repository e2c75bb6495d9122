// internal/cli/cli.go
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dalemusser/emailcheck/app"
	"github.com/dalemusser/emailcheck/config"
	"github.com/dalemusser/emailcheck/logging"
	"github.com/dalemusser/emailcheck/report"
	"github.com/dalemusser/emailcheck/validate"
	"github.com/dalemusser/emailcheck/version"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// Exit codes returned by Run.
const (
	ExitOK      = 0
	ExitError   = 1
	ExitInvalid = 2
)

// maxLineBytes bounds a single line read by check.
const maxLineBytes = 1 << 20

// Run is the entrypoint used by cmd/emailcheck.
//
// binName is the CLI name to show in help/usage text.
// args are the command-line arguments excluding the binary name (i.e. os.Args[1:]).
//
// It returns a process exit code; callers should os.Exit(Run(...)).
func Run(binName string, args []string) int {
	return RunIO(binName, args, os.Stdin, os.Stdout, os.Stderr)
}

// RunIO is Run with explicit standard streams.
func RunIO(binName string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(binName, stderr)
		return ExitError
	}

	c := &cmd{bin: binName, stdin: stdin, stdout: stdout, stderr: stderr}
	switch args[0] {
	case "demo":
		return c.demo(args[1:])
	case "check":
		return c.check(args[1:])
	case "serve":
		return c.serve(args[1:])
	case "version":
		fmt.Fprintf(stdout, "%s %s\n", binName, version.String())
		return ExitOK
	case "help", "-h", "--help":
		usage(binName, stdout)
		return ExitOK
	default:
		fmt.Fprintf(stderr, "unknown command: %q\n\n", args[0])
		usage(binName, stderr)
		return ExitError
	}
}

func usage(binName string, w io.Writer) {
	fmt.Fprintf(w, "Email syntax validator (%s)\n", binName)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %s demo                     validate the built-in sample addresses\n", binName)
	fmt.Fprintf(w, "  %s check [flags] [email...] validate addresses from args, --input or stdin\n", binName)
	fmt.Fprintf(w, "  %s serve [flags]            run the HTTP validation service\n", binName)
	fmt.Fprintf(w, "  %s version                  print version information\n", binName)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Example:")
	fmt.Fprintf(w, "  %s check --format csv user@example.com not-an-email\n", binName)
}

type cmd struct {
	bin    string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (c *cmd) flagSet(name, args string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = func() {
		fmt.Fprintf(c.stderr, "Usage: %s %s %s\n", c.bin, name, args)
		fs.PrintDefaults()
	}
	return fs
}

// parse parses args into fs. ok is false when the command should stop
// and exit with code. ContinueOnError leaves reporting parse errors to us.
func (c *cmd) parse(fs *pflag.FlagSet, args []string) (code int, ok bool) {
	err := fs.Parse(args)
	switch {
	case err == nil:
		return ExitOK, true
	case errors.Is(err, pflag.ErrHelp):
		return ExitOK, false
	default:
		fmt.Fprintln(c.stderr, "error:", err)
		fs.Usage()
		return ExitError, false
	}
}

// DemoEmails are the sample addresses printed by the demo command.
var DemoEmails = []string{
	"test@example.com",
	"user.name+tag@example.co.uk",
	"invalid.email@",
	"@invalid.com",
	"invalid@.com",
	"invalid@com",
	"test..test@example.com",
	"test@example..com",
	strings.Repeat("a", 65) + "@example.com",
	"test@" + strings.Repeat("a", 256) + ".com",
	"valid_email123@sub.example.com",
	"  spaces@example.com  ",
	"special!#@example.com",
	"no.dots@domaincom",
}

func (c *cmd) demo(args []string) int {
	fs := c.flagSet("demo", "[flags]")
	format := fs.StringP("format", "f", "text", "output format: text, json, yaml, csv, xlsx")
	if code, ok := c.parse(fs, args); !ok {
		return code
	}
	f, err := report.ParseFormat(*format)
	if err != nil {
		fmt.Fprintln(c.stderr, "error:", err)
		return ExitError
	}

	v := validate.NewEmailValidator()
	rows := make([]report.Row, 0, len(DemoEmails))
	for _, e := range DemoEmails {
		rows = append(rows, report.NewRow(e, v.Check(e)))
	}
	if err := report.Write(c.stdout, f, rows); err != nil {
		fmt.Fprintln(c.stderr, "error:", err)
		return ExitError
	}
	return ExitOK
}

func (c *cmd) check(args []string) int {
	fs := c.flagSet("check", "[flags] [email...]")
	format := fs.StringP("format", "f", "text", "output format: text, json, yaml, csv, xlsx")
	output := fs.StringP("output", "o", "", "write results to this file instead of stdout")
	input := fs.StringP("input", "i", "", "read addresses from this file, one per line")
	lang := fs.String("lang", "en", "message locale: "+strings.Join(builtinMessages().Locales(), ", "))
	verbose := fs.BoolP("verbose", "v", false, "log each verdict to stderr")
	if code, ok := c.parse(fs, args); !ok {
		return code
	}

	f, err := report.ParseFormat(*format)
	if err != nil {
		fmt.Fprintln(c.stderr, "error:", err)
		return ExitError
	}
	messages := builtinMessages()
	if !messages.HasLocale(*lang) {
		fmt.Fprintf(c.stderr, "error: unknown locale %q (available: %s)\n",
			*lang, strings.Join(messages.Locales(), ", "))
		return ExitError
	}

	logger := zap.NewNop()
	if *verbose {
		logger = logging.MustBuildLogger("debug", "dev")
		defer logger.Sync()
	}

	candidates := fs.Args()
	if len(candidates) == 0 {
		src := c.stdin
		if *input != "" {
			fh, err := os.Open(*input)
			if err != nil {
				fmt.Fprintln(c.stderr, "error:", err)
				return ExitError
			}
			defer fh.Close()
			src = fh
		}
		if candidates, err = readLines(src); err != nil {
			fmt.Fprintln(c.stderr, "error: read input:", err)
			return ExitError
		}
	}
	if len(candidates) == 0 {
		fmt.Fprintln(c.stderr, "error: no addresses to check")
		fs.Usage()
		return ExitError
	}

	v := validate.NewEmailValidator()
	rows := make([]report.Row, 0, len(candidates))
	for _, e := range candidates {
		res := v.Check(e)
		logger.Debug("email validated", logging.ValidationFields(e, res.Valid, string(res.Rule))...)
		rows = append(rows, report.NewRow(e, messages.Localize(res, *lang)))
	}

	if err := c.writeReport(*output, f, rows); err != nil {
		fmt.Fprintln(c.stderr, "error:", err)
		return ExitError
	}

	if _, invalid := report.Summary(rows); invalid > 0 {
		return ExitInvalid
	}
	return ExitOK
}

func (c *cmd) writeReport(path string, f report.Format, rows []report.Row) (err error) {
	if path == "" {
		return report.Write(c.stdout, f, rows)
	}
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fh.Close(); err == nil {
			err = cerr
		}
	}()
	return report.Write(fh, f, rows)
}

func (c *cmd) serve(args []string) int {
	fs := c.flagSet("serve", "[flags]")
	config.RegisterFlags(fs)
	if code, ok := c.parse(fs, args); !ok {
		return code
	}

	err := app.Run(context.Background(), app.Hooks{
		Name: c.bin,
		LoadConfig: func(logger *zap.Logger) (*config.CoreConfig, error) {
			return config.Load(logger, fs)
		},
		BuildHandler: app.BuildHandler,
	})
	if err != nil {
		fmt.Fprintln(c.stderr, "error:", err)
		return ExitError
	}
	return ExitOK
}

func builtinMessages() *validate.MessageProvider {
	m := validate.NewMessageProvider()
	m.RegisterBuiltinLocales()
	return m
}

// readLines returns the non-blank lines of r. Lines are passed to the
// validator untrimmed.
func readLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	var lines []string
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, sc.Err()
}
