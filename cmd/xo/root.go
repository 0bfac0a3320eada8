package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/xojs/xo-sub000/internal/linter"
	xolog "github.com/xojs/xo-sub000/internal/log"
)

// Flag values.
var (
	cwd           string
	fix           bool
	quiet         bool
	verbose       bool
	space         string
	semicolon     bool
	prettierFlag  string
	react         bool
	ts            bool
	ignores       []string
	reporter      string
	stdin         bool
	stdinFilename string
	printConfig   string
	noCache       bool
	noColor       bool
)

// newLinter builds the Linter for a run. Tests replace it to inject a fake
// engine.
var newLinter = linter.New

// rootCmd lints the files matched by its arguments.
var rootCmd = &cobra.Command{
	Use:   "xo [patterns...]",
	Short: "Lint JavaScript and TypeScript with sensible defaults",
	Long: `xo lints JavaScript and TypeScript files with an opinionated ESLint
configuration. It finds xo.config.* (or the xo field of package.json) from
the working directory upward, applies shorthand options such as --space and
--prettier, and runs ESLint with the composed configuration.

Patterns default to every recognized source file under the working
directory. Files in .gitignore and common build directories are skipped.`,
	Example: `  xo
  xo --space=4 'src/**/*.ts'
  echo 'const x = 1' | xo --stdin --stdin-filename=x.js
  xo --print-config=src/index.ts`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		xolog.Setup(verbose, quiet)
		if noColor {
			color.NoColor = true
		}
	},
	RunE: runLint,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&cwd, "cwd", ".", "working directory")
	f.BoolVar(&fix, "fix", false, "automatically fix problems")
	f.StringVar(&space, "space", "", "indent with spaces instead of tabs (--space or --space=N)")
	f.Lookup("space").NoOptDefVal = "true"
	f.BoolVar(&semicolon, "semicolon", true, "require semicolons (--semicolon=false to forbid them)")
	f.StringVar(&prettierFlag, "prettier", "", "conform to Prettier (--prettier or --prettier=compat)")
	f.Lookup("prettier").NoOptDefVal = "true"
	f.BoolVar(&react, "react", false, "include React rules")
	f.BoolVar(&ts, "ts", true, "lint TypeScript files with type information")
	f.StringArrayVar(&ignores, "ignore", nil, "additional ignore pattern (repeatable)")
	f.StringVar(&reporter, "reporter", "stylish", "reporter to use (stylish, json)")
	f.BoolVar(&stdin, "stdin", false, "lint code read from stdin")
	f.StringVar(&stdinFilename, "stdin-filename", "", "file path to assume for --stdin")
	f.StringVar(&printConfig, "print-config", "", "print the effective configuration for a file and exit")
	f.BoolVar(&noCache, "no-cache", false, "disable the lint result cache")

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "report errors only")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(versionCmd)
}

func runLint(cmd *cobra.Command, args []string) error {
	formatter, err := linter.GetFormatter(reporter)
	if err != nil {
		return configFailure(err)
	}
	opts, err := lintOptions(cmd)
	if err != nil {
		return configFailure(err)
	}
	l, err := newLinter(opts)
	if err != nil {
		return configFailure(err)
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if printConfig != "" {
		fc, err := l.GetConfig(ctx, printConfig)
		if err != nil {
			return configFailure(err)
		}
		data, err := json.MarshalIndent(fc, "", "  ")
		if err != nil {
			return configFailure(err)
		}
		_, err = fmt.Fprintf(out, "%s\n", data)
		return err
	}

	var report *linter.Report
	if stdin {
		code, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		report, err = l.LintText(ctx, string(code), linter.TextOptions{FilePath: stdinFilename, WarnIfIgnored: true})
		if err != nil {
			return configFailure(err)
		}
		if fix {
			return writeFixedText(out, report, string(code))
		}
	} else {
		report, err = l.LintFiles(ctx, args)
		if err != nil {
			return configFailure(err)
		}
		if fix {
			if err := l.OutputFixes(report); err != nil {
				return fmt.Errorf("writing fixes: %w", err)
			}
		}
	}

	for _, d := range report.UsedDeprecatedRules() {
		slog.Debug("deprecated rule in use", "rule", d.RuleID, "replacedBy", d.ReplacedBy)
	}
	if err := formatter.Format(report.Results, out); err != nil {
		return err
	}
	if report.ErrorCount > 0 {
		return exitError(ExitLintErrors, "")
	}
	return nil
}

// writeFixedText prints the fixed code, or the input when nothing changed.
func writeFixedText(w io.Writer, report *linter.Report, code string) error {
	if len(report.Results) > 0 && report.Results[0].Output != "" {
		code = report.Results[0].Output
	}
	_, err := io.WriteString(w, code)
	return err
}

// lintOptions builds linter options from the flags. Shorthand flags only
// take part when given on the command line.
func lintOptions(cmd *cobra.Command) (linter.Options, error) {
	opts := linter.Options{
		Cwd:      cwd,
		FilePath: stdinFilename,
		Fix:      fix,
		Quiet:    quiet,
		TS:       ts,
		Cache:    !noCache,
		Ignores:  ignores,
		React:    react,
	}
	flags := cmd.Flags()
	if flags.Changed("space") {
		opts.Space = parseSpace(space)
	}
	if flags.Changed("semicolon") {
		opts.Semicolon = &semicolon
	}
	if flags.Changed("prettier") {
		v, err := parsePrettier(prettierFlag)
		if err != nil {
			return linter.Options{}, err
		}
		opts.Prettier = v
	}
	return opts, nil
}

// parseSpace keeps a width as the raw string and turns anything else that
// reads as a boolean into one.
func parseSpace(s string) any {
	if _, err := strconv.Atoi(s); err == nil {
		return s
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

func parsePrettier(s string) (any, error) {
	if s == "compat" {
		return s, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, errors.New(`--prettier must be true, false, or "compat"`)
	}
	return b, nil
}
