package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/itsmostafa/prayog/internal/input"
	"github.com/itsmostafa/prayog/internal/session"
	"github.com/itsmostafa/prayog/internal/version"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configFile  string
	engine      string
	prompt      string
	noColor     bool
	historyFile string
	logLevel    string
	sets        []string
	varsFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "prayog",
		Short: "Interactive scripting session with persistent variables",
		Long: `Prayog is an interactive read-evaluate-print session. Lines are accumulated
until they form a complete unit, bare expressions show their value, and
variables persist from one unit to the next.

Units run on an embedded JavaScript (goja) or Tengo engine.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInteractive(cmd, opts)
		},
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("prayog %s\n", version.String()))

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Path to a TOML config file")
	flags.StringVar(&opts.engine, "engine", "", "Engine to run units on (js, tengo)")
	flags.StringVar(&opts.prompt, "prompt", "", "Prompt shown before each unit")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	flags.StringVar(&opts.historyFile, "history-file", "", "Where to keep line history")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringArrayVar(&opts.sets, "set", nil, "Seed a variable as name=json (repeatable)")
	flags.StringVar(&opts.varsFile, "vars", "", "Seed variables from a JSON object file")

	rootCmd.AddCommand(
		newEvalCmd(opts),
		newConfigCmd(opts),
	)

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runInteractive(cmd *cobra.Command, opts *rootOptions) error {
	out := cmd.OutOrStdout()
	a, err := newApp(cmd, opts, out)
	if err != nil {
		return err
	}

	var source session.LineSource
	if isTerminal(cmd) {
		rl, err := input.NewReadline(input.ReadlineOptions{
			HistoryFile:  a.cfg.HistoryFile,
			HistoryLimit: a.cfg.HistoryLimit,
		})
		if err != nil {
			return err
		}
		defer rl.Close()
		source = rl
	} else {
		source = input.NewScanner(cmd.InOrStdin())
	}

	welcome := a.cfg.WelcomeMessage
	if welcome != "" {
		welcome += "\n"
	} else {
		welcome = a.presenter.Banner(a.engine.Name(), version.Version)
	}

	loop := session.NewLoop(source, a.coord, a.presenter, out, session.LoopOptions{
		Prompt:   a.cfg.Prompt,
		Welcome:  welcome,
		Farewell: a.presenter.Farewell(),
		Logger:   a.logger,
	})
	return loop.Run(cmd.Context())
}

// isTerminal reports whether both ends of the command are the process TTY.
func isTerminal(cmd *cobra.Command) bool {
	in, ok := cmd.InOrStdin().(*os.File)
	if !ok || !isatty.IsTerminal(in.Fd()) {
		return false
	}
	out, ok := cmd.OutOrStdout().(*os.File)
	return ok && isatty.IsTerminal(out.Fd())
}
