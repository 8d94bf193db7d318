package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/itsmostafa/prayog/internal/input"
	"github.com/itsmostafa/prayog/internal/session"
)

func newEvalCmd(opts *rootOptions) *cobra.Command {
	var code string

	evalCmd := &cobra.Command{
		Use:   "eval [file|-]",
		Short: "Run a script through the session without prompts",
		Long: `Run a script unit by unit exactly as if it were typed into the session.
Values of bare expressions are printed. The command fails if any unit failed.

The script comes from -e, from the given file, or from standard input when
the argument is "-" or missing.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if code != "" && len(args) > 0 {
				return fmt.Errorf("use either -e or a file, not both")
			}

			var src io.Reader
			switch {
			case code != "":
				src = strings.NewReader(code)
			case len(args) == 0 || args[0] == "-":
				src = cmd.InOrStdin()
			default:
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open script: %w", err)
				}
				defer f.Close()
				src = f
			}

			out := cmd.OutOrStdout()
			a, err := newApp(cmd, opts, out)
			if err != nil {
				return err
			}

			loop := session.NewLoop(input.NewScanner(src), a.coord, a.presenter, out, session.LoopOptions{
				Prompt: a.cfg.Prompt,
				Logger: a.logger,
			})
			if err := loop.Run(cmd.Context()); err != nil {
				return err
			}
			if n := loop.Failures(); n > 0 {
				return fmt.Errorf("%d unit(s) failed", n)
			}
			return nil
		},
	}

	evalCmd.Flags().StringVarP(&code, "eval", "e", "", "Code to run instead of a file")

	return evalCmd
}
