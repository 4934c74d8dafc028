package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/derivewhere/internal/cli/ui"
	"github.com/conduit-lang/derivewhere/internal/compiler/build"
	"github.com/conduit-lang/derivewhere/internal/compiler/errors"
	"github.com/conduit-lang/derivewhere/internal/compiler/traits"
)

var (
	generateForce    bool
	generateJSON     bool
	generateStrategy string
)

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate [paths...]",
		Aliases: []string{"g", "gen"},
		Short:   "Generate Rust impls from item descriptions",
		Long: `Expand every *.dw.yaml description below the given paths (default: the
configured sources) and write one Rust file per description into the output
directory.

Descriptions whose content and options are unchanged since the last run are
skipped. A file with any diagnostic is left untouched and the command fails.`,
		Example: `  # Generate from the configured sources
  derivewhere generate

  # Regenerate everything, ignoring the cache
  derivewhere generate --force

  # Compare enums without unsafe code
  derivewhere generate --strategy pairwise

  # Print diagnostics as JSON (useful for tooling)
  derivewhere generate --json items/`,
		RunE: runGenerate,
	}

	cmd.Flags().BoolVarP(&generateForce, "force", "f", false, "Ignore the cache and regenerate every file")
	cmd.Flags().BoolVar(&generateJSON, "json", false, "Output diagnostics in JSON format")
	cmd.Flags().StringVarP(&generateStrategy, "strategy", "s", "", "Enum ordering strategy (ordinal, intrinsic, pairwise)")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}
	if generateStrategy != "" {
		if _, err := traits.ParseStrategy(generateStrategy); err != nil {
			return &configError{err: err}
		}
		p.config.Strategy = generateStrategy
	}

	files, err := p.itemFiles(args)
	if err != nil {
		return err
	}

	opts := p.buildOptions()
	opts.Force = generateForce

	var bar *ui.ProgressBar
	if !generateJSON {
		opts.Progress, bar = ui.BuildProgress(cmd.ErrOrStderr(), len(files), noColor)
	}

	result, err := build.New(opts, logger).Build(cmd.Context(), files)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if generateJSON {
		if err := writeJSONDiagnostics(out, result.Diagnostics()); err != nil {
			return err
		}
	} else {
		ui.BuildSummary(out, result, noColor)
	}

	if result.HasErrors() {
		return fmt.Errorf("%d diagnostic(s) reported", len(result.Diagnostics()))
	}

	if !generateJSON {
		ui.WriteSuccess(out, fmt.Sprintf("Generated %s", plural(len(files), "description")), noColor)
	}
	return nil
}

// writeJSONDiagnostics prints the diagnostics as a JSON array, empty when
// there are none
func writeJSONDiagnostics(w io.Writer, list errors.ErrorList) error {
	if list == nil {
		list = errors.ErrorList{}
	}
	data, err := list.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to encode diagnostics: %w", err)
	}
	_, err = fmt.Fprintln(w, data)
	return err
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
