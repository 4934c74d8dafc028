package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/derivewhere/internal/cli/ui"
	"github.com/conduit-lang/derivewhere/internal/compiler/build"
)

var checkDiff bool

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Verify generated files are up to date",
		Long: `Expand every description in memory and compare the result with the files
in the output directory. Nothing is written. Fails when a description has a
diagnostic or a generated file differs, which makes it suitable for CI.`,
		Example: `  # Fail if any generated file is stale
  derivewhere check

  # Show what would change
  derivewhere check --diff`,
		RunE: runCheck,
	}

	cmd.Flags().BoolVar(&checkDiff, "diff", false, "Print a diff for every out-of-date file")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	files, err := p.itemFiles(args)
	if err != nil {
		return err
	}

	opts := p.buildOptions()
	opts.Check = true

	result, err := build.New(opts, logger).Build(cmd.Context(), files)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.HasErrors() {
		ui.WriteDiagnostics(out, result.Diagnostics(), noColor)
		return fmt.Errorf("%d diagnostic(s) reported", len(result.Diagnostics()))
	}

	stale := result.Stale()
	if len(stale) == 0 {
		ui.WriteSuccess(out, fmt.Sprintf("%s up to date", plural(len(files), "generated file")), noColor)
		return nil
	}

	names := make([]string, len(stale))
	for i, f := range stale {
		rel := p.relative(f.Output)
		names[i] = fmt.Sprintf("%s (%s)", rel, f.Diff.Stats())
		if checkDiff {
			fmt.Fprint(out, f.Diff.UnifiedDiff(filepath.ToSlash(rel)))
		}
	}

	fmt.Fprint(cmd.ErrOrStderr(), ui.StaleError(names, noColor))
	return fmt.Errorf("%s out of date", plural(len(stale), "generated file"))
}
