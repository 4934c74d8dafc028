package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/derivewhere/internal/cli/ui"
	"github.com/conduit-lang/derivewhere/internal/compiler/build"
	"github.com/conduit-lang/derivewhere/internal/compiler/schema"
	"github.com/conduit-lang/derivewhere/internal/watch"
)

// ignoredPatterns are never watched. target/ holds cargo build output.
var ignoredPatterns = []string{"target", "node_modules", "*.swp", "*~"}

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Regenerate impls as descriptions change",
		Long: `Generate every description once, then watch the configured sources and
regenerate each *.dw.yaml file as soon as it is saved. Diagnostics are
printed as they occur; the previous output stays in place until the
description is fixed.

Press Ctrl+C to stop.`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return watchProject(ctx, cmd, p)
}

// watchProject runs the watch loop until ctx is done
func watchProject(ctx context.Context, cmd *cobra.Command, p *project) error {
	out := cmd.OutOrStdout()
	report := func(result *build.Result) {
		if len(result.Files) > 0 {
			ui.BuildSummary(out, result, noColor)
		}
	}

	roots := p.sourceRoots()
	regen := watch.NewRegenerator(build.New(p.buildOptions(), logger), roots, report, logger)
	if _, err := regen.FullBuild(ctx); err != nil {
		return err
	}

	watcher, err := watch.NewFileWatcher(roots, []string{"*" + schema.Extension}, ignoredPatterns, regen.OnChange(ctx), logger)
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}

	banner := color.New(color.FgCyan, color.Bold)
	if noColor {
		banner.DisableColor()
	}
	banner.Fprintf(out, "👀 Watching %s for %s changes\n", p.relativeList(roots), schema.Extension)
	fmt.Fprintln(out, ui.Info("Press Ctrl+C to stop", noColor))

	<-ctx.Done()

	if err := watcher.Stop(); err != nil {
		return fmt.Errorf("error stopping watcher: %w", err)
	}
	ui.WriteSuccess(out, fmt.Sprintf("Stopped after %d regeneration(s)", regen.Generations()), noColor)
	return nil
}
