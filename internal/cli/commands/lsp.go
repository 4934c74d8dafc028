package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/derivewhere/internal/lsp"
	"github.com/conduit-lang/derivewhere/internal/tooling"
)

// NewLSPCommand creates the LSP command
func NewLSPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the derivewhere Language Server Protocol (LSP) server.

The server provides editor integration for *.dw.yaml files:
  • Diagnostics as you type
  • Completion of keys, traits and directive options
  • Hover with the generated impls
  • Go-to-definition and find references
  • Document and workspace symbols

The LSP server communicates via JSON-RPC over stdin/stdout.
It is typically started automatically by your editor.`,
		Args: cobra.NoArgs,
		RunE: runLSP,
	}
}

func runLSP(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	api := tooling.NewAPIWithConfig(&tooling.Config{Traits: p.config.TraitOptions()})
	server := lsp.NewServer(api, logger.Named("lsp"))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx)
}
