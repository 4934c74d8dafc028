package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/derivewhere/internal/cli/ui"
	"github.com/conduit-lang/derivewhere/internal/compiler/attr"
	utilstrings "github.com/conduit-lang/derivewhere/internal/util/strings"
)

var traitsAll bool

// NewTraitsCommand creates the traits command
func NewTraitsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "traits [name]",
		Short: "List the derivable traits",
		Long: `List the traits derive_where can implement under the current configuration,
with their fully qualified paths and whether fields can be skipped for them.
The zeroize traits appear when the zeroize feature is enabled or with --all.`,
		Example: `  derivewhere traits
  derivewhere traits PartialOrd
  derivewhere traits --all`,
		Args: cobra.MaximumNArgs(1),
		RunE: runTraits,
	}

	cmd.Flags().BoolVar(&traitsAll, "all", false, "Include traits behind disabled features")

	return cmd
}

func runTraits(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	features := p.config.Features
	if traitsAll {
		features = attr.Features{Zeroize: true, ZeroizeOnDrop: true}
	}

	out := cmd.OutOrStdout()
	if len(args) == 0 {
		ui.Header(out, "Derivable traits", noColor)
		ui.TraitTable(out, features, noColor)
		return nil
	}

	trait, ok := attr.Lookup(args[0], features)
	if !ok {
		suggestions := utilstrings.FindSimilar(args[0], attr.Names(attr.Features{Zeroize: true}), nil)
		fmt.Fprint(cmd.ErrOrStderr(), ui.UnknownTraitError(args[0], suggestions, noColor))
		return fmt.Errorf("unknown trait %q", args[0])
	}

	skip := "no"
	if trait.SupportsSkip() {
		skip = "yes"
	}
	feature := "none"
	if trait.RequiresZeroize() {
		feature = "zeroize"
	}

	kv := ui.NewKeyValueTable(out, noColor)
	kv.AddRow("Trait", trait.String())
	kv.AddRow("Path", trait.Path(""))
	kv.AddRow("Skip", skip)
	kv.AddRow("Feature", feature)
	kv.Render()
	return nil
}
