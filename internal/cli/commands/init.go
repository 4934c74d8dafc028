package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/derivewhere/internal/cli/config"
	"github.com/conduit-lang/derivewhere/internal/cli/ui"
	"github.com/conduit-lang/derivewhere/internal/compiler/traits"
)

var (
	initYes   bool
	initForce bool
)

// NewInitCommand creates the init command
func NewInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a derivewhere.yml",
		Long: `Create derivewhere.yml in the working directory. The settings are asked
for interactively unless --yes accepts the defaults.`,
		Example: `  derivewhere init
  derivewhere init --yes`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}

	cmd.Flags().BoolVarP(&initYes, "yes", "y", false, "Accept the defaults without prompting")
	cmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := workDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		dir = wd
	}

	if config.Exists(dir) && !initForce {
		return fmt.Errorf("%s already exists in %s (use --force to overwrite)", config.FileName, dir)
	}

	cfg := config.Default()
	if !initYes {
		if err := askConfig(cfg); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return &configError{err: err}
	}

	path, err := cfg.Write(dir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	ui.WriteSuccess(out, fmt.Sprintf("Created %s", filepath.Base(path)), noColor)
	fmt.Fprintln(out, ui.Info("Run `derivewhere generate` to write the impls.", noColor))
	return nil
}

// askConfig prompts for the settings that usually differ between projects
func askConfig(cfg *config.Config) error {
	strategies := make([]string, len(traits.Strategies))
	for i, s := range traits.Strategies {
		strategies[i] = string(s)
	}

	questions := []*survey.Question{
		{
			Name: "strategy",
			Prompt: &survey.Select{
				Message: "Enum ordering strategy:",
				Options: strategies,
				Default: cfg.Strategy,
				Description: func(value string, _ int) string {
					switch traits.Strategy(value) {
					case traits.StrategyIntrinsic:
						return "nightly discriminant_value"
					case traits.StrategyPairwise:
						return "no unsafe code"
					default:
						return "transmute the discriminant"
					}
				},
			},
		},
		{
			Name:   "zeroize",
			Prompt: &survey.Confirm{Message: "Enable the Zeroize traits?", Default: cfg.Features.Zeroize},
		},
		{
			Name:     "output",
			Prompt:   &survey.Input{Message: "Output directory:", Default: cfg.Output.Dir},
			Validate: survey.Required,
		},
	}

	answers := struct {
		Strategy string `survey:"strategy"`
		Zeroize  bool   `survey:"zeroize"`
		Output   string `survey:"output"`
	}{}
	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}

	cfg.Strategy = answers.Strategy
	cfg.Features.Zeroize = answers.Zeroize
	cfg.Output.Dir = answers.Output

	if answers.Zeroize {
		onDrop := false
		prompt := &survey.Confirm{Message: "Enable ZeroizeOnDrop as well?"}
		if err := survey.AskOne(prompt, &onDrop); err != nil {
			return err
		}
		cfg.Features.ZeroizeOnDrop = onDrop
	}
	return nil
}
