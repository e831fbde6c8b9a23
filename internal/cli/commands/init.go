package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/crudkit/internal/cli/config"
	"github.com/conduit-lang/crudkit/internal/cli/ui"
)

func newInitCommand(g *globals) *cobra.Command {
	var (
		yes   bool
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a crudkit.yml in the current directory",
		Long: `Create crudkit.yml, prompting for the input directories and the
resource defaults. Use --yes to accept the defaults without prompting.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.FileName
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			cfg := config.Default()
			if !yes {
				if err := promptConfig(cfg); err != nil {
					return err
				}
			}
			if err := config.Write(path, cfg); err != nil {
				return err
			}
			g.logger.Debug("wrote config", zap.String("file", path), zap.Strings("input", cfg.Input))

			w := cmd.OutOrStdout()
			ui.WriteSuccess(w, "Created "+path, noColor())
			fmt.Fprintln(w, "\nNext steps:")
			fmt.Fprintln(w, "  1. Mark a struct with //crudkit:resource")
			fmt.Fprintln(w, "  2. Run 'crudkit generate'")
			fmt.Fprintln(w, "  3. Mount the generated resource on a chi router")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "accept defaults without prompting")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing crudkit.yml")
	return cmd
}

func promptConfig(cfg *config.Config) error {
	answers := struct {
		Input    string
		Output   string
		MaxLimit string
		Auth     bool
		Partials bool
	}{}

	questions := []*survey.Question{
		{
			Name:     "input",
			Prompt:   &survey.Input{Message: "Directories to scan (comma separated):", Default: strings.Join(cfg.Input, ",")},
			Validate: survey.Required,
		},
		{
			Name:   "output",
			Prompt: &survey.Input{Message: "Output directory (must be the package directory; empty writes next to each source file):", Default: cfg.Output},
		},
		{
			Name:     "maxlimit",
			Prompt:   &survey.Input{Message: "Default max_limit for list requests:", Default: strconv.FormatInt(cfg.Defaults.MaxLimit, 10)},
			Validate: validatePositive,
		},
		{
			Name:   "auth",
			Prompt: &survey.Confirm{Message: "Require a subject and permissions by default?", Default: cfg.Defaults.Auth},
		},
		{
			Name:   "partials",
			Prompt: &survey.Confirm{Message: "Allow include/exclude field selection by default?", Default: cfg.Defaults.Partials},
		},
	}
	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}

	cfg.Input = splitList(answers.Input)
	cfg.Output = strings.TrimSpace(answers.Output)
	cfg.Defaults.MaxLimit, _ = strconv.ParseInt(strings.TrimSpace(answers.MaxLimit), 10, 64)
	cfg.Defaults.Auth = answers.Auth
	cfg.Defaults.Partials = answers.Partials
	return nil
}

func validatePositive(ans interface{}) error {
	s, _ := ans.(string)
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive integer")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
