package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/crudkit/internal/cli/ui"
	"github.com/conduit-lang/crudkit/internal/codegen"
	"github.com/conduit-lang/crudkit/internal/schema"
)

func newRoutesCommand(g *globals) *cobra.Command {
	var names []string

	cmd := &cobra.Command{
		Use:   "routes [dir...]",
		Short: "List the endpoints generated for each resource",
		Long: `Print the HTTP endpoints crudkit generates, assuming each resource is
mounted at /<table>.

Examples:
  crudkit routes
  crudkit routes ./models --resource Post`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			files, err := loadResources(g, cfg, args)
			if err != nil {
				return err
			}

			wanted := map[string]bool{}
			if len(names) > 0 {
				known := resourceNames(files)
				for _, name := range names {
					if !contains(known, name) {
						return &resourceNotFoundError{name: name, suggestions: ui.FindSimilar(name, known, 3)}
					}
					wanted[name] = true
				}
			}

			table := ui.NewTable(cmd.OutOrStdout(), noColor(), "RESOURCE", "METHOD", "PATH", "HANDLER", "AUTH")
			for _, f := range files {
				for _, res := range f.Resources {
					if len(wanted) > 0 && !wanted[res.Name] {
						continue
					}
					for _, r := range codegen.Routes(res) {
						table.AddRow(res.Name, r.Method, mountPath(res, r.Pattern), res.Name+"Resource."+r.Handler, authLabel(res))
					}
				}
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&names, "resource", "r", nil, "only list these resources")
	return cmd
}

func mountPath(res *schema.Resource, pattern string) string {
	return "/" + res.Options.Table + strings.TrimSuffix(pattern, "/")
}

func authLabel(res *schema.Resource) string {
	if res.Options.Auth {
		return "subject"
	}
	return "none"
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
