package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/crudkit/internal/cli/ui"
	"github.com/conduit-lang/crudkit/internal/codegen"
)

const (
	statusWritten   = "written"
	statusUnchanged = "unchanged"
	statusPending   = "would write"
	statusStale     = "stale"
)

// errStale is returned by generate --check when a file is out of date.
var errStale = errors.New("generated files are out of date; run crudkit generate")

func newGenerateCommand(g *globals) *cobra.Command {
	var (
		dryRun bool
		check  bool
		out    string
	)

	cmd := &cobra.Command{
		Use:     "generate [dir...]",
		Aliases: []string{"gen", "g"},
		Short:   "Generate CRUD endpoints for annotated structs",
		Long: `Scan package directories for structs marked //crudkit:resource and
write one <file>_crud.go per resource.

Without arguments the directories listed under "input" in crudkit.yml are
scanned, or the current directory when there is no config file.

Examples:
  crudkit generate
  crudkit generate ./models --out ./models
  crudkit generate --dry-run
  crudkit generate --check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("out") {
				cfg.Output = out
			}

			files, err := loadResources(g, cfg, args)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprint(w, ui.Warning("no //crudkit:resource structs found", noColor()))
				return nil
			}

			gen := codegen.NewGenerator()
			table := ui.NewTable(w, noColor(), "RESOURCE", "TABLE", "ROUTES", "FILE", "STATUS")
			targets := map[string]string{}
			stale := 0
			for _, file := range files {
				dir, err := outputDir(cfg.Output, filepath.Dir(file.Path))
				if err != nil {
					return err
				}
				for _, res := range file.Resources {
					path := filepath.Join(dir, codegen.FileName(res))
					if prev, dup := targets[path]; dup {
						return fmt.Errorf("%s and %s both generate %s; set file= on one of them", prev, res.Name, path)
					}
					targets[path] = res.Name

					code, err := gen.Generate(res, file.Package)
					if err != nil {
						return err
					}
					status, err := emit(path, code, dryRun || check)
					if err != nil {
						return err
					}
					if check && status == statusPending {
						status = statusStale
						stale++
					}
					g.logger.Debug("generated resource",
						zap.String("resource", res.Name),
						zap.String("file", path),
						zap.String("status", status),
					)
					table.AddRow(res.Name, res.Options.Table, strconv.Itoa(len(codegen.Routes(res))), path, status)
				}
			}
			table.Render()

			if stale > 0 {
				return errStale
			}
			if !dryRun && !check {
				fmt.Fprintln(w)
				ui.WriteSuccess(w, fmt.Sprintf("Generated %d resource(s)", table.Len()), noColor())
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "report what would be written without writing")
	cmd.Flags().BoolVar(&check, "check", false, "fail when a generated file is missing or out of date")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output directory, which must be the source package directory (default: next to each source file)")

	return cmd
}

// outputDir returns the directory files generated from the package in src
// are written to. Generated code refers to resource types unqualified and
// declares the source package, so out must name that same directory.
func outputDir(out, src string) (string, error) {
	if out == "" {
		return src, nil
	}
	srcInfo, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("stat package directory: %w", err)
	}
	outInfo, err := os.Stat(out)
	if err != nil || !os.SameFile(outInfo, srcInfo) {
		return "", fmt.Errorf("output directory %s is not the package directory %s; generated code must live in the package that declares its resources", out, src)
	}
	return out, nil
}

// emit writes code to path unless the file already holds it. With dryRun
// nothing is written and a differing file reports statusPending.
func emit(path string, code []byte, dryRun bool) (string, error) {
	current, err := os.ReadFile(path)
	switch {
	case err == nil && bytes.Equal(current, code):
		return statusUnchanged, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("read %s: %w", path, err)
	case dryRun:
		return statusPending, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, code, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return statusWritten, nil
}
