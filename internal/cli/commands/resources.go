package commands

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/conduit-lang/crudkit/internal/cli/config"
	"github.com/conduit-lang/crudkit/internal/schema"
)

// loadResources parses dirs, or the configured input when dirs is empty.
// Schema problems across every directory are reported together.
func loadResources(g *globals, cfg *config.Config, dirs []string) ([]*schema.File, error) {
	if len(dirs) == 0 {
		dirs = cfg.Input
	}
	parser := schema.NewParser(cfg.Defaults.Schema())

	var (
		files []*schema.File
		errs  schema.ErrorList
	)
	for _, dir := range dirs {
		parsed, err := parser.ParseDir(dir)
		if err != nil {
			if list, ok := err.(schema.ErrorList); ok {
				errs = append(errs, list...)
				continue
			}
			return nil, fmt.Errorf("%s: %w", dir, err)
		}
		count := 0
		for _, f := range parsed {
			count += len(f.Resources)
		}
		g.logger.Debug("parsed directory", zap.String("dir", filepath.Clean(dir)), zap.Int("resources", count))
		files = append(files, parsed...)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return files, nil
}

func resourceNames(files []*schema.File) []string {
	var names []string
	for _, f := range files {
		for _, r := range f.Resources {
			names = append(names, r.Name)
		}
	}
	return names
}
