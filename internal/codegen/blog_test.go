package codegen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/crudkit/internal/schema"
)

// TestBlogExampleIsCurrent regenerates the example resources and compares
// them with the committed files, ignoring layout.
func TestBlogExampleIsCurrent(t *testing.T) {
	dir := filepath.Join("..", "..", "examples", "blog")
	file, err := schema.NewParser(schema.DefaultDefaults()).ParseFile(filepath.Join(dir, "models.go"))
	require.NoError(t, err)
	require.Len(t, file.Resources, 2)

	for _, res := range file.Resources {
		t.Run(res.Name, func(t *testing.T) {
			got, err := NewGenerator().Generate(res, file.Package)
			require.NoError(t, err)

			want, err := os.ReadFile(filepath.Join(dir, FileName(res)))
			require.NoError(t, err)
			assert.Equal(t, squash(string(want)), squash(string(got)),
				"%s is stale; run crudkit generate in examples/blog", FileName(res))
		})
	}
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), "")
}
