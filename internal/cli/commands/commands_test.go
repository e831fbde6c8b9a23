package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/crudkit/internal/cli/config"
	"github.com/conduit-lang/crudkit/internal/codegen"
	"github.com/conduit-lang/crudkit/internal/schema"
)

const modelsSource = `package models

//crudkit:resource table=posts partials
type Post struct {
	ID    int64  ` + "`crud:\"primary_key,generated\"`" + `
	Title string ` + "`validate:\"required\"`" + `
}

//crudkit:resource table=tags create=false update=false delete=false
type Tag struct {
	Name string ` + "`crud:\"primary_key\"`" + `
}
`

// workspace creates an isolated working directory holding dir/models.go.
func workspace(t *testing.T, dir, source string) string {
	t.Helper()
	root := t.TempDir()
	t.Chdir(root)
	t.Setenv("HOME", t.TempDir())

	pkg := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(pkg, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(pkg, "models.go"), []byte(source), 0644))
	return pkg
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "crudkit", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, expected := range []string{"version", "generate", "routes", "init"} {
		assert.Contains(t, names, expected)
	}

	for _, flag := range []string{"config", "verbose", "no-color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVersionCommand(t *testing.T) {
	Version = "1.0.0-test"
	GitCommit = "abc123"
	defer func() { Version, GitCommit = "dev", "unknown" }()

	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "crudkit version: 1.0.0-test")
	assert.Contains(t, out, "Git commit: abc123")
	assert.Contains(t, out, "Go version: go")
}

func TestGenerateWritesFiles(t *testing.T) {
	pkg := workspace(t, "models", modelsSource)

	out, _, err := run(t, "generate", pkg)
	require.NoError(t, err)
	assert.Contains(t, out, "Generated 2 resource(s)")
	assert.Equal(t, 2, strings.Count(out, statusWritten))

	for _, name := range []string{"post_crud.go", "tag_crud.go"} {
		code, err := os.ReadFile(filepath.Join(pkg, name))
		require.NoError(t, err, name)
		assert.True(t, strings.HasPrefix(string(code), codegen.Header), name)
		assert.Contains(t, string(code), "package models")
	}

	out, _, err = run(t, "generate", pkg)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, statusUnchanged))
	assert.NotContains(t, out, statusWritten)
}

func TestGenerateDryRunAndCheck(t *testing.T) {
	pkg := workspace(t, "models", modelsSource)

	out, _, err := run(t, "generate", "--dry-run", pkg)
	require.NoError(t, err)
	assert.Contains(t, out, statusPending)
	assert.NoFileExists(t, filepath.Join(pkg, "post_crud.go"))

	out, _, err = run(t, "generate", "--check", pkg)
	assert.ErrorIs(t, err, errStale)
	assert.Contains(t, out, statusStale)

	_, _, err = run(t, "generate", pkg)
	require.NoError(t, err)
	_, _, err = run(t, "generate", "--check", pkg)
	assert.NoError(t, err)

	// A hand edit makes the file stale again.
	path := filepath.Join(pkg, "tag_crud.go")
	require.NoError(t, os.WriteFile(path, []byte(codegen.Header+"\n\npackage models\n"), 0644))
	_, _, err = run(t, "generate", "--check", pkg)
	assert.ErrorIs(t, err, errStale)
}

func TestGenerateOutputDirectory(t *testing.T) {
	pkg := workspace(t, "models", modelsSource)

	_, _, err := run(t, "generate", "--out", "gen", pkg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not the package directory")
	assert.NoFileExists(t, filepath.Join("gen", "post_crud.go"))
	assert.NoFileExists(t, filepath.Join(pkg, "post_crud.go"))

	_, _, err = run(t, "generate", "--out", "models/", pkg)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(pkg, "post_crud.go"))
}

func TestGenerateUsesConfig(t *testing.T) {
	pkg := workspace(t, "models", modelsSource)

	cfg := config.Default()
	cfg.Input = []string{"models"}
	require.NoError(t, config.Write(config.FileName, cfg))

	_, _, err := run(t, "generate")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(pkg, "post_crud.go"))
	assert.FileExists(t, filepath.Join(pkg, "tag_crud.go"))
}

func TestGenerateNoResources(t *testing.T) {
	pkg := workspace(t, "plain", "package plain\n\ntype Thing struct{ ID int }\n")

	out, _, err := run(t, "generate", pkg)
	require.NoError(t, err)
	assert.Contains(t, out, "no //crudkit:resource structs found")
}

func TestGenerateDuplicateTargets(t *testing.T) {
	source := `package models

//crudkit:resource file=shared
type A struct {
	ID int ` + "`crud:\"primary_key\"`" + `
}

//crudkit:resource file=shared
type B struct {
	ID int ` + "`crud:\"primary_key\"`" + `
}
`
	pkg := workspace(t, "models", source)

	_, _, err := run(t, "generate", pkg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both generate")
}

func TestGenerateSchemaErrors(t *testing.T) {
	source := `package models

//crudkit:resource bogus=1
type Post struct {
	Title string
}
`
	pkg := workspace(t, "models", source)

	_, _, err := run(t, "generate", pkg)
	require.Error(t, err)

	var list schema.ErrorList
	require.ErrorAs(t, err, &list)
	assert.Len(t, list, 2)

	var buf bytes.Buffer
	reportError(&buf, err)
	assert.Contains(t, buf.String(), "INVALID RESOURCES")
	assert.Contains(t, buf.String(), `unknown option "bogus"`)
	assert.Contains(t, buf.String(), "no field is marked primary_key")
}

func TestRoutes(t *testing.T) {
	pkg := workspace(t, "models", modelsSource)

	out, _, err := run(t, "routes", pkg)
	require.NoError(t, err)
	for _, want := range []string{
		"POST    /posts",
		"/posts/{id}",
		"PostResource.Patch",
		"PostResource.List",
		"TagResource.Read",
		"subject",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "TagResource.Create")

	out, _, err = run(t, "routes", "--resource", "Tag", pkg)
	require.NoError(t, err)
	assert.Contains(t, out, "/tags/{id}")
	assert.NotContains(t, out, "/posts")
}

func TestRoutesUnknownResource(t *testing.T) {
	pkg := workspace(t, "models", modelsSource)

	_, _, err := run(t, "routes", "--resource", "Pst", pkg)
	var notFound *resourceNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.NotEmpty(t, notFound.suggestions)
	assert.Equal(t, "Post", notFound.suggestions[0])

	var buf bytes.Buffer
	reportError(&buf, err)
	assert.Contains(t, buf.String(), "No resource named 'Pst'.")
	assert.Contains(t, buf.String(), "Did you mean: Post")
}

func TestInit(t *testing.T) {
	workspace(t, "models", modelsSource)

	out, _, err := run(t, "init", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Created crudkit.yml")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default().Input, cfg.Input)

	_, _, err = run(t, "init", "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = run(t, "init", "--yes", "--force")
	assert.NoError(t, err)
}

func TestConfigError(t *testing.T) {
	workspace(t, "models", modelsSource)

	_, _, err := run(t, "--config", "missing.yml", "generate")
	var cfgErr *configError
	require.ErrorAs(t, err, &cfgErr)

	var buf bytes.Buffer
	reportError(&buf, err)
	assert.Contains(t, buf.String(), "CONFIGURATION ERROR")
}

func TestVerboseLogging(t *testing.T) {
	pkg := workspace(t, "models", modelsSource)

	_, stderr, err := run(t, "--verbose", "generate", "--dry-run", pkg)
	require.NoError(t, err)
	assert.Contains(t, stderr, "parsed directory")
	assert.Contains(t, stderr, "generated resource")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
	assert.Nil(t, splitList(""))
	assert.NoError(t, validatePositive("12"))
	assert.Error(t, validatePositive("0"))
	assert.Error(t, validatePositive("x"))
}
