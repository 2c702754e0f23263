package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shopSource = `package shop

import (
	"net/http"

	"github.com/toyz/addendum/pkg/addendum"
)

// Audited marks a controller for audit logging
//
// @Target("class")
type Audited struct {
	addendum.Annotation

	Level string
}

// UserController serves users
//
// @Prefix("/api")
// @Audited(level="high")
type UserController struct {
	// @Validate("required,email")
	Email string
}

// List returns every user
//
// @Route("GET /users")
func (c *UserController) List(w http.ResponseWriter, r *http.Request) {}

// helper has no annotations
type helper struct{}
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func shopDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "go.mod"), "module example.com/shop\n\ngo 1.25\n")
	writeFile(t, filepath.Join(dir, "shop", "users.go"), shopSource)
	return dir
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	var out, errOut bytes.Buffer
	cmd := NewRootCommand("test")
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestParseTargets(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	targets, err := ParseTargets([]string{"./...", "internal/...", "pkg"})
	require.NoError(t, err)
	assert.Equal(t, []ScanTarget{
		{Dir: wd, Recursive: true},
		{Dir: filepath.Join(wd, "internal"), Recursive: true},
		{Dir: filepath.Join(wd, "pkg")},
	}, targets)

	targets, err = ParseTargets(nil)
	require.NoError(t, err)
	assert.Equal(t, []ScanTarget{{Dir: wd}}, targets)
}

func TestPackagePath(t *testing.T) {
	dir := shopDir(t)

	pkg, err := PackagePath(filepath.Join(dir, "shop"))
	require.NoError(t, err)
	assert.Equal(t, "example.com/shop/shop", pkg)

	pkg, err = PackagePath(dir)
	require.NoError(t, err)
	assert.Equal(t, "example.com/shop", pkg)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig("", dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"), dir)
	assert.ErrorContains(t, err, "failed to read config")

	writeFile(t, filepath.Join(dir, ConfigFile), "resolver: namespace\nignore: [Audited]\nalias_tag: As\nverbose: true\n")
	cfg, err = LoadConfig("", dir)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Resolver:     ResolverNamespace,
		Ignore:       []string{"Audited"},
		AliasTag:     "As",
		NamespaceTag: "Namespace",
		Verbose:      true,
	}, cfg)

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "resolver: magic\n")
	_, err = LoadConfig(bad, dir)
	assert.ErrorContains(t, err, `unknown resolver "magic"`)

	writeFile(t, bad, "resolver: [\n")
	_, err = LoadConfig(bad, dir)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestWorkspace(t *testing.T) {
	dir := shopDir(t)

	ws, err := NewWorkspace(DefaultConfig(), []ScanTarget{{Dir: dir, Recursive: true}}, zerolog.Nop())
	require.NoError(t, err)

	assert.True(t, ws.Registry.IsAnnotation("Audited"))
	assert.Equal(t, []string{"UserController", "helper"}, ws.Classes())

	report, err := ws.Inspect("UserController")
	require.NoError(t, err)
	require.Len(t, report.Annotations, 2)
	assert.Equal(t, "Routing_Prefix", report.Annotations[0].TypeName())
	assert.Equal(t, "high", report.Annotations[1].GetString("level"))
	require.Len(t, report.Methods, 1)
	assert.Equal(t, "List", report.Methods[0].Name)
	require.Len(t, report.Properties, 1)
	assert.Equal(t, "Email", report.Properties[0].Name)

	helper, err := ws.Inspect("helper")
	require.NoError(t, err)
	assert.False(t, helper.Annotated())
}

func TestWorkspace_Reload(t *testing.T) {
	dir := shopDir(t)
	file := filepath.Join(dir, "shop", "orders.go")
	writeFile(t, file, "package shop\n\n// OrderController serves orders\ntype OrderController struct{}\n")

	ws, err := NewWorkspace(DefaultConfig(), []ScanTarget{{Dir: dir, Recursive: true}}, zerolog.Nop())
	require.NoError(t, err)

	report, err := ws.Inspect("OrderController")
	require.NoError(t, err)
	assert.False(t, report.Annotated())

	writeFile(t, file, "package shop\n\n// OrderController serves orders\n//\n// @Prefix(\"/orders\")\ntype OrderController struct{}\n")
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(file, future, future))
	require.NoError(t, ws.Reload(file))

	report, err = ws.Inspect("OrderController")
	require.NoError(t, err)
	require.Len(t, report.Annotations, 1)
	assert.Equal(t, "/orders", report.Annotations[0].Value())

	ws.Forget(file)
	_, err = ws.Inspect("OrderController")
	assert.Error(t, err)
}

func TestWorkspace_IgnoreAndNamespace(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ann.go"), `package ann

import "github.com/toyz/addendum/pkg/addendum"

// @Namespace("audit")
// @Alias("Level")
type AuditLevel struct {
	addendum.Annotation
}

// @audit:Level("high")
// @Routing_Prefix("/x")
type Service struct{}
`)

	cfg := DefaultConfig()
	cfg.Resolver = ResolverNamespace
	cfg.Ignore = []string{"Routing_Prefix"}

	ws, err := NewWorkspace(cfg, []ScanTarget{{Dir: dir}}, zerolog.Nop())
	require.NoError(t, err)

	report, err := ws.Inspect("Service")
	require.NoError(t, err)
	require.Len(t, report.Annotations, 1)
	assert.Equal(t, "AuditLevel", report.Annotations[0].TypeName())
	assert.Equal(t, "high", report.Annotations[0].Value())
}

func TestInspectCommand(t *testing.T) {
	dir := shopDir(t)

	out, _, err := run(t, "inspect", dir+"/...")
	require.NoError(t, err)
	assert.Contains(t, out, "UserController\n")
	assert.Contains(t, out, "  - @Routing_Prefix(value=/api)\n")
	assert.Contains(t, out, "  List()\n    - @Routing_Route(value=GET /users)\n")
	assert.Contains(t, out, "  $Email\n    - @Validation_Validate(value=required,email)\n")
	assert.Contains(t, out, "annotations: 4")
	assert.Contains(t, out, "[OK] no failures, 1 shown\n")
	assert.NotContains(t, out, "helper")

	out, _, err = run(t, "inspect", dir+"/...", "--class", "helper")
	require.NoError(t, err)
	assert.Contains(t, out, "helper\n")
}

func TestInspectCommand_Failures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.go"), "package bad\n\n// @Route(\"GET /nowhere\")\ntype Bad struct{}\n")

	out, errOut, err := run(t, "inspect", dir)
	require.Error(t, err)
	assert.Equal(t, "1 of 1 classes failed", err.Error())
	assert.Contains(t, errOut, "[ERROR] Bad:")
	assert.Contains(t, out, "failures: 1")
	assert.NotContains(t, out, "[OK]")
}

func TestTypesCommand(t *testing.T) {
	dir := shopDir(t)
	writeFile(t, filepath.Join(dir, ConfigFile), "ignore: [Audited]\n")

	out, _, err := run(t, "types", dir+"/...")
	require.NoError(t, err)
	assert.Contains(t, out, "- Audited extends Annotation [level] (ignored)\n")
	assert.Contains(t, out, "- Routing_Route extends Annotation [method name path]\n")
}
