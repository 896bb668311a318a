package cli

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/docket/internal/docgen"
	"github.com/mesh-intelligence/docket/internal/userror"
)

// testEnv runs docket against throwaway config and data directories.
type testEnv struct {
	t         *testing.T
	configDir string
	dataDir   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("DOCKET_AI_API_KEY", "")
	root := t.TempDir()
	return &testEnv{
		t:         t,
		configDir: filepath.Join(root, "config"),
		dataDir:   filepath.Join(root, "data"),
	}
}

func (e *testEnv) run(args ...string) (stdout, stderr string, code int) {
	e.t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...)
	code = Run(context.Background(), full, &out, &errOut)
	return out.String(), errOut.String(), code
}

// ok runs a command that must succeed and returns its stdout.
func (e *testEnv) ok(args ...string) string {
	e.t.Helper()
	out, errOut, code := e.run(args...)
	require.Equal(e.t, 0, code, "docket %s: %s", strings.Join(args, " "), errOut)
	return out
}

// id runs a --json command and returns the named field of its output.
func (e *testEnv) id(field string, args ...string) string {
	e.t.Helper()
	out := e.ok(append(args, "--json")...)
	var m map[string]any
	require.NoError(e.t, json.Unmarshal([]byte(out), &m), out)
	v, _ := m[field].(string)
	require.NotEmpty(e.t, v, "no %s in %s", field, out)
	return v
}

func TestVersion(t *testing.T) {
	e := newTestEnv(t)
	out := e.ok("version")
	assert.Contains(t, out, "docket v"+Version)
	_, err := os.Stat(e.configDir)
	assert.True(t, os.IsNotExist(err), "version does not create the config dir")
}

func TestInit(t *testing.T) {
	e := newTestEnv(t)
	out := e.ok("init")
	assert.Contains(t, out, "Docket initialized successfully")

	for _, p := range []string{
		filepath.Join(e.configDir, "config.yaml"),
		filepath.Join(e.configDir, "templates"),
		filepath.Join(e.dataDir, "docket.db"),
		filepath.Join(e.dataDir, "cases"),
	} {
		_, err := os.Stat(p)
		assert.NoError(t, err, p)
	}

	// Idempotent.
	e.ok("init")
}

func TestClientAndCaseFlow(t *testing.T) {
	e := newTestEnv(t)
	clientID := e.id("client_id", "client", "add", "--name", "juan  pérez", "--email", "JUAN@Example.com")

	out := e.ok("client", "show", clientID)
	assert.Contains(t, out, "Juan Pérez")
	assert.Contains(t, out, "juan@example.com")

	e.ok("case", "add", "--client", clientID, "--number", "12/2024", "--title", "Pérez contra Acme",
		"--amount", "15000", "--installments", "3", "--period", "30")
	assert.DirExists(t, filepath.Join(e.dataDir, "cases", "12-2024-perez-contra-acme"))

	out = e.ok("case", "show", "12/2024")
	assert.Contains(t, out, "Pérez contra Acme")
	assert.Contains(t, out, "$15,000.00")
	assert.Contains(t, out, "abierto")

	out = e.ok("case", "list")
	assert.Contains(t, out, "12/2024")

	out = e.ok("case", "close", "12/2024")
	assert.Contains(t, out, "cerrado")
	out = e.ok("case", "list", "--state", "open")
	assert.NotContains(t, out, "12/2024")

	_, errOut, code := e.run("client", "delete", clientID)
	assert.Equal(t, userror.ExitUser, code)
	assert.Contains(t, errOut, "dependent records")

	e.ok("case", "delete", "12/2024")
	assert.DirExists(t, filepath.Join(e.dataDir, "cases", "12-2024-perez-contra-acme"), "folder is kept")
	e.ok("client", "delete", clientID)
}

func TestErrors(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name    string
		args    []string
		code    int
		message string
	}{
		{"unknown case", []string{"case", "show", "99/2024"}, userror.ExitUser, "error: record not found"},
		{"unknown flag", []string{"client", "list", "--colour"}, userror.ExitUser, "unknown flag"},
		{"unknown command", []string{"frobnicate"}, userror.ExitUser, "unknown command"},
		{"missing argument", []string{"case", "show"}, userror.ExitUser, "accepts 1 arg"},
		{"invalid email", []string{"client", "add", "--name", "Ana", "--email", "ana"}, userror.ExitUser, "email address is not valid"},
		{"invalid amount", []string{"case", "add", "--amount", "12,5x"}, userror.ExitUser, "amount is not valid"},
		{"bad date", []string{"activity", "add", "1/2024", "--due", "ayer"}, userror.ExitUser, "date is not valid"},
		{"no AI key", []string{"consultation", "reformulate", "x"}, userror.ExitUser, "AI assistant is not configured"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errOut, code := e.run(tt.args...)
			assert.Equal(t, tt.code, code, errOut)
			assert.Contains(t, errOut, tt.message)
			assert.Contains(t, errOut, "error:")
		})
	}
}

func TestUpdateWithoutFlags(t *testing.T) {
	e := newTestEnv(t)
	clientID := e.id("client_id", "client", "add", "--name", "Ana Ruiz")
	_, errOut, code := e.run("client", "update", clientID)
	assert.Equal(t, userror.ExitUser, code)
	assert.Contains(t, errOut, "no fields to update")

	e.ok("client", "update", clientID, "--phone", "55 1234 5678")
	out := e.ok("client", "show", clientID)
	assert.Contains(t, out, "55 1234 5678")
}

func TestProspectFlow(t *testing.T) {
	e := newTestEnv(t)
	prospectID := e.id("prospect_id", "prospect", "add", "--name", "María López", "--source", "referido")
	e.ok("consultation", "add", prospectID, "--topic", "despido", "--facts", "me despidieron sin aviso")

	out := e.ok("prospect", "show", prospectID)
	assert.Contains(t, out, "despido")

	out = e.ok("prospect", "convert", prospectID)
	assert.Contains(t, out, "María López")

	out = e.ok("client", "list")
	assert.Contains(t, out, "María López")

	_, _, code := e.run("prospect", "discard", prospectID)
	assert.Equal(t, userror.ExitUser, code, "converted prospects cannot be discarded")
}

func TestSearch(t *testing.T) {
	e := newTestEnv(t)
	clientID := e.id("client_id", "client", "add", "--name", "José Núñez")
	e.ok("case", "add", "--client", clientID, "--number", "7/2024", "--title", "Núñez contra Constructora")
	e.ok("prospect", "add", "--name", "Rosa Díaz")

	out := e.ok("search", "nunez")
	assert.Contains(t, out, "José Núñez")
	assert.Contains(t, out, "7/2024")
	assert.NotContains(t, out, "Rosa")

	out = e.ok("search", "zzz")
	assert.Contains(t, out, "No matches")
}

func TestActivities(t *testing.T) {
	e := newTestEnv(t)
	clientID := e.id("client_id", "client", "add", "--name", "Ana Ruiz")
	e.ok("case", "add", "--client", clientID, "--number", "3/2024", "--title", "Ruiz")

	id := e.id("activity_id", "activity", "add", "3/2024", "--kind", "hearing", "-d", "Audiencia inicial", "--due", "2000-01-10")
	out := e.ok("activity", "upcoming")
	assert.Contains(t, out, "Overdue")
	assert.Contains(t, out, "Audiencia inicial")

	e.ok("activity", "done", id)
	out = e.ok("activity", "list", "3/2024")
	assert.NotContains(t, out, "Audiencia inicial")
	out = e.ok("activity", "list", "3/2024", "--all")
	assert.Contains(t, out, "Audiencia inicial")
}

func TestCatalogLabels(t *testing.T) {
	e := newTestEnv(t)
	out := e.ok("catalog", "show", "case_state")
	assert.Contains(t, out, "abierto")

	e.ok("catalog", "set", "case_state", "open", "en trámite")
	out = e.ok("catalog", "show", "case_state")
	assert.Contains(t, out, "en trámite")

	_, _, code := e.run("catalog", "show", "colors")
	assert.Equal(t, userror.ExitUser, code)
}

func TestBackupRoundTrip(t *testing.T) {
	e := newTestEnv(t)
	e.ok("client", "add", "--name", "Ana Ruiz")
	dir := filepath.Join(t.TempDir(), "backup")

	out := e.ok("backup", "export", dir)
	assert.Contains(t, out, "clients")
	assert.FileExists(t, filepath.Join(dir, "clients.jsonl"))

	other := newTestEnv(t)
	out = other.ok("backup", "import", dir)
	assert.Contains(t, out, "1 loaded")
	assert.Contains(t, other.ok("client", "list"), "Ana Ruiz")

	_, errOut, code := other.run("backup", "import", t.TempDir())
	assert.Equal(t, userror.ExitUser, code)
	assert.Contains(t, errOut, "no .jsonl files")
	assert.Contains(t, other.ok("client", "list"), "Ana Ruiz", "a refused import leaves data alone")
}

const agreementXML = `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
	`<w:p><w:r><w:t>Convenio {{ .case.number }} entre {{ .actor_names }} y {{ .defendant_names }} por {{ .case.amount_words }}</w:t></w:r></w:p>` +
	`</w:body></w:document>`

func writeTemplates(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	f, err := os.Create(filepath.Join(dir, "acuerdo.docx"))
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = io.WriteString(w, agreementXML)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	catalog := "templates:\n  - {name: acuerdo, file: acuerdo.docx, kind: agreement}\n  - {name: constancia, file: acuerdo.docx, kind: generic, output: \"Constancia {{ .case.number }}\"}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, docgen.CatalogFile), []byte(catalog), 0o644))
}

func TestAgreementGenerate(t *testing.T) {
	e := newTestEnv(t)
	writeTemplates(t, filepath.Join(e.configDir, "templates"))

	clientID := e.id("client_id", "client", "add", "--name", "Juan Pérez")
	e.ok("case", "add", "--client", clientID, "--number", "12/2024", "--title", "Pérez contra Acme",
		"--amount", "1500", "--installments", "1")

	_, errOut, code := e.run("agreement", "generate", "12/2024")
	assert.Equal(t, userror.ExitUser, code)
	assert.Contains(t, errOut, "no actor")

	e.ok("party", "add", "12/2024", "--role", "actor", "--name", "Juan Pérez")
	e.ok("party", "add", "12/2024", "--role", "defendant", "--name", "Acme SA")

	out := e.ok("party", "list", "12/2024")
	assert.Contains(t, out, "Actors:")
	assert.Contains(t, out, "Acme SA")

	out = e.ok("agreement", "generate", "12/2024")
	assert.Contains(t, out, "Generated")
	path := filepath.Join(e.dataDir, "cases", "12-2024-perez-contra-acme", "Acuerdo 12-2024.docx")
	assert.FileExists(t, path)

	_, errOut, code = e.run("agreement", "generate", "12/2024")
	assert.Equal(t, userror.ExitUser, code)
	assert.Contains(t, errOut, "--overwrite")
	e.ok("agreement", "generate", "12/2024", "--overwrite")

	out = e.ok("doc", "templates")
	assert.Contains(t, out, "constancia")
	out = e.ok("doc", "generate", "12/2024", "constancia")
	assert.Contains(t, out, "Constancia 12-2024.docx")

	out = e.ok("activity", "list", "12/2024", "--all")
	assert.Contains(t, out, "Documento generado")
}

func TestConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(
		"data_dir: /srv/docket\nfirm:\n  name: Despacho Ruiz\nai:\n  timeout: 5s\n"), 0o644))
	t.Setenv("DOCKET_DATA_DIR", "/env/data")
	t.Setenv("DOCKET_FIRM_LAWYER", "Lic. Marta Ruiz")

	v, err := loadConfig(dir)
	require.NoError(t, err)
	cfg, err := resolveSettings(v, dir, "")
	require.NoError(t, err)

	assert.Equal(t, "/srv/docket", cfg.DataDir, "config.yaml wins over DOCKET_DATA_DIR")
	assert.Equal(t, "/srv/docket/cases", cfg.CasesDir)
	assert.Equal(t, filepath.Join(dir, "templates"), cfg.TemplatesDir)
	assert.Equal(t, "Despacho Ruiz", cfg.Firm.Name)
	assert.Equal(t, "Lic. Marta Ruiz", cfg.Firm.Lawyer)
	assert.Equal(t, "pesos", cfg.Currency.Plural)
	assert.Equal(t, "5s", cfg.AITimeout.String())

	cfg, err = resolveSettings(v, dir, "/flag/data")
	require.NoError(t, err)
	assert.Equal(t, "/flag/data", cfg.DataDir)
}
