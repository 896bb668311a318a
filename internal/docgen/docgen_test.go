package docgen

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/docket/internal/convert"
)

const docHead = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
const docTail = `</w:body></w:document>`

// writeDocx builds a minimal .docx whose body is the given paragraphs XML.
func writeDocx(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	parts := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"word/document.xml":   docHead + body + docTail,
		"word/footer1.xml":    `<w:ftr><w:p><w:r><w:t>Expediente {{ .case.number }}</w:t></w:r></w:p></w:ftr>`,
	}
	for _, n := range []string{"[Content_Types].xml", "word/document.xml", "word/footer1.xml"} {
		w, err := zw.Create(n)
		require.NoError(t, err)
		_, err = io.WriteString(w, parts[n])
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

// readPart returns the contents of one part of a rendered .docx.
func readPart(t *testing.T, path, part string) string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != part {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(data)
	}
	t.Fatalf("part %s not found in %s", part, path)
	return ""
}

func sampleData() map[string]any {
	return map[string]any{
		"case": map[string]any{
			"number": "12/2024",
			"amount": int64(150050),
			"period": 15,
		},
		"client": map[string]any{"name": "Pérez & Hijos <SA>"},
		"date":   time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		"notes":  "primera línea\nsegunda línea",
	}
}

func TestJoinPlaceholders(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "single run",
			in:   `<w:t>Hola {{ .name }}</w:t>`,
			want: `<w:t>Hola {{(.name) | xml}}</w:t>`,
		},
		{
			name: "split across runs",
			in:   `<w:r><w:t>{{ .na</w:t></w:r><w:proofErr w:type="spellStart"/><w:r><w:rPr><w:b/></w:rPr><w:t>me }}</w:t></w:r>`,
			want: `<w:r><w:t>{{(.name) | xml}}</w:t></w:r>`,
		},
		{
			name: "braces split",
			in:   `<w:t>{</w:t><w:t>{ upper .x }</w:t><w:t>}</w:t>`,
			want: `<w:t>{{(upper .x) | xml}}</w:t>`,
		},
		{
			name: "smart quotes and entities",
			in:   `<w:t>{{ if eq .kind “a” }}x{{ else }}y{{ end }}</w:t>`,
			want: `<w:t>{{if eq .kind "a"}}x{{else}}y{{end}}</w:t>`,
		},
		{
			name: "trim markers",
			in:   `<w:t>{{- .a -}}</w:t>`,
			want: `<w:t>{{- (.a) | xml -}}</w:t>`,
		},
		{
			name: "single brace untouched",
			in:   `<w:t>{a} }}</w:t>`,
			want: `<w:t>{a} }}</w:t>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, joinPlaceholders(tt.in))
		})
	}
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	body := `<w:p><w:r><w:t>Convenio {{ .case.num</w:t></w:r><w:r><w:t>ber }} con {{ .client.name }}</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Monto {{ money .case.amount }} ({{ amount .case.amount }}) cada {{ period .case.period }}</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>{{ date .date }} / {{ datewords .date }} / {{ upper "x" }} / {{ words 21 }}</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t xml:space="preserve">{{ .notes }}</w:t></w:r></w:p>`
	tmpl := writeDocx(t, dir, "acuerdo.docx", body)
	out := filepath.Join(dir, "out", "Acuerdo.docx")

	r := NewRenderer(convert.DefaultCurrency, zap.NewNop())
	require.NoError(t, r.Render(Job{Template: tmpl, Output: out, Data: sampleData()}))

	doc := readPart(t, out, "word/document.xml")
	assert.Contains(t, doc, "Convenio 12/2024 con Pérez &amp; Hijos &lt;SA&gt;")
	assert.Contains(t, doc, "Monto $1,500.50 (MIL QUINIENTOS PESOS 50/100 M.N.) cada quince días")
	assert.Contains(t, doc, "5 de marzo de 2024 / cinco de marzo de dos mil veinticuatro / X / veintiuno")
	assert.Contains(t, doc, `primera línea</w:t><w:br/><w:t xml:space="preserve">segunda línea`)
	assert.NotContains(t, doc, "{{")

	assert.Equal(t, "<w:ftr><w:p><w:r><w:t>Expediente 12/2024</w:t></w:r></w:p></w:ftr>",
		readPart(t, out, "word/footer1.xml"))
	assert.NotEmpty(t, readPart(t, out, "[Content_Types].xml"), "other parts are copied")
}

func TestRender_Errors(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(convert.DefaultCurrency, nil)

	tmpl := writeDocx(t, dir, "missing.docx", `<w:p><w:r><w:t>{{ .nope }}</w:t></w:r></w:p>`)
	err := r.Render(Job{Template: tmpl, Output: filepath.Join(dir, "a.docx"), Data: sampleData()})
	assert.ErrorIs(t, err, ErrMissingKey)
	_, statErr := os.Stat(filepath.Join(dir, "a.docx"))
	assert.True(t, os.IsNotExist(statErr), "failed render leaves no output")

	tmpl = writeDocx(t, dir, "bad.docx", `<w:p><w:r><w:t>{{ if .x }}</w:t></w:r></w:p>`)
	err = r.Render(Job{Template: tmpl, Output: filepath.Join(dir, "b.docx"), Data: sampleData()})
	assert.ErrorIs(t, err, ErrBadTemplate)

	tmpl = writeDocx(t, dir, "words.docx", `<w:p><w:r><w:t>{{ words .client.name }}</w:t></w:r></w:p>`)
	err = r.Render(Job{Template: tmpl, Output: filepath.Join(dir, "c.docx"), Data: sampleData()})
	assert.ErrorIs(t, err, ErrRender)

	err = r.Render(Job{Template: filepath.Join(dir, "absent.docx"), Output: filepath.Join(dir, "d.docx")})
	assert.ErrorIs(t, err, ErrBadTemplate)
}

func TestRender_Overwrite(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(convert.DefaultCurrency, nil)
	tmpl := writeDocx(t, dir, "t.docx", `<w:p><w:r><w:t>{{ .case.number }}</w:t></w:r></w:p>`)
	out := filepath.Join(dir, "out.docx")

	require.NoError(t, r.Render(Job{Template: tmpl, Output: out, Data: sampleData()}))
	err := r.Render(Job{Template: tmpl, Output: out, Data: sampleData()})
	assert.ErrorIs(t, err, ErrOutputExists)
	assert.NoError(t, r.Render(Job{Template: tmpl, Output: out, Data: sampleData(), Overwrite: true}))
}

func TestRenderBatch(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(convert.DefaultCurrency, nil)
	tmpl := writeDocx(t, dir, "t.docx", `<w:p><w:r><w:t>{{ .case.number }}</w:t></w:r></w:p>`)

	var jobs []Job
	for i := range 8 {
		jobs = append(jobs, Job{Template: tmpl, Output: filepath.Join(dir, fmt.Sprintf("out-%d.docx", i)), Data: sampleData()})
	}
	require.NoError(t, r.RenderBatch(context.Background(), jobs, 3))
	for _, j := range jobs {
		assert.FileExists(t, j.Output)
	}

	jobs = append(jobs, Job{Template: tmpl, Output: filepath.Join(dir, "extra.docx"), Data: map[string]any{}})
	err := r.RenderBatch(context.Background(), jobs, 0)
	assert.ErrorIs(t, err, ErrMissingKey)
	assert.NoFileExists(t, filepath.Join(dir, "extra.docx"))
	for _, j := range jobs[:8] {
		assert.FileExists(t, j.Output)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = r.RenderBatch(ctx, []Job{{Template: tmpl, Output: filepath.Join(dir, "never.docx"), Data: sampleData()}}, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(dir, "never.docx"))
}

func TestRenderBatch_FailureRemovesNewOutputs(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(convert.DefaultCurrency, nil)
	tmpl := writeDocx(t, dir, "t.docx", `<w:p><w:r><w:t>{{ .case.number }}</w:t></w:r></w:p>`)

	kept := filepath.Join(dir, "kept.docx")
	require.NoError(t, os.WriteFile(kept, []byte("earlier"), 0o644))

	jobs := []Job{
		{Template: tmpl, Output: filepath.Join(dir, "a.docx"), Data: sampleData()},
		{Template: tmpl, Output: filepath.Join(dir, "b.docx"), Data: sampleData()},
		{Template: tmpl, Output: kept, Data: sampleData(), Overwrite: true},
		{Template: tmpl, Output: filepath.Join(dir, "broken.docx"), Data: map[string]any{}},
	}
	err := r.RenderBatch(context.Background(), jobs, 1)
	require.ErrorIs(t, err, ErrMissingKey)

	assert.NoFileExists(t, filepath.Join(dir, "a.docx"))
	assert.NoFileExists(t, filepath.Join(dir, "b.docx"))
	assert.NoFileExists(t, filepath.Join(dir, "broken.docx"))
	assert.FileExists(t, kept, "files that existed before the batch stay")
}

func TestRenderBatch_DuplicateOutput(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(convert.DefaultCurrency, nil)
	tmpl := writeDocx(t, dir, "t.docx", `<w:p><w:r><w:t>{{ .case.number }}</w:t></w:r></w:p>`)

	out := filepath.Join(dir, "same.docx")
	err := r.RenderBatch(context.Background(), []Job{
		{Template: tmpl, Output: out, Data: sampleData()},
		{Template: tmpl, Output: out, Data: sampleData()},
	}, 0)
	assert.ErrorIs(t, err, ErrDuplicateOutput)
	assert.NoFileExists(t, out)
}

func TestCatalog(t *testing.T) {
	dir := t.TempDir()

	c, err := LoadCatalog(dir)
	require.NoError(t, err)
	assert.Empty(t, c.Templates)

	yml := strings.Join([]string{
		"templates:",
		"  - name: acuerdo",
		"    file: acuerdo.docx",
		"    kind: agreement",
		"    description: Convenio de mediación",
		`    output: "Acuerdo {{ .case.number }}"`,
		"    required: [case.number, client.name]",
		"  - name: poder",
		"    file: poder.docx",
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, CatalogFile), []byte(yml), 0o644))

	c, err = LoadCatalog(dir)
	require.NoError(t, err)
	require.Len(t, c.Templates, 2)

	poder, err := c.Lookup("poder")
	require.NoError(t, err)
	assert.Equal(t, KindGeneric, poder.Kind, "kind defaults to generic")
	assert.Equal(t, filepath.Join(dir, "poder.docx"), c.Path(poder))

	agreement, err := c.FirstOfKind(KindAgreement)
	require.NoError(t, err)
	assert.Equal(t, "acuerdo", agreement.Name)

	_, err = c.Lookup("nada")
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	name, err := OutputName(agreement, sampleData(), "ignored.docx")
	require.NoError(t, err)
	assert.Equal(t, "Acuerdo 12-2024.docx", name)

	name, err = OutputName(poder, sampleData(), "Poder 1.docx")
	require.NoError(t, err)
	assert.Equal(t, "Poder 1.docx", name)

	assert.NoError(t, CheckRequired(agreement, sampleData()))
	err = CheckRequired(agreement, map[string]any{"case": map[string]any{"number": " "}})
	assert.ErrorIs(t, err, ErrMissingKey)
	assert.Contains(t, err.Error(), "case.number, client.name")
}

func TestCatalog_Invalid(t *testing.T) {
	cases := map[string]string{
		"duplicate":   "templates:\n  - {name: a, file: a.docx}\n  - {name: a, file: b.docx}\n",
		"no file":     "templates:\n  - {name: a}\n",
		"bad kind":    "templates:\n  - {name: a, file: a.docx, kind: memo}\n",
		"bad pattern": "templates:\n  - {name: a, file: a.docx, output: \"{{ .x \"}\n",
		"not yaml":    "templates: [",
	}
	for name, yml := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, CatalogFile), []byte(yml), 0o644))
			_, err := LoadCatalog(dir)
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}
