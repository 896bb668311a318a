package docgen

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/docket/internal/convert"
)

// Rendering errors.
var (
	ErrOutputExists = errors.New("output file already exists")
	ErrBadTemplate  = errors.New("malformed template")
	ErrRender       = errors.New("template execution failed")

	ErrDuplicateOutput = errors.New("two documents would share one output file")
)

// DefaultBatchLimit bounds concurrent renders in RenderBatch.
const DefaultBatchLimit = 4

// parts of the package that may hold placeholders.
var templatedPart = regexp.MustCompile(`^word/(document|header\d*|footer\d*|footnotes|endnotes)\.xml$`)

// Job is one document to render.
type Job struct {
	Template  string         // path of the .docx template
	Output    string         // path of the .docx to write
	Data      map[string]any // values visible to the template as .key
	Overwrite bool
}

// Renderer fills .docx templates. It is safe for concurrent use.
type Renderer struct {
	log   *zap.Logger
	funcs template.FuncMap
}

// NewRenderer creates a Renderer that formats amounts in cur.
func NewRenderer(cur convert.Currency, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{log: log, funcs: funcMap(cur)}
}

// Render writes job.Output from job.Template. The output is written to a
// temporary file in the target directory and renamed into place, so a
// failed render never leaves a partial document behind.
func (r *Renderer) Render(job Job) error {
	if !job.Overwrite {
		if _, err := os.Stat(job.Output); err == nil {
			return fmt.Errorf("%w: %s", ErrOutputExists, job.Output)
		}
	}

	zr, err := zip.OpenReader(job.Template)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", ErrBadTemplate, job.Template, err)
	}
	defer zr.Close()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	rendered := 0
	for _, f := range zr.File {
		if !templatedPart.MatchString(f.Name) {
			if err := zw.Copy(f); err != nil {
				return fmt.Errorf("copying %s: %w", f.Name, err)
			}
			continue
		}
		if err := r.renderPart(zw, f, job.Data); err != nil {
			return fmt.Errorf("rendering %s of %s: %w", f.Name, filepath.Base(job.Template), err)
		}
		rendered++
	}
	if rendered == 0 {
		return fmt.Errorf("%w: %s has no word/document.xml", ErrBadTemplate, job.Template)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finishing %s: %w", job.Output, err)
	}

	if err := writeFileAtomic(job.Output, buf.Bytes()); err != nil {
		return err
	}
	r.log.Info("document rendered",
		zap.String("template", job.Template),
		zap.String("output", job.Output))
	return nil
}

func (r *Renderer) renderPart(zw *zip.Writer, f *zip.File, data map[string]any) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	src, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return err
	}

	tmpl, err := template.New(f.Name).
		Option("missingkey=error").
		Funcs(r.funcs).
		Parse(joinPlaceholders(string(src)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadTemplate, err)
	}

	var out bytes.Buffer
	if err := tmpl.Execute(&out, data); err != nil {
		if strings.Contains(err.Error(), "map has no entry for key") {
			return fmt.Errorf("%w: %v", ErrMissingKey, err)
		}
		return fmt.Errorf("%w: %v", ErrRender, err)
	}

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     f.Name,
		Method:   zip.Deflate,
		Modified: f.Modified,
	})
	if err != nil {
		return err
	}
	_, err = w.Write(out.Bytes())
	return err
}

// RenderBatch renders jobs concurrently, at most limit at a time. It stops
// scheduling new jobs after the first failure and returns that error.
// Outputs the batch created are removed again when it fails; files that
// existed before are left alone.
func (r *Renderer) RenderBatch(ctx context.Context, jobs []Job, limit int) error {
	if limit <= 0 {
		limit = DefaultBatchLimit
	}
	created := make([]string, 0, len(jobs))
	seen := make(map[string]bool, len(jobs))
	for _, job := range jobs {
		if seen[job.Output] {
			return fmt.Errorf("%w: %s", ErrDuplicateOutput, job.Output)
		}
		seen[job.Output] = true
		if _, err := os.Stat(job.Output); errors.Is(err, os.ErrNotExist) {
			created = append(created, job.Output)
		}
	}

	if err := r.renderAll(ctx, jobs, limit); err != nil {
		for _, path := range created {
			if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				r.log.Warn("removing partial batch output", zap.String("output", path), zap.Error(rmErr))
			}
		}
		return err
	}
	return nil
}

func (r *Renderer) renderAll(ctx context.Context, jobs []Job, limit int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return r.Render(job)
		})
	}
	return g.Wait()
}

// writeFileAtomic writes data to path via a temporary file in the same
// directory, syncing before the rename.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".docket-*.docx")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming output: %w", err)
	}
	return nil
}
