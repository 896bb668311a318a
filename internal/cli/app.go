package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/docket/internal/agreement"
	"github.com/mesh-intelligence/docket/internal/casework"
	"github.com/mesh-intelligence/docket/internal/docgen"
	"github.com/mesh-intelligence/docket/internal/logging"
	"github.com/mesh-intelligence/docket/internal/paths"
	"github.com/mesh-intelligence/docket/internal/reformulate"
	"github.com/mesh-intelligence/docket/internal/sqlite"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// app carries the state of one command run. The store is attached on
// first use so that commands like version never touch the disk.
type app struct {
	flags  rootFlags
	out    io.Writer
	errOut io.Writer
	now    func() time.Time

	cfg settings
	log *zap.Logger

	backend *sqlite.Backend
	work    *casework.Manager
	reform  *reformulate.Service
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{out: stdout, errOut: stderr, now: time.Now, log: zap.NewNop()}
}

// setup loads the configuration and builds the logger.
func (a *app) setup() error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	cfg, err := resolveSettings(v, configDir, a.flags.dataDir)
	if err != nil {
		return err
	}
	log, err := logging.New(logging.Options{Level: cfg.LogLevel, Verbose: a.flags.verbose})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	a.log.Debug("configuration loaded",
		zap.String("config_dir", cfg.ConfigDir),
		zap.String("data_dir", cfg.DataDir),
		zap.String("cases_dir", cfg.CasesDir),
		zap.String("templates_dir", cfg.TemplatesDir))
	return nil
}

// store attaches the backend and builds the managers on first use.
func (a *app) store() (*casework.Manager, error) {
	if a.work != nil {
		return a.work, nil
	}
	backend := sqlite.NewBackend(sqlite.WithLogger(a.log))
	if err := backend.Attach(types.Config{Backend: a.cfg.Backend, DataDir: a.cfg.DataDir}); err != nil {
		return nil, fmt.Errorf("attach backend: %w", err)
	}
	work, err := casework.New(backend, casework.Options{CasesDir: a.cfg.CasesDir, Log: a.log, Now: a.now})
	if err != nil {
		backend.Detach()
		return nil, err
	}
	a.backend = backend
	a.work = work
	return work, nil
}

// generator builds the document generator over the template catalog.
func (a *app) generator() (*agreement.Generator, *docgen.Catalog, error) {
	work, err := a.store()
	if err != nil {
		return nil, nil, err
	}
	catalog, err := docgen.LoadCatalog(a.cfg.TemplatesDir)
	if err != nil {
		return nil, nil, err
	}
	renderer := docgen.NewRenderer(a.cfg.Currency, a.log)
	gen := agreement.New(work, catalog, renderer, agreement.Options{
		Firm:     a.cfg.Firm,
		Currency: a.cfg.Currency,
		Now:      a.now,
		Log:      a.log,
	})
	return gen, catalog, nil
}

// reformulator builds the reformulation service backed by Gemini.
func (a *app) reformulator(ctx context.Context) (*reformulate.Service, error) {
	if a.reform != nil {
		return a.reform, nil
	}
	work, err := a.store()
	if err != nil {
		return nil, err
	}
	model, err := reformulate.NewGemini(ctx, a.cfg.AIKey, a.cfg.AIModel)
	if err != nil {
		return nil, err
	}
	a.reform = reformulate.NewService(model, work.Consultations, a.cfg.AITimeout, a.log)
	return a.reform, nil
}

// close waits for background work and releases the store.
func (a *app) close() error {
	if a.reform != nil {
		a.reform.Wait()
	}
	var err error
	if a.backend != nil {
		err = a.backend.Detach()
		a.backend = nil
		a.work = nil
	}
	// Sync on a console logger fails for stderr on some platforms.
	_ = a.log.Sync()
	return err
}

// emit prints v as indented JSON with --json, or calls human otherwise.
func (a *app) emit(v any, human func(w io.Writer)) error {
	if a.flags.jsonMode {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		return nil
	}
	human(a.out)
	return nil
}

// labels returns the display labels of a catalog, falling back to codes.
func (a *app) labels(catalog string) func(code string) string {
	var m map[string]string
	if a.backend != nil {
		m, _ = a.backend.Labels(catalog)
	}
	return func(code string) string {
		if l, ok := m[code]; ok && l != "" {
			return l
		}
		return code
	}
}
