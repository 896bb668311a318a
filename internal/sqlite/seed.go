package sqlite

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/mesh-intelligence/docket/pkg/types"
)

// builtInCatalogs holds the labels seeded on first startup. Labels can be
// changed afterwards with SetLabel; seeding never overwrites them.
var builtInCatalogs = map[string][]string{
	types.CatalogCaseKind: {
		types.CaseKindMediation, "mediación",
		types.CaseKindLabor, "laboral",
		types.CaseKindCivil, "civil",
		types.CaseKindFamily, "familiar",
		types.CaseKindOther, "otro",
	},
	types.CatalogCaseState: {
		types.CaseStateOpen, "abierto",
		types.CaseStateSuspended, "suspendido",
		types.CaseStateClosed, "cerrado",
	},
	types.CatalogRole: {
		types.RoleActor, "parte actora",
		types.RoleDefendant, "parte demandada",
		types.RoleRepresentative, "representante",
	},
	types.CatalogActivityKind: {
		types.ActivityNote, "nota",
		types.ActivityCall, "llamada",
		types.ActivityHearing, "audiencia",
		types.ActivityDocument, "documento",
		types.ActivityDeadline, "plazo",
	},
}

// seedCatalogs inserts any built-in catalog entry that is missing. Existing
// entries keep their labels, so seeding is idempotent.
func seedCatalogs(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	names := make([]string, 0, len(builtInCatalogs))
	for name := range builtInCatalogs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		pairs := builtInCatalogs[name]
		for i := 0; i+1 < len(pairs); i += 2 {
			_, err := tx.Exec(
				"INSERT OR IGNORE INTO catalog (catalog, code, label, ordinal) VALUES (?, ?, ?, ?)",
				name, pairs[i], pairs[i+1], i/2,
			)
			if err != nil {
				return fmt.Errorf("seeding %s/%s: %w", name, pairs[i], err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed transaction: %w", err)
	}
	return nil
}

// Catalog returns the entries of the named catalog in ordinal order.
func (b *Backend) Catalog(name string) ([]types.CatalogEntry, error) {
	var entries []types.CatalogEntry
	err := b.withDB(func(db *sql.DB) error {
		rows, err := db.Query(
			"SELECT catalog, code, label, ordinal FROM catalog WHERE catalog = ? ORDER BY ordinal, code", name)
		if err != nil {
			return fmt.Errorf("querying catalog %s: %w", name, err)
		}
		defer rows.Close()
		for rows.Next() {
			var e types.CatalogEntry
			if err := rows.Scan(&e.Catalog, &e.Code, &e.Label, &e.Ordinal); err != nil {
				return fmt.Errorf("scanning catalog entry: %w", err)
			}
			entries = append(entries, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog %q: %w", name, types.ErrNotFound)
	}
	return entries, nil
}

// Labels returns the named catalog as a code-to-label map.
func (b *Backend) Labels(name string) (map[string]string, error) {
	entries, err := b.Catalog(name)
	if err != nil {
		return nil, err
	}
	labels := make(map[string]string, len(entries))
	for _, e := range entries {
		labels[e.Code] = e.Label
	}
	return labels, nil
}

// SetLabel changes the label of an existing catalog entry.
func (b *Backend) SetLabel(name, code, label string) error {
	if label == "" {
		return types.ErrInvalidName
	}
	return b.withWriteDB(func(db *sql.DB) error {
		res, err := db.Exec("UPDATE catalog SET label = ? WHERE catalog = ? AND code = ?", label, name, code)
		if err != nil {
			return fmt.Errorf("updating catalog label: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("updating catalog label: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("catalog entry %s/%s: %w", name, code, types.ErrNotFound)
		}
		return nil
	})
}
