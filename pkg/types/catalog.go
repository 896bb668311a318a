package types

// Catalog names. Each catalog maps the codes stored on entities to the
// labels printed in documents and listings.
const (
	CatalogCaseKind     = "case_kind"
	CatalogCaseState    = "case_state"
	CatalogRole         = "role"
	CatalogActivityKind = "activity_kind"
)

// CatalogEntry is one code/label pair of a catalog.
type CatalogEntry struct {
	Catalog string `json:"catalog"`
	Code    string `json:"code"`
	Label   string `json:"label"`
	Ordinal int    `json:"ordinal"`
}
