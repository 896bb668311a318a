package sqlite

// Schema DDL for all tables. Statements are idempotent so that Attach can
// run them against an existing database file.
const (
	createClients = `CREATE TABLE IF NOT EXISTS clients (
    client_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    id_number TEXT NOT NULL DEFAULT '',
    phone TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT '',
    address TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createCases = `CREATE TABLE IF NOT EXISTS cases (
    case_id TEXT PRIMARY KEY,
    client_id TEXT NOT NULL,
    number TEXT NOT NULL,
    title TEXT NOT NULL,
    kind TEXT NOT NULL,
    state TEXT NOT NULL,
    court TEXT NOT NULL DEFAULT '',
    folder TEXT NOT NULL DEFAULT '',
    amount INTEGER NOT NULL DEFAULT 0,
    installments INTEGER NOT NULL DEFAULT 0,
    period_days INTEGER NOT NULL DEFAULT 0,
    agreement_date TEXT,
    notes TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (client_id) REFERENCES clients(client_id)
);`

	createProspects = `CREATE TABLE IF NOT EXISTS prospects (
    prospect_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    phone TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT '',
    source TEXT NOT NULL DEFAULT '',
    state TEXT NOT NULL,
    client_id TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createConsultations = `CREATE TABLE IF NOT EXISTS consultations (
    consultation_id TEXT PRIMARY KEY,
    prospect_id TEXT NOT NULL,
    date TEXT NOT NULL,
    topic TEXT NOT NULL DEFAULT '',
    facts TEXT NOT NULL,
    reformulated_facts TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (prospect_id) REFERENCES prospects(prospect_id) ON DELETE CASCADE
);`

	createParties = `CREATE TABLE IF NOT EXISTS parties (
    party_id TEXT PRIMARY KEY,
    case_id TEXT NOT NULL,
    role TEXT NOT NULL,
    name TEXT NOT NULL,
    id_number TEXT NOT NULL DEFAULT '',
    address TEXT NOT NULL DEFAULT '',
    represents_id TEXT NOT NULL DEFAULT '',
    side TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    FOREIGN KEY (case_id) REFERENCES cases(case_id) ON DELETE CASCADE
);`

	createActivities = `CREATE TABLE IF NOT EXISTS activities (
    activity_id TEXT PRIMARY KEY,
    case_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    description TEXT NOT NULL,
    due_at TEXT,
    done INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    FOREIGN KEY (case_id) REFERENCES cases(case_id) ON DELETE CASCADE
);`

	createCatalog = `CREATE TABLE IF NOT EXISTS catalog (
    catalog TEXT NOT NULL,
    code TEXT NOT NULL,
    label TEXT NOT NULL,
    ordinal INTEGER NOT NULL,
    PRIMARY KEY (catalog, code)
);`
)

// Index DDL for common queries.
const (
	idxCasesNumber           = `CREATE UNIQUE INDEX IF NOT EXISTS idx_cases_number ON cases(number);`
	idxCasesClient           = `CREATE INDEX IF NOT EXISTS idx_cases_client ON cases(client_id);`
	idxCasesState            = `CREATE INDEX IF NOT EXISTS idx_cases_state ON cases(state);`
	idxProspectsState        = `CREATE INDEX IF NOT EXISTS idx_prospects_state ON prospects(state);`
	idxConsultationsProspect = `CREATE INDEX IF NOT EXISTS idx_consultations_prospect ON consultations(prospect_id);`
	idxPartiesCase           = `CREATE INDEX IF NOT EXISTS idx_parties_case ON parties(case_id);`
	idxActivitiesCase        = `CREATE INDEX IF NOT EXISTS idx_activities_case ON activities(case_id);`
	idxActivitiesDue         = `CREATE INDEX IF NOT EXISTS idx_activities_due ON activities(done, due_at);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createClients,
	createCases,
	createProspects,
	createConsultations,
	createParties,
	createActivities,
	createCatalog,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxCasesNumber,
	idxCasesClient,
	idxCasesState,
	idxProspectsState,
	idxConsultationsProspect,
	idxPartiesCase,
	idxActivitiesCase,
	idxActivitiesDue,
}
