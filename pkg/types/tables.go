package types

// Standard table names for Store.GetTable.
const (
	TableClients       = "clients"
	TableCases         = "cases"
	TableProspects     = "prospects"
	TableConsultations = "consultations"
	TableParties       = "parties"
	TableActivities    = "activities"
)

// StandardTableNames lists all standard table names in dependency order:
// every table appears after the tables it references.
var StandardTableNames = []string{
	TableClients,
	TableCases,
	TableProspects,
	TableConsultations,
	TableParties,
	TableActivities,
}
