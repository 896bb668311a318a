package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/docket/pkg/types"
)

// seedCase stores a client and a case for it and returns both IDs.
func seedCase(t *testing.T, b *Backend, number string) (clientID, caseID string) {
	t.Helper()
	clientID, err := table(t, b, types.TableClients).Set("", &types.Client{Name: "Cliente " + number})
	require.NoError(t, err)
	caseID, err = table(t, b, types.TableCases).Set("", &types.Case{
		ClientID: clientID,
		Number:   number,
		Title:    "Asunto " + number,
	})
	require.NoError(t, err)
	return clientID, caseID
}

func TestClientsTable_CRUD(t *testing.T) {
	b := setupBackend(t)
	clients := table(t, b, types.TableClients)

	c := &types.Client{Name: "Ana López", Email: "ana@example.com", Phone: "555 123 4567"}
	id, err := clients.Set("", c)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, c.ClientID)
	assert.False(t, c.CreatedAt.IsZero())

	got, err := clients.Get(id)
	require.NoError(t, err)
	stored := got.(*types.Client)
	assert.Equal(t, "Ana López", stored.Name)
	assert.Equal(t, "ana@example.com", stored.Email)

	stored.Notes = "prefiere correo"
	_, err = clients.Set(id, stored)
	require.NoError(t, err)
	got, err = clients.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "prefiere correo", got.(*types.Client).Notes)
	assert.Equal(t, stored.CreatedAt.Unix(), got.(*types.Client).CreatedAt.Unix())

	require.NoError(t, clients.Delete(id))
	_, err = clients.Get(id)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.ErrorIs(t, clients.Delete(id), types.ErrNotFound)
}

func TestClientsTable_Errors(t *testing.T) {
	b := setupBackend(t)
	clients := table(t, b, types.TableClients)

	_, err := clients.Get("")
	assert.ErrorIs(t, err, types.ErrInvalidID)
	_, err = clients.Set("", &types.Case{})
	assert.ErrorIs(t, err, types.ErrInvalidData)
	_, err = clients.Set("", &types.Client{Name: " "})
	assert.ErrorIs(t, err, types.ErrInvalidName)
	_, err = clients.Fetch(types.Filter{"phone_model": "x"})
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
	_, err = clients.Fetch(types.Filter{"name": []string{"a"}})
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
}

func TestClientsTable_DeleteWithCases(t *testing.T) {
	b := setupBackend(t)
	clientID, _ := seedCase(t, b, "10/2024")

	err := table(t, b, types.TableClients).Delete(clientID)
	assert.ErrorIs(t, err, types.ErrHasDependents)
}

func TestCasesTable_Defaults(t *testing.T) {
	b := setupBackend(t)
	_, caseID := seedCase(t, b, "11/2024")

	got, err := table(t, b, types.TableCases).Get(caseID)
	require.NoError(t, err)
	c := got.(*types.Case)
	assert.Equal(t, types.CaseStateOpen, c.State)
	assert.Equal(t, types.CaseKindOther, c.Kind)
	assert.Nil(t, c.AgreementDate)
}

func TestCasesTable_RoundTripsOptionalFields(t *testing.T) {
	b := setupBackend(t)
	clientID, err := table(t, b, types.TableClients).Set("", &types.Client{Name: "Ana"})
	require.NoError(t, err)

	date := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	cases := table(t, b, types.TableCases)
	id, err := cases.Set("", &types.Case{
		ClientID:      clientID,
		Number:        "12/2024",
		Title:         "Convenio",
		Kind:          types.CaseKindMediation,
		Amount:        1500050,
		Installments:  3,
		PeriodDays:    30,
		AgreementDate: &date,
	})
	require.NoError(t, err)

	got, err := cases.Get(id)
	require.NoError(t, err)
	c := got.(*types.Case)
	assert.Equal(t, int64(1500050), c.Amount)
	assert.Equal(t, 3, c.Installments)
	assert.Equal(t, 30, c.PeriodDays)
	require.NotNil(t, c.AgreementDate)
	assert.True(t, date.Equal(*c.AgreementDate))
}

func TestCasesTable_Constraints(t *testing.T) {
	b := setupBackend(t)
	clientID, caseID := seedCase(t, b, "13/2024")
	cases := table(t, b, types.TableCases)

	_, err := cases.Set("", &types.Case{ClientID: clientID, Number: "13/2024", Title: "Otro"})
	assert.ErrorIs(t, err, types.ErrDuplicate)

	_, err = cases.Set("", &types.Case{ClientID: "missing", Number: "14/2024", Title: "Otro"})
	assert.ErrorIs(t, err, types.ErrMissingParent)

	got, err := cases.Get(caseID)
	require.NoError(t, err)
	c := got.(*types.Case)
	c.Title = "Asunto renombrado"
	_, err = cases.Set(caseID, c)
	assert.NoError(t, err, "updating a case keeps its own number")
}

func TestCasesTable_DeleteCascades(t *testing.T) {
	b := setupBackend(t)
	_, caseID := seedCase(t, b, "15/2024")

	parties := table(t, b, types.TableParties)
	activities := table(t, b, types.TableActivities)
	_, err := parties.Set("", &types.Party{CaseID: caseID, Role: types.RoleActor, Name: "Juan"})
	require.NoError(t, err)
	_, err = activities.Set("", &types.Activity{CaseID: caseID, Kind: types.ActivityNote, Description: "Alta"})
	require.NoError(t, err)

	require.NoError(t, table(t, b, types.TableCases).Delete(caseID))

	left, err := parties.Fetch(types.Filter{"case_id": caseID})
	require.NoError(t, err)
	assert.Empty(t, left)
	left, err = activities.Fetch(types.Filter{"case_id": caseID})
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestCasesTable_Fetch(t *testing.T) {
	b := setupBackend(t)
	clientA, _ := seedCase(t, b, "2/2024")
	_, closedID := seedCase(t, b, "1/2024")

	cases := table(t, b, types.TableCases)
	got, err := cases.Get(closedID)
	require.NoError(t, err)
	closed := got.(*types.Case)
	require.NoError(t, closed.Close())
	_, err = cases.Set(closedID, closed)
	require.NoError(t, err)

	all, err := cases.Fetch(nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "1/2024", all[0].(*types.Case).Number, "ordered by number")

	open, err := cases.Fetch(types.Filter{"state": types.CaseStateOpen})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, clientA, open[0].(*types.Case).ClientID)
}

func TestProspectsTable_DeleteCascadesConsultations(t *testing.T) {
	b := setupBackend(t)
	prospects := table(t, b, types.TableProspects)
	consultations := table(t, b, types.TableConsultations)

	p := &types.Prospect{Name: "Luis"}
	pid, err := prospects.Set("", p)
	require.NoError(t, err)
	assert.Equal(t, types.ProspectStateNew, p.State)

	cid, err := consultations.Set("", &types.Consultation{ProspectID: pid, Facts: "Fue despedido sin causa."})
	require.NoError(t, err)
	got, err := consultations.Get(cid)
	require.NoError(t, err)
	assert.False(t, got.(*types.Consultation).Date.IsZero(), "date defaults to creation time")

	require.NoError(t, prospects.Delete(pid))
	_, err = consultations.Get(cid)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestConsultationsTable_RequiresProspect(t *testing.T) {
	b := setupBackend(t)
	consultations := table(t, b, types.TableConsultations)

	_, err := consultations.Set("", &types.Consultation{ProspectID: "nope", Facts: "x"})
	assert.ErrorIs(t, err, types.ErrMissingParent)
	_, err = consultations.Set("", &types.Consultation{ProspectID: "nope"})
	assert.ErrorIs(t, err, types.ErrMissingFacts)
	assert.ErrorIs(t, consultations.Delete("nope"), types.ErrNotFound)
}

func TestPartiesTable_Representation(t *testing.T) {
	b := setupBackend(t)
	_, caseID := seedCase(t, b, "20/2024")
	_, otherCase := seedCase(t, b, "21/2024")
	parties := table(t, b, types.TableParties)

	actorID, err := parties.Set("", &types.Party{CaseID: caseID, Role: types.RoleActor, Name: "Juan"})
	require.NoError(t, err)
	repID, err := parties.Set("", &types.Party{
		CaseID: caseID, Role: types.RoleRepresentative, Name: "Lic. Ruiz", RepresentsID: actorID,
	})
	require.NoError(t, err)

	_, err = parties.Set("", &types.Party{
		CaseID: otherCase, Role: types.RoleRepresentative, Name: "Lic. Paz", RepresentsID: actorID,
	})
	assert.ErrorIs(t, err, types.ErrInvalidSide, "cannot represent a party of another case")

	_, err = parties.Set("", &types.Party{
		CaseID: caseID, Role: types.RoleRepresentative, Name: "Lic. Paz", RepresentsID: repID,
	})
	assert.ErrorIs(t, err, types.ErrInvalidSide, "cannot represent a representative")

	require.NoError(t, parties.Delete(actorID))
	got, err := parties.Get(repID)
	require.NoError(t, err)
	assert.Empty(t, got.(*types.Party).RepresentsID, "representative becomes unassigned")
}

func TestActivitiesTable_OrderAndFilter(t *testing.T) {
	b := setupBackend(t)
	_, caseID := seedCase(t, b, "30/2024")
	activities := table(t, b, types.TableActivities)

	later := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	sooner := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	_, err := activities.Set("", &types.Activity{CaseID: caseID, Kind: types.ActivityNote, Description: "sin fecha"})
	require.NoError(t, err)
	_, err = activities.Set("", &types.Activity{CaseID: caseID, Kind: types.ActivityHearing, Description: "audiencia", DueAt: &later})
	require.NoError(t, err)
	doneID, err := activities.Set("", &types.Activity{CaseID: caseID, Kind: types.ActivityDeadline, Description: "plazo", DueAt: &sooner})
	require.NoError(t, err)

	all, err := activities.Fetch(types.Filter{"case_id": caseID})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "plazo", all[0].(*types.Activity).Description)
	assert.Equal(t, "audiencia", all[1].(*types.Activity).Description)
	assert.Equal(t, "sin fecha", all[2].(*types.Activity).Description)

	got, err := activities.Get(doneID)
	require.NoError(t, err)
	a := got.(*types.Activity)
	a.Complete()
	_, err = activities.Set(doneID, a)
	require.NoError(t, err)

	pending, err := activities.Fetch(types.Filter{"case_id": caseID, "done": false})
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	_, err = activities.Set("", &types.Activity{CaseID: "missing", Kind: types.ActivityNote, Description: "x"})
	assert.ErrorIs(t, err, types.ErrMissingParent)
}
