// Package userror turns errors into messages and hints for people. Every
// known sentinel has one entry; lookups use errors.Is so wrapped errors
// resolve to the innermost known cause.
package userror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mesh-intelligence/docket/internal/agreement"
	"github.com/mesh-intelligence/docket/internal/casework"
	"github.com/mesh-intelligence/docket/internal/convert"
	"github.com/mesh-intelligence/docket/internal/docgen"
	"github.com/mesh-intelligence/docket/internal/reformulate"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// Exit codes.
const (
	ExitUser   = 1 // bad input or a rule the user can fix
	ExitSystem = 2 // storage, filesystem or network failure
)

// ErrUsage marks bad arguments or flags. Its own text is shown.
var ErrUsage = errors.New("usage error")

// Entry describes how one error is shown. An empty Message shows the
// error's own text.
type Entry struct {
	Err     error
	Message string
	Hint    string
	Code    int
}

var table = []Entry{
	{ErrUsage, "", "run with --help for usage", ExitUser},
	{types.ErrNotFound, "record not found", "check the ID or number with the matching list command", ExitUser},
	{types.ErrInvalidID, "an ID is required", "pass the ID shown by the list command", ExitUser},
	{types.ErrInvalidData, "invalid record data", "", ExitUser},
	{types.ErrInvalidFilter, "invalid filter", "", ExitUser},
	{types.ErrDuplicate, "a record with that number already exists", "use a different case number or update the existing case", ExitUser},
	{types.ErrHasDependents, "the record still has dependent records", "delete or reassign its cases first", ExitUser},
	{types.ErrMissingParent, "the referenced record does not exist", "create the client, case or prospect first", ExitUser},
	{types.ErrInvalidState, "invalid state", "", ExitUser},
	{types.ErrInvalidTransition, "that change is not allowed in the current state", "check the state with the show command", ExitUser},
	{types.ErrInvalidName, "a name is required", "", ExitUser},
	{types.ErrInvalidEmail, "the email address is not valid", "use the form name@domain", ExitUser},
	{types.ErrInvalidPhone, "the phone number is not valid", "use 7 to 15 digits; spaces, dashes and a leading + are allowed", ExitUser},
	{types.ErrInvalidKind, "invalid kind", "run with --help to see the accepted kinds", ExitUser},
	{types.ErrInvalidRole, "invalid party role", "use actor, defendant or representative", ExitUser},
	{types.ErrInvalidAmount, "amounts cannot be negative", "", ExitUser},
	{types.ErrInvalidNumber, "a case number is required", "", ExitUser},
	{types.ErrInvalidTitle, "a case title is required", "", ExitUser},
	{types.ErrMissingFacts, "the consultation has no facts", "add the facts before reformulating", ExitUser},
	{types.ErrMissingDesc, "a description is required", "", ExitUser},
	{types.ErrInvalidSide, "invalid representation", "a representative may act for an actor or defendant of the same case, or name a side", ExitUser},
	{types.ErrSelfReference, "a party cannot represent itself", "", ExitUser},
	{types.ErrStoreDetached, "the database is not open", "run docket init", ExitSystem},
	{types.ErrAlreadyAttached, "the database is already open", "", ExitSystem},
	{types.ErrTableNotFound, "unknown table", "", ExitSystem},
	{types.ErrBackendEmpty, "no storage backend configured", "set backend: sqlite in config.yaml", ExitUser},
	{types.ErrBackendUnknown, "unknown storage backend", "set backend: sqlite in config.yaml", ExitUser},

	{casework.ErrEmptyQuery, "nothing to search for", "pass at least one word", ExitUser},

	{agreement.ErrCaseClosed, "the case is closed", "reopen the case before generating documents", ExitUser},
	{agreement.ErrNoClient, "the case has no client", "assign a client with case update", ExitUser},
	{agreement.ErrMissingActor, "the case has no actor", "add one with party add --role actor", ExitUser},
	{agreement.ErrMissingDefendant, "the case has no defendant", "add one with party add --role defendant", ExitUser},
	{agreement.ErrInvalidTerms, "the agreement terms are incomplete", "set --amount, --installments and --period with case update", ExitUser},
	{agreement.ErrWrongKind, "that template cannot be used here", "list templates with doc templates", ExitUser},

	{docgen.ErrTemplateNotFound, "template not found", "list templates with doc templates, or check templates.yaml", ExitUser},
	{docgen.ErrInvalidCatalog, "templates.yaml is invalid", "fix the catalog in the templates directory", ExitUser},
	{docgen.ErrMissingKey, "the template uses data the case does not have", "fill in the missing fields or fix the placeholder", ExitUser},
	{docgen.ErrOutputExists, "the document already exists", "pass --overwrite to replace it", ExitUser},
	{docgen.ErrBadTemplate, "the template could not be read", "open and save the template in Word, and check its {{ }} placeholders", ExitUser},
	{docgen.ErrRender, "the template could not be filled", "check the helper functions used in its placeholders", ExitUser},
	{docgen.ErrDuplicateOutput, "two templates would write the same document", "give the templates different output names in templates.yaml", ExitUser},

	{convert.ErrInvalidDate, "the date is not valid", "use YYYY-MM-DD, DD/MM/YYYY or \"5 de marzo de 2024\"", ExitUser},
	{convert.ErrInvalidAmount, "the amount is not valid", "use digits with up to two decimals, e.g. 1500.50", ExitUser},
	{convert.ErrNegative, "amounts cannot be negative", "", ExitUser},
	{convert.ErrOutOfRange, "the number is too large", "", ExitUser},
	{convert.ErrInvalidPeriod, "the period must be a positive number of days", "", ExitUser},

	{reformulate.ErrAINotConfigured, "the AI assistant is not configured", "set ai.api_key in config.yaml or DOCKET_AI_API_KEY", ExitUser},
	{reformulate.ErrBusy, "a reformulation is already running for this consultation", "wait for it to finish", ExitUser},
	{reformulate.ErrEmptyResponse, "the AI assistant returned no text", "try again", ExitSystem},
	{context.DeadlineExceeded, "the operation timed out", "raise ai.timeout or try again", ExitSystem},
	{context.Canceled, "the operation was cancelled", "", ExitSystem},
	{os.ErrPermission, "permission denied", "check the permissions of the data and cases directories", ExitSystem},
}

// Lookup returns the entry for err. Unknown errors map to a system entry
// that shows err's own text.
func Lookup(err error) Entry {
	for _, e := range table {
		if errors.Is(err, e.Err) {
			return e
		}
	}
	return Entry{Err: err, Code: ExitSystem}
}

// Usage wraps err as a usage error.
func Usage(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrUsage, err)
}

// Print writes "error:" and, when present, "hint:" lines for err and
// returns the exit code to use.
func Print(w io.Writer, err error, verbose bool) int {
	e := Lookup(err)
	detail := err.Error()
	switch {
	case e.Message == "":
		fmt.Fprintf(w, "error: %s\n", detail)
	case verbose && detail != e.Err.Error():
		fmt.Fprintf(w, "error: %s (%s)\n", e.Message, detail)
	default:
		fmt.Fprintf(w, "error: %s\n", e.Message)
	}
	if e.Hint != "" {
		fmt.Fprintf(w, "hint: %s\n", e.Hint)
	}
	return e.Code
}
