package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mesh-intelligence/docket/internal/convert"
	"github.com/mesh-intelligence/docket/internal/userror"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

// newTable returns a tabwriter for aligned list output. Callers flush it.
func newTable(w io.Writer, header ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if len(header) > 0 {
		fmt.Fprintln(tw, strings.Join(header, "\t"))
	}
	return tw
}

// row writes one tab-separated line.
func row(tw *tabwriter.Writer, cols ...string) {
	fmt.Fprintln(tw, strings.Join(cols, "\t"))
}

// field prints "Label:  value" for non-empty values.
func field(w io.Writer, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "%-14s %s\n", label+":", value)
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// parseDateFlag parses a date flag value; empty yields nil.
func parseDateFlag(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := convert.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseAmountFlag parses a money flag value; empty yields zero.
func parseAmountFlag(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return convert.ParseAmount(s)
}

// errNothingToUpdate is returned by update commands without flags.
var errNothingToUpdate = userror.Usage(errors.New("no fields to update; pass at least one flag"))
