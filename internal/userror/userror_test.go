package userror

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/docket/internal/agreement"
	"github.com/mesh-intelligence/docket/internal/docgen"
	"github.com/mesh-intelligence/docket/pkg/types"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
		code int
	}{
		{"plain sentinel", types.ErrDuplicate, types.ErrDuplicate, ExitUser},
		{"wrapped twice", fmt.Errorf("opening case: %w", fmt.Errorf("case 1/2024: %w", agreement.ErrMissingActor)), agreement.ErrMissingActor, ExitUser},
		{"docgen", fmt.Errorf("rendering: %w", docgen.ErrOutputExists), docgen.ErrOutputExists, ExitUser},
		{"timeout", fmt.Errorf("gemini: %w", context.DeadlineExceeded), context.DeadlineExceeded, ExitSystem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Lookup(tt.err)
			assert.Equal(t, tt.want, e.Err)
			assert.Equal(t, tt.code, e.Code)
			assert.NotEmpty(t, e.Message)
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	e := Lookup(errors.New("disk on fire"))
	assert.Equal(t, ExitSystem, e.Code)
	assert.Empty(t, e.Message)
}

func TestUsage(t *testing.T) {
	assert.NoError(t, Usage(nil))

	err := Usage(errors.New(`unknown flag: --colour`))
	assert.ErrorIs(t, err, ErrUsage)

	var buf bytes.Buffer
	code := Print(&buf, err, false)
	assert.Equal(t, ExitUser, code)
	assert.Equal(t, "error: usage error: unknown flag: --colour\nhint: run with --help for usage\n", buf.String())
}

func TestEveryEntryHasMessage(t *testing.T) {
	seen := map[error]bool{}
	for _, e := range table {
		if e.Err != ErrUsage {
			assert.NotEmpty(t, e.Message, "%v", e.Err)
		}
		assert.Contains(t, []int{ExitUser, ExitSystem}, e.Code)
		assert.False(t, seen[e.Err], "duplicate entry for %v", e.Err)
		seen[e.Err] = true
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	code := Print(&buf, fmt.Errorf("case 9/2024: %w", agreement.ErrMissingDefendant), false)
	assert.Equal(t, ExitUser, code)
	assert.Equal(t, "error: the case has no defendant\nhint: add one with party add --role defendant\n", buf.String())

	buf.Reset()
	Print(&buf, fmt.Errorf("case 9/2024: %w", agreement.ErrMissingDefendant), true)
	assert.Equal(t, "error: the case has no defendant (case 9/2024: case has no defendant)\nhint: add one with party add --role defendant\n", buf.String())

	buf.Reset()
	code = Print(&buf, errors.New("disk on fire"), false)
	assert.Equal(t, ExitSystem, code)
	assert.Equal(t, "error: disk on fire\n", buf.String())
}
