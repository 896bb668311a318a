package reformulate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mesh-intelligence/docket/pkg/types"
)

// The genai client pulls in opencensus, whose stats worker starts in init.
var ignoreCensus = goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start")

// fakeModel answers once release is closed, or immediately when it is nil.
type fakeModel struct {
	release chan struct{}
	reply   string
	err     error

	mu      sync.Mutex
	prompts []string
}

func (m *fakeModel) Generate(ctx context.Context, system, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return m.reply, m.err
}

type memStore struct {
	mu    sync.Mutex
	items map[string]*types.Consultation
}

func newMemStore(cs ...*types.Consultation) *memStore {
	s := &memStore{items: make(map[string]*types.Consultation)}
	for _, c := range cs {
		s.items[c.ConsultationID] = c
	}
	return s
}

func (s *memStore) Get(id string) (*types.Consultation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) SaveReformulation(id, text string) (*types.Consultation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	c.ReformulatedFacts = text
	cp := *c
	return &cp, nil
}

func consultation(id string) *types.Consultation {
	return &types.Consultation{ConsultationID: id, ProspectID: "p", Topic: "despido", Facts: "me corrieron el lunes"}
}

func TestReformulate_SavesResult(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreCensus)

	model := &fakeModel{reply: "  La persona fue despedida el lunes.  "}
	store := newMemStore(consultation("c1"))
	s := NewService(model, store, time.Second, nil)

	got, err := s.Reformulate(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "La persona fue despedida el lunes.", got.ReformulatedFacts)

	saved, err := store.Get("c1")
	require.NoError(t, err)
	assert.Equal(t, "La persona fue despedida el lunes.", saved.ReformulatedFacts)

	require.Len(t, model.prompts, 1)
	assert.True(t, strings.HasPrefix(model.prompts[0], "Asunto: despido"))
	assert.Contains(t, model.prompts[0], "me corrieron el lunes")
}

func TestStart_RejectsDuplicate(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreCensus)

	model := &fakeModel{release: make(chan struct{}), reply: "texto"}
	s := NewService(model, newMemStore(consultation("c1"), consultation("c2")), time.Second, nil)

	first, err := s.Start(context.Background(), "c1")
	require.NoError(t, err)

	_, err = s.Start(context.Background(), "c1")
	assert.ErrorIs(t, err, ErrBusy)

	other, err := s.Start(context.Background(), "c2")
	require.NoError(t, err, "other consultations are not blocked")

	close(model.release)
	assert.NoError(t, (<-first).Err)
	assert.NoError(t, (<-other).Err)
	s.Wait()

	again, err := s.Start(context.Background(), "c1")
	require.NoError(t, err, "guard is released after completion")
	assert.NoError(t, (<-again).Err)
	s.Wait()
}

func TestStart_Errors(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreCensus)

	empty := consultation("blank")
	empty.Facts = "  "
	store := newMemStore(consultation("c1"), empty)

	s := NewService(nil, store, 0, nil)
	_, err := s.Start(context.Background(), "c1")
	assert.ErrorIs(t, err, ErrAINotConfigured)

	s = NewService(&fakeModel{reply: "x"}, store, 0, nil)
	_, err = s.Start(context.Background(), "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = s.Start(context.Background(), "blank")
	assert.ErrorIs(t, err, types.ErrMissingFacts)

	ch, err := s.Start(context.Background(), "c1")
	require.NoError(t, err, "failed starts release the guard")
	assert.NoError(t, (<-ch).Err)

	boom := errors.New("quota exceeded")
	s = NewService(&fakeModel{err: boom}, store, 0, nil)
	_, err = s.Reformulate(context.Background(), "c1")
	assert.ErrorIs(t, err, boom)

	s = NewService(&fakeModel{reply: "   "}, store, 0, nil)
	_, err = s.Reformulate(context.Background(), "c1")
	assert.ErrorIs(t, err, ErrEmptyResponse)
	s.Wait()
}

func TestReformulate_TimeoutAndCancel(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreCensus)

	store := newMemStore(consultation("c1"))
	model := &fakeModel{release: make(chan struct{}), reply: "tarde"}
	defer close(model.release)

	s := NewService(model, store, 20*time.Millisecond, nil)
	_, err := s.Reformulate(context.Background(), "c1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	ctx, cancel := context.WithCancel(context.Background())
	s = NewService(model, store, time.Minute, nil)
	ch, err := s.Start(ctx, "c1")
	require.NoError(t, err)
	cancel()
	assert.ErrorIs(t, (<-ch).Err, context.Canceled)
	s.Wait()

	saved, err := store.Get("c1")
	require.NoError(t, err)
	assert.Empty(t, saved.ReformulatedFacts, "nothing is saved when the call does not finish")
}

func TestNewGemini_RequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrAINotConfigured)
}
