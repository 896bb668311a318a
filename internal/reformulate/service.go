// Package reformulate rewrites the facts of a consultation in formal legal
// Spanish with a language model, in the background.
package reformulate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/docket/pkg/types"
)

// Errors reported by the service.
var (
	ErrAINotConfigured = errors.New("AI assistant is not configured")
	ErrBusy            = errors.New("reformulation already in progress")
	ErrEmptyResponse   = errors.New("model returned no text")
)

// DefaultTimeout bounds one model call when none is configured.
const DefaultTimeout = 60 * time.Second

// SystemPrompt instructs the model.
const SystemPrompt = `Eres asistente de un despacho jurídico. Reescribe los hechos que narra ` +
	`la persona en tercera persona, en orden cronológico, con lenguaje jurídico formal ` +
	`y claro. Conserva fechas, montos, nombres y lugares exactamente como aparecen. ` +
	`No inventes hechos ni agregues valoraciones. Responde solo con el texto reescrito.`

// Model generates text from a system instruction and a prompt.
type Model interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Store loads consultations and saves their reformulated facts.
type Store interface {
	Get(id string) (*types.Consultation, error)
	SaveReformulation(id, text string) (*types.Consultation, error)
}

// Outcome is delivered once per request.
type Outcome struct {
	ConsultationID string
	Consultation   *types.Consultation // saved record, nil on error
	Err            error
}

// Service runs reformulation requests. At most one request per
// consultation is in flight at a time.
type Service struct {
	model   Model
	store   Store
	timeout time.Duration
	log     *zap.Logger

	mu       sync.Mutex
	inflight map[string]bool
	wg       sync.WaitGroup
}

// NewService creates a Service. A zero timeout uses DefaultTimeout.
func NewService(model Model, store Store, timeout time.Duration, log *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		model:    model,
		store:    store,
		timeout:  timeout,
		log:      log,
		inflight: make(map[string]bool),
	}
}

// Start begins reformulating a consultation in a background goroutine and
// returns a channel that receives exactly one Outcome. It fails at once
// with ErrBusy when the consultation already has a request in flight, and
// with the store's error when the consultation cannot be loaded.
func (s *Service) Start(ctx context.Context, consultationID string) (<-chan Outcome, error) {
	if s.model == nil {
		return nil, ErrAINotConfigured
	}
	if !s.acquire(consultationID) {
		return nil, fmt.Errorf("consultation %s: %w", consultationID, ErrBusy)
	}

	c, err := s.store.Get(consultationID)
	if err != nil {
		s.release(consultationID)
		return nil, err
	}
	if strings.TrimSpace(c.Facts) == "" {
		s.release(consultationID)
		return nil, types.ErrMissingFacts
	}

	out := make(chan Outcome, 1)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		saved, err := s.run(ctx, c)
		s.release(consultationID)
		out <- Outcome{ConsultationID: consultationID, Consultation: saved, Err: err}
		close(out)
	}()
	return out, nil
}

// Reformulate runs one request and waits for it.
func (s *Service) Reformulate(ctx context.Context, consultationID string) (*types.Consultation, error) {
	ch, err := s.Start(ctx, consultationID)
	if err != nil {
		return nil, err
	}
	res := <-ch
	return res.Consultation, res.Err
}

// Wait blocks until every started request has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) run(ctx context.Context, c *types.Consultation) (*types.Consultation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.model.Generate(ctx, SystemPrompt, prompt(c))
	if err != nil {
		s.log.Warn("reformulation failed", zap.String("consultation_id", c.ConsultationID), zap.Error(err))
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyResponse
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	saved, err := s.store.SaveReformulation(c.ConsultationID, text)
	if err != nil {
		return nil, err
	}
	s.log.Info("reformulation done",
		zap.String("consultation_id", c.ConsultationID),
		zap.Duration("elapsed", time.Since(start)))
	return saved, nil
}

func prompt(c *types.Consultation) string {
	var b strings.Builder
	if c.Topic != "" {
		b.WriteString("Asunto: " + c.Topic + "\n\n")
	}
	b.WriteString("Hechos:\n")
	b.WriteString(c.Facts)
	return b.String()
}

func (s *Service) acquire(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[id] {
		return false
	}
	s.inflight[id] = true
	return true
}

func (s *Service) release(id string) {
	s.mu.Lock()
	delete(s.inflight, id)
	s.mu.Unlock()
}
