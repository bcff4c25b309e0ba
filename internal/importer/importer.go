// Package importer turns chat-log files into movement proposals the user
// confirms before anything is added.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/claude/pocketlifts/internal/ingest"
	"github.com/claude/pocketlifts/internal/ingest/chatlog"
)

// ErrSuperseded is returned by a parse that was replaced by a newer one
// before it finished.
var ErrSuperseded = errors.New("import superseded by a newer selection")

// Catalog reports whether a movement name is already known.
type Catalog interface {
	HasMovement(name string) bool
}

// Candidate is one proposed movement. Name may be edited and Selected
// toggled before the proposal is applied.
type Candidate struct {
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
	Exists   bool   `json:"exists"`
}

// Proposal is the parse result presented for confirmation.
type Proposal struct {
	Source     string        `json:"source"`
	Candidates []Candidate   `json:"candidates"`
	Result     ingest.Result `json:"result"`
	Duration   time.Duration `json:"-"`
}

// Session runs imports one at a time: starting a new parse cancels the one
// in flight.
type Session struct {
	log *slog.Logger

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// NewSession creates a Session.
func NewSession(log *slog.Logger) *Session {
	return &Session{log: log}
}

// Propose parses r and returns the candidates, every one preselected.
// Names already in catalog are flagged but still offered. If another
// Propose starts before this one finishes, this one returns ErrSuperseded.
func (s *Session) Propose(ctx context.Context, source string, r io.Reader, catalog Catalog) (*Proposal, error) {
	ctx, seq := s.begin(ctx)
	defer s.finish(seq)

	start := time.Now()
	res, err := chatlog.ParseContext(ctx, r)
	if s.superseded(seq) {
		s.log.Info("import superseded", "source", source)
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", source, err)
	}
	res.Source = source
	if len(res.Candidates) == 0 {
		res.Message = "No movement names found."
	}

	p := &Proposal{
		Source:     source,
		Result:     res,
		Candidates: make([]Candidate, 0, len(res.Candidates)),
		Duration:   time.Since(start),
	}
	for _, name := range res.Candidates {
		p.Candidates = append(p.Candidates, Candidate{
			Name:     name,
			Selected: true,
			Exists:   catalog != nil && catalog.HasMovement(name),
		})
	}

	s.log.Info("import proposal ready",
		"source", source,
		"lines", res.LinesRead,
		"candidates", len(p.Candidates),
		"duration", p.Duration,
	)
	return p, nil
}

// Cancel aborts any parse in flight.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) begin(ctx context.Context) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	s.cancel = cancel
	return ctx, s.seq
}

func (s *Session) finish(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq == seq && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) superseded(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq != seq
}

// SelectedNames returns the trimmed names of the selected candidates,
// skipping blanks.
func SelectedNames(cands []Candidate) []string {
	var names []string
	for _, c := range cands {
		if !c.Selected {
			continue
		}
		if name := strings.TrimSpace(c.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
