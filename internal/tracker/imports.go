package tracker

import (
	"context"
	"errors"
	"io"

	"github.com/claude/pocketlifts/internal/importer"
	"github.com/claude/pocketlifts/internal/ingest"
	"github.com/claude/pocketlifts/internal/storage"
)

// ImportLogStore records import outcomes.
type ImportLogStore interface {
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	ListImportLogs(ctx context.Context, limit int) ([]storage.ImportLog, error)
}

// Importer proposes and applies chat-log imports against a Tracker.
type Importer struct {
	t       *Tracker
	session *importer.Session
	logs    ImportLogStore
}

// NewImporter returns an Importer. logs may be nil.
func (t *Tracker) NewImporter(logs ImportLogStore) *Importer {
	return &Importer{t: t, session: importer.NewSession(t.log), logs: logs}
}

// Propose parses r without touching the catalog. A newer Propose on the
// same Importer supersedes this one.
func (im *Importer) Propose(ctx context.Context, source string, r io.Reader) (*importer.Proposal, error) {
	p, err := im.session.Propose(ctx, source, r, im.t)
	if errors.Is(err, importer.ErrSuperseded) {
		return nil, err
	}
	if err != nil {
		msg := err.Error()
		im.record(ctx, storage.ImportLog{Source: source, Status: storage.ImportFailed, ErrorMessage: &msg})
		return nil, err
	}
	ms := p.Duration.Milliseconds()
	im.record(ctx, storage.ImportLog{
		Source:          source,
		Status:          storage.ImportProposed,
		LinesRead:       p.Result.LinesRead,
		CandidatesFound: len(p.Candidates),
		DurationMs:      &ms,
	})
	return p, nil
}

// Apply bulk-adds the selected candidates.
func (im *Importer) Apply(ctx context.Context, source string, cands []importer.Candidate) (ingest.Result, error) {
	names := importer.SelectedNames(cands)
	added, err := im.t.AddMovements(ctx, names)
	if err != nil {
		msg := err.Error()
		im.record(ctx, storage.ImportLog{Source: source, Status: storage.ImportFailed, ErrorMessage: &msg})
		return ingest.Result{}, err
	}

	res := ingest.Result{
		Source:           source,
		Candidates:       names,
		MovementsAdded:   len(added),
		MovementsSkipped: len(names) - len(added),
	}
	if res.Candidates == nil {
		res.Candidates = []string{}
	}
	im.record(ctx, storage.ImportLog{
		Source:          source,
		Status:          storage.ImportApplied,
		CandidatesFound: len(names),
		MovementsAdded:  len(added),
	})
	return res, nil
}

// Logs returns recent import logs, or nil when no log store is attached.
func (im *Importer) Logs(ctx context.Context, limit int) ([]storage.ImportLog, error) {
	if im.logs == nil {
		return nil, nil
	}
	return im.logs.ListImportLogs(ctx, limit)
}

func (im *Importer) record(ctx context.Context, l storage.ImportLog) {
	if im.logs == nil {
		return
	}
	if _, err := im.logs.InsertImportLog(ctx, l); err != nil {
		im.t.log.Warn("recording import log failed", "source", l.Source, "error", err)
	}
}
