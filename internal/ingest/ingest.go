// Package ingest runs the upload pipeline: decode bytes, parse rows,
// detect the source dialect, map and validate every row, then commit the
// batch to its project with replace-on-re-upload semantics.
package ingest

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"pricing-compliance-portal/internal/dialect"
	"pricing-compliance-portal/internal/mapper"
	"pricing-compliance-portal/internal/models"
	"pricing-compliance-portal/internal/slug"
	"pricing-compliance-portal/internal/tabular"
	"pricing-compliance-portal/internal/textenc"
	"pricing-compliance-portal/internal/validate"
)

// RawBatch is one uploaded file: the buffered bytes plus the declared
// filename, used for the extension gate and as a project-name fallback.
type RawBatch struct {
	FileName string
	Data     []byte
}

// TargetHint optionally pins the batch to an explicit project or suggests
// a project name. With neither, the name comes from the batch itself.
type TargetHint struct {
	ProjectID string
	NameHint  string
}

// Result is the per-invocation summary returned to the caller
type Result struct {
	TargetID         string                 `json:"target_id"`
	TargetName       string                 `json:"target_name"`
	AcceptedCount    int                    `json:"accepted_count"`
	RejectedRows     []validate.RejectedRow `json:"rejected_rows"`
	Preview          []models.Unit          `json:"preview"`
	Encoding         string                 `json:"encoding"`
	Confidence       string                 `json:"confidence"`
	Dialect          string                 `json:"dialect"`
	FormatConfidence int                    `json:"format_confidence"`
}

// Indexer pushes committed units into the search index. Indexing is best
// effort; a failure is logged, never surfaced to the uploader.
type Indexer interface {
	ReplaceProjectUnits(projectID string, units []models.Unit) error
}

// Orchestrator owns one ingestion pipeline instance
type Orchestrator struct {
	store       Store
	indexer     Indexer
	locks       *targetLocks
	mapWorkers  int
	previewSize int
}

// Options tunes the orchestrator
type Options struct {
	MapWorkers  int // parallel row mappers per invocation (default 4)
	PreviewSize int // accepted records echoed back in the result (default 5)
}

// NewOrchestrator creates an orchestrator over the given store. indexer
// may be nil when search is not configured.
func NewOrchestrator(store Store, indexer Indexer, opts Options) *Orchestrator {
	if opts.MapWorkers <= 0 {
		opts.MapWorkers = 4
	}
	if opts.PreviewSize <= 0 {
		opts.PreviewSize = 5
	}
	return &Orchestrator{
		store:       store,
		indexer:     indexer,
		locks:       newTargetLocks(),
		mapWorkers:  opts.MapWorkers,
		previewSize: opts.PreviewSize,
	}
}

// acceptedExtensions gates uploads before any decoding work
var acceptedExtensions = map[string]bool{
	".csv": true,
	".tsv": true,
	".txt": true,
}

// Ingest runs the full pipeline for one batch. Per-row problems land in
// Result.RejectedRows; only extension, target-resolution and persistence
// problems are batch-fatal.
func (o *Orchestrator) Ingest(ctx context.Context, ownerID string, batch RawBatch, hint TargetHint) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(batch.FileName))
	if !acceptedExtensions[ext] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}

	decoded := textenc.Decode(batch.Data)
	log.Printf("[ingest] owner=%s file=%s encoding=%s confidence=%s extended_chars=%v",
		ownerID, batch.FileName, decoded.Encoding, decoded.Confidence, decoded.HasExtendedChars)

	rows, err := tabular.Parse(decoded.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}

	det := dialect.Classify(rows)
	log.Printf("[ingest] owner=%s file=%s dialect=%s format_confidence=%d rows=%d",
		ownerID, batch.FileName, det.Dialect.Name, det.Confidence, len(rows))

	candidates, err := o.mapRows(ctx, rows, det.Dialect)
	if err != nil {
		// Abort before the replace step: a batch cut short by cancellation
		// must never supersede the project's committed units.
		return nil, err
	}
	outcome := validate.Validate(candidates)

	// Serialize resolve-and-replace per (owner, slug) so a racing upload
	// cannot wipe this batch between our delete and insert, and so two
	// first uploads of the same project do not both try to create it.
	project, unlock, err := o.lockAndResolve(ownerID, batch, rows, det.Dialect, hint)
	if err != nil {
		return nil, err
	}
	defer unlock()

	for i := range outcome.Accepted {
		outcome.Accepted[i].ProjectID = project.ID
		outcome.Accepted[i].OwnerID = ownerID
	}
	if err := o.store.ReplaceProjectUnits(project.ID, outcome.Accepted); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	uploadLog := &models.UploadLog{
		ID:               uuid.NewString(),
		OwnerID:          ownerID,
		ProjectID:        project.ID,
		FileName:         batch.FileName,
		Encoding:         decoded.Encoding,
		Confidence:       decoded.Confidence,
		Dialect:          det.Dialect.Name,
		FormatConfidence: det.Confidence,
		AcceptedCount:    len(outcome.Accepted),
		RejectedCount:    len(outcome.Rejected),
	}
	if err := o.store.CreateUploadLog(uploadLog); err != nil {
		log.Printf("[ingest] Warning: failed to write upload log for project %s: %v", project.ID, err)
	}

	if o.indexer != nil {
		if err := o.indexer.ReplaceProjectUnits(project.ID, outcome.Accepted); err != nil {
			log.Printf("[ingest] Warning: failed to index units for project %s: %v", project.ID, err)
		}
	}

	preview := outcome.Accepted
	if len(preview) > o.previewSize {
		preview = preview[:o.previewSize]
	}
	log.Printf("[ingest] owner=%s project=%s accepted=%d rejected=%d",
		ownerID, project.ID, len(outcome.Accepted), len(outcome.Rejected))

	return &Result{
		TargetID:         project.ID,
		TargetName:       project.Name,
		AcceptedCount:    len(outcome.Accepted),
		RejectedRows:     outcome.Rejected,
		Preview:          preview,
		Encoding:         decoded.Encoding,
		Confidence:       decoded.Confidence,
		Dialect:          det.Dialect.Name,
		FormatConfidence: det.Confidence,
	}, nil
}

// mapRows maps rows to candidate units on a bounded worker pool. Results
// keep row order and are joined before anything is persisted. Cancellation
// is batch-fatal: a partially mapped batch is returned as an error, never
// as a truncated candidate list.
func (o *Orchestrator) mapRows(ctx context.Context, rows []tabular.Row, d dialect.Dialect) ([]validate.Candidate, error) {
	candidates := make([]validate.Candidate, len(rows))
	today := time.Now()

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < o.mapWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				unit, diags := mapper.MapRow(rows[i], d, today)
				for _, diag := range diags {
					log.Printf("[ingest] row=%d field=%s %s", diag.RowIndex, diag.Field, diag.Note)
				}
				candidates[i] = validate.Candidate{RowIndex: rows[i].Index, Unit: unit}
			}
		}()
	}

	for i := range rows {
		// checked before the select so an already-cancelled context aborts
		// deterministically instead of racing the dispatch case
		if ctx.Err() != nil {
			close(jobs)
			wg.Wait()
			return nil, fmt.Errorf("mapping aborted: %w", ctx.Err())
		}
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, fmt.Errorf("mapping aborted: %w", ctx.Err())
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	if ctx.Err() != nil {
		return nil, fmt.Errorf("mapping aborted: %w", ctx.Err())
	}
	return candidates, nil
}

// lockAndResolve finds or creates the project a batch belongs to and
// returns it with its (owner, slug) lock held. An explicit id must belong
// to the calling owner; otherwise the project is derived from the batch
// name (declared column, hint, or filename).
func (o *Orchestrator) lockAndResolve(ownerID string, batch RawBatch, rows []tabular.Row, d dialect.Dialect, hint TargetHint) (*models.Project, func(), error) {
	if hint.ProjectID != "" {
		project, err := o.store.GetProject(hint.ProjectID)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrTargetResolutionFailed, err)
		}
		if project == nil {
			return nil, nil, fmt.Errorf("%w: project %q not found", ErrTargetResolutionFailed, hint.ProjectID)
		}
		if project.OwnerID != ownerID {
			return nil, nil, fmt.Errorf("%w: project %q", ErrTargetNotOwned, hint.ProjectID)
		}
		lock := o.locks.lock(ownerID + "/" + project.Slug)
		return project, lock.Unlock, nil
	}

	name := mapper.ProjectName(rows, d)
	if name == "" {
		name = strings.TrimSpace(hint.NameHint)
	}
	if name == "" {
		base := filepath.Base(batch.FileName)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	s := slug.Make(name)
	if s == "" {
		s = "projekt"
		name = "Projekt"
	}

	lock := o.locks.lock(ownerID + "/" + s)

	project, err := o.store.FindProjectBySlug(ownerID, s)
	if err != nil {
		lock.Unlock()
		return nil, nil, fmt.Errorf("%w: %v", ErrTargetResolutionFailed, err)
	}
	if project != nil {
		return project, lock.Unlock, nil
	}

	project = &models.Project{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Name:    name,
		Slug:    s,
	}
	if err := o.store.CreateProject(project); err != nil {
		lock.Unlock()
		return nil, nil, fmt.Errorf("%w: %v", ErrTargetResolutionFailed, err)
	}
	log.Printf("[ingest] created project id=%s owner=%s slug=%s", project.ID, ownerID, s)
	return project, lock.Unlock, nil
}
