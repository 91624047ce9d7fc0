package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"pricing-compliance-portal/internal/models"
)

// fakeStore is an in-memory Store for orchestrator tests
type fakeStore struct {
	mu          sync.Mutex
	projects    map[string]*models.Project
	units       map[string][]models.Unit
	logs        []models.UploadLog
	failReplace bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects: make(map[string]*models.Project),
		units:    make(map[string][]models.Unit),
	}
}

func (s *fakeStore) GetProject(id string) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.projects[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (s *fakeStore) FindProjectBySlug(ownerID, slug string) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.OwnerID == ownerID && p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) CreateProject(p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.projects {
		if existing.OwnerID == p.OwnerID && existing.Slug == p.Slug {
			return fmt.Errorf("duplicate slug %q", p.Slug)
		}
	}
	cp := *p
	s.projects[p.ID] = &cp
	return nil
}

func (s *fakeStore) ReplaceProjectUnits(projectID string, units []models.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failReplace {
		return errors.New("storage unavailable")
	}
	s.units[projectID] = append([]models.Unit(nil), units...)
	return nil
}

func (s *fakeStore) CreateUploadLog(l *models.UploadLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, *l)
	return nil
}

func (s *fakeStore) unitCount(projectID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.units[projectID])
}

const exportHeader = "region,county,municipality,unit_number,usable_area,price_per_m2,base_price,final_price,status\n"

func exportCSV(rows ...string) []byte {
	data := exportHeader
	for _, r := range rows {
		data += r + "\n"
	}
	return []byte(data)
}

func unitRow(no string) string {
	return "mazowieckie,warszawski,Warszawa," + no + ",50,10000,500000,520000,"
}

func TestIngestRejectsUnsupportedExtension(t *testing.T) {
	o := NewOrchestrator(newFakeStore(), nil, Options{})

	_, err := o.Ingest(context.Background(), "acct-1",
		RawBatch{FileName: "ceny.pdf", Data: []byte("%PDF")}, TargetHint{})
	if !errors.Is(err, ErrUnsupportedFileType) {
		t.Errorf("err = %v, want ErrUnsupportedFileType", err)
	}
}

func TestIngestCreatesProjectFromFilename(t *testing.T) {
	store := newFakeStore()
	o := NewOrchestrator(store, nil, Options{})

	res, err := o.Ingest(context.Background(), "acct-1",
		RawBatch{FileName: "Osiedle Słoneczne 2025.csv", Data: exportCSV(unitRow("M1"), unitRow("M2"))},
		TargetHint{})
	if err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}
	if res.AcceptedCount != 2 {
		t.Errorf("AcceptedCount = %d, want 2", res.AcceptedCount)
	}
	if res.TargetName != "Osiedle Słoneczne 2025" {
		t.Errorf("TargetName = %q, want the filename without extension", res.TargetName)
	}

	p, _ := store.FindProjectBySlug("acct-1", "osiedle-sloneczne-2025")
	if p == nil {
		t.Fatal("project not created under the derived slug")
	}
	if store.unitCount(p.ID) != 2 {
		t.Errorf("stored units = %d, want 2", store.unitCount(p.ID))
	}
}

func TestIngestReplaceOnReupload(t *testing.T) {
	store := newFakeStore()
	o := NewOrchestrator(store, nil, Options{})
	ctx := context.Background()
	batchA := RawBatch{FileName: "osiedle.csv", Data: exportCSV(unitRow("M1"), unitRow("M2"), unitRow("M3"))}
	batchB := RawBatch{FileName: "osiedle.csv", Data: exportCSV(unitRow("M4"), unitRow("M5"))}

	resA, err := o.Ingest(ctx, "acct-1", batchA, TargetHint{})
	if err != nil {
		t.Fatalf("first Ingest() error: %v", err)
	}
	resB, err := o.Ingest(ctx, "acct-1", batchB, TargetHint{})
	if err != nil {
		t.Fatalf("second Ingest() error: %v", err)
	}

	if resA.TargetID != resB.TargetID {
		t.Errorf("re-upload resolved a different project: %s vs %s", resA.TargetID, resB.TargetID)
	}
	if got := store.unitCount(resB.TargetID); got != 2 {
		t.Errorf("stored units = %d, want exactly the second batch (2)", got)
	}
	if len(store.projects) != 1 {
		t.Errorf("projects = %d, want 1", len(store.projects))
	}
}

func TestIngestReuploadIsIdempotent(t *testing.T) {
	store := newFakeStore()
	o := NewOrchestrator(store, nil, Options{})
	ctx := context.Background()
	batch := RawBatch{FileName: "osiedle.csv", Data: exportCSV(unitRow("M1"), unitRow("M2"))}

	resA, _ := o.Ingest(ctx, "acct-1", batch, TargetHint{})
	resB, err := o.Ingest(ctx, "acct-1", batch, TargetHint{})
	if err != nil {
		t.Fatalf("re-upload error: %v", err)
	}
	if resA.AcceptedCount != resB.AcceptedCount {
		t.Errorf("accepted counts differ: %d vs %d", resA.AcceptedCount, resB.AcceptedCount)
	}
	if got := store.unitCount(resB.TargetID); got != 2 {
		t.Errorf("stored units = %d, want 2", got)
	}
}

func TestIngestExplicitTargetOwnership(t *testing.T) {
	store := newFakeStore()
	store.projects["p-1"] = &models.Project{ID: "p-1", OwnerID: "acct-other", Name: "Cudzy", Slug: "cudzy"}
	o := NewOrchestrator(store, nil, Options{})
	batch := RawBatch{FileName: "osiedle.csv", Data: exportCSV(unitRow("M1"))}

	_, err := o.Ingest(context.Background(), "acct-1", batch, TargetHint{ProjectID: "p-1"})
	if !errors.Is(err, ErrTargetNotOwned) {
		t.Errorf("err = %v, want ErrTargetNotOwned", err)
	}

	_, err = o.Ingest(context.Background(), "acct-1", batch, TargetHint{ProjectID: "no-such-id"})
	if !errors.Is(err, ErrTargetResolutionFailed) {
		t.Errorf("err = %v, want ErrTargetResolutionFailed", err)
	}
}

func TestIngestExplicitTargetHappyPath(t *testing.T) {
	store := newFakeStore()
	store.projects["p-1"] = &models.Project{ID: "p-1", OwnerID: "acct-1", Name: "Moje Osiedle", Slug: "moje-osiedle"}
	o := NewOrchestrator(store, nil, Options{})
	batch := RawBatch{FileName: "export.csv", Data: exportCSV(unitRow("M1"))}

	res, err := o.Ingest(context.Background(), "acct-1", batch, TargetHint{ProjectID: "p-1"})
	if err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}
	if res.TargetID != "p-1" || res.TargetName != "Moje Osiedle" {
		t.Errorf("target = %s/%q, want p-1/Moje Osiedle", res.TargetID, res.TargetName)
	}
	if len(store.projects) != 1 {
		t.Errorf("projects = %d, explicit targeting must not create projects", len(store.projects))
	}
}

func TestIngestPersistenceFailure(t *testing.T) {
	store := newFakeStore()
	store.failReplace = true
	o := NewOrchestrator(store, nil, Options{})
	batch := RawBatch{FileName: "osiedle.csv", Data: exportCSV(unitRow("M1"))}

	_, err := o.Ingest(context.Background(), "acct-1", batch, TargetHint{})
	if !errors.Is(err, ErrPersistenceFailed) {
		t.Errorf("err = %v, want ErrPersistenceFailed", err)
	}
}

func TestIngestRecordsUploadLog(t *testing.T) {
	store := newFakeStore()
	o := NewOrchestrator(store, nil, Options{})
	batch := RawBatch{FileName: "osiedle.csv", Data: exportCSV(unitRow("M1"), "bad,row,,,,,,,")}

	res, err := o.Ingest(context.Background(), "acct-1", batch, TargetHint{})
	if err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.logs) != 1 {
		t.Fatalf("upload logs = %d, want 1", len(store.logs))
	}
	l := store.logs[0]
	if l.OwnerID != "acct-1" || l.FileName != "osiedle.csv" {
		t.Errorf("log = %+v", l)
	}
	if l.Dialect != "export" {
		t.Errorf("log dialect = %q, want export", l.Dialect)
	}
	if l.Encoding != "utf-8" {
		t.Errorf("log encoding = %q, want utf-8", l.Encoding)
	}
	if l.AcceptedCount != res.AcceptedCount || l.RejectedCount != len(res.RejectedRows) {
		t.Errorf("log counts %d/%d do not match result %d/%d",
			l.AcceptedCount, l.RejectedCount, res.AcceptedCount, len(res.RejectedRows))
	}
}

func TestIngestRejectedRowsReported(t *testing.T) {
	store := newFakeStore()
	o := NewOrchestrator(store, nil, Options{})
	// Row 2 lacks the location columns, row 3 is entirely blank
	data := exportCSV(
		unitRow("M1"),
		",,,M2,50,10000,500000,520000,",
		",,,,,,,,",
	)

	res, err := o.Ingest(context.Background(), "acct-1",
		RawBatch{FileName: "osiedle.csv", Data: data}, TargetHint{})
	if err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}
	if res.AcceptedCount != 1 {
		t.Errorf("AcceptedCount = %d, want 1", res.AcceptedCount)
	}
	if len(res.RejectedRows) != 2 {
		t.Fatalf("RejectedRows = %d, want 2", len(res.RejectedRows))
	}
	if res.RejectedRows[0].RowIndex != 2 || res.RejectedRows[1].RowIndex != 3 {
		t.Errorf("rejected indexes = %d,%d, want 2,3",
			res.RejectedRows[0].RowIndex, res.RejectedRows[1].RowIndex)
	}
}

func TestIngestPreviewIsCapped(t *testing.T) {
	store := newFakeStore()
	o := NewOrchestrator(store, nil, Options{PreviewSize: 2})
	data := exportCSV(unitRow("M1"), unitRow("M2"), unitRow("M3"), unitRow("M4"))

	res, err := o.Ingest(context.Background(), "acct-1",
		RawBatch{FileName: "osiedle.csv", Data: data}, TargetHint{})
	if err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}
	if res.AcceptedCount != 4 {
		t.Errorf("AcceptedCount = %d, want 4", res.AcceptedCount)
	}
	if len(res.Preview) != 2 {
		t.Errorf("preview = %d units, want 2", len(res.Preview))
	}
}

func TestIngestTagsUnitsWithOwnerAndProject(t *testing.T) {
	store := newFakeStore()
	o := NewOrchestrator(store, nil, Options{})

	res, err := o.Ingest(context.Background(), "acct-1",
		RawBatch{FileName: "osiedle.csv", Data: exportCSV(unitRow("M1"))}, TargetHint{})
	if err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	for _, u := range store.units[res.TargetID] {
		if u.ProjectID != res.TargetID || u.OwnerID != "acct-1" {
			t.Errorf("unit tagged %s/%s, want %s/acct-1", u.ProjectID, u.OwnerID, res.TargetID)
		}
	}
}

func TestIngestCancelledContextPreservesCommittedUnits(t *testing.T) {
	store := newFakeStore()
	o := NewOrchestrator(store, nil, Options{})
	batch := RawBatch{FileName: "osiedle.csv", Data: exportCSV(unitRow("M1"), unitRow("M2"), unitRow("M3"))}

	res, err := o.Ingest(context.Background(), "acct-1", batch, TargetHint{})
	if err != nil {
		t.Fatalf("seed Ingest() error: %v", err)
	}
	if store.unitCount(res.TargetID) != 3 {
		t.Fatalf("seed stored %d units, want 3", store.unitCount(res.TargetID))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = o.Ingest(ctx, "acct-1", batch, TargetHint{})
	if err == nil {
		t.Fatal("cancelled ingest reported success")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if got := store.unitCount(res.TargetID); got != 3 {
		t.Errorf("stored units = %d, want the committed 3 untouched", got)
	}

	store.mu.Lock()
	logs := len(store.logs)
	store.mu.Unlock()
	if logs != 1 {
		t.Errorf("upload logs = %d, want only the seed upload recorded", logs)
	}
}

func TestIngestConcurrentFirstUploadsCreateOneProject(t *testing.T) {
	store := newFakeStore()
	o := NewOrchestrator(store, nil, Options{})

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = o.Ingest(context.Background(), "acct-1",
				RawBatch{FileName: "osiedle.csv", Data: exportCSV(unitRow("M1"))}, TargetHint{})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("upload %d failed: %v", i, err)
		}
	}
	if len(store.projects) != 1 {
		t.Errorf("projects = %d, want 1 despite concurrent first uploads", len(store.projects))
	}
}
