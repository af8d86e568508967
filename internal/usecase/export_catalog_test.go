package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/souvikmukherjee/util-bian-modelling/internal/domain"
	"github.com/souvikmukherjee/util-bian-modelling/internal/ports"
)

// --- fakes ---

type fakeLister struct {
	summaries []domain.DomainSummary
	err       error
}

func (f fakeLister) ListDomains(_ context.Context) ([]domain.DomainSummary, error) {
	return f.summaries, f.err
}

type fakeFetcher struct {
	mu      sync.Mutex
	calls   []string
	results map[string]domain.DetailResult
	delay   func(bianID string) time.Duration

	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeFetcher) FetchDetail(ctx context.Context, bianID string) (domain.DetailResult, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, bianID)
	f.mu.Unlock()

	if f.delay != nil {
		select {
		case <-time.After(f.delay(bianID)):
		case <-ctx.Done():
			return domain.DetailResult{}, ctx.Err()
		}
	}

	if r, ok := f.results[bianID]; ok {
		return r, nil
	}
	return domain.DetailResult{Outcome: domain.DetailOutcome{
		BianID:     bianID,
		Status:     domain.DetailHTTPError,
		StatusCode: 404,
	}}, nil
}

type fakeWriter struct {
	calls int
	path  string
	rows  []domain.OutputRow
	err   error
}

func (w *fakeWriter) WriteTable(path string, rows []domain.OutputRow) error {
	w.calls++
	w.path = path
	w.rows = rows
	return w.err
}

type fakeStore struct {
	saved []domain.RunReport
	err   error
}

func (s *fakeStore) SaveReport(r domain.RunReport) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.saved = append(s.saved, r)
	return "20260101T000000Z_report", nil
}

func str(v string) *string { return &v }

func okDetail(id, fp, at, ga string) domain.DetailResult {
	return domain.DetailResult{
		Detail: &domain.DomainDetail{FunctionalPattern: str(fp), AssetType: str(at), GenericArtefactType: str(ga)},
		Outcome: domain.DetailOutcome{
			BianID:     id,
			Status:     domain.DetailOK,
			StatusCode: 200,
		},
	}
}

func testSettings() domain.Settings {
	s := domain.DefaultSettings()
	s.Output.Path = "out/table.xlsx"
	return s
}

func fixedClock() func() time.Time {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time { return t0 }
}

func newUC(l fakeLister, f *fakeFetcher, w *fakeWriter, st *fakeStore, log *zap.Logger) *ExportCatalog {
	var store ports.ReportStore
	if st != nil {
		store = st
	}
	return NewExportCatalog(l, f, w, store, log,
		WithClock(fixedClock()),
		WithIDGenerator(func() string { return "run-id" }),
	)
}

// --- tests ---

func TestExportCatalog_SuccessfulDetail(t *testing.T) {
	l := fakeLister{summaries: []domain.DomainSummary{{BianID: "BQ", Name: "Branch", RoleDefinition: "desc"}}}
	f := &fakeFetcher{results: map[string]domain.DetailResult{
		"BQ": okDetail("BQ", "Fulfill", "Info", "Record"),
	}}
	w := &fakeWriter{}
	st := &fakeStore{}

	res, err := newUC(l, f, w, st, nil).Execute(context.Background(), testSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []domain.OutputRow{{
		BianID: "BQ", ServiceDomain: "Branch", Description: "desc",
		FunctionalPattern: "Fulfill", AssetType: "Info", GenericArtefact: "Record",
	}}
	if diff := cmp.Diff(want, w.rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	if w.path != "out/table.xlsx" {
		t.Fatalf("unexpected path %q", w.path)
	}
	if res.ReportID != "20260101T000000Z_report" {
		t.Fatalf("unexpected report id %q", res.ReportID)
	}
	if res.Report.ID != "run-id" || res.Report.Enriched != 1 || res.Report.Fallback != 0 {
		t.Fatalf("unexpected report: %+v", res.Report)
	}
	if len(st.saved) != 1 {
		t.Fatalf("expected one saved report, got %d", len(st.saved))
	}
}

func TestExportCatalog_NotFoundDetailFallsBack(t *testing.T) {
	l := fakeLister{summaries: []domain.DomainSummary{{BianID: "BQ", Name: "Branch", RoleDefinition: "desc"}}}
	f := &fakeFetcher{}
	w := &fakeWriter{}

	res, err := newUC(l, f, w, nil, nil).Execute(context.Background(), testSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []domain.OutputRow{{
		BianID: "BQ", ServiceDomain: "Branch", Description: "desc",
		FunctionalPattern: "N/A", AssetType: "N/A", GenericArtefact: "N/A",
	}}
	if diff := cmp.Diff(want, w.rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	if res.Report.Fallback != 1 || res.Report.Outcomes[0].StatusCode != 404 {
		t.Fatalf("unexpected report: %+v", res.Report)
	}
	if res.ReportID != "" {
		t.Fatalf("no store configured, got report id %q", res.ReportID)
	}
}

func TestExportCatalog_ListingFailureWritesNothing(t *testing.T) {
	listErr := &domain.OpError{
		Op:     "bianapi.list",
		Kind:   domain.KindHTTPStatus,
		Status: 500,
		Err:    domain.ErrListingFailed,
	}
	l := fakeLister{err: listErr}
	f := &fakeFetcher{}
	w := &fakeWriter{}
	st := &fakeStore{}

	_, err := newUC(l, f, w, st, nil).Execute(context.Background(), testSettings())
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, domain.ErrListingFailed) || domain.StatusOf(err) != 500 {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.calls != 0 || len(f.calls) != 0 || len(st.saved) != 0 {
		t.Fatalf("nothing should run after a failed listing: writer=%d fetches=%d reports=%d",
			w.calls, len(f.calls), len(st.saved))
	}
}

func TestExportCatalog_SequentialPreservesListOrder(t *testing.T) {
	ids := []string{"SD3", "SD1", "SD2"}
	l := fakeLister{}
	for _, id := range ids {
		l.summaries = append(l.summaries, domain.DomainSummary{BianID: id, Name: "n" + id})
	}
	f := &fakeFetcher{results: map[string]domain.DetailResult{
		"SD1": okDetail("SD1", "a", "b", "c"),
	}}
	w := &fakeWriter{}

	if _, err := newUC(l, f, w, nil, nil).Execute(context.Background(), testSettings()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff(ids, f.calls); diff != "" {
		t.Fatalf("fetch order mismatch (-want +got):\n%s", diff)
	}
	if f.peak.Load() != 1 {
		t.Fatalf("expected one request in flight, peak=%d", f.peak.Load())
	}
	for i, id := range ids {
		if w.rows[i].BianID != id {
			t.Fatalf("row %d: want %s got %s", i, id, w.rows[i].BianID)
		}
	}
	if w.rows[1].FunctionalPattern != "a" || w.rows[0].FunctionalPattern != "N/A" {
		t.Fatalf("unexpected rows: %+v", w.rows)
	}
}

func TestExportCatalog_ConcurrentPreservesListOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := fakeLister{}
	results := map[string]domain.DetailResult{}
	ids := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	for _, id := range ids {
		l.summaries = append(l.summaries, domain.DomainSummary{BianID: id, Name: id})
		results[id] = okDetail(id, "fp-"+id, "at-"+id, "ga-"+id)
	}
	// Earlier items take longer so completion order is reversed.
	f := &fakeFetcher{
		results: results,
		delay: func(id string) time.Duration {
			return time.Duration(len(ids)-int(id[0]-'A')) * 5 * time.Millisecond
		},
	}
	w := &fakeWriter{}

	s := testSettings()
	s.Fetch.Concurrency = 3

	if _, err := newUC(l, f, w, nil, nil).Execute(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(w.rows) != len(ids) {
		t.Fatalf("want %d rows, got %d", len(ids), len(w.rows))
	}
	for i, id := range ids {
		if w.rows[i].BianID != id || w.rows[i].FunctionalPattern != "fp-"+id {
			t.Fatalf("row %d out of order: %+v", i, w.rows[i])
		}
	}
	if p := f.peak.Load(); p > 3 {
		t.Fatalf("concurrency limit exceeded: peak=%d", p)
	}
}

func TestExportCatalog_Idempotent(t *testing.T) {
	l := fakeLister{summaries: []domain.DomainSummary{
		{BianID: "BQ", Name: "Branch", RoleDefinition: "desc"},
		{BianID: "PA", Name: "Party", RoleDefinition: "p"},
	}}
	results := map[string]domain.DetailResult{"BQ": okDetail("BQ", "Fulfill", "Info", "Record")}

	w1, w2 := &fakeWriter{}, &fakeWriter{}
	if _, err := newUC(l, &fakeFetcher{results: results}, w1, nil, nil).Execute(context.Background(), testSettings()); err != nil {
		t.Fatal(err)
	}
	if _, err := newUC(l, &fakeFetcher{results: results}, w2, nil, nil).Execute(context.Background(), testSettings()); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(w1.rows, w2.rows); diff != "" {
		t.Fatalf("runs differ (-first +second):\n%s", diff)
	}
}

func TestExportCatalog_EmptyListingWritesHeaderOnlyTable(t *testing.T) {
	w := &fakeWriter{}
	res, err := newUC(fakeLister{summaries: []domain.DomainSummary{}}, &fakeFetcher{}, w, nil, nil).
		Execute(context.Background(), testSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.calls != 1 || len(w.rows) != 0 || res.Report.Total != 0 {
		t.Fatalf("expected an empty table to be written: calls=%d rows=%d", w.calls, len(w.rows))
	}
}

func TestExportCatalog_WriterErrorIsFatal(t *testing.T) {
	l := fakeLister{summaries: []domain.DomainSummary{{BianID: "BQ"}}}
	w := &fakeWriter{err: &domain.OpError{Op: "xlsx.save", Kind: domain.KindExecution, Err: errors.New("disk full")}}
	st := &fakeStore{}

	_, err := newUC(l, &fakeFetcher{}, w, st, nil).Execute(context.Background(), testSettings())
	if !domain.IsKind(err, domain.KindExecution) {
		t.Fatalf("expected execution error, got %v", err)
	}
	if len(st.saved) != 0 {
		t.Fatalf("report should not be saved when the table failed")
	}
}

func TestExportCatalog_ReportErrorIsNotFatal(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	l := fakeLister{summaries: []domain.DomainSummary{{BianID: "BQ"}}}
	w := &fakeWriter{}
	st := &fakeStore{err: errors.New("read-only fs")}

	res, err := newUC(l, &fakeFetcher{}, w, st, zap.New(core)).Execute(context.Background(), testSettings())
	if err != nil {
		t.Fatalf("report failure must not fail the run: %v", err)
	}
	if w.calls != 1 || res.ReportID != "" {
		t.Fatalf("unexpected result: writer=%d id=%q", w.calls, res.ReportID)
	}
	if logs.FilterMessage("Failed to save run report").Len() != 1 {
		t.Fatalf("expected a warning about the report, got %v", logs.All())
	}
}

func TestExportCatalog_ReportDisabled(t *testing.T) {
	l := fakeLister{summaries: []domain.DomainSummary{{BianID: "BQ"}}}
	st := &fakeStore{}
	s := testSettings()
	s.Output.WriteReport = false

	if _, err := newUC(l, &fakeFetcher{}, &fakeWriter{}, st, nil).Execute(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	if len(st.saved) != 0 {
		t.Fatalf("report written although disabled")
	}
}

func TestExportCatalog_LogsProgressAndMalformedDetail(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := fakeLister{summaries: []domain.DomainSummary{{BianID: "BQ"}, {BianID: "PA"}}}
	f := &fakeFetcher{results: map[string]domain.DetailResult{
		"PA": {
			Detail: &domain.DomainDetail{FunctionalPattern: str("Manage")},
			Outcome: domain.DetailOutcome{
				BianID:        "PA",
				Status:        domain.DetailMalformed,
				StatusCode:    200,
				MissingFields: []string{"assetType", "genericArtefactType"},
			},
		},
	}}
	w := &fakeWriter{}

	res, err := newUC(l, f, w, nil, zap.New(core)).Execute(context.Background(), testSettings())
	if err != nil {
		t.Fatal(err)
	}

	if logs.FilterMessage("Processing domain 1 of 2").Len() != 1 || logs.FilterMessage("Processing domain 2 of 2").Len() != 1 {
		t.Fatalf("missing progress lines: %v", logs.All())
	}
	if logs.FilterMessage("Detail response incomplete, using N/A for missing fields").Len() != 1 {
		t.Fatalf("missing malformed warning: %v", logs.All())
	}
	if w.rows[1].FunctionalPattern != "Manage" || w.rows[1].AssetType != "N/A" {
		t.Fatalf("unexpected partial row: %+v", w.rows[1])
	}
	if res.Report.Enriched != 1 || res.Report.Fallback != 1 {
		t.Fatalf("unexpected counts: %+v", res.Report)
	}
}

func TestExportCatalog_CancelWritesNothing(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := fakeLister{summaries: []domain.DomainSummary{{BianID: "A"}, {BianID: "B"}, {BianID: "C"}}}
	f := &fakeFetcher{delay: func(id string) time.Duration {
		if id == "A" {
			cancel()
		}
		return time.Minute
	}}
	w := &fakeWriter{}

	s := testSettings()
	s.Fetch.Concurrency = 2

	_, err := newUC(l, f, w, nil, nil).Execute(ctx, s)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !errors.Is(err, domain.ErrExecution) || !domain.IsKind(err, domain.KindExecution) {
		t.Fatalf("expected execution error, got %v", err)
	}
	if w.calls != 0 {
		t.Fatalf("table must not be written after cancellation")
	}
}
