package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/souvikmukherjee/util-bian-modelling/internal/domain"
	"github.com/souvikmukherjee/util-bian-modelling/internal/ports"
)

// ExportCatalog lists every service domain, looks up each one's characteristics,
// and writes the merged rows as a single table.
type ExportCatalog struct {
	lister  ports.DomainLister
	fetcher ports.DetailFetcher
	writer  ports.TableWriter
	store   ports.ReportStore
	log     *zap.Logger

	now   func() time.Time
	newID func() string
}

type ExportOption func(*ExportCatalog)

func WithClock(now func() time.Time) ExportOption {
	return func(uc *ExportCatalog) { uc.now = now }
}

func WithIDGenerator(gen func() string) ExportOption {
	return func(uc *ExportCatalog) { uc.newID = gen }
}

// NewExportCatalog wires the pipeline. store may be nil, in which case no report is kept.
func NewExportCatalog(l ports.DomainLister, f ports.DetailFetcher, w ports.TableWriter, store ports.ReportStore, log *zap.Logger, opts ...ExportOption) *ExportCatalog {
	if log == nil {
		log = zap.NewNop()
	}
	uc := &ExportCatalog{
		lister:  l,
		fetcher: f,
		writer:  w,
		store:   store,
		log:     log,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *ExportCatalog) Execute(ctx context.Context, s domain.Settings) (domain.ExportResult, error) {
	started := uc.now().UTC()

	uc.log.Info("Retrieving service domains", zap.String("base_url", s.API.BaseURL))
	summaries, err := uc.lister.ListDomains(ctx)
	if err != nil {
		uc.log.Error("Failed to retrieve service domains",
			zap.Int("status", domain.StatusOf(err)),
			zap.Error(err))
		return domain.ExportResult{}, err
	}
	uc.log.Info("Retrieved service domains", zap.Int("count", len(summaries)))

	results, err := uc.fetchAll(ctx, summaries, s.Fetch.Concurrency)
	if err != nil {
		return domain.ExportResult{}, &domain.OpError{
			Op:   "export.details",
			Kind: domain.KindExecution,
			Err:  fmt.Errorf("%w: %w", domain.ErrExecution, err),
		}
	}

	rows := make([]domain.OutputRow, len(summaries))
	outcomes := make([]domain.DetailOutcome, len(summaries))
	enriched := 0
	for i, sum := range summaries {
		rows[i] = domain.AssembleRow(sum, results[i].Detail)

		o := results[i].Outcome
		if o.BianID == "" {
			o.BianID = sum.BianID
		}
		outcomes[i] = o
		if o.Enriched() {
			enriched++
		}
	}

	// A cancellation that landed after the last lookup still aborts before the file is touched.
	if err := ctx.Err(); err != nil {
		return domain.ExportResult{}, &domain.OpError{
			Op:   "export.details",
			Kind: domain.KindExecution,
			Err:  fmt.Errorf("%w: %w", domain.ErrExecution, err),
		}
	}

	if err := uc.writer.WriteTable(s.Output.Path, rows); err != nil {
		uc.log.Error("Failed to write table", zap.String("path", s.Output.Path), zap.Error(err))
		return domain.ExportResult{}, err
	}
	uc.log.Info("Data written", zap.String("path", s.Output.Path), zap.Int("rows", len(rows)))

	report := domain.RunReport{
		ID:         uc.newID(),
		BaseURL:    s.API.BaseURL,
		OutputPath: s.Output.Path,
		StartedAt:  started,
		FinishedAt: uc.now().UTC(),
		Total:      len(rows),
		Enriched:   enriched,
		Fallback:   len(rows) - enriched,
		Outcomes:   outcomes,
	}

	res := domain.ExportResult{Rows: rows, Report: report}

	if s.Output.WriteReport && uc.store != nil {
		id, err := uc.store.SaveReport(report)
		if err != nil {
			uc.log.Warn("Failed to save run report", zap.Error(err))
		} else {
			res.ReportID = id
		}
	}

	return res, nil
}

// fetchAll returns one result per summary at the summary's index.
func (uc *ExportCatalog) fetchAll(ctx context.Context, summaries []domain.DomainSummary, concurrency int) ([]domain.DetailResult, error) {
	total := len(summaries)
	results := make([]domain.DetailResult, total)

	if concurrency <= 1 {
		for i, sum := range summaries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			r, err := uc.fetchOne(ctx, i, total, sum)
			if err != nil {
				return nil, err
			}
			results[i] = r
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, sum := range summaries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := uc.fetchOne(gctx, i, total, sum)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (uc *ExportCatalog) fetchOne(ctx context.Context, i, total int, sum domain.DomainSummary) (domain.DetailResult, error) {
	uc.log.Info(fmt.Sprintf("Processing domain %d of %d", i+1, total), zap.String("bian_id", sum.BianID))

	r, err := uc.fetcher.FetchDetail(ctx, sum.BianID)
	if err != nil {
		return domain.DetailResult{}, err
	}
	uc.logOutcome(r.Outcome)
	return r, nil
}

func (uc *ExportCatalog) logOutcome(o domain.DetailOutcome) {
	fields := []zap.Field{
		zap.String("bian_id", o.BianID),
		zap.Int64("latency_ms", o.LatencyMS),
	}

	switch o.Status {
	case domain.DetailOK:
		uc.log.Debug("Detail retrieved", fields...)
	case domain.DetailHTTPError:
		uc.log.Warn("Detail lookup failed, using N/A",
			append(fields, zap.Int("status", o.StatusCode), zap.String("body", o.Message))...)
	case domain.DetailTransportError:
		uc.log.Warn("Detail lookup failed, using N/A",
			append(fields, zap.String("error", o.Message))...)
	case domain.DetailMalformed:
		uc.log.Warn("Detail response incomplete, using N/A for missing fields",
			append(fields, zap.Strings("missing", o.MissingFields), zap.String("reason", o.Message))...)
	}
}
