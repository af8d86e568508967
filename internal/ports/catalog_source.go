package ports

import (
	"context"

	"github.com/souvikmukherjee/util-bian-modelling/internal/domain"
)

// DomainLister lists every service domain summary, in the order the source provides them.
type DomainLister interface {
	ListDomains(ctx context.Context) ([]domain.DomainSummary, error)
}

// DetailFetcher looks up the characteristics of one service domain.
//
// A non-success lookup is not an error: it is reported through the outcome with a nil
// detail. An error is returned only when the caller's context is done.
type DetailFetcher interface {
	FetchDetail(ctx context.Context, bianID string) (domain.DetailResult, error)
}
