package ports

import "github.com/souvikmukherjee/util-bian-modelling/internal/domain"

// ReportStore persists run reports for later inspection.
type ReportStore interface {
	SaveReport(report domain.RunReport) (id string, err error)
}
