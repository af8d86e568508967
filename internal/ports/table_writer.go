package ports

import "github.com/souvikmukherjee/util-bian-modelling/internal/domain"

// TableWriter serializes the assembled rows as a named, styled table.
type TableWriter interface {
	WriteTable(path string, rows []domain.OutputRow) error
}
