package reports

import (
	"context"
	"log/slog"
	"time"

	"github.com/Domenick1991/airline/internal/repository"
)

// PreviewRows is how many rows a report table carries.
const PreviewRows = 50

type ReportUseCase interface {
	Catalog() []Entry
	Build(ctx context.Context, id int) (*Table, error)
	Snapshot(ctx context.Context) ([]Table, error)
}

type Entry struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// Table is a rendered report: column names and at most PreviewRows rows.
type Table struct {
	ID        int      `json:"id"`
	Title     string   `json:"title"`
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
	TotalRows int      `json:"total_rows"`
	Truncated bool     `json:"truncated"`
}

var catalog = []Entry{
	{ID: int(repository.ReportAverageOccupancy), Title: "Average occupancy of completed flights"},
	{ID: int(repository.ReportRevenueByCombo), Title: "Revenue by aircraft size, manufacturer and class"},
	{ID: int(repository.ReportStaffHours), Title: "Accumulated flight hours per staff member"},
	{ID: int(repository.ReportCancellationRate), Title: "Customer cancellation rate by month"},
	{ID: int(repository.ReportAircraftMonthly), Title: "Monthly activity summary per aircraft"},
}

type ReportService struct {
	reports repository.ReportRepository
	now     func() time.Time
}

type ReportServiceOption func(*ReportService)

func WithClock(now func() time.Time) ReportServiceOption {
	return func(s *ReportService) {
		s.now = now
	}
}

func NewReportService(reports repository.ReportRepository, opts ...ReportServiceOption) *ReportService {
	s := &ReportService{reports: reports, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ReportService) Catalog() []Entry {
	out := make([]Entry, len(catalog))
	copy(out, catalog)
	return out
}

// Build runs one report. Unknown ids fall back to the first report.
func (s *ReportService) Build(ctx context.Context, id int) (*Table, error) {
	entry := catalog[0]
	for _, e := range catalog {
		if e.ID == id {
			entry = e
			break
		}
	}

	result, err := s.reports.Run(ctx, repository.ReportID(entry.ID), s.now())
	if err != nil {
		return nil, err
	}

	table := &Table{
		ID:        entry.ID,
		Title:     entry.Title,
		Columns:   result.Columns,
		Rows:      result.Rows,
		TotalRows: len(result.Rows),
	}
	if len(table.Rows) > PreviewRows {
		table.Rows = table.Rows[:PreviewRows]
		table.Truncated = true
	}
	return table, nil
}

// Snapshot builds every report in catalog order.
func (s *ReportService) Snapshot(ctx context.Context) ([]Table, error) {
	tables := make([]Table, 0, len(catalog))
	for _, e := range catalog {
		table, err := s.Build(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "report built", "report_id", e.ID, "rows", table.TotalRows)
		tables = append(tables, *table)
	}
	return tables, nil
}

var _ ReportUseCase = (*ReportService)(nil)
