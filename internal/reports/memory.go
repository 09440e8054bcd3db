package reports

import (
	"context"
	"sync"

	"rental-inspection-backend/internal/models"
)

type reportKey struct {
	orderID    string
	merchantID string
}

// MemoryRecords is an in-process RecordStore with the same uniqueness
// guarantee as the return_reports table.
type MemoryRecords struct {
	mu      sync.Mutex
	reports map[reportKey]models.Report
	inserts int
}

func NewMemoryRecords() *MemoryRecords {
	return &MemoryRecords{reports: make(map[reportKey]models.Report)}
}

func (m *MemoryRecords) FindReport(ctx context.Context, orderID, merchantID string) (*models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reports[reportKey{orderID, merchantID}]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *MemoryRecords) InsertReport(ctx context.Context, report *models.Report) (*models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := reportKey{report.OrderID, report.MerchantID}
	if _, ok := m.reports[key]; ok {
		return nil, ErrUniqueViolation
	}
	m.reports[key] = *report
	m.inserts++

	stored := *report
	return &stored, nil
}

// Inserts is the number of successful inserts.
func (m *MemoryRecords) Inserts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inserts
}
