package store

import (
	"context"
	"sync"

	"github.com/ledgerpulse/insight/internal/model"
)

// MemorySource implements Source with in-memory slices. It is safe for
// concurrent use; List methods return copies so callers can't mutate the
// stored records.
type MemorySource struct {
	mu sync.RWMutex

	incomes  []model.IncomeRecord
	spending []model.SpendingRecord
	loans    []model.LoanRecord
	clients  []model.ClientRecord
	todos    []model.TodoRecord
}

// NewMemorySource creates an empty in-memory source.
func NewMemorySource() *MemorySource {
	return &MemorySource{}
}

func (m *MemorySource) AddIncome(records ...model.IncomeRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.incomes = append(m.incomes, records...)
}

func (m *MemorySource) AddSpending(records ...model.SpendingRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spending = append(m.spending, records...)
}

func (m *MemorySource) AddLoans(records ...model.LoanRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loans = append(m.loans, records...)
}

func (m *MemorySource) AddClients(records ...model.ClientRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients = append(m.clients, records...)
}

func (m *MemorySource) AddTodos(records ...model.TodoRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.todos = append(m.todos, records...)
}

func (m *MemorySource) ListIncomes(ctx context.Context) ([]model.IncomeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.IncomeRecord(nil), m.incomes...), nil
}

func (m *MemorySource) ListSpending(ctx context.Context) ([]model.SpendingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.SpendingRecord(nil), m.spending...), nil
}

func (m *MemorySource) ListLoans(ctx context.Context) ([]model.LoanRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.LoanRecord(nil), m.loans...), nil
}

func (m *MemorySource) ListClients(ctx context.Context) ([]model.ClientRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.ClientRecord(nil), m.clients...), nil
}

func (m *MemorySource) ListTodos(ctx context.Context) ([]model.TodoRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.TodoRecord(nil), m.todos...), nil
}
