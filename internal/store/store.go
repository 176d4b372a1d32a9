package store

import (
	"context"

	"github.com/ledgerpulse/insight/internal/model"
)

//go:generate mockgen -source=store.go -destination=store_mock.go -package=store

// Source defines the record collections the analytics engine reads. The
// engine never writes; implementations own persistence entirely.
type Source interface {
	ListIncomes(ctx context.Context) ([]model.IncomeRecord, error)
	ListSpending(ctx context.Context) ([]model.SpendingRecord, error)
	ListLoans(ctx context.Context) ([]model.LoanRecord, error)
	ListClients(ctx context.Context) ([]model.ClientRecord, error)
	ListTodos(ctx context.Context) ([]model.TodoRecord, error)
}
