package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ledgerpulse/insight/internal/model"
)

// recordFile is the on-disk JSON layout: one document holding any subset of
// the collections. Missing collections are simply empty.
type recordFile struct {
	Income   []model.IncomeRecord   `json:"income"`
	Spending []model.SpendingRecord `json:"spending"`
	Loans    []model.LoanRecord     `json:"loans"`
	Clients  []model.ClientRecord   `json:"clients"`
	Todos    []model.TodoRecord     `json:"todos"`
}

// LoadFiles reads one or more JSON record files into a fresh MemorySource.
// Records from multiple files are merged; malformed dates inside a file are
// tolerated (the affected records are skipped downstream), but an unreadable
// or syntactically invalid file is an error.
func LoadFiles(paths ...string) (*MemorySource, error) {
	src := NewMemorySource()
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read records: %w", err)
		}
		var doc recordFile
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse records %s: %w", path, err)
		}
		src.AddIncome(doc.Income...)
		src.AddSpending(doc.Spending...)
		src.AddLoans(doc.Loans...)
		src.AddClients(doc.Clients...)
		src.AddTodos(doc.Todos...)
	}
	return src, nil
}
