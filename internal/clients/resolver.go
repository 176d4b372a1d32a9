package clients

import (
	"strings"

	"github.com/ledgerpulse/insight/internal/model"
)

// Resolver decides whether an income record belongs to a client. Matching is
// heuristic because many books record revenue only by a free-text source
// field; keeping it behind an interface lets the strategy change without
// touching the analytics.
type Resolver interface {
	Matches(client model.ClientRecord, record model.IncomeRecord) bool
}

// HeuristicResolver matches on client ID when the record carries one, and
// otherwise on a case-insensitive substring of the client name inside the
// record's source field.
type HeuristicResolver struct{}

func (HeuristicResolver) Matches(client model.ClientRecord, record model.IncomeRecord) bool {
	if client.ClientID != "" && record.ClientID == client.ClientID {
		return true
	}
	if client.Name == "" {
		return false
	}
	return strings.Contains(strings.ToLower(record.Source), strings.ToLower(client.Name))
}
