package store

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/ledgerpulse/insight/internal/model"
)

// demo clients and their monthly retainers.
var demoClients = []struct {
	id       string
	name     string
	company  string
	retainer float64
}{
	{"client-orbit", "Orbit Media", "Orbit Media Pty Ltd", 4200},
	{"client-nimbus", "Nimbus Labs", "Nimbus Labs Inc", 3100},
	{"client-vega", "Vega Consulting", "Vega Consulting GmbH", 1800},
	{"client-quartz", "Quartz Partners", "Quartz Partners LLP", 950},
}

var demoExpenses = []struct {
	reason string
	amount float64
	jitter float64
}{
	{"Office rent", 1800, 0},
	{"Contractor invoice - design", 1200, 300},
	{"Google ads campaign", 600, 250},
	{"Adobe subscription", 89.99, 0},
	{"Slack subscription", 45, 0},
	{"Electricity bill", 140, 40},
	{"Team lunch", 120, 60},
	{"Office supplies", 75, 50},
}

// Seed fills the source with a deterministic demo book: months of retainer
// income across four clients, recurring and jittered expenses, a couple of
// loans and open tasks. The rng seed is fixed so every run produces the same
// records.
func Seed(src *MemorySource, months int, until time.Time) {
	rng := rand.New(rand.NewSource(42))
	start := time.Date(until.Year(), until.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	for i := 0; i < months; i++ {
		monthStart := start.AddDate(0, i, 0)

		for _, c := range demoClients {
			// Roughly 5% month-to-month drift per client.
			amount := c.retainer * (1 + (rng.Float64()-0.5)*0.1)
			day := 5 + rng.Intn(10)
			src.AddIncome(model.IncomeRecord{
				Date:     model.NewDate(monthStart.AddDate(0, 0, day)),
				Amount:   round2(amount),
				Source:   fmt.Sprintf("Retainer - %s", c.name),
				ClientID: c.id,
			})
		}
		// One-off project work lands in about half the months.
		if rng.Float64() < 0.5 {
			src.AddIncome(model.IncomeRecord{
				Date:   model.NewDate(monthStart.AddDate(0, 0, 20+rng.Intn(7))),
				Amount: round2(800 + rng.Float64()*2200),
				Source: "Project work - one off",
			})
		}

		for _, e := range demoExpenses {
			amount := e.amount
			if e.jitter > 0 {
				amount += (rng.Float64() - 0.5) * 2 * e.jitter
			}
			src.AddSpending(model.SpendingRecord{
				Date:   model.NewDate(monthStart.AddDate(0, 0, 1+rng.Intn(24))),
				Amount: round2(amount),
				Reason: e.reason,
			})
		}
	}

	src.AddLoans(
		model.LoanRecord{Amount: 12000, Description: "Equipment loan", IsPaid: false, Date: model.NewDate(start)},
		model.LoanRecord{Amount: 3000, Description: "Bridge loan", IsPaid: true, Date: model.NewDate(start.AddDate(0, 1, 0))},
	)
	for _, c := range demoClients {
		src.AddClients(model.ClientRecord{ClientID: c.id, Name: c.name, Company: c.company})
	}
	src.AddTodos(
		model.TodoRecord{Description: "File quarterly tax return", DueDate: model.NewDate(until.AddDate(0, 0, -10)), IsCompleted: false},
		model.TodoRecord{Description: "Renew business insurance", DueDate: model.NewDate(until.AddDate(0, 1, 0)), IsCompleted: false},
		model.TodoRecord{Description: "Send outstanding invoices", DueDate: model.NewDate(until.AddDate(0, 0, -40)), IsCompleted: true},
	)
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
