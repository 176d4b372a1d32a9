// Package engine is the facade over a record source: it pulls a fresh
// snapshot of the collections and runs the pure analytics components on it.
// The engine itself holds no state between calls.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ledgerpulse/insight/internal/anomaly"
	"github.com/ledgerpulse/insight/internal/cashflow"
	"github.com/ledgerpulse/insight/internal/clients"
	"github.com/ledgerpulse/insight/internal/expense"
	"github.com/ledgerpulse/insight/internal/forecast"
	"github.com/ledgerpulse/insight/internal/model"
	"github.com/ledgerpulse/insight/internal/nlq"
	"github.com/ledgerpulse/insight/internal/store"
)

// Defaults applied by Params.withDefaults.
const (
	DefaultHorizonMonths  = 6
	DefaultInactivityDays = 90
)

// Engine runs analyses against a Source. Safe for concurrent use as long as
// the source is.
type Engine struct {
	source store.Source
	log    zerolog.Logger
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithNowFunc overrides the clock, keeping inactivity and time-window
// computations deterministic under test.
func WithNowFunc(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine over the given source.
func New(source store.Source, opts ...Option) *Engine {
	e := &Engine{
		source: source,
		log:    zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ClientInsights bundles the per-client profiles with the portfolio risk view.
type ClientInsights struct {
	Profiles        []clients.Profile      `json:"profiles"`
	Risks           clients.RiskSummary    `json:"risks"`
	Trends          clients.BusinessTrends `json:"trends"`
	InactiveClients []clients.Profile      `json:"inactiveClients,omitempty"`
}

// ExpenseReview bundles the category breakdown with the suggestion list.
type ExpenseReview struct {
	Breakdown   []expense.CategoryBreakdown `json:"breakdown"`
	Suggestions []expense.Suggestion        `json:"suggestions"`
}

// Params tunes a full snapshot. Zero values fall back to the defaults.
type Params struct {
	ForecastHorizonMonths int     `json:"forecastHorizonMonths"`
	CashFlowHorizonMonths int     `json:"cashFlowHorizonMonths"`
	StartingBalance       float64 `json:"startingBalance"`
	InactivityDays        int     `json:"inactivityDays"`
}

func (p Params) withDefaults() Params {
	if p.ForecastHorizonMonths <= 0 {
		p.ForecastHorizonMonths = DefaultHorizonMonths
	}
	if p.CashFlowHorizonMonths <= 0 {
		p.CashFlowHorizonMonths = DefaultHorizonMonths
	}
	if p.InactivityDays <= 0 {
		p.InactivityDays = DefaultInactivityDays
	}
	return p
}

// Snapshot is every analysis run over one consistent view of the records.
type Snapshot struct {
	GeneratedAt time.Time       `json:"generatedAt"`
	Revenue     forecast.Result `json:"revenue"`
	CashFlow    cashflow.Result `json:"cashFlow"`
	Alerts      []anomaly.Alert `json:"alerts"`
	Clients     ClientInsights  `json:"clients"`
	Expenses    ExpenseReview   `json:"expenses"`
}

// RevenueForecast projects monthly revenue over the horizon.
func (e *Engine) RevenueForecast(ctx context.Context, horizonMonths int) (forecast.Result, error) {
	started := e.now()
	income, err := e.source.ListIncomes(ctx)
	if err != nil {
		return forecast.Result{}, fmt.Errorf("list incomes: %w", err)
	}
	result := forecast.GenerateRevenueForecast(income, horizonMonths)
	e.log.Info().
		Int("incomeRecords", len(income)).
		Int("horizonMonths", horizonMonths).
		Bool("insufficientData", result.InsufficientData).
		Dur("took", e.now().Sub(started)).
		Msg("revenue forecast generated")
	return result, nil
}

// CashFlow projects net cash position over the horizon.
func (e *Engine) CashFlow(ctx context.Context, horizonMonths int, startingBalance float64) (cashflow.Result, error) {
	started := e.now()
	income, spending, err := e.loadFlows(ctx)
	if err != nil {
		return cashflow.Result{}, err
	}
	result := cashflow.GenerateCashFlowForecast(income, spending, horizonMonths, startingBalance)
	e.log.Info().
		Int("incomeRecords", len(income)).
		Int("spendingRecords", len(spending)).
		Int("warnings", len(result.Warnings)).
		Dur("took", e.now().Sub(started)).
		Msg("cash flow forecast generated")
	return result, nil
}

// Anomalies runs every detector over the full history.
func (e *Engine) Anomalies(ctx context.Context) ([]anomaly.Alert, error) {
	started := e.now()
	income, spending, err := e.loadFlows(ctx)
	if err != nil {
		return nil, err
	}
	alerts := anomaly.Detect(income, spending)
	e.log.Info().
		Int("alerts", len(alerts)).
		Dur("took", e.now().Sub(started)).
		Msg("anomaly detection complete")
	return alerts, nil
}

// ClientInsights profiles every client and assesses portfolio risk.
// inactivityDays bounds the InactiveClients list; zero means the default.
func (e *Engine) ClientInsights(ctx context.Context, inactivityDays int) (ClientInsights, error) {
	started := e.now()
	if inactivityDays <= 0 {
		inactivityDays = DefaultInactivityDays
	}
	income, err := e.source.ListIncomes(ctx)
	if err != nil {
		return ClientInsights{}, fmt.Errorf("list incomes: %w", err)
	}
	clientList, err := e.source.ListClients(ctx)
	if err != nil {
		return ClientInsights{}, fmt.Errorf("list clients: %w", err)
	}

	profiles := clients.AnalyzeClients(income, clientList, e.now())
	insights := ClientInsights{
		Profiles: profiles,
		Risks:    clients.AssessRisks(profiles),
		Trends:   clients.CalculateBusinessTrends(income),
	}
	for _, p := range profiles {
		if float64(p.DaysSinceLastTransaction) > float64(inactivityDays) {
			insights.InactiveClients = append(insights.InactiveClients, p)
		}
	}
	e.log.Info().
		Int("clients", len(profiles)).
		Int("atRisk", len(insights.Risks.AtRiskClients)).
		Dur("took", e.now().Sub(started)).
		Msg("client insights generated")
	return insights, nil
}

// ExpenseReview categorizes spending and emits savings suggestions.
func (e *Engine) ExpenseReview(ctx context.Context) (ExpenseReview, error) {
	started := e.now()
	income, spending, err := e.loadFlows(ctx)
	if err != nil {
		return ExpenseReview{}, err
	}
	review := ExpenseReview{
		Breakdown:   expense.AnalyzeSpendingCategories(spending),
		Suggestions: expense.GenerateExpenseSuggestions(spending, income),
	}
	e.log.Info().
		Int("categories", len(review.Breakdown)).
		Int("suggestions", len(review.Suggestions)).
		Dur("took", e.now().Sub(started)).
		Msg("expense review generated")
	return review, nil
}

// Query answers a natural-language question over the collections.
func (e *Engine) Query(ctx context.Context, text string) (nlq.QueryResult, error) {
	started := e.now()
	data, err := e.loadDataset(ctx)
	if err != nil {
		return nlq.QueryResult{}, err
	}
	result := nlq.Run(text, data, e.now())
	e.log.Info().
		Str("text", text).
		Int("results", len(result.Results)).
		Dur("took", e.now().Sub(started)).
		Msg("query executed")
	return result, nil
}

// Snapshot runs every analysis over one read of the source.
func (e *Engine) Snapshot(ctx context.Context, p Params) (*Snapshot, error) {
	p = p.withDefaults()
	revenue, err := e.RevenueForecast(ctx, p.ForecastHorizonMonths)
	if err != nil {
		return nil, err
	}
	cash, err := e.CashFlow(ctx, p.CashFlowHorizonMonths, p.StartingBalance)
	if err != nil {
		return nil, err
	}
	alerts, err := e.Anomalies(ctx)
	if err != nil {
		return nil, err
	}
	insights, err := e.ClientInsights(ctx, p.InactivityDays)
	if err != nil {
		return nil, err
	}
	review, err := e.ExpenseReview(ctx)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		GeneratedAt: e.now(),
		Revenue:     revenue,
		CashFlow:    cash,
		Alerts:      alerts,
		Clients:     insights,
		Expenses:    review,
	}, nil
}

func (e *Engine) loadFlows(ctx context.Context) ([]model.IncomeRecord, []model.SpendingRecord, error) {
	income, err := e.source.ListIncomes(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list incomes: %w", err)
	}
	spending, err := e.source.ListSpending(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list spending: %w", err)
	}
	return income, spending, nil
}

func (e *Engine) loadDataset(ctx context.Context) (nlq.Dataset, error) {
	income, spending, err := e.loadFlows(ctx)
	if err != nil {
		return nlq.Dataset{}, err
	}
	loans, err := e.source.ListLoans(ctx)
	if err != nil {
		return nlq.Dataset{}, fmt.Errorf("list loans: %w", err)
	}
	clientList, err := e.source.ListClients(ctx)
	if err != nil {
		return nlq.Dataset{}, fmt.Errorf("list clients: %w", err)
	}
	todos, err := e.source.ListTodos(ctx)
	if err != nil {
		return nlq.Dataset{}, fmt.Errorf("list todos: %w", err)
	}
	return nlq.Dataset{
		Income:   income,
		Spending: spending,
		Loans:    loans,
		Clients:  clientList,
		Todos:    todos,
	}, nil
}
