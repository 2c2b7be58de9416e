package services

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"botsprinter/models"
	"botsprinter/repositories"
	"botsprinter/types"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

const (
	DefaultTopN = 5

	// forecastWindow is how many of the most recent active months are averaged.
	forecastWindow = 3
)

var safetyFactor = decimal.New(12, -1)

type MonthlyUsage struct {
	Month string `json:"month"`
	Total int    `json:"total"`
}

type Forecast struct {
	Model            string               `json:"model"`
	Type             types.ConsumableType `json:"type"`
	MonthsUsed       int                  `json:"months_used"`
	AvgPerMonth      float64              `json:"avg_per_month"`
	RecommendedStock int64                `json:"recommended_stock"`
}

// ChangeReportRow summarises cartridge replacements for one printer.
// LastChange and DaysSince are nil when the printer never had one.
type ChangeReportRow struct {
	PrinterID      uint              `json:"printer_id"`
	CabinetName    string            `json:"cabinet_name"`
	PrinterName    string            `json:"printer_name"`
	CartridgeModel string            `json:"cartridge_model"`
	TotalChanges   int               `json:"total_changes"`
	LastChange     *types.LedgerTime `json:"last_change"`
	DaysSince      *int              `json:"days_since"`
}

func (r ChangeReportRow) LastChangeText() string {
	if r.LastChange == nil {
		return "-"
	}
	return r.LastChange.String()
}

func (r ChangeReportRow) DaysSinceText() string {
	if r.DaysSince == nil {
		return "-"
	}
	return strconv.Itoa(*r.DaysSince)
}

// AnalyticsService answers read-only questions over the ledger.
type AnalyticsService struct {
	db *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

func (s *AnalyticsService) repos() *repositories.Repositories {
	return repositories.New(s.db)
}

// monthlyTotals folds write-offs into per-month sums for t, oldest month first.
func monthlyTotals(entries []models.WriteoffEntry, t types.ConsumableType) []MonthlyUsage {
	sums := make(map[string]int)
	for i := range entries {
		if q := entries[i].QuantityFor(t); q > 0 {
			sums[entries[i].Timestamp.Month()] += q
		}
	}

	months := make([]string, 0, len(sums))
	for m := range sums {
		months = append(months, m)
	}
	slices.Sort(months)

	out := make([]MonthlyUsage, 0, len(months))
	for _, m := range months {
		out = append(out, MonthlyUsage{Month: m, Total: sums[m]})
	}
	return out
}

// MonthlyUsage sums written-off quantities of t per calendar month. Months
// without usage are absent.
func (s *AnalyticsService) MonthlyUsage(ctx context.Context, t types.ConsumableType) ([]MonthlyUsage, error) {
	const op = "analytics.MonthlyUsage"
	if !t.Valid() {
		return nil, validationError(op, "unknown consumable type %q", t)
	}
	entries, err := s.repos().History.UsageEntries(ctx, t, "")
	if err != nil {
		return nil, wrapStoreError(op, err)
	}
	return monthlyTotals(entries, t), nil
}

func (s *AnalyticsService) MonthlyCartridgeUsage(ctx context.Context) ([]MonthlyUsage, error) {
	return s.MonthlyUsage(ctx, types.Cartridge)
}

// TopNModelsByUsage ranks consumable models by total written-off quantity.
// Ties are ordered by model name.
func (s *AnalyticsService) TopNModelsByUsage(ctx context.Context, t types.ConsumableType, n int) ([]repositories.ModelUsage, error) {
	const op = "analytics.TopNModelsByUsage"
	if !t.Valid() {
		return nil, validationError(op, "unknown consumable type %q", t)
	}
	if n <= 0 {
		return nil, validationError(op, "n must be positive, got %d", n)
	}

	rows, err := s.repos().History.TopModels(ctx, t, n)
	if err != nil {
		return nil, wrapStoreError(op, err)
	}
	if rows == nil {
		rows = []repositories.ModelUsage{}
	}
	return rows, nil
}

// ForecastNextMonth averages the last three months with usage for printers
// using model and recommends 120% of it, rounded half to even.
func (s *AnalyticsService) ForecastNextMonth(ctx context.Context, model string, t types.ConsumableType) (*Forecast, error) {
	const op = "analytics.ForecastNextMonth"
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, validationError(op, "model is required")
	}
	if !t.Valid() {
		return nil, validationError(op, "unknown consumable type %q", t)
	}

	entries, err := s.repos().History.UsageEntries(ctx, t, model)
	if err != nil {
		return nil, wrapStoreError(op, err)
	}
	months := monthlyTotals(entries, t)
	if len(months) == 0 {
		return nil, notFound(op, ErrNoUsageHistory, model)
	}
	if len(months) > forecastWindow {
		months = months[len(months)-forecastWindow:]
	}

	sum := decimal.Zero
	for _, m := range months {
		sum = sum.Add(decimal.NewFromInt(int64(m.Total)))
	}
	avg := sum.Div(decimal.NewFromInt(int64(len(months))))
	avgF, _ := avg.Float64()

	return &Forecast{
		Model:            model,
		Type:             t,
		MonthsUsed:       len(months),
		AvgPerMonth:      avgF,
		RecommendedStock: avg.Mul(safetyFactor).RoundBank(0).IntPart(),
	}, nil
}

// ChangeReport lists every printer with its cartridge replacement count and
// the time since the last one, measured in whole days before now.
func (s *AnalyticsService) ChangeReport(ctx context.Context, now time.Time) ([]ChangeReportRow, error) {
	const op = "analytics.ChangeReport"
	r := s.repos()

	printers, err := r.Printers.List(ctx)
	if err != nil {
		return nil, wrapStoreError(op, err)
	}
	entries, err := r.History.UsageEntries(ctx, types.Cartridge, "")
	if err != nil {
		return nil, wrapStoreError(op, err)
	}

	counts := make(map[uint]int)
	last := make(map[uint]types.LedgerTime)
	for _, e := range entries {
		counts[e.PrinterID]++
		if prev, ok := last[e.PrinterID]; !ok || e.Timestamp.After(prev.Time) {
			last[e.PrinterID] = e.Timestamp
		}
	}

	rows := make([]ChangeReportRow, 0, len(printers))
	for _, p := range printers {
		row := ChangeReportRow{
			PrinterID:      p.ID,
			CabinetName:    orDash(p.CabinetName),
			PrinterName:    p.Name,
			CartridgeModel: orDash(p.CartridgeModel),
			TotalChanges:   counts[p.ID],
		}
		if ts, ok := last[p.ID]; ok {
			ts := ts
			days := int(math.Floor(now.Sub(ts.Time).Hours() / 24))
			row.LastChange = &ts
			row.DaysSince = &days
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
