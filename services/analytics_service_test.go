package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"botsprinter/models"
	"botsprinter/repositories"
	"botsprinter/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyUsageEmptyLedger(t *testing.T) {
	analytics := NewAnalyticsService(openTestDB(t))

	usage, err := analytics.MonthlyCartridgeUsage(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, usage)
	assert.Empty(t, usage)
}

func TestMonthlyUsageGroupsByMonth(t *testing.T) {
	db := openTestDB(t)
	analytics := NewAnalyticsService(db)
	p := createPrinter(t, db, models.Printer{Name: "HP", CartridgeModel: "A", DrumModel: "D"})

	addWriteoff(t, db, p.ID, 2, 0, at(2024, time.February, 3))
	addWriteoff(t, db, p.ID, 3, 1, at(2024, time.February, 28))
	addWriteoff(t, db, p.ID, 0, 2, at(2024, time.March, 1))
	addWriteoff(t, db, p.ID, 4, 0, at(2023, time.December, 31))

	cartridges, err := analytics.MonthlyUsage(context.Background(), types.Cartridge)
	require.NoError(t, err)
	assert.Equal(t, []MonthlyUsage{
		{Month: "2023-12", Total: 4},
		{Month: "2024-02", Total: 5},
	}, cartridges)

	drums, err := analytics.MonthlyUsage(context.Background(), types.Drum)
	require.NoError(t, err)
	assert.Equal(t, []MonthlyUsage{
		{Month: "2024-02", Total: 1},
		{Month: "2024-03", Total: 2},
	}, drums)
}

func TestForecastNextMonth(t *testing.T) {
	db := openTestDB(t)
	analytics := NewAnalyticsService(db)
	ctx := context.Background()
	p := createPrinter(t, db, models.Printer{Name: "HP", CartridgeModel: "X"})
	other := createPrinter(t, db, models.Printer{Name: "Canon", CartridgeModel: "Y"})

	addWriteoff(t, db, p.ID, 10, 0, at(2024, time.January, 10))
	addWriteoff(t, db, p.ID, 20, 0, at(2024, time.February, 10))
	addWriteoff(t, db, p.ID, 30, 0, at(2024, time.March, 10))
	addWriteoff(t, db, other.ID, 99, 0, at(2024, time.March, 11))

	f, err := analytics.ForecastNextMonth(ctx, "X", types.Cartridge)
	require.NoError(t, err)
	assert.Equal(t, 20.0, f.AvgPerMonth)
	assert.Equal(t, int64(24), f.RecommendedStock)
	assert.Equal(t, 3, f.MonthsUsed)

	// Only the three most recent active months count.
	addWriteoff(t, db, p.ID, 5, 0, at(2024, time.May, 2))
	f, err = analytics.ForecastNextMonth(ctx, "X", types.Cartridge)
	require.NoError(t, err)
	assert.InDelta(t, 55.0/3, f.AvgPerMonth, 1e-9)
	assert.Equal(t, int64(22), f.RecommendedStock)

	_, err = analytics.ForecastNextMonth(ctx, "Z", types.Cartridge)
	assert.True(t, errors.Is(err, ErrNoUsageHistory))
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = analytics.ForecastNextMonth(ctx, "", types.Cartridge)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestForecastRoundsRecommendation(t *testing.T) {
	db := openTestDB(t)
	analytics := NewAnalyticsService(db)
	ctx := context.Background()
	p := createPrinter(t, db, models.Printer{Name: "HP", DrumModel: "D"})

	addWriteoff(t, db, p.ID, 0, 1, at(2024, time.January, 1))
	f, err := analytics.ForecastNextMonth(ctx, "D", types.Drum)
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.RecommendedStock)

	addWriteoff(t, db, p.ID, 0, 2, at(2024, time.February, 1))
	addWriteoff(t, db, p.ID, 0, 1, at(2024, time.March, 1))
	f, err = analytics.ForecastNextMonth(ctx, "D", types.Drum)
	require.NoError(t, err)
	// 4/3 * 1.2 = 1.6
	assert.Equal(t, int64(2), f.RecommendedStock)
}

func TestTopNModelsByUsage(t *testing.T) {
	db := openTestDB(t)
	analytics := NewAnalyticsService(db)
	ctx := context.Background()

	a := createPrinter(t, db, models.Printer{Name: "a", CartridgeModel: "M-B"})
	b := createPrinter(t, db, models.Printer{Name: "b", CartridgeModel: "M-A"})
	c := createPrinter(t, db, models.Printer{Name: "c", CartridgeModel: "M-C"})
	untracked := createPrinter(t, db, models.Printer{Name: "d"})

	addWriteoff(t, db, a.ID, 4, 0, at(2024, time.January, 1))
	addWriteoff(t, db, b.ID, 3, 0, at(2024, time.January, 1))
	addWriteoff(t, db, b.ID, 1, 0, at(2024, time.February, 1))
	addWriteoff(t, db, c.ID, 1, 0, at(2024, time.February, 1))
	addWriteoff(t, db, untracked.ID, 50, 0, at(2024, time.February, 1))

	top, err := analytics.TopNModelsByUsage(ctx, types.Cartridge, DefaultTopN)
	require.NoError(t, err)
	assert.Equal(t, []repositories.ModelUsage{
		{Model: "M-A", Total: 4},
		{Model: "M-B", Total: 4},
		{Model: "M-C", Total: 1},
	}, top)

	top, err = analytics.TopNModelsByUsage(ctx, types.Cartridge, 1)
	require.NoError(t, err)
	assert.Equal(t, []repositories.ModelUsage{{Model: "M-A", Total: 4}}, top)

	drums, err := analytics.TopNModelsByUsage(ctx, types.Drum, 5)
	require.NoError(t, err)
	assert.Empty(t, drums)

	_, err = analytics.TopNModelsByUsage(ctx, types.Cartridge, 0)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestLowStockWarningsAreStrict(t *testing.T) {
	db := openTestDB(t)
	analytics := NewAnalyticsService(db)

	createPrinter(t, db, models.Printer{Name: "at-min", CartridgeAmount: 2, MinCartridgeAmount: 2})
	createPrinter(t, db, models.Printer{Name: "below", CartridgeAmount: 1, MinCartridgeAmount: 2, DrumAmount: 0, MinDrumAmount: 1})
	createPrinter(t, db, models.Printer{Name: "no-min", CartridgeAmount: 0})
	createPrinter(t, db, models.Printer{Name: "negative", DrumAmount: -1})

	warnings, err := analytics.LowStockWarnings(context.Background())
	require.NoError(t, err)
	require.Len(t, warnings, 3)

	assert.Equal(t, WarningLow, warnings[0].Kind)
	assert.Equal(t, "below", warnings[0].PrinterName)
	assert.Equal(t, types.Cartridge, warnings[0].Type)
	assert.Equal(t, "below: cartridge below minimum (1 < 2)", warnings[0].Message())

	assert.Equal(t, WarningLow, warnings[1].Kind)
	assert.Equal(t, types.Drum, warnings[1].Type)

	assert.Equal(t, WarningNegative, warnings[2].Kind)
	assert.Equal(t, "negative", warnings[2].PrinterName)
	assert.Equal(t, "negative: negative drum count (-1)", warnings[2].Message())
}

func TestLowStockWarningsIncludeStorage(t *testing.T) {
	db := openTestDB(t)
	analytics := NewAnalyticsService(db)

	require.NoError(t, db.Create(&models.StorageItem{Model: "A", Type: types.Cartridge, Amount: 1, MinAmount: 3}).Error)
	require.NoError(t, db.Create(&models.StorageItem{Model: "B", Type: types.Drum, Amount: 2, MinAmount: 2}).Error)
	require.NoError(t, db.Create(&models.StorageItem{Model: "C", Type: types.Drum, Amount: 0}).Error)

	warnings, err := analytics.LowStockWarnings(context.Background())
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, LocationStorage, warnings[0].Location)
	assert.Equal(t, "A", warnings[0].Model)
	assert.Equal(t, "storage", warnings[0].Place())
	assert.Equal(t, "storage: A cartridge below minimum (1 < 3)", warnings[0].Message())
}

func TestChangeReport(t *testing.T) {
	db := openTestDB(t)
	analytics := NewAnalyticsService(db)

	cab := models.Cabinet{Name: "Office"}
	require.NoError(t, db.Create(&cab).Error)
	used := createPrinter(t, db, models.Printer{Name: "HP", CabinetID: &cab.ID, CartridgeModel: "A"})
	createPrinter(t, db, models.Printer{Name: "Idle"})

	addWriteoff(t, db, used.ID, 1, 0, at(2024, time.March, 1))
	addWriteoff(t, db, used.ID, 2, 0, at(2024, time.March, 10))
	addWriteoff(t, db, used.ID, 0, 1, at(2024, time.March, 20))

	now := time.Date(2024, time.March, 13, 11, 59, 0, 0, time.Local)
	rows, err := analytics.ChangeReport(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	idle := rows[0]
	assert.Equal(t, "-", idle.CabinetName)
	assert.Equal(t, "Idle", idle.PrinterName)
	assert.Equal(t, "-", idle.CartridgeModel)
	assert.Equal(t, 0, idle.TotalChanges)
	assert.Nil(t, idle.LastChange)
	assert.Equal(t, "-", idle.LastChangeText())
	assert.Equal(t, "-", idle.DaysSinceText())

	hp := rows[1]
	assert.Equal(t, "Office", hp.CabinetName)
	assert.Equal(t, 2, hp.TotalChanges)
	require.NotNil(t, hp.LastChange)
	assert.Equal(t, "2024-03-10 12:00:00", hp.LastChangeText())
	assert.Equal(t, "2", hp.DaysSinceText())
}
