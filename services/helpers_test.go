package services

import (
	"testing"
	"time"

	"botsprinter/config"
	"botsprinter/database"
	"botsprinter/migration"
	"botsprinter/models"
	"botsprinter/repositories"
	"botsprinter/types"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	require.NoError(t, migration.Migrate(db))
	return db
}

// fakeClock hands out a fixed instant that tests move by hand.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Set(year int, month time.Month, day int) {
	c.now = time.Date(year, month, day, 10, 0, 0, 0, time.Local)
}

func at(year int, month time.Month, day int) types.LedgerTime {
	return types.NewLedgerTime(time.Date(year, month, day, 12, 0, 0, 0, time.Local))
}

func createPrinter(t *testing.T, db *gorm.DB, p models.Printer) *models.Printer {
	t.Helper()
	require.NoError(t, db.Create(&p).Error)
	return &p
}

func addWriteoff(t *testing.T, db *gorm.DB, printerID uint, cartridge, drum int, ts types.LedgerTime) {
	t.Helper()
	require.NoError(t, db.Create(&models.WriteoffEntry{
		PrinterID:         printerID,
		WriteoffCartridge: cartridge,
		WriteoffDrum:      drum,
		Timestamp:         ts,
		Username:          "tester",
	}).Error)
}

func historyFilter(model, username string, limit int) repositories.HistoryFilter {
	return repositories.HistoryFilter{Model: model, Username: username, Limit: limit}
}
