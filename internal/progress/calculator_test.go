package progress

import (
	"testing"
	"time"

	"finledger/internal/database"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func TestCeilDays(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want int
	}{
		{"same instant", now, 0},
		{"earlier today", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), 0},
		{"tomorrow midnight", time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC), 1},
		{"yesterday midnight", time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), -1},
		{"in 30 days", now.AddDate(0, 0, 30), 30},
		{"29.5 days ahead rounds up", now.Add(29*24*time.Hour + 12*time.Hour), 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ceilDays(now, tt.t))
		})
	}
}

func TestStartOfMonth(t *testing.T) {
	now := time.Date(2025, 3, 15, 18, 45, 3, 0, time.UTC)
	require.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), startOfMonth(now))
}

func TestRoundPct(t *testing.T) {
	require.Equal(t, 0, roundPct(10, 0))
	require.Equal(t, 50, roundPct(1, 2))
	require.Equal(t, 80, roundPct(79.999, 100))
	require.Equal(t, 67, roundPct(2, 3))
	require.Equal(t, 150, roundPct(3, 2))
}
