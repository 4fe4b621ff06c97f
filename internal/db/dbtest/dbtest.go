// Package dbtest opens throwaway sqlite databases for package tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/oggyb/trio-connect/internal/db"
)

// Open returns a migrated in-memory database private to t.
// It holds a single connection, so concurrent transactions run one after another.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: db.NowUTC,
	})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(database))
	return database
}

// Registered inserts a complete, registered profile.
func Registered(t *testing.T, database *gorm.DB, id int64, gender string, lat, lon *float64) db.User {
	t.Helper()
	age := 25
	handle := fmt.Sprintf("handle%d", id)
	photo := "photo"
	u := db.User{
		ID:         id,
		Name:       fmt.Sprintf("user%d", id),
		Handle:     &handle,
		Age:        &age,
		Gender:     &gender,
		Latitude:   lat,
		Longitude:  lon,
		PhotoRef:   &photo,
		Registered: true,
	}
	require.NoError(t, database.Create(&u).Error)
	return u
}

// Coord returns a pointer to f.
func Coord(f float64) *float64 { return &f }
