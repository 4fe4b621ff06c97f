package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/trio-connect/internal/db"
	"github.com/oggyb/trio-connect/internal/db/dbtest"
)

func TestSeedDemoData(t *testing.T) {
	database := dbtest.Open(t)
	dbtest.Registered(t, database, 1, db.GenderMale, nil, nil)

	require.NoError(t, db.SeedDemoData(database))
	// seeding twice starts from scratch again
	require.NoError(t, db.SeedDemoData(database))

	var users int64
	require.NoError(t, database.Model(&db.User{}).Count(&users).Error)
	assert.EqualValues(t, db.SeedUsers, users)

	var referrer db.User
	require.NoError(t, database.First(&referrer, db.SeedBaseID+1).Error)
	assert.EqualValues(t, 3, referrer.ReferralCount)
	assert.EqualValues(t, 1, referrer.FreeUnlocks)

	var matches []db.Match
	require.NoError(t, database.Find(&matches).Error)
	for _, m := range matches {
		assert.Less(t, m.User1ID, m.User2ID)
	}

	var requests int64
	require.NoError(t, database.Model(&db.Request{}).Count(&requests).Error)
	assert.Positive(t, requests)
}
