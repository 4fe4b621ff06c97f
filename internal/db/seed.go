package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Demo users occupy ids SeedBaseID+1 .. SeedBaseID+SeedUsers.
const (
	SeedBaseID = 1000
	SeedUsers  = 20
)

var seedPurposes = []string{"Friendship", "Relationship", "Other"}

// SeedDemoData resets the database and populates it with registered demo
// users, one referral chain and a spread of requests and matches.
//
// Behavior:
//  1. Clears every table.
//  2. Creates SeedUsers registered users around one city (male, female and
//     other genders in turn), each with a handle.
//  3. The first user referred the next three, so they hold one free unlock.
//  4. Generates pending requests; every third pair is accepted and matched.
//
// Compatible with MySQL, Postgres and SQLite.
func SeedDemoData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"unlock_payments", "reports", "matches", "requests", "blocks", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	log.Println("Cleared existing data")

	// --- Seed users ---
	genders := []string{GenderMale, GenderFemale, GenderOther}
	referrer := int64(SeedBaseID + 1)
	for i := 1; i <= SeedUsers; i++ {
		id := int64(SeedBaseID + i)
		handle := fmt.Sprintf("demo%d", i)
		age := 18 + r.Intn(30)
		gender := genders[(i-1)%len(genders)]
		lat := 41.30 + r.Float64()/10
		lon := 69.24 + r.Float64()/10
		photo := fmt.Sprintf("demo-photo-%d", i)

		user := User{
			ID:         id,
			Name:       fmt.Sprintf("Demo %d", i),
			Handle:     &handle,
			Age:        &age,
			Gender:     &gender,
			Latitude:   &lat,
			Longitude:  &lon,
			City:       "Tashkent",
			Country:    "Uzbekistan",
			PhotoRef:   &photo,
			Registered: true,
		}
		if i >= 2 && i <= 4 {
			user.ReferredBy = &referrer
			user.ReferralCredited = true
		}
		if i == 1 {
			user.ReferralCount = 3
			user.FreeUnlocks = 1
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
	}
	log.Printf("Seeded %d users.", SeedUsers)

	// --- Seed requests and matches ---
	counter := 0
	for i := 1; i <= SeedUsers; i++ {
		requester := int64(SeedBaseID + i)
		for j := 0; j < 4; j++ {
			target := int64(SeedBaseID + 1 + r.Intn(SeedUsers))
			if target == requester {
				continue
			}
			purpose := seedPurposes[r.Intn(len(seedPurposes))]

			req := Request{RequesterID: requester, TargetID: target, Purpose: purpose, Status: RequestPending}
			if counter%3 == 0 {
				req.Status = RequestAccepted
			}
			res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&req)
			if res.Error != nil {
				return fmt.Errorf("failed to seed request: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				continue
			}

			if req.Status == RequestAccepted {
				lo, hi := requester, target
				if hi < lo {
					lo, hi = hi, lo
				}
				m := Match{User1ID: lo, User2ID: hi, Purpose: purpose}
				if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&m).Error; err != nil {
					return fmt.Errorf("failed to seed match: %w", err)
				}
			}
			counter++
		}
	}
	log.Printf("Seeded %d requests.", counter)

	return nil
}
