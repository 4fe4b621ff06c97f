package db

import (
	"time"
)

// Gender tags accepted on a profile.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// Request lifecycle. Accepted and Rejected are terminal.
const (
	RequestPending  = "Pending"
	RequestAccepted = "Accepted"
	RequestRejected = "Rejected"
)

// Report lifecycle.
const (
	ReportPending  = "Pending"
	ReportReviewed = "Reviewed"
)

// User is keyed by the transport's stable user id (not auto-incremented).
//
// Registered flips to true once age, gender, location and photo are all set.
// ReferredBy is written at most once; ReferralCredited flips false→true at most
// once and is the only trigger for crediting the referrer.
type User struct {
	ID               int64   `gorm:"primaryKey;autoIncrement:false"`
	Name             string  `gorm:"size:128"`
	Handle           *string `gorm:"size:64;index"`
	Age              *int
	Gender           *string `gorm:"size:16;index"`
	Latitude         *float64
	Longitude        *float64
	City             string    `gorm:"size:128"`
	Country          string    `gorm:"size:128"`
	PhotoRef         *string   `gorm:"size:255"`
	Registered       bool      `gorm:"not null;default:false;index"`
	ReferredBy       *int64    `gorm:"index"`
	ReferralCount    int64     `gorm:"not null;default:0"`
	ReferralCredited bool      `gorm:"not null;default:false"`
	FreeUnlocks      int64     `gorm:"not null;default:0"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

// HasCoordinates reports whether both latitude and longitude are known.
func (u *User) HasCoordinates() bool {
	return u.Latitude != nil && u.Longitude != nil
}

// ProfileComplete reports whether every field required for registration is set.
func (u *User) ProfileComplete() bool {
	return u.Age != nil && u.Gender != nil && u.HasCoordinates() && u.PhotoRef != nil
}

// RevealableHandle returns the handle if the user has a non-empty one.
func (u *User) RevealableHandle() (string, bool) {
	if u.Handle == nil || *u.Handle == "" {
		return "", false
	}
	return *u.Handle, true
}

// Block is a directed suppression edge. Composite PK gives one row per ordered pair.
type Block struct {
	BlockerID int64     `gorm:"primaryKey;autoIncrement:false"`
	BlockedID int64     `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Request is a directed like with a purpose.
//
// Indexes:
//   - uq_request(requester_id, target_id): at most one request per ordered pair, ever.
//   - idx_target_status_created(target_id, status, created_at DESC, id): pending inbox listing.
type Request struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	RequesterID int64     `gorm:"not null;uniqueIndex:uq_request,priority:1"`
	TargetID    int64     `gorm:"not null;uniqueIndex:uq_request,priority:2;index:idx_target_status_created,priority:1"`
	Purpose     string    `gorm:"size:64;not null"`
	Status      string    `gorm:"size:16;not null;default:Pending;index:idx_target_status_created,priority:2"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index:idx_target_status_created,priority:3,sort:desc"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// Match is an undirected pairing stored canonically with User1ID < User2ID.
type Match struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement"`
	User1ID       int64     `gorm:"not null;uniqueIndex:uq_match,priority:1"`
	User2ID       int64     `gorm:"not null;uniqueIndex:uq_match,priority:2;index"`
	Purpose       string    `gorm:"size:64;not null"`
	User1Unlocked bool      `gorm:"not null;default:false"`
	User2Unlocked bool      `gorm:"not null;default:false"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

// Other returns the counterpart of userID, or false if userID is not a participant.
func (m *Match) Other(userID int64) (int64, bool) {
	switch userID {
	case m.User1ID:
		return m.User2ID, true
	case m.User2ID:
		return m.User1ID, true
	}
	return 0, false
}

// UnlockedFor reports whether userID's side of the match is unlocked.
func (m *Match) UnlockedFor(userID int64) bool {
	switch userID {
	case m.User1ID:
		return m.User1Unlocked
	case m.User2ID:
		return m.User2Unlocked
	}
	return false
}

// UnlockColumn names the flag column that belongs to userID's side.
func (m *Match) UnlockColumn(userID int64) string {
	if userID == m.User1ID {
		return "user1_unlocked"
	}
	return "user2_unlocked"
}

// Report records a complaint; status moves Pending → Reviewed via admin action.
type Report struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	ReporterID int64     `gorm:"not null;index"`
	ReportedID int64     `gorm:"not null;index"`
	Reason     string    `gorm:"size:512;not null"`
	Status     string    `gorm:"size:16;not null;default:Pending;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// UnlockPayment is the receipt of a confirmed paid unlock.
// ChargeID is the provider's id; its unique index makes confirmations replay-safe.
type UnlockPayment struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	ChargeID  string    `gorm:"size:128;not null;uniqueIndex"`
	MatchID   uint64    `gorm:"not null;index"`
	PayerID   int64     `gorm:"not null;index"`
	Amount    int64     `gorm:"not null"`
	Currency  string    `gorm:"size:8;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{&User{}, &Block{}, &Request{}, &Match{}, &Report{}, &UnlockPayment{}}
}
