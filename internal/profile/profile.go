// Package profile owns profile capture: first contact, field updates,
// registration completion and self-deletion.
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/trio-connect/internal/db"
	"github.com/oggyb/trio-connect/internal/geocode"
	"github.com/oggyb/trio-connect/internal/referral"
	"github.com/oggyb/trio-connect/internal/repository"
)

var (
	ErrUnknownUser     = errors.New("user not found")
	ErrInvalidAge      = errors.New("age out of range")
	ErrInvalidGender   = errors.New("invalid gender")
	ErrInvalidLocation = errors.New("invalid coordinates")
	ErrInvalidPhoto    = errors.New("photo reference is empty")
	ErrEmptyUpdate     = errors.New("nothing to update")
)

// Draft carries the profile fields to write. Nil fields are left unchanged.
// Latitude and Longitude must be set together.
type Draft struct {
	Age       *int
	Gender    *string
	Latitude  *float64
	Longitude *float64
	PhotoRef  *string
}

// Update is the result of applying a Draft.
type Update struct {
	User *db.User
	// JustRegistered is set when this write completed the profile.
	JustRegistered bool
	// Credit is the referral credit the completion produced, if any.
	Credit *referral.Credit
}

// Options bounds what a profile may contain.
type Options struct {
	AgeMin         int
	AgeMax         int
	GeocodeTimeout time.Duration
}

// Service writes profiles. Registration completion and the referral credit
// it triggers commit together.
type Service struct {
	ledger     *repository.Ledger
	accountant *referral.Accountant
	geo        geocode.Lookup
	opts       Options
	log        *slog.Logger
}

// New creates a profile Service. geo may be nil, in which case every
// location resolves to the fallback place.
func New(ledger *repository.Ledger, accountant *referral.Accountant, geo geocode.Lookup, opts Options, log *slog.Logger) *Service {
	return &Service{ledger: ledger, accountant: accountant, geo: geo, opts: opts, log: log}
}

// EnsureUser records first contact or refreshes name and handle.
//
// startParam is the transport's start argument; a "ref_<id>" value records
// the referrer once. Invalid referrals are ignored.
func (s *Service) EnsureUser(ctx context.Context, id int64, name string, handle *string, startParam string) (*db.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "User"
	}
	if handle != nil {
		h := strings.TrimPrefix(strings.TrimSpace(*handle), "@")
		handle = &h
		if h == "" {
			handle = nil
		}
	}

	var out *db.User
	err := s.ledger.Atomic(ctx, func(tx *repository.Ledger) error {
		u, err := tx.Users.Upsert(ctx, id, name, handle)
		if err != nil {
			return err
		}
		out = u

		referrerID, ok := referral.ParseStart(startParam)
		if !ok || u.ReferredBy != nil {
			return nil
		}
		recorded, err := s.accountant.Record(ctx, tx, id, referrerID)
		switch {
		case errors.Is(err, referral.ErrSelfReferral), errors.Is(err, referral.ErrUnknownReferrer):
			s.log.Info("referral ignored", "user", id, "referrer", referrerID, "reason", err)
			return nil
		case err != nil:
			return err
		}
		if recorded {
			out.ReferredBy = &referrerID
		}
		return nil
	})
	if err != nil {
		s.log.Error("ensure user failed", "user", id, "err", err)
		return nil, err
	}
	return out, nil
}

// Get loads a profile.
func (s *Service) Get(ctx context.Context, id int64) (*db.User, error) {
	u, err := s.ledger.Users.Get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnknownUser
	}
	return u, err
}

// SetAge validates and stores the age.
func (s *Service) SetAge(ctx context.Context, id int64, age int) (Update, error) {
	return s.Apply(ctx, id, Draft{Age: &age})
}

// SetGender validates and stores the gender.
func (s *Service) SetGender(ctx context.Context, id int64, gender string) (Update, error) {
	return s.Apply(ctx, id, Draft{Gender: &gender})
}

// SetLocation stores coordinates and the place they resolve to.
func (s *Service) SetLocation(ctx context.Context, id int64, lat, lon float64) (Update, error) {
	return s.Apply(ctx, id, Draft{Latitude: &lat, Longitude: &lon})
}

// SetPhoto stores the opaque photo reference.
func (s *Service) SetPhoto(ctx context.Context, id int64, ref string) (Update, error) {
	return s.Apply(ctx, id, Draft{PhotoRef: &ref})
}

// Apply validates d and writes it.
//
// Behavior:
//   - Geocoding happens before the transaction and never fails the write.
//   - When the write leaves the profile complete for the first time, the user
//     is marked registered and the referrer is credited in the same transaction.
func (s *Service) Apply(ctx context.Context, id int64, d Draft) (Update, error) {
	fields, err := s.fields(d)
	if err != nil {
		return Update{}, err
	}
	if d.Latitude != nil {
		place := geocode.Resolve(ctx, s.geo, *d.Latitude, *d.Longitude, s.opts.GeocodeTimeout, s.log)
		fields["city"] = place.City
		fields["country"] = place.Country
	}

	var out Update
	err = s.ledger.Atomic(ctx, func(tx *repository.Ledger) error {
		if err := tx.Users.UpdateFields(ctx, id, fields); err != nil {
			return err
		}
		u, err := tx.Users.Get(ctx, id)
		if err != nil {
			return err
		}
		out.User = u

		if u.Registered || !u.ProfileComplete() {
			return nil
		}
		flipped, err := tx.Users.MarkRegistered(ctx, id)
		if err != nil {
			return fmt.Errorf("mark registered: %w", err)
		}
		if !flipped {
			return nil
		}
		u.Registered = true
		out.JustRegistered = true

		out.Credit, err = s.accountant.CreditCompletion(ctx, tx, u)
		return err
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Update{}, ErrUnknownUser
	}
	if err != nil {
		s.log.Error("profile update failed", "user", id, "err", err)
		return Update{}, err
	}

	if out.JustRegistered {
		s.log.Info("profile completed", "user", id, "referral_credited", out.Credit != nil)
	}
	return out, nil
}

func (s *Service) fields(d Draft) (map[string]any, error) {
	fields := map[string]any{}

	if d.Age != nil {
		if *d.Age < s.opts.AgeMin || *d.Age > s.opts.AgeMax {
			return nil, fmt.Errorf("%w: must be between %d and %d", ErrInvalidAge, s.opts.AgeMin, s.opts.AgeMax)
		}
		fields["age"] = *d.Age
	}
	if d.Gender != nil {
		switch *d.Gender {
		case db.GenderMale, db.GenderFemale, db.GenderOther:
			fields["gender"] = *d.Gender
		default:
			return nil, ErrInvalidGender
		}
	}
	if (d.Latitude == nil) != (d.Longitude == nil) {
		return nil, ErrInvalidLocation
	}
	if d.Latitude != nil {
		lat, lon := *d.Latitude, *d.Longitude
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return nil, ErrInvalidLocation
		}
		fields["latitude"] = lat
		fields["longitude"] = lon
	}
	if d.PhotoRef != nil {
		ref := strings.TrimSpace(*d.PhotoRef)
		if ref == "" {
			return nil, ErrInvalidPhoto
		}
		fields["photo_ref"] = ref
	}

	if len(fields) == 0 {
		return nil, ErrEmptyUpdate
	}
	return fields, nil
}

// Delete removes the user and everything that references them.
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.ledger.Atomic(ctx, func(tx *repository.Ledger) error {
		var err error
		deleted, err = tx.DeleteUserCascade(ctx, id)
		return err
	})
	if err != nil {
		s.log.Error("delete profile failed", "user", id, "err", err)
		return false, err
	}
	if deleted {
		s.log.Info("profile deleted", "user", id)
	}
	return deleted, nil
}
