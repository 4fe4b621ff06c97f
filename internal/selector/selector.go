// Package selector computes the ordered stream of profiles a user may browse.
package selector

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/oggyb/trio-connect/internal/db"
)

// Filter narrows candidates by gender. FilterAny disables the narrowing.
type Filter string

const (
	FilterAny    Filter = "Any"
	FilterMale   Filter = Filter(db.GenderMale)
	FilterFemale Filter = Filter(db.GenderFemale)
	FilterOther  Filter = Filter(db.GenderOther)
)

var (
	ErrInvalidFilter = errors.New("invalid gender filter")
	ErrNotRegistered = errors.New("user has not completed a profile")
)

// ParseFilter validates a filter tag. An empty string means Any.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case "":
		return FilterAny, nil
	case FilterAny, FilterMale, FilterFemale, FilterOther:
		return f, nil
	}
	return "", ErrInvalidFilter
}

func (f Filter) gender() *string {
	if f == FilterAny || f == "" {
		return nil
	}
	g := string(f)
	return &g
}

// Source is the data access the selector needs.
type Source interface {
	Get(ctx context.Context, id int64) (*db.User, error)
	Browsable(ctx context.Context, userID int64, gender *string) ([]db.User, error)
}

// Selector is read-only; it never writes to the ledger.
type Selector struct {
	src Source
}

// New creates a Selector over src (normally a *repository.UserRepository).
func New(src Source) *Selector {
	return &Selector{src: src}
}

// Select returns every browsable user id for userID under filter, nearest first.
func (s *Selector) Select(ctx context.Context, userID int64, filter Filter) ([]int64, error) {
	me, err := s.src.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !me.Registered {
		return nil, ErrNotRegistered
	}

	users, err := s.src.Browsable(ctx, userID, filter.gender())
	if err != nil {
		return nil, err
	}
	return Rank(me, users), nil
}

// Rank orders candidates by Manhattan distance (|Δlat| + |Δlon|) from origin.
// Candidates without coordinates go last. Ties, and everything when origin
// has no coordinates, fall back to ascending id so the order is repeatable.
func Rank(origin *db.User, candidates []db.User) []int64 {
	type scored struct {
		id   int64
		dist float64
	}
	list := make([]scored, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		list = append(list, scored{id: c.ID, dist: distance(origin, c)})
	}

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].dist != list[j].dist {
			return list[i].dist < list[j].dist
		}
		return list[i].id < list[j].id
	})

	ids := make([]int64, len(list))
	for i, s := range list {
		ids[i] = s.id
	}
	return ids
}

func distance(origin, c *db.User) float64 {
	if !origin.HasCoordinates() {
		return 0
	}
	if !c.HasCoordinates() {
		return math.Inf(1)
	}
	return math.Abs(*c.Latitude-*origin.Latitude) + math.Abs(*c.Longitude-*origin.Longitude)
}
