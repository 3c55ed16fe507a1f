package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/example/ride-service/internal/models"
)

// ErrNotFound is returned when a ride id does not exist.
var ErrNotFound = errors.New("ride not found")

// QuoteFields are the pricing columns written atomically with a quote
// transition. Nil optional fields leave the stored column untouched, so
// reverting a ride to pending keeps its previous quote data.
type QuoteFields struct {
	Price           float64
	PickupEta       *int
	RideDuration    *int
	DistanceMiles   *float64
	DurationMinutes *float64
}

// RideStore defines persistence operations for ride requests.
type RideStore interface {
	CreateRide(ctx context.Context, r *models.Ride) error
	GetRide(ctx context.Context, id int64) (*models.Ride, error)
	// ListRides returns rides filtered by status; empty status means all
	// non-deleted rides, newest first.
	ListRides(ctx context.Context, status models.Status) ([]*models.Ride, error)
	// UpdateStatus persists a status change and any quote fields as a
	// single update keyed by id. No conflict detection: concurrent
	// writers race and the last one wins.
	UpdateStatus(ctx context.Context, id int64, status models.Status, qf *QuoteFields) (*models.Ride, error)
	// DeleteRide removes the record irrecoverably. Soft deletion goes
	// through UpdateStatus with the deleted status instead.
	DeleteRide(ctx context.Context, id int64) error
}

type MemoryStore struct {
	mu     sync.RWMutex
	rides  map[int64]*models.Ride
	nextID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rides: make(map[int64]*models.Ride), nextID: 1}
}

func (m *MemoryStore) CreateRide(ctx context.Context, r *models.Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = m.nextID
	m.nextID++
	r.CreatedAt = time.Now()
	cp := *r
	m.rides[r.ID] = &cp
	return nil
}

func (m *MemoryStore) GetRide(ctx context.Context, id int64) (*models.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rides[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MemoryStore) ListRides(ctx context.Context, status models.Status) ([]*models.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Ride, 0, len(m.rides))
	for _, r := range m.rides {
		if status == "" && r.Status == models.StatusDeleted {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MemoryStore) UpdateStatus(ctx context.Context, id int64, status models.Status, qf *QuoteFields) (*models.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return nil, ErrNotFound
	}
	r.Status = status
	if qf != nil {
		p := qf.Price
		r.QuotePrice = &p
		if qf.PickupEta != nil {
			v := *qf.PickupEta
			r.PickupEta = &v
		}
		if qf.RideDuration != nil {
			v := *qf.RideDuration
			r.RideDuration = &v
		}
		if qf.DistanceMiles != nil {
			v := *qf.DistanceMiles
			r.DistanceMiles = &v
		}
		if qf.DurationMinutes != nil {
			v := *qf.DurationMinutes
			r.DurationMinutes = &v
		}
	}
	cp := *r
	return &cp, nil
}

func (m *MemoryStore) DeleteRide(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[id]; !ok {
		return ErrNotFound
	}
	delete(m.rides, id)
	return nil
}
