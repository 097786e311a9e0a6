package memory

import (
	"sync"
	"time"

	"github.com/geocoder89/fuellog/internal/domain/fueling"
	"github.com/geocoder89/fuellog/internal/domain/user"
)

// RecordsRepo is append-only: records are never updated or deleted.
type RecordsRepo struct {
	mu      sync.RWMutex
	items   []fueling.Record
	version uint64
	now     func() time.Time
}

func NewRecordsRepo() *RecordsRepo {
	return &RecordsRepo{now: time.Now}
}

// NewRecordsRepoWithClock is used by tests that need deterministic timestamps.
func NewRecordsRepoWithClock(now func() time.Time) *RecordsRepo {
	return &RecordsRepo{now: now}
}

// Add stores a submission for driver. A driver without an assigned vehicle gets
// nothing stored and no error; the bool reports whether a record was created.
func (r *RecordsRepo) Add(driver user.User, data fueling.NewRecord) (fueling.Record, bool) {
	if driver.Vehicle == "" {
		return fueling.Record{}, false
	}

	rec := fueling.NewFromSubmission(driver, data, r.now())

	r.mu.Lock()
	r.items = append(r.items, rec)
	r.version++
	r.mu.Unlock()

	return rec, true
}

// ForDriver returns the driver's records in insertion order.
func (r *RecordsRepo) ForDriver(driverID string) []fueling.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fueling.Record, 0)
	for _, rec := range r.items {
		if rec.DriverID == driverID {
			out = append(out, rec)
		}
	}
	return out
}

func (r *RecordsRepo) List() []fueling.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fueling.Record, len(r.items))
	copy(out, r.items)
	return out
}

func (r *RecordsRepo) GetByID(id string) (fueling.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.items {
		if rec.ID == id {
			return rec, nil
		}
	}
	return fueling.Record{}, fueling.ErrNotFound
}

func (r *RecordsRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

// Version changes whenever the collection does.
func (r *RecordsRepo) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.version
}
