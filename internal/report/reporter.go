package report

import (
	"time"

	"github.com/geocoder89/fuellog/internal/cache"
	"github.com/geocoder89/fuellog/internal/domain/fueling"
)

type RecordSource interface {
	List() []fueling.Record
	Version() uint64
}

// Reporter memoises Filter results per criteria. Each entry remembers the store
// version it was built from; a newer version is a miss that replaces it, so stale
// views never pile up behind keys nobody asks for again.
type Reporter struct {
	src   RecordSource
	cache *cache.Cache[snapshot]
}

type snapshot struct {
	version uint64
	records []fueling.Record
}

func NewReporter(src RecordSource, ttl time.Duration) *Reporter {
	return &Reporter{
		src:   src,
		cache: cache.New[snapshot](ttl),
	}
}

// Records returns the filtered view and whether it came from the cache.
func (r *Reporter) Records(c Criteria) ([]fueling.Record, bool) {
	key := CacheKey(c)
	version := r.src.Version()

	if v, ok := r.cache.Get(key); ok && v.version == version {
		return v.records, true
	}

	out := Filter(r.src.List(), c)
	r.cache.Set(key, snapshot{version: version, records: out})
	return out, false
}

func CacheKey(c Criteria) string {
	s := ""
	if c.Start != nil {
		s = c.Start.UTC().Format(time.RFC3339Nano)
	}
	e := ""
	if c.End != nil {
		e = c.End.UTC().Format(time.RFC3339Nano)
	}

	return "report:v2:driver=" + c.DriverID +
		":start=" + s +
		":end=" + e
}
