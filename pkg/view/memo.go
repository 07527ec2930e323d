package view

import (
	"strings"
	"sync"

	"chemviz-client/internal/model"

	"github.com/patrickmn/go-cache"
)

const (
	keyPie          = "pie"
	keyBar          = "bar"
	keyFilterPrefix = "filter:"
)

// Memo caches derived views for one dataset generation. Moving to a newer
// generation flushes everything; calls for an older generation are computed
// but never cached.
type Memo struct {
	mu         sync.Mutex
	cache      *cache.Cache
	generation uint64
}

func NewMemo() *Memo {
	return &Memo{cache: cache.New(cache.NoExpiration, 0)}
}

// admit reports whether results for gen may be cached.
func (m *Memo) admit(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen > m.generation {
		m.cache.Flush()
		m.generation = gen
	}
	return gen == m.generation
}

func (m *Memo) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Flush()
}

func (m *Memo) Filter(gen uint64, records []model.EquipmentRecord, term string) []model.EquipmentRecord {
	key := keyFilterPrefix + strings.ToLower(term)
	cacheable := m.admit(gen)
	if cacheable {
		if v, ok := m.cache.Get(key); ok {
			return append([]model.EquipmentRecord(nil), v.([]model.EquipmentRecord)...)
		}
	}

	out := FilterEquipment(records, term)
	if cacheable {
		m.cache.Set(key, out, cache.NoExpiration)
	}
	return append([]model.EquipmentRecord(nil), out...)
}

type pieEntry struct {
	series PieSeries
	ok     bool
}

func (m *Memo) Pie(gen uint64, dist model.TypeDistribution) (PieSeries, bool) {
	cacheable := m.admit(gen)
	if cacheable {
		if v, ok := m.cache.Get(keyPie); ok {
			e := v.(pieEntry)
			return e.series, e.ok
		}
	}
	s, ok := ToPieSeries(dist)
	if cacheable {
		m.cache.Set(keyPie, pieEntry{series: s, ok: ok}, cache.NoExpiration)
	}
	return s, ok
}

type barEntry struct {
	series BarSeries
	ok     bool
}

func (m *Memo) Bar(gen uint64, summary *model.Summary) (BarSeries, bool) {
	cacheable := m.admit(gen)
	if cacheable {
		if v, ok := m.cache.Get(keyBar); ok {
			e := v.(barEntry)
			return e.series, e.ok
		}
	}
	s, ok := ToBarSeries(summary)
	if cacheable {
		m.cache.Set(keyBar, barEntry{series: s, ok: ok}, cache.NoExpiration)
	}
	return s, ok
}
