package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/Yasserk123/HealthVision-Projet/pkg/metrics"
)

// Factory builds the store of a new client session.
type Factory func() *Store

// Registry maps client session ids to their stores. Idle entries expire
// and are closed.
type Registry struct {
	cache   *cache.Cache
	factory Factory
	metrics *metrics.Metrics
}

func NewRegistry(ttl, cleanupInterval time.Duration, factory Factory, m *metrics.Metrics) *Registry {
	r := &Registry{
		cache:   cache.New(ttl, cleanupInterval),
		factory: factory,
		metrics: m,
	}
	r.cache.OnEvicted(func(_ string, v interface{}) {
		if store, ok := v.(*Store); ok {
			store.Close()
		}
		r.updateGauge()
	})
	return r
}

// Create starts a new client session.
func (r *Registry) Create() (string, *Store) {
	id := uuid.NewString()
	store := r.factory()
	r.cache.Set(id, store, cache.DefaultExpiration)
	r.updateGauge()
	return id, store
}

// Get returns the store of id and extends its lifetime.
func (r *Registry) Get(id string) (*Store, bool) {
	v, ok := r.cache.Get(id)
	if !ok {
		return nil, false
	}
	store := v.(*Store)
	r.cache.Set(id, store, cache.DefaultExpiration)
	return store, true
}

func (r *Registry) Delete(id string) {
	r.cache.Delete(id)
}

func (r *Registry) Len() int {
	return r.cache.ItemCount()
}

func (r *Registry) updateGauge() {
	if r.metrics != nil {
		r.metrics.ActiveSessions.Set(float64(r.cache.ItemCount()))
	}
}
