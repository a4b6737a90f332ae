package memory

import (
	"time"

	"agent-orchestrator/pkg/pipeline"

	"github.com/patrickmn/go-cache"
)

// RunRepository keeps terminal pipeline records in memory so recent runs
// can be fetched by id. Entries expire after an hour; there is no durable
// persistence behind it.
type RunRepository struct {
	cache *cache.Cache
}

func NewRunRepository() *RunRepository {
	// Default expiration of 1 hour, expired entries purged every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &RunRepository{
		cache: c,
	}
}

func (r *RunRepository) Save(st *pipeline.State) {
	r.cache.Set(st.TaskID, st, cache.DefaultExpiration)
}

func (r *RunRepository) Get(taskID string) (*pipeline.State, bool) {
	if x, found := r.cache.Get(taskID); found {
		return x.(*pipeline.State), true
	}
	return nil, false
}

func (r *RunRepository) Delete(taskID string) {
	r.cache.Delete(taskID)
}
