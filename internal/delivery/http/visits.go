package http

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/halalcheck/client/internal/domain"
	"github.com/halalcheck/client/internal/usecase"
)

const visitKeyPrefix = "visit:"

// CloseOnEvict closes workflows as their page visits are dropped from the
// registry. Pass it to the cache as its eviction handler.
func CloseOnEvict(key string, value interface{}) {
	if w, ok := value.(interface{ Close() }); ok {
		w.Close()
	}
}

// visitRegistry maps page visit ids to their live workflow instance.
type visitRegistry struct {
	repo domain.VisitRepository
	ttl  time.Duration
}

func newVisitID() string {
	return uuid.New().String()
}

func (r *visitRegistry) put(ctx context.Context, id string, workflow interface{}) error {
	return r.repo.Set(ctx, visitKeyPrefix+id, workflow, r.ttl)
}

// lookup returns the workflow for id and refreshes its expiry.
func (r *visitRegistry) lookup(ctx context.Context, id string) (interface{}, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrVisitNotFound
	}

	value, err := r.repo.Get(ctx, visitKeyPrefix+id)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, domain.ErrVisitNotFound
		}
		return nil, err
	}

	if err := r.repo.Touch(ctx, visitKeyPrefix+id, r.ttl); err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, domain.ErrVisitNotFound
		}
		return nil, err
	}
	return value, nil
}

func (r *visitRegistry) analysis(ctx context.Context, id string) (*usecase.AnalysisWorkflow, error) {
	value, err := r.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	w, ok := value.(*usecase.AnalysisWorkflow)
	if !ok {
		return nil, domain.ErrVisitNotFound
	}
	return w, nil
}

func (r *visitRegistry) chat(ctx context.Context, id string) (*usecase.ChatWorkflow, error) {
	value, err := r.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	w, ok := value.(*usecase.ChatWorkflow)
	if !ok {
		return nil, domain.ErrVisitNotFound
	}
	return w, nil
}

// active reports how many visits are live, when the store can tell.
func (r *visitRegistry) active() (int, bool) {
	sized, ok := r.repo.(interface{ Size() int })
	if !ok {
		return 0, false
	}
	return sized.Size(), true
}

// drain blocks until every live workflow has no submission in flight, or
// ctx is done.
func (r *visitRegistry) drain(ctx context.Context) error {
	ranger, ok := r.repo.(interface {
		Range(fn func(key string, value interface{}) bool)
	})
	if !ok {
		return nil
	}

	var waiters []interface{ Wait() }
	ranger.Range(func(_ string, value interface{}) bool {
		if w, ok := value.(interface{ Wait() }); ok {
			waiters = append(waiters, w)
		}
		return true
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, w := range waiters {
			w.Wait()
		}
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// remove unmounts a visit and closes its workflow.
func (r *visitRegistry) remove(ctx context.Context, id string) error {
	value, err := r.lookup(ctx, id)
	if err != nil {
		return err
	}
	if err := r.repo.Delete(ctx, visitKeyPrefix+id); err != nil {
		return err
	}
	CloseOnEvict(visitKeyPrefix+id, value)
	return nil
}
