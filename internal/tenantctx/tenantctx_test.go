package tenantctx

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lis-backend/internal/model"
)

func TestSetAndGet(t *testing.T) {
	ctx := context.Background()

	_, ok := Get(ctx)
	assert.False(t, ok)

	tenant := &model.Tenant{ID: 1, Name: "Acme Labs", IsActive: true}
	ctx = Set(ctx, tenant)

	got, ok := Get(ctx)
	require.True(t, ok)
	assert.Equal(t, tenant, got)
}

func TestClear(t *testing.T) {
	tenant := &model.Tenant{ID: 1, Name: "Acme Labs"}
	ctx := Set(context.Background(), tenant)

	ctx = Clear(ctx)
	_, ok := Get(ctx)
	assert.False(t, ok)
}

func TestClearIsIdempotent(t *testing.T) {
	ctx := context.Background()

	// Clearing an empty context is a no-op, twice in a row.
	ctx = Clear(ctx)
	ctx = Clear(ctx)
	_, ok := Get(ctx)
	assert.False(t, ok)

	ctx = Set(ctx, &model.Tenant{ID: 2})
	ctx = Clear(ctx)
	ctx = Clear(ctx)
	_, ok = Get(ctx)
	assert.False(t, ok)
}

func TestClearShadowsOuterTenant(t *testing.T) {
	// A cleared context must not fall through to a tenant set further
	// up the chain.
	outer := Set(context.Background(), &model.Tenant{ID: 7})
	inner := Clear(outer)

	_, ok := Get(inner)
	assert.False(t, ok)

	// The outer context is untouched.
	got, ok := Get(outer)
	require.True(t, ok)
	assert.Equal(t, uint(7), got.ID)
}

func TestSetNilTenantReadsAsEmpty(t *testing.T) {
	ctx := Set(context.Background(), nil)
	_, ok := Get(ctx)
	assert.False(t, ok)
}

func TestConcurrentRequestsAreIsolated(t *testing.T) {
	// Each execution unit carries its own context; a tenant published
	// for one request must never be observed by another running
	// concurrently.
	const workers = 32
	const iterations = 200

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			<-start
			tenant := &model.Tenant{ID: uint(worker + 1), Name: fmt.Sprintf("tenant-%d", worker+1)}
			for j := 0; j < iterations; j++ {
				ctx := Set(context.Background(), tenant)
				got, ok := Get(ctx)
				if !ok || got.ID != tenant.ID {
					t.Errorf("worker %d observed tenant %v", worker, got)
					return
				}
				ctx = Clear(ctx)
				if _, ok := Get(ctx); ok {
					t.Errorf("worker %d observed tenant after clear", worker)
					return
				}
			}
		}(i)
	}
	close(start)
	wg.Wait()
}
