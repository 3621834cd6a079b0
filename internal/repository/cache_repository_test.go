package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/class-record-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest map[string]int
	assert.ErrorIs(t, repo.Get(ctx, "dashboard:system", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "dashboard:system", map[string]int{"students": 1}, time.Minute))

	removed, err := repo.DeleteByPattern(ctx, "dashboard:*")
	assert.NoError(t, err)
	assert.Zero(t, removed)
	assert.NoError(t, repo.Close())
}
