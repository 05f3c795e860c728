package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpos/internal/core/apperror"
	"retailpos/internal/domain/catalogs/category"
	"retailpos/pkg/logger"
)

type memCategories struct {
	names map[string]bool
	err   error
}

func (m *memCategories) Create(_ context.Context, c *category.Category) error {
	if m.err != nil {
		return m.err
	}
	key := strings.ToLower(c.Name)
	if m.names[key] {
		return apperror.NewDuplicate("category", "name", c.Name)
	}
	m.names[key] = true
	return nil
}

func TestSeedCategories_Idempotent(t *testing.T) {
	repo := &memCategories{names: map[string]bool{"cameras": true}}

	require.NoError(t, seedCategories(context.Background(), repo, DefaultCategories, logger.Nop()))
	require.NoError(t, seedCategories(context.Background(), repo, DefaultCategories, logger.Nop()))
	assert.Len(t, repo.names, len(DefaultCategories))
}

func TestSeedCategories_PropagatesOtherErrors(t *testing.T) {
	repo := &memCategories{err: errors.New("connection refused")}

	err := seedCategories(context.Background(), repo, []string{"Audio"}, logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Audio")
}
