package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sadsod/storefront/internal/domain/shared"
	"github.com/sadsod/storefront/internal/domain/shipping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormShippingRateRepository(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormShippingRateRepository(db.DB)
	ctx := context.Background()

	def, err := shipping.NewRate("وهران", nil, 600, "24-72 ساعة")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, def))

	exact, err := shipping.NewRate("وهران", strPtr("السانية"), 400, "24 ساعة")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, exact))

	t.Run("nil sub-region finds the default", func(t *testing.T) {
		rate, err := repo.FindRate(ctx, "وهران", nil)
		require.NoError(t, err)
		assert.Equal(t, def.ID, rate.ID)
		assert.True(t, rate.IsDefault())
		assert.Equal(t, "24-72 ساعة", rate.ETA)
	})

	t.Run("exact pair", func(t *testing.T) {
		rate, err := repo.FindRate(ctx, "وهران", strPtr("السانية"))
		require.NoError(t, err)
		assert.Equal(t, int64(400), rate.Price)
		require.NotNil(t, rate.SubRegion)
		assert.Equal(t, "السانية", *rate.SubRegion)
	})

	t.Run("unknown pair is not found", func(t *testing.T) {
		_, err := repo.FindRate(ctx, "وهران", strPtr("بئر الجير"))
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = repo.FindRate(ctx, "أدرار", nil)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("second default for a region is rejected", func(t *testing.T) {
		dup, err := shipping.NewRate("وهران", nil, 700, "")
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Save(ctx, dup), shared.ErrAlreadyExists)
	})

	t.Run("reprice in place", func(t *testing.T) {
		require.NoError(t, def.Reprice(650, "48 ساعة"))
		require.NoError(t, repo.Save(ctx, def))
		rate, err := repo.FindByID(ctx, def.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(650), rate.Price)
	})

	t.Run("list orders defaults first", func(t *testing.T) {
		rates, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, rates, 2)
		assert.True(t, rates[0].IsDefault())

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, exact.ID))
		assert.ErrorIs(t, repo.Delete(ctx, exact.ID), shared.ErrNotFound)
	})
}

func TestGormSubRegionRepository(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormSubRegionRepository(db.DB)
	ctx := context.Background()

	for _, name := range []string{"السانية", "بئر الجير", "أرزيو"} {
		sub, err := shipping.NewSubRegion("وهران", name)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, sub))
	}
	other, err := shipping.NewSubRegion("الجزائر", "باب الوادي")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, other))

	subs, err := repo.ListByRegion(ctx, "وهران")
	require.NoError(t, err)
	require.Len(t, subs, 3)
	for _, s := range subs {
		assert.Equal(t, "وهران", s.Region)
	}

	none, err := repo.ListByRegion(ctx, "أدرار")
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	dup, err := shipping.NewSubRegion("وهران", "أرزيو")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(ctx, dup), shared.ErrAlreadyExists)

	found, err := repo.FindByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, "باب الوادي", found.Name)

	require.NoError(t, repo.Delete(ctx, other.ID))
	_, err = repo.FindByID(ctx, other.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), shared.ErrNotFound)
}

func TestShippingResolve_AgainstRepository(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormShippingRateRepository(db.DB)
	ctx := context.Background()

	def, err := shipping.NewRate("قسنطينة", nil, 600, "24-72 ساعة")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, def))

	quote, err := shipping.Resolve(ctx, repo, "قسنطينة", "الخروب")
	require.NoError(t, err)
	assert.Equal(t, shipping.QuoteSourceDefault, quote.Source)
	assert.Equal(t, int64(600), quote.Price)

	quote, err = shipping.Resolve(ctx, repo, "تمنراست", "")
	require.NoError(t, err)
	assert.Equal(t, shipping.QuoteSourceNone, quote.Source)
	assert.Equal(t, int64(0), quote.Price)
}
