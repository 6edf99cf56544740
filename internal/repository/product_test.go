package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository("https://cdn.example.com/img/")

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	p, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("34.99")))
	assert.Equal(t, 15, p.Stock)
	assert.Equal(t, "https://cdn.example.com/img/v1766668115/IMG20250406195809_agngbr.png", p.Image)
	assert.Len(t, p.Gallery(), 5)
	assert.NotEmpty(t, p.Slug)

	bySlug, err := repo.FindBySlug(ctx, p.Slug)
	require.NoError(t, err)
	assert.Equal(t, p.ID, bySlug.ID)

	_, err = repo.FindByID(ctx, 99)
	assert.ErrorIs(t, err, ErrProductNotFound)
	_, err = repo.FindBySlug(ctx, "nope")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCatalogSlugsAreUnique(t *testing.T) {
	repo := NewProductRepository("").(*catalogRepoImpl)
	assert.Len(t, repo.bySlug, len(repo.products))
}

func TestCatalogListByCategory(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository("")

	racks, err := repo.List(ctx, "Frag Rack")
	require.NoError(t, err)
	assert.Len(t, racks, 3)

	none, err := repo.List(ctx, "Lighting")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCatalogFindManySkipsUnknown(t *testing.T) {
	repo := NewProductRepository("")

	found, err := repo.FindMany(context.Background(), []int64{3, 1, 42})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, int64(1), found[0].ID)
	assert.Equal(t, int64(3), found[1].ID)
}

func TestCatalogRecommended(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository("")

	rec, err := repo.Recommended(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, rec, 2)
	for _, p := range rec {
		assert.Equal(t, "Frag Rack", p.Category)
		assert.NotEqual(t, int64(1), p.ID)
	}

	rec, err = repo.Recommended(ctx, 1, 1)
	require.NoError(t, err)
	assert.Len(t, rec, 1)

	rec, err = repo.Recommended(ctx, 4, 4)
	require.NoError(t, err)
	assert.Empty(t, rec)

	rec, err = repo.Recommended(ctx, 404, 4)
	require.NoError(t, err)
	assert.Empty(t, rec)
}

func TestCatalogImagesFallBackToMain(t *testing.T) {
	repo := newCatalog("https://cdn.example.com/", []productSeed{
		{id: 1, name: "Bare Rack", price: "5.00", category: "Frag Rack", main: "bare.png", stock: 1},
	})

	p, err := repo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.example.com/bare.png"}, p.Images)
}
