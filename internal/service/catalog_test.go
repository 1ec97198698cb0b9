package service

import (
	"context"
	"testing"

	"github.com/dukerupert/julg/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_ListProducts(t *testing.T) {
	f := newFixture(t)
	inactive := course(2003, "Oculto", "10", "Fiscal", 999)
	inactive.Status = domain.ProductStatusInactive
	f.setCourses(t,
		domain.Product{ID: 2001, Price: money("10"), PriceOffer: decimal.NewNullDecimal(decimal.Zero)},
		course(2002, "Visible", "20", "Fiscal", 999),
		inactive,
	)

	products, err := f.sf.Catalog.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	bare := products[0]
	assert.Equal(t, domain.DefaultProductTitle, bare.Title)
	assert.Equal(t, domain.DefaultProductCategory, bare.Category)
	assert.Equal(t, domain.DefaultProductImage, bare.Image)
	assert.False(t, bare.PriceOffer.Valid, "a zero offer is no offer")

	assert.Equal(t, "Visible", products[1].Title)

	t.Run("inactive products stay reachable by id", func(t *testing.T) {
		p, err := f.sf.Catalog.GetProduct(context.Background(), 2003)
		require.NoError(t, err)
		assert.Equal(t, "Oculto", p.Title)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := f.sf.Catalog.FindProduct(context.Background(), 9999)
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
		assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
	})
}

func TestCatalogService_CreateCourse(t *testing.T) {
	f := newFixture(t)
	ctx := asUser(adminIdentity)

	created, err := f.sf.Catalog.CreateCourse(ctx, CourseInput{
		Title:    "  Liquidación de Sueldos ",
		Price:    money("180"),
		Category: "Contabilidad",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1003), created.ID)
	assert.Equal(t, "Liquidación de Sueldos", created.Title)
	assert.Equal(t, domain.DefaultProductStock, created.Stock)
	assert.Equal(t, domain.ProductStatusActive, created.Status)

	t.Run("ids start above 1000 on an empty catalog", func(t *testing.T) {
		f := newFixture(t)
		f.setCourses(t)

		c, err := f.sf.Catalog.CreateCourse(ctx, CourseInput{Title: "Primero", Price: money("1")})
		require.NoError(t, err)
		assert.Equal(t, int64(1001), c.ID)
	})

	t.Run("negative price", func(t *testing.T) {
		_, err := f.sf.Catalog.CreateCourse(ctx, CourseInput{Title: "Mal", Price: money("-1")})
		assert.ErrorIs(t, err, ErrInvalidPrice)
	})

	t.Run("members are not authorized", func(t *testing.T) {
		_, err := f.sf.Catalog.CreateCourse(asUser(memberIdentity), CourseInput{Title: "X", Price: money("1")})
		assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	})

	t.Run("anonymous needs a session", func(t *testing.T) {
		_, err := f.sf.Catalog.CreateCourse(context.Background(), CourseInput{Title: "X", Price: money("1")})
		assert.ErrorIs(t, err, domain.ErrAuthRequired)
	})
}

func TestCatalogService_UpdateCourse(t *testing.T) {
	f := newFixture(t)
	ctx := asUser(adminIdentity)

	title := "Contabilidad I"
	empty := ""
	price := money("130")
	stock := 5
	inactive := domain.ProductStatusInactive

	updated, err := f.sf.Catalog.UpdateCourse(ctx, 1001, CourseUpdate{
		Title:    &title,
		Category: &empty,
		Price:    &price,
		Stock:    &stock,
		Status:   &inactive,
	})
	require.NoError(t, err)

	assert.Equal(t, "Contabilidad I", updated.Title)
	assert.Equal(t, "Contabilidad", updated.Category, "empty strings keep the old value")
	assert.Equal(t, "130.00", updated.Price.StringFixed(2))
	assert.Equal(t, 5, updated.Stock)
	assert.Equal(t, domain.ProductStatusInactive, updated.Status)

	products, err := f.sf.Catalog.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)

	t.Run("unknown course", func(t *testing.T) {
		_, err := f.sf.Catalog.UpdateCourse(ctx, 4242, CourseUpdate{Title: &title})
		assert.ErrorIs(t, err, ErrCourseNotFound)
	})

	t.Run("invalid status", func(t *testing.T) {
		bogus := domain.ProductStatus("archived")
		_, err := f.sf.Catalog.UpdateCourse(ctx, 1001, CourseUpdate{Status: &bogus})
		assert.True(t, domain.IsValidationError(err))
	})
}

func TestCatalogService_DeleteCourse(t *testing.T) {
	f := newFixture(t)
	ctx := asUser(adminIdentity)

	require.NoError(t, f.sf.Catalog.DeleteCourse(ctx, 1001))

	all, err := f.sf.Catalog.ListAllCourses(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(1002), all[0].ID)
}

func TestCatalogService_Categories(t *testing.T) {
	f := newFixture(t)
	ctx := asUser(adminIdentity)

	categories, err := f.sf.Catalog.AddCategory(ctx, " Finanzas ")
	require.NoError(t, err)
	assert.Equal(t, append(append([]string{}, DefaultCategories...), "Finanzas"), categories)

	again, err := f.sf.Catalog.AddCategory(ctx, "Finanzas")
	require.NoError(t, err)
	assert.Equal(t, categories, again)

	_, err = f.sf.Catalog.AddCategory(ctx, "   ")
	assert.ErrorIs(t, err, ErrInvalidCategory)

	remaining, err := f.sf.Catalog.DeleteCategory(ctx, "Marketing")
	require.NoError(t, err)
	assert.NotContains(t, remaining, "Marketing")

	listed, err := f.sf.Catalog.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, remaining, listed)
}

func TestCatalogService_Resources(t *testing.T) {
	f := newFixture(t)
	ctx := asUser(adminIdentity)

	first, err := f.sf.Catalog.CreateResource(ctx, ResourceInput{Name: "logo.png", DataURL: "data:image/png;base64,AAAA"})
	require.NoError(t, err)
	second, err := f.sf.Catalog.CreateResource(ctx, ResourceInput{Type: "pdf"})
	require.NoError(t, err)

	assert.Equal(t, "image", first.Type)
	assert.Equal(t, "Recurso", second.Name)
	assert.Greater(t, second.ID, first.ID)

	require.NoError(t, f.sf.Catalog.DeleteResource(ctx, first.ID))
	assert.ErrorIs(t, f.sf.Catalog.DeleteResource(ctx, first.ID), ErrResourceNotFound)

	resources, err := f.sf.Catalog.ListResources(ctx)
	require.NoError(t, err)
	require.Len(t, resources, 1)
	assert.Equal(t, second.ID, resources[0].ID)
}
