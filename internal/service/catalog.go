package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/julg/internal/domain"
	"github.com/dukerupert/julg/internal/validate"
	"github.com/shopspring/decimal"
)

// CatalogService exposes the course catalog and its admin maintenance.
type CatalogService interface {
	// FindProduct returns the normalized product or domain.ErrProductNotFound.
	FindProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)

	ListAllCourses(ctx context.Context) ([]domain.Product, error)
	CreateCourse(ctx context.Context, input CourseInput) (*domain.Product, error)
	UpdateCourse(ctx context.Context, id int64, update CourseUpdate) (*domain.Product, error)
	DeleteCourse(ctx context.Context, id int64) error

	ListCategories(ctx context.Context) ([]string, error)
	AddCategory(ctx context.Context, name string) ([]string, error)
	DeleteCategory(ctx context.Context, name string) ([]string, error)

	ListResources(ctx context.Context) ([]domain.Resource, error)
	CreateResource(ctx context.Context, input ResourceInput) (*domain.Resource, error)
	DeleteResource(ctx context.Context, id int64) error
}

// CourseInput describes a new course. Empty fields take catalog defaults.
type CourseInput struct {
	Title       string               `json:"title" validate:"max=255"`
	Description string               `json:"description" validate:"max=255"`
	Price       decimal.Decimal      `json:"price"`
	PriceOffer  decimal.NullDecimal  `json:"priceOffer"`
	Category    string               `json:"category"`
	Stock       *int                 `json:"stock"`
	Status      domain.ProductStatus `json:"status" validate:"omitempty,oneof=active inactive"`
	Modules     []string             `json:"modules"`
	Image       string               `json:"image"`
}

// CourseUpdate changes only the fields that are set.
type CourseUpdate struct {
	Title       *string               `json:"title"`
	Description *string               `json:"description"`
	Price       *decimal.Decimal      `json:"price"`
	PriceOffer  *decimal.NullDecimal  `json:"priceOffer"`
	Category    *string               `json:"category"`
	Stock       *int                  `json:"stock"`
	Status      *domain.ProductStatus `json:"status"`
	Image       *string               `json:"image"`
}

// ResourceInput describes an uploaded asset.
type ResourceInput struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	DataURL string `json:"dataUrl"`
}

type catalogService struct {
	repo     *Repository
	sessions SessionService
	logger   *slog.Logger
	now      func() time.Time
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(repo *Repository, sessions SessionService, opts Options) CatalogService {
	opts = opts.withDefaults()
	return &catalogService{
		repo:     repo,
		sessions: sessions,
		logger:   opts.Logger,
		now:      opts.Now,
	}
}

// productByID returns the normalized product with id, or nil.
func productByID(courses []domain.Product, id int64) *domain.Product {
	for i := range courses {
		if courses[i].ID == id {
			p := courses[i].Normalized()
			return &p
		}
	}
	return nil
}

func courseIndex(courses []domain.Product, id int64) int {
	for i := range courses {
		if courses[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *catalogService) FindProduct(ctx context.Context, id int64) (*domain.Product, error) {
	courses, err := s.repo.courses(ctx, "CatalogService.FindProduct")
	if err != nil {
		return nil, err
	}

	p := productByID(courses, id)
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

// ListProducts returns the active products.
func (s *catalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	courses, err := s.repo.courses(ctx, "CatalogService.ListProducts")
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(courses))
	for _, c := range courses {
		if c.IsActive() {
			products = append(products, c.Normalized())
		}
	}
	return products, nil
}

// GetProduct returns a product regardless of status.
func (s *catalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.FindProduct(ctx, id)
}

func (s *catalogService) ListAllCourses(ctx context.Context) ([]domain.Product, error) {
	if _, err := s.sessions.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.repo.courses(ctx, "CatalogService.ListAllCourses")
}

func (s *catalogService) CreateCourse(ctx context.Context, input CourseInput) (*domain.Product, error) {
	const op = "CatalogService.CreateCourse"

	if _, err := s.sessions.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := validate.Struct(op, input); err != nil {
		return nil, err
	}
	if input.Price.IsNegative() || (input.PriceOffer.Valid && input.PriceOffer.Decimal.IsNegative()) {
		return nil, ErrInvalidPrice
	}

	defer s.repo.lock()()

	courses, err := s.repo.courses(ctx, op)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
	}

	stock := domain.DefaultProductStock
	if input.Stock != nil && *input.Stock != 0 {
		stock = *input.Stock
	}

	course := domain.Product{
		ID:          nextSequentialID(1000, ids...),
		Title:       domain.Sanitize(input.Title),
		Description: domain.Sanitize(input.Description),
		Price:       input.Price,
		PriceOffer:  input.PriceOffer,
		Category:    input.Category,
		Stock:       stock,
		Status:      input.Status,
		Modules:     input.Modules,
		Image:       input.Image,
		CreatedAt:   s.now(),
	}
	course = course.Normalized()

	courses = append(courses, course)
	if err := s.repo.save(ctx, op, keyCourses, courses); err != nil {
		return nil, err
	}

	s.logger.Info("course created", "product_id", course.ID, "title", course.Title)
	return &course, nil
}

func (s *catalogService) UpdateCourse(ctx context.Context, id int64, update CourseUpdate) (*domain.Product, error) {
	const op = "CatalogService.UpdateCourse"

	if _, err := s.sessions.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if update.Price != nil && update.Price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if update.Status != nil {
		if err := validate.Var(op, "status", string(*update.Status), "oneof=active inactive"); err != nil {
			return nil, err
		}
	}

	defer s.repo.lock()()

	courses, err := s.repo.courses(ctx, op)
	if err != nil {
		return nil, err
	}

	idx := courseIndex(courses, id)
	if idx < 0 {
		return nil, ErrCourseNotFound
	}

	c := &courses[idx]
	if update.Title != nil && *update.Title != "" {
		c.Title = domain.Sanitize(*update.Title)
	}
	if update.Description != nil && *update.Description != "" {
		c.Description = domain.Sanitize(*update.Description)
	}
	if update.Price != nil {
		c.Price = *update.Price
	}
	if update.PriceOffer != nil {
		c.PriceOffer = *update.PriceOffer
	}
	if update.Category != nil && *update.Category != "" {
		c.Category = *update.Category
	}
	if update.Stock != nil {
		c.Stock = *update.Stock
	}
	if update.Status != nil && *update.Status != "" {
		c.Status = *update.Status
	}
	if update.Image != nil && *update.Image != "" {
		c.Image = *update.Image
	}

	if err := s.repo.save(ctx, op, keyCourses, courses); err != nil {
		return nil, err
	}

	updated := *c
	s.logger.Info("course updated", "product_id", id)
	return &updated, nil
}

func (s *catalogService) DeleteCourse(ctx context.Context, id int64) error {
	const op = "CatalogService.DeleteCourse"

	if _, err := s.sessions.RequireAdmin(ctx); err != nil {
		return err
	}

	defer s.repo.lock()()

	courses, err := s.repo.courses(ctx, op)
	if err != nil {
		return err
	}

	kept := make([]domain.Product, 0, len(courses))
	for _, c := range courses {
		if c.ID != id {
			kept = append(kept, c)
		}
	}

	if err := s.repo.save(ctx, op, keyCourses, kept); err != nil {
		return err
	}

	s.logger.Info("course deleted", "product_id", id)
	return nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]string, error) {
	return s.repo.categories(ctx, "CatalogService.ListCategories")
}

// AddCategory appends name unless it is already present.
func (s *catalogService) AddCategory(ctx context.Context, name string) ([]string, error) {
	const op = "CatalogService.AddCategory"

	if _, err := s.sessions.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	name = domain.Sanitize(name)
	if name == "" {
		return nil, ErrInvalidCategory
	}

	defer s.repo.lock()()

	categories, err := s.repo.categories(ctx, op)
	if err != nil {
		return nil, err
	}

	for _, c := range categories {
		if c == name {
			return categories, nil
		}
	}

	categories = append(categories, name)
	if err := s.repo.save(ctx, op, keyCategories, categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, name string) ([]string, error) {
	const op = "CatalogService.DeleteCategory"

	if _, err := s.sessions.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	defer s.repo.lock()()

	categories, err := s.repo.categories(ctx, op)
	if err != nil {
		return nil, err
	}

	kept := make([]string, 0, len(categories))
	for _, c := range categories {
		if c != name {
			kept = append(kept, c)
		}
	}

	if err := s.repo.save(ctx, op, keyCategories, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

func (s *catalogService) ListResources(ctx context.Context) ([]domain.Resource, error) {
	return s.repo.resources(ctx, "CatalogService.ListResources")
}

func (s *catalogService) CreateResource(ctx context.Context, input ResourceInput) (*domain.Resource, error) {
	const op = "CatalogService.CreateResource"

	if _, err := s.sessions.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	defer s.repo.lock()()

	resources, err := s.repo.resources(ctx, op)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(resources))
	for i, r := range resources {
		ids[i] = r.ID
	}

	name := domain.Sanitize(input.Name)
	if name == "" {
		name = "Recurso"
	}
	kind := domain.Sanitize(input.Type)
	if kind == "" {
		kind = "image"
	}

	now := s.now()
	resource := domain.Resource{
		ID:        nextTimestampID(now, ids...),
		Name:      name,
		Type:      kind,
		DataURL:   input.DataURL,
		CreatedAt: now,
	}

	resources = append(resources, resource)
	if err := s.repo.save(ctx, op, keyResources, resources); err != nil {
		return nil, err
	}

	s.logger.Info("resource created", "resource_id", resource.ID, "type", resource.Type)
	return &resource, nil
}

func (s *catalogService) DeleteResource(ctx context.Context, id int64) error {
	const op = "CatalogService.DeleteResource"

	if _, err := s.sessions.RequireAdmin(ctx); err != nil {
		return err
	}

	defer s.repo.lock()()

	resources, err := s.repo.resources(ctx, op)
	if err != nil {
		return err
	}

	kept := make([]domain.Resource, 0, len(resources))
	for _, r := range resources {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(resources) {
		return ErrResourceNotFound
	}

	if err := s.repo.save(ctx, op, keyResources, kept); err != nil {
		return err
	}
	return nil
}

// describeProduct formats a product for wrapped error details.
func describeProduct(p *domain.Product) string {
	return fmt.Sprintf("%d (%s)", p.ID, p.Title)
}
