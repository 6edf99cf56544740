package service

import (
	"context"
	"errors"
	"fmt"
	"storefront/internal/model"
	"storefront/internal/repository"
	"strconv"
)

type ProductService interface {
	List(ctx context.Context, category string) ([]*model.Product, error)
	Get(ctx context.Context, idOrSlug string) (*model.Product, error)
	Recommended(ctx context.Context, idOrSlug string, limit int) ([]*model.Product, error)
}

type productServiceImpl struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productServiceImpl{productRepo: productRepo}
}

func (s *productServiceImpl) List(ctx context.Context, category string) ([]*model.Product, error) {
	return s.productRepo.List(ctx, category)
}

// Get resolves a numeric id or a slug.
func (s *productServiceImpl) Get(ctx context.Context, idOrSlug string) (*model.Product, error) {
	var (
		p   *model.Product
		err error
	)
	if id, convErr := strconv.ParseInt(idOrSlug, 10, 64); convErr == nil {
		p, err = s.productRepo.FindByID(ctx, id)
	} else {
		p, err = s.productRepo.FindBySlug(ctx, idOrSlug)
	}
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, NotFound("Product not found")
		}
		return nil, fmt.Errorf("find product %s: %w", idOrSlug, err)
	}
	return p, nil
}

func (s *productServiceImpl) Recommended(ctx context.Context, idOrSlug string, limit int) ([]*model.Product, error) {
	p, err := s.Get(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	return s.productRepo.Recommended(ctx, p.ID, limit)
}
