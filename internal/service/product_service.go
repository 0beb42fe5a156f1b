package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"tillpos/internal/dto"
	"tillpos/internal/model"
	"tillpos/internal/repository"
)

const priceCacheTTL = 5 * time.Minute

// ProductService serves the read-only catalog boundary. Price lookups are
// cached in Redis so the no-auth price-check endpoint stays cheap.
type ProductService interface {
	List(ctx context.Context) ([]dto.ProductResponse, error)
	PriceByCode(ctx context.Context, code string) (*dto.PriceLookupResponse, error)
}

type productService struct {
	repo repository.ProductRepository
	rdb  *redis.Client
}

func NewProductService(repo repository.ProductRepository, rdb *redis.Client) ProductService {
	return &productService{repo: repo, rdb: rdb}
}

func (s *productService) List(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ProductResponse, len(products))
	for i, p := range products {
		resp[i] = productToResponse(&p)
	}
	return resp, nil
}

func (s *productService) PriceByCode(ctx context.Context, code string) (*dto.PriceLookupResponse, error) {
	cacheKey := "price:" + code

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp dto.PriceLookupResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return &resp, nil
			}
		}
	}

	p, err := s.repo.FindByCode(ctx, code)
	if err != nil || !p.Active {
		return nil, errors.New("product not found")
	}

	resp := &dto.PriceLookupResponse{
		Code:     p.Code,
		Name:     p.Name,
		Price:    p.Price,
		Weighted: p.Weighted,
	}
	if s.rdb != nil {
		if data, err := json.Marshal(resp); err == nil {
			s.rdb.Set(ctx, cacheKey, data, priceCacheTTL)
		}
	}
	return resp, nil
}

func productToResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:       p.ID.String(),
		Code:     p.Code,
		Name:     p.Name,
		Price:    p.Price,
		UnitType: string(p.UnitType),
		Weighted: p.Weighted,
		Active:   p.Active,
	}
}
