package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pricecast/internal/dto"
	"pricecast/internal/model"
	"pricecast/internal/repository"
)

// ErrProductNotFound is returned for lookups of unknown or inactive products.
var ErrProductNotFound = errors.New("product not found")

// ProductService defines the business logic contract for catalog products.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	GetBySKU(ctx context.Context, sku string) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{repo: repo}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if existing, err := s.repo.FindBySKU(ctx, req.SKU); err == nil && existing != nil {
		return nil, fmt.Errorf("sku %s already exists", req.SKU)
	}

	p := model.Product{
		SKU:          req.SKU,
		Name:         req.Name,
		Category:     req.Category,
		CurrentStock: req.CurrentStock,
		MinStock:     req.MinStock,
		Active:       true,
	}
	if req.SupplierID != nil {
		sid, err := uuid.Parse(*req.SupplierID)
		if err != nil {
			return nil, fmt.Errorf("invalid supplier_id: %w", err)
		}
		p.SupplierID = &sid
	}
	if err := s.repo.Create(ctx, &p); err != nil {
		return nil, err
	}
	return productToResponse(&p), nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *productService) GetBySKU(ctx context.Context, sku string) (*dto.ProductResponse, error) {
	p, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, *productToResponse(&products[i]))
	}
	return &dto.ProductListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.CurrentStock != nil {
		p.CurrentStock = *req.CurrentStock
	}
	if req.MinStock != nil {
		p.MinStock = *req.MinStock
	}
	if req.SupplierID != nil {
		sid, err := uuid.Parse(*req.SupplierID)
		if err != nil {
			return nil, fmt.Errorf("invalid supplier_id: %w", err)
		}
		p.SupplierID = &sid
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *productService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}

func (s *productService) Reactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Reactivate(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	var supplierID *string
	if p.SupplierID != nil {
		s := p.SupplierID.String()
		supplierID = &s
	}
	return &dto.ProductResponse{
		ID:           p.ID.String(),
		SKU:          p.SKU,
		Name:         p.Name,
		Category:     p.Category,
		CurrentStock: p.CurrentStock,
		MinStock:     p.MinStock,
		SupplierID:   supplierID,
		Active:       p.Active,
		CreatedAt:    p.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
