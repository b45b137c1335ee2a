package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pricecast/internal/dto"
	"pricecast/internal/model"
	"pricecast/internal/repository"
)

var ErrSupplierNotFound = errors.New("supplier not found")

type SupplierService interface {
	Create(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.SupplierResponse, error)
	List(ctx context.Context) ([]dto.SupplierResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateSupplierRequest) (*dto.SupplierResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type supplierService struct {
	repo repository.SupplierRepository
}

func NewSupplierService(repo repository.SupplierRepository) SupplierService {
	return &supplierService{repo: repo}
}

func (s *supplierService) Create(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	sup := model.Supplier{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PaymentTerms: req.PaymentTerms,
		Active:       true,
	}
	if sup.PaymentTerms == "" {
		sup.PaymentTerms = "cash"
	}
	if err := s.repo.Create(ctx, &sup); err != nil {
		return nil, err
	}
	return supplierToResponse(&sup), nil
}

func (s *supplierService) GetByID(ctx context.Context, id uuid.UUID) (*dto.SupplierResponse, error) {
	sup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSupplierNotFound
		}
		return nil, err
	}
	return supplierToResponse(sup), nil
}

func (s *supplierService) List(ctx context.Context) ([]dto.SupplierResponse, error) {
	suppliers, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SupplierResponse, 0, len(suppliers))
	for i := range suppliers {
		items = append(items, *supplierToResponse(&suppliers[i]))
	}
	return items, nil
}

func (s *supplierService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	sup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSupplierNotFound
		}
		return nil, err
	}
	if req.Name != nil {
		sup.Name = *req.Name
	}
	if req.Email != nil {
		sup.Email = req.Email
	}
	if req.Phone != nil {
		sup.Phone = req.Phone
	}
	if req.PaymentTerms != nil {
		sup.PaymentTerms = *req.PaymentTerms
	}
	if err := s.repo.Update(ctx, sup); err != nil {
		return nil, err
	}
	return supplierToResponse(sup), nil
}

func (s *supplierService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSupplierNotFound
		}
		return err
	}
	return nil
}

func supplierToResponse(s *model.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:           s.ID.String(),
		Name:         s.Name,
		Email:        s.Email,
		Phone:        s.Phone,
		PaymentTerms: s.PaymentTerms,
		Active:       s.Active,
	}
}
