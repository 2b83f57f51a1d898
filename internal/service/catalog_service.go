package service

import (
	"errors"

	"alcyxob/training-engine/internal/domain"
	"alcyxob/training-engine/internal/periodization"
)

var ErrModelNotFound = errors.New("periodization model not found")

// CatalogService exposes the periodization model catalog.
type CatalogService interface {
	ListModels() []domain.PeriodizationModel
	GetModel(key domain.ModelKey) (*domain.PeriodizationModel, error)
}

type catalogService struct{}

func NewCatalogService() CatalogService {
	return catalogService{}
}

func (catalogService) ListModels() []domain.PeriodizationModel {
	return periodization.Catalog()
}

func (catalogService) GetModel(key domain.ModelKey) (*domain.PeriodizationModel, error) {
	m, ok := periodization.Lookup(key)
	if !ok {
		return nil, ErrModelNotFound
	}
	return &m, nil
}
