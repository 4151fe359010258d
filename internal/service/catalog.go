package service

import (
	"context"
	"fmt"
	"strings"

	"tradejournal/internal/apperr"
	"tradejournal/internal/models"
	"tradejournal/internal/repository"
)

// CatalogService manages the shared lookup entities: setup strategies and
// entry types. Both carry the same visibility rules — a row with no owner is
// public, readable by everyone and writable by no one.
type CatalogService struct {
	Repo repository.Repository
}

type CatalogItemInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CatalogItemUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (s *CatalogService) CreateSetupStrategy(ctx context.Context, userID uint64, in CatalogItemInput) (*models.SetupStrategy, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperr.ErrValidation)
	}
	item := &models.SetupStrategy{
		UserID:      &userID,
		Name:        name,
		Description: in.Description,
	}
	if err := s.Repo.CreateSetupStrategy(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *CatalogService) GetSetupStrategy(ctx context.Context, userID, id uint64) (*models.SetupStrategy, error) {
	item, err := s.Repo.GetSetupStrategy(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.ErrNotFound
	}
	if item.UserID != nil && *item.UserID != userID {
		return nil, apperr.ErrForbidden
	}
	return item, nil
}

func (s *CatalogService) ListSetupStrategies(ctx context.Context, userID uint64) ([]models.SetupStrategy, error) {
	return s.Repo.ListSetupStrategies(ctx, userID)
}

func (s *CatalogService) UpdateSetupStrategy(ctx context.Context, userID, id uint64, in CatalogItemUpdate) (*models.SetupStrategy, error) {
	item, err := s.Repo.GetSetupStrategy(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.ErrNotFound
	}
	if item.UserID == nil || *item.UserID != userID {
		return nil, apperr.ErrForbidden
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", apperr.ErrValidation)
		}
		item.Name = name
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if err := s.Repo.UpdateSetupStrategy(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *CatalogService) DeleteSetupStrategy(ctx context.Context, userID, id uint64) error {
	item, err := s.Repo.GetSetupStrategy(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return apperr.ErrNotFound
	}
	if item.UserID == nil || *item.UserID != userID {
		return apperr.ErrForbidden
	}
	return s.Repo.DeleteSetupStrategy(ctx, id)
}

func (s *CatalogService) CreateEntryType(ctx context.Context, userID uint64, in CatalogItemInput) (*models.EntryType, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperr.ErrValidation)
	}
	item := &models.EntryType{
		UserID:      &userID,
		Name:        name,
		Description: in.Description,
	}
	if err := s.Repo.CreateEntryType(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *CatalogService) GetEntryType(ctx context.Context, userID, id uint64) (*models.EntryType, error) {
	item, err := s.Repo.GetEntryType(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.ErrNotFound
	}
	if item.UserID != nil && *item.UserID != userID {
		return nil, apperr.ErrForbidden
	}
	return item, nil
}

func (s *CatalogService) ListEntryTypes(ctx context.Context, userID uint64) ([]models.EntryType, error) {
	return s.Repo.ListEntryTypes(ctx, userID)
}

func (s *CatalogService) UpdateEntryType(ctx context.Context, userID, id uint64, in CatalogItemUpdate) (*models.EntryType, error) {
	item, err := s.Repo.GetEntryType(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.ErrNotFound
	}
	if item.UserID == nil || *item.UserID != userID {
		return nil, apperr.ErrForbidden
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", apperr.ErrValidation)
		}
		item.Name = name
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if err := s.Repo.UpdateEntryType(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *CatalogService) DeleteEntryType(ctx context.Context, userID, id uint64) error {
	item, err := s.Repo.GetEntryType(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return apperr.ErrNotFound
	}
	if item.UserID == nil || *item.UserID != userID {
		return apperr.ErrForbidden
	}
	return s.Repo.DeleteEntryType(ctx, id)
}
