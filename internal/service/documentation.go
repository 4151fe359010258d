package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"tradejournal/internal/access"
	"tradejournal/internal/apperr"
	"tradejournal/internal/models"
	"tradejournal/internal/repository"
)

// DocumentationService attaches ordered content blocks to any owner entity.
// The owner never knows about its documentation; the link lives entirely in
// the widget's (owner_kind, owner_id) pair.
type DocumentationService struct {
	Repo   repository.Repository
	Access *access.Resolver
}

type DocItemInput struct {
	ItemType    string  `json:"item_type"`
	TextContent *string `json:"text_content"`
	ImageURL    *string `json:"image_url"`
	Order       int     `json:"order"`
}

func validateDocPayload(in DocItemInput) (string, error) {
	itemType := strings.ToUpper(strings.TrimSpace(in.ItemType))
	hasText := in.TextContent != nil && strings.TrimSpace(*in.TextContent) != ""
	hasImage := in.ImageURL != nil && strings.TrimSpace(*in.ImageURL) != ""
	switch itemType {
	case models.DocItemText:
		if !hasText || hasImage {
			return "", fmt.Errorf("%w: TEXT item requires text_content and no image", apperr.ErrValidation)
		}
	case models.DocItemImage:
		if !hasImage || hasText {
			return "", fmt.Errorf("%w: IMAGE item requires image_url and no text", apperr.ErrValidation)
		}
	default:
		return "", fmt.Errorf("%w: item_type must be TEXT or IMAGE", apperr.ErrValidation)
	}
	return itemType, nil
}

func (s *DocumentationService) GetOrCreateWidget(ctx context.Context, userID uint64, ref access.OwnerRef) (*models.DocumentationWidget, error) {
	if err := s.Access.CanWrite(ctx, userID, ref); err != nil {
		return nil, err
	}
	return s.Repo.GetOrCreateWidget(ctx, string(ref.Kind), ref.ID)
}

func (s *DocumentationService) ListWidgets(ctx context.Context, userID uint64, ref access.OwnerRef) ([]models.DocumentationWidget, error) {
	if err := s.Access.CanRead(ctx, userID, ref); err != nil {
		return nil, err
	}
	return s.Repo.ListWidgets(ctx, string(ref.Kind), ref.ID)
}

// AddItem attaches one block to the owner, creating the widget on first use.
func (s *DocumentationService) AddItem(ctx context.Context, userID uint64, ref access.OwnerRef, in DocItemInput) (*models.DocumentationItem, error) {
	itemType, err := validateDocPayload(in)
	if err != nil {
		return nil, err
	}
	if err := s.Access.CanWrite(ctx, userID, ref); err != nil {
		return nil, err
	}
	widget, err := s.Repo.GetOrCreateWidget(ctx, string(ref.Kind), ref.ID)
	if err != nil {
		return nil, err
	}
	item := &models.DocumentationItem{
		WidgetID:    widget.ID,
		ItemType:    itemType,
		TextContent: in.TextContent,
		ImageURL:    in.ImageURL,
		Order:       in.Order,
	}
	if err := s.Repo.CreateDocItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// AppendItem places the block after the owner's current last block.
func (s *DocumentationService) AppendItem(ctx context.Context, userID uint64, ref access.OwnerRef, in DocItemInput) (*models.DocumentationItem, error) {
	maxOrder, err := s.Repo.MaxDocItemOrder(ctx, string(ref.Kind), ref.ID)
	if err != nil {
		return nil, err
	}
	in.Order = maxOrder + 1
	return s.AddItem(ctx, userID, ref, in)
}

// ListItems returns every block owned by the entity, flattened across
// widgets, in display order.
func (s *DocumentationService) ListItems(ctx context.Context, userID uint64, ref access.OwnerRef) ([]models.DocumentationItem, error) {
	if err := s.Access.CanRead(ctx, userID, ref); err != nil {
		return nil, err
	}
	return s.Repo.ListDocItems(ctx, string(ref.Kind), ref.ID)
}

// ReplaceAll swaps the owner's blocks for the given ordered list in one
// transaction. Order is assigned from list position; this is a full
// replace, not a patch.
func (s *DocumentationService) ReplaceAll(ctx context.Context, userID uint64, ref access.OwnerRef, items []DocItemInput) ([]models.DocumentationItem, error) {
	types := make([]string, len(items))
	for i, in := range items {
		itemType, err := validateDocPayload(in)
		if err != nil {
			return nil, err
		}
		types[i] = itemType
	}
	if err := s.Access.CanWrite(ctx, userID, ref); err != nil {
		return nil, err
	}
	widget, err := s.Repo.GetOrCreateWidget(ctx, string(ref.Kind), ref.ID)
	if err != nil {
		return nil, err
	}

	created := make([]models.DocumentationItem, 0, len(items))
	err = s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		if err := s.Repo.DeleteDocItemsForOwner(ctx, tx, string(ref.Kind), ref.ID); err != nil {
			return err
		}
		for i, in := range items {
			item := models.DocumentationItem{
				WidgetID:    widget.ID,
				ItemType:    types[i],
				TextContent: in.TextContent,
				ImageURL:    in.ImageURL,
				Order:       i,
			}
			if err := s.Repo.CreateDocItemTx(ctx, tx, &item); err != nil {
				return err
			}
			created = append(created, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *DocumentationService) DeleteItem(ctx context.Context, userID, id uint64) error {
	item, err := s.Repo.GetDocItem(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return apperr.ErrNotFound
	}
	ref, err := s.ownerOfItem(ctx, item)
	if err != nil {
		return err
	}
	if err := s.Access.CanWrite(ctx, userID, ref); err != nil {
		return err
	}
	return s.Repo.DeleteDocItem(ctx, id)
}

func (s *DocumentationService) ownerOfItem(ctx context.Context, item *models.DocumentationItem) (access.OwnerRef, error) {
	widget, err := s.Repo.GetWidget(ctx, item.WidgetID)
	if err != nil {
		return access.OwnerRef{}, err
	}
	if widget == nil {
		return access.OwnerRef{}, apperr.ErrNotFound
	}
	kind, err := access.ParseOwnerKind(widget.OwnerKind)
	if err != nil {
		return access.OwnerRef{}, err
	}
	return access.OwnerRef{Kind: kind, ID: widget.OwnerID}, nil
}
