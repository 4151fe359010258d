// Package access resolves entity ownership for per-request scoping. Owner
// kinds form a closed set, so resolution is a switch over a tagged
// reference instead of a dynamic type lookup.
package access

import (
	"context"
	"fmt"

	"tradejournal/internal/apperr"
	"tradejournal/internal/repository"
)

type OwnerKind string

const (
	KindAccount       OwnerKind = "account"
	KindTrade         OwnerKind = "trade"
	KindSetupStrategy OwnerKind = "setup_strategy"
	KindEntryType     OwnerKind = "entry_type"
)

// OwnerRef names one entity that can own documentation or be access-checked.
type OwnerRef struct {
	Kind OwnerKind
	ID   uint64
}

func ParseOwnerKind(raw string) (OwnerKind, error) {
	switch OwnerKind(raw) {
	case KindAccount, KindTrade, KindSetupStrategy, KindEntryType:
		return OwnerKind(raw), nil
	}
	return "", fmt.Errorf("%w: unknown parent_type %q", apperr.ErrValidation, raw)
}

// ownership is the resolved state of one entity: owned by a user, or public.
type ownership struct {
	userID uint64
	public bool
}

type Resolver struct {
	Repo repository.Repository
}

func (r *Resolver) resolve(ctx context.Context, ref OwnerRef) (ownership, error) {
	switch ref.Kind {
	case KindAccount:
		item, err := r.Repo.GetAccountAny(ctx, ref.ID)
		if err != nil {
			return ownership{}, err
		}
		if item == nil {
			return ownership{}, apperr.ErrNotFound
		}
		return ownership{userID: item.UserID}, nil
	case KindTrade:
		trade, err := r.Repo.GetTrade(ctx, ref.ID)
		if err != nil {
			return ownership{}, err
		}
		if trade == nil {
			return ownership{}, apperr.ErrNotFound
		}
		account, err := r.Repo.GetAccountAny(ctx, trade.AccountID)
		if err != nil {
			return ownership{}, err
		}
		if account == nil {
			return ownership{}, apperr.ErrNotFound
		}
		return ownership{userID: account.UserID}, nil
	case KindSetupStrategy:
		item, err := r.Repo.GetSetupStrategy(ctx, ref.ID)
		if err != nil {
			return ownership{}, err
		}
		if item == nil {
			return ownership{}, apperr.ErrNotFound
		}
		if item.UserID == nil {
			return ownership{public: true}, nil
		}
		return ownership{userID: *item.UserID}, nil
	case KindEntryType:
		item, err := r.Repo.GetEntryType(ctx, ref.ID)
		if err != nil {
			return ownership{}, err
		}
		if item == nil {
			return ownership{}, apperr.ErrNotFound
		}
		if item.UserID == nil {
			return ownership{public: true}, nil
		}
		return ownership{userID: *item.UserID}, nil
	}
	return ownership{}, fmt.Errorf("%w: unknown owner kind %q", apperr.ErrValidation, ref.Kind)
}

// CanRead allows the owner and, for public entities, everyone.
func (r *Resolver) CanRead(ctx context.Context, userID uint64, ref OwnerRef) error {
	own, err := r.resolve(ctx, ref)
	if err != nil {
		return err
	}
	if own.public || own.userID == userID {
		return nil
	}
	return apperr.ErrForbidden
}

// CanWrite allows the owner only. Public entities are never writable.
func (r *Resolver) CanWrite(ctx context.Context, userID uint64, ref OwnerRef) error {
	own, err := r.resolve(ctx, ref)
	if err != nil {
		return err
	}
	if own.public {
		return apperr.ErrForbidden
	}
	if own.userID != userID {
		return apperr.ErrForbidden
	}
	return nil
}
