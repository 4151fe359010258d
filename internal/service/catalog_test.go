package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"tradejournal/internal/apperr"
	"tradejournal/internal/models"
)

func TestCatalogVisibility(t *testing.T) {
	store := newTestStore(t)
	catalog := &CatalogService{Repo: store}
	alice := newTestUser(t, store, "alice")
	bob := newTestUser(t, store, "bob")

	mine, err := catalog.CreateSetupStrategy(context.Background(), alice.ID,
		CatalogItemInput{Name: "breakout", Description: "range break"})
	assert.NoError(t, err)

	public := &models.SetupStrategy{Name: "trend"}
	assert.NoError(t, store.CreateSetupStrategy(context.Background(), public))

	// Owner sees own and public entries; a foreign private one stays hidden
	// from the list but is addressable by id.
	items, err := catalog.ListSetupStrategies(context.Background(), bob.ID)
	assert.NoError(t, err)
	if assert.Len(t, items, 1) {
		assert.Equal(t, "trend", items[0].Name)
	}

	_, err = catalog.GetSetupStrategy(context.Background(), bob.ID, mine.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	got, err := catalog.GetSetupStrategy(context.Background(), bob.ID, public.ID)
	assert.NoError(t, err)
	assert.Nil(t, got.UserID)
}

func TestCatalogWriteRules(t *testing.T) {
	store := newTestStore(t)
	catalog := &CatalogService{Repo: store}
	alice := newTestUser(t, store, "alice")
	bob := newTestUser(t, store, "bob")

	mine, err := catalog.CreateEntryType(context.Background(), alice.ID,
		CatalogItemInput{Name: "pullback"})
	assert.NoError(t, err)

	public := &models.EntryType{Name: "market"}
	assert.NoError(t, store.CreateEntryType(context.Background(), public))

	// Foreign private entry: write forbidden.
	_, err = catalog.UpdateEntryType(context.Background(), bob.ID, mine.ID,
		CatalogItemUpdate{Name: strPtr("hijack")})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	err = catalog.DeleteEntryType(context.Background(), bob.ID, mine.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	// Public entry: writable by no one, including its readers.
	_, err = catalog.UpdateEntryType(context.Background(), alice.ID, public.ID,
		CatalogItemUpdate{Name: strPtr("renamed")})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	err = catalog.DeleteEntryType(context.Background(), alice.ID, public.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	// Owner updates succeed; blank names do not.
	updated, err := catalog.UpdateEntryType(context.Background(), alice.ID, mine.ID,
		CatalogItemUpdate{Name: strPtr("scaled entry")})
	assert.NoError(t, err)
	assert.Equal(t, "scaled entry", updated.Name)
	_, err = catalog.UpdateEntryType(context.Background(), alice.ID, mine.ID,
		CatalogItemUpdate{Name: strPtr("  ")})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = catalog.GetEntryType(context.Background(), alice.ID, 9999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteStrategyUnlinksTrades(t *testing.T) {
	store := newTestStore(t)
	catalog := &CatalogService{Repo: store}
	ledger := &LedgerService{Repo: store}
	user := newTestUser(t, store, "alice")
	account := newTestAccount(t, ledger, user.ID, 1000)

	strategy, err := catalog.CreateSetupStrategy(context.Background(), user.ID,
		CatalogItemInput{Name: "breakout"})
	assert.NoError(t, err)

	in := closedTrade(account.ID, account.CreatedAt, 10)
	in.SetupStrategyID = &strategy.ID
	trade, err := ledger.CreateTrade(context.Background(), user.ID, in)
	assert.NoError(t, err)

	assert.NoError(t, catalog.DeleteSetupStrategy(context.Background(), user.ID, strategy.ID))

	got, err := ledger.GetTrade(context.Background(), user.ID, trade.ID)
	assert.NoError(t, err)
	assert.Nil(t, got.SetupStrategyID)
	assert.NotNil(t, got.Returns)
}
