package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"tradejournal/internal/access"
	"tradejournal/internal/apperr"
	"tradejournal/internal/models"
	gormrepository "tradejournal/internal/repository/gorm"
)

func newDocsFixture(t *testing.T) (*gormrepository.Store, *LedgerService, *DocumentationService) {
	t.Helper()
	store := newTestStore(t)
	ledger := &LedgerService{Repo: store, Logger: zap.NewNop()}
	docs := &DocumentationService{Repo: store, Access: &access.Resolver{Repo: store}}
	return store, ledger, docs
}

func strPtr(s string) *string { return &s }

func textItem(content string, order int) DocItemInput {
	return DocItemInput{ItemType: "TEXT", TextContent: strPtr(content), Order: order}
}

func TestDocPayloadValidation(t *testing.T) {
	store, ledger, docs := newDocsFixture(t)
	user := newTestUser(t, store, "alice")
	account := newTestAccount(t, ledger, user.ID, 1000)
	ref := access.OwnerRef{Kind: access.KindAccount, ID: account.ID}

	// TEXT without content.
	_, err := docs.AddItem(context.Background(), user.ID, ref, DocItemInput{ItemType: "TEXT"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// TEXT with an image attached.
	_, err = docs.AddItem(context.Background(), user.ID, ref, DocItemInput{
		ItemType: "TEXT", TextContent: strPtr("note"), ImageURL: strPtr("http://x/y.png"),
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// IMAGE without a url.
	_, err = docs.AddItem(context.Background(), user.ID, ref, DocItemInput{ItemType: "IMAGE"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// Unknown type.
	_, err = docs.AddItem(context.Background(), user.ID, ref, DocItemInput{
		ItemType: "VIDEO", TextContent: strPtr("x"),
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// Lowercase type is normalized.
	item, err := docs.AddItem(context.Background(), user.ID, ref, DocItemInput{
		ItemType: "text", TextContent: strPtr("note"),
	})
	assert.NoError(t, err)
	assert.Equal(t, models.DocItemText, item.ItemType)
}

func TestGetOrCreateWidgetIdempotent(t *testing.T) {
	store, ledger, docs := newDocsFixture(t)
	user := newTestUser(t, store, "alice")
	account := newTestAccount(t, ledger, user.ID, 1000)
	ref := access.OwnerRef{Kind: access.KindAccount, ID: account.ID}

	first, err := docs.GetOrCreateWidget(context.Background(), user.ID, ref)
	assert.NoError(t, err)
	second, err := docs.GetOrCreateWidget(context.Background(), user.ID, ref)
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	widgets, err := docs.ListWidgets(context.Background(), user.ID, ref)
	assert.NoError(t, err)
	assert.Len(t, widgets, 1)
}

func TestAppendItemOrdering(t *testing.T) {
	store, ledger, docs := newDocsFixture(t)
	user := newTestUser(t, store, "alice")
	account := newTestAccount(t, ledger, user.ID, 1000)
	trade, err := ledger.CreateTrade(context.Background(), user.ID,
		closedTrade(account.ID, time.Now().UTC(), 10))
	assert.NoError(t, err)
	ref := access.OwnerRef{Kind: access.KindTrade, ID: trade.ID}

	first, err := docs.AppendItem(context.Background(), user.ID, ref, DocItemInput{
		ItemType: "IMAGE", ImageURL: strPtr("http://blob/a.png"),
	})
	assert.NoError(t, err)
	assert.Equal(t, 0, first.Order)

	second, err := docs.AppendItem(context.Background(), user.ID, ref, DocItemInput{
		ItemType: "IMAGE", ImageURL: strPtr("http://blob/b.png"),
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, second.Order)
}

func TestReplaceAll(t *testing.T) {
	store, ledger, docs := newDocsFixture(t)
	user := newTestUser(t, store, "alice")
	account := newTestAccount(t, ledger, user.ID, 1000)
	ref := access.OwnerRef{Kind: access.KindAccount, ID: account.ID}

	_, err := docs.ReplaceAll(context.Background(), user.ID, ref, []DocItemInput{
		textItem("one", 5), textItem("two", 9), textItem("three", 1),
	})
	assert.NoError(t, err)

	replaced, err := docs.ReplaceAll(context.Background(), user.ID, ref, []DocItemInput{
		textItem("left", 0), textItem("right", 0),
	})
	assert.NoError(t, err)
	if assert.Len(t, replaced, 2) {
		// Order comes from list position, not the submitted value.
		assert.Equal(t, 0, replaced[0].Order)
		assert.Equal(t, 1, replaced[1].Order)
	}

	items, err := docs.ListItems(context.Background(), user.ID, ref)
	assert.NoError(t, err)
	if assert.Len(t, items, 2) {
		assert.Equal(t, "left", *items[0].TextContent)
		assert.Equal(t, "right", *items[1].TextContent)
	}
}

func TestReplaceAllRejectsInvalidBatch(t *testing.T) {
	store, ledger, docs := newDocsFixture(t)
	user := newTestUser(t, store, "alice")
	account := newTestAccount(t, ledger, user.ID, 1000)
	ref := access.OwnerRef{Kind: access.KindAccount, ID: account.ID}

	_, err := docs.ReplaceAll(context.Background(), user.ID, ref, []DocItemInput{textItem("keep", 0)})
	assert.NoError(t, err)

	// A batch with one bad item must not touch existing content.
	_, err = docs.ReplaceAll(context.Background(), user.ID, ref, []DocItemInput{
		textItem("new", 0), {ItemType: "TEXT"},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	items, err := docs.ListItems(context.Background(), user.ID, ref)
	assert.NoError(t, err)
	if assert.Len(t, items, 1) {
		assert.Equal(t, "keep", *items[0].TextContent)
	}
}

func TestDocumentationAccess(t *testing.T) {
	store, ledger, docs := newDocsFixture(t)
	alice := newTestUser(t, store, "alice")
	bob := newTestUser(t, store, "bob")
	account := newTestAccount(t, ledger, alice.ID, 1000)
	ref := access.OwnerRef{Kind: access.KindAccount, ID: account.ID}

	item, err := docs.AddItem(context.Background(), alice.ID, ref, textItem("private note", 0))
	assert.NoError(t, err)

	_, err = docs.ListItems(context.Background(), bob.ID, ref)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = docs.AddItem(context.Background(), bob.ID, ref, textItem("intrusion", 0))
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	err = docs.DeleteItem(context.Background(), bob.ID, item.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	// Public strategies are readable but never writable.
	public := &models.SetupStrategy{Name: "trend"}
	assert.NoError(t, store.CreateSetupStrategy(context.Background(), public))
	publicRef := access.OwnerRef{Kind: access.KindSetupStrategy, ID: public.ID}

	_, err = docs.ListItems(context.Background(), bob.ID, publicRef)
	assert.NoError(t, err)
	_, err = docs.AddItem(context.Background(), bob.ID, publicRef, textItem("edit", 0))
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	// Owner delete works.
	assert.NoError(t, docs.DeleteItem(context.Background(), alice.ID, item.ID))
	err = docs.DeleteItem(context.Background(), alice.ID, item.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDocumentationUnknownOwner(t *testing.T) {
	store, _, docs := newDocsFixture(t)
	user := newTestUser(t, store, "alice")

	_, err := docs.AddItem(context.Background(), user.ID,
		access.OwnerRef{Kind: access.KindAccount, ID: 12345}, textItem("ghost", 0))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
