package contact

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/novo-contact-backend/internal/data/repos/testutil"
	types "github.com/yungbote/novo-contact-backend/internal/domain"
	"github.com/yungbote/novo-contact-backend/internal/pkg/dbctx"
)

func TestContactRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewContactRepo(db, testutil.Logger(t))
	owner := testutil.SeedUser(t, ctx, tx, "owner@example.com")
	other := testutil.SeedUser(t, ctx, tx, "other@example.com")

	c := &types.Contact{UserID: owner.ID, Name: "Ivan", Phone: "+15550001111"}
	c.SetTags([]string{"warm"})
	if _, err := repo.Create(dbc, []*types.Contact{c}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.ID == uuid.Nil {
		t.Fatalf("Create should assign an id")
	}

	got, err := repo.GetByID(dbc, c.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: err=%v got=%v", err, got)
	}
	if tags := got.TagList(); len(tags) != 1 || tags[0] != "warm" {
		t.Fatalf("tags: want=[warm] got=%v", tags)
	}

	if got, err := repo.GetByIDForUser(dbc, c.ID, other.ID); err != nil || got != nil {
		t.Fatalf("GetByIDForUser(other): err=%v got=%v", err, got)
	}
	if got, err := repo.GetByID(dbc, uuid.New()); err != nil || got != nil {
		t.Fatalf("GetByID(missing): err=%v got=%v", err, got)
	}

	if err := repo.UpdateScript(dbc, c.ID, "Our offer"); err != nil {
		t.Fatalf("UpdateScript: %v", err)
	}
	got, _ = repo.GetByIDForUser(dbc, c.ID, owner.ID)
	if got == nil || got.Script != "Our offer" {
		t.Fatalf("script: want=%q got=%v", "Our offer", got)
	}

	list, err := repo.ListByUser(dbc, owner.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListByUser: err=%v len=%d", err, len(list))
	}
}
