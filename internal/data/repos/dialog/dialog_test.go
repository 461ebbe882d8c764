package dialog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/novo-contact-backend/internal/data/repos/testutil"
	types "github.com/yungbote/novo-contact-backend/internal/domain"
	"github.com/yungbote/novo-contact-backend/internal/pkg/dbctx"
)

func TestDialogRepoMessagesAreSequenced(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewDialogRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "dialogs@example.com")
	c := testutil.SeedContact(t, ctx, tx, u.ID, "")

	if got, err := repo.LatestForContact(dbc, c.ID); err != nil || got != nil {
		t.Fatalf("LatestForContact(empty): err=%v got=%v", err, got)
	}

	d, err := repo.Create(dbc, &types.Dialog{ContactID: c.ID, CallSID: "CA1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	now := time.Now()
	turns := []struct{ role, text string }{
		{types.RoleClient, "yes"},
		{types.RoleAgent, "Our offer"},
		{types.RoleClient, "how much"},
	}
	for _, turn := range turns {
		if _, err := repo.AppendMessage(dbc, d.ID, turn.role, turn.text, now); err != nil {
			t.Fatalf("AppendMessage: %v", err)
		}
	}

	msgs, err := repo.ListMessages(dbc, d.ID)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != len(turns) {
		t.Fatalf("messages: want=%d got=%d", len(turns), len(msgs))
	}
	for i, m := range msgs {
		if m.Seq != i+1 || m.Text != turns[i].text || m.Role != turns[i].role {
			t.Fatalf("message %d: want=(%d,%s,%s) got=(%d,%s,%s)", i, i+1, turns[i].role, turns[i].text, m.Seq, m.Role, m.Text)
		}
	}
}

func TestDialogRepoTimestampsStrictlyIncrease(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewDialogRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "dialog-clock@example.com")
	c := testutil.SeedContact(t, ctx, tx, u.ID, "")
	d, err := repo.Create(dbc, &types.Dialog{ContactID: c.ID, CallSID: "CA2"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	// Same instant twice, then a clock step back.
	for _, at := range []time.Time{t0, t0, t0.Add(-time.Second)} {
		if _, err := repo.AppendMessage(dbc, d.ID, types.RoleClient, "hi", at); err != nil {
			t.Fatalf("AppendMessage: %v", err)
		}
	}

	msgs, err := repo.ListMessages(dbc, d.ID)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("messages: want=3 got=%d", len(msgs))
	}
	if !msgs[0].Timestamp.Equal(t0) {
		t.Fatalf("first timestamp: want=%s got=%s", t0, msgs[0].Timestamp)
	}
	for i := 1; i < len(msgs); i++ {
		if !msgs[i].Timestamp.After(msgs[i-1].Timestamp) {
			t.Fatalf("timestamp %d not after %d: %s <= %s", i, i-1, msgs[i].Timestamp, msgs[i-1].Timestamp)
		}
	}
	if want := t0.Add(2 * time.Microsecond); !msgs[2].Timestamp.Equal(want) {
		t.Fatalf("clamped timestamp: want=%s got=%s", want, msgs[2].Timestamp)
	}
}

func TestDialogRepoLatestAndTranscript(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewDialogRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "latest@example.com")
	c := testutil.SeedContact(t, ctx, tx, u.ID, "")

	older, _ := repo.Create(dbc, &types.Dialog{ContactID: c.ID, CallSID: "CA-old", Date: time.Now().Add(-time.Hour).UTC()})
	newer, _ := repo.Create(dbc, &types.Dialog{ContactID: c.ID, CallSID: "CA-new", Date: time.Now().UTC()})
	if older == nil || newer == nil {
		t.Fatalf("seed dialogs failed")
	}

	latest, err := repo.LatestForContact(dbc, c.ID)
	if err != nil || latest == nil || latest.ID != newer.ID {
		t.Fatalf("LatestForContact: err=%v got=%v want=%s", err, latest, newer.ID)
	}

	if err := repo.AppendTranscript(dbc, newer.ID, "Client: yes\n"); err != nil {
		t.Fatalf("AppendTranscript: %v", err)
	}
	if err := repo.AppendTranscript(dbc, newer.ID, "Agent: Our offer\n"); err != nil {
		t.Fatalf("AppendTranscript: %v", err)
	}
	latest, _ = repo.LatestForContact(dbc, c.ID)
	if want := "Client: yes\nAgent: Our offer\n"; latest.Transcript != want {
		t.Fatalf("transcript: want=%q got=%q", want, latest.Transcript)
	}

	list, err := repo.ListByContact(dbc, c.ID)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListByContact: err=%v len=%d", err, len(list))
	}
	if list[0].ID != newer.ID {
		t.Fatalf("ListByContact order: want newest first")
	}

	if got, err := repo.LatestForContact(dbc, uuid.New()); err != nil || got != nil {
		t.Fatalf("LatestForContact(unknown): err=%v got=%v", err, got)
	}
}
