// File: internal/repository/message/message_repository_test.go
package message

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/minhle/go-chatproxy/internal/domain"
)

func newTestRepo(t *testing.T) MessageRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Chat{}, &domain.Message{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewMessageRepository(db)
}

func TestCreateAndListInOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	contents := []string{"first", "second", "third"}
	for i, c := range contents {
		_, err := repo.Create(ctx, &domain.Message{ChatID: 1, Content: c, IsUser: i%2 == 0})
		if err != nil {
			t.Fatalf("Create %q: %v", c, err)
		}
	}
	// Another chat's message must not leak into the listing.
	repo.Create(ctx, &domain.Message{ChatID: 2, Content: "other", IsUser: true})

	messages, err := repo.FindByChatID(ctx, 1)
	if err != nil {
		t.Fatalf("FindByChatID: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(messages))
	}
	for i, c := range contents {
		if messages[i].Content != c {
			t.Errorf("position %d = %q, want %q", i, messages[i].Content, c)
		}
	}
}

func TestCreateValidation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.Create(ctx, &domain.Message{Content: "no chat"}); err == nil {
		t.Error("expected error for missing chat id")
	}
	if _, err := repo.Create(ctx, &domain.Message{ChatID: 1, Content: "   "}); err == nil {
		t.Error("expected error for empty content")
	}
	// Attachment-only messages are allowed.
	if _, err := repo.Create(ctx, &domain.Message{ChatID: 1, AttachmentURL: "/uploads/x.png", Content: ""}); err != nil {
		t.Errorf("attachment-only message rejected: %v", err)
	}
}

func TestUpdateMessage(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, _ := repo.Create(ctx, &domain.Message{ChatID: 1, Content: "draft", IsUser: false})

	created.Content = "final"
	created.ModelID = "gpt-4o"
	created.Provider = "GPT"
	if err := repo.Update(ctx, created); err != nil {
		t.Fatalf("Update: %v", err)
	}

	found, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found.Content != "final" || found.ModelID != "gpt-4o" || found.Provider != "GPT" {
		t.Errorf("message = %+v", found)
	}

	if err := repo.Update(ctx, &domain.Message{ID: 9999, Content: "x"}); !errors.Is(err, ErrMessageNotFound) {
		t.Errorf("got %v, want ErrMessageNotFound", err)
	}
}

func TestFindByIDNotFound(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.FindByID(context.Background(), 4242); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("got %v, want ErrMessageNotFound", err)
	}
}

func TestCountByChatID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		repo.Create(ctx, &domain.Message{ChatID: 3, Content: "m", IsUser: true})
	}
	repo.Create(ctx, &domain.Message{ChatID: 4, Content: "m", IsUser: true})

	count, err := repo.CountByChatID(ctx, 3)
	if err != nil {
		t.Fatalf("CountByChatID: %v", err)
	}
	if count != 4 {
		t.Errorf("count = %d, want 4", count)
	}
}
