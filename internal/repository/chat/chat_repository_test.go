// File: internal/repository/chat/chat_repository_test.go
package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/minhle/go-chatproxy/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Chat{}, &domain.Message{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestCreateAndFindChat(t *testing.T) {
	repo := NewChatRepository(newTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.Chat{Title: "First chat"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("no id assigned")
	}

	found, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found.Title != "First chat" {
		t.Errorf("title = %q", found.Title)
	}
}

func TestCreateRejectsEmptyTitle(t *testing.T) {
	repo := NewChatRepository(newTestDB(t))
	if _, err := repo.Create(context.Background(), &domain.Chat{Title: "   "}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestFindByIDNotFound(t *testing.T) {
	repo := NewChatRepository(newTestDB(t))
	if _, err := repo.FindByID(context.Background(), 9999); !errors.Is(err, ErrChatNotFound) {
		t.Fatalf("got %v, want ErrChatNotFound", err)
	}
}

func TestUpdateTitleAndSummary(t *testing.T) {
	repo := NewChatRepository(newTestDB(t))
	ctx := context.Background()

	created, _ := repo.Create(ctx, &domain.Chat{Title: "Old"})

	if err := repo.UpdateTitle(ctx, created.ID, "New title"); err != nil {
		t.Fatalf("UpdateTitle: %v", err)
	}
	if err := repo.UpdateContextSummary(ctx, created.ID, "summary text"); err != nil {
		t.Fatalf("UpdateContextSummary: %v", err)
	}

	found, _ := repo.FindByID(ctx, created.ID)
	if found.Title != "New title" || found.ContextSummary != "summary text" {
		t.Errorf("chat = %+v", found)
	}

	if err := repo.UpdateTitle(ctx, 9999, "x"); !errors.Is(err, ErrChatNotFound) {
		t.Errorf("got %v, want ErrChatNotFound", err)
	}
}

func TestDeleteWithMessagesCascades(t *testing.T) {
	db := newTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	created, _ := repo.Create(ctx, &domain.Chat{Title: "Doomed"})
	keeper, _ := repo.Create(ctx, &domain.Chat{Title: "Keeper"})

	for _, chatID := range []uint{created.ID, keeper.ID} {
		db.Create(&domain.Message{ChatID: chatID, Content: "hello", IsUser: true})
		db.Create(&domain.Message{ChatID: chatID, Content: "hi", IsUser: false})
	}

	if err := repo.DeleteWithMessages(ctx, created.ID); err != nil {
		t.Fatalf("DeleteWithMessages: %v", err)
	}

	if _, err := repo.FindByID(ctx, created.ID); !errors.Is(err, ErrChatNotFound) {
		t.Errorf("chat still present: %v", err)
	}

	var orphaned int64
	db.Model(&domain.Message{}).Where("chat_id = ?", created.ID).Count(&orphaned)
	if orphaned != 0 {
		t.Errorf("%d orphaned messages left behind", orphaned)
	}

	var kept int64
	db.Model(&domain.Message{}).Where("chat_id = ?", keeper.ID).Count(&kept)
	if kept != 2 {
		t.Errorf("other chat's messages affected: %d left", kept)
	}

	if err := repo.DeleteWithMessages(ctx, created.ID); !errors.Is(err, ErrChatNotFound) {
		t.Errorf("second delete = %v, want ErrChatNotFound", err)
	}
}

func TestFindAllNewestFirst(t *testing.T) {
	repo := NewChatRepository(newTestDB(t))
	ctx := context.Background()

	first, _ := repo.Create(ctx, &domain.Chat{Title: "First"})
	second, _ := repo.Create(ctx, &domain.Chat{Title: "Second"})

	chats, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(chats) != 2 {
		t.Fatalf("got %d chats", len(chats))
	}
	if chats[0].ID != second.ID || chats[1].ID != first.ID {
		t.Errorf("order = [%d %d], want newest first", chats[0].ID, chats[1].ID)
	}
}
