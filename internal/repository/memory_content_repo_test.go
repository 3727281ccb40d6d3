package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nooronx/cms/internal/model"
)

func TestMemoryContentRepo_ImplementsInterface(t *testing.T) {
	var _ FallbackContentRepository = (*MemoryContentRepo)(nil)
}

func TestMemoryContentRepo_FindByID_NotFound_ReturnsNil(t *testing.T) {
	repo := NewMemoryContentRepo()

	got, err := repo.FindByID(context.Background(), model.CollectionNews, "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestMemoryContentRepo_FindByID_UnknownCollection_ReturnsError(t *testing.T) {
	repo := NewMemoryContentRepo()

	if _, err := repo.FindByID(context.Background(), model.Collection("users"), "x"); err == nil {
		t.Fatal("expected error for unknown collection")
	}
}

func TestMemoryContentRepo_SeedAndFind_ReturnsCopy(t *testing.T) {
	repo := NewMemoryContentRepo()
	if err := repo.Seed([]*model.Content{
		{ID: "x", Collection: model.CollectionNews, Views: 5},
	}); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	got, err := repo.FindByID(context.Background(), model.CollectionNews, "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Views != 5 {
		t.Fatalf("got %+v, want views=5", got)
	}

	// 取得結果を変更しても内部状態に影響しないこと
	got.Views = 100
	again, _ := repo.FindByID(context.Background(), model.CollectionNews, "x")
	if again.Views != 5 {
		t.Errorf("stored Views = %d, want 5", again.Views)
	}
}

func TestMemoryContentRepo_CollectionsAreIsolated(t *testing.T) {
	repo := NewMemoryContentRepo()
	_ = repo.Seed([]*model.Content{{ID: "x", Collection: model.CollectionNews}})

	got, err := repo.FindByID(context.Background(), model.CollectionEducation, "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Error("news item should not be visible in education")
	}
}

func TestMemoryContentRepo_Save_Overwrites(t *testing.T) {
	repo := NewMemoryContentRepo()
	ctx := context.Background()
	_ = repo.Seed([]*model.Content{{ID: "x", Collection: model.CollectionNews, Views: 1}})

	if err := repo.Save(ctx, &model.Content{ID: "x", Collection: model.CollectionNews, Views: 2}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, _ := repo.FindByID(ctx, model.CollectionNews, "x")
	if got.Views != 2 {
		t.Errorf("Views = %d, want 2", got.Views)
	}
}

func TestMemoryContentRepo_Create_DuplicateID_ReturnsError(t *testing.T) {
	repo := NewMemoryContentRepo()
	ctx := context.Background()

	c := &model.Content{ID: "dup", Collection: model.CollectionEducation}
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	if c.CreatedAt.IsZero() || c.UpdatedAt.IsZero() {
		t.Error("Create should set timestamps")
	}
	if err := repo.Create(ctx, &model.Content{ID: "dup", Collection: model.CollectionEducation}); err == nil {
		t.Fatal("expected error for duplicate id")
	}
}

func TestMemoryContentRepo_Update_PreservesViewsAndCreatedAt(t *testing.T) {
	repo := NewMemoryContentRepo()
	ctx := context.Background()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_ = repo.Seed([]*model.Content{
		{ID: "x", Collection: model.CollectionNews, TitleEN: "old", Views: 7, CreatedAt: created},
	})

	in := &model.Content{ID: "x", Collection: model.CollectionNews, TitleEN: "new", Views: 0}
	if err := repo.Update(ctx, in); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if in.Views != 7 {
		t.Errorf("returned Views = %d, want 7", in.Views)
	}

	got, _ := repo.FindByID(ctx, model.CollectionNews, "x")
	if got.TitleEN != "new" {
		t.Errorf("TitleEN = %q, want %q", got.TitleEN, "new")
	}
	if got.Views != 7 {
		t.Errorf("Views = %d, want 7", got.Views)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
}

func TestMemoryContentRepo_Update_Missing_ReturnsNotFound(t *testing.T) {
	repo := NewMemoryContentRepo()

	err := repo.Update(context.Background(), &model.Content{ID: "nope", Collection: model.CollectionNews})
	if !errors.Is(err, model.ErrContentNotFound) {
		t.Errorf("err = %v, want ErrContentNotFound", err)
	}
}

func TestMemoryContentRepo_List_OrderFilterAndPaging(t *testing.T) {
	repo := NewMemoryContentRepo()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	_ = repo.Seed([]*model.Content{
		{ID: "a", Collection: model.CollectionNews, Published: true, CreatedAt: base},
		{ID: "b", Collection: model.CollectionNews, Published: false, CreatedAt: base.Add(time.Hour)},
		{ID: "c", Collection: model.CollectionNews, Published: true, CreatedAt: base.Add(2 * time.Hour)},
	})
	ctx := context.Background()

	all, err := repo.List(ctx, model.CollectionNews, ListOptions{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 || all[0].ID != "c" || all[2].ID != "a" {
		t.Errorf("unexpected order: %v", ids(all))
	}

	published, _ := repo.List(ctx, model.CollectionNews, ListOptions{PublishedOnly: true})
	if len(published) != 2 {
		t.Errorf("published count = %d, want 2", len(published))
	}

	page, _ := repo.List(ctx, model.CollectionNews, ListOptions{Limit: 1, Offset: 1})
	if len(page) != 1 || page[0].ID != "b" {
		t.Errorf("page = %v, want [b]", ids(page))
	}

	empty, _ := repo.List(ctx, model.CollectionNews, ListOptions{Offset: 10})
	if len(empty) != 0 {
		t.Errorf("expected empty page, got %v", ids(empty))
	}
}

func TestMemoryContentRepo_Reset_ClearsAll(t *testing.T) {
	repo := NewMemoryContentRepo()
	_ = repo.Seed([]*model.Content{
		{ID: "a", Collection: model.CollectionNews},
		{ID: "b", Collection: model.CollectionEducation},
	})

	repo.Reset()

	if repo.Len(model.CollectionNews) != 0 || repo.Len(model.CollectionEducation) != 0 {
		t.Error("expected all collections to be empty after Reset")
	}
}

func TestMemoryContentRepo_Seed_RejectsUnknownCollectionAndEmptyID(t *testing.T) {
	repo := NewMemoryContentRepo()

	if err := repo.Seed([]*model.Content{{ID: "x", Collection: "users"}}); err == nil {
		t.Error("expected error for unknown collection")
	}
	if err := repo.Seed([]*model.Content{{Collection: model.CollectionNews}}); err == nil {
		t.Error("expected error for empty id")
	}
}

func ids(cs []*model.Content) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}
