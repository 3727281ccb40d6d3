package content

import (
	"context"
	"errors"
	"sync"

	"github.com/nooronx/cms/internal/model"
	"github.com/nooronx/cms/internal/repository"
)

// --- モック ---

var errPrimaryDown = errors.New("connection refused")

type mockPrimaryRepo struct {
	findByIDFn       func(ctx context.Context, collection model.Collection, id string) (*model.Content, error)
	listFn           func(ctx context.Context, collection model.Collection, opts repository.ListOptions) ([]*model.Content, error)
	createFn         func(ctx context.Context, content *model.Content) error
	updateFn         func(ctx context.Context, content *model.Content) error
	incrementViewsFn func(ctx context.Context, collection model.Collection, id string) (*model.Content, error)
}

func (m *mockPrimaryRepo) FindByID(ctx context.Context, collection model.Collection, id string) (*model.Content, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, collection, id)
	}
	return nil, nil
}
func (m *mockPrimaryRepo) List(ctx context.Context, collection model.Collection, opts repository.ListOptions) ([]*model.Content, error) {
	if m.listFn != nil {
		return m.listFn(ctx, collection, opts)
	}
	return nil, nil
}
func (m *mockPrimaryRepo) Create(ctx context.Context, content *model.Content) error {
	if m.createFn != nil {
		return m.createFn(ctx, content)
	}
	return nil
}
func (m *mockPrimaryRepo) Update(ctx context.Context, content *model.Content) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, content)
	}
	return nil
}
func (m *mockPrimaryRepo) IncrementViews(ctx context.Context, collection model.Collection, id string) (*model.Content, error) {
	if m.incrementViewsFn != nil {
		return m.incrementViewsFn(ctx, collection, id)
	}
	return nil, nil
}

// failingPrimary は全操作でエラーを返すプライマリストア。
func failingPrimary() *mockPrimaryRepo {
	return &mockPrimaryRepo{
		findByIDFn: func(context.Context, model.Collection, string) (*model.Content, error) {
			return nil, errPrimaryDown
		},
		listFn: func(context.Context, model.Collection, repository.ListOptions) ([]*model.Content, error) {
			return nil, errPrimaryDown
		},
		createFn: func(context.Context, *model.Content) error { return errPrimaryDown },
		updateFn: func(context.Context, *model.Content) error { return errPrimaryDown },
		incrementViewsFn: func(context.Context, model.Collection, string) (*model.Content, error) {
			return nil, errPrimaryDown
		},
	}
}

// countingPrimary は閲覧数のみを保持するプライマリストア。
func countingPrimary(views map[string]int) *mockPrimaryRepo {
	var mu sync.Mutex
	return &mockPrimaryRepo{
		incrementViewsFn: func(_ context.Context, collection model.Collection, id string) (*model.Content, error) {
			mu.Lock()
			defer mu.Unlock()
			v, ok := views[id]
			if !ok {
				return nil, nil
			}
			views[id] = v + 1
			return &model.Content{ID: id, Collection: collection, Views: v + 1}, nil
		},
	}
}

type mockRecorder struct {
	mu              sync.Mutex
	increments      map[string]int
	primaryFailures int
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{increments: make(map[string]int)}
}

func (m *mockRecorder) RecordViewIncrement(collection string, store string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.increments[collection+"/"+store]++
}

func (m *mockRecorder) RecordPrimaryFailure(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.primaryFailures++
}

// stubSanitizer は入力をそのまま返すサニタイザー。
type stubSanitizer struct{}

func (stubSanitizer) SanitizeHTML(s string) string { return s }
func (stubSanitizer) SanitizeText(s string) string { return s }
