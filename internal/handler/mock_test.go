package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/nooronx/cms/internal/content"
	"github.com/nooronx/cms/internal/model"
	"github.com/nooronx/cms/internal/repository"
)

// --- モック定義 ---

type mockAuthService struct {
	loginFn          func(ctx context.Context, username, password string) (*http.Cookie, error)
	logoutFn         func(ctx context.Context) *http.Cookie
	currentSessionFn func(r *http.Request) (*model.Session, error)
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (*http.Cookie, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, username, password)
	}
	return nil, model.NewInvalidCredentialsError()
}

func (m *mockAuthService) Logout(ctx context.Context) *http.Cookie {
	if m.logoutFn != nil {
		return m.logoutFn(ctx)
	}
	return &http.Cookie{Name: "nooronx_auth", Value: "", Path: "/", MaxAge: -1}
}

func (m *mockAuthService) CurrentSession(r *http.Request) (*model.Session, error) {
	if m.currentSessionFn != nil {
		return m.currentSessionFn(r)
	}
	return nil, nil
}

type mockContentService struct {
	listFn   func(ctx context.Context, collection model.Collection, opts repository.ListOptions) ([]*model.Content, error)
	getFn    func(ctx context.Context, collection model.Collection, id string) (*model.Content, error)
	createFn func(ctx context.Context, collection model.Collection, in model.ContentInput) (*model.Content, error)
	updateFn func(ctx context.Context, collection model.Collection, id string, in model.ContentInput) (*model.Content, error)
}

func (m *mockContentService) List(ctx context.Context, collection model.Collection, opts repository.ListOptions) ([]*model.Content, error) {
	if m.listFn != nil {
		return m.listFn(ctx, collection, opts)
	}
	return []*model.Content{}, nil
}

func (m *mockContentService) Get(ctx context.Context, collection model.Collection, id string) (*model.Content, error) {
	if m.getFn != nil {
		return m.getFn(ctx, collection, id)
	}
	return nil, model.ErrContentNotFound
}

func (m *mockContentService) Create(ctx context.Context, collection model.Collection, in model.ContentInput) (*model.Content, error) {
	if m.createFn != nil {
		return m.createFn(ctx, collection, in)
	}
	return &model.Content{ID: "new", Collection: collection, TitleEN: in.TitleEN}, nil
}

func (m *mockContentService) Update(ctx context.Context, collection model.Collection, id string, in model.ContentInput) (*model.Content, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, collection, id, in)
	}
	return &model.Content{ID: id, Collection: collection, TitleEN: in.TitleEN}, nil
}

type mockViewCounter struct {
	incrementFn func(ctx context.Context, collection model.Collection, id string) (*content.IncrementResult, error)
}

func (m *mockViewCounter) Increment(ctx context.Context, collection model.Collection, id string) (*content.IncrementResult, error) {
	return m.incrementFn(ctx, collection, id)
}

type mockAuthChecker struct {
	authenticated bool
}

func (m mockAuthChecker) IsAuthenticated(*http.Request) bool {
	return m.authenticated
}

type mockPinger struct {
	err error
}

func (m mockPinger) PingContext(context.Context) error {
	return m.err
}

// failingPrimaryRepo は全操作でエラーを返すプライマリストア。
type failingPrimaryRepo struct{}

var errPrimaryDown = errors.New("primary store down")

func (failingPrimaryRepo) FindByID(context.Context, model.Collection, string) (*model.Content, error) {
	return nil, errPrimaryDown
}
func (failingPrimaryRepo) List(context.Context, model.Collection, repository.ListOptions) ([]*model.Content, error) {
	return nil, errPrimaryDown
}
func (failingPrimaryRepo) Create(context.Context, *model.Content) error { return errPrimaryDown }
func (failingPrimaryRepo) Update(context.Context, *model.Content) error { return errPrimaryDown }
func (failingPrimaryRepo) IncrementViews(context.Context, model.Collection, string) (*model.Content, error) {
	return nil, errPrimaryDown
}
