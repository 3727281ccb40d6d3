package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/nooronx/cms/internal/content"
	"github.com/nooronx/cms/internal/model"
	"github.com/nooronx/cms/internal/repository"
)

// ContentServiceInterface は記事ハンドラーが必要とするサービスインターフェース。
type ContentServiceInterface interface {
	List(ctx context.Context, collection model.Collection, opts repository.ListOptions) ([]*model.Content, error)
	Get(ctx context.Context, collection model.Collection, id string) (*model.Content, error)
	Create(ctx context.Context, collection model.Collection, in model.ContentInput) (*model.Content, error)
	Update(ctx context.Context, collection model.Collection, id string, in model.ContentInput) (*model.Content, error)
}

// ViewCounterInterface は閲覧数加算のインターフェース。
type ViewCounterInterface interface {
	Increment(ctx context.Context, collection model.Collection, id string) (*content.IncrementResult, error)
}

// AuthChecker はリクエストが認証済みかどうかを判定する。
type AuthChecker interface {
	IsAuthenticated(r *http.Request) bool
}

// ContentHandler は1つのコレクション（news または education）を扱うHTTPハンドラー。
type ContentHandler struct {
	collection model.Collection
	service    ContentServiceInterface
	counter    ViewCounterInterface
	auth       AuthChecker
}

// NewContentHandler はContentHandlerを生成する。
func NewContentHandler(collection model.Collection, service ContentServiceInterface, counter ViewCounterInterface, auth AuthChecker) *ContentHandler {
	return &ContentHandler{
		collection: collection,
		service:    service,
		counter:    counter,
		auth:       auth,
	}
}

// listResponse は記事一覧のレスポンス。
type listResponse struct {
	Items []*model.Content `json:"items"`
}

// viewsResponse は閲覧数加算のレスポンス。
type viewsResponse struct {
	Views int `json:"views"`
}

// IncrementViews は記事の閲覧数を1加算する。
// PATCH /api/{collection}/{id}/views
func (h *ContentHandler) IncrementViews(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := h.counter.Increment(r.Context(), h.collection, id)
	if err != nil {
		h.handleError(w, r, id, err)
		return
	}

	writeJSON(w, http.StatusOK, viewsResponse{Views: res.Views})
}

// List は記事一覧を返す。未認証の場合は公開済みの記事のみ。
// GET /api/{collection}?limit=&offset=
func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidInputError("limit must be an integer"))
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidInputError("offset must be an integer"))
		return
	}

	items, err := h.service.List(r.Context(), h.collection, repository.ListOptions{
		Limit:         limit,
		Offset:        offset,
		PublishedOnly: !h.isAdmin(r),
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Items: items})
}

// Get は記事詳細を返す。未公開の記事は認証済みの場合のみ返す。
// GET /api/{collection}/{id}
func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := h.service.Get(r.Context(), h.collection, id)
	if err != nil {
		h.handleError(w, r, id, err)
		return
	}
	if !item.Published && !h.isAdmin(r) {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewContentNotFoundError(h.collection, id))
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// Create は記事を作成する。
// POST /api/{collection}
func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.ContentInput
	if err := decodeJSONBody(w, r, &in); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidInputError("invalid JSON body"))
		return
	}

	item, err := h.service.Create(r.Context(), h.collection, in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// Update は記事を更新する。
// PUT /api/{collection}/{id}
func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in model.ContentInput
	if err := decodeJSONBody(w, r, &in); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidInputError("invalid JSON body"))
		return
	}

	item, err := h.service.Update(r.Context(), h.collection, id, in)
	if err != nil {
		h.handleError(w, r, id, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// handleError は記事未検出を404に変換し、それ以外はhandleServiceErrorに委ねる。
func (h *ContentHandler) handleError(w http.ResponseWriter, r *http.Request, id string, err error) {
	if errors.Is(err, model.ErrContentNotFound) {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewContentNotFoundError(h.collection, id))
		return
	}
	handleServiceError(w, r, err)
}

func (h *ContentHandler) isAdmin(r *http.Request) bool {
	return h.auth != nil && h.auth.IsAuthenticated(r)
}

// queryInt はクエリパラメータを整数として読み取る。未指定の場合は0を返す。
func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
