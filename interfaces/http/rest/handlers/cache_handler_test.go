package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dynacache/domain/cache"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockResponseCache struct {
	mock.Mock
}

func (m *mockResponseCache) Set(ctx context.Context, key string, payload []byte, entities []cache.Entity, ttl time.Duration) error {
	args := m.Called(ctx, key, payload, entities, ttl)
	return args.Error(0)
}

func (m *mockResponseCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	payload, _ := args.Get(0).([]byte)
	return payload, args.Bool(1), args.Error(2)
}

func (m *mockResponseCache) Invalidate(ctx context.Context, selectors []cache.Selector) error {
	args := m.Called(ctx, selectors)
	return args.Error(0)
}

func (m *mockResponseCache) DeleteExpiredCacheEntry(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func newTestHandler(responseCache cache.ResponseCache) *CacheHandler {
	return NewCacheHandler(responseCache, nil, zap.NewNop())
}

func postInvalidate(handler *CacheHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Invalidate(rec, req)
	return rec
}

func TestInvalidate_Success(t *testing.T) {
	// Arrange
	mockCache := new(mockResponseCache)
	mockCache.On("Invalidate", mock.Anything, []cache.Selector{{Typename: "User", ID: "1"}}).Return(nil)
	handler := newTestHandler(mockCache)

	// Act
	rec := postInvalidate(handler, `{"selectors":[{"typename":"User","id":"1"}]}`)

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	mockCache.AssertExpectations(t)
}

func TestInvalidate_RejectsMalformedJSON(t *testing.T) {
	handler := newTestHandler(new(mockResponseCache))

	rec := postInvalidate(handler, `{"selectors":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid JSON")
}

func TestInvalidate_RejectsEmptySelectors(t *testing.T) {
	mockCache := new(mockResponseCache)
	handler := newTestHandler(mockCache)

	rec := postInvalidate(handler, `{"selectors":[]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockCache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

func TestInvalidate_RejectsSelectorWithoutTypename(t *testing.T) {
	handler := newTestHandler(new(mockResponseCache))

	rec := postInvalidate(handler, `{"selectors":[{"id":"1"}]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvalidate_StoreFailureIsBadGateway(t *testing.T) {
	mockCache := new(mockResponseCache)
	mockCache.On("Invalidate", mock.Anything, mock.Anything).Return(errors.New("page delete failed"))
	handler := newTestHandler(mockCache)

	rec := postInvalidate(handler, `{"selectors":[{"typename":"User"}]}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "retry is safe")
}

func TestSweep_Success(t *testing.T) {
	mockCache := new(mockResponseCache)
	mockCache.On("DeleteExpiredCacheEntry", mock.Anything).Return(nil)
	handler := newTestHandler(mockCache)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cache/sweep", nil)
	rec := httptest.NewRecorder()
	handler.Sweep(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockCache.AssertExpectations(t)
}

func TestSweep_StoreFailureIsBadGateway(t *testing.T) {
	mockCache := new(mockResponseCache)
	mockCache.On("DeleteExpiredCacheEntry", mock.Anything).Return(errors.New("index unavailable"))
	handler := newTestHandler(mockCache)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cache/sweep", nil)
	rec := httptest.NewRecorder()
	handler.Sweep(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func getEntry(handler *CacheHandler, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cache/entries/"+key, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("key", key)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()
	handler.GetEntry(rec, req)
	return rec
}

func TestGetEntry_Hit(t *testing.T) {
	mockCache := new(mockResponseCache)
	mockCache.On("Get", mock.Anything, "q1").Return([]byte(`{"data":1}`), true, nil)
	handler := newTestHandler(mockCache)

	rec := getEntry(handler, "q1")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, `{"data":1}`, rec.Body.String())
}

func TestGetEntry_MissIsNotFound(t *testing.T) {
	mockCache := new(mockResponseCache)
	mockCache.On("Get", mock.Anything, "absent").Return(nil, false, nil)
	handler := newTestHandler(mockCache)

	rec := getEntry(handler, "absent")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "cache miss")
}

func TestGetEntry_StoreFailureIsBadGateway(t *testing.T) {
	mockCache := new(mockResponseCache)
	mockCache.On("Get", mock.Anything, "q1").Return(nil, false, errors.New("timeout"))
	handler := newTestHandler(mockCache)

	rec := getEntry(handler, "q1")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

var _ cache.ResponseCache = (*mockResponseCache)(nil)
