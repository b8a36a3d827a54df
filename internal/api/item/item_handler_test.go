package item

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"geostrat/internal/api"
	"geostrat/internal/api/auth"
)

// MockItemService is a mock implementation of Service.
type MockItemService struct {
	mock.Mock
}

func (m *MockItemService) Create(ctx context.Context, p Payload) (*Item, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Item), args.Error(1)
}

func (m *MockItemService) List(ctx context.Context, createdBy string) ([]Item, error) {
	args := m.Called(ctx, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Item), args.Error(1)
}

func (m *MockItemService) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Item), args.Error(1)
}

func (m *MockItemService) Update(ctx context.Context, id uuid.UUID, p Payload) (*Item, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Item), args.Error(1)
}

func (m *MockItemService) Delete(ctx context.Context, id uuid.UUID) (*Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Item), args.Error(1)
}

func (m *MockItemService) ListCreators(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func setupItemHandlerTest() (*chi.Mux, *MockItemService) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockService := new(MockItemService)
	handler := NewHandler(mockService, logger)

	r := chi.NewRouter()
	r.Get("/items", handler.ListItems)
	r.Post("/items", handler.CreateItem)
	r.Get("/items/{id}", handler.GetItem)
	r.Put("/items/{id}", handler.UpdateItem)
	r.Delete("/items/{id}", handler.DeleteItem)
	r.Get("/creators", handler.ListCreators)
	return r, mockService
}

func postJSON(t *testing.T, r http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestItemHandler_CreateItem(t *testing.T) {
	t.Run("created with confirmation envelope", func(t *testing.T) {
		r, mockService := setupItemHandlerTest()
		p := validPayload()
		expected := storedItem(p)
		mockService.On("Create", mock.Anything, p).Return(expected, nil).Once()

		w := postJSON(t, r, http.MethodPost, "/items", p)

		assert.Equal(t, http.StatusCreated, w.Code)
		resp := decodeBody(t, w)
		assert.Equal(t, "Item created", resp["message"])
		item := resp["item"].(map[string]interface{})
		assert.Equal(t, expected.ID.String(), item["id"])
		assert.Equal(t, expected.Name, item["name"])
		mockService.AssertExpectations(t)
	})

	t.Run("validation failure returns field map", func(t *testing.T) {
		r, mockService := setupItemHandlerTest()
		verr := api.NewValidationError()
		verr.Add("name", "name is required")
		verr.Add("description", "description is required")
		mockService.On("Create", mock.Anything, mock.Anything).Return(nil, verr).Once()

		w := postJSON(t, r, http.MethodPost, "/items", Payload{CreatedBy: "admin"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeBody(t, w)
		assert.Equal(t, false, resp["success"])
		fields := resp["validationErrors"].(map[string]interface{})
		assert.Equal(t, "name is required", fields["name"])
		assert.Equal(t, "description is required", fields["description"])
	})

	t.Run("referential failure shares the validation shape", func(t *testing.T) {
		r, mockService := setupItemHandlerTest()
		mockService.On("Create", mock.Anything, mock.Anything).
			Return(nil, &api.ReferentialError{Field: "created_by", Message: "referenced user does not exist"}).Once()

		w := postJSON(t, r, http.MethodPost, "/items", validPayload())

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeBody(t, w)
		fields := resp["validationErrors"].(map[string]interface{})
		assert.Equal(t, "referenced user does not exist", fields["created_by"])
	})

	t.Run("malformed JSON rejected", func(t *testing.T) {
		r, mockService := setupItemHandlerTest()

		req := httptest.NewRequest(http.MethodPost, "/items", bytes.NewBufferString(`{"name":`))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Create")
	})

	t.Run("identity cookie attributes an unattributed payload", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		mockService := new(MockItemService)
		handler := NewHandler(mockService, logger)

		p := validPayload()
		p.CreatedBy = ""
		attributed := p
		attributed.CreatedBy = "analyst"
		mockService.On("Create", mock.Anything, attributed).Return(storedItem(attributed), nil).Once()

		body, _ := json.Marshal(p)
		req := httptest.NewRequest(http.MethodPost, "/items", bytes.NewReader(body))
		req = req.WithContext(auth.ContextWithUsername(req.Context(), "analyst"))
		w := httptest.NewRecorder()
		handler.CreateItem(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		mockService.AssertExpectations(t)
	})
}

func TestItemHandler_ListItems(t *testing.T) {
	t.Run("empty store lists as empty array", func(t *testing.T) {
		r, mockService := setupItemHandlerTest()
		mockService.On("List", mock.Anything, "").Return([]Item{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/items", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("created_by query forwarded as filter", func(t *testing.T) {
		r, mockService := setupItemHandlerTest()
		items := []Item{*storedItem(validPayload())}
		mockService.On("List", mock.Anything, "admin").Return(items, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/items?created_by=admin", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var got []Item
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "admin", got[0].CreatedBy)
		mockService.AssertExpectations(t)
	})
}

func TestItemHandler_GetItem(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		r, mockService := setupItemHandlerTest()
		expected := storedItem(validPayload())
		mockService.On("Get", mock.Anything, expected.ID).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/items/"+expected.ID.String(), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var got Item
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, expected.ID, got.ID)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		r, mockService := setupItemHandlerTest()
		id := uuid.New()
		mockService.On("Get", mock.Anything, id).Return(nil, api.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/items/"+id.String(), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeBody(t, w)
		assert.Equal(t, "Item not found", resp["error"])
	})

	t.Run("unparseable id is 404 without touching the service", func(t *testing.T) {
		r, mockService := setupItemHandlerTest()

		req := httptest.NewRequest(http.MethodGet, "/items/not-a-uuid", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		mockService.AssertNotCalled(t, "Get")
	})
}

func TestItemHandler_UpdateItem(t *testing.T) {
	t.Run("updated with confirmation envelope", func(t *testing.T) {
		r, mockService := setupItemHandlerTest()
		p := validPayload()
		expected := storedItem(p)
		mockService.On("Update", mock.Anything, expected.ID, p).Return(expected, nil).Once()

		w := postJSON(t, r, http.MethodPut, "/items/"+expected.ID.String(), p)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody(t, w)
		assert.Equal(t, "Item updated", resp["message"])
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		r, mockService := setupItemHandlerTest()
		id := uuid.New()
		mockService.On("Update", mock.Anything, id, mock.Anything).Return(nil, api.ErrNotFound).Once()

		w := postJSON(t, r, http.MethodPut, "/items/"+id.String(), validPayload())

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestItemHandler_DeleteItem(t *testing.T) {
	t.Run("returns the deleted item as confirmation", func(t *testing.T) {
		r, mockService := setupItemHandlerTest()
		expected := storedItem(validPayload())
		mockService.On("Delete", mock.Anything, expected.ID).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/items/"+expected.ID.String(), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody(t, w)
		assert.Equal(t, "Item deleted", resp["message"])
		item := resp["item"].(map[string]interface{})
		assert.Equal(t, expected.ID.String(), item["id"])
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		r, mockService := setupItemHandlerTest()
		id := uuid.New()
		mockService.On("Delete", mock.Anything, id).Return(nil, api.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/items/"+id.String(), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestItemHandler_ListCreators(t *testing.T) {
	r, mockService := setupItemHandlerTest()
	mockService.On("ListCreators", mock.Anything).Return([]string{"admin", "analyst"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/creators", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["admin","analyst"]`, w.Body.String())
}

func TestItemHandler_InternalError(t *testing.T) {
	r, mockService := setupItemHandlerTest()
	mockService.On("List", mock.Anything, "").Return(nil, errors.New("pool exhausted")).Once()

	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, "Failed to process request", resp["error"])
	assert.NotContains(t, w.Body.String(), "pool exhausted")
}
