package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Sa-tya/shelf-manager/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseIDParam_Valid(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "123"}}

	id, ok := parseIDParam(c, "id")

	assert.True(t, ok)
	assert.Equal(t, uint(123), id)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestParseIDParam_Invalid(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	id, ok := parseIDParam(c, "id")

	assert.False(t, ok)
	assert.Equal(t, uint(0), id)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid id")
}

func TestParseIDParam_Negative(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "-1"}}

	id, ok := parseIDParam(c, "id")

	assert.False(t, ok)
	assert.Equal(t, uint(0), id)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseQueryID_Valid(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/?book_id=456", nil)

	id, ok := parseQueryID(c, "book_id")

	assert.True(t, ok)
	assert.Equal(t, uint(456), id)
}

func TestParseQueryID_Missing(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)

	id, ok := parseQueryID(c, "book_id")

	assert.False(t, ok)
	assert.Equal(t, uint(0), id)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "book_id is required")
}

func TestParseOptionalQueryInt(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		want   int
		wantOK bool
	}{
		{"missing", "/", 0, true},
		{"valid", "/?session=2024", 2024, true},
		{"invalid", "/?session=next", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", tt.query, nil)

			got, ok := parseOptionalQueryInt(c, "session")

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			if !ok {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			}
		})
	}
}

func TestRespondOpError(t *testing.T) {
	t.Run("record not found is 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		respondOpError(c, lookupError(gorm.ErrRecordNotFound, "School"), "get school")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "School not found")
	})

	t.Run("other errors are 500 without details", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		respondOpError(c, lookupError(errors.New("disk I/O error"), "School"), "get school")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "internal server error")
		assert.NotContains(t, w.Body.String(), "disk")
	})
}

func TestRespondOpError_RequestError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondOpError(c, fmt.Errorf("create: %w", badRequestError("School ID already exists")), "create school")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"School ID already exists"}`, w.Body.String())
}

func TestRespondDeleted(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondDeleted(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
}

func TestBindJSON(t *testing.T) {
	registerValidators()

	type classRequest struct {
		Name  string `json:"name" binding:"required"`
		Class string `json:"class" binding:"required,classlabel"`
	}

	bind := func(body string) (*httptest.ResponseRecorder, bool) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("POST", "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		var req classRequest
		return w, bindJSON(c, &req, "Name and class are required")
	}

	t.Run("valid body", func(t *testing.T) {
		w, ok := bind(`{"name":"a","class":"LKG"}`)
		assert.True(t, ok)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing field uses the message", func(t *testing.T) {
		w, ok := bind(`{"class":"5"}`)
		require.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Name and class are required", resp.Error)
		assert.Equal(t, "validation_failed", resp.Code)
		assert.Contains(t, w.Body.String(), `"field":"name"`)
	})

	t.Run("unknown class", func(t *testing.T) {
		w, ok := bind(`{"name":"a","class":"13"}`)
		require.False(t, ok)
		assert.Contains(t, w.Body.String(), "invalid class")
	})

	t.Run("malformed json", func(t *testing.T) {
		w, ok := bind(`{"name":`)
		require.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Name and class are required")
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, requestID(c))
	})

	t.Run("generates an id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

		id := w.Header().Get(RequestIDHeader)
		assert.Len(t, id, 36)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("propagates the caller's id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "abc-123", w.Body.String())
	})
}

func TestReadOnlyMode(t *testing.T) {
	s := setupServer(t, func(cfg *RouterConfig) { cfg.ReadOnly = true })
	s.seedCatalog(t)

	w := s.do(http.MethodGet, "/api/subjects", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/subjects", body{"subid": "S9", "name": "Art"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"This action is disabled in read-only mode","read_only":true}`, w.Body.String())

	w = s.do(http.MethodDelete, "/api/schools", body{"id": 1})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/schools/SCH1/booklist/builder/save", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "This action is disabled in read-only mode", w.Body.String())

	var n int64
	require.NoError(t, s.db.DB.Model(&entities.Subject{}).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}
