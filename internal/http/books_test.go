package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sa-tya/shelf-manager/internal/entities"
)

func TestBooksAPI_Create(t *testing.T) {
	s := setupServer(t)
	f := s.seedCatalog(t)

	t.Run("skips entries without price or quantity", func(t *testing.T) {
		w := s.do("POST", "/api/books", body{
			"book_name_id": f.grammar.ID,
			"entries": []body{
				{"class": "3", "price": 70, "quantity": 5},
				{"class": "4"},
				{"class": "6", "quantity": 2},
			},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		created := decode[[]entities.BookEntry](t, w)
		require.Len(t, created, 2)
		assert.Equal(t, "3", created[0].Class)
		assert.Equal(t, 70.0, created[0].Price)
		assert.Equal(t, "6", created[1].Class)
		assert.Equal(t, 2, created[1].Quantity)
	})

	t.Run("all entries empty", func(t *testing.T) {
		w := s.do("POST", "/api/books", body{
			"book_name_id": f.grammar.ID,
			"entries":      []body{{"class": "7"}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "At least one class needs a price or quantity")
	})

	t.Run("invalid class", func(t *testing.T) {
		w := s.do("POST", "/api/books", body{
			"book_name_id": f.grammar.ID,
			"entries":      []body{{"class": "Grade 9", "price": 10}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid class")
	})

	t.Run("duplicate class", func(t *testing.T) {
		w := s.do("POST", "/api/books", body{
			"book_name_id": f.grammar.ID,
			"entries":      []body{{"class": "8", "price": 10}, {"class": "8", "price": 12}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Duplicate class 8")
	})

	t.Run("unknown title", func(t *testing.T) {
		w := s.do("POST", "/api/books", body{
			"book_name_id": 9999,
			"entries":      []body{{"class": "1", "price": 10}},
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Book not found")
	})

	t.Run("missing entries", func(t *testing.T) {
		w := s.do("POST", "/api/books", body{"book_name_id": f.grammar.ID})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBooksAPI_ListUpdateDelete(t *testing.T) {
	s := setupServer(t)
	s.seedCatalog(t)

	w := s.do("GET", "/api/books", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]entities.BookEntry](t, w)
	require.Len(t, list, 3)
	for _, e := range list {
		assert.NotEmpty(t, e.BookName)
		assert.NotEmpty(t, e.SubjectName)
		assert.Equal(t, "Oxford", e.PublicationName)
	}

	entry := list[0]
	w = s.do("PUT", "/api/books", body{"id": entry.ID, "class": entry.Class, "price": 99.5, "quantity": 3})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[entities.BookEntry](t, w)
	assert.Equal(t, 99.5, updated.Price)
	assert.Equal(t, 3, updated.Quantity)

	w = s.do("PUT", "/api/books", body{"id": 9999, "class": "1", "price": 1, "quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do("DELETE", "/api/books", body{"id": entry.ID})
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do("DELETE", "/api/books", body{"id": entry.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBooksAPI_Prices(t *testing.T) {
	s := setupServer(t)
	f := s.seedCatalog(t)

	w := s.do("GET", "/api/books/price?id="+itoa(f.maths.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"prices":{"3":120,"5":150}}`, w.Body.String())

	w = s.do("GET", "/api/books/price", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Book id is required")

	w = s.do("GET", "/api/books/price?id=9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "No prices found for the given book")
}
