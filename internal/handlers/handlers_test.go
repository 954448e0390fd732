package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-api/internal/models"
	"library-api/internal/repositories"
	"library-api/internal/services"
	"library-api/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db := testutil.NewDB(t)
	log := zerolog.Nop()
	svc := Services{
		Users:     services.NewUserService(db, repositories.NewUserRepository(db), log),
		Books:     services.NewBookService(db, repositories.NewBookRepository(db), repositories.NewBookCopyRepository(db), log),
		Borrows:   services.NewBorrowService(db, repositories.NewBorrowRepository(db), log),
		Companies: services.NewCompanyService(db, repositories.NewCompanyRepository(db), log),
	}
	return NewRouter(log, svc, stubPinger{}, RouterOptions{AllowOrigins: []string{"*"}})
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func createClient(t *testing.T, r http.Handler, email string) models.User {
	t.Helper()
	w := do(t, r, http.MethodPost, "/clients", gin.H{
		"name":     "Ana",
		"email":    email,
		"password": "secret1",
		"client":   gin.H{"customer_type": "individual"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.User](t, w)
}

func TestLiveness(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"online"}`, w.Body.String())
}

func TestReadiness(t *testing.T) {
	log := zerolog.Nop()

	ok := NewRouter(log, Services{}, stubPinger{}, RouterOptions{})
	w := do(t, ok, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	down := NewRouter(log, Services{}, stubPinger{err: errors.New("connection refused")}, RouterOptions{})
	w = do(t, down, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode[map[string]string](t, w)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "connection refused", body["error"])
}

func TestUnknownRoute(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/nope", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"route not found"}`, w.Body.String())
}

func TestBorrowFlow_DeleteReferencedBookIsRejected(t *testing.T) {
	r := newTestRouter(t)
	client := createClient(t, r, "ana@example.com")

	w := do(t, r, http.MethodPost, "/books", gin.H{"title": "Dune", "author": "Frank Herbert"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	book := decode[models.Book](t, w)

	w = do(t, r, http.MethodPost, "/books/"+book.ID.String()+"/copies", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	bc := decode[models.BookCopy](t, w)
	assert.Equal(t, book.ID, bc.BookID)
	assert.Equal(t, models.BookCopyStatusAvailable, bc.Status)

	w = do(t, r, http.MethodPost, "/borrows", gin.H{"client_id": client.ID, "copy_id": bc.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	borrow := decode[models.Borrow](t, w)
	assert.Nil(t, borrow.ReturnedAt)

	w = do(t, r, http.MethodDelete, "/books/"+book.ID.String(), nil)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/books/"+book.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/clients/"+client.ID.String()+"/borrows", nil)
	require.Equal(t, http.StatusOK, w.Code)
	borrows := decode[[]models.Borrow](t, w)
	require.Len(t, borrows, 1)
	assert.Equal(t, borrow.ID, borrows[0].ID)
}

func TestBooks_CRUD(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/books", gin.H{"title": "Dune", "author": "Frank Herbert", "isbn": "9780441013593", "year": 1965})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Book](t, w)

	w = do(t, r, http.MethodGet, "/books/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.Book](t, w)
	assert.Equal(t, "Dune", got.Title)
	require.NotNil(t, got.ISBN)
	assert.Equal(t, "9780441013593", *got.ISBN)

	w = do(t, r, http.MethodPatch, "/books/"+created.ID.String(), gin.H{"publisher": "Chilton"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Chilton", decode[models.Book](t, w).Publisher)

	w = do(t, r, http.MethodGet, "/books", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Book](t, w), 1)

	w = do(t, r, http.MethodDelete, "/books/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, "/books/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBooks_BadInput(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"malformed json", http.MethodPost, "/books", `{"title":`},
		{"missing author", http.MethodPost, "/books", gin.H{"title": "Dune"}},
		{"bad id", http.MethodGet, "/books/not-a-uuid", nil},
		{"bad copy status", http.MethodPost, "/copies", gin.H{"book_id": uuid.New(), "status": "LOST"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.NotEmpty(t, decode[errorResponse](t, w).Error)
		})
	}
}

func TestCopies_UnknownBookIsConflict(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/books/"+uuid.NewString()+"/copies", nil)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/books/"+uuid.NewString()+"/copies", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
}

func TestUsers_RouteFiltersByType(t *testing.T) {
	r := newTestRouter(t)
	client := createClient(t, r, "ana@example.com")

	w := do(t, r, http.MethodPost, "/employees", gin.H{
		"name":     "Bruno",
		"email":    "bruno@example.com",
		"password": "secret1",
		"employee": gin.H{"role": "librarian"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	employee := decode[models.User](t, w)
	assert.Equal(t, models.UserTypeEmployee, employee.UserType)

	w = do(t, r, http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.User](t, w), 2)

	w = do(t, r, http.MethodGet, "/clients", nil)
	require.Equal(t, http.StatusOK, w.Code)
	clients := decode[[]models.User](t, w)
	require.Len(t, clients, 1)
	assert.Equal(t, client.ID, clients[0].ID)

	w = do(t, r, http.MethodGet, "/clients/"+employee.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, "/clients", gin.H{
		"name":      "Carla",
		"email":     "carla@example.com",
		"password":  "secret1",
		"user_type": "employee",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUsers_PasswordNeverReturned(t *testing.T) {
	r := newTestRouter(t)
	client := createClient(t, r, "ana@example.com")

	w := do(t, r, http.MethodGet, "/users/"+client.ID.String(), nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "password_hash")
	assert.NotContains(t, body, "PasswordHash")
}

func TestUsers_DuplicateEmailIsConflict(t *testing.T) {
	r := newTestRouter(t)
	createClient(t, r, "ana@example.com")

	w := do(t, r, http.MethodPost, "/clients", gin.H{
		"name":     "Ana Two",
		"email":    "ana@example.com",
		"password": "secret1",
	})

	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestUsers_UpdateAndDelete(t *testing.T) {
	r := newTestRouter(t)
	client := createClient(t, r, "ana@example.com")
	path := "/clients/" + client.ID.String()

	w := do(t, r, http.MethodPut, path, gin.H{"name": "Ana Maria", "client": gin.H{"address": "Rua B, 2"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.User](t, w)
	assert.Equal(t, "Ana Maria", updated.Name)
	require.NotNil(t, updated.Client)
	assert.Equal(t, "Rua B, 2", updated.Client.Address)

	w = do(t, r, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBorrows_UnknownReferencesAreConflict(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/borrows", gin.H{"client_id": uuid.New(), "copy_id": uuid.New()})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/borrows/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompanies(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/companies", gin.H{
		"cnpj":          "11.222.333/0001-81",
		"legal_name":    "Livraria Central Ltda",
		"contact_phone": "(11) 98765-4321",
		"contact_email": "contato@livraria.com.br",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	company := decode[models.Company](t, w)
	assert.Equal(t, "11222333000181", company.CNPJ)

	w = do(t, r, http.MethodGet, "/companies/cnpj/11222333000181", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, company.ID, decode[models.Company](t, w).ID)

	w = do(t, r, http.MethodPost, "/companies", gin.H{"cnpj": "11222333000181", "legal_name": "Outra"})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, services.ErrDuplicateCNPJ.Error(), decode[errorResponse](t, w).Error)

	w = do(t, r, http.MethodPost, "/companies", gin.H{"cnpj": "123", "legal_name": "Outra"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[errorResponse](t, w).Error, "cnpj")

	w = do(t, r, http.MethodPatch, "/companies/"+company.ID.String(), gin.H{"trade_name": "Central"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Central", decode[models.Company](t, w).TradeName)

	w = do(t, r, http.MethodDelete, "/companies/"+company.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

type failingBooks struct{ services.BookService }

func (failingBooks) ListBooks(context.Context) ([]models.Book, error) {
	return nil, errors.New("disk on fire")
}

func TestUnexpectedErrorIsHidden(t *testing.T) {
	r := NewRouter(zerolog.Nop(), Services{Books: failingBooks{}}, stubPinger{}, RouterOptions{})

	w := do(t, r, http.MethodGet, "/books", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func createCopy(t *testing.T, r http.Handler) models.BookCopy {
	t.Helper()
	w := do(t, r, http.MethodPost, "/books", gin.H{"title": "Dune", "author": "Frank Herbert"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	book := decode[models.Book](t, w)

	w = do(t, r, http.MethodPost, "/copies", gin.H{"book_id": book.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.BookCopy](t, w)
}

func TestCopies_CRUD(t *testing.T) {
	r := newTestRouter(t)
	bc := createCopy(t, r)
	path := "/copies/" + bc.ID.String()

	w := do(t, r, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.BookCopyStatusAvailable, decode[models.BookCopy](t, w).Status)

	w = do(t, r, http.MethodPut, path, gin.H{"status": "CHECKED_OUT"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.BookCopyStatusCheckedOut, decode[models.BookCopy](t, w).Status)

	w = do(t, r, http.MethodPatch, path, gin.H{"status": "AVAILABLE"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.BookCopyStatusAvailable, decode[models.BookCopy](t, w).Status)

	w = do(t, r, http.MethodGet, "/copies", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.BookCopy](t, w), 1)

	w = do(t, r, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBorrows_CRUD(t *testing.T) {
	r := newTestRouter(t)
	client := createClient(t, r, "ana@example.com")
	bc := createCopy(t, r)

	w := do(t, r, http.MethodPost, "/borrows", gin.H{"client_id": client.ID, "copy_id": bc.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	borrow := decode[models.Borrow](t, w)
	path := "/borrows/" + borrow.ID.String()

	w = do(t, r, http.MethodPut, path, gin.H{"returned_at": "2025-01-02T00:00:00Z"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.Borrow](t, w)
	require.NotNil(t, updated.ReturnedAt)
	assert.Equal(t, 2025, updated.ReturnedAt.Year())

	w = do(t, r, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, decode[models.Borrow](t, w).ReturnedAt)

	w = do(t, r, http.MethodGet, "/borrows", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Borrow](t, w), 1)

	w = do(t, r, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBorrows_UpdateWithNullClearsField(t *testing.T) {
	r := newTestRouter(t)
	client := createClient(t, r, "ana@example.com")
	bc := createCopy(t, r)

	w := do(t, r, http.MethodPost, "/employees", gin.H{
		"name":     "Bruno",
		"email":    "bruno@example.com",
		"password": "secret1",
		"employee": gin.H{"role": "librarian"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	employee := decode[models.User](t, w)

	w = do(t, r, http.MethodPost, "/borrows", gin.H{
		"client_id":   client.ID,
		"copy_id":     bc.ID,
		"employee_id": employee.ID,
		"returned_at": "2025-01-02T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	path := "/borrows/" + decode[models.Borrow](t, w).ID.String()

	// A patch that leaves the fields out keeps them.
	w = do(t, r, http.MethodPatch, path, gin.H{"borrowed_at": "2025-01-01T00:00:00Z"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	kept := decode[models.Borrow](t, w)
	assert.NotNil(t, kept.ReturnedAt)
	assert.NotNil(t, kept.EmployeeID)

	w = do(t, r, http.MethodPut, path, `{"returned_at":null,"employee_id":null}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cleared := decode[models.Borrow](t, w)
	assert.Nil(t, cleared.ReturnedAt)
	assert.Nil(t, cleared.EmployeeID)

	w = do(t, r, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.Borrow](t, w)
	assert.Nil(t, got.ReturnedAt)
	assert.Nil(t, got.EmployeeID)

	w = do(t, r, http.MethodPatch, path, `{"returned_at":"soon"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
