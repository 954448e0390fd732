package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"library-api/internal/metrics"
	"library-api/internal/models"
	"library-api/internal/repositories"
)

// UpdateBookInput changes only the non-nil fields.
type UpdateBookInput struct {
	Title     *string
	Author    *string
	ISBN      *string
	Publisher *string
	Year      *int
}

// UpdateBookCopyInput changes only the non-nil fields.
type UpdateBookCopyInput struct {
	BookID *uuid.UUID
	Status *models.BookCopyStatus
}

// BookService manages catalogue titles and their physical copies. There is no
// inventory logic: deleting a book that still has copies fails on the foreign key.
type BookService interface {
	ListBooks(ctx context.Context) ([]models.Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (*models.Book, error)
	CreateBook(ctx context.Context, book *models.Book) (*models.Book, error)
	UpdateBook(ctx context.Context, id uuid.UUID, in UpdateBookInput) (*models.Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID) error

	ListCopies(ctx context.Context) ([]models.BookCopy, error)
	ListCopiesOfBook(ctx context.Context, bookID uuid.UUID) ([]models.BookCopy, error)
	GetCopy(ctx context.Context, id uuid.UUID) (*models.BookCopy, error)
	CreateCopy(ctx context.Context, copy *models.BookCopy) (*models.BookCopy, error)
	UpdateCopy(ctx context.Context, id uuid.UUID, in UpdateBookCopyInput) (*models.BookCopy, error)
	DeleteCopy(ctx context.Context, id uuid.UUID) error
}

type bookService struct {
	db     *gorm.DB
	books  repositories.BookRepository
	copies repositories.BookCopyRepository
	log    zerolog.Logger
}

func NewBookService(db *gorm.DB, books repositories.BookRepository, copies repositories.BookCopyRepository, log zerolog.Logger) BookService {
	return &bookService{db: db, books: books, copies: copies, log: log}
}

// ─── Books ────────────────────────────────────────────────────────────────────

func (s *bookService) ListBooks(ctx context.Context) ([]models.Book, error) {
	books, err := s.books.List(s.db.WithContext(ctx))
	if err != nil {
		return nil, translateDBError(err, ErrBookNotFound)
	}
	return books, nil
}

func (s *bookService) GetBook(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	book, err := s.books.GetByID(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, translateDBError(err, ErrBookNotFound)
	}
	return book, nil
}

func (s *bookService) CreateBook(ctx context.Context, book *models.Book) (*models.Book, error) {
	book.ID = uuid.Nil
	if err := s.books.Create(s.db.WithContext(ctx), book); err != nil {
		failureEvent(s.log, err).Err(err).Str("title", book.Title).Msg("create book failed")
		return nil, translateDBError(err, ErrBookNotFound)
	}
	metrics.RecordsWrittenTotal.WithLabelValues("book", "create").Inc()
	s.log.Info().Str("book_id", book.ID.String()).Str("title", book.Title).Msg("book created")
	return book, nil
}

func (s *bookService) UpdateBook(ctx context.Context, id uuid.UUID, in UpdateBookInput) (*models.Book, error) {
	db := s.db.WithContext(ctx)
	book, err := s.books.GetByID(db, id)
	if err != nil {
		return nil, translateDBError(err, ErrBookNotFound)
	}
	if in.Title != nil {
		book.Title = *in.Title
	}
	if in.Author != nil {
		book.Author = *in.Author
	}
	if in.ISBN != nil {
		book.ISBN = in.ISBN
		if *in.ISBN == "" {
			book.ISBN = nil
		}
	}
	if in.Publisher != nil {
		book.Publisher = *in.Publisher
	}
	if in.Year != nil {
		book.Year = *in.Year
	}
	if err := s.books.Update(db, book); err != nil {
		failureEvent(s.log, err).Err(err).Str("book_id", id.String()).Msg("update book failed")
		return nil, translateDBError(err, ErrBookNotFound)
	}
	metrics.RecordsWrittenTotal.WithLabelValues("book", "update").Inc()
	return book, nil
}

// DeleteBook fails with ErrConstraintViolation while copies reference the book.
func (s *bookService) DeleteBook(ctx context.Context, id uuid.UUID) error {
	db := s.db.WithContext(ctx)
	if _, err := s.books.GetByID(db, id); err != nil {
		return translateDBError(err, ErrBookNotFound)
	}
	if err := s.books.Delete(db, id); err != nil {
		failureEvent(s.log, err).Err(err).Str("book_id", id.String()).Msg("delete book failed")
		return translateDBError(err, ErrBookNotFound)
	}
	metrics.RecordsWrittenTotal.WithLabelValues("book", "delete").Inc()
	s.log.Info().Str("book_id", id.String()).Msg("book deleted")
	return nil
}

// ─── Copies ───────────────────────────────────────────────────────────────────

func (s *bookService) ListCopies(ctx context.Context) ([]models.BookCopy, error) {
	copies, err := s.copies.List(s.db.WithContext(ctx))
	if err != nil {
		return nil, translateDBError(err, ErrBookCopyNotFound)
	}
	return copies, nil
}

// ListCopiesOfBook returns ErrBookNotFound for an unknown book rather than an
// empty list.
func (s *bookService) ListCopiesOfBook(ctx context.Context, bookID uuid.UUID) ([]models.BookCopy, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.books.GetByID(db, bookID); err != nil {
		return nil, translateDBError(err, ErrBookNotFound)
	}
	copies, err := s.copies.ListByBook(db, bookID)
	if err != nil {
		return nil, translateDBError(err, ErrBookCopyNotFound)
	}
	return copies, nil
}

func (s *bookService) GetCopy(ctx context.Context, id uuid.UUID) (*models.BookCopy, error) {
	copy, err := s.copies.GetByID(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, translateDBError(err, ErrBookCopyNotFound)
	}
	return copy, nil
}

// CreateCopy relies on the foreign key to reject copies of unknown books.
func (s *bookService) CreateCopy(ctx context.Context, copy *models.BookCopy) (*models.BookCopy, error) {
	copy.ID = uuid.Nil
	if err := s.copies.Create(s.db.WithContext(ctx), copy); err != nil {
		failureEvent(s.log, err).Err(err).Str("book_id", copy.BookID.String()).Msg("create book copy failed")
		return nil, translateDBError(err, ErrBookCopyNotFound)
	}
	metrics.RecordsWrittenTotal.WithLabelValues("book_copy", "create").Inc()
	s.log.Info().Str("copy_id", copy.ID.String()).Str("book_id", copy.BookID.String()).Msg("book copy created")
	return copy, nil
}

func (s *bookService) UpdateCopy(ctx context.Context, id uuid.UUID, in UpdateBookCopyInput) (*models.BookCopy, error) {
	db := s.db.WithContext(ctx)
	copy, err := s.copies.GetByID(db, id)
	if err != nil {
		return nil, translateDBError(err, ErrBookCopyNotFound)
	}
	if in.BookID != nil {
		copy.BookID = *in.BookID
	}
	if in.Status != nil {
		copy.Status = *in.Status
	}
	if err := s.copies.Update(db, copy); err != nil {
		failureEvent(s.log, err).Err(err).Str("copy_id", id.String()).Msg("update book copy failed")
		return nil, translateDBError(err, ErrBookCopyNotFound)
	}
	metrics.RecordsWrittenTotal.WithLabelValues("book_copy", "update").Inc()
	return copy, nil
}

func (s *bookService) DeleteCopy(ctx context.Context, id uuid.UUID) error {
	db := s.db.WithContext(ctx)
	if _, err := s.copies.GetByID(db, id); err != nil {
		return translateDBError(err, ErrBookCopyNotFound)
	}
	if err := s.copies.Delete(db, id); err != nil {
		failureEvent(s.log, err).Err(err).Str("copy_id", id.String()).Msg("delete book copy failed")
		return translateDBError(err, ErrBookCopyNotFound)
	}
	metrics.RecordsWrittenTotal.WithLabelValues("book_copy", "delete").Inc()
	return nil
}
