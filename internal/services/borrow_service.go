package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"library-api/internal/metrics"
	"library-api/internal/models"
	"library-api/internal/repositories"
)

// UpdateBorrowInput changes only the non-nil fields. EmployeeID and
// ReturnedAt are nullable columns and are cleared by an explicit null.
type UpdateBorrowInput struct {
	ClientID   *uuid.UUID
	CopyID     *uuid.UUID
	EmployeeID Nullable[uuid.UUID]
	BorrowedAt *time.Time
	ReturnedAt Nullable[time.Time]
}

// BorrowService records loans. It does not check copy availability, prevent
// double borrowing or touch BookCopy.Status; referential integrity is left to
// the database.
type BorrowService interface {
	List(ctx context.Context) ([]models.Borrow, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Borrow, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Borrow, error)
	Create(ctx context.Context, borrow *models.Borrow) (*models.Borrow, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateBorrowInput) (*models.Borrow, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type borrowService struct {
	db      *gorm.DB
	borrows repositories.BorrowRepository
	log     zerolog.Logger
}

func NewBorrowService(db *gorm.DB, borrows repositories.BorrowRepository, log zerolog.Logger) BorrowService {
	return &borrowService{db: db, borrows: borrows, log: log}
}

func (s *borrowService) List(ctx context.Context) ([]models.Borrow, error) {
	borrows, err := s.borrows.List(s.db.WithContext(ctx))
	if err != nil {
		return nil, translateDBError(err, ErrBorrowNotFound)
	}
	return borrows, nil
}

func (s *borrowService) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Borrow, error) {
	borrows, err := s.borrows.ListByClient(s.db.WithContext(ctx), clientID)
	if err != nil {
		return nil, translateDBError(err, ErrBorrowNotFound)
	}
	return borrows, nil
}

func (s *borrowService) Get(ctx context.Context, id uuid.UUID) (*models.Borrow, error) {
	borrow, err := s.borrows.GetByID(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, translateDBError(err, ErrBorrowNotFound)
	}
	return borrow, nil
}

func (s *borrowService) Create(ctx context.Context, borrow *models.Borrow) (*models.Borrow, error) {
	borrow.ID = uuid.Nil
	if err := s.borrows.Create(s.db.WithContext(ctx), borrow); err != nil {
		failureEvent(s.log, err).Err(err).
			Str("client_id", borrow.ClientID.String()).
			Str("copy_id", borrow.CopyID.String()).
			Msg("create borrow failed")
		return nil, translateDBError(err, ErrBorrowNotFound)
	}
	metrics.RecordsWrittenTotal.WithLabelValues("borrow", "create").Inc()
	s.log.Info().
		Str("borrow_id", borrow.ID.String()).
		Str("client_id", borrow.ClientID.String()).
		Str("copy_id", borrow.CopyID.String()).
		Msg("borrow created")
	return borrow, nil
}

func (s *borrowService) Update(ctx context.Context, id uuid.UUID, in UpdateBorrowInput) (*models.Borrow, error) {
	db := s.db.WithContext(ctx)
	borrow, err := s.borrows.GetByID(db, id)
	if err != nil {
		return nil, translateDBError(err, ErrBorrowNotFound)
	}
	if in.ClientID != nil {
		borrow.ClientID = *in.ClientID
	}
	if in.CopyID != nil {
		borrow.CopyID = *in.CopyID
	}
	in.EmployeeID.apply(&borrow.EmployeeID)
	if in.BorrowedAt != nil {
		borrow.BorrowedAt = *in.BorrowedAt
	}
	in.ReturnedAt.apply(&borrow.ReturnedAt)
	if err := s.borrows.Update(db, borrow); err != nil {
		failureEvent(s.log, err).Err(err).Str("borrow_id", id.String()).Msg("update borrow failed")
		return nil, translateDBError(err, ErrBorrowNotFound)
	}
	metrics.RecordsWrittenTotal.WithLabelValues("borrow", "update").Inc()
	return borrow, nil
}

func (s *borrowService) Delete(ctx context.Context, id uuid.UUID) error {
	db := s.db.WithContext(ctx)
	if _, err := s.borrows.GetByID(db, id); err != nil {
		return translateDBError(err, ErrBorrowNotFound)
	}
	if err := s.borrows.Delete(db, id); err != nil {
		failureEvent(s.log, err).Err(err).Str("borrow_id", id.String()).Msg("delete borrow failed")
		return translateDBError(err, ErrBorrowNotFound)
	}
	metrics.RecordsWrittenTotal.WithLabelValues("borrow", "delete").Inc()
	return nil
}
