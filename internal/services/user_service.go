package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"library-api/internal/metrics"
	"library-api/internal/models"
	"library-api/internal/repositories"
)

// CreateUserInput carries a new user and the role-specific profile matching
// UserType. Client may be omitted for clients; Employee is required for
// employees.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	UserType models.UserType
	Client   *models.Client
	Employee *models.Employee
}

// UpdateUserInput changes only the non-nil fields.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	UserType *models.UserType

	CustomerType *string
	Address      *string
	Role         *string
}

// UserService manages users together with their client or employee profile.
// kind restricts an operation to one user type; "" accepts any.
type UserService interface {
	List(ctx context.Context, kind models.UserType) ([]models.User, error)
	Get(ctx context.Context, kind models.UserType, id uuid.UUID) (*models.User, error)
	Create(ctx context.Context, in CreateUserInput) (*models.User, error)
	Update(ctx context.Context, kind models.UserType, id uuid.UUID, in UpdateUserInput) (*models.User, error)
	Delete(ctx context.Context, kind models.UserType, id uuid.UUID) error
}

type userService struct {
	db    *gorm.DB
	users repositories.UserRepository
	log   zerolog.Logger
}

func NewUserService(db *gorm.DB, users repositories.UserRepository, log zerolog.Logger) UserService {
	return &userService{db: db, users: users, log: log}
}

func (s *userService) List(ctx context.Context, kind models.UserType) ([]models.User, error) {
	users, err := s.users.List(s.db.WithContext(ctx), kind)
	if err != nil {
		return nil, translateDBError(err, ErrUserNotFound)
	}
	return users, nil
}

func (s *userService) Get(ctx context.Context, kind models.UserType, id uuid.UUID) (*models.User, error) {
	return s.load(s.db.WithContext(ctx), kind, id)
}

func (s *userService) load(db *gorm.DB, kind models.UserType, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(db, id)
	if err != nil {
		return nil, translateDBError(err, ErrUserNotFound)
	}
	if kind != "" && user.UserType != kind {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Create inserts the user row and its role row in one transaction.
func (s *userService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if !in.UserType.Valid() {
		return nil, invalidInput("user_type must be one of: client employee")
	}
	switch in.UserType {
	case models.UserTypeClient:
		if in.Employee != nil {
			return nil, invalidInput("a client cannot carry an employee profile")
		}
		if in.Client == nil {
			in.Client = &models.Client{}
		}
	case models.UserTypeEmployee:
		if in.Client != nil {
			return nil, invalidInput("an employee cannot carry a client profile")
		}
		if in.Employee == nil || in.Employee.Role == "" {
			return nil, invalidInput("employee role is required")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, invalidInput("password: %v", err)
	}

	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		UserType:     in.UserType,
		Client:       in.Client,
		Employee:     in.Employee,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.users.Create(tx, user); err != nil {
			return err
		}
		return s.users.CreateProfile(tx, user)
	})
	if err != nil {
		failureEvent(s.log, err).Err(err).Str("email", in.Email).Msg("create user failed")
		return nil, translateDBError(err, ErrUserNotFound)
	}

	metrics.RecordsWrittenTotal.WithLabelValues("user", "create").Inc()
	s.log.Info().Str("user_id", user.ID.String()).Str("user_type", string(user.UserType)).Msg("user created")
	return user, nil
}

func (s *userService) Update(ctx context.Context, kind models.UserType, id uuid.UUID, in UpdateUserInput) (*models.User, error) {
	var updated *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.load(tx, kind, id)
		if err != nil {
			return err
		}
		if err := applyUserUpdate(user, in); err != nil {
			return err
		}
		if err := s.users.Update(tx, user); err != nil {
			return err
		}
		if err := s.users.UpdateProfile(tx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		if isServiceError(err) {
			return nil, err
		}
		failureEvent(s.log, err).Err(err).Str("user_id", id.String()).Msg("update user failed")
		return nil, translateDBError(err, ErrUserNotFound)
	}

	metrics.RecordsWrittenTotal.WithLabelValues("user", "update").Inc()
	return updated, nil
}

func applyUserUpdate(user *models.User, in UpdateUserInput) error {
	if in.UserType != nil && *in.UserType != user.UserType {
		return invalidInput("user_type cannot be changed")
	}
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return invalidInput("password: %v", err)
		}
		user.PasswordHash = string(hash)
	}

	switch user.UserType {
	case models.UserTypeClient:
		if in.Role != nil {
			return invalidInput("role applies to employees only")
		}
		if user.Client == nil {
			user.Client = &models.Client{UserID: user.ID}
		}
		if in.CustomerType != nil {
			user.Client.CustomerType = *in.CustomerType
		}
		if in.Address != nil {
			user.Client.Address = *in.Address
		}
	case models.UserTypeEmployee:
		if in.CustomerType != nil || in.Address != nil {
			return invalidInput("customer_type and address apply to clients only")
		}
		if user.Employee == nil {
			user.Employee = &models.Employee{UserID: user.ID}
		}
		if in.Role != nil {
			if *in.Role == "" {
				return invalidInput("employee role is required")
			}
			user.Employee.Role = *in.Role
		}
	}
	return nil
}

// Delete removes the role row and then the user. A client still referenced by
// borrows is a constraint violation and nothing is deleted.
func (s *userService) Delete(ctx context.Context, kind models.UserType, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.load(tx, kind, id)
		if err != nil {
			return err
		}
		if err := s.users.DeleteProfile(tx, user); err != nil {
			return err
		}
		return s.users.Delete(tx, user.ID)
	})
	if err != nil {
		if isServiceError(err) {
			return err
		}
		failureEvent(s.log, err).Err(err).Str("user_id", id.String()).Msg("delete user failed")
		return translateDBError(err, ErrUserNotFound)
	}

	metrics.RecordsWrittenTotal.WithLabelValues("user", "delete").Inc()
	s.log.Info().Str("user_id", id.String()).Msg("user deleted")
	return nil
}

// isServiceError reports whether err was already translated.
func isServiceError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrConstraintViolation) ||
		errors.Is(err, ErrDuplicateCNPJ)
}
