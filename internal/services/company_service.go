package services

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"library-api/internal/metrics"
	"library-api/internal/models"
	"library-api/internal/repositories"
)

// UpdateCompanyInput changes only the non-nil fields.
type UpdateCompanyInput struct {
	CNPJ         *string
	LegalName    *string
	TradeName    *string
	ContactPhone *string
	ContactEmail *string
	Website      *string
}

type CompanyService interface {
	List(ctx context.Context) ([]models.Company, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Company, error)
	GetByCNPJ(ctx context.Context, cnpj string) (*models.Company, error)
	Create(ctx context.Context, company *models.Company) (*models.Company, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateCompanyInput) (*models.Company, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type companyService struct {
	db        *gorm.DB
	companies repositories.CompanyRepository
	log       zerolog.Logger
}

func NewCompanyService(db *gorm.DB, companies repositories.CompanyRepository, log zerolog.Logger) CompanyService {
	return &companyService{db: db, companies: companies, log: log}
}

func (s *companyService) List(ctx context.Context) ([]models.Company, error) {
	companies, err := s.companies.List(s.db.WithContext(ctx))
	if err != nil {
		return nil, translateDBError(err, ErrCompanyNotFound)
	}
	return companies, nil
}

func (s *companyService) Get(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	company, err := s.companies.GetByID(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, translateDBError(err, ErrCompanyNotFound)
	}
	return company, nil
}

// GetByCNPJ accepts the CNPJ with or without punctuation.
func (s *companyService) GetByCNPJ(ctx context.Context, cnpj string) (*models.Company, error) {
	company, err := s.companies.GetByCNPJ(s.db.WithContext(ctx), NormalizeCNPJ(cnpj))
	if err != nil {
		return nil, translateDBError(err, ErrCompanyNotFound)
	}
	return company, nil
}

func (s *companyService) Create(ctx context.Context, company *models.Company) (*models.Company, error) {
	company.ID = uuid.Nil
	if err := checkCompany(company); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	taken, err := s.companies.CNPJTaken(db, company.CNPJ, uuid.Nil)
	if err != nil {
		return nil, translateDBError(err, ErrCompanyNotFound)
	}
	if taken {
		return nil, ErrDuplicateCNPJ
	}

	if err := s.companies.Create(db, company); err != nil {
		failureEvent(s.log, err).Err(err).Str("cnpj", company.CNPJ).Msg("create company failed")
		return nil, translateDBError(err, ErrCompanyNotFound)
	}
	metrics.RecordsWrittenTotal.WithLabelValues("company", "create").Inc()
	s.log.Info().Str("company_id", company.ID.String()).Str("cnpj", company.CNPJ).Msg("company created")
	return company, nil
}

func (s *companyService) Update(ctx context.Context, id uuid.UUID, in UpdateCompanyInput) (*models.Company, error) {
	db := s.db.WithContext(ctx)
	company, err := s.companies.GetByID(db, id)
	if err != nil {
		return nil, translateDBError(err, ErrCompanyNotFound)
	}

	if in.CNPJ != nil {
		company.CNPJ = *in.CNPJ
	}
	if in.LegalName != nil {
		company.LegalName = *in.LegalName
	}
	if in.TradeName != nil {
		company.TradeName = *in.TradeName
	}
	if in.ContactPhone != nil {
		company.ContactPhone = *in.ContactPhone
	}
	if in.ContactEmail != nil {
		company.ContactEmail = *in.ContactEmail
	}
	if in.Website != nil {
		company.Website = *in.Website
	}
	if err := checkCompany(company); err != nil {
		return nil, err
	}

	if in.CNPJ != nil {
		taken, err := s.companies.CNPJTaken(db, company.CNPJ, company.ID)
		if err != nil {
			return nil, translateDBError(err, ErrCompanyNotFound)
		}
		if taken {
			return nil, ErrDuplicateCNPJ
		}
	}

	if err := s.companies.Update(db, company); err != nil {
		failureEvent(s.log, err).Err(err).Str("company_id", id.String()).Msg("update company failed")
		return nil, translateDBError(err, ErrCompanyNotFound)
	}
	metrics.RecordsWrittenTotal.WithLabelValues("company", "update").Inc()
	return company, nil
}

func (s *companyService) Delete(ctx context.Context, id uuid.UUID) error {
	db := s.db.WithContext(ctx)
	if _, err := s.companies.GetByID(db, id); err != nil {
		return translateDBError(err, ErrCompanyNotFound)
	}
	if err := s.companies.Delete(db, id); err != nil {
		failureEvent(s.log, err).Err(err).Str("company_id", id.String()).Msg("delete company failed")
		return translateDBError(err, ErrCompanyNotFound)
	}
	metrics.RecordsWrittenTotal.WithLabelValues("company", "delete").Inc()
	s.log.Info().Str("company_id", id.String()).Msg("company deleted")
	return nil
}

// checkCompany normalises the CNPJ in place and validates the contact fields.
func checkCompany(c *models.Company) error {
	c.CNPJ = NormalizeCNPJ(c.CNPJ)
	if !ValidCNPJ(c.CNPJ) {
		return invalidInput("invalid cnpj")
	}
	if strings.TrimSpace(c.LegalName) == "" {
		return invalidInput("legal_name is required")
	}
	if c.ContactEmail != "" && !ValidEmail(c.ContactEmail) {
		return invalidInput("invalid contact_email")
	}
	if c.ContactPhone != "" && !ValidPhoneBR(c.ContactPhone) {
		return invalidInput("invalid contact_phone")
	}
	return nil
}

// NormalizeCNPJ strips everything but digits.
func NormalizeCNPJ(cnpj string) string {
	return digitsOnly(cnpj)
}

// ValidCNPJ checks the shape only: 14 digits, not all equal. Check digits are
// not verified.
func ValidCNPJ(cnpj string) bool {
	d := digitsOnly(cnpj)
	if len(d) != 14 {
		return false
	}
	return strings.Count(d, d[:1]) != len(d)
}

// ValidPhoneBR accepts a Brazilian number with area code: 10 or 11 digits.
func ValidPhoneBR(phone string) bool {
	n := len(digitsOnly(phone))
	return n == 10 || n == 11
}

var validate = validator.New()

// ValidEmail applies the same rule as the "email" binding tag.
func ValidEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
