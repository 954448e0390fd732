package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"library-api/internal/models"
)

// Every method takes the session or transaction to run on; nil means the
// repository's root handle.

type UserRepository interface {
	Create(db *gorm.DB, user *models.User) error
	CreateProfile(db *gorm.DB, user *models.User) error
	GetByID(db *gorm.DB, id uuid.UUID) (*models.User, error)
	List(db *gorm.DB, userType models.UserType) ([]models.User, error)
	Update(db *gorm.DB, user *models.User) error
	UpdateProfile(db *gorm.DB, user *models.User) error
	DeleteProfile(db *gorm.DB, user *models.User) error
	Delete(db *gorm.DB, id uuid.UUID) error
}

type BookRepository interface {
	Create(db *gorm.DB, book *models.Book) error
	List(db *gorm.DB) ([]models.Book, error)
	GetByID(db *gorm.DB, id uuid.UUID) (*models.Book, error)
	Update(db *gorm.DB, book *models.Book) error
	Delete(db *gorm.DB, id uuid.UUID) error
}

type BookCopyRepository interface {
	Create(db *gorm.DB, copy *models.BookCopy) error
	List(db *gorm.DB) ([]models.BookCopy, error)
	ListByBook(db *gorm.DB, bookID uuid.UUID) ([]models.BookCopy, error)
	GetByID(db *gorm.DB, id uuid.UUID) (*models.BookCopy, error)
	Update(db *gorm.DB, copy *models.BookCopy) error
	Delete(db *gorm.DB, id uuid.UUID) error
}

type BorrowRepository interface {
	Create(db *gorm.DB, borrow *models.Borrow) error
	List(db *gorm.DB) ([]models.Borrow, error)
	ListByClient(db *gorm.DB, clientID uuid.UUID) ([]models.Borrow, error)
	GetByID(db *gorm.DB, id uuid.UUID) (*models.Borrow, error)
	Update(db *gorm.DB, borrow *models.Borrow) error
	Delete(db *gorm.DB, id uuid.UUID) error
}

type CompanyRepository interface {
	Create(db *gorm.DB, company *models.Company) error
	List(db *gorm.DB) ([]models.Company, error)
	GetByID(db *gorm.DB, id uuid.UUID) (*models.Company, error)
	GetByCNPJ(db *gorm.DB, cnpj string) (*models.Company, error)
	CNPJTaken(db *gorm.DB, cnpj string, excludeID uuid.UUID) (bool, error)
	Update(db *gorm.DB, company *models.Company) error
	Delete(db *gorm.DB, id uuid.UUID) error
}

// concrete implementations

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts the base row only; the role row follows via CreateProfile.
func (r *userRepository) Create(db *gorm.DB, user *models.User) error {
	if db == nil {
		db = r.db
	}
	return db.Omit(clause.Associations).Create(user).Error
}

func (r *userRepository) CreateProfile(db *gorm.DB, user *models.User) error {
	if db == nil {
		db = r.db
	}
	switch {
	case user.Client != nil:
		user.Client.UserID = user.ID
		return db.Create(user.Client).Error
	case user.Employee != nil:
		user.Employee.UserID = user.ID
		return db.Create(user.Employee).Error
	}
	return nil
}

func (r *userRepository) GetByID(db *gorm.DB, id uuid.UUID) (*models.User, error) {
	if db == nil {
		db = r.db
	}
	var user models.User
	err := db.Preload("Client").Preload("Employee").First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(db *gorm.DB, userType models.UserType) ([]models.User, error) {
	if db == nil {
		db = r.db
	}
	q := db.Preload("Client").Preload("Employee").Order("created_at, id")
	if userType != "" {
		q = q.Where("user_type = ?", userType)
	}
	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Update(db *gorm.DB, user *models.User) error {
	if db == nil {
		db = r.db
	}
	return db.Omit(clause.Associations).Save(user).Error
}

func (r *userRepository) UpdateProfile(db *gorm.DB, user *models.User) error {
	if db == nil {
		db = r.db
	}
	switch {
	case user.Client != nil:
		return db.Model(user.Client).
			Where("user_id = ?", user.ID).
			Select("customer_type", "address").
			Updates(user.Client).Error
	case user.Employee != nil:
		return db.Model(user.Employee).
			Where("user_id = ?", user.ID).
			Select("role").
			Updates(user.Employee).Error
	}
	return nil
}

func (r *userRepository) DeleteProfile(db *gorm.DB, user *models.User) error {
	if db == nil {
		db = r.db
	}
	switch user.UserType {
	case models.UserTypeClient:
		return db.Delete(&models.Client{}, "user_id = ?", user.ID).Error
	case models.UserTypeEmployee:
		return db.Delete(&models.Employee{}, "user_id = ?", user.ID).Error
	}
	return nil
}

func (r *userRepository) Delete(db *gorm.DB, id uuid.UUID) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.User{}, "id = ?", id).Error
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(db *gorm.DB, book *models.Book) error {
	if db == nil {
		db = r.db
	}
	return db.Create(book).Error
}

func (r *bookRepository) List(db *gorm.DB) ([]models.Book, error) {
	if db == nil {
		db = r.db
	}
	var books []models.Book
	if err := db.Order("created_at, id").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *bookRepository) GetByID(db *gorm.DB, id uuid.UUID) (*models.Book, error) {
	if db == nil {
		db = r.db
	}
	var book models.Book
	if err := db.First(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) Update(db *gorm.DB, book *models.Book) error {
	if db == nil {
		db = r.db
	}
	return db.Save(book).Error
}

func (r *bookRepository) Delete(db *gorm.DB, id uuid.UUID) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.Book{}, "id = ?", id).Error
}

type bookCopyRepository struct {
	db *gorm.DB
}

func NewBookCopyRepository(db *gorm.DB) BookCopyRepository {
	return &bookCopyRepository{db: db}
}

func (r *bookCopyRepository) Create(db *gorm.DB, copy *models.BookCopy) error {
	if db == nil {
		db = r.db
	}
	return db.Omit(clause.Associations).Create(copy).Error
}

func (r *bookCopyRepository) List(db *gorm.DB) ([]models.BookCopy, error) {
	if db == nil {
		db = r.db
	}
	var copies []models.BookCopy
	if err := db.Order("created_at, id").Find(&copies).Error; err != nil {
		return nil, err
	}
	return copies, nil
}

func (r *bookCopyRepository) ListByBook(db *gorm.DB, bookID uuid.UUID) ([]models.BookCopy, error) {
	if db == nil {
		db = r.db
	}
	var copies []models.BookCopy
	if err := db.Where("book_id = ?", bookID).Order("created_at, id").Find(&copies).Error; err != nil {
		return nil, err
	}
	return copies, nil
}

func (r *bookCopyRepository) GetByID(db *gorm.DB, id uuid.UUID) (*models.BookCopy, error) {
	if db == nil {
		db = r.db
	}
	var copy models.BookCopy
	if err := db.First(&copy, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &copy, nil
}

func (r *bookCopyRepository) Update(db *gorm.DB, copy *models.BookCopy) error {
	if db == nil {
		db = r.db
	}
	return db.Omit(clause.Associations).Save(copy).Error
}

func (r *bookCopyRepository) Delete(db *gorm.DB, id uuid.UUID) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.BookCopy{}, "id = ?", id).Error
}

type borrowRepository struct {
	db *gorm.DB
}

func NewBorrowRepository(db *gorm.DB) BorrowRepository {
	return &borrowRepository{db: db}
}

func (r *borrowRepository) Create(db *gorm.DB, borrow *models.Borrow) error {
	if db == nil {
		db = r.db
	}
	return db.Omit(clause.Associations).Create(borrow).Error
}

func (r *borrowRepository) List(db *gorm.DB) ([]models.Borrow, error) {
	if db == nil {
		db = r.db
	}
	var borrows []models.Borrow
	if err := db.Order("borrowed_at, id").Find(&borrows).Error; err != nil {
		return nil, err
	}
	return borrows, nil
}

func (r *borrowRepository) ListByClient(db *gorm.DB, clientID uuid.UUID) ([]models.Borrow, error) {
	if db == nil {
		db = r.db
	}
	var borrows []models.Borrow
	if err := db.Where("client_id = ?", clientID).Order("borrowed_at, id").Find(&borrows).Error; err != nil {
		return nil, err
	}
	return borrows, nil
}

func (r *borrowRepository) GetByID(db *gorm.DB, id uuid.UUID) (*models.Borrow, error) {
	if db == nil {
		db = r.db
	}
	var borrow models.Borrow
	if err := db.First(&borrow, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &borrow, nil
}

func (r *borrowRepository) Update(db *gorm.DB, borrow *models.Borrow) error {
	if db == nil {
		db = r.db
	}
	return db.Omit(clause.Associations).Save(borrow).Error
}

func (r *borrowRepository) Delete(db *gorm.DB, id uuid.UUID) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.Borrow{}, "id = ?", id).Error
}

type companyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) Create(db *gorm.DB, company *models.Company) error {
	if db == nil {
		db = r.db
	}
	return db.Create(company).Error
}

func (r *companyRepository) List(db *gorm.DB) ([]models.Company, error) {
	if db == nil {
		db = r.db
	}
	var companies []models.Company
	if err := db.Order("created_at, id").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

func (r *companyRepository) GetByID(db *gorm.DB, id uuid.UUID) (*models.Company, error) {
	if db == nil {
		db = r.db
	}
	var company models.Company
	if err := db.First(&company, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepository) GetByCNPJ(db *gorm.DB, cnpj string) (*models.Company, error) {
	if db == nil {
		db = r.db
	}
	var company models.Company
	if err := db.First(&company, "cnpj = ?", cnpj).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// CNPJTaken reports whether another company already uses cnpj.
func (r *companyRepository) CNPJTaken(db *gorm.DB, cnpj string, excludeID uuid.UUID) (bool, error) {
	if db == nil {
		db = r.db
	}
	var n int64
	err := db.Model(&models.Company{}).
		Where("cnpj = ? AND id <> ?", cnpj, excludeID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *companyRepository) Update(db *gorm.DB, company *models.Company) error {
	if db == nil {
		db = r.db
	}
	return db.Save(company).Error
}

func (r *companyRepository) Delete(db *gorm.DB, id uuid.UUID) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.Company{}, "id = ?", id).Error
}
