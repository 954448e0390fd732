package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserType string

const (
	UserTypeClient   UserType = "client"
	UserTypeEmployee UserType = "employee"
)

func (t UserType) Valid() bool {
	return t == UserTypeClient || t == UserTypeEmployee
}

type BookCopyStatus string

const (
	BookCopyStatusAvailable  BookCopyStatus = "AVAILABLE"
	BookCopyStatusCheckedOut BookCopyStatus = "CHECKED_OUT"
)

// User is the base row of every person known to the library. Exactly one of
// Client or Employee is set, matching UserType.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"size:128;not null" json:"name"`
	Email        string    `gorm:"size:128;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:256;not null" json:"-"`
	UserType     UserType  `gorm:"size:50;not null;index" json:"user_type"`
	Client       *Client   `gorm:"foreignKey:UserID" json:"client,omitempty"`
	Employee     *Employee `gorm:"foreignKey:UserID" json:"employee,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Client is the role row of a patron, keyed by the owning user's id.
type Client struct {
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	CustomerType string    `gorm:"size:50" json:"customer_type,omitempty"`
	Address      string    `gorm:"size:255" json:"address,omitempty"`
}

// Employee is the role row of a staff member.
type Employee struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	Role   string    `gorm:"size:100;not null" json:"role"`
}

type Book struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Author    string    `gorm:"size:255;not null" json:"author"`
	ISBN      *string   `gorm:"column:isbn;size:20;uniqueIndex" json:"isbn,omitempty"`
	Publisher string    `gorm:"size:255" json:"publisher,omitempty"`
	Year      int       `json:"year,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BookCopy struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	BookID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"book_id"`
	Book      *Book          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	Status    BookCopyStatus `gorm:"size:20;not null;index" json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Borrow links a client to the copy they took home. EmployeeID is the staff
// member who processed the loan, when known.
type Borrow struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"client_id"`
	Client     *Client    `gorm:"foreignKey:ClientID;references:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	CopyID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"copy_id"`
	Copy       *BookCopy  `gorm:"foreignKey:CopyID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	EmployeeID *uuid.UUID `gorm:"type:uuid;index" json:"employee_id,omitempty"`
	Employee   *Employee  `gorm:"foreignKey:EmployeeID;references:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	BorrowedAt time.Time  `gorm:"not null" json:"borrowed_at"`
	ReturnedAt *time.Time `json:"returned_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Company is an affiliated organisation identified by its Brazilian CNPJ,
// stored as 14 digits.
type Company struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CNPJ         string    `gorm:"column:cnpj;size:14;not null;uniqueIndex" json:"cnpj"`
	LegalName    string    `gorm:"size:255;not null" json:"legal_name"`
	TradeName    string    `gorm:"size:255" json:"trade_name,omitempty"`
	ContactPhone string    `gorm:"size:20" json:"contact_phone,omitempty"`
	ContactEmail string    `gorm:"size:255" json:"contact_email,omitempty"`
	Website      string    `gorm:"size:255" json:"website,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// All lists every entity in migration order.
func All() []any {
	return []any{&User{}, &Client{}, &Employee{}, &Book{}, &BookCopy{}, &Borrow{}, &Company{}}
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (b *Book) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (c *BookCopy) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = BookCopyStatusAvailable
	}
	return nil
}

func (b *Borrow) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.BorrowedAt.IsZero() {
		b.BorrowedAt = time.Now().UTC()
	}
	return nil
}

func (c *Company) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
