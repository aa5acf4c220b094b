package models

import (
	"time"

	"github.com/salesdash/backend/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// TransactionModel is the persistence model for a sales record.
// SaleMonth duplicates the UTC month of DateOfSale so month-of-year filters
// can use an index instead of a date function.
type TransactionModel struct {
	BaseModel
	ExternalID  int64           `gorm:"not null;default:0;index"`
	Title       string          `gorm:"type:varchar(500);not null;default:''"`
	Description string          `gorm:"type:text;not null;default:''"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Category    string          `gorm:"type:varchar(100);not null;default:'';index"`
	Sold        int64           `gorm:"not null;default:0"`
	Image       string          `gorm:"type:text;not null;default:''"`
	DateOfSale  time.Time       `gorm:"not null;index"`
	SaleMonth   int             `gorm:"type:smallint;not null;index"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction
func (m *TransactionModel) ToDomain() *transaction.Transaction {
	return &transaction.Transaction{
		BaseEntity:  m.BaseModel.ToDomain(),
		ExternalID:  m.ExternalID,
		Title:       m.Title,
		Description: m.Description,
		Price:       m.Price,
		Category:    m.Category,
		Sold:        m.Sold,
		Image:       m.Image,
		DateOfSale:  m.DateOfSale.UTC(),
	}
}

// FromDomain populates the persistence model from a domain Transaction
func (m *TransactionModel) FromDomain(t *transaction.Transaction) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.ExternalID = t.ExternalID
	m.Title = t.Title
	m.Description = t.Description
	m.Price = t.Price
	m.Category = t.Category
	m.Sold = t.Sold
	m.Image = t.Image
	m.DateOfSale = t.DateOfSale.UTC()
	m.SaleMonth = int(t.SaleMonth())
}

// TransactionModelFromDomain creates a new persistence model from a domain Transaction
func TransactionModelFromDomain(t *transaction.Transaction) *TransactionModel {
	m := &TransactionModel{}
	m.FromDomain(t)
	return m
}
