package model

import (
	"github.com/shopspring/decimal"
)

type Book struct {
	BookID      string          `gorm:"primaryKey;type:varchar(255)" json:"book_id"`
	ISBN        string          `gorm:"not null;type:varchar(20);unique" json:"isbn"`
	Title       string          `gorm:"not null;type:varchar(255)" json:"title"`
	Author      string          `gorm:"not null;type:varchar(100)" json:"author"`
	Price       decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
	Stock       uint            `gorm:"not null;type:int" json:"stock"`
	OrderItems  []OrderItem     `gorm:"foreignKey:BookID" json:"-"`
	BaseModel
}
