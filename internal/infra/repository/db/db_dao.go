package db

import (
	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"gorm.io/gorm"
)

type DbDao struct {
	*gorm.DB
}

func NewDbDao(conn *gorm.DB) *DbDao {
	return &DbDao{
		DB: conn,
	}
}

// InitMigrate sets up the db schema. Idempotent.
func (d *DbDao) InitMigrate() error {
	return d.AutoMigrate(
		&model.Book{},
		&model.Order{},
		&model.OrderItem{},
	)
}
