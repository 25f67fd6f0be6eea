package journal

import (
	"errors"

	"gorm.io/gorm"
)

type Query[T any] struct {
	db     *gorm.DB
	limit  int
	offset int
	order  string
}

func (q *Query[T]) get(tx *gorm.DB) []*T {
	var res []*T

	if q.order != "" {
		tx = tx.Order(q.order)
	}

	if q.limit > 0 {
		tx = tx.Limit(q.limit)
	}

	if q.offset > 0 {
		tx = tx.Offset(q.offset)
	}

	err := tx.Find(&res).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}

	return res
}

func (q *Query[T]) one(tx *gorm.DB) *T {
	res := new(T)

	err := tx.Take(res).Error

	if err != nil {
		return nil
	}

	return res
}

func (q *Query[T]) count(tx *gorm.DB) int64 {
	var n int64

	if err := tx.Count(&n).Error; err != nil {
		return 0
	}

	return n
}
