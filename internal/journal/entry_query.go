package journal

import (
	"time"

	"gorm.io/gorm"
)

type EntryQuery struct {
	Query[Entry]
	callID string
	unitID string
	kind   string
	after  time.Time
}

func NewEntryQuery(db *gorm.DB) *EntryQuery {
	return &EntryQuery{
		Query: Query[Entry]{
			db:     db,
			limit:  100,
			offset: 0,
			order:  "created_at DESC, id DESC",
		},
	}
}

func (q *EntryQuery) Order(s string) *EntryQuery {
	q.order = s
	return q
}

func (q *EntryQuery) Limit(n int) *EntryQuery {
	q.limit = n
	return q
}

func (q *EntryQuery) Offset(n int) *EntryQuery {
	q.offset = n
	return q
}

func (q *EntryQuery) Call(id string) *EntryQuery {
	q.callID = id
	return q
}

func (q *EntryQuery) Unit(id string) *EntryQuery {
	q.unitID = id
	return q
}

func (q *EntryQuery) Kind(kind string) *EntryQuery {
	q.kind = kind
	return q
}

func (q *EntryQuery) After(t time.Time) *EntryQuery {
	q.after = t
	return q
}

func (q *EntryQuery) where() *gorm.DB {
	tx := q.db

	if q.callID != "" {
		tx = tx.Where("call_id = ?", q.callID)
	}

	if q.unitID != "" {
		tx = tx.Where("unit_id = ?", q.unitID)
	}

	if q.kind != "" {
		tx = tx.Where("kind = ?", q.kind)
	}

	if !q.after.IsZero() {
		tx = tx.Where("created_at > ?", q.after)
	}

	return tx
}

func (q *EntryQuery) Get() []*Entry {
	return q.get(q.where().Model(&Entry{}))
}

func (q *EntryQuery) One() *Entry {
	return q.one(q.where().Model(&Entry{}))
}

func (q *EntryQuery) Count() int64 {
	return q.count(q.where().Model(&Entry{}))
}
