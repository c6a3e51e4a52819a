package query

import (
	"gorm.io/gorm"
)

type Scope func(*gorm.DB) *gorm.DB

// Query monta consultas de listagem sobre uma tabela. O *gorm.DB recebido ja
// deve carregar o contexto (e a transacao, quando houver).
type Query[T any] struct {
	db      *gorm.DB
	table   string
	orderBy string
	scopes  []Scope
}

func New[T any](db *gorm.DB, table string) *Query[T] {
	return &Query[T]{
		db:     db,
		table:  table,
		scopes: make([]Scope, 0, 4),
	}
}

func (q *Query[T]) Where(query interface{}, args ...interface{}) *Query[T] {
	q.scopes = append(q.scopes, func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	})
	return q
}

// WhereIf aplica o filtro apenas quando cond for verdadeiro (filtros opcionais de listagem).
func (q *Query[T]) WhereIf(cond bool, query interface{}, args ...interface{}) *Query[T] {
	if !cond {
		return q
	}
	return q.Where(query, args...)
}

func (q *Query[T]) Order(order string) *Query[T] {
	q.orderBy = order
	return q
}

func (q *Query[T]) build() *gorm.DB {
	db := q.db.Table(q.table)
	for _, scope := range q.scopes {
		db = scope(db)
	}
	return db
}

func (q *Query[T]) Count() (int64, error) {
	var count int64
	err := q.build().Count(&count).Error
	return count, err
}

func (q *Query[T]) Find(limit int) ([]T, error) {
	var rows []T
	db := q.build()
	if q.orderBy != "" {
		db = db.Order(q.orderBy)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	err := db.Find(&rows).Error
	return rows, err
}
