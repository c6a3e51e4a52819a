package infrastructure

import (
	"context"

	"Kindfund/internal/domain/donation"

	"gorm.io/gorm"
)

type txKey struct{}

type TxManager struct {
	DB *gorm.DB
}

func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{DB: db}
}

func (m *TxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn devolve a transacao presente no ctx ou a conexao padrao.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// counted filtra doacoes que entram nos agregados.
func counted(db *gorm.DB) *gorm.DB {
	return db.Where("status = ? AND is_refunded = ?", string(donation.StatusCompleted), false)
}
