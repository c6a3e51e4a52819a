package shared

import (
	"context"

	"github.com/oklog/ulid/v2"
)

type UserChecker interface {
	Exists(ctx context.Context, userID ulid.ULID) error
}

// TxManager executa fn dentro de uma transacao. Repositorios chamados com o
// ctx recebido por fn participam da mesma transacao; chamadas aninhadas
// reaproveitam a transacao externa.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Role string

const (
	RoleDonor        Role = "donor"
	RoleCharityAdmin Role = "charity_admin"
	RoleAdmin        Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleDonor, RoleCharityAdmin, RoleAdmin:
		return true
	}
	return false
}

// Actor e o usuario autenticado que dispara uma operacao.
type Actor struct {
	ID   ulid.ULID
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// SystemActor e usado pelos jobs agendados e pela CLI.
var SystemActor = Actor{Role: RoleAdmin}
