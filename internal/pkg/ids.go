package pkg

import (
	"errors"
	"strings"

	"github.com/oklog/ulid/v2"
)

var ErrInvalidID = errors.New("formato de ID invalido")

func NewID() ulid.ULID {
	return ulid.Make()
}

func ParseID(s string) (ulid.ULID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ulid.ULID{}, ErrInvalidID
	}
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return ulid.ULID{}, ErrInvalidID
	}
	return id, nil
}

// ParseOptionalID aceita nil ou string vazia como ausencia de valor.
func ParseOptionalID(s *string) (*ulid.ULID, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	id, err := ParseID(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func IsZeroID(id ulid.ULID) bool {
	return id == ulid.ULID{}
}

func IDString(id *ulid.ULID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
