package query

import (
	"Kindfund/internal/pkg"
)

// Paginate conta o total, busca a pagina pedida e converte cada linha para o tipo de dominio.
func Paginate[DB any, Domain any](
	q *Query[DB],
	pagination *pkg.PaginationParams,
	converter func(*DB) (*Domain, error),
) ([]*Domain, int64, error) {
	pagination = pkg.NormalizePagination(pagination)

	total, err := q.Count()
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*Domain{}, 0, nil
	}

	db := q.build()
	if q.orderBy != "" {
		db = db.Order(q.orderBy)
	}

	var rows []DB
	err = db.Offset(pagination.Offset()).Limit(pagination.Limit).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	items := make([]*Domain, 0, len(rows))
	for i := range rows {
		item, err := converter(&rows[i])
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}

	return items, total, nil
}
