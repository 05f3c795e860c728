package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"retailpos/internal/core/apperror"
)

// PostgreSQL error codes the repositories translate.
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeCheckViolation      = "23514"
	CodeLockNotAvailable    = "55P03"
)

// uniqueIndex describes a unique index: the field reported to the client
// and the column holding the duplicate value.
type uniqueIndex struct {
	field  string
	column string
}

var uniqueIndexes = map[string]uniqueIndex{
	"ux_products_unique_id": {field: "uniqueId", column: "unique_id"},
	"ux_categories_name":    {field: "name", column: "name"},
	"ux_users_email":        {field: "email", column: "email"},
	"ux_sales_number":       {field: "number", column: "number"},
	"ux_purchases_number":   {field: "number", column: "number"},
	"ux_returns_number":     {field: "number", column: "number"},
}

// TranslateError converts constraint violations into application errors.
// row is the written column map; it supplies the duplicate value when a
// unique index fires and may be nil. Any other error is returned unchanged.
func TranslateError(err error, entity string, row map[string]any) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case CodeUniqueViolation:
		idx, ok := uniqueIndexes[pgErr.ConstraintName]
		if !ok {
			idx = uniqueIndex{field: pgErr.ConstraintName}
		}
		var value string
		if v, ok := row[idx.column]; ok && v != nil {
			value = fmt.Sprint(v)
		}
		return apperror.NewDuplicate(entity, idx.field, value).WithCause(err)
	case CodeForeignKeyViolation:
		return apperror.NewConflict("referenced record does not exist or is still in use").
			WithDetail("entity", entity).
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case CodeCheckViolation:
		return apperror.NewValidation("value violates a table constraint").
			WithDetail("entity", entity).
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case CodeLockNotAvailable:
		return apperror.NewConflict(entity+" is being changed by another request, try again").
			WithDetail("entity", entity).
			WithCause(err)
	}
	return err
}
