package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// LogFields flattens err into structured log fields: the typed code, the
// unwrap chain and, for postgres failures, the server diagnostics. Empty
// values are left out.
func LogFields(err error) map[string]any {
	if err == nil {
		return nil
	}
	fields := map[string]any{"error": err.Error()}

	if te := As(err); te != nil {
		fields["error_code"] = string(te.Code())
		if details, ok := te.Details().(map[string]any); ok {
			if step, ok := details["step"]; ok {
				fields["booking_step"] = step
			}
		}
	}

	var chain []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		chain = append(chain, fmt.Sprintf("%T: %v", e, e))
	}
	if len(chain) > 1 {
		fields["error_chain"] = chain
	}

	for k, v := range postgresFields(err) {
		if v != "" {
			fields[k] = v
		}
	}
	return fields
}

func postgresFields(err error) map[string]string {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return map[string]string{
			"pg_code":       pgxErr.Code,
			"pg_constraint": pgxErr.ConstraintName,
			"pg_table":      pgxErr.TableName,
			"pg_column":     pgxErr.ColumnName,
			"pg_detail":     pgxErr.Detail,
			"pg_message":    pgxErr.Message,
		}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return map[string]string{
			"pg_code":       string(pqErr.Code),
			"pg_constraint": pqErr.Constraint,
			"pg_table":      pqErr.Table,
			"pg_column":     pqErr.Column,
			"pg_detail":     pqErr.Detail,
			"pg_message":    pqErr.Message,
		}
	}
	return nil
}
