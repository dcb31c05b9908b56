package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorDump is the log-only view of an error: its typed code, the unwrap
// chain and, when the catalog database failed, the postgres diagnostics that
// pgx reports through gorm.
type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`
	Retryable  bool   `json:"retryable"`

	Chain []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGClass      string `json:"pg_class,omitempty"`
	PGSeverity   string `json:"pg_severity,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`
}

// SQLSTATE classes that clear up on their own: connection exceptions,
// insufficient resources and operator intervention (admin shutdown).
var transientPGClasses = map[string]bool{
	"08": true,
	"53": true,
	"57": true,
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}

	if te := As(err); te != nil {
		d.Code = te.Code()
		d.Retryable = MetadataFor(te.Code()).Retryable
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		d.PGCode = pgErr.Code
		if len(pgErr.Code) >= 2 {
			d.PGClass = pgErr.Code[:2]
		}
		d.PGSeverity = pgErr.Severity
		d.PGConstraint = pgErr.ConstraintName
		d.PGTable = pgErr.TableName
		d.PGColumn = pgErr.ColumnName
		d.PGDetail = pgErr.Detail
		d.PGMessage = pgErr.Message
		d.Retryable = d.Retryable && transientPGClasses[d.PGClass]
	}

	return d
}

// Fields flattens the dump into log fields, leaving out empty postgres keys.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{
		"error":       d.TopMessage,
		"error_code":  d.Code,
		"error_chain": d.Chain,
		"retryable":   d.Retryable,
	}
	for key, value := range map[string]string{
		"pg_code":       d.PGCode,
		"pg_class":      d.PGClass,
		"pg_severity":   d.PGSeverity,
		"pg_detail":     d.PGDetail,
		"pg_message":    d.PGMessage,
		"pg_table":      d.PGTable,
		"pg_column":     d.PGColumn,
		"pg_constraint": d.PGConstraint,
	} {
		if value != "" {
			fields[key] = value
		}
	}
	return fields
}
