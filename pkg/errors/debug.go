package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// DBFields are the driver-level details of a database failure.
type DBFields struct {
	Code       string `json:"db_code,omitempty"`
	Constraint string `json:"db_constraint,omitempty"`
	Table      string `json:"db_table,omitempty"`
	Column     string `json:"db_column,omitempty"`
	Detail     string `json:"db_detail,omitempty"`
	Message    string `json:"db_message,omitempty"`
}

// ErrorDump flattens an error chain for structured logs.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Chain      []string `json:"chain,omitempty"`
	DB         DBFields `json:"db,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	d.DB = dbFields(err)
	return d
}

func dbFields(err error) DBFields {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return DBFields{
			Code:       pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return DBFields{
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}
	}

	// sqlite reports constraints only in the message: "UNIQUE constraint failed: payments.tran_id"
	msg := err.Error()
	if idx := strings.Index(msg, "constraint failed: "); idx >= 0 {
		target := strings.TrimSpace(msg[idx+len("constraint failed: "):])
		table, column, _ := strings.Cut(target, ".")
		return DBFields{Constraint: target, Table: table, Column: column, Message: msg}
	}
	return DBFields{}
}

// Fields returns the non-empty parts of the dump as log fields.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{"error": d.TopMessage}
	if d.Code != "" {
		fields["error_code"] = d.Code
	}
	if len(d.Chain) > 1 {
		fields["error_chain"] = d.Chain
	}
	for key, value := range map[string]string{
		"db_code":       d.DB.Code,
		"db_constraint": d.DB.Constraint,
		"db_table":      d.DB.Table,
		"db_column":     d.DB.Column,
		"db_detail":     d.DB.Detail,
		"db_message":    d.DB.Message,
	} {
		if value != "" {
			fields[key] = value
		}
	}
	return fields
}
