// Package models holds the row shapes of the postgres schema. Column names are carried in db tags
// so repositories can collect rows with pgx.RowToStructByName.
package models

import "time"

// AuditFields are the creation and update columns shared by mutable tables.
type AuditFields struct {
	CreatedAt     time.Time `db:"created_at"`
	CreatedBy     string    `db:"created_by"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
	LastUpdatedBy string    `db:"last_updated_by"`
}
