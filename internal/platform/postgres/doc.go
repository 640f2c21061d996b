// Package postgres implements the internal/store interfaces on PostgreSQL,
// including the embedded schema migrations. It owns query execution, row
// scanning, and the translation of driver errors into the store package's
// error taxonomy.
package postgres
