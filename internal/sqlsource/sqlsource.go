// Package sqlsource loads nested-list columns out of a SQL data source: a
// query whose result column holds a JSON-array-per-row (possibly nested)
// string is decoded straight into an arith.Column, ready for Execute.
package sqlsource

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/denisenkom/go-mssqldb" // sqlserver driver
	_ "github.com/go-sql-driver/mysql"   // mysql driver
	_ "github.com/lib/pq"                // postgres driver
	_ "modernc.org/sqlite"               // pure-Go sqlite driver

	"vectra/internal/arith"
	vectraerrors "vectra/internal/errors"
)

// Source is an active SQL connection used to pull columns into the
// nested-list arithmetic engine. It mirrors the connection-registry shape
// this repository already used for ad hoc query execution, narrowed to the
// single "load one column" responsibility this package exists for.
type Source struct {
	driver   string
	dsn      string
	db       *sql.DB
	created  time.Time
	lastUsed time.Time
}

// driverNames maps the caller-facing database type to the registered
// database/sql driver name.
var driverNames = map[string]string{
	"sqlite":     "sqlite",
	"sqlite3":    "sqlite",
	"postgres":   "postgres",
	"postgresql": "postgres",
	"mysql":      "mysql",
	"sqlserver":  "sqlserver",
	"mssql":      "sqlserver",
}

// Open connects to dbType (sqlite, postgres, mysql, or sqlserver) at dsn.
func Open(dbType, dsn string) (*Source, error) {
	driverName, ok := driverNames[dbType]
	if !ok {
		return nil, vectraerrors.NewValidationError(fmt.Sprintf("unsupported database type %q", dbType), "", "ingest")
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlsource: failed to open %s: %w", dbType, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlsource: failed to ping %s: %w", dbType, err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	now := time.Now()
	return &Source{driver: driverName, dsn: dsn, db: db, created: now, lastUsed: now}, nil
}

// Close releases the underlying connection.
func (s *Source) Close() error {
	return s.db.Close()
}

// QueryColumn runs query and decodes the named result column — one
// JSON-array-or-scalar string per row — into a single arith.Column,
// rechunking every row's value into the shared offsets/leaf structure the
// engine operates on.
func (s *Source) QueryColumn(query, columnName string) (*arith.Column, error) {
	s.lastUsed = time.Now()

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("sqlsource: query failed: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	idx := -1
	for i, c := range cols {
		if c == columnName {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, vectraerrors.NewValidationError(fmt.Sprintf("column %q not present in result set", columnName), columnName, "ingest")
	}

	var raw []string
	values := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		switch v := values[idx].(type) {
		case []byte:
			raw = append(raw, string(v))
		case string:
			raw = append(raw, v)
		case nil:
			raw = append(raw, "null")
		default:
			raw = append(raw, fmt.Sprintf("%v", v))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return columnFromJSONRows(columnName, raw)
}
