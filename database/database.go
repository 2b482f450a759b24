package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	chdriver "github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"vistats/config"
	"vistats/rows"
)

// Conn is the narrow connection surface the loader needs. The production
// implementation wraps the native ClickHouse driver.
type Conn interface {
	Query(ctx context.Context, query string, args ...interface{}) (Rows, error)
	Exec(ctx context.Context, query string, args ...interface{}) error
	PrepareBatch(ctx context.Context, query string) (Batch, error)
	Close() error
}

type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Close() error
	Err() error
}

type Batch interface {
	Append(v ...interface{}) error
	Send() error
}

// LoadError reports a batch rejected by the destination table.
type LoadError struct {
	Table string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading into %s failed: %v", e.Table, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Database wraps one ClickHouse connection shared by a process.
type Database struct {
	conn Conn
}

func NewDatabase(conn Conn) *Database {
	return &Database{conn: conn}
}

// Connect opens a native-protocol connection and verifies it with a ping.
func Connect(ctx context.Context, cfg config.ClickHouseConfiguration) (*Database, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Login,
			Password: cfg.Password,
		},
		DialTimeout: 10 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to clickhouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("pinging clickhouse: %w", err)
	}
	return &Database{conn: &nativeConn{conn: conn}}, nil
}

func (db *Database) Close() error {
	return db.conn.Close()
}

// InsertWorkspaces loads workspace rows in workspaces column order.
func (db *Database) InsertWorkspaces(ctx context.Context, batch []rows.WorkspaceRow) error {
	values := make([][]interface{}, len(batch))
	for i, row := range batch {
		values[i] = row.Values()
	}
	return db.insert(ctx, rows.WorkspacesTable, rows.WorkspaceColumns, values)
}

// InsertDashboards loads dashboard rows in dashboards column order.
func (db *Database) InsertDashboards(ctx context.Context, batch []rows.DashboardRow) error {
	values := make([][]interface{}, len(batch))
	for i, row := range batch {
		values[i] = row.Values()
	}
	return db.insert(ctx, rows.DashboardsTable, rows.DashboardColumns, values)
}

// InsertWidgets loads widget rows in widgets column order.
func (db *Database) InsertWidgets(ctx context.Context, batch []rows.WidgetRow) error {
	values := make([][]interface{}, len(batch))
	for i, row := range batch {
		values[i] = row.Values()
	}
	return db.insert(ctx, rows.WidgetsTable, rows.WidgetColumns, values)
}

// InsertRoles loads role rows in roles column order.
func (db *Database) InsertRoles(ctx context.Context, batch []rows.RoleRow) error {
	values := make([][]interface{}, len(batch))
	for i, row := range batch {
		values[i] = row.Values()
	}
	return db.insert(ctx, rows.RolesTable, rows.RoleColumns, values)
}

// insert appends one all-or-nothing positional batch. Zero rows is a no-op.
func (db *Database) insert(ctx context.Context, table string, columns []string, values [][]interface{}) error {
	if len(values) == 0 {
		return nil
	}

	query := fmt.Sprintf("INSERT INTO %s (%s)", table, strings.Join(columns, ", "))
	batch, err := db.conn.PrepareBatch(ctx, query)
	if err != nil {
		return &LoadError{Table: table, Err: err}
	}

	for _, row := range values {
		if err := batch.Append(row...); err != nil {
			return &LoadError{Table: table, Err: err}
		}
	}

	if err := batch.Send(); err != nil {
		return &LoadError{Table: table, Err: err}
	}
	return nil
}

// Optimize forces a synchronous merge, collapsing rows that share a table's
// replacing key to the last-inserted version. Idempotent.
func (db *Database) Optimize(ctx context.Context, table string) error {
	if err := db.conn.Exec(ctx, fmt.Sprintf("OPTIMIZE TABLE %s FINAL", table)); err != nil {
		return fmt.Errorf("optimizing %s: %w", table, err)
	}
	return nil
}

// nativeConn adapts the ClickHouse driver connection to Conn.
type nativeConn struct {
	conn chdriver.Conn
}

func (c *nativeConn) Query(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	return c.conn.Query(ctx, query, args...)
}

func (c *nativeConn) Exec(ctx context.Context, query string, args ...interface{}) error {
	return c.conn.Exec(ctx, query, args...)
}

func (c *nativeConn) PrepareBatch(ctx context.Context, query string) (Batch, error) {
	return c.conn.PrepareBatch(ctx, query)
}

func (c *nativeConn) Close() error {
	return c.conn.Close()
}
