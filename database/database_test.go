package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vistats/rows"
)

type fakeConn struct {
	executed  []string
	prepared  []string
	batches   []*fakeBatch
	execErr   error
	appendErr error
	sendErr   error
	queryRows [][]interface{}
}

func (c *fakeConn) Query(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	c.executed = append(c.executed, query)
	return &fakeRows{rows: c.queryRows}, nil
}

func (c *fakeConn) Exec(ctx context.Context, query string, args ...interface{}) error {
	c.executed = append(c.executed, query)
	return c.execErr
}

func (c *fakeConn) PrepareBatch(ctx context.Context, query string) (Batch, error) {
	c.prepared = append(c.prepared, query)
	batch := &fakeBatch{appendErr: c.appendErr, sendErr: c.sendErr}
	c.batches = append(c.batches, batch)
	return batch, nil
}

func (c *fakeConn) Close() error { return nil }

type fakeBatch struct {
	rows      [][]interface{}
	sent      bool
	appendErr error
	sendErr   error
}

func (b *fakeBatch) Append(v ...interface{}) error {
	if b.appendErr != nil {
		return b.appendErr
	}
	b.rows = append(b.rows, v)
	return nil
}

func (b *fakeBatch) Send() error {
	if b.sendErr != nil {
		return b.sendErr
	}
	b.sent = true
	return nil
}

type fakeRows struct {
	rows [][]interface{}
	pos  int
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...interface{}) error {
	row := r.rows[r.pos-1]
	for i, value := range row {
		switch d := dest[i].(type) {
		case *uuid.UUID:
			*d = value.(uuid.UUID)
		case *string:
			*d = value.(string)
		}
	}
	return nil
}

func (r *fakeRows) Close() error { return nil }
func (r *fakeRows) Err() error   { return nil }

func widgetRow() rows.WidgetRow {
	return rows.WidgetRow{
		WorkspaceID:   uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		DashboardID:   uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		SheetGUID:     uuid.MustParse("33333333-3333-3333-3333-333333333333"),
		SheetName:     "S1",
		SheetPosition: 0,
		WidgetType:    "chart",
		WidgetLabel:   "Sales",
		WidgetGUID:    uuid.MustParse("44444444-4444-4444-4444-444444444444"),
		Date:          time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC),
	}
}

func TestInsertWidgets(t *testing.T) {
	conn := &fakeConn{}
	db := NewDatabase(conn)

	require.NoError(t, db.InsertWidgets(context.Background(), []rows.WidgetRow{widgetRow()}))

	require.Len(t, conn.prepared, 1)
	assert.Equal(t,
		"INSERT INTO widgets (workspace_id, dashboard_id, sheet_guid, sheet_name, sheet_position, widget_type, widget_label, widget_guid, widget_date)",
		conn.prepared[0])

	require.Len(t, conn.batches, 1)
	batch := conn.batches[0]
	assert.True(t, batch.sent)
	require.Len(t, batch.rows, 1)
	assert.Len(t, batch.rows[0], len(rows.WidgetColumns))
	assert.Equal(t, "chart", batch.rows[0][5])
}

func TestInsertZeroRowsIsNoOp(t *testing.T) {
	conn := &fakeConn{}
	db := NewDatabase(conn)

	require.NoError(t, db.InsertWorkspaces(context.Background(), nil))
	assert.Empty(t, conn.prepared, "no batch should be prepared for zero rows")
}

func TestInsertRejectionIsLoadError(t *testing.T) {
	conn := &fakeConn{appendErr: errors.New("type mismatch")}
	db := NewDatabase(conn)

	err := db.InsertWidgets(context.Background(), []rows.WidgetRow{widgetRow()})

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, rows.WidgetsTable, loadErr.Table)
}

func TestInsertSendFailureIsLoadError(t *testing.T) {
	conn := &fakeConn{sendErr: errors.New("connection reset")}
	db := NewDatabase(conn)

	err := db.InsertRoles(context.Background(), []rows.RoleRow{{}})

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, rows.RolesTable, loadErr.Table)
}

func TestOptimize(t *testing.T) {
	conn := &fakeConn{}
	db := NewDatabase(conn)

	require.NoError(t, db.Optimize(context.Background(), rows.WidgetsTable))
	require.NoError(t, db.Optimize(context.Background(), rows.WidgetsTable))

	// compaction is idempotent upstream; the loader just re-issues the merge
	assert.Equal(t, []string{"OPTIMIZE TABLE widgets FINAL", "OPTIMIZE TABLE widgets FINAL"}, conn.executed)
}

func TestWidgetRefs(t *testing.T) {
	ref := widgetRow()
	conn := &fakeConn{queryRows: [][]interface{}{
		{ref.WorkspaceID, ref.DashboardID, ref.WidgetGUID},
	}}
	db := NewDatabase(conn)

	refs, err := db.WidgetRefs(context.Background())
	require.NoError(t, err)

	require.Len(t, refs, 1)
	assert.Equal(t, ref.WorkspaceID, refs[0].WorkspaceID)
	assert.Equal(t, ref.WidgetGUID, refs[0].WidgetGUID)
	assert.Equal(t, []string{"SELECT workspace_id, dashboard_id, widget_guid FROM widgets"}, conn.executed)
}

func TestUsernames(t *testing.T) {
	conn := &fakeConn{queryRows: [][]interface{}{{"alice"}, {"bob"}}}
	db := NewDatabase(conn)

	users, err := db.Usernames(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"alice", "bob"}, users)
	assert.Equal(t, []string{"SELECT DISTINCT username FROM roles WHERE username != ''"}, conn.executed)
}
