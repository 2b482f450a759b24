package database

import (
	"context"
	"fmt"
)

// Table definitions. Every table is a ReplacingMergeTree whose ORDER BY is
// the dedup key: re-extracting on the same capture date collapses to the
// last-inserted row after OPTIMIZE FINAL, while historical dates persist.
// The aggregates table is populated by an external writer; it is created
// here so the compaction pass always has a target.
var tableDefinitions = []string{
	`CREATE TABLE IF NOT EXISTS workspaces (
		id UUID,
		name String,
		created_at DateTime64(6, 'UTC'),
		created_by String,
		date Date
	) ENGINE = ReplacingMergeTree
	ORDER BY (id, date)`,

	`CREATE TABLE IF NOT EXISTS dashboards (
		guid UUID,
		name String,
		last_modified DateTime64(6, 'UTC'),
		last_editor_name String,
		dataset String,
		is_public Bool,
		published_on_portal Bool,
		workspace_id UUID,
		date Date
	) ENGINE = ReplacingMergeTree
	ORDER BY (workspace_id, guid, date)`,

	`CREATE TABLE IF NOT EXISTS widgets (
		workspace_id UUID,
		dashboard_id UUID,
		sheet_guid UUID,
		sheet_name String,
		sheet_position Int32,
		widget_type String,
		widget_label String,
		widget_guid UUID,
		widget_date Date
	) ENGINE = ReplacingMergeTree
	ORDER BY (workspace_id, dashboard_id, sheet_guid, widget_guid, widget_date)`,

	`CREATE TABLE IF NOT EXISTS roles (
		username String,
		id UUID,
		subject_type String,
		assigned_role String,
		workspace_id UUID,
		date Date
	) ENGINE = ReplacingMergeTree
	ORDER BY (workspace_id, id, username, date)`,

	`CREATE TABLE IF NOT EXISTS aggregates (
		id UUID,
		timestamp_utc DateTime64(6, 'UTC'),
		user String,
		workspace_id UUID,
		dashboard_id UUID,
		widget_id UUID
	) ENGINE = ReplacingMergeTree
	ORDER BY (id)`,
}

// InitializeSchema creates the destination tables if they do not exist.
func (db *Database) InitializeSchema(ctx context.Context) error {
	for _, ddl := range tableDefinitions {
		if err := db.conn.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("creating table: %w", err)
		}
	}
	return nil
}
