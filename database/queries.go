package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// WidgetRef is the slice of a widget row the event producer samples from.
type WidgetRef struct {
	WorkspaceID uuid.UUID
	DashboardID uuid.UUID
	WidgetGUID  uuid.UUID
}

// WidgetRefs reads every stored widget reference.
func (db *Database) WidgetRefs(ctx context.Context) ([]WidgetRef, error) {
	result, err := db.conn.Query(ctx, "SELECT workspace_id, dashboard_id, widget_guid FROM widgets")
	if err != nil {
		return nil, fmt.Errorf("querying widgets: %w", err)
	}
	defer result.Close()

	var refs []WidgetRef
	for result.Next() {
		var ref WidgetRef
		if err := result.Scan(&ref.WorkspaceID, &ref.DashboardID, &ref.WidgetGUID); err != nil {
			return nil, fmt.Errorf("scanning widget row: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, result.Err()
}

// Usernames reads the distinct non-empty usernames from the roles table.
func (db *Database) Usernames(ctx context.Context) ([]string, error) {
	result, err := db.conn.Query(ctx, "SELECT DISTINCT username FROM roles WHERE username != ''")
	if err != nil {
		return nil, fmt.Errorf("querying roles: %w", err)
	}
	defer result.Close()

	var users []string
	for result.Next() {
		var user string
		if err := result.Scan(&user); err != nil {
			return nil, fmt.Errorf("scanning role row: %w", err)
		}
		users = append(users, user)
	}
	return users, result.Err()
}
