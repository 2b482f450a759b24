// Package rows flattens Visiology API objects into the fixed-order typed
// rows loaded into ClickHouse. Each mapping is a pure function of one wire
// record plus the capture date stamped once per extraction flow.
package rows

import (
	"time"

	"github.com/google/uuid"
)

// Destination tables and their column orders. Batch inserts rely on these
// orders matching the table definitions in the database package.

const (
	WorkspacesTable = "workspaces"
	DashboardsTable = "dashboards"
	WidgetsTable    = "widgets"
	RolesTable      = "roles"
	AggregatesTable = "aggregates"
)

var (
	WorkspaceColumns = []string{"id", "name", "created_at", "created_by", "date"}
	DashboardColumns = []string{"guid", "name", "last_modified", "last_editor_name", "dataset",
		"is_public", "published_on_portal", "workspace_id", "date"}
	WidgetColumns = []string{"workspace_id", "dashboard_id", "sheet_guid", "sheet_name",
		"sheet_position", "widget_type", "widget_label", "widget_guid", "widget_date"}
	RoleColumns = []string{"username", "id", "subject_type", "assigned_role", "workspace_id", "date"}
)

type WorkspaceRow struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	CreatedBy string
	Date      time.Time
}

func (r WorkspaceRow) Values() []interface{} {
	return []interface{}{r.ID, r.Name, r.CreatedAt, r.CreatedBy, r.Date}
}

type DashboardRow struct {
	GUID              uuid.UUID
	Name              string
	LastModified      time.Time
	LastEditorName    string
	Dataset           string
	IsPublic          bool
	PublishedOnPortal bool
	WorkspaceID       uuid.UUID
	Date              time.Time
}

func (r DashboardRow) Values() []interface{} {
	return []interface{}{r.GUID, r.Name, r.LastModified, r.LastEditorName, r.Dataset,
		r.IsPublic, r.PublishedOnPortal, r.WorkspaceID, r.Date}
}

type WidgetRow struct {
	WorkspaceID   uuid.UUID
	DashboardID   uuid.UUID
	SheetGUID     uuid.UUID
	SheetName     string
	SheetPosition int32
	WidgetType    string
	WidgetLabel   string
	WidgetGUID    uuid.UUID
	Date          time.Time
}

func (r WidgetRow) Values() []interface{} {
	return []interface{}{r.WorkspaceID, r.DashboardID, r.SheetGUID, r.SheetName,
		r.SheetPosition, r.WidgetType, r.WidgetLabel, r.WidgetGUID, r.Date}
}

type RoleRow struct {
	Username     string
	ID           uuid.UUID
	SubjectType  string
	AssignedRole string
	WorkspaceID  uuid.UUID
	Date         time.Time
}

func (r RoleRow) Values() []interface{} {
	return []interface{}{r.Username, r.ID, r.SubjectType, r.AssignedRole, r.WorkspaceID, r.Date}
}

// Row is any flattened record ready for a positional batch insert.
type Row interface {
	Values() []interface{}
}
