// Package extract walks the Visiology resource hierarchy and flattens it
// into load-ready rows. Enumeration is workspace-first: scoped flows take an
// explicit workspace id, unscoped flows fan out serially over every
// workspace returned by the listing endpoint.
package extract

import (
	"context"
	"log"
	"time"

	"vistats/rows"
	"vistats/visiology"
)

// Platform is the subset of the Visiology client the walker needs.
type Platform interface {
	Workspaces(ctx context.Context) ([]visiology.Workspace, error)
	Dashboards(ctx context.Context, workspaceID string) ([]visiology.Dashboard, error)
	DashboardStructure(ctx context.Context, workspaceID, dashboardID string) (visiology.DashboardStructure, error)
	RoleMappings(ctx context.Context, workspaceID string) ([]visiology.RoleMapping, error)
}

type Extractor struct {
	platform  Platform
	hashUsers bool

	// isolateFailures trades fail-fast for per-workspace isolation: a
	// failing workspace is logged and skipped instead of aborting the flow.
	isolateFailures bool

	now func() time.Time
}

type Options struct {
	HashUsers       bool
	IsolateFailures bool
}

func NewExtractor(platform Platform, opts Options) *Extractor {
	return &Extractor{
		platform:        platform,
		hashUsers:       opts.HashUsers,
		isolateFailures: opts.IsolateFailures,
		now:             time.Now,
	}
}

// Workspaces extracts every workspace as one row.
func (e *Extractor) Workspaces(ctx context.Context) ([]rows.WorkspaceRow, error) {
	captured := rows.CaptureDate(e.now())

	workspaces, err := e.platform.Workspaces(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]rows.WorkspaceRow, 0, len(workspaces))
	for _, ws := range workspaces {
		row, err := rows.Workspace(ws, captured)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, nil
}

// Dashboards extracts the dashboards of one workspace, or of every
// workspace when workspaceID is empty.
func (e *Extractor) Dashboards(ctx context.Context, workspaceID string) ([]rows.DashboardRow, error) {
	captured := rows.CaptureDate(e.now())

	workspaceIDs, err := e.workspaceIDs(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	var result []rows.DashboardRow
	for _, ws := range workspaceIDs {
		dashboards, err := e.workspaceDashboards(ctx, ws, captured)
		if err != nil {
			if e.skippable(ws, err) {
				continue
			}
			return nil, err
		}
		result = append(result, dashboards...)
	}
	return result, nil
}

func (e *Extractor) workspaceDashboards(ctx context.Context, workspaceID string, captured time.Time) ([]rows.DashboardRow, error) {
	dashboards, err := e.platform.Dashboards(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	result := make([]rows.DashboardRow, 0, len(dashboards))
	for _, db := range dashboards {
		row, err := rows.Dashboard(db, workspaceID, captured)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, nil
}

// Widgets descends workspace -> dashboard -> sheet -> widget and emits one
// row per widget. Scoping ids narrow the walk; empty means every workspace
// and every dashboard. One structure fetch is issued per dashboard.
func (e *Extractor) Widgets(ctx context.Context, workspaceID, dashboardID string) ([]rows.WidgetRow, error) {
	captured := rows.CaptureDate(e.now())

	workspaceIDs, err := e.workspaceIDs(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	var result []rows.WidgetRow
	for _, ws := range workspaceIDs {
		widgets, err := e.workspaceWidgets(ctx, ws, dashboardID, captured)
		if err != nil {
			if e.skippable(ws, err) {
				continue
			}
			return nil, err
		}
		result = append(result, widgets...)
	}
	return result, nil
}

func (e *Extractor) workspaceWidgets(ctx context.Context, workspaceID, dashboardID string, captured time.Time) ([]rows.WidgetRow, error) {
	dashboards, err := e.platform.Dashboards(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	var result []rows.WidgetRow
	for _, db := range dashboards {
		if dashboardID != "" && db.GUID != dashboardID {
			continue
		}

		structure, err := e.platform.DashboardStructure(ctx, workspaceID, db.GUID)
		if err != nil {
			return nil, err
		}

		for _, sheet := range structure.Sheets {
			for _, widget := range sheet.Widgets {
				row, err := rows.SheetWidget(workspaceID, db.GUID, sheet, widget, captured)
				if err != nil {
					return nil, err
				}
				result = append(result, row)
			}
		}
	}
	return result, nil
}

// Roles extracts the role mappings of one workspace, or of every workspace
// when workspaceID is empty. Entries with empty usernames are kept; filtering
// is a consumer concern.
func (e *Extractor) Roles(ctx context.Context, workspaceID string) ([]rows.RoleRow, error) {
	captured := rows.CaptureDate(e.now())

	workspaceIDs, err := e.workspaceIDs(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	var result []rows.RoleRow
	for _, ws := range workspaceIDs {
		roles, err := e.workspaceRoles(ctx, ws, captured)
		if err != nil {
			if e.skippable(ws, err) {
				continue
			}
			return nil, err
		}
		result = append(result, roles...)
	}
	return result, nil
}

func (e *Extractor) workspaceRoles(ctx context.Context, workspaceID string, captured time.Time) ([]rows.RoleRow, error) {
	mappings, err := e.platform.RoleMappings(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	result := make([]rows.RoleRow, 0, len(mappings))
	for _, m := range mappings {
		row, err := rows.Role(m, workspaceID, e.hashUsers, captured)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, nil
}

func (e *Extractor) workspaceIDs(ctx context.Context, scope string) ([]string, error) {
	if scope != "" {
		return []string{scope}, nil
	}

	workspaces, err := e.platform.Workspaces(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(workspaces))
	for _, ws := range workspaces {
		ids = append(ids, ws.ID)
	}
	return ids, nil
}

func (e *Extractor) skippable(workspaceID string, err error) bool {
	if !e.isolateFailures {
		return false
	}
	log.Printf("Skipping workspace %s: %v", workspaceID, err)
	return true
}
