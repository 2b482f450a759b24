package main

import (
	"context"
	"log"

	"vistats/config"
	"vistats/database"
	"vistats/extract"
	"vistats/rows"
	"vistats/visiology"
)

func main() {

	ctx := context.Background()

	cfg := config.LoadEnvConfig("settings.env")

	client := visiology.NewClient(cfg.Visiology.URL, cfg.Visiology.Login, cfg.Visiology.Password)
	extractor := extract.NewExtractor(client, extract.Options{
		HashUsers:       cfg.HashUsers,
		IsolateFailures: cfg.IsolateWorkspaceFailures,
	})

	db, err := database.Connect(ctx, cfg.ClickHouse)
	if err != nil {
		log.Fatalf("clickhouse: %v", err)
	}
	defer db.Close()

	if err := db.InitializeSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}

	// workspaces
	workspaces, err := extractor.Workspaces(ctx)
	if err != nil {
		log.Fatalf("extracting workspaces: %v", err)
	}
	if err := db.InsertWorkspaces(ctx, workspaces); err != nil {
		log.Fatalf("loading workspaces: %v", err)
	}
	if err := db.Optimize(ctx, rows.WorkspacesTable); err != nil {
		log.Fatalf("optimizing workspaces: %v", err)
	}
	log.Printf("Loaded %d workspace rows", len(workspaces))

	// dashboards
	dashboards, err := extractor.Dashboards(ctx, "")
	if err != nil {
		log.Fatalf("extracting dashboards: %v", err)
	}
	if err := db.InsertDashboards(ctx, dashboards); err != nil {
		log.Fatalf("loading dashboards: %v", err)
	}
	if err := db.Optimize(ctx, rows.DashboardsTable); err != nil {
		log.Fatalf("optimizing dashboards: %v", err)
	}
	log.Printf("Loaded %d dashboard rows", len(dashboards))

	// widgets
	widgets, err := extractor.Widgets(ctx, "", "")
	if err != nil {
		log.Fatalf("extracting widgets: %v", err)
	}
	if err := db.InsertWidgets(ctx, widgets); err != nil {
		log.Fatalf("loading widgets: %v", err)
	}
	if err := db.Optimize(ctx, rows.WidgetsTable); err != nil {
		log.Fatalf("optimizing widgets: %v", err)
	}
	log.Printf("Loaded %d widget rows", len(widgets))

	// roles
	roles, err := extractor.Roles(ctx, "")
	if err != nil {
		log.Fatalf("extracting roles: %v", err)
	}
	if err := db.InsertRoles(ctx, roles); err != nil {
		log.Fatalf("loading roles: %v", err)
	}
	if err := db.Optimize(ctx, rows.RolesTable); err != nil {
		log.Fatalf("optimizing roles: %v", err)
	}
	log.Printf("Loaded %d role rows", len(roles))

	// aggregates is written by the log consumer, compacted here
	if err := db.Optimize(ctx, rows.AggregatesTable); err != nil {
		log.Fatalf("optimizing aggregates: %v", err)
	}
}
