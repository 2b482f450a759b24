package visiology

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client talks to a Visiology instance. It authenticates lazily via the
// platform Keycloak realm and decodes each endpoint into its typed shape.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	auth     authState
}

func NewClient(baseURL, username, password string) *Client {
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		username: username,
		password: password,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				// platform installs commonly run with self-signed certs
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		auth: authState{now: time.Now},
	}
}

// Workspaces lists every workspace visible to the configured account.
func (c *Client) Workspaces(ctx context.Context) ([]Workspace, error) {
	var workspaces []Workspace
	if err := c.getJSON(ctx, "workspace-service/api/v1/workspaces", &workspaces); err != nil {
		return nil, err
	}
	return workspaces, nil
}

// Dashboards lists the dashboards of one workspace.
func (c *Client) Dashboards(ctx context.Context, workspaceID string) ([]Dashboard, error) {
	var dashboards []Dashboard
	path := fmt.Sprintf("dashboard-service/api/workspaces/%s/dashboards", workspaceID)
	if err := c.getJSON(ctx, path, &dashboards); err != nil {
		return nil, err
	}
	return dashboards, nil
}

// DashboardStructure fetches a dashboard's full sheet/widget tree.
func (c *Client) DashboardStructure(ctx context.Context, workspaceID, dashboardID string) (DashboardStructure, error) {
	var structure DashboardStructure
	path := fmt.Sprintf("dashboard-service/api/workspaces/%s/dashboards/%s", workspaceID, dashboardID)
	if err := c.getJSON(ctx, path, &structure); err != nil {
		return DashboardStructure{}, err
	}
	return structure, nil
}

// RoleMappings lists the role assignments of one workspace.
func (c *Client) RoleMappings(ctx context.Context, workspaceID string) ([]RoleMapping, error) {
	var mappings []RoleMapping
	path := fmt.Sprintf("workspace-service/api/v1/workspaces/%s/role-mappings", workspaceID)
	if err := c.getJSON(ctx, path, &mappings); err != nil {
		return nil, err
	}
	return mappings, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	header, err := c.AuthHeader(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path), nil)
	if err != nil {
		return &RequestError{Path: path, Err: err}
	}
	req.Header.Set("Authorization", header)

	resp, err := c.http.Do(req)
	if err != nil {
		return &RequestError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RequestError{Path: path, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RequestError{Path: path, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + "/" + path
}
