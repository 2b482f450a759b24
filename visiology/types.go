package visiology

import "encoding/json"

// Wire shapes, one struct per endpoint. Timestamps stay in their wire string
// form here; parsing happens in the rows package so malformed values surface
// as mapping errors, not decode errors.

type Workspace struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
	CreatedBy string `json:"createdBy"`
}

type Dashboard struct {
	GUID              string          `json:"guid"`
	Name              string          `json:"name"`
	LastModified      string          `json:"lastModified"`
	LastEditorName    string          `json:"lastEditorName"`
	Dataset           json.RawMessage `json:"dataset"`
	IsPublic          bool            `json:"isPublic"`
	PublishedOnPortal bool            `json:"publishedOnPortal"`
}

type DashboardStructure struct {
	Sheets []Sheet `json:"sheets"`
}

type Sheet struct {
	GUID     string   `json:"guid"`
	Name     string   `json:"name"`
	Position int32    `json:"position"`
	Widgets  []Widget `json:"widgets"`
}

type Widget struct {
	Type  string      `json:"type"`
	Title WidgetTitle `json:"title"`
	GUID  string      `json:"guid"`
}

type WidgetTitle struct {
	Text string `json:"text"`
}

type RoleMapping struct {
	Username     string `json:"username"`
	ID           string `json:"id"`
	SubjectType  string `json:"subjectType"`
	AssignedRole string `json:"assignedRole"`
}
