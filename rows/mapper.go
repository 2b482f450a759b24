package rows

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vistats/visiology"
)

// TimestampLayout is the only timestamp form the platform emits: UTC with
// exactly six fractional digits and a literal Z.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// IdentifierError reports a wire identifier that is not a valid UUID.
type IdentifierError struct {
	Field string
	Value string
	Err   error
}

func (e *IdentifierError) Error() string {
	return fmt.Sprintf("malformed identifier %s=%q: %v", e.Field, e.Value, e.Err)
}

func (e *IdentifierError) Unwrap() error { return e.Err }

// TimestampError reports a wire timestamp deviating from TimestampLayout.
type TimestampError struct {
	Field string
	Value string
	Err   error
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("malformed timestamp %s=%q: %v", e.Field, e.Value, e.Err)
}

func (e *TimestampError) Unwrap() error { return e.Err }

// CaptureDate truncates a wall-clock instant to its UTC calendar date.
// Each extraction flow computes this once and stamps it on every row.
func CaptureDate(now time.Time) time.Time {
	year, month, day := now.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Today is CaptureDate of the current instant.
func Today() time.Time {
	return CaptureDate(time.Now())
}

// ParseID coerces a wire identifier into a canonical UUID value.
func ParseID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.UUID{}, &IdentifierError{Field: field, Value: value, Err: err}
	}
	return id, nil
}

// ParseTimestamp parses a TimestampLayout string. Any deviation fails.
func ParseTimestamp(field, value string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, value)
	if err != nil {
		return time.Time{}, &TimestampError{Field: field, Value: value, Err: err}
	}
	return t, nil
}

// FormatTimestamp renders a time back into TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// HashUsername returns the SHA-256 hex digest of the UTF-8 username.
func HashUsername(username string) string {
	digest := sha256.Sum256([]byte(username))
	return hex.EncodeToString(digest[:])
}

func Workspace(w visiology.Workspace, captured time.Time) (WorkspaceRow, error) {
	id, err := ParseID("id", w.ID)
	if err != nil {
		return WorkspaceRow{}, err
	}
	createdAt, err := ParseTimestamp("createdAt", w.CreatedAt)
	if err != nil {
		return WorkspaceRow{}, err
	}
	return WorkspaceRow{
		ID:        id,
		Name:      w.Name,
		CreatedAt: createdAt,
		CreatedBy: w.CreatedBy,
		Date:      captured,
	}, nil
}

func Dashboard(d visiology.Dashboard, workspaceID string, captured time.Time) (DashboardRow, error) {
	guid, err := ParseID("guid", d.GUID)
	if err != nil {
		return DashboardRow{}, err
	}
	wsID, err := ParseID("workspace_id", workspaceID)
	if err != nil {
		return DashboardRow{}, err
	}
	lastModified, err := ParseTimestamp("lastModified", d.LastModified)
	if err != nil {
		return DashboardRow{}, err
	}
	dataset, err := canonicalJSON(d.Dataset)
	if err != nil {
		return DashboardRow{}, fmt.Errorf("re-encoding dataset of dashboard %s: %w", d.GUID, err)
	}
	return DashboardRow{
		GUID:              guid,
		Name:              d.Name,
		LastModified:      lastModified,
		LastEditorName:    d.LastEditorName,
		Dataset:           dataset,
		IsPublic:          d.IsPublic,
		PublishedOnPortal: d.PublishedOnPortal,
		WorkspaceID:       wsID,
		Date:              captured,
	}, nil
}

func SheetWidget(workspaceID, dashboardID string, sheet visiology.Sheet, w visiology.Widget, captured time.Time) (WidgetRow, error) {
	wsID, err := ParseID("workspace_id", workspaceID)
	if err != nil {
		return WidgetRow{}, err
	}
	dbID, err := ParseID("dashboard_id", dashboardID)
	if err != nil {
		return WidgetRow{}, err
	}
	sheetGUID, err := ParseID("sheet_guid", sheet.GUID)
	if err != nil {
		return WidgetRow{}, err
	}
	widgetGUID, err := ParseID("widget_guid", w.GUID)
	if err != nil {
		return WidgetRow{}, err
	}
	return WidgetRow{
		WorkspaceID:   wsID,
		DashboardID:   dbID,
		SheetGUID:     sheetGUID,
		SheetName:     sheet.Name,
		SheetPosition: sheet.Position,
		WidgetType:    w.Type,
		WidgetLabel:   w.Title.Text,
		WidgetGUID:    widgetGUID,
		Date:          captured,
	}, nil
}

func Role(m visiology.RoleMapping, workspaceID string, hashUsers bool, captured time.Time) (RoleRow, error) {
	id, err := ParseID("id", m.ID)
	if err != nil {
		return RoleRow{}, err
	}
	wsID, err := ParseID("workspace_id", workspaceID)
	if err != nil {
		return RoleRow{}, err
	}
	username := m.Username
	if hashUsers {
		username = HashUsername(username)
	}
	return RoleRow{
		Username:     username,
		ID:           id,
		SubjectType:  m.SubjectType,
		AssignedRole: m.AssignedRole,
		WorkspaceID:  wsID,
		Date:         captured,
	}, nil
}

// canonicalJSON re-serializes a nested wire structure into a stable text
// encoding, stored downstream as an opaque blob.
func canonicalJSON(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "null", nil
	}
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", err
	}
	encoded, err := json.Marshal(decoded)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
