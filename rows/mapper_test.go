package rows_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"vistats/rows"
	"vistats/visiology"
)

func TestParseID_RoundTrip(t *testing.T) {
	tests := []string{
		"c56a4180-65aa-42ec-a945-5fd21dec0538",
		"C56A4180-65AA-42EC-A945-5FD21DEC0538",
		"00000000-0000-0000-0000-000000000000",
	}

	for _, input := range tests {
		id, err := rows.ParseID("id", input)
		if err != nil {
			t.Fatalf("ParseID(%q) failed: %v", input, err)
		}
		if id.String() != strings.ToLower(input) {
			t.Errorf("round trip mismatch: got %s, want %s", id.String(), strings.ToLower(input))
		}
	}
}

func TestParseID_Malformed(t *testing.T) {
	tests := []string{"", "not-a-uuid", "c56a4180-65aa-42ec-a945"}

	for _, input := range tests {
		_, err := rows.ParseID("id", input)
		if err == nil {
			t.Fatalf("ParseID(%q) should fail", input)
		}
		var idErr *rows.IdentifierError
		if !errors.As(err, &idErr) {
			t.Errorf("ParseID(%q) error is %T, want *IdentifierError", input, err)
		}
	}
}

func TestParseTimestamp_RoundTrip(t *testing.T) {
	tests := []string{
		"2024-05-12T08:30:15.123456Z",
		"2023-01-01T00:00:00.000000Z",
	}

	for _, input := range tests {
		parsed, err := rows.ParseTimestamp("createdAt", input)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q) failed: %v", input, err)
		}
		if got := rows.FormatTimestamp(parsed); got != input {
			t.Errorf("round trip mismatch: got %s, want %s", got, input)
		}
	}
}

func TestParseTimestamp_Malformed(t *testing.T) {
	tests := []string{
		"",
		"2024-05-12T08:30:15Z",           // no fraction
		"2024-05-12T08:30:15.123Z",       // three digits
		"2024-05-12T08:30:15.123456",     // no Z
		"2024-05-12 08:30:15.123456Z",    // space separator
		"2024-05-12T08:30:15.123456+00:00",
	}

	for _, input := range tests {
		_, err := rows.ParseTimestamp("createdAt", input)
		if err == nil {
			t.Fatalf("ParseTimestamp(%q) should fail", input)
		}
		var tsErr *rows.TimestampError
		if !errors.As(err, &tsErr) {
			t.Errorf("ParseTimestamp(%q) error is %T, want *TimestampError", input, err)
		}
	}
}

func TestHashUsername(t *testing.T) {
	first := rows.HashUsername("alice")
	second := rows.HashUsername("alice")

	if first != second {
		t.Errorf("hash is not deterministic: %s != %s", first, second)
	}
	if first == "alice" {
		t.Errorf("hash equals the input")
	}
	if len(first) != 64 {
		t.Errorf("unexpected digest length %d", len(first))
	}
}

func TestCaptureDate(t *testing.T) {
	instant := time.Date(2024, 5, 12, 23, 59, 58, 123, time.FixedZone("MSK", 3*3600))
	date := rows.CaptureDate(instant)

	if date.Hour() != 0 || date.Minute() != 0 || date.Second() != 0 || date.Nanosecond() != 0 {
		t.Errorf("capture date has a time component: %v", date)
	}
	if date.Location() != time.UTC {
		t.Errorf("capture date is not UTC: %v", date.Location())
	}
	if date.Year() != 2024 || date.Month() != 5 || date.Day() != 12 {
		t.Errorf("unexpected capture date %v", date)
	}
}

func TestWorkspace(t *testing.T) {
	captured := time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC)

	row, err := rows.Workspace(visiology.Workspace{
		ID:        "c56a4180-65aa-42ec-a945-5fd21dec0538",
		Name:      "Sales",
		CreatedAt: "2024-05-01T10:20:30.000001Z",
		CreatedBy: "admin",
	}, captured)
	if err != nil {
		t.Fatalf("Workspace failed: %v", err)
	}

	if row.ID.String() != "c56a4180-65aa-42ec-a945-5fd21dec0538" {
		t.Errorf("unexpected id %s", row.ID)
	}
	if row.Name != "Sales" || row.CreatedBy != "admin" {
		t.Errorf("unexpected row %+v", row)
	}
	if rows.FormatTimestamp(row.CreatedAt) != "2024-05-01T10:20:30.000001Z" {
		t.Errorf("unexpected createdAt %v", row.CreatedAt)
	}
	if !row.Date.Equal(captured) {
		t.Errorf("unexpected capture date %v", row.Date)
	}

	if _, err := rows.Workspace(visiology.Workspace{ID: "bogus", CreatedAt: "2024-05-01T10:20:30.000001Z"}, captured); err == nil {
		t.Errorf("malformed workspace id should fail")
	}
}

func TestDashboard_DatasetReserialized(t *testing.T) {
	captured := time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC)

	row, err := rows.Dashboard(visiology.Dashboard{
		GUID:         "11111111-1111-1111-1111-111111111111",
		Name:         "Overview",
		LastModified: "2024-05-11T09:00:00.500000Z",
		Dataset:      json.RawMessage("{\n  \"b\": 1,\n  \"a\": [1, 2]\n}"),
		IsPublic:     true,
	}, "22222222-2222-2222-2222-222222222222", captured)
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}

	if row.Dataset != `{"a":[1,2],"b":1}` {
		t.Errorf("dataset not canonical: %s", row.Dataset)
	}
	if row.WorkspaceID.String() != "22222222-2222-2222-2222-222222222222" {
		t.Errorf("unexpected workspace id %s", row.WorkspaceID)
	}
	if !row.IsPublic || row.PublishedOnPortal {
		t.Errorf("unexpected visibility flags %+v", row)
	}
}

func TestRole_HashToggle(t *testing.T) {
	captured := time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC)
	mapping := visiology.RoleMapping{
		Username:     "alice",
		ID:           "33333333-3333-3333-3333-333333333333",
		SubjectType:  "user",
		AssignedRole: "viewer",
	}
	workspaceID := "22222222-2222-2222-2222-222222222222"

	plain, err := rows.Role(mapping, workspaceID, false, captured)
	if err != nil {
		t.Fatalf("Role failed: %v", err)
	}
	if plain.Username != "alice" {
		t.Errorf("disabled hashing should pass the username through, got %s", plain.Username)
	}

	hashed, err := rows.Role(mapping, workspaceID, true, captured)
	if err != nil {
		t.Fatalf("Role failed: %v", err)
	}
	if hashed.Username != rows.HashUsername("alice") {
		t.Errorf("unexpected hashed username %s", hashed.Username)
	}
}

func TestRole_EmptyUsernameKept(t *testing.T) {
	captured := time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC)

	row, err := rows.Role(visiology.RoleMapping{
		Username:     "",
		ID:           "33333333-3333-3333-3333-333333333333",
		SubjectType:  "group",
		AssignedRole: "editor",
	}, "22222222-2222-2222-2222-222222222222", false, captured)
	if err != nil {
		t.Fatalf("Role failed: %v", err)
	}

	if row.SubjectType != "group" || row.AssignedRole != "editor" {
		t.Errorf("empty-username entry should still map to a full row: %+v", row)
	}
	if len(row.Values()) != len(rows.RoleColumns) {
		t.Errorf("row arity %d does not match column count %d", len(row.Values()), len(rows.RoleColumns))
	}
}
