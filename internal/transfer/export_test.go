package transfer

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/steamtestpanel/steam-test-panel/internal/connector"
)

func newMockExporter(t *testing.T) (*Exporter, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)

	dc := &connector.DatabaseConnector{DB: mockDB, Database: "panel", Logger: logger}
	return NewExporter(dc, logger), mock
}

func TestSelectionUnmarshalMixedIDs(t *testing.T) {
	var sel Selection
	if err := json.Unmarshal([]byte(`{"reports": [5, "7"], "tests": ["3", "5a"]}`), &sel); err != nil {
		t.Fatalf("Failed to unmarshal selection: %v", err)
	}

	if len(sel["reports"]) != 2 || sel["reports"][0] != "5" || sel["reports"][1] != "7" {
		t.Errorf("Expected reports [5 7], got %v", sel["reports"])
	}
	if len(sel["tests"]) != 2 || sel["tests"][1] != "5a" {
		t.Errorf("Expected tests [3 5a], got %v", sel["tests"])
	}
}

func TestSelectionUnmarshalRejectsBadIDs(t *testing.T) {
	var sel Selection
	if err := json.Unmarshal([]byte(`{"reports": [true]}`), &sel); err == nil {
		t.Error("Expected a boolean identifier to be rejected")
	}
	if err := json.Unmarshal([]byte(`{"reports": [5.7]}`), &sel); err == nil {
		t.Error("Expected a fractional identifier to be rejected")
	}
}

func TestExportTestsCategory(t *testing.T) {
	exporter, mock := newMockExporter(t)

	mock.ExpectQuery("SELECT * FROM `test_results` WHERE `test_key` IN ('3', '5a')").
		WillReturnRows(sqlmock.NewRows([]string{"report_id", "test_key", "result", "notes", "created_at"}).
			AddRow(int64(1), "3", "pass", "", time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)).
			AddRow(int64(2), "5a", "fail", nil, time.Date(2026, 2, 2, 11, 30, 0, 0, time.UTC)))

	var buf bytes.Buffer
	stats, err := exporter.Export(&buf, Selection{"tests": {"3", "5a"}})
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	out := buf.String()
	if stats.Tables != 1 || stats.Rows != 2 {
		t.Errorf("Expected 1 table and 2 rows, got %d/%d", stats.Tables, stats.Rows)
	}
	if !strings.Contains(out, "-- test_results (2 rows)") {
		t.Errorf("Expected test_results section header, got:\n%s", out)
	}
	if !strings.Contains(out, "REPLACE INTO `test_results` (`report_id`, `test_key`, `result`, `notes`, `created_at`) VALUES (1, '3', 'pass', '', '2026-02-01 10:00:00');") {
		t.Errorf("Expected first row statement, got:\n%s", out)
	}
	if !strings.Contains(out, "VALUES (2, '5a', 'fail', NULL, '2026-02-02 11:30:00');") {
		t.Errorf("Expected NULL notes in second row, got:\n%s", out)
	}
	// No other tables touched
	if strings.Contains(out, "REPLACE INTO `reports`") {
		t.Errorf("Did not expect a reports section, got:\n%s", out)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet sqlmock expectations: %v", err)
	}
}

func TestExportRetestsPartitioning(t *testing.T) {
	exporter, mock := newMockExporter(t)

	mock.ExpectQuery("SELECT * FROM `retest_requests` WHERE `id` IN (12)").
		WillReturnRows(sqlmock.NewRows([]string{"id", "report_id", "test_key", "requested_by", "status", "created_at", "resolved_at"}).
			AddRow(int64(12), int64(3), "7b", int64(1), "open", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), nil))
	mock.ExpectQuery("SELECT * FROM `fixed_tests` WHERE `id` IN (7)").
		WillReturnRows(sqlmock.NewRows([]string{"id", "test_key", "version_id", "marked_by", "created_at"}).
			AddRow(int64(7), "7b", int64(2), int64(1), time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)))

	var buf bytes.Buffer
	stats, err := exporter.Export(&buf, Selection{"retests": {"retest_12", "fixed_7", "bogus_1", "retest_x"}})
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	out := buf.String()
	if stats.Tables != 2 {
		t.Errorf("Expected 2 table sections, got %d", stats.Tables)
	}
	if !strings.Contains(out, "REPLACE INTO `retest_requests`") {
		t.Errorf("Expected retest_requests statements, got:\n%s", out)
	}
	if !strings.Contains(out, "REPLACE INTO `fixed_tests`") {
		t.Errorf("Expected fixed_tests statements, got:\n%s", out)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet sqlmock expectations: %v", err)
	}
}

func TestExportReportsPullsDependentTables(t *testing.T) {
	exporter, mock := newMockExporter(t)

	mock.ExpectQuery("SELECT * FROM `reports` WHERE `id` IN (5)").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(int64(5), "Crash on login"))
	for _, table := range []string{"test_results", "report_revisions", "report_logs", "report_comments", "report_tag_assignments"} {
		mock.ExpectQuery("SELECT * FROM `" + table + "` WHERE `report_id` IN (5)").
			WillReturnRows(sqlmock.NewRows([]string{"report_id"}))
	}

	var buf bytes.Buffer
	stats, err := exporter.Export(&buf, Selection{"reports": {"5"}})
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	if stats.Tables != 6 {
		t.Errorf("Expected 6 table sections for a report export, got %d", stats.Tables)
	}
	if stats.Rows != 1 {
		t.Errorf("Expected 1 exported row, got %d", stats.Rows)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet sqlmock expectations: %v", err)
	}
}

func TestExportUnknownAndEmptyCategories(t *testing.T) {
	exporter, _ := newMockExporter(t)

	var buf bytes.Buffer
	stats, err := exporter.Export(&buf, Selection{"nonsense": {"1"}, "users": {}})
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	if stats.Categories != 0 || stats.Tables != 0 {
		t.Errorf("Expected nothing exported, got %+v", stats)
	}
	out := buf.String()
	if !strings.Contains(out, "SET FOREIGN_KEY_CHECKS=0;") || !strings.Contains(out, "SET FOREIGN_KEY_CHECKS=1;") {
		t.Errorf("Expected FK guard statements even for empty exports, got:\n%s", out)
	}
}

func TestExportTableFailureIsInline(t *testing.T) {
	exporter, mock := newMockExporter(t)

	mock.ExpectQuery("SELECT * FROM `test_templates` WHERE `id` IN (1)").
		WillReturnError(sqlmock.ErrCancelled)

	var buf bytes.Buffer
	_, err := exporter.Export(&buf, Selection{"templates": {"1"}})
	if err != nil {
		t.Fatalf("Export should not fail on a table query error, got: %v", err)
	}

	if !strings.Contains(buf.String(), "-- ERROR exporting table test_templates") {
		t.Errorf("Expected inline error comment, got:\n%s", buf.String())
	}
}

func TestQuoteString(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain", "'plain'"},
		{"it's", `'it\'s'`},
		{`back\slash`, `'back\\slash'`},
		{"line\nbreak", `'line\nbreak'`},
		{"semi;colon", "'semi;colon'"},
		{"", "''"},
	}
	for _, c := range cases {
		if got := quoteString(c.in); got != c.want {
			t.Errorf("quoteString(%q): expected %s, got %s", c.in, c.want, got)
		}
	}
}
