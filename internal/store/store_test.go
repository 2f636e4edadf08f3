package store

import (
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/steamtestpanel/steam-test-panel/internal/connector"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)

	dc := &connector.DatabaseConnector{DB: mockDB, Database: "panel", Logger: logger}
	return New(dc, logger), mock
}

func TestInitSchemaDeclaresForeignKeys(t *testing.T) {
	s, mock := newMockStore(t)

	// The parent tables carry no constraints; every child table must
	// declare the FOREIGN KEYs its rows depend on.
	expected := []string{
		"CREATE TABLE IF NOT EXISTS users",
		"CREATE TABLE IF NOT EXISTS client_versions",
		"FOREIGN KEY \\(reporter_id\\) REFERENCES users",
		"FOREIGN KEY \\(report_id\\) REFERENCES reports",
		"FOREIGN KEY \\(editor_id\\) REFERENCES users",
		"FOREIGN KEY \\(actor_id\\) REFERENCES users",
		"FOREIGN KEY \\(author_id\\) REFERENCES users",
		"FOREIGN KEY \\(created_by\\) REFERENCES users",
		"CREATE TABLE IF NOT EXISTS report_tags",
		"FOREIGN KEY \\(tag_id\\) REFERENCES report_tags",
		"FOREIGN KEY \\(requested_by\\) REFERENCES users",
		"FOREIGN KEY \\(marked_by\\) REFERENCES users",
		"FOREIGN KEY \\(used_by\\) REFERENCES users",
		"FOREIGN KEY \\(user_id\\) REFERENCES users",
		"CREATE TABLE IF NOT EXISTS site_settings",
	}
	for _, pattern := range expected {
		mock.ExpectExec(pattern).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	if err := s.InitSchema(); err != nil {
		t.Fatalf("InitSchema returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Schema statements missing expected constraints: %v", err)
	}
}

func reportColumns() []string {
	return []string{"id", "title", "reporter_id", "version_id", "status", "summary", "created_at", "updated_at", "closed_at"}
}

func TestListReportsFiltersByStatus(t *testing.T) {
	s, mock := newMockStore(t)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM reports WHERE status = \\?").
		WithArgs("open").
		WillReturnRows(sqlmock.NewRows(reportColumns()).
			AddRow(int64(2), []byte("Audio glitch"), int64(1), nil, []byte("open"), []byte("crackling"), now, now, nil).
			AddRow(int64(1), []byte("Crash on login"), int64(1), int64(3), []byte("open"), []byte("boom"), now, now, nil))

	reports, err := s.ListReports("open")
	if err != nil {
		t.Fatalf("ListReports returned error: %v", err)
	}

	if len(reports) != 2 {
		t.Fatalf("Expected 2 reports, got %d", len(reports))
	}
	if reports[0].Title != "Audio glitch" {
		t.Errorf("Expected title 'Audio glitch', got %q", reports[0].Title)
	}
	if reports[0].VersionID != nil {
		t.Errorf("Expected nil version id, got %v", *reports[0].VersionID)
	}
	if reports[1].VersionID == nil || *reports[1].VersionID != 3 {
		t.Errorf("Expected version id 3, got %v", reports[1].VersionID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet sqlmock expectations: %v", err)
	}
}

func TestUpdateReportStatusRecordsRevisionAndLog(t *testing.T) {
	s, mock := newMockStore(t)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM reports WHERE id = \\?").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(reportColumns()).
			AddRow(int64(5), []byte("Crash"), int64(1), nil, []byte("open"), []byte("boom"), now, now, nil))
	mock.ExpectExec("UPDATE reports SET status = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO report_revisions").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO report_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT (.+) FROM reports WHERE id = \\?").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(reportColumns()).
			AddRow(int64(5), []byte("Crash"), int64(1), nil, []byte("closed"), []byte("boom"), now, now, now))

	report, err := s.UpdateReportStatus(5, "closed", 9)
	if err != nil {
		t.Fatalf("UpdateReportStatus returned error: %v", err)
	}
	if report.Status != "closed" {
		t.Errorf("Expected status 'closed', got %q", report.Status)
	}
	if report.ClosedAt == nil {
		t.Error("Expected closed_at to be set")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet sqlmock expectations: %v", err)
	}
}

func TestRedeemInviteRejectsUsedCode(t *testing.T) {
	s, mock := newMockStore(t)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM invite_codes WHERE code = \\?").
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "created_by", "role", "used_by", "used_at", "created_at"}).
			AddRow(int64(1), []byte("abc"), int64(2), []byte("tester"), int64(7), now, now))

	_, err := s.RedeemInvite("abc", "newuser", "new@example.com")
	if err == nil {
		t.Fatal("Expected error for a used invite code")
	}
	if !strings.Contains(err.Error(), "already used") {
		t.Errorf("Expected 'already used' error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet sqlmock expectations: %v", err)
	}
}

func TestCreateInviteGeneratesUniqueCodes(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO invite_codes").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO invite_codes").
		WillReturnResult(sqlmock.NewResult(2, 1))

	first, err := s.CreateInvite(1, "")
	if err != nil {
		t.Fatalf("CreateInvite returned error: %v", err)
	}
	second, err := s.CreateInvite(1, "admin")
	if err != nil {
		t.Fatalf("CreateInvite returned error: %v", err)
	}

	if first.Code == second.Code {
		t.Error("Expected distinct invite codes")
	}
	if first.Role != "tester" {
		t.Errorf("Expected default role 'tester', got %q", first.Role)
	}
	if second.Role != "admin" {
		t.Errorf("Expected role 'admin', got %q", second.Role)
	}
}

func TestMarkNotificationSeenTwice(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("UPDATE version_notifications SET seen_at").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE version_notifications SET seen_at").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.MarkNotificationSeen(3); err != nil {
		t.Errorf("First MarkNotificationSeen failed: %v", err)
	}
	if err := s.MarkNotificationSeen(3); err == nil {
		t.Error("Expected error when marking an already-seen notification")
	}
}
