package store

import (
	"fmt"
	"time"

	"github.com/steamtestpanel/steam-test-panel/pkg/models"
)

func scanReport(row map[string]interface{}) models.Report {
	return models.Report{
		ID:         rowInt64(row, "id"),
		Title:      rowString(row, "title"),
		ReporterID: rowInt64(row, "reporter_id"),
		VersionID:  rowNullInt64(row, "version_id"),
		Status:     rowString(row, "status"),
		Summary:    rowString(row, "summary"),
		CreatedAt:  rowTime(row, "created_at"),
		UpdatedAt:  rowTime(row, "updated_at"),
		ClosedAt:   rowNullTime(row, "closed_at"),
	}
}

// ListReports returns reports, optionally filtered by status
func (s *Store) ListReports(status string) ([]models.Report, error) {
	query := "SELECT id, title, reporter_id, version_id, status, summary, created_at, updated_at, closed_at FROM reports"
	var params []interface{}
	if status != "" {
		query += " WHERE status = ?"
		params = append(params, status)
	}
	query += " ORDER BY id DESC"

	rows, err := s.DB.ExecuteQuery(query, params...)
	if err != nil {
		return nil, err
	}

	reports := make([]models.Report, 0, len(rows))
	for _, row := range rows {
		reports = append(reports, scanReport(row))
	}
	return reports, nil
}

// GetReport returns one report by id
func (s *Store) GetReport(id int64) (*models.Report, error) {
	rows, err := s.DB.ExecuteQuery(
		"SELECT id, title, reporter_id, version_id, status, summary, created_at, updated_at, closed_at FROM reports WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("report %d not found", id)
	}

	report := scanReport(rows[0])
	return &report, nil
}

// CreateReport inserts a new report and logs its creation
func (s *Store) CreateReport(title, summary string, reporterID int64, versionID *int64) (*models.Report, error) {
	now := time.Now()
	id, err := s.DB.LastInsertID(
		"INSERT INTO reports (title, reporter_id, version_id, status, summary, created_at, updated_at) VALUES (?, ?, ?, 'open', ?, ?, ?)",
		title, reporterID, versionID, summary, now, now)
	if err != nil {
		return nil, err
	}

	s.appendReportLog(id, reporterID, "created", "")

	return s.GetReport(id)
}

// UpdateReportStatus changes a report's status, recording a revision and a log line
func (s *Store) UpdateReportStatus(id int64, status string, actorID int64) (*models.Report, error) {
	report, err := s.GetReport(id)
	if err != nil {
		return nil, err
	}
	if report.Status == status {
		return report, nil
	}

	now := time.Now()
	var closedAt interface{}
	if status == "closed" {
		closedAt = now
	}

	if _, err := s.DB.ExecuteStatement(
		"UPDATE reports SET status = ?, updated_at = ?, closed_at = ? WHERE id = ?",
		status, now, closedAt, id); err != nil {
		return nil, err
	}

	if _, err := s.DB.ExecuteStatement(
		"INSERT INTO report_revisions (report_id, editor_id, field, old_value, new_value, created_at) VALUES (?, ?, 'status', ?, ?, ?)",
		id, actorID, report.Status, status, now); err != nil {
		s.Logger.Warningf("Failed to record revision for report %d: %v", id, err)
	}

	s.appendReportLog(id, actorID, "status_changed", fmt.Sprintf("%s -> %s", report.Status, status))

	return s.GetReport(id)
}

// DeleteReport removes a report and its dependent rows
func (s *Store) DeleteReport(id int64) error {
	dependents := []string{
		"DELETE FROM test_results WHERE report_id = ?",
		"DELETE FROM report_revisions WHERE report_id = ?",
		"DELETE FROM report_logs WHERE report_id = ?",
		"DELETE FROM report_comments WHERE report_id = ?",
		"DELETE FROM report_tag_assignments WHERE report_id = ?",
		"DELETE FROM retest_requests WHERE report_id = ?",
	}
	for _, stmt := range dependents {
		if _, err := s.DB.ExecuteStatement(stmt, id); err != nil {
			return err
		}
	}

	affected, err := s.DB.ExecuteStatement("DELETE FROM reports WHERE id = ?", id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("report %d not found", id)
	}
	return nil
}

// appendReportLog records an audit line for a report, best effort
func (s *Store) appendReportLog(reportID, actorID int64, action, detail string) {
	if _, err := s.DB.ExecuteStatement(
		"INSERT INTO report_logs (report_id, actor_id, action, detail, created_at) VALUES (?, ?, ?, ?, ?)",
		reportID, actorID, action, detail, time.Now()); err != nil {
		s.Logger.Warningf("Failed to append log for report %d: %v", reportID, err)
	}
}

// SetTestResult upserts a single test outcome on a report
func (s *Store) SetTestResult(reportID int64, testKey, result, notes string) error {
	_, err := s.DB.ExecuteStatement(
		"REPLACE INTO test_results (report_id, test_key, result, notes, created_at) VALUES (?, ?, ?, ?, ?)",
		reportID, testKey, result, notes, time.Now())
	return err
}

// ListTestResults returns all test outcomes for a report
func (s *Store) ListTestResults(reportID int64) ([]models.TestResult, error) {
	rows, err := s.DB.ExecuteQuery(
		"SELECT report_id, test_key, result, notes, created_at FROM test_results WHERE report_id = ? ORDER BY test_key", reportID)
	if err != nil {
		return nil, err
	}

	results := make([]models.TestResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, models.TestResult{
			ReportID:  rowInt64(row, "report_id"),
			TestKey:   rowString(row, "test_key"),
			Result:    rowString(row, "result"),
			Notes:     rowString(row, "notes"),
			CreatedAt: rowTime(row, "created_at"),
		})
	}
	return results, nil
}

// AddComment attaches a comment to a report
func (s *Store) AddComment(reportID, authorID int64, body string) (int64, error) {
	return s.DB.LastInsertID(
		"INSERT INTO report_comments (report_id, author_id, body, created_at) VALUES (?, ?, ?, ?)",
		reportID, authorID, body, time.Now())
}

// ListComments returns a report's comments oldest first
func (s *Store) ListComments(reportID int64) ([]models.ReportComment, error) {
	rows, err := s.DB.ExecuteQuery(
		"SELECT id, report_id, author_id, body, created_at FROM report_comments WHERE report_id = ? ORDER BY id", reportID)
	if err != nil {
		return nil, err
	}

	comments := make([]models.ReportComment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, models.ReportComment{
			ID:        rowInt64(row, "id"),
			ReportID:  rowInt64(row, "report_id"),
			AuthorID:  rowInt64(row, "author_id"),
			Body:      rowString(row, "body"),
			CreatedAt: rowTime(row, "created_at"),
		})
	}
	return comments, nil
}

// ListRevisions returns a report's edit history newest first
func (s *Store) ListRevisions(reportID int64) ([]models.ReportRevision, error) {
	rows, err := s.DB.ExecuteQuery(
		"SELECT id, report_id, editor_id, field, old_value, new_value, created_at FROM report_revisions WHERE report_id = ? ORDER BY id DESC", reportID)
	if err != nil {
		return nil, err
	}

	revisions := make([]models.ReportRevision, 0, len(rows))
	for _, row := range rows {
		revisions = append(revisions, models.ReportRevision{
			ID:        rowInt64(row, "id"),
			ReportID:  rowInt64(row, "report_id"),
			EditorID:  rowInt64(row, "editor_id"),
			Field:     rowString(row, "field"),
			OldValue:  rowString(row, "old_value"),
			NewValue:  rowString(row, "new_value"),
			CreatedAt: rowTime(row, "created_at"),
		})
	}
	return revisions, nil
}
