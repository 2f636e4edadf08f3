package store

import (
	"fmt"
	"time"

	"github.com/steamtestpanel/steam-test-panel/pkg/models"
)

func scanRetestRequest(row map[string]interface{}) models.RetestRequest {
	return models.RetestRequest{
		ID:          rowInt64(row, "id"),
		ReportID:    rowInt64(row, "report_id"),
		TestKey:     rowString(row, "test_key"),
		RequestedBy: rowInt64(row, "requested_by"),
		Status:      rowString(row, "status"),
		CreatedAt:   rowTime(row, "created_at"),
		ResolvedAt:  rowNullTime(row, "resolved_at"),
	}
}

// ListRetestRequests returns retest requests, optionally filtered by status
func (s *Store) ListRetestRequests(status string) ([]models.RetestRequest, error) {
	query := "SELECT id, report_id, test_key, requested_by, status, created_at, resolved_at FROM retest_requests"
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

	requests := make([]models.RetestRequest, 0, len(rows))
	for _, row := range rows {
		requests = append(requests, scanRetestRequest(row))
	}
	return requests, nil
}

// CreateRetestRequest queues a test for re-running
func (s *Store) CreateRetestRequest(reportID int64, testKey string, requestedBy int64) (int64, error) {
	return s.DB.LastInsertID(
		"INSERT INTO retest_requests (report_id, test_key, requested_by, status, created_at) VALUES (?, ?, ?, 'open', ?)",
		reportID, testKey, requestedBy, time.Now())
}

// ResolveRetestRequest closes an open retest request
func (s *Store) ResolveRetestRequest(id int64) error {
	affected, err := s.DB.ExecuteStatement(
		"UPDATE retest_requests SET status = 'resolved', resolved_at = ? WHERE id = ? AND status = 'open'",
		time.Now(), id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("retest request %d not found or already resolved", id)
	}
	return nil
}

// MarkTestFixed records that a test passes as of a given client version and
// resolves any open retest requests for that test
func (s *Store) MarkTestFixed(testKey string, versionID, markedBy int64) (int64, error) {
	id, err := s.DB.LastInsertID(
		"INSERT INTO fixed_tests (test_key, version_id, marked_by, created_at) VALUES (?, ?, ?, ?)",
		testKey, versionID, markedBy, time.Now())
	if err != nil {
		return 0, err
	}

	if _, err := s.DB.ExecuteStatement(
		"UPDATE retest_requests SET status = 'resolved', resolved_at = ? WHERE test_key = ? AND status = 'open'",
		time.Now(), testKey); err != nil {
		s.Logger.Warningf("Failed to resolve retest requests for test %s: %v", testKey, err)
	}

	return id, nil
}

// ListFixedTests returns all fixed-test records, newest first
func (s *Store) ListFixedTests() ([]models.FixedTest, error) {
	rows, err := s.DB.ExecuteQuery(
		"SELECT id, test_key, version_id, marked_by, created_at FROM fixed_tests ORDER BY id DESC")
	if err != nil {
		return nil, err
	}

	fixed := make([]models.FixedTest, 0, len(rows))
	for _, row := range rows {
		fixed = append(fixed, models.FixedTest{
			ID:        rowInt64(row, "id"),
			TestKey:   rowString(row, "test_key"),
			VersionID: rowInt64(row, "version_id"),
			MarkedBy:  rowInt64(row, "marked_by"),
			CreatedAt: rowTime(row, "created_at"),
		})
	}
	return fixed, nil
}
