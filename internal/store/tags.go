package store

import (
	"fmt"

	"github.com/steamtestpanel/steam-test-panel/pkg/models"
)

// ListTags returns every report tag
func (s *Store) ListTags() ([]models.ReportTag, error) {
	rows, err := s.DB.ExecuteQuery("SELECT id, name, color FROM report_tags ORDER BY name")
	if err != nil {
		return nil, err
	}

	tags := make([]models.ReportTag, 0, len(rows))
	for _, row := range rows {
		tags = append(tags, models.ReportTag{
			ID:    rowInt64(row, "id"),
			Name:  rowString(row, "name"),
			Color: rowString(row, "color"),
		})
	}
	return tags, nil
}

// CreateTag inserts a new tag
func (s *Store) CreateTag(name, color string) (*models.ReportTag, error) {
	if color == "" {
		color = "#888888"
	}

	id, err := s.DB.LastInsertID("INSERT INTO report_tags (name, color) VALUES (?, ?)", name, color)
	if err != nil {
		return nil, err
	}
	return &models.ReportTag{ID: id, Name: name, Color: color}, nil
}

// DeleteTag removes a tag and all its assignments
func (s *Store) DeleteTag(id int64) error {
	if _, err := s.DB.ExecuteStatement("DELETE FROM report_tag_assignments WHERE tag_id = ?", id); err != nil {
		return err
	}

	affected, err := s.DB.ExecuteStatement("DELETE FROM report_tags WHERE id = ?", id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("tag %d not found", id)
	}
	return nil
}

// AssignTag attaches a tag to a report. Duplicate assignments are rejected
// by the unique key and surface as an error.
func (s *Store) AssignTag(reportID, tagID int64) error {
	_, err := s.DB.ExecuteStatement(
		"INSERT INTO report_tag_assignments (report_id, tag_id) VALUES (?, ?)", reportID, tagID)
	return err
}

// UnassignTag detaches a tag from a report
func (s *Store) UnassignTag(reportID, tagID int64) error {
	affected, err := s.DB.ExecuteStatement(
		"DELETE FROM report_tag_assignments WHERE report_id = ? AND tag_id = ?", reportID, tagID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("tag %d is not assigned to report %d", tagID, reportID)
	}
	return nil
}

// ListReportTags returns the tags assigned to a report
func (s *Store) ListReportTags(reportID int64) ([]models.ReportTag, error) {
	rows, err := s.DB.ExecuteQuery(
		`SELECT t.id, t.name, t.color
		 FROM report_tags t
		 JOIN report_tag_assignments a ON a.tag_id = t.id
		 WHERE a.report_id = ?
		 ORDER BY t.name`, reportID)
	if err != nil {
		return nil, err
	}

	tags := make([]models.ReportTag, 0, len(rows))
	for _, row := range rows {
		tags = append(tags, models.ReportTag{
			ID:    rowInt64(row, "id"),
			Name:  rowString(row, "name"),
			Color: rowString(row, "color"),
		})
	}
	return tags, nil
}
