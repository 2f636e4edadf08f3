package store

import (
	"fmt"
	"time"

	"github.com/steamtestpanel/steam-test-panel/pkg/models"
)

func scanTemplate(row map[string]interface{}) models.TestTemplate {
	return models.TestTemplate{
		ID:          rowInt64(row, "id"),
		Name:        rowString(row, "name"),
		Description: rowString(row, "description"),
		Body:        rowString(row, "body"),
		CreatedBy:   rowInt64(row, "created_by"),
		CreatedAt:   rowTime(row, "created_at"),
	}
}

// ListTemplates returns every test template
func (s *Store) ListTemplates() ([]models.TestTemplate, error) {
	rows, err := s.DB.ExecuteQuery(
		"SELECT id, name, description, body, created_by, created_at FROM test_templates ORDER BY name")
	if err != nil {
		return nil, err
	}

	templates := make([]models.TestTemplate, 0, len(rows))
	for _, row := range rows {
		templates = append(templates, scanTemplate(row))
	}
	return templates, nil
}

// GetTemplate returns one test template by id
func (s *Store) GetTemplate(id int64) (*models.TestTemplate, error) {
	rows, err := s.DB.ExecuteQuery(
		"SELECT id, name, description, body, created_by, created_at FROM test_templates WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("template %d not found", id)
	}

	template := scanTemplate(rows[0])
	return &template, nil
}

// CreateTemplate inserts a new test template
func (s *Store) CreateTemplate(name, description, body string, createdBy int64) (*models.TestTemplate, error) {
	id, err := s.DB.LastInsertID(
		"INSERT INTO test_templates (name, description, body, created_by, created_at) VALUES (?, ?, ?, ?, ?)",
		name, description, body, createdBy, time.Now())
	if err != nil {
		return nil, err
	}
	return s.GetTemplate(id)
}

// DeleteTemplate removes a test template
func (s *Store) DeleteTemplate(id int64) error {
	affected, err := s.DB.ExecuteStatement("DELETE FROM test_templates WHERE id = ?", id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("template %d not found", id)
	}
	return nil
}
