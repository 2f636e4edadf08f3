package store

import (
	"fmt"
	"time"

	"github.com/steamtestpanel/steam-test-panel/pkg/models"
)

// AllSettings returns every site setting
func (s *Store) AllSettings() ([]models.SiteSetting, error) {
	rows, err := s.DB.ExecuteQuery("SELECT name, value, updated_at FROM site_settings ORDER BY name")
	if err != nil {
		return nil, err
	}

	settings := make([]models.SiteSetting, 0, len(rows))
	for _, row := range rows {
		settings = append(settings, models.SiteSetting{
			Name:      rowString(row, "name"),
			Value:     rowString(row, "value"),
			UpdatedAt: rowTime(row, "updated_at"),
		})
	}
	return settings, nil
}

// GetSetting returns one site setting by name
func (s *Store) GetSetting(name string) (*models.SiteSetting, error) {
	rows, err := s.DB.ExecuteQuery("SELECT name, value, updated_at FROM site_settings WHERE name = ?", name)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("setting %q not found", name)
	}

	return &models.SiteSetting{
		Name:      rowString(rows[0], "name"),
		Value:     rowString(rows[0], "value"),
		UpdatedAt: rowTime(rows[0], "updated_at"),
	}, nil
}

// SetSetting creates or updates a site setting
func (s *Store) SetSetting(name, value string) error {
	_, err := s.DB.ExecuteStatement(
		"REPLACE INTO site_settings (name, value, updated_at) VALUES (?, ?, ?)",
		name, value, time.Now())
	return err
}
