package store

import (
	"fmt"
	"time"

	"github.com/steamtestpanel/steam-test-panel/pkg/models"
)

func scanUser(row map[string]interface{}) models.User {
	return models.User{
		ID:        rowInt64(row, "id"),
		Username:  rowString(row, "username"),
		Email:     rowString(row, "email"),
		Role:      rowString(row, "role"),
		Active:    rowBool(row, "active"),
		CreatedAt: rowTime(row, "created_at"),
	}
}

// ListUsers returns all user accounts
func (s *Store) ListUsers() ([]models.User, error) {
	rows, err := s.DB.ExecuteQuery(
		"SELECT id, username, email, role, active, created_at FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, scanUser(row))
	}
	return users, nil
}

// GetUser returns one user by id
func (s *Store) GetUser(id int64) (*models.User, error) {
	rows, err := s.DB.ExecuteQuery(
		"SELECT id, username, email, role, active, created_at FROM users WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("user %d not found", id)
	}

	user := scanUser(rows[0])
	return &user, nil
}

// CreateUser inserts a new user account
func (s *Store) CreateUser(username, email, role string) (*models.User, error) {
	if role == "" {
		role = "tester"
	}

	id, err := s.DB.LastInsertID(
		"INSERT INTO users (username, email, role, active, created_at) VALUES (?, ?, ?, 1, ?)",
		username, email, role, time.Now())
	if err != nil {
		return nil, err
	}
	return s.GetUser(id)
}

// SetUserActive enables or disables a user account
func (s *Store) SetUserActive(id int64, active bool) error {
	affected, err := s.DB.ExecuteStatement("UPDATE users SET active = ? WHERE id = ?", active, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("user %d not found", id)
	}
	return nil
}

// ListActiveUserIDs returns the ids of all active users
func (s *Store) ListActiveUserIDs() ([]int64, error) {
	rows, err := s.DB.ExecuteQuery("SELECT id FROM users WHERE active = 1 ORDER BY id")
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, rowInt64(row, "id"))
	}
	return ids, nil
}
