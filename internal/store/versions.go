package store

import (
	"fmt"
	"time"

	"github.com/steamtestpanel/steam-test-panel/pkg/models"
)

func scanClientVersion(row map[string]interface{}) models.ClientVersion {
	return models.ClientVersion{
		ID:         rowInt64(row, "id"),
		Version:    rowString(row, "version"),
		Branch:     rowString(row, "branch"),
		ReleasedAt: rowTime(row, "released_at"),
		Current:    rowBool(row, "current"),
	}
}

// ListVersions returns all tracked client versions, newest first
func (s *Store) ListVersions() ([]models.ClientVersion, error) {
	rows, err := s.DB.ExecuteQuery(
		"SELECT id, version, branch, released_at, current FROM client_versions ORDER BY id DESC")
	if err != nil {
		return nil, err
	}

	versions := make([]models.ClientVersion, 0, len(rows))
	for _, row := range rows {
		versions = append(versions, scanClientVersion(row))
	}
	return versions, nil
}

// GetVersion returns one client version by id
func (s *Store) GetVersion(id int64) (*models.ClientVersion, error) {
	rows, err := s.DB.ExecuteQuery(
		"SELECT id, version, branch, released_at, current FROM client_versions WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("client version %d not found", id)
	}

	version := scanClientVersion(rows[0])
	return &version, nil
}

// CreateVersion registers a new client build. When markCurrent is set the
// previous current version is demoted and every active user gets a
// notification about the new build.
func (s *Store) CreateVersion(version, branch string, markCurrent bool) (*models.ClientVersion, error) {
	if branch == "" {
		branch = "stable"
	}

	now := time.Now()
	id, err := s.DB.LastInsertID(
		"INSERT INTO client_versions (version, branch, released_at, current) VALUES (?, ?, ?, ?)",
		version, branch, now, markCurrent)
	if err != nil {
		return nil, err
	}

	if markCurrent {
		if _, err := s.DB.ExecuteStatement("UPDATE client_versions SET current = 0 WHERE id != ?", id); err != nil {
			s.Logger.Warningf("Failed to demote previous current version: %v", err)
		}
		if err := s.notifyAllUsers(id); err != nil {
			s.Logger.Warningf("Failed to create version notifications: %v", err)
		}
	}

	return s.GetVersion(id)
}

// notifyAllUsers inserts one notification per active user for a new version
func (s *Store) notifyAllUsers(versionID int64) error {
	userIDs, err := s.ListActiveUserIDs()
	if err != nil {
		return err
	}
	if len(userIDs) == 0 {
		return nil
	}

	now := time.Now()
	params := make([][]interface{}, 0, len(userIDs))
	for _, userID := range userIDs {
		params = append(params, []interface{}{versionID, userID, now})
	}

	_, err = s.DB.ExecuteMany(
		"INSERT INTO version_notifications (version_id, user_id, created_at) VALUES (?, ?, ?)", params)
	return err
}

// ListNotifications returns a user's version notifications, unseen first
func (s *Store) ListNotifications(userID int64) ([]models.VersionNotification, error) {
	rows, err := s.DB.ExecuteQuery(
		"SELECT id, version_id, user_id, seen_at, created_at FROM version_notifications WHERE user_id = ? ORDER BY seen_at IS NOT NULL, id DESC", userID)
	if err != nil {
		return nil, err
	}

	notifications := make([]models.VersionNotification, 0, len(rows))
	for _, row := range rows {
		notifications = append(notifications, models.VersionNotification{
			ID:        rowInt64(row, "id"),
			VersionID: rowInt64(row, "version_id"),
			UserID:    rowInt64(row, "user_id"),
			SeenAt:    rowNullTime(row, "seen_at"),
			CreatedAt: rowTime(row, "created_at"),
		})
	}
	return notifications, nil
}

// MarkNotificationSeen stamps a notification as seen
func (s *Store) MarkNotificationSeen(id int64) error {
	affected, err := s.DB.ExecuteStatement(
		"UPDATE version_notifications SET seen_at = ? WHERE id = ? AND seen_at IS NULL", time.Now(), id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("notification %d not found or already seen", id)
	}
	return nil
}
