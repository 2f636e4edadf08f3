package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/steamtestpanel/steam-test-panel/pkg/models"
)

func scanInvite(row map[string]interface{}) models.InviteCode {
	return models.InviteCode{
		ID:        rowInt64(row, "id"),
		Code:      rowString(row, "code"),
		CreatedBy: rowInt64(row, "created_by"),
		Role:      rowString(row, "role"),
		UsedBy:    rowNullInt64(row, "used_by"),
		UsedAt:    rowNullTime(row, "used_at"),
		CreatedAt: rowTime(row, "created_at"),
	}
}

// ListInvites returns every invite code, newest first
func (s *Store) ListInvites() ([]models.InviteCode, error) {
	rows, err := s.DB.ExecuteQuery(
		"SELECT id, code, created_by, role, used_by, used_at, created_at FROM invite_codes ORDER BY id DESC")
	if err != nil {
		return nil, err
	}

	invites := make([]models.InviteCode, 0, len(rows))
	for _, row := range rows {
		invites = append(invites, scanInvite(row))
	}
	return invites, nil
}

// CreateInvite generates a fresh single-use invite code
func (s *Store) CreateInvite(createdBy int64, role string) (*models.InviteCode, error) {
	if role == "" {
		role = "tester"
	}

	code := uuid.NewString()
	now := time.Now()

	id, err := s.DB.LastInsertID(
		"INSERT INTO invite_codes (code, created_by, role, created_at) VALUES (?, ?, ?, ?)",
		code, createdBy, role, now)
	if err != nil {
		return nil, err
	}

	return &models.InviteCode{
		ID:        id,
		Code:      code,
		CreatedBy: createdBy,
		Role:      role,
		CreatedAt: now,
	}, nil
}

// RedeemInvite consumes an unused invite code and creates the user account
// it grants. The role comes from the invite, not from the caller.
func (s *Store) RedeemInvite(code, username, email string) (*models.User, error) {
	rows, err := s.DB.ExecuteQuery(
		"SELECT id, code, created_by, role, used_by, used_at, created_at FROM invite_codes WHERE code = ?", code)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("invite code not found")
	}

	invite := scanInvite(rows[0])
	if invite.UsedBy != nil {
		return nil, fmt.Errorf("invite code already used")
	}

	user, err := s.CreateUser(username, email, invite.Role)
	if err != nil {
		return nil, err
	}

	// Guard against concurrent redemption of the same code
	affected, err := s.DB.ExecuteStatement(
		"UPDATE invite_codes SET used_by = ?, used_at = ? WHERE id = ? AND used_by IS NULL",
		user.ID, time.Now(), invite.ID)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, fmt.Errorf("invite code already used")
	}

	return user, nil
}
