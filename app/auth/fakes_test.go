package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/mytheresa/retail-manager/models"
)

type MockSessions struct {
	Tokens    map[string]uint
	LookupErr error
	CreateErr error
	Deleted   []string
	created   int
}

func (m *MockSessions) Create(ctx context.Context, userID uint) (string, error) {
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	if m.Tokens == nil {
		m.Tokens = map[string]uint{}
	}
	m.created++
	token := fmt.Sprintf("token-%d", m.created)
	m.Tokens[token] = userID
	return token, nil
}

func (m *MockSessions) Lookup(ctx context.Context, token string) (uint, error) {
	if m.LookupErr != nil {
		return 0, m.LookupErr
	}
	id, ok := m.Tokens[token]
	if !ok {
		return 0, ErrSessionNotFound
	}
	return id, nil
}

func (m *MockSessions) Delete(ctx context.Context, token string) error {
	m.Deleted = append(m.Deleted, token)
	delete(m.Tokens, token)
	return nil
}

type MockUsers struct {
	Users []models.User
	Err   error
}

func (m *MockUsers) GetByID(id uint) (*models.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.Users {
		if u.ID == id {
			user := u
			return &user, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (m *MockUsers) GetByUsername(username string) (*models.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.Users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func newUser(id uint, username, password string, staff, superuser bool) models.User {
	u := models.User{ID: id, Username: username, IsStaff: staff, IsSuperuser: superuser, IsActive: true}
	if err := u.SetPassword(password); err != nil {
		panic(err)
	}
	return u
}

var errRedisDown = errors.New("redis down")
