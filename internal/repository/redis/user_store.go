package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"sms-storefront/internal/client"
	"sms-storefront/internal/models"
	"sms-storefront/internal/util"
)

const (
	userPrefix      = "user:"
	userEmailPrefix = "user_email:"
)

// UserStore keeps user records as hashes with a unique email index.
type UserStore struct {
	client client.KVClient
}

func NewUserStore(kv client.KVClient) *UserStore {
	return &UserStore{client: kv}
}

// Create claims the email index before writing the record, so two signups
// racing on one address cannot both succeed.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	claimed, err := s.client.SetNX(ctx, userEmailPrefix+user.Email, user.ID, 0)
	if err != nil {
		return fmt.Errorf("failed to reserve email: %w", err)
	}
	if !claimed {
		return ErrEmailTaken
	}

	if err := s.client.HSet(ctx, userPrefix+user.ID, userFields(user)); err != nil {
		_ = s.client.Del(ctx, userEmailPrefix+user.Email)
		util.Error("Failed to store user", util.String("user_id", user.ID), util.ErrorField(err))
		return fmt.Errorf("failed to store user: %w", err)
	}
	return nil
}

func (s *UserStore) Get(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	fields, err := s.client.HGetAll(ctx, userPrefix+id)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrUserNotFound
	}
	return userFromFields(fields)
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	lookupCtx, cancel := withTimeout(ctx)
	id, err := s.client.Get(lookupCtx, userEmailPrefix+email)
	cancel()
	if err != nil {
		if errors.Is(err, client.ErrKeyNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	return s.Get(ctx, id)
}

// SetBalance overwrites the stored balance. Concurrent writers race; the last
// write wins.
func (s *UserStore) SetBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := s.client.HSet(ctx, userPrefix+id, map[string]string{"balance": balance.String()}); err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	return nil
}

// UpdateProfile writes name and email. When the email changes the new
// address is claimed first and the old index entry released afterwards.
func (s *UserStore) UpdateProfile(ctx context.Context, user *models.User, previousEmail string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	emailChanged := user.Email != previousEmail
	if emailChanged {
		claimed, err := s.client.SetNX(ctx, userEmailPrefix+user.Email, user.ID, 0)
		if err != nil {
			return fmt.Errorf("failed to reserve email: %w", err)
		}
		if !claimed {
			return ErrEmailTaken
		}
	}

	err := s.client.HSet(ctx, userPrefix+user.ID, map[string]string{
		"name":  user.Name,
		"email": user.Email,
	})
	if err != nil {
		if emailChanged {
			_ = s.client.Del(ctx, userEmailPrefix+user.Email)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	if emailChanged {
		if err := s.client.Del(ctx, userEmailPrefix+previousEmail); err != nil {
			util.Warn("Failed to release previous email", util.String("user_id", user.ID), util.ErrorField(err))
		}
	}
	return nil
}

func userFields(u *models.User) map[string]string {
	return map[string]string{
		"id":            u.ID,
		"name":          u.Name,
		"email":         u.Email,
		"password_hash": u.PasswordHash,
		"balance":       u.Balance.String(),
		"created_at":    formatTime(u.CreatedAt),
	}
}

func userFromFields(f map[string]string) (*models.User, error) {
	balance, err := parseDecimal("balance", f["balance"])
	if err != nil {
		return nil, err
	}
	return &models.User{
		ID:           f["id"],
		Name:         f["name"],
		Email:        f["email"],
		PasswordHash: f["password_hash"],
		Balance:      balance,
		CreatedAt:    parseTime(f["created_at"]),
	}, nil
}
