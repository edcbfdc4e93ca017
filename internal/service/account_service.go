package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sms-storefront/internal/events"
	"sms-storefront/internal/models"
	"sms-storefront/internal/repository/redis"
	"sms-storefront/internal/util"
)

const creditDescription = "Added funds to account"

type ProfileUpdate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AccountService manages balances, the transaction log and profiles. All
// state lives in the fallback store.
type AccountService struct {
	users        *redis.UserStore
	transactions *redis.TransactionStore
	events       events.Publisher
	now          func() time.Time
}

func NewAccountService(users *redis.UserStore, transactions *redis.TransactionStore, publisher events.Publisher) *AccountService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &AccountService{
		users:        users,
		transactions: transactions,
		events:       publisher,
		now:          time.Now,
	}
}

func (s *AccountService) Balance(user *models.User) models.Balance {
	return models.Balance{
		UserID:    user.ID,
		Amount:    user.Balance,
		UpdatedAt: s.now().UTC(),
	}
}

// Credit adds amount to the balance and appends one CREDIT transaction.
// The transaction is written first and withdrawn if the balance write fails,
// so the log never misses a mutation. The read-modify-write is not guarded
// against concurrent writers.
func (s *AccountService) Credit(ctx context.Context, user *models.User, amount decimal.Decimal) (models.Balance, error) {
	if !amount.IsPositive() {
		return models.Balance{}, invalid("Invalid amount")
	}

	newBalance := user.Balance.Add(amount)
	if err := s.apply(ctx, user, newBalance, amount, models.TransactionCredit, creditDescription); err != nil {
		return models.Balance{}, err
	}

	s.events.Publish(ctx, models.EventBalanceCredited, user.ID, map[string]string{
		"amount":  amount.String(),
		"balance": newBalance.String(),
	})
	return s.Balance(user), nil
}

// Debit subtracts amount after checking the balance covers it.
func (s *AccountService) Debit(ctx context.Context, user *models.User, amount decimal.Decimal, description string) error {
	if user.Balance.LessThan(amount) {
		return ErrInsufficientBalance
	}

	newBalance := user.Balance.Sub(amount)
	if err := s.apply(ctx, user, newBalance, amount, models.TransactionDebit, description); err != nil {
		return err
	}

	s.events.Publish(ctx, models.EventBalanceDebited, user.ID, map[string]string{
		"amount":  amount.String(),
		"balance": newBalance.String(),
	})
	return nil
}

func (s *AccountService) apply(ctx context.Context, user *models.User, newBalance, amount decimal.Decimal, kind models.TransactionType, description string) error {
	tx := &models.Transaction{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Amount:      amount,
		Type:        kind,
		Description: description,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.transactions.Append(ctx, tx); err != nil {
		return err
	}

	if err := s.users.SetBalance(ctx, user.ID, newBalance); err != nil {
		if rmErr := s.transactions.Remove(ctx, tx.ID); rmErr != nil {
			util.Error("Transaction recorded without balance change",
				util.String("user_id", user.ID),
				util.String("transaction_id", tx.ID),
				util.ErrorField(rmErr),
			)
		}
		return err
	}
	user.Balance = newBalance
	return nil
}

func (s *AccountService) Transactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	return s.transactions.List(ctx, userID)
}

// UpdateProfile applies non-empty fields. A changed email must be valid and
// not already registered.
func (s *AccountService) UpdateProfile(ctx context.Context, user *models.User, update ProfileUpdate) (*models.User, error) {
	previousEmail := user.Email
	updated := *user

	if name := util.SanitizeInput(update.Name); name != "" {
		updated.Name = name
	}
	if strings.TrimSpace(update.Email) != "" {
		email, ok := util.NormalizeEmail(update.Email)
		if !ok {
			return nil, invalid("Invalid email address")
		}
		updated.Email = email
	}

	if err := s.users.UpdateProfile(ctx, &updated, previousEmail); err != nil {
		if errors.Is(err, redis.ErrEmailTaken) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.events.Publish(ctx, models.EventUserUpdated, updated.ID, nil)
	return &updated, nil
}
