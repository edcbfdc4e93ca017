package redis

import (
	"context"
	"fmt"

	"sms-storefront/internal/client"
	"sms-storefront/internal/models"
	"sms-storefront/internal/util"
)

const (
	transactionPrefix      = "transaction:"
	userTransactionsSuffix = ":transactions"
)

// TransactionStore is an append-only log of balance mutations per user.
type TransactionStore struct {
	client client.KVClient
}

func NewTransactionStore(kv client.KVClient) *TransactionStore {
	return &TransactionStore{client: kv}
}

func (s *TransactionStore) Append(ctx context.Context, tx *models.Transaction) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	err := s.client.HSet(ctx, transactionPrefix+tx.ID, map[string]string{
		"id":          tx.ID,
		"user_id":     tx.UserID,
		"amount":      tx.Amount.String(),
		"type":        string(tx.Type),
		"description": tx.Description,
		"created_at":  formatTime(tx.CreatedAt),
	})
	if err != nil {
		return fmt.Errorf("failed to store transaction: %w", err)
	}

	if err := s.client.LPush(ctx, userPrefix+tx.UserID+userTransactionsSuffix, tx.ID); err != nil {
		_ = s.client.Del(ctx, transactionPrefix+tx.ID)
		return fmt.Errorf("failed to index transaction: %w", err)
	}

	util.Debug("Transaction appended",
		util.String("user_id", tx.UserID),
		util.String("type", string(tx.Type)),
		util.Stringer("amount", tx.Amount),
	)
	return nil
}

// Remove deletes a transaction record. Its index entry is left behind and
// skipped by List.
func (s *TransactionStore) Remove(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := s.client.Del(ctx, transactionPrefix+id); err != nil {
		return fmt.Errorf("failed to remove transaction: %w", err)
	}
	return nil
}

// List returns the user's transactions newest first. Index entries whose
// record has disappeared are skipped.
func (s *TransactionStore) List(ctx context.Context, userID string) ([]models.Transaction, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	ids, err := s.client.LRange(ctx, userPrefix+userID+userTransactionsSuffix, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	out := make([]models.Transaction, 0, len(ids))
	for _, id := range ids {
		fields, err := s.client.HGetAll(ctx, transactionPrefix+id)
		if err != nil {
			return nil, fmt.Errorf("failed to load transaction %s: %w", id, err)
		}
		if len(fields) == 0 {
			continue
		}
		amount, err := parseDecimal("amount", fields["amount"])
		if err != nil {
			return nil, err
		}
		out = append(out, models.Transaction{
			ID:          fields["id"],
			UserID:      fields["user_id"],
			Amount:      amount,
			Type:        models.TransactionType(fields["type"]),
			Description: fields["description"],
			CreatedAt:   parseTime(fields["created_at"]),
		})
	}
	return out, nil
}
