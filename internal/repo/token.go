package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/role_gate/internal/models"
)

// lockUser takes a row lock on the user. SQLite has no row locks; its single
// writer already serialises the transaction.
func (r *GormRepo) lockUser(tx *gorm.DB, userID string) error {
	q := tx
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var user models.User
	err := q.Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (r *GormRepo) revokeUserTokens(tx *gorm.DB, userID string) error {
	return tx.Where("user_id = ?", userID).Delete(&models.AccessToken{}).Error
}

// ReplaceUserTokens revokes every token of the user and stores tok as the
// only live one. Both steps run in one transaction holding the user row lock,
// so concurrent logins of the same user leave exactly one token behind.
func (r *GormRepo) ReplaceUserTokens(ctx context.Context, userID string, tok *models.AccessToken) error {
	tok.UserID = userID
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.lockUser(tx, userID); err != nil {
			return err
		}

		if err := r.revokeUserTokens(tx, userID); err != nil {
			return fmt.Errorf("revoke tokens: %w", err)
		}

		if err := tx.Create(tok).Error; err != nil {
			return fmt.Errorf("store token: %w", err)
		}

		return nil
	})
}

func (r *GormRepo) FindToken(ctx context.Context, jti, tokenHash string) (*models.AccessToken, error) {
	var tok models.AccessToken
	if err := r.DB.WithContext(ctx).
		Where("jti = ? AND token_hash = ?", jti, tokenHash).
		First(&tok).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("find token: %w", err)
	}
	return &tok, nil
}

// RevokeToken deletes a single token by JTI. Revoking an unknown JTI is not
// an error.
func (r *GormRepo) RevokeToken(ctx context.Context, jti string) error {
	return r.DB.WithContext(ctx).
		Where("jti = ?", jti).
		Delete(&models.AccessToken{}).Error
}

func (r *GormRepo) CountUserTokens(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.AccessToken{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
