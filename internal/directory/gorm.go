package directory

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/role_gate/internal/models"
)

// GormDirectory searches the users table directly. It needs no index, so
// Index is a no-op.
type GormDirectory struct {
	DB *gorm.DB
}

func (d *GormDirectory) Index(context.Context, *models.User) error { return nil }

func (d *GormDirectory) Search(ctx context.Context, query string, from, size int) (int64, []Entry, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	matching := func() *gorm.DB {
		return d.DB.WithContext(ctx).Model(&models.User{}).
			Where("LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\'", pattern, pattern)
	}

	var total int64
	if err := matching().Count(&total).Error; err != nil {
		return 0, nil, fmt.Errorf("count users: %w", err)
	}

	var users []models.User
	if err := matching().Order("name").Order("id").Offset(from).Limit(size).Find(&users).Error; err != nil {
		return 0, nil, fmt.Errorf("search users: %w", err)
	}

	entries := make([]Entry, len(users))
	for i := range users {
		entries[i] = EntryFromUser(&users[i])
	}
	return total, entries, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
