package db

import (
	"gorm.io/gorm"
)

// NewestFirst orders by creation time descending, breaking ties on id so the
// order is stable for rows created in the same millisecond.
func NewestFirst() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC").Order("id DESC")
	}
}

// TitleOrBodyContains filters rows whose title or search text contains q,
// case-insensitively. q must already be lower-cased.
func TitleOrBodyContains(q string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q == "" {
			return db
		}
		pattern := "%" + escapeLike(q) + "%"
		return db.Where("LOWER(title) LIKE ? ESCAPE '!' OR search_text LIKE ? ESCAPE '!'", pattern, pattern)
	}
}

// TextContains keeps rows whose column contains s verbatim. column is a
// trusted identifier, never user input.
func TextContains(column, s string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" LIKE ? ESCAPE '!'", "%"+escapeLike(s)+"%")
	}
}

func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '!':
			out = append(out, '!')
		}
		out = append(out, s[i])
	}
	return string(out)
}
