// Package utils provides small helpers shared by the HTTP layer that carry
// no promo-specific logic.
package utils

import (
	"strconv"
	"strings"
)

// AtoiDefault parses s as an int, returning def when s is blank or invalid.
//
//	utils.AtoiDefault("42", 0) // 42
//	utils.AtoiDefault("", 10)  // 10
func AtoiDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Page resolves page and page-size query values. page is at least 1;
// size falls back to def and is capped at max.
func Page(pageStr, sizeStr string, def, max int) (page, size int) {
	page = AtoiDefault(pageStr, 1)
	if page < 1 {
		page = 1
	}
	size = AtoiDefault(sizeStr, def)
	if size < 1 {
		size = def
	}
	return page, Clamp(size, 1, max)
}

// TotalPages returns how many pages of size hold total items.
func TotalPages(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
