package repo

import (
	"errors"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-promo-backend/internal/domain"
)

// LoadDiscountsFile reads a batch persisted by a previous run. A missing,
// unreadable or malformed file is logged and yields an empty batch, so the
// caller treats the run as having no history.
func LoadDiscountsFile(path string) []domain.Discount {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn().Str("path", path).Msg("no previous batch, treating as empty")
		} else {
			log.Warn().Err(err).Str("path", path).Msg("read batch failed, treating as empty")
		}
		return []domain.Discount{}
	}

	out, err := domain.DecodeDiscounts(b)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("malformed batch, treating as empty")
		return []domain.Discount{}
	}
	return out
}
