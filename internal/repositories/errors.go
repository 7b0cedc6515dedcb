package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// IsNotFoundError reports whether err is the driver's missing-row error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
