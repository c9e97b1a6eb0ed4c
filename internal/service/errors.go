package service

import (
	"fmt"

	"github.com/zizouhuweidi/trivia/internal/domain"
)

// invalid wraps domain.ErrInvalidInput with a reason kept for logs
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, fmt.Sprintf(format, args...))
}
