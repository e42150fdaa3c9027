package service

import (
	"errors"
	"fmt"

	"github.com/station-rewards/internal/logger"

	"gorm.io/gorm"
)

// isConflict 唯一键冲突或并发更新冲突，可整体重试
func isConflict(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrConcurrentUpdate)
}

// retryOnConflict 冲突时重新执行 fn，超过次数后返回 ErrConcurrentUpdate
func retryOnConflict(op string, attempts int, fn func() error) error {
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for i := 1; i <= attempts; i++ {
		err = fn()
		if err == nil || !isConflict(err) {
			return err
		}
		logger.Warnw("conflict_retry", "op", op, "attempt", i, "error", err)
	}
	return fmt.Errorf("%w: %s: %v", ErrConcurrentUpdate, op, err)
}
