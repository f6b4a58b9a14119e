//go:build !windows

package infra

import (
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/dwmlock/internal/domain"
)

// NewPlatform is only available on Windows.
func NewPlatform(logger *zap.Logger) (domain.Platform, error) {
	logger.Debug("lock platform requested on unsupported OS")
	return domain.Platform{}, domain.ErrUnsupportedPlatform
}

// NewMonitorEnumerator is only available on Windows.
func NewMonitorEnumerator() (domain.MonitorEnumerator, error) {
	return nil, domain.ErrUnsupportedPlatform
}
