//go:build darwin

package platform

import (
	"time"

	"eyebreak/internal/core/timekeeper"
)

type unsupportedIdleProvider struct{}

func newIdleProvider() IdleProvider {
	return unsupportedIdleProvider{}
}

func (unsupportedIdleProvider) IdleDuration() (time.Duration, error) {
	return 0, timekeeper.ErrIdleUnsupported
}
