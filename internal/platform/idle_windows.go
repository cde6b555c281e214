//go:build windows

package platform

import (
	"fmt"
	"syscall"
	"time"
	"unsafe"
)

var (
	user32               = syscall.NewLazyDLL("user32.dll")
	kernel32             = syscall.NewLazyDLL("kernel32.dll")
	procGetLastInputInfo = user32.NewProc("GetLastInputInfo")
	procGetTickCount64   = kernel32.NewProc("GetTickCount64")
)

type lastInputInfo struct {
	cbSize uint32
	dwTime uint32
}

type win32IdleProvider struct{}

func newIdleProvider() IdleProvider {
	return win32IdleProvider{}
}

func (win32IdleProvider) IdleDuration() (time.Duration, error) {
	info := lastInputInfo{cbSize: uint32(unsafe.Sizeof(lastInputInfo{}))}
	result, _, err := procGetLastInputInfo.Call(uintptr(unsafe.Pointer(&info)))
	if result == 0 {
		return 0, fmt.Errorf("get last input info: %w", err)
	}

	now, _, _ := procGetTickCount64.Call()
	// GetLastInputInfo reports a 32-bit tick count that wraps every ~49 days.
	idleMillis := uint32(uint64(now)) - info.dwTime
	return time.Duration(idleMillis) * time.Millisecond, nil
}
