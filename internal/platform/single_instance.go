package platform

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net"
)

// ErrAlreadyRunning indicates another instance already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

const (
	minGuardPort = 20000
	maxGuardPort = 39999
)

// InstanceGuard holds the process-wide single instance lock.
type InstanceGuard struct {
	listener net.Listener
}

// AcquireSingleInstance claims the loopback port derived from name.
// A second claim for the same name fails with ErrAlreadyRunning until the
// first guard is released or its process exits.
func AcquireSingleInstance(name string) (*InstanceGuard, error) {
	address := fmt.Sprintf("127.0.0.1:%d", guardPort(name))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRunning, address)
	}
	return &InstanceGuard{listener: listener}, nil
}

// Release frees the lock. It is safe on a nil guard.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.listener == nil {
		return nil
	}
	err := guard.listener.Close()
	guard.listener = nil
	return err
}

// Address returns the bound address.
func (guard *InstanceGuard) Address() string {
	if guard == nil || guard.listener == nil {
		return ""
	}
	return guard.listener.Addr().String()
}

func guardPort(name string) int {
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(name))
	return minGuardPort + int(hash.Sum32()%uint32(maxGuardPort-minGuardPort+1))
}
