// Package notify implements the readiness notification capability: a
// systemd backend that calls sd_notify(READY=1), and a no-op for runs
// without a service manager.
package notify

import (
	"github.com/coreos/go-systemd/v22/daemon"
)

// SystemdNotifier announces readiness to systemd via the
// NOTIFY_SOCKET protocol.
type SystemdNotifier struct{}

// NewSystemdNotifier builds a SystemdNotifier.
func NewSystemdNotifier() SystemdNotifier {
	return SystemdNotifier{}
}

// NotifyReady sends READY=1. If the process was not started under
// systemd (no NOTIFY_SOCKET in the environment), SdNotify reports
// false with a nil error and this is treated as success - there is
// simply nobody to notify.
func (SystemdNotifier) NotifyReady() error {
	_, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	return err
}

// NoopNotifier is the readiness backend for runs without --systemd.
type NoopNotifier struct{}

// NewNoopNotifier builds a NoopNotifier.
func NewNoopNotifier() NoopNotifier {
	return NoopNotifier{}
}

// NotifyReady does nothing.
func (NoopNotifier) NotifyReady() error {
	return nil
}
