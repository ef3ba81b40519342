package notify

import "testing"

func TestNoopNotifier_NeverFails(t *testing.T) {
	if err := NewNoopNotifier().NotifyReady(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSystemdNotifier_NoSocket_NoError(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")
	if err := NewSystemdNotifier().NotifyReady(); err != nil {
		t.Errorf("unexpected error when no NOTIFY_SOCKET is set: %v", err)
	}
}
