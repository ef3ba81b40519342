// Package netenv implements the NetworkEnvironment capability: a
// single-method interface over whatever the host OS can tell us about
// WPAD, backed by a real NetworkManager D-Bus query and a no-op stub
// that the application uses when the system bus cannot be reached.
package netenv

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"pacproxy/internal/core/domain"
)

const (
	nmBusName        = "org.freedesktop.NetworkManager"
	nmObjectPath     = "/org/freedesktop/NetworkManager"
	nmActiveConnProp = "org.freedesktop.NetworkManager.ActiveConnections"
	dhcp4ConfigProp  = "org.freedesktop.NetworkManager.Connection.Active.Dhcp4Config"
	ip4ConfigProp    = "org.freedesktop.NetworkManager.Connection.Active.Ip4Config"
	dhcp4OptionsProp = "org.freedesktop.NetworkManager.DHCP4Config.Options"
	ip4DomainsProp   = "org.freedesktop.NetworkManager.IP4Config.Domains"
)

// DBusNetworkEnvironment queries the system bus's NetworkManager
// service for the DHCP-advertised WPAD option and the active
// connection's search domains.
type DBusNetworkEnvironment struct {
	conn *dbus.Conn
}

// NewDBusNetworkEnvironment connects to the system bus. Callers should
// fall back to NewStubNetworkEnvironment if this fails - a machine
// with no system bus is not fatal; with the stub there are no WPAD
// candidates, so the resolver falls back to Static(Direct).
func NewDBusNetworkEnvironment() (*DBusNetworkEnvironment, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("netenv: connect system bus: %w", err)
	}
	return &DBusNetworkEnvironment{conn: conn}, nil
}

// GetWPADInfo inspects the first active connection's DHCPv4 lease for
// a "wpad" option and collects its IPv4 search domains. A failure to
// list the active connections is reported as an error so the caller
// (the resolver) can fall back to Static(Direct); a failure to read
// the DHCPv4 or IPv4 config is not reported and only leaves the
// corresponding field empty.
func (e *DBusNetworkEnvironment) GetWPADInfo(ctx context.Context) (domain.WPADInfo, error) {
	nm := e.conn.Object(nmBusName, dbus.ObjectPath(nmObjectPath))

	activePaths, err := e.getObjectPaths(nm, nmActiveConnProp)
	if err != nil {
		return domain.WPADInfo{}, fmt.Errorf("netenv: list active connections: %w", err)
	}
	if len(activePaths) == 0 {
		return domain.WPADInfo{}, nil
	}

	active := e.conn.Object(nmBusName, activePaths[0])

	var info domain.WPADInfo

	if dhcp4Path, err := e.getObjectPath(active, dhcp4ConfigProp); err == nil && dhcp4Path != "" {
		dhcp4 := e.conn.Object(nmBusName, dhcp4Path)
		if opt, ok := e.getWPADOption(dhcp4); ok {
			info.WPADOption = &opt
		}
	}

	if ip4Path, err := e.getObjectPath(active, ip4ConfigProp); err == nil && ip4Path != "" {
		ip4 := e.conn.Object(nmBusName, ip4Path)
		if domains, err := e.getStrings(ip4, ip4DomainsProp); err == nil {
			info.Domains = domains
		}
	}

	return info, nil
}

func (e *DBusNetworkEnvironment) getWPADOption(dhcp4 dbus.BusObject) (string, bool) {
	variant, err := dhcp4.GetProperty(dhcp4OptionsProp)
	if err != nil {
		return "", false
	}
	options, ok := variant.Value().(map[string]dbus.Variant)
	if !ok {
		return "", false
	}
	wpad, ok := options["wpad"]
	if !ok {
		return "", false
	}
	s, ok := wpad.Value().(string)
	return s, ok
}

func (e *DBusNetworkEnvironment) getObjectPaths(obj dbus.BusObject, prop string) ([]dbus.ObjectPath, error) {
	variant, err := obj.GetProperty(prop)
	if err != nil {
		return nil, err
	}
	paths, ok := variant.Value().([]dbus.ObjectPath)
	if !ok {
		return nil, fmt.Errorf("netenv: unexpected type for %s", prop)
	}
	return paths, nil
}

func (e *DBusNetworkEnvironment) getObjectPath(obj dbus.BusObject, prop string) (dbus.ObjectPath, error) {
	variant, err := obj.GetProperty(prop)
	if err != nil {
		return "", err
	}
	path, ok := variant.Value().(dbus.ObjectPath)
	if !ok {
		return "", fmt.Errorf("netenv: unexpected type for %s", prop)
	}
	return path, nil
}

func (e *DBusNetworkEnvironment) getStrings(obj dbus.BusObject, prop string) ([]string, error) {
	variant, err := obj.GetProperty(prop)
	if err != nil {
		return nil, err
	}
	strs, ok := variant.Value().([]string)
	if !ok {
		return nil, fmt.Errorf("netenv: unexpected type for %s", prop)
	}
	return strs, nil
}

// StubNetworkEnvironment always reports an empty WPADInfo. It backs
// runs where the system bus cannot be reached.
type StubNetworkEnvironment struct{}

// NewStubNetworkEnvironment builds a StubNetworkEnvironment.
func NewStubNetworkEnvironment() *StubNetworkEnvironment {
	return &StubNetworkEnvironment{}
}

// GetWPADInfo always succeeds with an empty record, which leaves WPAD
// discovery to fall back on candidate-less output and Static(Direct).
func (StubNetworkEnvironment) GetWPADInfo(ctx context.Context) (domain.WPADInfo, error) {
	return domain.WPADInfo{}, nil
}
