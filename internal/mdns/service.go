// Package mdns provides mDNS/Zeroconf advertisement for PromptKeep server discovery.
package mdns

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/holoplot/go-avahi"
)

const (
	// ServiceType is the mDNS service type for PromptKeep servers.
	ServiceType = "_promptkeep._tcp"

	// APIVersion is the current API version advertised in TXT records.
	APIVersion = "v1"

	// ServerVersion is the current server version advertised in TXT records.
	// TODO: Extract to a shared version package.
	ServerVersion = "1.0.0"
)

// Service manages mDNS advertisement through the local Avahi daemon.
// It lets companion clients on the same network discover the server
// without manual configuration.
type Service struct {
	conn   *dbus.Conn
	server *avahi.Server
	group  *avahi.EntryGroup
	logger *slog.Logger
	mu     sync.Mutex
}

// NewService creates a new mDNS service.
func NewService(logger *slog.Logger) *Service {
	return &Service{
		logger: logger,
	}
}

// Start begins advertising the server via the Avahi daemon.
// It should be called after the HTTP server is running.
//
// Parameters:
//   - name: Human-readable server name published in TXT records
//   - port: The HTTP server port
//
// Returns an error if registration with Avahi fails. Errors are
// typically non-fatal (e.g., no Avahi daemon or D-Bus on the host).
func (s *Service) Start(name string, port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Stop existing advertisement if running (for restart scenarios)
	s.closeLocked()

	conn, err := dbus.SystemBusPrivate()
	if err != nil {
		return fmt.Errorf("connect to system bus: %w", err)
	}
	if err := conn.Auth(nil); err != nil {
		_ = conn.Close()
		return fmt.Errorf("authenticate on system bus: %w", err)
	}
	if err := conn.Hello(); err != nil {
		_ = conn.Close()
		return fmt.Errorf("register on system bus: %w", err)
	}

	server, err := avahi.ServerNew(conn)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("connect to avahi daemon: %w", err)
	}

	group, err := server.EntryGroupNew()
	if err != nil {
		server.Close()
		_ = conn.Close()
		return fmt.Errorf("create avahi entry group: %w", err)
	}

	// Use the hostname as the unique instance name on the network;
	// the friendly name travels in the TXT records.
	host, err := os.Hostname()
	if err != nil {
		host = "promptkeep-server"
	}

	txt := [][]byte{
		[]byte("name=" + name),
		[]byte("version=" + ServerVersion),
		[]byte("api=" + APIVersion),
	}

	err = group.AddService(
		avahi.InterfaceUnspec, // All interfaces
		avahi.ProtoUnspec,     // IPv4 and IPv6
		0,                     // Flags
		host,                  // Instance name
		ServiceType,           // Service type (_promptkeep._tcp)
		"",                    // Domain (empty = .local)
		"",                    // Host (empty = system hostname)
		uint16(port),          // Port
		txt,                   // TXT records
	)
	if err != nil {
		server.Close()
		_ = conn.Close()
		return fmt.Errorf("register mDNS service: %w", err)
	}

	if err := group.Commit(); err != nil {
		server.Close()
		_ = conn.Close()
		return fmt.Errorf("publish mDNS service: %w", err)
	}

	s.conn = conn
	s.server = server
	s.group = group

	s.logger.Info("mDNS advertisement started",
		"service", ServiceType,
		"port", port,
		"name", name,
	)

	return nil
}

// Stop stops mDNS advertising.
// Safe to call multiple times or if not started.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return
	}

	s.closeLocked()
	s.logger.Info("mDNS advertisement stopped")
}

// closeLocked tears down the Avahi registration. Caller must hold mu.
// Dropping the D-Bus connection makes the daemon withdraw the records.
func (s *Service) closeLocked() {
	if s.server == nil {
		return
	}

	if s.group != nil {
		s.server.EntryGroupFree(s.group)
	}
	s.server.Close()
	_ = s.conn.Close()

	s.conn = nil
	s.server = nil
	s.group = nil
}
