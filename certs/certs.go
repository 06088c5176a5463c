// Package certs runs the built-in TFTP server that hands the root CA
// certificate (and any other staged files) to a freshly onboarded
// device. Installing the certificate on the device is a separate
// workflow; this only makes the file reachable from the management
// network.
package certs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pin/tftp/v3"

	"main/oblogging"
)

type Server struct {
	dir string
	srv *tftp.Server
	log *oblogging.Oblogging
}

func NewServer(dir string, log *oblogging.Oblogging) *Server {
	s := &Server{dir: dir, log: log}
	// Read-only: devices fetch the cert, nothing ever writes back.
	s.srv = tftp.NewServer(s.readHandler, nil)
	s.srv.SetTimeout(5 * time.Second)
	return s
}

func (s *Server) readHandler(filename string, rf io.ReaderFrom) error {
	clean := filepath.Clean(filename)
	if strings.Contains(clean, "..") || filepath.IsAbs(clean) {
		s.log.Warnf("Refusing TFTP read outside serve directory: %s", filename)
		return fmt.Errorf("invalid path %s", filename)
	}

	path := filepath.Join(s.dir, clean)
	file, err := os.Open(path)
	if err != nil {
		s.log.Warnf("TFTP read of %s failed: %v", filename, err)
		return err
	}
	defer file.Close()

	n, err := rf.ReadFrom(file)
	if err != nil {
		s.log.Errorf("TFTP transfer of %s failed: %v", filename, err)
		return err
	}
	s.log.Infof("Served %s (%d bytes) over TFTP", filename, n)
	return nil
}

// ListenAndServe blocks serving TFTP on addr (host:port).
func (s *Server) ListenAndServe(addr string) error {
	s.log.Infof("Serving certificates from %s on %s", s.dir, addr)
	return s.srv.ListenAndServe(addr)
}

func (s *Server) Shutdown() {
	s.srv.Shutdown()
}
