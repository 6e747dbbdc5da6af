package client

import (
	"net"
	"syscall"
	"testing"

	"code.duskforge.dev/rfscall"
)

func TestNew_RegistersStandardDescriptors(t *testing.T) {
	server, clientConn := net.Pipe()
	defer server.Close()

	c := New(clientConn)
	defer c.Disconnect()

	for _, fd := range []int{0, 1, 2} {
		if _, err := c.localFile(fd); err != nil {
			t.Fatalf("localFile(%d): %v", fd, err)
		}
	}
}

func TestRegisterLocal_RejectsRemoteHandle(t *testing.T) {
	server, clientConn := net.Pipe()
	defer server.Close()

	c := New(clientConn)
	defer c.Disconnect()

	if err := c.RegisterLocal(rfscall.Offset, nil); err == nil {
		t.Fatalf("RegisterLocal accepted a remote-band handle")
	}
}

func TestLocalFile_UnregisteredHandle_EBADF(t *testing.T) {
	server, clientConn := net.Pipe()
	defer server.Close()

	c := New(clientConn)
	defer c.Disconnect()

	if _, err := c.localFile(42); err != syscall.EBADF {
		t.Fatalf("err = %v, want EBADF", err)
	}
}

func TestErrnoErr(t *testing.T) {
	if err := errnoErr(0); err != nil {
		t.Fatalf("errnoErr(0) = %v, want nil", err)
	}
	if err := errnoErr(2); err == nil {
		t.Fatalf("errnoErr(2) = nil, want non-nil")
	}
}
