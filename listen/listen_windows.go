//go:build windows

package listen

import (
	"net"

	"github.com/Microsoft/go-winio"
)

const SupportNamedPipe = true

// ListenNamedPipe listens on a pipe open to every local user.
func ListenNamedPipe(path string) (net.Listener, error) {
	return winio.ListenPipe(path, &winio.PipeConfig{
		SecurityDescriptor: "D:P(A;;GA;;;WD)",
		InputBufferSize:    64 * 1024,
		OutputBufferSize:   64 * 1024,
	})
}
