//go:build !windows

package listen

import (
	"net"
	"runtime"

	"github.com/pkg/errors"
)

const SupportNamedPipe = false

func ListenNamedPipe(path string) (net.Listener, error) {
	return nil, errors.Errorf("named pipe %s: not supported on %s", path, runtime.GOOS)
}
