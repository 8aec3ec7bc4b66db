package route

import (
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"sysproxy-service/listen"
)

const shutdownTimeout = 5 * time.Second

// Addrs are the endpoints to serve on; empty fields are skipped.
type Addrs struct {
	UnixSocket string
	NamedPipe  string
	Http       string
}

// Serve runs handler on every configured endpoint until ctx is done or
// a listener fails.
func Serve(ctx context.Context, handler http.Handler, addrs Addrs) error {
	listeners, err := listenAll(addrs)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	servers := make([]*http.Server, 0, len(listeners))
	for _, l := range listeners {
		l := l
		server := &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		servers = append(servers, server)
		g.Go(func() error {
			if err := server.Serve(l); !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrapf(err, "serve %s", l.Addr())
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for _, server := range servers {
			if err := server.Shutdown(shutdownCtx); err != nil {
				klog.Warningf("shutdown: %v", err)
			}
		}
		return nil
	})
	return g.Wait()
}

func listenAll(addrs Addrs) ([]net.Listener, error) {
	var listeners []net.Listener
	fail := func(err error) ([]net.Listener, error) {
		for _, l := range listeners {
			_ = l.Close()
		}
		return nil, err
	}

	if addrs.UnixSocket != "" {
		l, err := listenUnix(addrs.UnixSocket)
		if err != nil {
			return fail(err)
		}
		listeners = append(listeners, l)
	}
	if addrs.NamedPipe != "" && listen.SupportNamedPipe {
		l, err := listenPipe(addrs.NamedPipe)
		if err != nil {
			return fail(err)
		}
		listeners = append(listeners, l)
	}
	if addrs.Http != "" {
		l, err := net.Listen("tcp", addrs.Http)
		if err != nil {
			return fail(errors.Wrap(err, "tcp listen"))
		}
		klog.Infof("http listening at: %s", l.Addr())
		listeners = append(listeners, l)
	}

	if len(listeners) == 0 {
		return nil, errors.New("no listen address configured")
	}
	return listeners, nil
}

func ensureDirExists(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "create directory")
		}
	}
	return nil
}

func listenUnix(addr string) (net.Listener, error) {
	if err := ensureDirExists(filepath.Dir(addr)); err != nil {
		return nil, err
	}
	if err := syscall.Unlink(addr); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "unlink socket")
	}

	l, err := net.Listen("unix", addr)
	if err != nil {
		return nil, errors.Wrap(err, "unix listen")
	}
	_ = os.Chmod(addr, 0o666)
	klog.Infof("unix listening at: %s", l.Addr())
	return l, nil
}

func listenPipe(addr string) (net.Listener, error) {
	if !strings.HasPrefix(addr, `\\.\pipe\`) {
		return nil, errors.Errorf(`windows named pipe must start with "\\.\pipe\", got %q`, addr)
	}

	l, err := listen.ListenNamedPipe(addr)
	if err != nil {
		return nil, errors.Wrap(err, "pipe listen")
	}
	klog.Infof("pipe listening at: %s", l.Addr())
	return l, nil
}
