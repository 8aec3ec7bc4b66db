package route

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"sysproxy-service/backend"
	"sysproxy-service/config"
	"sysproxy-service/resolver"
)

var ServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Serve proxy resolution over the configured sockets",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := Run(ctx); err != nil {
			klog.Fatal(err)
		}
	},
}

// Run opens the configured store and serves until ctx is done.
func Run(ctx context.Context) error {
	cfg := config.GetConfig()
	b, err := backend.Open(cfg.Store, cfg.Source)
	if err != nil {
		return err
	}
	defer b.Close()

	secret := config.GetSecret()
	if secret == "" {
		klog.Warning("no secret configured, API authentication disabled")
	}

	return Serve(ctx, Router(resolver.New(b), secret), Addrs{
		UnixSocket: cfg.UnixSocket,
		NamedPipe:  cfg.NamedPipe,
		Http:       cfg.Http,
	})
}
