package service

import (
	"context"
	"runtime"

	"github.com/kardianos/service"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"sysproxy-service/route"
)

type Program struct {
	cancel context.CancelFunc
	done   chan error
}

func (p *Program) Start(s service.Service) error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan error, 1)
	go func() {
		err := route.Run(ctx)
		if err != nil {
			klog.Errorf("server stopped: %v", err)
		}
		p.done <- err
	}()
	klog.Info("Service started")
	return nil
}

func (p *Program) Stop(s service.Service) error {
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	err := <-p.done
	klog.Info("Service stopped")
	return err
}

// Account is the user the service runs as. Empty runs as LocalSystem,
// whose HKEY_CURRENT_USER is not an interactive user's hive.
type Account struct {
	User     string
	Password string
}

func serviceConfig(args []string, acct Account) *service.Config {
	cfg := &service.Config{
		Name:        "SysproxyService",
		DisplayName: "Sysproxy Service",
		Description: "Resolves the system proxy for a destination URL.",
		Arguments:   args,
		UserName:    acct.User,
	}
	if acct.Password != "" {
		cfg.Option = service.KeyValue{"Password": acct.Password}
	}
	return cfg
}

func newService(args []string, acct Account) (service.Service, error) {
	svc, err := service.New(&Program{}, serviceConfig(args, acct))
	if err != nil {
		return nil, errors.Wrap(err, "create service")
	}
	return svc, nil
}

// InstallService registers the service to run "service run" with the
// given persistent flags under acct.
func InstallService(flags []string, acct Account) error {
	if acct.User == "" && runtime.GOOS == "windows" {
		klog.Warning("Installing as LocalSystem; the registry store will read its settings, not a logged-in user's. Pass --user to run as that user.")
	}
	svc, err := newService(append([]string{"service", "run"}, flags...), acct)
	if err != nil {
		return err
	}
	if err := svc.Install(); err != nil {
		return errors.Wrap(err, "install service")
	}

	klog.Info("Service installed successfully.")
	return nil
}

func UninstallService() error {
	svc, err := newService(nil, Account{})
	if err != nil {
		return err
	}
	if err := svc.Uninstall(); err != nil {
		return errors.Wrap(err, "uninstall service")
	}

	klog.Info("Service uninstalled successfully.")
	return nil
}

// RunService runs under the service manager, or in the foreground when
// started interactively.
func RunService() error {
	svc, err := newService(nil, Account{})
	if err != nil {
		return err
	}
	return svc.Run()
}
