package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"sysproxy-service/backend"
	"sysproxy-service/config"
	"sysproxy-service/data"
	"sysproxy-service/resolver"
	"sysproxy-service/route"
	"sysproxy-service/service"
	"sysproxy-service/store"
)

var (
	configFile string
	encryptKey string
	storeKind  string
	source     string
	explain    bool
)

var mainCmd = &cobra.Command{
	Use:           "sysproxy-service",
	Short:         "Resolve the Windows system proxy for a destination URL",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.Initialize(configFile, encryptKey)
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve URL...",
	Short: "Print the proxy setting for each destination URL",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openStore()
		if err != nil {
			return err
		}
		defer b.Close()

		r := resolver.New(b)
		if explain {
			printSnapshot(cmd, r.Inspect())
		}
		for _, arg := range args {
			dst, err := url.Parse(arg)
			if err != nil || dst.Scheme == "" {
				return errors.Errorf("invalid destination %q", arg)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", arg, r.Resolve(dst))
		}
		return nil
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot OUTPUT",
	Short: "Capture the consulted settings into a bolt (.db) or YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openStore()
		if err != nil {
			return err
		}
		defer b.Close()

		out := args[0]
		switch strings.ToLower(filepath.Ext(out)) {
		case ".yaml", ".yml":
			m := store.NewMemory()
			n, err := store.Copy(m, b, resolver.Values)
			if err != nil {
				return err
			}
			if err := store.WriteFile(out, m); err != nil {
				return err
			}
			klog.Infof("wrote %d values to %s", n, out)
		default:
			snap, err := data.Create(out)
			if err != nil {
				return err
			}
			defer snap.Close()
			n, err := store.Copy(snap, b, resolver.Values)
			if err != nil {
				return err
			}
			klog.Infof("wrote %d values to %s", n, out)
		}
		return nil
	},
}

// openStore prefers the command-line store over the configured one.
func openStore() (*backend.Backend, error) {
	kind, src := storeKind, source
	if kind == "" {
		kind, src = config.GetStore(), config.GetSource()
		if source != "" {
			src = source
		}
	}
	return backend.Open(kind, src)
}

func printSnapshot(cmd *cobra.Command, snap resolver.Snapshot) {
	w := cmd.ErrOrStderr()
	fmt.Fprintf(w, "auto-discover: %v\n", snap.Flags.AutoDiscover)
	fmt.Fprintf(w, "auto-config:   %v %s\n", snap.Flags.AutoConfig, snap.AutoConfigURL)
	if snap.ProxyEnable != nil {
		fmt.Fprintf(w, "proxy-enable:  %d\n", *snap.ProxyEnable)
	}
	fmt.Fprintf(w, "proxy-server:  %s\n", snap.ProxyServer)
	for scheme, u := range snap.Manual {
		fmt.Fprintf(w, "  %-8s %s\n", scheme, u)
	}
	for name, msg := range snap.Errors {
		fmt.Fprintf(w, "error: %s: %s\n", name, msg)
	}
}

func init() {
	klog.InitFlags(nil)
	mainCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	mainCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	mainCmd.PersistentFlags().StringVar(&encryptKey, "key", "", "config encryption key")

	for _, cmd := range []*cobra.Command{resolveCmd, snapshotCmd} {
		cmd.Flags().StringVar(&storeKind, "store", "", "settings store: registry, file, reg or bolt")
		cmd.Flags().StringVar(&source, "source", "", "source file for the file, reg and bolt stores")
	}
	resolveCmd.Flags().BoolVar(&explain, "explain", false, "print the decoded settings before resolving")

	mainCmd.AddCommand(resolveCmd, snapshotCmd)
	mainCmd.AddCommand(route.ServerCmd)
	mainCmd.AddCommand(service.ServiceCmd)
}

func main() {
	defer klog.Flush()
	if err := mainCmd.Execute(); err != nil {
		klog.Error(err)
		klog.Flush()
		os.Exit(1)
	}
}
