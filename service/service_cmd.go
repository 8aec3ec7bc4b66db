package service

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

var ServiceCmd = &cobra.Command{
	Use:   "service",
	Short: "Manage the system service",
}

var installAccount Account

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the service",
	Run: func(cmd *cobra.Command, args []string) {
		var flags []string
		for _, name := range []string{"config", "key"} {
			f := cmd.Flags().Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			value := f.Value.String()
			if name == "config" {
				if abs, err := filepath.Abs(value); err == nil {
					value = abs
				}
			}
			flags = append(flags, "--"+name, value)
		}
		if err := InstallService(flags, installAccount); err != nil {
			klog.Fatal(err)
		}
	},
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Uninstall the service",
	Run: func(cmd *cobra.Command, args []string) {
		if err := UninstallService(); err != nil {
			klog.Fatal(err)
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the service",
	Run: func(cmd *cobra.Command, args []string) {
		if err := RunService(); err != nil {
			klog.Fatal(err)
		}
	},
}

func init() {
	installCmd.Flags().StringVar(&installAccount.User, "user", "", `account to run the service as, e.g. .\alice or DOMAIN\alice (Windows)`)
	installCmd.Flags().StringVar(&installAccount.Password, "password", "", "password of the --user account")
	ServiceCmd.AddCommand(installCmd, uninstallCmd, runCmd)
}
