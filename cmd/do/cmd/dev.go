package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"
	"syscall"

	"github.com/keesschollaart/sprintgoal/internal/config"
	"github.com/spf13/cobra"
)

type devOptions struct {
	driver    string
	appPort   string
	proxyPort string
}

func DevCmd() *cobra.Command {
	opts := devOptions{}

	c := &cobra.Command{
		Use:   "dev",
		Short: "Run the widget with live reload (air)",
		Long: `Runs cmd/server under air. Pages are served through air's proxy so the
browser reloads after every rebuild. The memory data driver is used unless
--driver or DATA_DRIVER says otherwise, so no database or host credentials
are needed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(opts)
		},
	}

	c.Flags().StringVar(&opts.driver, "driver", "", "data driver (sql, s3, devops, memory)")
	c.Flags().StringVar(&opts.appPort, "port", "8090", "port of the widget server")
	c.Flags().StringVar(&opts.proxyPort, "proxy-port", "8080", "port of the live reload proxy")
	return c
}

func runDev(opts devOptions) error {
	airPath, err := exec.LookPath("air")
	if err != nil {
		return fmt.Errorf("air not found, install with: go install github.com/air-verse/air@latest")
	}

	airArgs := []string{
		"air",
		"-c", "/dev/null",
		"-root", ".",
		"-build.cmd", "go build -o ./tmp/main ./cmd/server",
		"-build.bin", "./tmp/main",
		"-build.delay", "100",
		"-build.exclude_dir", "bin,tmp,data,_examples",
		"-build.exclude_regex", "_test.go$",
		"-build.include_ext", "go,md,sql",
		"-build.send_interrupt", "true",
		"-proxy.enabled", "true",
		"-proxy.proxy_port", opts.proxyPort,
		"-proxy.app_port", opts.appPort,
	}

	return syscall.Exec(airPath, airArgs, devEnv(os.Environ(), opts))
}

// devEnv adds the development defaults to env. Flags replace existing
// values, the defaults only fill in what is unset.
func devEnv(env []string, opts devOptions) []string {
	env = setEnv(env, "PORT", opts.appPort)
	if opts.driver != "" {
		env = setEnv(env, "DATA_DRIVER", opts.driver)
	}

	defaults := map[string]string{
		"APP_ENV":     "development",
		"APP_URL":     "http://localhost:" + opts.proxyPort,
		"DATA_DRIVER": config.DataDriverMemory,
	}
	for key, value := range defaults {
		if lookupEnv(env, key) == "" {
			env = append(env, key+"="+value)
		}
	}
	return env
}

func lookupEnv(env []string, key string) string {
	for _, kv := range env {
		if k, v, ok := strings.Cut(kv, "="); ok && k == key {
			return v
		}
	}
	return ""
}

// setEnv replaces every entry of key, a Go child reads the first one only.
func setEnv(env []string, key, value string) []string {
	env = slices.DeleteFunc(env, func(kv string) bool {
		k, _, _ := strings.Cut(kv, "=")
		return k == key
	})
	return append(env, key+"="+value)
}
