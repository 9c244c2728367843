// Command hbaccheck stands in for the authentication-stack shim that
// spec.md §1 treats as an external collaborator: it loads configuration,
// runs one check-access activation, prints the resulting status, and
// exits 0 regardless of the decision -- the status string is the
// observable result, not the process exit code (spec.md §6 "Exit codes:
// Not applicable").
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/l0p7/hbacd/internal/config"
	"github.com/l0p7/hbacd/internal/identity"
	"github.com/l0p7/hbacd/internal/logging"
	"github.com/l0p7/hbacd/internal/metrics"
	"github.com/l0p7/hbacd/internal/shim"
)

func main() {
	var (
		configFile  = flag.String("config", "", "path to hbac configuration file")
		userName    = flag.String("user", "", "authenticating user")
		serviceName = flag.String("service", "", "target service")
		debug       = flag.Bool("debug", false, "enable verbose tracing")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loader := config.NewLoader(*configFile)
	cfg, err := loader.Load(ctx)
	if err != nil {
		log.Fatalf("hbaccheck: failed to load configuration: %v", err)
	}
	defer cfg.Release()

	logger, err := logging.New("notice", "json", *debug)
	if err != nil {
		log.Fatalf("hbaccheck: failed to configure logger: %v", err)
	}

	runner := &shim.Runner{
		Config:   cfg,
		Logger:   logger,
		Recorder: metrics.NewRecorder(nil),
		Resolver: identity.NewResolver(),
		DialFn:   shim.DialDirectory,
	}

	status := runner.CheckAccess(ctx, shim.Activation{
		User:    *userName,
		Service: *serviceName,
		Debug:   *debug,
	})

	fmt.Println(status)
}
