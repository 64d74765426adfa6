// Package cmd provides the shared entrypoint plumbing for Lorekeeper
// command-line tools: telemetry setup and fatal-exit handling.
package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/lorebound/lorekeeper/internal/platform/otel"
)

const defaultOTelShutdownTimeout = 5 * time.Second

// Service identifiers for command startup telemetry and CLI naming consistency.
const (
	ServiceCompendiumImporter = "compendium-importer"
)

// RunWithTelemetry configures observability and executes a command run loop.
// The telemetry provider is flushed and shut down after run returns.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return fmt.Errorf("service name is required")
	}
	if run == nil {
		return fmt.Errorf("run function is required")
	}

	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultOTelShutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("%s otel shutdown: %v", service, err)
		}
	}()

	return run(ctx)
}
