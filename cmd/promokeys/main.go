// Command promokeys generates promotion keys, diffs scraped batches and runs
// the promo HTTP API.
//
//	promokeys keys [-json] <file>
//	promokeys diff [-json] [-source name] <previous> <current>
//	promokeys analyze <file>
//	promokeys ingest <source> <file>
//	promokeys serve
//
// Relative file paths that do not exist are resolved against DATA_DIR.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
