package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-promo-backend/internal/config"
	"github.com/tbourn/go-promo-backend/internal/domain"
	"github.com/tbourn/go-promo-backend/internal/repo"
	"github.com/tbourn/go-promo-backend/internal/services"
	"github.com/tbourn/go-promo-backend/internal/sysutil"
)

const usage = `usage: promokeys <command> [flags] [args]

commands:
  keys [-json] <file>                         print one key per discount
  diff [-json] [-source name] <prev> <cur>    compare two batches
  analyze <file>                              print the key quality report
  ingest <source> <file>                      store a batch as a snapshot and diff it
  serve                                       run the HTTP API
  version                                     print the build version
`

var errUsage = errors.New("usage")

// app carries what every subcommand needs.
type app struct {
	cfg    config.Config
	stdout io.Writer
	stderr io.Writer
}

// run executes one subcommand and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	sysutil.SetupLogger(stderr, cfg.LogLevel, cfg.LogPretty)

	a := &app{cfg: cfg, stdout: stdout, stderr: stderr}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "keys":
		err = a.keys(ctx, rest)
	case "diff":
		err = a.diff(ctx, rest)
	case "analyze":
		err = a.analyze(ctx, rest)
	case "ingest":
		err = a.ingest(ctx, rest)
	case "serve":
		err = serve(ctx, cfg)
	case "version":
		fmt.Fprintln(stdout, version)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		fmt.Fprint(stderr, usage)
		return 2
	default:
		log.Error().Err(err).Str("command", cmd).Msg("command failed")
		return 1
	}
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// resolve maps a relative path that does not exist to DATA_DIR.
func (a *app) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return filepath.Join(a.cfg.DataDir, p)
}

// load reads a previous batch leniently: a missing or malformed file is an
// empty batch.
func (a *app) load(p string) []domain.Discount {
	return repo.LoadDiscountsFile(a.resolve(p))
}

// read reads a current batch; any read or decode failure is returned.
func (a *app) read(p string) ([]domain.Discount, error) {
	path := a.resolve(p)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ds, err := domain.DecodeDiscounts(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) keys(ctx context.Context, args []string) error {
	fs := a.flags("keys")
	asJSON := fs.Bool("json", false, "print keys and collision count as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}

	batch, err := a.read(fs.Arg(0))
	if err != nil {
		return err
	}
	ks, collisions, err := services.NewKeyService(a.cfg.MaxBatch).BuildKeys(ctx, batch)
	if err != nil {
		return err
	}
	if *asJSON {
		return a.printJSON(map[string]any{"keys": ks, "collisions": collisions})
	}
	for _, k := range ks {
		fmt.Fprintln(a.stdout, k)
	}
	return nil
}

func (a *app) diff(ctx context.Context, args []string) error {
	fs := a.flags("diff")
	asJSON := fs.Bool("json", false, "print the enhanced diff as JSON")
	source := fs.String("source", "", "source name for the notification (default: from the batches)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errUsage
	}

	prev := a.load(fs.Arg(0))
	cur, err := a.read(fs.Arg(1))
	if err != nil {
		return err
	}
	name := sysutil.FirstNonEmpty(*source, sourceOf(cur), sourceOf(prev), "unknown")

	res, note, err := services.NewKeyService(a.cfg.MaxBatch).Diff(ctx, name, prev, cur)
	if err != nil {
		return err
	}
	if *asJSON {
		return a.printJSON(res)
	}
	if note == "" {
		fmt.Fprintf(a.stdout, "%s: no changes (%d discounts)\n", strings.ToUpper(name), res.TotalNew)
		return nil
	}
	fmt.Fprint(a.stdout, note)
	return nil
}

func (a *app) analyze(ctx context.Context, args []string) error {
	fs := a.flags("analyze")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}
	batch, err := a.read(fs.Arg(0))
	if err != nil {
		return err
	}
	report, err := services.NewKeyService(a.cfg.MaxBatch).Analyze(ctx, batch)
	if err != nil {
		return err
	}
	return a.printJSON(report)
}

func (a *app) ingest(ctx context.Context, args []string) error {
	fs := a.flags("ingest")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errUsage
	}

	batch, err := a.read(fs.Arg(1))
	if err != nil {
		return err
	}

	db, err := openDB(a.cfg)
	if err != nil {
		return err
	}
	defer closeDB(db)

	archive, err := newArchive(a.cfg)
	if err != nil {
		return err
	}
	svc, err := services.NewSnapshotService(db, archive, a.cfg.MaxBatch, a.cfg.CacheSize)
	if err != nil {
		return err
	}

	res, err := svc.Ingest(ctx, fs.Arg(0), batch)
	if err != nil {
		return err
	}
	switch {
	case res.Duplicate:
		fmt.Fprintf(a.stdout, "duplicate of snapshot %s, nothing stored\n", res.Snapshot.ID)
	case res.Notification == "":
		fmt.Fprintf(a.stdout, "snapshot %s stored, no changes\n", res.Snapshot.ID)
	default:
		fmt.Fprintf(a.stdout, "snapshot %s stored\n%s", res.Snapshot.ID, res.Notification)
	}
	return nil
}

func sourceOf(ds []domain.Discount) string {
	for _, d := range ds {
		if s := strings.TrimSpace(d.Source); s != "" {
			return s
		}
	}
	return ""
}
