package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/viant/domindex/admin"
	"github.com/viant/domindex/catalog"
	"github.com/viant/domindex/engine"
	"github.com/viant/domindex/index"
	"github.com/viant/domindex/internal/config"
	"github.com/viant/domindex/internal/logger"
	"github.com/viant/domindex/matcher"
	"github.com/viant/domindex/snapshot"
)

func printHelp() {
	fmt.Println("usage: domindex <command> [args]")
	fmt.Println("commands:")
	fmt.Println("  import <records.json>   add {name,rpu_off,rpu_on} records to the catalog")
	fmt.Println("  build                   rebuild the tree from the catalog and persist it")
	fmt.Println("  search <x> <y>          print the nearest dominating id")
	fmt.Println("  scan <x> <y> [limit]    list dominated catalog points via SQL, nearest first")
	fmt.Println("  remove <id>             retire a point from the catalog and the tree")
	fmt.Println("  sync                    apply catalog changes to the persisted tree")
	fmt.Println("  admin <op>              run a dom_admin operation against the sqlite database;")
	fmt.Println("                          <table> rebuilds the snapshot named after the table in index_storage,")
	fmt.Println("                          the one search loads with the sqlite backend and no DOMINDEX_SNAPSHOT_NAME")
}

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(2)
	}
	cfg := config.Load()
	l := logger.Setup()
	ctx := context.Background()
	if err := run(ctx, cfg, l, os.Args[1], os.Args[2:]); err != nil {
		l.Error("command_error", "cmd", os.Args[1], "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, l *slog.Logger, cmd string, args []string) error {
	// functions must be registered before the first connection is opened
	if err := engine.RegisterDominanceFunctions(nil); err != nil {
		return err
	}
	switch cmd {
	case "help", "-h", "--help":
		printHelp()
		return nil
	case "admin":
		if len(args) != 1 {
			return fmt.Errorf("usage: admin <op>")
		}
		db, err := engine.Open(cfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()
		rows, err := admin.Exec(ctx, db, args[0])
		if err != nil {
			return err
		}
		for _, row := range rows {
			fmt.Println(row)
		}
		return nil
	}

	env, err := open(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer env.Close()

	switch cmd {
	case "import":
		if len(args) != 1 {
			return fmt.Errorf("usage: import <records.json>")
		}
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		entries, err := catalog.LoadJSON(f)
		if err != nil {
			return err
		}
		if err := env.catalog.AddPoints(ctx, entries); err != nil {
			return err
		}
		l.Info("catalog_import", "file", args[0], "count", len(entries))
		return nil
	case "build":
		start := time.Now()
		if err := env.service.Rebuild(ctx); err != nil {
			return err
		}
		l.Info("index_build", "count", env.service.Len(), "dur_ms", time.Since(start).Milliseconds())
		return nil
	case "search":
		if len(args) != 2 {
			return fmt.Errorf("usage: search <x> <y>")
		}
		q, err := parsePoint(args)
		if err != nil {
			return err
		}
		if err := env.service.Load(ctx); err != nil {
			return err
		}
		id, ok := env.service.Match(q)
		if !ok {
			fmt.Println("no match")
			return nil
		}
		fmt.Println(id)
		return nil
	case "scan":
		if len(args) != 2 && len(args) != 3 {
			return fmt.Errorf("usage: scan <x> <y> [limit]")
		}
		q, err := parsePoint(args[:2])
		if err != nil {
			return err
		}
		limit := 0
		if len(args) == 3 {
			if limit, err = strconv.Atoi(args[2]); err != nil {
				return fmt.Errorf("scan: limit %q: %w", args[2], err)
			}
		}
		ids, err := env.catalog.Dominators(ctx, q, limit)
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	case "remove":
		if len(args) != 1 {
			return fmt.Errorf("usage: remove <id>")
		}
		if err := env.service.Load(ctx); err != nil {
			return err
		}
		if err := env.service.Retire(ctx, args[0]); err != nil {
			if errors.Is(err, index.ErrNotFound) {
				l.Warn("remove_not_found", "id", args[0])
			}
			return err
		}
		return nil
	case "sync":
		if err := env.service.Load(ctx); err != nil {
			return err
		}
		stats, err := env.service.Sync(ctx)
		if err != nil {
			return err
		}
		l.Info("index_sync", "changes", stats.Changes, "removed", stats.Removed, "rebuilt", stats.Rebuilt)
		return nil
	}
	printHelp()
	return fmt.Errorf("unknown command %q", cmd)
}

func parsePoint(args []string) (index.Point, error) {
	var q index.Point
	for i, arg := range args {
		f, err := strconv.ParseFloat(arg, 32)
		if err != nil {
			return q, fmt.Errorf("coordinate %q: %w", arg, err)
		}
		q[i] = float32(f)
	}
	return q, nil
}

// environment holds the opened catalog, snapshot store and matcher.
type environment struct {
	catalog *catalog.Store
	service *matcher.Service
	closers []func() error
}

func (e *environment) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i]()
	}
}

func open(ctx context.Context, cfg *config.Config, l *slog.Logger) (*environment, error) {
	env := &environment{}
	var (
		catalogDB *sql.DB
		sqliteDB  *sql.DB
		err       error
	)
	openSQLite := func() (*sql.DB, error) {
		if sqliteDB != nil {
			return sqliteDB, nil
		}
		db, err := engine.Open(cfg.DB)
		if err != nil {
			return nil, err
		}
		env.closers = append(env.closers, db.Close)
		sqliteDB = db
		return db, nil
	}

	opts := []catalog.Option{catalog.WithTable(cfg.CatalogTable)}
	if cfg.PostgresDSN != "" {
		catalogDB, err = engine.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			env.Close()
			return nil, err
		}
		env.closers = append(env.closers, catalogDB.Close)
		opts = append(opts, catalog.WithDialect(catalog.Postgres))
	} else if catalogDB, err = openSQLite(); err != nil {
		env.Close()
		return nil, err
	}
	if env.catalog, err = catalog.NewStore(ctx, catalogDB, opts...); err != nil {
		env.Close()
		return nil, err
	}

	var snaps snapshot.Store
	switch cfg.Snapshot {
	case config.SnapshotRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		env.closers = append(env.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			env.Close()
			return nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
		}
		snaps, err = snapshot.NewRedisStore(client, "")
	case config.SnapshotFile:
		snaps, err = snapshot.NewFileStore(cfg.SnapshotDir)
	case config.SnapshotSQLite:
		var db *sql.DB
		if db, err = openSQLite(); err == nil {
			snaps, err = snapshot.NewSQLiteStore(ctx, db)
		}
	default:
		err = fmt.Errorf("unknown snapshot backend %q", cfg.Snapshot)
	}
	if err != nil {
		env.Close()
		return nil, err
	}

	env.service, err = matcher.New(ctx, env.catalog, snaps,
		matcher.WithSnapshotName(cfg.SnapshotName),
		matcher.WithLogger(l),
		matcher.WithChangeLog(cfg.PostgresDSN == ""),
	)
	if err != nil {
		env.Close()
		return nil, err
	}
	return env, nil
}
