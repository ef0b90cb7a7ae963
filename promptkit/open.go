package promptkit

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"promptkit/adapters/jsonfile"
	mem "promptkit/adapters/memory"
	redisAdapter "promptkit/adapters/redis"
	sqlxAdapter "promptkit/adapters/sqlx"
	"promptkit/core"
)

var (
	ErrEmptyDescriptor = errors.New("promptkit: empty store descriptor")
	ErrUnknownScheme   = errors.New("promptkit: unknown store scheme")
)

// Backend is a Storage that owns a resource released when its core is destroyed.
type Backend interface {
	core.Storage
	io.Closer
}

// Kind names the adapter a descriptor resolves to.
type Kind string

const (
	KindMemory   Kind = "memory"
	KindFile     Kind = "file"
	KindSQLite   Kind = "sqlite"
	KindPostgres Kind = "postgres"
	KindMySQL    Kind = "mysql"
	KindRedis    Kind = "redis"
)

// Target is a parsed store descriptor.
type Target struct {
	Kind Kind
	// Location is the file path, DSN or URL handed to the adapter.
	Location string
}

// ParseDescriptor resolves a Default store descriptor:
//
//	memory:                      in-process map, lost when the process exits
//	file:<path> or <path>        JSON file
//	sqlite:<path>                SQLite database
//	postgres://... postgresql:// PostgreSQL
//	mysql://<go-sql-driver dsn>  MySQL
//	redis://... rediss://...     Redis
func ParseDescriptor(descriptor string) (Target, error) {
	d := strings.TrimSpace(descriptor)
	if d == "" {
		return Target{}, ErrEmptyDescriptor
	}
	i := strings.Index(d, ":")
	// no scheme, or a drive letter / relative path that happens to contain a colon
	if i < 0 || i == 1 || strings.ContainsAny(d[:i], `/\.`) {
		if d == "memory" {
			return Target{Kind: KindMemory}, nil
		}
		return Target{Kind: KindFile, Location: d}, nil
	}
	scheme, rest := strings.ToLower(d[:i]), d[i+1:]
	switch scheme {
	case "memory", "mem":
		return Target{Kind: KindMemory}, nil
	case "file":
		return pathTarget(KindFile, rest, descriptor)
	case "sqlite", "sqlite3":
		return pathTarget(KindSQLite, rest, descriptor)
	case "postgres", "postgresql":
		return Target{Kind: KindPostgres, Location: d}, nil
	case "mysql":
		dsn := strings.TrimPrefix(rest, "//")
		if dsn == "" {
			return Target{}, fmt.Errorf("promptkit: missing mysql dsn in %q", descriptor)
		}
		return Target{Kind: KindMySQL, Location: dsn}, nil
	case "redis", "rediss":
		return Target{Kind: KindRedis, Location: d}, nil
	}
	return Target{}, fmt.Errorf("%w %q", ErrUnknownScheme, scheme)
}

func pathTarget(kind Kind, rest, descriptor string) (Target, error) {
	p := strings.TrimPrefix(rest, "//")
	if p == "" {
		return Target{}, fmt.Errorf("promptkit: missing path in %q", descriptor)
	}
	return Target{Kind: kind, Location: p}, nil
}

// Open resolves descriptor and opens the backend it names.
func Open(descriptor string, opts ...Option) (Backend, error) {
	return open(descriptor, newConfig(opts))
}

func open(descriptor string, cfg *config) (Backend, error) {
	target, err := ParseDescriptor(descriptor)
	if err != nil {
		return nil, err
	}
	switch target.Kind {
	case KindMemory:
		return mem.New(), nil
	case KindFile:
		return jsonfile.New(target.Location)
	case KindSQLite:
		return openSQL(sqlxAdapter.DriverSQLite, target.Location, cfg)
	case KindPostgres:
		return openSQL(sqlxAdapter.DriverPostgres, target.Location, cfg)
	case KindMySQL:
		return openSQL(sqlxAdapter.DriverMySQL, target.Location, cfg)
	case KindRedis:
		rc, opts, err := redisAdapter.ConfigFromURL(target.Location, cfg.redis)
		if err != nil {
			return nil, err
		}
		return redisAdapter.NewWithOptions(opts, rc)
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownScheme, target.Kind)
}

func openSQL(driver sqlxAdapter.Driver, dsn string, cfg *config) (Backend, error) {
	return sqlxAdapter.New(sqlConfig(driver, dsn, cfg.sql))
}

// sqlConfig starts from the pool defaults of driver and applies the non-zero
// pool settings of override.
func sqlConfig(driver sqlxAdapter.Driver, dsn string, override *sqlxAdapter.Config) sqlxAdapter.Config {
	sc := sqlxAdapter.DefaultConfig(driver)
	sc.DSN = dsn
	if override == nil {
		return sc
	}
	if override.MaxOpenConns > 0 {
		sc.MaxOpenConns = override.MaxOpenConns
	}
	if override.MaxIdleConns > 0 {
		sc.MaxIdleConns = override.MaxIdleConns
	}
	if override.ConnMaxLifetime > 0 {
		sc.ConnMaxLifetime = override.ConnMaxLifetime
	}
	return sc
}

// redact hides credentials in URL-shaped descriptors before they are logged.
func redact(descriptor string) string {
	u, err := url.Parse(descriptor)
	if err == nil {
		if u.User == nil {
			return descriptor
		}
		return u.Redacted()
	}
	// mysql DSNs like user:pass@tcp(host)/db do not parse as URLs
	if at := strings.LastIndex(descriptor, "@"); at >= 0 {
		start := strings.Index(descriptor, "://")
		if start >= 0 && start+3 <= at {
			return descriptor[:start+3] + "xxxxx" + descriptor[at:]
		}
	}
	return descriptor
}
