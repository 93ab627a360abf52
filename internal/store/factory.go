package store

import (
	"context"
	"fmt"

	"github.com/thep200/git2neo/cfg"
	"github.com/thep200/git2neo/pkg/db"
	"github.com/thep200/git2neo/pkg/log"
)

// FactoryStore builds the backend named by config.Store.Driver, wrapped in a
// node cache. The returned close func releases the backend connection.
func FactoryStore(ctx context.Context, logger log.Logger, config *cfg.Config) (Store, func() error, error) {
	var (
		inner   Store
		closeFn = func() error { return nil }
	)

	switch config.Store.Driver {
	case "neo4j", "":
		neo, _ := db.NewNeo4j(config)
		if _, err := neo.Driver(ctx); err != nil {
			return nil, nil, err
		}
		s, _ := NewNeo4jStore(logger, neo)
		if err := s.EnsureConstraints(ctx); err != nil {
			_ = neo.Close(ctx)
			return nil, nil, err
		}
		inner = s
		closeFn = func() error { return neo.Close(context.Background()) }
	case "mysql":
		mysql, _ := db.NewMysql(config)
		if err := mysql.Ping(); err != nil {
			return nil, nil, err
		}
		s, err := NewSQLStore(logger, mysql)
		if err != nil {
			return nil, nil, err
		}
		inner = s
		closeFn = mysql.Close
	case "memory":
		inner = NewMemoryStore()
	default:
		return nil, nil, fmt.Errorf("[ERROR] Unsupported store driver: %s", config.Store.Driver)
	}

	cached, err := NewCachedStore(inner, config.Store.CacheSize)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	return cached, closeFn, nil
}
