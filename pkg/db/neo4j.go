package db

import (
	"context"
	"fmt"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/config"
	"github.com/thep200/git2neo/cfg"
)

type Neo4j struct {
	Config  *cfg.Config
	once    sync.Once
	driver  neo4j.DriverWithContext
	initErr error
}

func NewNeo4j(config *cfg.Config) (*Neo4j, error) {
	return &Neo4j{
		Config: config,
	}, nil
}

// Driver lazily opens the driver and verifies the server is reachable.
func (n *Neo4j) Driver(ctx context.Context) (neo4j.DriverWithContext, error) {
	n.once.Do(func() {
		auth := neo4j.BasicAuth(n.Config.Neo4j.Username, n.Config.Neo4j.Password, "")
		var driver neo4j.DriverWithContext
		driver, n.initErr = neo4j.NewDriverWithContext(n.Config.Neo4j.Endpoint, auth, func(c *config.Config) {
			if n.Config.Neo4j.MaxConnectionPoolSize > 0 {
				c.MaxConnectionPoolSize = n.Config.Neo4j.MaxConnectionPoolSize
			}
		})
		if n.initErr != nil {
			n.initErr = fmt.Errorf("failed to create neo4j driver: %w", n.initErr)
			return
		}

		if n.initErr = driver.VerifyConnectivity(ctx); n.initErr != nil {
			_ = driver.Close(ctx)
			n.initErr = fmt.Errorf("neo4j unreachable at %s: %w", n.Config.Neo4j.Endpoint, n.initErr)
			return
		}

		n.driver = driver
	})
	return n.driver, n.initErr
}

func (n *Neo4j) Database() string {
	return n.Config.Neo4j.Database
}

func (n *Neo4j) Close(ctx context.Context) error {
	if n.driver == nil {
		return nil
	}
	return n.driver.Close(ctx)
}
