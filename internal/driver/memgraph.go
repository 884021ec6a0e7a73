package driver

import (
	"context"
	"fmt"
	"log"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type MemgraphDriver struct {
	Driver neo4j.DriverWithContext
}

func NewMemgraphDriver(uri, username, password string) (*MemgraphDriver, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}

	if err := driver.VerifyConnectivity(context.Background()); err != nil {
		return nil, err
	}

	log.Println("Connected to Memgraph")
	return &MemgraphDriver{Driver: driver}, nil
}

func (d *MemgraphDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

func (d *MemgraphDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

func (d *MemgraphDriver) BuildIndices(ctx context.Context) error {
	// Uniqueness on element id/name and on the combination pair key is
	// load-bearing: combined with MERGE it keeps concurrent resolutions
	// of the same pair from producing two cache rows.
	queries := []string{
		"CREATE CONSTRAINT ON (e:Element) ASSERT e.id IS UNIQUE;",
		"CREATE CONSTRAINT ON (e:Element) ASSERT e.name IS UNIQUE;",
		"CREATE CONSTRAINT ON (c:Combination) ASSERT c.pair_key IS UNIQUE;",
		"CREATE CONSTRAINT ON (u:UserElement) ASSERT u.key IS UNIQUE;",

		"CREATE INDEX ON :Element(name);",
		"CREATE INDEX ON :Element(type);",
		"CREATE INDEX ON :Combination(pair_key);",
		"CREATE INDEX ON :UserElement(user_id);",
	}

	for _, q := range queries {
		_, err := d.ExecuteQuery(ctx, q, nil)
		if err != nil {
			// Constraint/index may already exist; keep going.
			log.Printf("Warning: failed to create index '%s': %v", q, err)
		}
	}

	return nil
}
