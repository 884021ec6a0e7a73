package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/musecraft/musecraft/internal/driver"
	"github.com/musecraft/musecraft/internal/store"
)

// Creates the schema and seeds the base palette of genres and artists.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	uri := os.Getenv("MEMGRAPH_URI")
	if uri == "" {
		uri = "bolt://localhost:7687"
	}

	d, err := driver.NewMemgraphDriver(uri, os.Getenv("MEMGRAPH_USER"), os.Getenv("MEMGRAPH_PASSWORD"))
	if err != nil {
		log.Fatalf("Failed to connect to Memgraph: %v", err)
	}
	ctx := context.Background()
	defer d.Close(ctx)

	st := store.NewGraphStore(d)

	log.Println("Creating schema...")
	if err := st.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}

	log.Println("Seeding base elements...")
	created, err := st.Seed(ctx)
	if err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}
	log.Printf("Seeded %d new elements", created)
}
