// dbcheck verifies that the configured matcher database is reachable and
// reports which of the matcher tables exist.
//
// Usage:
//
//	go run ./cmd/dbcheck [database-url]
//
// Without an argument the url comes from DATABASE_URL or the config file.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/artpricematcher/price-matcher/config"
)

var tables = []string{
	"competitors",
	"price_matches",
	"active_discounts",
	"pricematcher_config",
	"operation_statistics",
}

func main() {
	url := ""
	if len(os.Args) > 1 {
		url = os.Args[1]
	} else {
		if _, err := config.Load(""); err != nil {
			fmt.Println("Error loading config:", err)
			os.Exit(1)
		}
		url = config.GetDatabaseURL()
	}
	if url == "" {
		fmt.Println("No database url configured")
		os.Exit(1)
	}

	if err := check(url); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func check(url string) error {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping error: %w", err)
	}
	fmt.Println("Connection successful")

	for _, table := range tables {
		var exists bool
		err := db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1)`,
			table).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check table %s: %w", table, err)
		}
		state := "missing"
		if exists {
			state = "ok"
		}
		fmt.Printf("  %-18s %s\n", table, state)
	}
	return nil
}
