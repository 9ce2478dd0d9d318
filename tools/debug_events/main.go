package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

var (
	migration = flag.String("migration", "", "optional ClickHouse migration file to apply first")
	hours     = flag.Int("hours", 24, "look-back window")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	dsn := os.Getenv("CLICKHOUSE_URL")
	if dsn == "" {
		dsn = "clickhouse://default:@localhost:9000/match_oracle"
	}
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		log.Fatal(err)
	}
	conn, err := clickhouse.Open(opts)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if *migration != "" {
		content, err := os.ReadFile(*migration)
		if err != nil {
			log.Fatal(err)
		}
		for _, stmt := range strings.Split(string(content), ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if err := conn.Exec(ctx, stmt); err != nil {
				log.Fatal(err)
			}
		}
		fmt.Println("Migration applied successfully!")
	}

	var total uint64
	err = conn.QueryRow(ctx, "SELECT count() FROM match_oracle.prediction_events").Scan(&total)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Total events: %d\n", total)

	rows, err := conn.Query(ctx, `
		SELECT event_type, sport, count() AS n, max(timestamp) AS last_seen
		FROM match_oracle.prediction_events
		WHERE timestamp >= now() - INTERVAL ? HOUR
		GROUP BY event_type, sport
		ORDER BY n DESC
	`, *hours)
	if err != nil {
		log.Fatal(err)
	}
	defer rows.Close()

	fmt.Printf("Last %dh:\n", *hours)
	for rows.Next() {
		var (
			eventType, sport string
			n                uint64
			lastSeen         time.Time
		)
		if err := rows.Scan(&eventType, &sport, &n, &lastSeen); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("  %-22s %-13s %6d  last %s\n", eventType, sport, n, lastSeen.Format(time.RFC3339))
	}
	if err := rows.Err(); err != nil {
		log.Fatal(err)
	}
}
