// seed inserts demo profiles with tap history into the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Sunny-JP/hw-ba-cafe/internal/infrastructure/postgres"
	"github.com/Sunny-JP/hw-ba-cafe/internal/session"
)

type profileSpec struct {
	email string
	// tap offsets relative to now, oldest first
	tapOffsets []time.Duration
	ticket1Ago time.Duration // zero means no ticket
}

var profiles = []profileSpec{
	// Fresh session still running — /tap/session shows a live window
	{"demo-active@test.local", []time.Duration{-26 * time.Hour, -90 * time.Minute}, 0},

	// Session expired hours ago — next tap records a new window
	{"demo-idle@test.local", []time.Duration{-9 * time.Hour}, 0},

	// Ticket activated yesterday, ready again in a few hours
	{"demo-ticket@test.local", []time.Duration{-30 * time.Hour, -5 * time.Hour}, 18 * time.Hour},

	// No taps at all — /tap/session returns an empty view
	{"demo-new@test.local", nil, 0},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set — run: direnv allow")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	now := time.Now()

	for _, spec := range profiles {
		var id string
		err := pool.QueryRow(ctx, `
			INSERT INTO profiles (email)
			VALUES ($1)
			ON CONFLICT (email) DO UPDATE SET updated_at = NOW()
			RETURNING id`,
			spec.email,
		).Scan(&id)
		if err != nil {
			log.Fatalf("upsert profile %s: %v", spec.email, err)
		}

		for _, off := range spec.tapOffsets {
			_, err := pool.Exec(ctx,
				`INSERT INTO taps (profile_id, tapped_at) VALUES ($1, $2)`,
				id, now.Add(off),
			)
			if err != nil {
				log.Fatalf("insert tap for %s: %v", spec.email, err)
			}
		}

		if spec.ticket1Ago > 0 {
			_, err := pool.Exec(ctx,
				`UPDATE profiles SET ticket1_activated_at = $2, updated_at = NOW() WHERE id = $1`,
				id, now.Add(-spec.ticket1Ago),
			)
			if err != nil {
				log.Fatalf("set ticket for %s: %v", spec.email, err)
			}
		}

		fmt.Printf("  %-28s %s  (%d taps)\n", spec.email, id, len(spec.tapOffsets))
	}

	fmt.Println()
	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Next reset boundary (JST): %s\n", session.NextBoundary(now).Format(time.RFC3339))
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1 — get a JWT for a demo profile:")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8080/auth/magic-link \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"email\":\"demo-active@test.local\"}'\n")
	fmt.Println()
	fmt.Println("    # Copy the link token from the server log, then:")
	fmt.Println()
	fmt.Println("    curl -s 'http://localhost:8080/auth/verify?token=TOKEN'")
	fmt.Println("    # → {\"token\":\"eyJ...\"}")
	fmt.Println()
	fmt.Println("  Step 2 — check the current session window:")
	fmt.Println()
	fmt.Println("    export JWT=eyJ...")
	fmt.Println("    curl -s http://localhost:8080/tap/session -H \"Authorization: Bearer $JWT\"")
	fmt.Println()
	fmt.Println("  Step 3 — record a tap (locally the reminder is logged, not sent):")
	fmt.Println()
	fmt.Println("    curl -s -X POST http://localhost:8080/tap \\")
	fmt.Println("      -H \"Authorization: Bearer $JWT\" -H 'Content-Type: application/json' \\")
	fmt.Printf("      -d '{\"tap_time\":\"'$(date -u +%%Y-%%m-%%dT%%H:%%M:%%SZ)'\"}'\n")
}
