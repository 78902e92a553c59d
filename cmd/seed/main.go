// Command seed populates the journal database with demo users and entries.
package main

import (
	"flag"
	"log"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/seed"
)

func main() {
	opts := seed.DefaultOptions()
	flag.IntVar(&opts.Users, "users", opts.Users, "number of demo users to create")
	flag.IntVar(&opts.DaysBack, "days", opts.DaysBack, "how many days of history to fill")
	flag.IntVar(&opts.MaxEntriesPerDay, "per-day", opts.MaxEntriesPerDay, "maximum entries per day")
	flag.StringVar(&opts.Password, "password", opts.Password, "password shared by demo users")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	if err := seed.Run(db, opts); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
	log.Println("seed complete")
}
