// Command main runs the database seeder for Inschoolz.
package main

import (
	"context"
	"flag"
	"log"

	"inschoolz/internal/config"
	"inschoolz/internal/database"
	"inschoolz/internal/seed"
)

func main() {
	// Parse command line flags
	numSchools := flag.Int("schools", 0, "Number of sample schools to create (0 = all built-in samples)")
	numBots := flag.Int("bots", 20, "Number of bot accounts to create")
	postsPerBot := flag.Int("posts-per-bot", 3, "Number of posts each bot writes")
	shouldClean := flag.Bool("clean", false, "Remove bot accounts and their content before seeding")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d bots, %d posts each, clean=%v\n", *numBots, *postsPerBot, *shouldClean)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *shouldClean {
		runner := seed.NewRunner(db)
		progress := func(done, total int, message string) {
			log.Printf("[%d/%d] %s", done, total, message)
		}
		if err := runner.Cleanup(context.Background(), progress); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	if err := seed.Run(db, seed.Options{
		NumSchools:  *numSchools,
		NumBots:     *numBots,
		PostsPerBot: *postsPerBot,
	}); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
}
