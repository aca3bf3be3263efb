package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"studiohub/backend/internal/config"
	"studiohub/backend/internal/storage"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	storageSvc := storage.NewStorageService(db, rdb)

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <ban|unban|last-seen> [args]")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "ban":
		if len(os.Args) < 3 {
			fmt.Println("Usage: admin ban <user_id> [duration_in_hours]")
			os.Exit(1)
		}
		userID := parseUserID(os.Args[2])
		until := time.Time{}
		if len(os.Args) > 3 {
			hours, err := strconv.Atoi(os.Args[3])
			if err != nil {
				fmt.Println("Invalid duration. Please provide an integer.")
				os.Exit(1)
			}
			until = time.Now().Add(time.Duration(hours) * time.Hour)
		}
		if err := storageSvc.BanUser(userID, until); err != nil {
			log.Fatalf("Error banning user: %v", err)
		}
		fmt.Printf("User %d has been banned.\n", userID)

	case "unban":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin unban <user_id>")
			os.Exit(1)
		}
		userID := parseUserID(os.Args[2])
		if err := storageSvc.UnbanUser(userID); err != nil {
			log.Fatalf("Error unbanning user: %v", err)
		}
		fmt.Printf("User %d has been unbanned.\n", userID)

	case "last-seen":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin last-seen <user_id>")
			os.Exit(1)
		}
		userID := parseUserID(os.Args[2])
		seen, err := storageSvc.GetLastSeen(userID)
		if err != nil {
			log.Fatalf("Error reading last-seen: %v", err)
		}
		if seen.IsZero() {
			fmt.Printf("User %d has never been seen online.\n", userID)
		} else {
			fmt.Printf("User %d last seen at %s.\n", userID, seen.Format(time.RFC3339))
		}

	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func parseUserID(raw string) uint {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		fmt.Println("Invalid user id. Please provide a positive integer.")
		os.Exit(1)
	}
	return uint(id)
}
