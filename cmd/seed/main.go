// Package main provides a tool to seed the database with demo users and
// lists for local development.
//
// Usage:
//
//	DATA_PATH=~/tento/data go run ./cmd/seed
//	go run ./cmd/seed --data-path /tmp/tento   # prints session tokens
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/tentoapp/tento-server/internal/domain"
	"github.com/tentoapp/tento-server/internal/service"
	"github.com/tentoapp/tento-server/internal/session"
	"github.com/tentoapp/tento-server/internal/store/sqlite"
)

var dataPath = flag.String("data-path", "", "Data directory (default: $DATA_PATH or ~/tento/data)")

type seedUser struct {
	id       string
	username string
	name     string
	bio      string
	lists    []seedList
}

type seedList struct {
	name  string
	items []string
	tags  []string
}

var seedUsers = []seedUser{
	{
		id:       "user-alice",
		username: "alice",
		name:     "Alice Example",
		bio:      "I rank things so you don't have to.",
		lists: []seedList{
			{
				name:  "Top Ten Albums",
				items: []string{"OK Computer", "Kid A", "In Rainbows", "The Bends", "Amnesiac"},
				tags:  []string{"music", "albums"},
			},
			{
				name:  "Favorite Films",
				items: []string{"Stalker", "Paris, Texas", "In the Mood for Love"},
				tags:  []string{"film"},
			},
		},
	},
	{
		id:       "user-bob",
		username: "bob",
		name:     "Bob Demo",
		bio:      "",
		lists: []seedList{
			{
				name:  "Best Coffee in Town",
				items: []string{"Corner Roasters", "The Daily Grind", "Mornings"},
				tags:  []string{"coffee", "local"},
			},
		},
	},
}

func main() {
	flag.Parse()

	path := *dataPath
	if path == "" {
		path = os.Getenv("DATA_PATH")
	}
	if path == "" {
		path = os.ExpandEnv("$HOME/tento/data")
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	fmt.Printf("Opening database at: %s\n", path)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := sqlite.Open(filepath.Join(path, "tento.db"), logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	keyHex, err := session.LoadOrGenerateKeyHex(path)
	if err != nil {
		log.Fatalf("Failed to load session key: %v", err)
	}
	tokens, err := session.NewTokenService(keyHex, 720*time.Hour)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}

	lists := service.NewListService(store, logger)
	profiles := service.NewProfileService(store, logger)

	ctx := context.Background()

	for _, su := range seedUsers {
		now := time.Now()
		user := &domain.User{
			CreatedAt: now,
			UpdatedAt: now,
			ID:        su.id,
			Username:  su.username,
			Name:      su.name,
			Email:     su.username + "@example.com",
		}

		if err := store.CreateUser(ctx, user); err != nil {
			fmt.Printf("User %s already exists, skipping create\n", su.username)
		} else {
			fmt.Printf("Created user %s\n", su.username)
		}

		if su.bio != "" {
			bio := su.bio
			if err := profiles.UpdateProfile(ctx, su.id, service.UpdateProfileRequest{Bio: &bio}); err != nil {
				log.Fatalf("Failed to set bio for %s: %v", su.username, err)
			}
		}

		for _, sl := range su.lists {
			id, err := lists.CreateList(ctx, su.id, sl.name, sl.items, sl.tags)
			if err != nil {
				fmt.Printf("  List %q: %v\n", sl.name, err)
				continue
			}
			fmt.Printf("  Created list %q (%s)\n", sl.name, id)
		}

		token, err := tokens.Issue(user)
		if err != nil {
			log.Fatalf("Failed to issue token for %s: %v", su.username, err)
		}
		fmt.Printf("  Session token: %s\n\n", token)
	}

	fmt.Println("Done. Try:")
	fmt.Println("  curl http://localhost:8080/api/v1/u/alice")
	fmt.Println("  curl http://localhost:8080/card/profile/alice -o card.png")
}
