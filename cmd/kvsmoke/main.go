/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// kvsmoke seeds a keyspace with sample players and runs a handful of queries
// against it. It defaults to the in-memory backend; pointed at DynamoDB it
// doubles as a connectivity check for a deployed table.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	keyvalue "github.com/suparena/keyvalue"
	"github.com/suparena/keyvalue/datastore"
	"github.com/suparena/keyvalue/dynamo"
	"github.com/suparena/keyvalue/mapstore"
	"github.com/suparena/keyvalue/query"
	"github.com/suparena/keyvalue/registry"
)

var (
	versionFlag = flag.Bool("version", false, "Show version information")
	vFlag       = flag.Bool("v", false, "Show version information (short)")
	configFlag  = flag.String("config", "", "Path to YAML config file")
)

// Config selects the backing store.
type Config struct {
	Backend string `yaml:"backend"` // "map" (default) or "dynamo"
	Dynamo  struct {
		Table  string `yaml:"table"`
		Region string `yaml:"region"`
	} `yaml:"dynamo"`
}

// Player is the demo entity seeded into the store.
type Player struct {
	ID        string          `json:"id" dynamodbav:"Id"`
	Firstname string          `json:"firstname" dynamodbav:"Firstname"`
	Lastname  string          `json:"lastname" dynamodbav:"Lastname"`
	Age       int             `json:"age" dynamodbav:"Age"`
	JoinedAt  strfmt.DateTime `json:"joinedAt" dynamodbav:"JoinedAt"`
}

func init() {
	registry.RegisterKeyspace[Player]("players")
	registry.RegisterIDAccessor[Player](
		func(p Player) string { return p.ID },
		func(p *Player, id string) { p.ID = id },
	)
}

func main() {
	flag.Parse()

	if *versionFlag || *vFlag {
		info := keyvalue.GetVersionInfo()
		fmt.Printf("keyvalue kvsmoke version %s\n", info.Version)
		fmt.Printf("Git commit: %s\n", info.GitCommit)
		fmt.Printf("Build date: %s\n", info.BuildDate)
		fmt.Printf("Go version: %s\n", info.GoVersion)
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "kvsmoke: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Credentials come from the environment; .env is a convenience for
	// local runs and its absence is not an error.
	_ = godotenv.Load()

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		return err
	}

	adapter, err := openAdapter(cfg)
	if err != nil {
		return err
	}
	tmpl := keyvalue.New(adapter)
	defer tmpl.Destroy()

	ctx := context.Background()

	seed := []Player{
		{Firstname: "bob", Lastname: "stone", Age: 45, JoinedAt: strfmt.DateTime(time.Now().AddDate(-2, 0, 0))},
		{Firstname: "mike", Lastname: "reed", Age: 24, JoinedAt: strfmt.DateTime(time.Now().AddDate(-1, 0, 0))},
		{Firstname: "dave", Lastname: "hill", Age: 16, JoinedAt: strfmt.DateTime(time.Now())},
	}
	for i := range seed {
		inserted, err := tmpl.Insert(ctx, &seed[i]).Await(ctx)
		if err != nil {
			return fmt.Errorf("insert %s: %w", seed[i].Firstname, err)
		}
		fmt.Printf("inserted %s as %s\n", seed[i].Firstname, inserted.(*Player).ID)
	}

	total, err := keyvalue.Count[Player](ctx, tmpl).Await(ctx)
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}
	fmt.Printf("players stored: %d\n", total)

	adultsQ := query.New().WithCriteria("Age > 20")
	adults, err := keyvalue.Find[Player](ctx, tmpl, adultsQ).Collect(ctx)
	if err != nil {
		return fmt.Errorf("query adults: %w", err)
	}
	fmt.Printf("adults (%d):\n", len(adults))
	for _, p := range adults {
		fmt.Printf("  %s %s, age %d\n", p.Firstname, p.Lastname, p.Age)
	}

	matching, err := keyvalue.CountMatching[Player](ctx, tmpl, adultsQ).Await(ctx)
	if err != nil {
		return fmt.Errorf("count matching: %w", err)
	}
	fmt.Printf("adults counted without materializing: %d\n", matching)

	byAge, err := keyvalue.FindAllSorted[Player](ctx, tmpl, "Age").Collect(ctx)
	if err != nil {
		return fmt.Errorf("sorted list: %w", err)
	}
	fmt.Println("by age:")
	for _, p := range byAge {
		fmt.Printf("  %s (%d)\n", p.Firstname, p.Age)
	}

	return nil
}

func loadConfig(path string) (Config, error) {
	var cfg Config
	cfg.Backend = "map"
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func openAdapter(cfg Config) (datastore.Adapter, error) {
	switch cfg.Backend {
	case "", "map":
		return mapstore.New(), nil
	case "dynamo":
		if cfg.Dynamo.Table == "" {
			return nil, fmt.Errorf("dynamo backend requires a table name")
		}
		client, err := dynamo.NewClient(
			os.Getenv("AWS_ACCESS_KEY_ID"),
			os.Getenv("AWS_SECRET_ACCESS_KEY"),
			cfg.Dynamo.Region,
		)
		if err != nil {
			return nil, err
		}
		adapter := dynamo.New(client, cfg.Dynamo.Table)
		dynamo.RegisterDecoderFor[Player](adapter, "players")
		return adapter, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
