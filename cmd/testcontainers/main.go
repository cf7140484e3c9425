package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/gigcrew/internal/devdb"
	"github.com/localnerve/gigcrew/internal/logging"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	var hostPort string
	flag.StringVar(&hostPort, "p", "", "fixed host port for postgres")
	flag.Parse()

	usage := `
Run a development Postgres for gigcrew in a container and print the DB_*
settings that reach it. The container is removed on SIGINT or SIGTERM.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH] [-p HOST_PORT]

ENV_FILE_PATH: path to a .env file (DB_IMAGE, DB_DATABASE, DB_APP_USER, DB_APP_PASSWORD)
HOST_PORT: bind postgres to this host port instead of a random one

example
  testcontainers -f /path/to/something/.env -p 5432
`
	// if -h flag print usage and return
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	}

	if _, err := logging.Init("info", "console"); err != nil {
		log.Fatalf("Failed to initialize logging: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	pg, err := devdb.StartPostgres(ctx, devdb.Options{
		Image:    os.Getenv("DB_IMAGE"),
		Database: os.Getenv("DB_DATABASE"),
		User:     os.Getenv("DB_APP_USER"),
		Password: os.Getenv("DB_APP_PASSWORD"),
		HostPort: hostPort,
	})
	if err != nil {
		log.Fatalf("Failed to create test containers: %v\n", err)
	}

	env := pg.Env()
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s=%s\n", k, env[k])
	}

	<-ctx.Done()
	log.Printf("\nReceived signal, terminating test containers...\n")
	if err := pg.Terminate(context.Background()); err != nil {
		log.Printf("Failed to terminate postgres: %v\n", err)
	}
}
