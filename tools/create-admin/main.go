package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yashrajoria/lezzetli-admin/auth"
	"github.com/yashrajoria/lezzetli-admin/models"
	aws_pkg "github.com/yashrajoria/lezzetli-admin/pkg/aws"
	ddb "github.com/yashrajoria/lezzetli-admin/pkg/dynamodb"
	"github.com/yashrajoria/lezzetli-admin/repository"
)

func main() {
	_ = godotenv.Load()

	var email, name, password, driver string
	flag.StringVar(&email, "email", "", "admin e-mail (required)")
	flag.StringVar(&name, "name", "Admin", "display name")
	flag.StringVar(&password, "password", "", "password; generated when empty")
	flag.StringVar(&driver, "driver", getEnv("STORE_DRIVER", "dynamodb"), "store driver: dynamodb or mongo")
	flag.Parse()

	email = strings.TrimSpace(email)
	if email == "" {
		log.Fatal("-email is required")
	}
	generated := false
	if password == "" {
		p, err := auth.GeneratePassword(16)
		if err != nil {
			log.Fatalf("generate password: %v", err)
		}
		password, generated = p, true
	}

	ctx := context.Background()
	var store repository.Store
	switch driver {
	case "mongo":
		client, err := repository.ConnectMongo(ctx, os.Getenv("MONGO_DB_URL"))
		if err != nil {
			log.Fatalf("mongo connect: %v", err)
		}
		defer repository.DisconnectMongo(client)
		store = repository.NewMongoStore(client.Database(getEnv("MONGO_DB_NAME", "lezzetli")))
	case "dynamodb":
		endpoint := os.Getenv("AWS_ENDPOINT")
		awsCfg, err := aws_pkg.LoadAWSConfig(ctx, aws_pkg.Options{Region: os.Getenv("AWS_REGION"), Endpoint: endpoint})
		if err != nil {
			log.Fatalf("aws config: %v", err)
		}
		store = repository.NewDynamoStore(ddb.NewClient(awsCfg, endpoint), os.Getenv("DDB_TABLE_PREFIX"))
	default:
		log.Fatalf("unsupported driver %q", driver)
	}
	store = repository.NewRetryStore(store, repository.DefaultRetryPolicy())

	existing, err := store.Query(ctx, repository.CredentialQuery(models.CollectionAdminUsers, email))
	if err != nil {
		log.Fatalf("lookup %s: %v", email, err)
	}
	if len(existing) > 0 {
		log.Fatalf("an admin with e-mail %s already exists (id=%s)", email, existing[0].ID())
	}

	hash, err := auth.BcryptHasher{}.Hash(password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	id, err := store.Add(ctx, models.CollectionAdminUsers, models.Document{
		"name":      name,
		"email":     email,
		"password":  hash,
		"role":      string(auth.RoleAdmin),
		"createdAt": time.Now().UTC(),
	})
	if err != nil {
		log.Fatalf("create admin: %v", err)
	}

	fmt.Printf("Admin created. id=%s email=%s\n", id, email)
	if generated {
		fmt.Printf("Generated password: %s\n", password)
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
