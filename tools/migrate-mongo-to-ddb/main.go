package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/yashrajoria/lezzetli-admin/auth"
	"github.com/yashrajoria/lezzetli-admin/models"
	aws_pkg "github.com/yashrajoria/lezzetli-admin/pkg/aws"
	ddb "github.com/yashrajoria/lezzetli-admin/pkg/dynamodb"
	"github.com/yashrajoria/lezzetli-admin/repository"
)

var collections = []string{
	models.CollectionCompanies,
	models.CollectionAdminUsers,
	models.CollectionUsers,
	models.CollectionMenus,
	models.CollectionMenuItems,
	models.CollectionOrders,
	models.CollectionCouples,
	models.CollectionGuests,
	models.CollectionEvents,
	models.CollectionBookings,
}

func main() {
	var mongoURI, dbName, prefix, only, endpoint string
	var dryRun bool
	flag.StringVar(&mongoURI, "mongo", os.Getenv("MONGO_DB_URL"), "MongoDB URI")
	flag.StringVar(&dbName, "db", os.Getenv("MONGO_DB_NAME"), "MongoDB database name")
	flag.StringVar(&prefix, "table-prefix", os.Getenv("DDB_TABLE_PREFIX"), "DynamoDB table name prefix")
	flag.StringVar(&endpoint, "endpoint", os.Getenv("AWS_ENDPOINT"), "DynamoDB endpoint override (LocalStack)")
	flag.StringVar(&only, "collections", "", "comma separated subset of collections to copy")
	flag.BoolVar(&dryRun, "dry-run", false, "count documents without writing")
	flag.Parse()

	if mongoURI == "" || dbName == "" {
		log.Fatal("MONGO_DB_URL and MONGO_DB_NAME must be set or provided via flags")
	}

	ctx := context.Background()
	mclient, err := repository.ConnectMongo(ctx, mongoURI)
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer repository.DisconnectMongo(mclient)
	source := repository.NewMongoStore(mclient.Database(dbName))

	awsCfg, err := aws_pkg.LoadAWSConfig(ctx, aws_pkg.Options{Region: os.Getenv("AWS_REGION"), Endpoint: endpoint})
	if err != nil {
		log.Fatalf("aws config: %v", err)
	}
	target := repository.NewDynamoStore(ddb.NewClient(awsCfg, endpoint), prefix)

	selected := collections
	if only != "" {
		selected = strings.Split(only, ",")
	}

	// The migration copies every tenant's data
	admin := auth.Identity{SubjectID: "migration", Role: auth.RoleAdmin}

	var total, failed int
	for _, collection := range selected {
		collection = strings.TrimSpace(collection)
		docs, err := source.Query(ctx, repository.BuildQuery(collection, admin))
		if err != nil {
			log.Fatalf("read %s: %v", collection, err)
		}
		if dryRun {
			log.Printf("%s: %d documents", collection, len(docs))
			total += len(docs)
			continue
		}

		var count int
		for _, doc := range docs {
			if _, err := target.Add(ctx, collection, doc); err != nil {
				log.Printf("failed to write %s/%s to ddb: %v", collection, doc.ID(), err)
				failed++
				continue
			}
			count++
			if count%100 == 0 {
				log.Printf("migrated %d %s", count, collection)
			}
		}
		log.Printf("%s: migrated %d of %d", collection, count, len(docs))
		total += count
	}
	fmt.Printf("Migration complete. migrated=%d failed=%d dry_run=%t\n", total, failed, dryRun)
}
