package main

import (
	"context"
	"encoding/base64"
	"log"
	"os"

	"github.com/joho/godotenv"
	openai "github.com/sashabaranov/go-openai"

	language "cloud.google.com/go/language/apiv2"
	"google.golang.org/api/option"

	"go-disasterscout/cronjobs"
	"go-disasterscout/db"
	"go-disasterscout/dedup"
	"go-disasterscout/embeddings"
	"go-disasterscout/geocode"
	"go-disasterscout/nlp"
	"go-disasterscout/processor"
	"go-disasterscout/routes"
	"go-disasterscout/search"
	"go-disasterscout/summarization"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		log.Fatal("MONGO_URI is required")
	}
	dbName := os.Getenv("MONGO_DB_NAME")
	if dbName == "" {
		dbName = "disaster_db"
	}

	openaiKey := os.Getenv("OPENAI_API_KEY")
	if openaiKey == "" {
		log.Fatal("OPENAI_API_KEY is required")
	}
	mapsKey := os.Getenv("MAPS_CREDENTIALS")
	if mapsKey == "" {
		log.Fatal("MAPS_CREDENTIALS is required")
	}
	tavilyKey := os.Getenv("TAVILY_API_KEY")
	if tavilyKey == "" {
		log.Fatal("TAVILY_API_KEY is required")
	}

	ctx := context.Background()

	store, err := db.Connect(ctx, mongoURI, dbName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer store.Close(context.Background())

	if err := store.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	openaiClient := openai.NewClient(openaiKey)

	// The Natural Language client is optional. Without it place extraction
	// relies on the chat model alone.
	var langClient *language.Client
	if encodedCreds := os.Getenv("NATURAL_LANGUAGE_CREDENTIALS"); encodedCreds != "" {
		naturalLangCred, err := base64.StdEncoding.DecodeString(encodedCreds)
		if err != nil {
			log.Fatalf("Failed to decode Natural Language credentials: %v", err)
		}
		langClient, err = language.NewClient(ctx, option.WithCredentialsJSON(naturalLangCred))
		if err != nil {
			log.Fatalf("Failed to create Natural Language client: %v", err)
		}
		defer langClient.Close()
	}

	geocoder, err := geocode.NewClient(mapsKey)
	if err != nil {
		log.Fatalf("Failed to create geocoding client: %v", err)
	}

	classifier := nlp.NewClassifier(openaiClient, langClient)
	embedder := embeddings.NewClient(openaiClient)
	searcher := search.NewClient(tavilyKey)
	engine := dedup.NewEngine(store)

	scanner := processor.NewScanner(searcher, classifier, geocoder, embedder, engine)
	briefer := processor.NewBriefer(scanner, store, summarization.NewClient(openaiClient))

	if watchRegions := os.Getenv("WATCH_REGIONS"); watchRegions != "" {
		cronjobs.InitCronJobs(scanner, watchRegions)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	r := routes.SetupRouter(store, scanner, briefer)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
