package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ntwari02/proviQuiz/internal/config"
	"github.com/ntwari02/proviQuiz/internal/database/mongo"
	"github.com/ntwari02/proviQuiz/internal/event"
	"github.com/ntwari02/proviQuiz/internal/importer"
	"github.com/ntwari02/proviQuiz/internal/repository"

	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	inputFlag  = kingpin.Flag("file", "Path to the question bank").Envar("PROVIQUIZ_INPUT").Default(filepath.Join("..", "PROVIQUIZ.txt")).String()
	sourceFlag = kingpin.Flag("source", "Source tag for the imported questions, defaults to the file name").String()
	eventsFlag = kingpin.Flag("events", "Publish a bulk import event to RabbitMQ").Bool()
)

func main() {
	kingpin.CommandLine.Help = "Replace the questions imported from a PROVIQUIZ text bank"
	kingpin.Parse()
	log.SetFlags(log.Ldate | log.Ltime)

	path, err := filepath.Abs(*inputFlag)
	if err != nil {
		log.Fatalf("Invalid input path: %v", err)
	}
	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("Input file not found: %s (set PROVIQUIZ_INPUT or pass --file)", path)
	}
	defer file.Close()

	source := *sourceFlag
	if source == "" {
		source = filepath.Base(path)
	}

	cfg := config.ServiceConfig
	db, err := mongo.Connect(cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongo.DisconnectMongo()

	var publisher event.Publisher
	if *eventsFlag {
		p, err := event.NewEventPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Printf("Warning: Failed to initialize event publisher: %v", err)
		} else {
			defer p.Close()
			publisher = p
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := importer.NewImporter(repository.NewQuestionRepository(db), publisher).Replace(ctx, file, source)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	log.Printf("Inserted %d questions (source=%s)", result.Inserted, source)
}
