package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/ntwari02/proviQuiz/internal/event"
	"github.com/ntwari02/proviQuiz/internal/models"
)

var ErrNoQuestions = errors.New("no questions parsed")

// Store is the slice of the question repository the importer writes to.
type Store interface {
	DeleteBySource(ctx context.Context, source string) (int64, error)
	InsertMany(ctx context.Context, questions []*models.Question) (int, error)
}

type Result struct {
	Parsed   int
	Deleted  int64
	Inserted int
}

type Importer struct {
	store     Store
	publisher event.Publisher
}

// NewImporter returns an importer. publisher may be nil.
func NewImporter(store Store, publisher event.Publisher) *Importer {
	return &Importer{store: store, publisher: publisher}
}

// Replace parses r and swaps every question tagged with source for the parsed
// set, numbered from 1. Nothing is deleted when the bank yields no questions.
func (im *Importer) Replace(ctx context.Context, r io.Reader, source string) (*Result, error) {
	questions, err := Parse(r, source, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	log.Printf("Parsed %d questions from %s", len(questions), source)

	deleted, err := im.store.DeleteBySource(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to delete questions from %s: %w", source, err)
	}
	log.Printf("Deleted %d existing questions (source=%s)", deleted, source)

	inserted, err := im.store.InsertMany(ctx, questions)
	if err != nil {
		return nil, fmt.Errorf("failed to insert questions: %w", err)
	}

	if im.publisher != nil {
		ids := make([]int, 0, len(questions))
		for _, q := range questions {
			ids = append(ids, q.ID)
		}
		ev := event.NewQuestionEvent(event.EventTypeQuestionsBulkImported, ids, nil)
		if err := im.publisher.PublishQuestionEvent(ev); err != nil {
			log.Printf("Warning: Failed to publish import event: %v", err)
		}
	}

	return &Result{Parsed: len(questions), Deleted: deleted, Inserted: inserted}, nil
}
