package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

type QuestionStatus string

const (
	StatusDraft     QuestionStatus = "draft"
	StatusPublished QuestionStatus = "published"
)

// OptionKeys are the answer letters in display order.
var OptionKeys = []string{"a", "b", "c", "d"}

type Options struct {
	A string `json:"a" bson:"a" validate:"min=1"`
	B string `json:"b" bson:"b" validate:"min=1"`
	C string `json:"c" bson:"c" validate:"min=1"`
	D string `json:"d" bson:"d" validate:"min=1"`
}

func (o Options) Get(key string) string {
	switch key {
	case "a":
		return o.A
	case "b":
		return o.B
	case "c":
		return o.C
	case "d":
		return o.D
	}
	return ""
}

type Question struct {
	ObjectID    bson.ObjectID  `json:"_id" bson:"_id,omitempty"`
	ID          int            `json:"id" bson:"id"`
	Question    string         `json:"question" bson:"question"`
	Options     Options        `json:"options" bson:"options"`
	Correct     string         `json:"correct" bson:"correct"`
	Explanation string         `json:"explanation,omitempty" bson:"explanation,omitempty"`
	Category    string         `json:"category,omitempty" bson:"category,omitempty"`
	Difficulty  Difficulty     `json:"difficulty" bson:"difficulty"`
	ImageURL    *string        `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	Topic       string         `json:"topic,omitempty" bson:"topic,omitempty"`
	Source      string         `json:"source,omitempty" bson:"source,omitempty"`
	Increment   *int           `json:"increment,omitempty" bson:"increment,omitempty"`
	Status      QuestionStatus `json:"status" bson:"status"`
	Order       *int           `json:"order,omitempty" bson:"order,omitempty"`
	IsDeleted   bool           `json:"isDeleted" bson:"isDeleted"`
	CreatedAt   time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt" bson:"updatedAt"`
}

var noImageSentinels = map[string]bool{
	"n/a":  true,
	"na":   true,
	"none": true,
	"-":    true,
}

// HasImage reports whether imageUrl points at something. Blank values and the
// placeholders "n/a", "na", "none" and "-" count as no image.
func HasImage(imageURL *string) bool {
	if imageURL == nil {
		return false
	}
	v := strings.ToLower(strings.TrimSpace(*imageURL))
	if v == "" {
		return false
	}
	return !noImageSentinels[v]
}

func (q *Question) HasImage() bool {
	return HasImage(q.ImageURL)
}

type ImageFilter string

const (
	ImageFilterAll    ImageFilter = "all"
	ImageFilterImages ImageFilter = "images"
	ImageFilterText   ImageFilter = "text"
)

func (f ImageFilter) Valid() bool {
	return f == ImageFilterAll || f == ImageFilterImages || f == ImageFilterText
}

// Match reports whether a question with the given image url passes the filter.
func (f ImageFilter) Match(imageURL *string) bool {
	switch f {
	case ImageFilterImages:
		return HasImage(imageURL)
	case ImageFilterText:
		return !HasImage(imageURL)
	}
	return true
}

func ValidIncrement(n int) bool {
	return n >= 1 && n <= 3
}
