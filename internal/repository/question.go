package repository

import (
	"context"
	"time"

	"github.com/ntwari02/proviQuiz/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const QuestionsCollection = "questions"

type QuestionRepository struct {
	collection *mongo.Collection
}

func NewQuestionRepository(db *mongo.Database) *QuestionRepository {
	return &QuestionRepository{
		collection: db.Collection(QuestionsCollection),
	}
}

func (r *QuestionRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "isDeleted", Value: 1}, {Key: "id", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "topic", Value: 1}}},
		{Keys: bson.D{{Key: "increment", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "source", Value: 1}}},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return errorf("failed to create question indexes", err)
	}
	return nil
}

func (r *QuestionRepository) Insert(ctx context.Context, q *models.Question) (*models.Question, error) {
	if q.ObjectID.IsZero() {
		q.ObjectID = bson.NewObjectID()
	}
	now := time.Now()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	q.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, q); err != nil {
		return nil, wrapWriteError(err, "failed to insert question")
	}
	return q, nil
}

func (r *QuestionRepository) InsertMany(ctx context.Context, questions []*models.Question) (int, error) {
	if len(questions) == 0 {
		return 0, nil
	}
	now := time.Now()
	docs := make([]any, 0, len(questions))
	for _, q := range questions {
		if q.ObjectID.IsZero() {
			q.ObjectID = bson.NewObjectID()
		}
		if q.CreatedAt.IsZero() {
			q.CreatedAt = now
		}
		q.UpdatedAt = now
		docs = append(docs, q)
	}

	res, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return 0, wrapWriteError(err, "failed to insert questions")
	}
	return len(res.InsertedIDs), nil
}

// MaxID returns the highest numeric id ever assigned, deleted questions included.
func (r *QuestionRepository) MaxID(ctx context.Context) (int, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "id", Value: -1}}).SetProjection(bson.M{"id": 1})

	var q models.Question
	err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&q)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, errorf("failed to find max question id", err)
	}
	return q.ID, nil
}

func (r *QuestionRepository) FindByID(ctx context.Context, id int) (*models.Question, error) {
	var q models.Question
	err := r.collection.FindOne(ctx, bson.M{"id": id, "isDeleted": notDeleted}).Decode(&q)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// FindByIDs looks up questions regardless of soft deletion so that old exams
// keep grading against the stored answer.
func (r *QuestionRepository) FindByIDs(ctx context.Context, ids []int) ([]*models.Question, error) {
	return r.find(ctx, bson.M{"id": bson.M{"$in": ids}}, nil)
}

func (r *QuestionRepository) List(ctx context.Context, query models.QuestionListQuery) ([]*models.Question, int64, error) {
	filter := bson.M{"isDeleted": notDeleted}
	if query.Search != "" {
		match := containsInsensitive(query.Search)
		filter["$or"] = bson.A{
			bson.M{"question": match},
			bson.M{"options.a": match},
			bson.M{"options.b": match},
			bson.M{"options.c": match},
			bson.M{"options.d": match},
			bson.M{"category": match},
			bson.M{"topic": match},
			bson.M{"explanation": match},
		}
	}
	if query.Category != "" {
		filter["category"] = query.Category
	}
	if query.Increment != nil {
		filter["increment"] = *query.Increment
	}
	if query.Status != "" {
		filter["status"] = query.Status
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "id", Value: 1}}).
		SetSkip(int64(query.Skip)).
		SetLimit(int64(query.Limit))

	items, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errorf("failed to count questions", err)
	}
	return items, total, nil
}

func (r *QuestionRepository) Sample(ctx context.Context, size int) ([]*models.Question, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"isDeleted": notDeleted}},
		{"$sample": bson.M{"size": size}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errorf("failed to sample questions", err)
	}
	defer cursor.Close(ctx)

	var questions []*models.Question
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, errorf("failed to decode questions", err)
	}
	return questions, nil
}

// FindPool returns every live question whose id falls in the optional range.
func (r *QuestionRepository) FindPool(ctx context.Context, rangeStart, rangeEnd *int) ([]*models.Question, error) {
	filter := bson.M{"isDeleted": notDeleted}
	idRange := bson.M{}
	if rangeStart != nil {
		idRange["$gte"] = *rangeStart
	}
	if rangeEnd != nil {
		idRange["$lte"] = *rangeEnd
	}
	if len(idRange) > 0 {
		filter["id"] = idRange
	}
	return r.find(ctx, filter, nil)
}

func (r *QuestionRepository) Update(ctx context.Context, id int, patch *models.QuestionPatch) (*models.Question, error) {
	set := bson.M{"updatedAt": time.Now()}
	unset := bson.M{}

	if patch.Question != nil {
		set["question"] = *patch.Question
	}
	if patch.Options != nil {
		set["options"] = *patch.Options
	}
	if patch.Correct != nil {
		set["correct"] = *patch.Correct
	}
	if patch.Explanation != nil {
		set["explanation"] = *patch.Explanation
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Difficulty != nil {
		set["difficulty"] = *patch.Difficulty
	}
	if patch.UnsetImage {
		unset["imageUrl"] = ""
	} else if patch.ImageURL != nil {
		set["imageUrl"] = *patch.ImageURL
	}
	if patch.Topic != nil {
		set["topic"] = *patch.Topic
	}
	if patch.Source != nil {
		set["source"] = *patch.Source
	}
	if patch.Increment != nil {
		set["increment"] = *patch.Increment
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Order != nil {
		set["order"] = *patch.Order
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Question
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"id": id, "isDeleted": notDeleted}, update, opts).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, err
	}
	if err != nil {
		return nil, errorf("failed to update question", err)
	}
	return &updated, nil
}

func (r *QuestionRepository) SoftDelete(ctx context.Context, id int) error {
	update := bson.M{"$set": bson.M{"isDeleted": true, "updatedAt": time.Now()}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"id": id, "isDeleted": notDeleted}, update)
	if err != nil {
		return errorf("failed to delete question", err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteBySource hard deletes an imported batch before it is reimported.
func (r *QuestionRepository) DeleteBySource(ctx context.Context, source string) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"source": source})
	if err != nil {
		return 0, errorf("failed to delete questions by source", err)
	}
	return result.DeletedCount, nil
}

func (r *QuestionRepository) CountActive(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"isDeleted": notDeleted})
	if err != nil {
		return 0, errorf("failed to count questions", err)
	}
	return count, nil
}

// FieldCounts groups live questions by a free-text field (category or topic).
func (r *QuestionRepository) FieldCounts(ctx context.Context, field string) ([]models.NameCount, error) {
	pipeline := []bson.M{
		{"$match": bson.M{
			"isDeleted": notDeleted,
			field:       bson.M{"$exists": true, "$nin": bson.A{nil, ""}},
		}},
		{"$group": bson.M{
			"_id":           "$" + field,
			"questionCount": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"_id": 1}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errorf("failed to aggregate "+field+" counts", err)
	}
	defer cursor.Close(ctx)

	items := []models.NameCount{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, errorf("failed to decode "+field+" counts", err)
	}
	return items, nil
}

func (r *QuestionRepository) RenameField(ctx context.Context, field, oldName, newName string) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{field: oldName, "isDeleted": notDeleted},
		bson.M{"$set": bson.M{field: newName, "updatedAt": time.Now()}},
	)
	if err != nil {
		return 0, errorf("failed to rename "+field, err)
	}
	return result.ModifiedCount, nil
}

func (r *QuestionRepository) UnsetField(ctx context.Context, field, name string) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{field: name, "isDeleted": notDeleted},
		bson.M{"$unset": bson.M{field: ""}, "$set": bson.M{"updatedAt": time.Now()}},
	)
	if err != nil {
		return 0, errorf("failed to remove "+field, err)
	}
	return result.ModifiedCount, nil
}

func (r *QuestionRepository) FindByIncrement(ctx context.Context, increment int) ([]*models.Question, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "order", Value: 1}, {Key: "id", Value: 1}}).
		SetProjection(bson.M{"id": 1, "question": 1, "category": 1, "topic": 1, "status": 1, "increment": 1, "order": 1})

	return r.find(ctx, bson.M{"increment": increment, "isDeleted": notDeleted}, opts)
}

func (r *QuestionRepository) AssignIncrement(ctx context.Context, ids []int, increment int) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"id": bson.M{"$in": ids}, "isDeleted": notDeleted},
		bson.M{"$set": bson.M{"increment": increment, "updatedAt": time.Now()}},
	)
	if err != nil {
		return 0, errorf("failed to assign increment", err)
	}
	return result.ModifiedCount, nil
}

// ReorderIncrement moves the listed questions into the increment and stores
// their position as the display order.
func (r *QuestionRepository) ReorderIncrement(ctx context.Context, ids []int, increment int) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now()
	writes := make([]mongo.WriteModel, 0, len(ids))
	for i, id := range ids {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"id": id, "isDeleted": notDeleted}).
			SetUpdate(bson.M{"$set": bson.M{"increment": increment, "order": i, "updatedAt": now}}))
	}

	if _, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return errorf("failed to reorder increment", err)
	}
	return nil
}

func (r *QuestionRepository) IncrementStats(ctx context.Context) ([]models.IncrementStat, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"isDeleted": notDeleted, "increment": bson.M{"$in": bson.A{1, 2, 3}}}},
		{"$group": bson.M{
			"_id":       "$increment",
			"total":     bson.M{"$sum": 1},
			"published": bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$status", "published"}}, 1, 0}}},
			"draft":     bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$status", "draft"}}, 1, 0}}},
		}},
		{"$sort": bson.M{"_id": 1}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errorf("failed to aggregate increment stats", err)
	}
	defer cursor.Close(ctx)

	stats := []models.IncrementStat{}
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, errorf("failed to decode increment stats", err)
	}
	return stats, nil
}

func publishedIn(increments []int) bson.M {
	return bson.M{
		"isDeleted": notDeleted,
		"status":    models.StatusPublished,
		"increment": bson.M{"$in": increments},
	}
}

func (r *QuestionRepository) CountPublished(ctx context.Context, increments []int) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, publishedIn(increments))
	if err != nil {
		return 0, errorf("failed to count published questions", err)
	}
	return count, nil
}

func (r *QuestionRepository) FindPublished(ctx context.Context, increments []int, limit int) ([]*models.Question, error) {
	opts := options.Find().
		SetLimit(int64(limit)).
		SetProjection(bson.M{"id": 1, "question": 1, "increment": 1, "category": 1})
	return r.find(ctx, publishedIn(increments), opts)
}

func (r *QuestionRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptionsBuilder) ([]*models.Question, error) {
	var (
		cursor *mongo.Cursor
		err    error
	)
	if opts != nil {
		cursor, err = r.collection.Find(ctx, filter, opts)
	} else {
		cursor, err = r.collection.Find(ctx, filter)
	}
	if err != nil {
		return nil, errorf("failed to find questions", err)
	}
	defer cursor.Close(ctx)

	questions := []*models.Question{}
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, errorf("failed to decode questions", err)
	}
	return questions, nil
}
