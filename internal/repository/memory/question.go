package memory

import (
	"context"
	"math/rand/v2"
	"slices"
	"sort"
	"time"

	"github.com/ntwari02/proviQuiz/internal/models"
	"github.com/ntwari02/proviQuiz/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type QuestionRepository struct {
	db *DB
}

func cloneQuestion(q *models.Question) *models.Question {
	c := *q
	return &c
}

func questionField(q *models.Question, field string) string {
	switch field {
	case "category":
		return q.Category
	case "topic":
		return q.Topic
	case "source":
		return q.Source
	}
	return ""
}

func setQuestionField(q *models.Question, field, value string) {
	switch field {
	case "category":
		q.Category = value
	case "topic":
		q.Topic = value
	case "source":
		q.Source = value
	}
}

func (r *QuestionRepository) live(match func(q *models.Question) bool) []*models.Question {
	out := []*models.Question{}
	for _, q := range r.db.questions {
		if !q.IsDeleted && (match == nil || match(q)) {
			out = append(out, q)
		}
	}
	return out
}

func (r *QuestionRepository) indexOf(id int) int {
	for i, q := range r.db.questions {
		if q.ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(questions []*models.Question) []*models.Question {
	out := make([]*models.Question, 0, len(questions))
	for _, q := range questions {
		out = append(out, cloneQuestion(q))
	}
	return out
}

func sortByID(questions []*models.Question) {
	sort.SliceStable(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
}

func (r *QuestionRepository) insertLocked(q *models.Question, now time.Time) error {
	if r.indexOf(q.ID) >= 0 {
		return repository.ErrDuplicateKey
	}
	if q.ObjectID.IsZero() {
		q.ObjectID = bson.NewObjectID()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	q.UpdatedAt = now
	r.db.questions = append(r.db.questions, cloneQuestion(q))
	return nil
}

func (r *QuestionRepository) Insert(ctx context.Context, q *models.Question) (*models.Question, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if err := r.insertLocked(q, time.Now()); err != nil {
		return nil, err
	}
	return q, nil
}

// InsertMany is all or nothing, matching an ordered insert that fails on the first duplicate.
func (r *QuestionRepository) InsertMany(ctx context.Context, questions []*models.Question) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	seen := map[int]bool{}
	for _, q := range questions {
		if seen[q.ID] || r.indexOf(q.ID) >= 0 {
			return 0, repository.ErrDuplicateKey
		}
		seen[q.ID] = true
	}
	now := time.Now()
	for _, q := range questions {
		if err := r.insertLocked(q, now); err != nil {
			return 0, err
		}
	}
	return len(questions), nil
}

func (r *QuestionRepository) MaxID(ctx context.Context) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	maxID := 0
	for _, q := range r.db.questions {
		if q.ID > maxID {
			maxID = q.ID
		}
	}
	return maxID, nil
}

func (r *QuestionRepository) FindByID(ctx context.Context, id int) (*models.Question, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 || r.db.questions[i].IsDeleted {
		return nil, errNotFound
	}
	return cloneQuestion(r.db.questions[i]), nil
}

// Find returns a question whether or not it was soft deleted.
func (r *QuestionRepository) Find(id int) (*models.Question, bool) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, false
	}
	return cloneQuestion(r.db.questions[i]), true
}

func (r *QuestionRepository) FindByIDs(ctx context.Context, ids []int) ([]*models.Question, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := []*models.Question{}
	for _, q := range r.db.questions {
		if slices.Contains(ids, q.ID) {
			out = append(out, cloneQuestion(q))
		}
	}
	return out, nil
}

func matchesSearch(q *models.Question, search string) bool {
	for _, field := range []string{
		q.Question, q.Options.A, q.Options.B, q.Options.C, q.Options.D,
		q.Category, q.Topic, q.Explanation,
	} {
		if containsFold(field, search) {
			return true
		}
	}
	return false
}

func (r *QuestionRepository) List(ctx context.Context, query models.QuestionListQuery) ([]*models.Question, int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	matched := r.live(func(q *models.Question) bool {
		if query.Search != "" && !matchesSearch(q, query.Search) {
			return false
		}
		if query.Category != "" && q.Category != query.Category {
			return false
		}
		if query.Increment != nil && (q.Increment == nil || *q.Increment != *query.Increment) {
			return false
		}
		if query.Status != "" && string(q.Status) != query.Status {
			return false
		}
		return true
	})
	sortByID(matched)
	return cloneAll(window(matched, query.Skip, query.Limit)), int64(len(matched)), nil
}

func (r *QuestionRepository) Sample(ctx context.Context, size int) ([]*models.Question, error) {
	r.db.mu.RLock()
	pool := cloneAll(r.live(nil))
	r.db.mu.RUnlock()

	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if size < len(pool) {
		pool = pool[:size]
	}
	return pool, nil
}

func (r *QuestionRepository) FindPool(ctx context.Context, rangeStart, rangeEnd *int) ([]*models.Question, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return cloneAll(r.live(func(q *models.Question) bool {
		if rangeStart != nil && q.ID < *rangeStart {
			return false
		}
		if rangeEnd != nil && q.ID > *rangeEnd {
			return false
		}
		return true
	})), nil
}

func applyQuestionPatch(q *models.Question, patch *models.QuestionPatch) {
	if patch.Question != nil {
		q.Question = *patch.Question
	}
	if patch.Options != nil {
		q.Options = *patch.Options
	}
	if patch.Correct != nil {
		q.Correct = *patch.Correct
	}
	if patch.Explanation != nil {
		q.Explanation = *patch.Explanation
	}
	if patch.Category != nil {
		q.Category = *patch.Category
	}
	if patch.Difficulty != nil {
		q.Difficulty = *patch.Difficulty
	}
	if patch.UnsetImage {
		q.ImageURL = nil
	} else if patch.ImageURL != nil {
		v := *patch.ImageURL
		q.ImageURL = &v
	}
	if patch.Topic != nil {
		q.Topic = *patch.Topic
	}
	if patch.Source != nil {
		q.Source = *patch.Source
	}
	if patch.Increment != nil {
		v := *patch.Increment
		q.Increment = &v
	}
	if patch.Status != nil {
		q.Status = *patch.Status
	}
	if patch.Order != nil {
		v := *patch.Order
		q.Order = &v
	}
}

func (r *QuestionRepository) Update(ctx context.Context, id int, patch *models.QuestionPatch) (*models.Question, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 || r.db.questions[i].IsDeleted {
		return nil, errNotFound
	}
	q := r.db.questions[i]
	applyQuestionPatch(q, patch)
	q.UpdatedAt = time.Now()
	return cloneQuestion(q), nil
}

func (r *QuestionRepository) SoftDelete(ctx context.Context, id int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 || r.db.questions[i].IsDeleted {
		return errNotFound
	}
	r.db.questions[i].IsDeleted = true
	r.db.questions[i].UpdatedAt = time.Now()
	return nil
}

func (r *QuestionRepository) DeleteBySource(ctx context.Context, source string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	kept := r.db.questions[:0]
	var deleted int64
	for _, q := range r.db.questions {
		if q.Source == source {
			deleted++
			continue
		}
		kept = append(kept, q)
	}
	r.db.questions = kept
	return deleted, nil
}

func (r *QuestionRepository) CountActive(ctx context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return int64(len(r.live(nil))), nil
}

func (r *QuestionRepository) FieldCounts(ctx context.Context, field string) ([]models.NameCount, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	counts := map[string]int{}
	for _, q := range r.live(nil) {
		if name := questionField(q, field); name != "" {
			counts[name]++
		}
	}

	items := make([]models.NameCount, 0, len(counts))
	for name, n := range counts {
		items = append(items, models.NameCount{Name: name, QuestionCount: n})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (r *QuestionRepository) RenameField(ctx context.Context, field, oldName, newName string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := time.Now()
	var modified int64
	for _, q := range r.live(func(q *models.Question) bool { return questionField(q, field) == oldName }) {
		setQuestionField(q, field, newName)
		q.UpdatedAt = now
		modified++
	}
	return modified, nil
}

func (r *QuestionRepository) UnsetField(ctx context.Context, field, name string) (int64, error) {
	return r.RenameField(ctx, field, name, "")
}

// orderLess sorts questions without an explicit order first, like Mongo sorts nulls.
func orderLess(a, b *models.Question) bool {
	switch {
	case a.Order == nil && b.Order != nil:
		return true
	case a.Order != nil && b.Order == nil:
		return false
	case a.Order != nil && b.Order != nil && *a.Order != *b.Order:
		return *a.Order < *b.Order
	}
	return a.ID < b.ID
}

func inIncrement(increment int) func(q *models.Question) bool {
	return func(q *models.Question) bool {
		return q.Increment != nil && *q.Increment == increment
	}
}

func (r *QuestionRepository) FindByIncrement(ctx context.Context, increment int) ([]*models.Question, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	items := cloneAll(r.live(inIncrement(increment)))
	sort.SliceStable(items, func(i, j int) bool { return orderLess(items[i], items[j]) })
	return items, nil
}

func (r *QuestionRepository) AssignIncrement(ctx context.Context, ids []int, increment int) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := time.Now()
	var modified int64
	for _, q := range r.live(func(q *models.Question) bool { return slices.Contains(ids, q.ID) }) {
		v := increment
		q.Increment = &v
		q.UpdatedAt = now
		modified++
	}
	return modified, nil
}

func (r *QuestionRepository) ReorderIncrement(ctx context.Context, ids []int, increment int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := time.Now()
	for pos, id := range ids {
		i := r.indexOf(id)
		if i < 0 || r.db.questions[i].IsDeleted {
			continue
		}
		q := r.db.questions[i]
		inc, order := increment, pos
		q.Increment = &inc
		q.Order = &order
		q.UpdatedAt = now
	}
	return nil
}

func (r *QuestionRepository) IncrementStats(ctx context.Context) ([]models.IncrementStat, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	stats := []models.IncrementStat{}
	for increment := 1; increment <= 3; increment++ {
		stat := models.IncrementStat{Increment: increment}
		for _, q := range r.live(inIncrement(increment)) {
			stat.Total++
			switch q.Status {
			case models.StatusPublished:
				stat.Published++
			case models.StatusDraft:
				stat.Draft++
			}
		}
		if stat.Total > 0 {
			stats = append(stats, stat)
		}
	}
	return stats, nil
}

func publishedIn(increments []int) func(q *models.Question) bool {
	return func(q *models.Question) bool {
		return q.Status == models.StatusPublished && q.Increment != nil && slices.Contains(increments, *q.Increment)
	}
}

func (r *QuestionRepository) CountPublished(ctx context.Context, increments []int) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return int64(len(r.live(publishedIn(increments)))), nil
}

func (r *QuestionRepository) FindPublished(ctx context.Context, increments []int, limit int) ([]*models.Question, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return cloneAll(window(r.live(publishedIn(increments)), 0, limit)), nil
}
