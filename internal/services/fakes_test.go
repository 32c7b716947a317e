package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/pgvector/pgvector-go"

	"mailsift/internal/models"
	"mailsift/internal/store"
	"mailsift/pkg/classifier"
)

// fakeProvider returns a fixed vector for every text and counts calls.
type fakeProvider struct {
	vec   []float32
	calls int
	errs  []error
}

func (p *fakeProvider) GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	i := p.calls
	p.calls++
	if i < len(p.errs) && p.errs[i] != nil {
		return pgvector.Vector{}, p.errs[i]
	}
	return pgvector.NewVector(p.vec), nil
}

func (p *fakeProvider) Dimension() int    { return len(p.vec) }
func (p *fakeProvider) Name() string      { return "fake" }
func (p *fakeProvider) ModelName() string { return "fake-embedding-001" }

// fakeMessageStore keeps messages in a map.
type fakeMessageStore struct {
	messages map[string]*models.Message
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{messages: map[string]*models.Message{}}
}

func (s *fakeMessageStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	if _, ok := s.messages[msg.ID]; ok {
		return store.ErrDuplicate
	}
	copied := *msg
	s.messages[msg.ID] = &copied
	return nil
}

func (s *fakeMessageStore) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	msg, ok := s.messages[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *msg
	return &copied, nil
}

func (s *fakeMessageStore) ListMessages(ctx context.Context, limit, offset int) ([]*models.Message, error) {
	ids := make([]string, 0, len(s.messages))
	for id := range s.messages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*models.Message, 0, len(ids))
	for _, id := range ids {
		copied := *s.messages[id]
		out = append(out, &copied)
	}
	if offset > 0 && offset < len(out) {
		out = out[offset:]
	} else if offset >= len(out) {
		out = nil
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeMessageStore) UpdateMessage(ctx context.Context, msg *models.Message) error {
	if _, ok := s.messages[msg.ID]; !ok {
		return store.ErrNotFound
	}
	copied := *msg
	s.messages[msg.ID] = &copied
	return nil
}

func (s *fakeMessageStore) DeleteMessage(ctx context.Context, id string) error {
	if _, ok := s.messages[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.messages, id)
	return nil
}

func (s *fakeMessageStore) SetMessageEmbedding(ctx context.Context, id string, vec pgvector.Vector) error {
	msg, ok := s.messages[id]
	if !ok {
		return store.ErrNotFound
	}
	msg.Embedding = &vec
	return nil
}

func (s *fakeMessageStore) ListMessagesByCategory(ctx context.Context, categoryID int64) ([]*models.Message, error) {
	return nil, nil
}

// fakeCategoryStore keeps categories in a map and assigns sequential ids.
type fakeCategoryStore struct {
	categories map[int64]*models.Category
	nextID     int64
}

func newFakeCategoryStore() *fakeCategoryStore {
	return &fakeCategoryStore{categories: map[int64]*models.Category{}, nextID: 1}
}

func (s *fakeCategoryStore) CreateCategory(ctx context.Context, cat *models.Category) error {
	for _, existing := range s.categories {
		if existing.Name == cat.Name {
			return store.ErrDuplicate
		}
	}
	cat.ID = s.nextID
	s.nextID++
	copied := *cat
	s.categories[cat.ID] = &copied
	return nil
}

func (s *fakeCategoryStore) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	cat, ok := s.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *cat
	return &copied, nil
}

func (s *fakeCategoryStore) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	for _, cat := range s.categories {
		if cat.Name == name {
			copied := *cat
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *fakeCategoryStore) ListCategories(ctx context.Context) ([]*models.Category, error) {
	ids := make([]int64, 0, len(s.categories))
	for id := range s.categories {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*models.Category, 0, len(ids))
	for _, id := range ids {
		copied := *s.categories[id]
		out = append(out, &copied)
	}
	return out, nil
}

func (s *fakeCategoryStore) UpdateCategory(ctx context.Context, cat *models.Category) error {
	if _, ok := s.categories[cat.ID]; !ok {
		return store.ErrNotFound
	}
	copied := *cat
	s.categories[cat.ID] = &copied
	return nil
}

func (s *fakeCategoryStore) DeleteCategory(ctx context.Context, id int64) error {
	if _, ok := s.categories[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

func (s *fakeCategoryStore) SetCategoryEmbedding(ctx context.Context, id int64, vec pgvector.Vector) error {
	cat, ok := s.categories[id]
	if !ok {
		return store.ErrNotFound
	}
	cat.Embedding = &vec
	return nil
}

// fakeClassificationStore keys records by (message, category) like the
// real composite primary key does.
type fakeClassificationStore struct {
	records     map[string]*models.ClassificationRecord
	upsertCalls int
	failNext    error
}

func newFakeClassificationStore() *fakeClassificationStore {
	return &fakeClassificationStore{records: map[string]*models.ClassificationRecord{}}
}

func pairKey(messageID string, categoryID int64) string {
	return fmt.Sprintf("%s/%d", messageID, categoryID)
}

func (s *fakeClassificationStore) UpsertClassifications(ctx context.Context, messageID string, records []*models.ClassificationRecord) error {
	s.upsertCalls++
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return err
	}
	for _, rec := range records {
		copied := *rec
		s.records[pairKey(rec.MessageID, rec.CategoryID)] = &copied
	}
	return nil
}

func (s *fakeClassificationStore) ListAssignmentsForMessage(ctx context.Context, messageID string) ([]*models.CategoryAssignment, error) {
	var out []*models.CategoryAssignment
	for _, rec := range s.records {
		if rec.MessageID != messageID {
			continue
		}
		out = append(out, &models.CategoryAssignment{
			CategoryID:   rec.CategoryID,
			Score:        rec.Score,
			Explanation:  rec.Explanation,
			ClassifiedAt: rec.ClassifiedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out, nil
}

// fakeStrategy returns scripted judgments and records invocations.
type fakeStrategy struct {
	judgments []classifier.Judgment
	err       error
	calls     int
	lastOpts  classifier.Options
}

func (s *fakeStrategy) Classify(ctx context.Context, msg *models.Message, categories []*models.Category, opts classifier.Options) ([]classifier.Judgment, error) {
	s.calls++
	s.lastOpts = opts
	if s.err != nil {
		return nil, s.err
	}
	return s.judgments, nil
}
