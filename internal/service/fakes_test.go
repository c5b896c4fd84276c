package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"studyhub/internal/apperror"
	"studyhub/internal/model"
	"studyhub/internal/repository"
)

// In-memory fakes for the repository interfaces. Fakes (not a mock
// framework) keep the tests dependency-free and easy to read — you can see
// exactly what each fake does.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func timeNowPlusHour() time.Time {
	return time.Now().Add(time.Hour)
}

// ---------------------------------------------------------------------------
// fakeUserRepo

type fakeUserRepo struct {
	users  map[string]*model.User // keyed by internal ID
	nextID int
	// set to a non-nil error to simulate a database failure
	err error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User), nextID: 1}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if f.err != nil {
		return f.err
	}
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return fmt.Errorf("fake: unique constraint violated")
		}
	}
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	if user.LoginType == "" {
		user.LoginType = model.LoginGeneral
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, apperror.NotFound("user", id)
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeUserRepo) GetByProviderID(ctx context.Context, providerID string) (*model.User, error) {
	for _, u := range f.users {
		if u.ProviderID != "" && u.ProviderID == providerID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", providerID)
}

func (f *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, err := f.GetByUsername(ctx, username)
	return err == nil, nil
}

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUserRepo) List(ctx context.Context, opts repository.ListOptions) ([]model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	users := []model.User{}
	for _, u := range f.users {
		users = append(users, *u)
	}
	return users, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.users[user.ID]; !ok {
		return apperror.NotFound("user", user.ID)
	}
	user.UpdatedAt = time.Now()
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) CountsForUser(ctx context.Context, userID string) (*model.Counts, error) {
	return &model.Counts{}, nil
}

// addUser seeds a user directly, bypassing Create's defaults.
func (f *fakeUserRepo) addUser(t *testing.T, user *model.User) *model.User {
	t.Helper()
	if err := f.Create(context.Background(), user); err != nil {
		t.Fatalf("seeding fake user: %v", err)
	}
	return user
}

// ---------------------------------------------------------------------------
// fakeTokenRepo

type storedToken struct {
	token     string
	expiresAt time.Time
}

type fakeTokenRepo struct {
	rows map[string]storedToken // keyed by user ID, at most one row each
	err  error
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{rows: make(map[string]storedToken)}
}

func (f *fakeTokenRepo) ExistsForUser(ctx context.Context, userID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.rows[userID]
	return ok, nil
}

func (f *fakeTokenRepo) ExistsByToken(ctx context.Context, token string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, row := range f.rows {
		if row.token == token {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTokenRepo) Replace(ctx context.Context, userID, token string, expiresAt time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.rows[userID] = storedToken{token: token, expiresAt: expiresAt}
	return nil
}

func (f *fakeTokenRepo) DeleteForUser(ctx context.Context, userID string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.rows, userID)
	return nil
}

// ---------------------------------------------------------------------------
// fakeQuestionRepo

type fakeQuestionRepo struct {
	questions map[string]*model.Question
	nextID    int
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{questions: make(map[string]*model.Question), nextID: 1}
}

func (f *fakeQuestionRepo) Create(ctx context.Context, q *model.Question) error {
	q.ID = fmt.Sprintf("question-%d", f.nextID)
	f.nextID++
	q.CreatedAt = time.Now()
	q.UpdatedAt = q.CreatedAt
	copied := *q
	f.questions[q.ID] = &copied
	return nil
}

func (f *fakeQuestionRepo) GetByID(ctx context.Context, id string) (*model.Question, error) {
	if q, ok := f.questions[id]; ok {
		copied := *q
		return &copied, nil
	}
	return nil, apperror.NotFound("question", id)
}

func (f *fakeQuestionRepo) List(ctx context.Context, opts repository.ListOptions) ([]model.Question, error) {
	questions := []model.Question{}
	for _, q := range f.questions {
		questions = append(questions, *q)
	}
	return questions, nil
}

func (f *fakeQuestionRepo) Update(ctx context.Context, q *model.Question) error {
	if _, ok := f.questions[q.ID]; !ok {
		return apperror.NotFound("question", q.ID)
	}
	copied := *q
	f.questions[q.ID] = &copied
	return nil
}

func (f *fakeQuestionRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.questions[id]; !ok {
		return apperror.NotFound("question", id)
	}
	delete(f.questions, id)
	return nil
}

// ---------------------------------------------------------------------------
// fakeAnswerRepo

type fakeAnswerRepo struct {
	answers map[string]*model.Answer
	nextID  int
}

func newFakeAnswerRepo() *fakeAnswerRepo {
	return &fakeAnswerRepo{answers: make(map[string]*model.Answer), nextID: 1}
}

func (f *fakeAnswerRepo) Create(ctx context.Context, a *model.Answer) error {
	a.ID = fmt.Sprintf("answer-%d", f.nextID)
	f.nextID++
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	copied := *a
	f.answers[a.ID] = &copied
	return nil
}

func (f *fakeAnswerRepo) GetByID(ctx context.Context, id string) (*model.Answer, error) {
	if a, ok := f.answers[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, apperror.NotFound("answer", id)
}

func (f *fakeAnswerRepo) ListByQuestion(ctx context.Context, questionID string) ([]model.Answer, error) {
	answers := []model.Answer{}
	for _, a := range f.answers {
		if a.QuestionID == questionID {
			answers = append(answers, *a)
		}
	}
	return answers, nil
}

func (f *fakeAnswerRepo) Update(ctx context.Context, a *model.Answer) error {
	if _, ok := f.answers[a.ID]; !ok {
		return apperror.NotFound("answer", a.ID)
	}
	copied := *a
	f.answers[a.ID] = &copied
	return nil
}

func (f *fakeAnswerRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.answers[id]; !ok {
		return apperror.NotFound("answer", id)
	}
	delete(f.answers, id)
	return nil
}

// ---------------------------------------------------------------------------
// fakeCommentRepo

type fakeCommentRepo struct {
	comments map[string]*model.Comment
	nextID   int
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[string]*model.Comment), nextID: 1}
}

func (f *fakeCommentRepo) Create(ctx context.Context, c *model.Comment) error {
	c.ID = fmt.Sprintf("comment-%d", f.nextID)
	f.nextID++
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	copied := *c
	f.comments[c.ID] = &copied
	return nil
}

func (f *fakeCommentRepo) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	if c, ok := f.comments[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, apperror.NotFound("comment", id)
}

func (f *fakeCommentRepo) ListForAnswer(ctx context.Context, answerID string) ([]model.Comment, error) {
	comments := []model.Comment{}
	for _, c := range f.comments {
		if c.AnswerID == answerID && c.ParentID == nil {
			comments = append(comments, *c)
		}
	}
	return comments, nil
}

func (f *fakeCommentRepo) ListReplies(ctx context.Context, parentID string) ([]model.Comment, error) {
	comments := []model.Comment{}
	for _, c := range f.comments {
		if c.ParentID != nil && *c.ParentID == parentID {
			comments = append(comments, *c)
		}
	}
	return comments, nil
}

func (f *fakeCommentRepo) Update(ctx context.Context, c *model.Comment) error {
	if _, ok := f.comments[c.ID]; !ok {
		return apperror.NotFound("comment", c.ID)
	}
	copied := *c
	f.comments[c.ID] = &copied
	return nil
}

func (f *fakeCommentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.comments[id]; !ok {
		return apperror.NotFound("comment", id)
	}
	delete(f.comments, id)
	return nil
}

// ---------------------------------------------------------------------------
// fakeRewardRepo

type fakeRewardRepo struct {
	entries []model.Reward
	err     error
}

func newFakeRewardRepo() *fakeRewardRepo {
	return &fakeRewardRepo{}
}

func (f *fakeRewardRepo) Add(ctx context.Context, r *model.Reward) error {
	if f.err != nil {
		return f.err
	}
	r.ID = fmt.Sprintf("reward-%d", len(f.entries)+1)
	r.CreatedAt = time.Now()
	f.entries = append(f.entries, *r)
	return nil
}

func (f *fakeRewardRepo) ListForUser(ctx context.Context, userID string) ([]model.Reward, error) {
	entries := []model.Reward{}
	for _, e := range f.entries {
		if e.UserID == userID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (f *fakeRewardRepo) TotalForUser(ctx context.Context, userID string) (int, error) {
	total := 0
	for _, e := range f.entries {
		if e.UserID == userID {
			total += e.Points
		}
	}
	return total, nil
}

// Compile-time checks that the fakes satisfy the repository interfaces.
var (
	_ repository.UserRepository         = (*fakeUserRepo)(nil)
	_ repository.RefreshTokenRepository = (*fakeTokenRepo)(nil)
	_ repository.QuestionRepository     = (*fakeQuestionRepo)(nil)
	_ repository.AnswerRepository       = (*fakeAnswerRepo)(nil)
	_ repository.CommentRepository      = (*fakeCommentRepo)(nil)
	_ repository.RewardRepository       = (*fakeRewardRepo)(nil)
)
