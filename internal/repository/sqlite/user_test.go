package sqlite

import (
	"context"
	"errors"
	"testing"

	"studyhub/internal/apperror"
	"studyhub/internal/model"
)

// newTestDB opens an in-memory database with the full schema applied and
// closes it when the test finishes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser is a test helper that creates a user and fails the test if it errors.
func createTestUser(t *testing.T, u *UserStore, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		PasswordHash: "$2a$12$fakefakefakefakefakefake",
		Email:        username + "@example.com",
		Nickname:     username,
	}
	if err := u.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestUserCreate(t *testing.T) {
	u := newTestDB(t).Users()

	user := &model.User{
		Username:     "testuser",
		PasswordHash: "hashed",
		Email:        "test@example.com",
		Nickname:     "Tester",
	}

	if err := u.Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Verify the user was modified in-place (pointer receiver)
	if user.ID == "" {
		t.Error("Create() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Create() did not set user.CreatedAt")
	}
	if user.Role != model.RoleUser {
		t.Errorf("Role = %q, want %q", user.Role, model.RoleUser)
	}
	if user.LoginType != model.LoginGeneral {
		t.Errorf("LoginType = %q, want %q", user.LoginType, model.LoginGeneral)
	}
}

func TestUserCreate_DuplicateUsername(t *testing.T) {
	u := newTestDB(t).Users()

	createTestUser(t, u, "firstuser")

	duplicate := &model.User{
		Username: "firstuser", // same username
		Email:    "other@example.com",
	}
	if err := u.Create(context.Background(), duplicate); err == nil {
		t.Fatal("Create() should have returned an error for duplicate username")
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	u := newTestDB(t).Users()

	createTestUser(t, u, "mailowner")

	duplicate := &model.User{
		Username: "someoneelse",
		Email:    "mailowner@example.com", // same email
	}
	if err := u.Create(context.Background(), duplicate); err == nil {
		t.Fatal("Create() should have returned an error for duplicate email")
	}
}

func TestUserCreate_DuplicateProviderID(t *testing.T) {
	u := newTestDB(t).Users()

	first := &model.User{
		Username:   "google_1",
		Email:      "g1@example.com",
		LoginType:  model.LoginGoogle,
		ProviderID: "google-sub-42",
	}
	if err := u.Create(context.Background(), first); err != nil {
		t.Fatalf("Create() first oauth user: %v", err)
	}

	duplicate := &model.User{
		Username:   "google_2",
		Email:      "g2@example.com",
		LoginType:  model.LoginGoogle,
		ProviderID: "google-sub-42", // same provider identity
	}
	if err := u.Create(context.Background(), duplicate); err == nil {
		t.Fatal("Create() should have returned an error for duplicate provider_id")
	}
}

func TestUserCreate_EmptyProviderIDsDoNotCollide(t *testing.T) {
	u := newTestDB(t).Users()

	// Password users all carry provider_id = ''; the partial unique index
	// must not treat them as duplicates of each other.
	createTestUser(t, u, "plain_one")
	createTestUser(t, u, "plain_two")
}

// =========================================================================
// LOOKUP TESTS
// =========================================================================

func TestUserGetByID(t *testing.T) {
	u := newTestDB(t).Users()
	created := createTestUser(t, u, "getbyid_user")

	found, err := u.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Username != "getbyid_user" {
		t.Errorf("Username = %q, want %q", found.Username, "getbyid_user")
	}
}

func TestUserGetByID_NotFound(t *testing.T) {
	u := newTestDB(t).Users()

	_, err := u.GetByID(context.Background(), "nonexistent-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByUsername(t *testing.T) {
	u := newTestDB(t).Users()
	created := createTestUser(t, u, "lookup_user")

	found, err := u.GetByUsername(context.Background(), "lookup_user")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}
}

func TestUserGetByProviderID(t *testing.T) {
	u := newTestDB(t).Users()

	user := &model.User{
		Username:   "kakao_user",
		Email:      "k@example.com",
		LoginType:  model.LoginKakao,
		ProviderID: "kakao-777",
	}
	if err := u.Create(context.Background(), user); err != nil {
		t.Fatalf("Create() oauth user: %v", err)
	}

	found, err := u.GetByProviderID(context.Background(), "kakao-777")
	if err != nil {
		t.Fatalf("GetByProviderID() error = %v", err)
	}
	if found.ID != user.ID {
		t.Errorf("ID = %q, want %q", found.ID, user.ID)
	}

	// The empty provider_id of password users must never match
	createTestUser(t, u, "plain_user")
	if _, err := u.GetByProviderID(context.Background(), ""); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByProviderID(\"\") error = %v, want ErrNotFound", err)
	}
}

func TestUserExists(t *testing.T) {
	u := newTestDB(t).Users()
	createTestUser(t, u, "present")

	ok, err := u.ExistsByUsername(context.Background(), "present")
	if err != nil || !ok {
		t.Errorf("ExistsByUsername(present) = %v, %v; want true, nil", ok, err)
	}
	ok, err = u.ExistsByUsername(context.Background(), "absent")
	if err != nil || ok {
		t.Errorf("ExistsByUsername(absent) = %v, %v; want false, nil", ok, err)
	}
	ok, err = u.ExistsByEmail(context.Background(), "present@example.com")
	if err != nil || !ok {
		t.Errorf("ExistsByEmail(present@) = %v, %v; want true, nil", ok, err)
	}
}

// =========================================================================
// UPDATE / DELETE TESTS
// =========================================================================

func TestUserUpdate(t *testing.T) {
	u := newTestDB(t).Users()
	user := createTestUser(t, u, "mutable")

	user.Nickname = "renamed"
	user.Role = model.RoleAdmin
	if err := u.Update(context.Background(), user); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, err := u.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByID() after update: %v", err)
	}
	if found.Nickname != "renamed" {
		t.Errorf("Nickname = %q, want %q", found.Nickname, "renamed")
	}
	if found.Role != model.RoleAdmin {
		t.Errorf("Role = %q, want %q", found.Role, model.RoleAdmin)
	}
	// Username is immutable through Update
	if found.Username != "mutable" {
		t.Errorf("Username changed to %q, want %q", found.Username, "mutable")
	}
}

func TestUserUpdate_NotFound(t *testing.T) {
	u := newTestDB(t).Users()

	ghost := &model.User{ID: "no-such-user", Email: "g@example.com"}
	if err := u.Update(context.Background(), ghost); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestUserDelete(t *testing.T) {
	u := newTestDB(t).Users()
	user := createTestUser(t, u, "doomed")

	if err := u.Delete(context.Background(), user.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := u.GetByID(context.Background(), user.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}

	// Double delete reports not found
	if err := u.Delete(context.Background(), user.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// ACTIVITY COUNT TESTS
// =========================================================================

func TestUserCountsForUser(t *testing.T) {
	db := newTestDB(t)
	u := db.Users()
	user := createTestUser(t, u, "author")

	question := &model.Question{UserID: user.ID, Title: "q", Content: "body"}
	if err := db.Questions().Create(context.Background(), question); err != nil {
		t.Fatalf("creating question: %v", err)
	}
	answer := &model.Answer{QuestionID: question.ID, UserID: user.ID, Content: "a"}
	if err := db.Answers().Create(context.Background(), answer); err != nil {
		t.Fatalf("creating answer: %v", err)
	}
	for i := 0; i < 2; i++ {
		comment := &model.Comment{AnswerID: answer.ID, UserID: user.ID, Content: "c"}
		if err := db.Comments().Create(context.Background(), comment); err != nil {
			t.Fatalf("creating comment: %v", err)
		}
	}

	counts, err := u.CountsForUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("CountsForUser() error = %v", err)
	}
	if counts.Questions != 1 || counts.Answers != 1 || counts.Comments != 2 {
		t.Errorf("counts = %+v, want {Questions:1 Answers:1 Comments:2}", counts)
	}
}

func TestUserCountsForUser_NoActivity(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db.Users(), "lurker")

	counts, err := db.Users().CountsForUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("CountsForUser() error = %v", err)
	}
	if counts.Questions != 0 || counts.Answers != 0 || counts.Comments != 0 {
		t.Errorf("counts = %+v, want all zero", counts)
	}
}
