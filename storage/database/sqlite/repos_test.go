package sqliterepos

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/neolearn/neolearn/core"
	"github.com/neolearn/neolearn/core/progress"
	"github.com/neolearn/neolearn/core/topic"
	"github.com/neolearn/neolearn/core/user"
	"github.com/neolearn/neolearn/storage/database"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	conf := &core.Config{Database: core.DatabaseConfig{Path: ":memory:"}}
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("database.Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("database.Migrate() failed: %v", err)
	}
	return db
}

func Test_Migrate_seedsDefaultTopics(t *testing.T) {
	db := newTestDB(t)
	repo := NewTopicRepository(db)

	topics, err := repo.QueryAllTopics(context.Background())
	if err != nil {
		t.Fatalf("QueryAllTopics() failed: %v", err)
	}
	if len(topics) != 2 {
		t.Fatalf("seeded topics = %d, want 2", len(topics))
	}

	// re-running must not duplicate the seed
	if err := database.Migrate(db); err != nil {
		t.Fatalf("database.Migrate() failed: %v", err)
	}
	topics, _ = repo.QueryAllTopics(context.Background())
	if len(topics) != 2 {
		t.Errorf("topics after re-migrate = %d, want 2", len(topics))
	}
}

func Test_UserRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	if err := repo.CheckUsernameUniqueness(ctx, "alice"); err != nil {
		t.Errorf("CheckUsernameUniqueness() = %v, want nil", err)
	}

	usr := user.User{Username: "alice"}
	if err := usr.SetPassword("secret"); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	if _, err := repo.CreateUser(ctx, usr); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}

	if err := repo.CheckUsernameUniqueness(ctx, "alice"); err != user.ErrUsernameExists {
		t.Errorf("CheckUsernameUniqueness() = %v, want %v", err, user.ErrUsernameExists)
	}
	if _, err := repo.CreateUser(ctx, usr); err != user.ErrUsernameExists {
		t.Errorf("CreateUser() duplicate = %v, want %v", err, user.ErrUsernameExists)
	}

	got, err := repo.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername() failed: %v", err)
	}
	if err := got.CheckPassword("secret"); err != nil {
		t.Errorf("CheckPassword() failed on the stored hash: %v", err)
	}
	if err := got.CheckPassword("wrong"); err == nil {
		t.Error("CheckPassword() accepted a wrong password")
	}

	if _, err := repo.GetUserByUsername(ctx, "bob"); err != user.ErrNotFound {
		t.Errorf("GetUserByUsername() = %v, want %v", err, user.ErrNotFound)
	}
}

func Test_TopicRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewTopicRepository(db)
	ctx := context.Background()

	nt := topic.Topic{Title: "Statistik", Prompt: "Du bist Statistik-Tutor."}
	if _, err := repo.CreateTopic(ctx, nt); err != nil {
		t.Fatalf("CreateTopic() failed: %v", err)
	}
	if err := repo.CheckTitleUniqueness(ctx, "Statistik"); err != topic.ErrTitleExists {
		t.Errorf("CheckTitleUniqueness() = %v, want %v", err, topic.ErrTitleExists)
	}
	if _, err := repo.CreateTopic(ctx, nt); err != topic.ErrTitleExists {
		t.Errorf("CreateTopic() duplicate = %v, want %v", err, topic.ErrTitleExists)
	}

	got, err := repo.GetTopicByTitle(ctx, "Statistik")
	if err != nil {
		t.Fatalf("GetTopicByTitle() failed: %v", err)
	}
	if got.Prompt != nt.Prompt {
		t.Errorf("Prompt = %q, want %q", got.Prompt, nt.Prompt)
	}

	if _, err := repo.GetTopicByTitle(ctx, "lol"); err != topic.ErrNotFound {
		t.Errorf("GetTopicByTitle() = %v, want %v", err, topic.ErrNotFound)
	}

	if err := repo.DeleteTopicByTitle(ctx, "Statistik"); err != nil {
		t.Fatalf("DeleteTopicByTitle() failed: %v", err)
	}
	if _, err := repo.GetTopicByTitle(ctx, "Statistik"); err != topic.ErrNotFound {
		t.Errorf("GetTopicByTitle() after delete = %v, want %v", err, topic.ErrNotFound)
	}
	// deleting an unknown title is not an error
	if err := repo.DeleteTopicByTitle(ctx, "lol"); err != nil {
		t.Errorf("DeleteTopicByTitle() unknown title = %v, want nil", err)
	}
}

func Test_ProgressRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewProgressRepository(db)
	ctx := context.Background()

	has, err := repo.HasRecord(ctx, "alice", "Python Grundlagen")
	if err != nil {
		t.Fatalf("HasRecord() failed: %v", err)
	}
	if has {
		t.Error("HasRecord() = true on an empty ledger")
	}

	rec := progress.Record{UserID: "alice", Topic: "Python Grundlagen", Passed: true}
	if err := repo.CreateRecord(ctx, rec); err != nil {
		t.Fatalf("CreateRecord() failed: %v", err)
	}
	// the ledger is append-only; duplicates are accepted
	if err := repo.CreateRecord(ctx, rec); err != nil {
		t.Fatalf("CreateRecord() duplicate failed: %v", err)
	}

	has, err = repo.HasRecord(ctx, "alice", "Python Grundlagen")
	if err != nil {
		t.Fatalf("HasRecord() failed: %v", err)
	}
	if !has {
		t.Error("HasRecord() = false after recording")
	}

	// scoped per (user, topic)
	if has, _ = repo.HasRecord(ctx, "bob", "Python Grundlagen"); has {
		t.Error("HasRecord() leaked across users")
	}
	if has, _ = repo.HasRecord(ctx, "alice", "Online Marketing"); has {
		t.Error("HasRecord() leaked across topics")
	}
}
