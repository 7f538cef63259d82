package main

import (
	"context"
	"testing"

	"github.com/neolearn/neolearn/core"
	"github.com/neolearn/neolearn/core/topic"
	"github.com/neolearn/neolearn/core/user"
	"github.com/neolearn/neolearn/storage/database"
	sqliterepos "github.com/neolearn/neolearn/storage/database/sqlite"
)

func setup(t *testing.T) *commandLine {
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

	return &commandLine{
		db:        db,
		usrRepo:   sqliterepos.NewUserRepository(db),
		topicRepo: sqliterepos.NewTopicRepository(db),
	}
}

type cliTest struct {
	name    string
	args    []string // without program name
	pwd     string
	wantErr error
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"adduser", "-username", "awe"}, wantErr: errHelp},
		{name: "ok", args: []string{"adduser", "-username", "awe"}, pwd: "mdr"},
		{name: "duplicate username", args: []string{"adduser", "-username", "awe"}, pwd: "mdr", wantErr: user.ErrUsernameExists},
		{name: "username is lowered", args: []string{"adduser", "-username", "AWE"}, pwd: "mdr", wantErr: user.ErrUsernameExists},
	}
	for _, tt := range tests {
		tt := tt
		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"admin"}, tt.args...)
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	usr, err := cli.usrRepo.GetUserByUsername(context.Background(), "awe")
	if err != nil {
		t.Fatalf("GetUserByUsername() failed: %v", err)
	}
	if err := usr.CheckPassword("mdr"); err != nil {
		t.Errorf("CheckPassword() failed on the stored hash: %v", err)
	}
}

func Test_commandLine_topics(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	tests := []cliTest{
		{name: "addtopic: no args", args: []string{"addtopic"}, wantErr: errHelp},
		{name: "addtopic: title but no prompt", args: []string{"addtopic", "-title", "Statistik"}, wantErr: errHelp},
		{name: "addtopic: ok", args: []string{"addtopic", "-title", "Statistik", "-prompt", "Du bist Statistik-Tutor."}},
		{name: "addtopic: duplicate title", args: []string{"addtopic", "-title", "Statistik", "-prompt", "lol"}, wantErr: topic.ErrTitleExists},
		{name: "deltopic: no args", args: []string{"deltopic"}, wantErr: errHelp},
		{name: "deltopic: ok", args: []string{"deltopic", "-title", "Statistik"}},
		{name: "deltopic: unknown title is not an error", args: []string{"deltopic", "-title", "lol"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"admin"}, tt.args...)
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if _, err := cli.topicRepo.GetTopicByTitle(ctx, "Statistik"); err != topic.ErrNotFound {
		t.Errorf("GetTopicByTitle() after delete = %v, want %v", err, topic.ErrNotFound)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	// migrating an already migrated database is a no-op
	if err := cli.run([]string{"admin", "migrate"}); err != nil {
		t.Errorf("cli.run() error = %v", err)
	}

	topics, err := cli.topicRepo.QueryAllTopics(context.Background())
	if err != nil {
		t.Fatalf("QueryAllTopics() failed: %v", err)
	}
	if len(topics) != 2 {
		t.Errorf("topics = %d, want the 2 defaults", len(topics))
	}
}
