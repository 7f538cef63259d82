package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	. "github.com/neolearn/neolearn/apps/api/echo"
	"github.com/neolearn/neolearn/core/user"
	emailsvc "github.com/neolearn/neolearn/services/email"
)

func Test_userApi_register(t *testing.T) {
	resetDB(t)

	existing := createUser(t, "taken", "secret")

	tests := []httpTest{
		{
			name: "empty body", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"username":         "this field is required",
				"password":         "this field is required",
				"password_confirm": "this field is required",
			}),
		},
		{
			name: "username too short", body: marchallObj(t, user.NewUser{Username: "ab", Password: "secret", PasswordConfirm: "secret"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "username must be at least 3 characters in length"}),
		},
		{
			name: "username bad characters", body: marchallObj(t, user.NewUser{Username: "al ice", Password: "secret", PasswordConfirm: "secret"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "only alphanumeric characters and underscores are allowed"}),
		},
		{
			name: "password mismatch", body: marchallObj(t, user.NewUser{Username: "alice", Password: "secret", PasswordConfirm: "sekret"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password_confirm": "password_confirm must be equal to Password"}),
		},
		{
			name: "duplicate username", body: marchallObj(t, user.NewUser{Username: existing.Username, Password: "secret", PasswordConfirm: "secret"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "a user with this username already exists"}),
		},
		{
			name: "ok", body: marchallObj(t, user.NewUser{Username: "alice", Password: "secret", PasswordConfirm: "secret"}),
			wantCode: http.StatusCreated,
			wantData: marchallObj(t, user.User{Username: "alice"}),
		},
		{
			name: "username is cleaned and lowered", body: marchallObj(t, user.NewUser{Username: "  BoB  ", Password: "secret", PasswordConfirm: "secret"}),
			wantCode: http.StatusCreated,
			wantData: marchallObj(t, user.User{Username: "bob"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/register", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// the admin is notified of each registration
	if n := len(emailsvc.SentMessages); n != 2 {
		t.Fatalf("sent emails = %d, want 2", n)
	}
	msg := emailsvc.SentMessages[0]
	if msg.Subject != "New registration" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if len(msg.To) != 1 || msg.To[0].Address != conf.AdminEmail {
		t.Errorf("To = %v, want the admin address", msg.To)
	}
}

func Test_userApi_login(t *testing.T) {
	resetDB(t)

	createUser(t, "alice", "secret")

	tests := []httpTest{
		{
			name: "empty body", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"username": "this field is required",
				"password": "this field is required",
			}),
		},
		{
			name: "unknown user", body: marchallObj(t, LoginRequest{Username: "lol", Password: "secret"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", body: marchallObj(t, LoginRequest{Username: "alice", Password: "sekret"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{name: "ok", body: marchallObj(t, LoginRequest{Username: "alice", Password: "secret"}), wantCode: http.StatusOK},
		{name: "username is case-insensitive", body: marchallObj(t, LoginRequest{Username: " ALICE ", Password: "secret"}), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				var res LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
					t.Fatalf("unmarshalling LoginResponse: %v", err)
				}
				if res.Token == "" {
					t.Error("empty token")
				}
			}
		})
	}
}

func Test_userApi_tokenRefresh(t *testing.T) {
	resetDB(t)

	usr := createUser(t, "alice", "secret")

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/token-refresh")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", getToken(t, usr))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v, body = %s", rec.Code, rec.Body.String())
		}
		var res LoginResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshalling LoginResponse: %v", err)
		}
		if res.Token == "" {
			t.Error("empty token")
		}
	})
}

func Test_userApi_logout(t *testing.T) {
	resetDB(t)

	usr := createUser(t, "alice", "secret")
	token := getToken(t, usr)
	tut.Replies = []string{"Gerne!"}

	// open a conversation, then log out; the conversation is gone
	req, rec := newAuthRequest(http.MethodPost, "/v1/chat/open", token, marchallObj(t, OpenChatRequest{Topic: "Python Grundlagen"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("open failed: code = %v, body = %s", rec.Code, rec.Body.String())
	}

	req, rec = newAuthRequest(http.MethodPost, "/v1/users/logout", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout failed: code = %v", rec.Code)
	}

	req, rec = newAuthRequest(http.MethodGet, "/v1/chat", token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
}
