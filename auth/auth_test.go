package auth

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/soundcrew/soundcrew/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	var c config.Config
	c.Auth.DB.Driver = "sqlite3"
	c.Auth.DB.Source = filepath.Join(t.TempDir(), "auth.db")
	c.Auth.SessionAge = time.Hour
	c.Auth.AccessToken.Issuer = "soundcrew"
	c.Auth.AccessToken.Age = time.Hour
	c.Auth.AccessToken.Secret = "test-secret"
	return &c
}

func testAuth(t *testing.T) *Auth {
	t.Helper()
	a := NewAuth(testConfig(t))
	err := a.Open()
	if err != nil {
		t.Fatalf("Open %s\n", err)
	}
	t.Cleanup(a.Close)
	return a
}

func TestAddUser(t *testing.T) {
	a := testAuth(t)
	err := a.AddUser("joe@soundcrew.test", "testpass")
	if err != nil {
		t.Errorf("AddUser %s\n", err)
	}
}

func TestLogin(t *testing.T) {
	a := testAuth(t)
	a.AddUser("joe@soundcrew.test", "testpass")

	session, err := a.Login("joe@soundcrew.test", "testpass")
	if err != nil {
		t.Errorf("login should have worked: %s\n", err)
	}
	if len(session.Token) == 0 {
		t.Errorf("no session token")
	}
	if session.Expired() {
		t.Errorf("session should not be expired")
	}

	_, err = a.Login("joe@soundcrew.test", "badpass")
	if err == nil {
		t.Errorf("should be incorrect password")
	}

	_, err = a.Login("bad@user.test", "testpass")
	if err == nil {
		t.Errorf("should be incorrect user")
	}
}

func TestAccessToken(t *testing.T) {
	a := testAuth(t)
	a.AddUser("joe@soundcrew.test", "testpass")

	session, err := a.Login("joe@soundcrew.test", "testpass")
	if err != nil {
		t.Fatalf("Login %s\n", err)
	}

	token, err := a.NewAccessToken(session)
	if err != nil {
		t.Fatalf("NewAccessToken %s\n", err)
	}

	u, err := a.CheckAccessTokenUser(token)
	if err != nil {
		t.Errorf("CheckAccessTokenUser %s\n", err)
	}
	if u.Name != "joe@soundcrew.test" {
		t.Errorf("wrong token user %s\n", u.Name)
	}

	_, err = a.CheckAccessTokenUser(token + "x")
	if err == nil {
		t.Errorf("tampered token should fail")
	}
}

func TestLogout(t *testing.T) {
	a := testAuth(t)
	a.AddUser("joe@soundcrew.test", "testpass")

	session, err := a.Login("joe@soundcrew.test", "testpass")
	if err != nil {
		t.Fatalf("Login %s\n", err)
	}
	if a.TokenSession(session.Token) == nil {
		t.Errorf("session should exist")
	}

	a.Logout(session)

	if a.TokenSession(session.Token) != nil {
		t.Errorf("session should be gone")
	}
}

func TestAuthenticate(t *testing.T) {
	a := testAuth(t)
	a.AddUser("joe@soundcrew.test", "testpass")

	session, err := a.Login("joe@soundcrew.test", "testpass")
	if err != nil {
		t.Fatalf("Login %s\n", err)
	}
	if !a.Authenticate(session.Token) {
		t.Errorf("session token should authenticate")
	}

	token, err := a.NewAccessToken(session)
	if err != nil {
		t.Fatalf("NewAccessToken %s\n", err)
	}
	if !a.Authenticate(token) {
		t.Errorf("access token should authenticate")
	}

	if a.Authenticate("bogus") {
		t.Errorf("bogus token should not authenticate")
	}

	a.Logout(session)
	if a.Authenticate(session.Token) {
		t.Errorf("dead session token should not authenticate")
	}
}

func TestLogoutAll(t *testing.T) {
	a := testAuth(t)
	a.AddUser("joe@soundcrew.test", "testpass")

	s1, _ := a.Login("joe@soundcrew.test", "testpass")
	s2, _ := a.Login("joe@soundcrew.test", "testpass")

	a.LogoutAll("joe@soundcrew.test")

	if a.TokenSession(s1.Token) != nil || a.TokenSession(s2.Token) != nil {
		t.Errorf("all sessions should be gone")
	}
}

func TestStateWatcher(t *testing.T) {
	a := testAuth(t)
	a.AddUser("joe@soundcrew.test", "testpass")

	w := a.Subscribe()
	session, err := a.Login("joe@soundcrew.test", "testpass")
	if err != nil {
		t.Fatalf("Login %s\n", err)
	}

	e := <-w.C
	if e.Type != SignedIn || e.User != "joe@soundcrew.test" {
		t.Errorf("unexpected event %v\n", e)
	}

	a.Logout(session)
	e = <-w.C
	if e.Type != SignedOut {
		t.Errorf("expected sign-out, got %v\n", e)
	}

	a.Unsubscribe(w)
	if _, ok := <-w.C; ok {
		t.Errorf("channel should be closed")
	}
}

func TestPurgeExpired(t *testing.T) {
	a := testAuth(t)
	a.AddUser("joe@soundcrew.test", "testpass")

	session, _ := a.Login("joe@soundcrew.test", "testpass")
	a.db.Model(&session).Update("expires", time.Now().Add(-time.Hour))

	err := a.PurgeExpired()
	if err != nil {
		t.Fatalf("PurgeExpired %s\n", err)
	}
	if a.TokenSession(session.Token) != nil {
		t.Errorf("expired session should be purged")
	}
}
