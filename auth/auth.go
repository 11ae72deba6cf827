// Copyright (C) 2025 The Soundcrew Authors.
//
// This file is part of Soundcrew.
//
// Soundcrew is free software: you can redistribute it and/or modify it under the
// terms of the GNU Affero General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.
//
// Soundcrew is distributed in the hope that it will be useful, but WITHOUT ANY
// WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS
// FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public License for
// more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with Soundcrew.  If not, see <https://www.gnu.org/licenses/>.

package auth

import (
	"bytes"
	"crypto/rand"
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/soundcrew/soundcrew/config"
	"golang.org/x/crypto/scrypt"
	"gorm.io/gorm"
)

var (
	ErrBadDriver           = errors.New("driver not supported")
	ErrUserNotFound        = errors.New("user not found")
	ErrKeyMismatch         = errors.New("key mismatch")
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionExpired      = errors.New("session expired")
	ErrInvalidTokenSubject = errors.New("invalid subject")
	ErrInvalidTokenMethod  = errors.New("invalid token method")
	ErrInvalidTokenIssuer  = errors.New("invalid token issuer")
	ErrInvalidTokenClaims  = errors.New("invalid token claims")
	ErrInvalidTokenSecret  = errors.New("invalid token secret")
	ErrTokenExpired        = errors.New("token expired")
)

// A User is a login identity. Whether the user also controls an artist is
// recorded in the catalog profile, not here.
type User struct {
	gorm.Model
	Name string `gorm:"uniqueIndex:idx_user_name"`
	Key  []byte
	Salt []byte
}

// A Session is an authenticated user login session associated with a token
// and expiration date.
type Session struct {
	gorm.Model
	User    string `gorm:"index:idx_session_user"`
	Token   string `gorm:"uniqueIndex:idx_session_token"`
	Expires time.Time
}

// Expired returns whether or not the session is expired.
func (s *Session) Expired() bool {
	now := time.Now()
	return now.After(s.Expires)
}

type Auth struct {
	config   *config.Config
	db       *gorm.DB
	watchers *watcherList
}

func NewAuth(config *config.Config) *Auth {
	if config.Auth.AccessToken.Secret == "" {
		panic(ErrInvalidTokenSecret)
	}
	return &Auth{
		config:   config,
		watchers: newWatcherList(),
	}
}

func (a *Auth) Open() (err error) {
	err = a.openDB()
	return
}

func (a *Auth) Close() {
	a.watchers.teardown()
	a.closeDB()
}

// AddUser adds a new user to the user database.
func (a *Auth) AddUser(userid, pass string) error {
	salt := make([]byte, 8)
	_, err := rand.Read(salt)
	if err != nil {
		return err
	}

	key, err := a.key(pass, salt)
	if err != nil {
		return err
	}

	u := User{Name: userid, Key: key, Salt: salt}

	return a.createUser(&u)
}

// User returns the user found with the provided userid.
func (a *Auth) User(userid string) (User, error) {
	var u User
	err := a.db.Where("name = ?", userid).First(&u).Error
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

// Check will check if the provided userid and password match a user in the
// database.
func (a *Auth) Check(userid, pass string) (User, error) {
	u, err := a.User(userid)
	if err != nil {
		return u, ErrUserNotFound
	}

	key, err := a.key(pass, u.Salt)
	if err != nil {
		return User{}, err
	}

	if !bytes.Equal(u.Key, key) {
		return User{}, ErrKeyMismatch
	}

	return u, nil
}

func CredentialsError(err error) bool {
	switch err {
	case ErrUserNotFound, ErrKeyMismatch:
		return true
	default:
		return false
	}
}

// Login will create a new login session after authenticating the userid and
// password, and notify state watchers of the sign-in.
func (a *Auth) Login(userid, pass string) (Session, error) {
	u, err := a.Check(userid, pass)
	if err != nil {
		return Session{}, err
	}
	session := a.session(&u)
	err = a.createSession(&session)
	if err != nil {
		return Session{}, err
	}
	a.watchers.notify(Event{Type: SignedIn, User: u.Name, Time: time.Now()})
	return session, nil
}

// Logout deletes the session and notifies state watchers of the sign-out.
func (a *Auth) Logout(session Session) {
	a.deleteSession(session)
	a.watchers.notify(Event{Type: SignedOut, User: session.User, Time: time.Now()})
}

// LogoutAll deletes every session belonging to the user. Used when the
// caller holds an access token rather than a specific session token.
func (a *Auth) LogoutAll(userid string) {
	a.deleteUserSessions(userid)
	a.watchers.notify(Event{Type: SignedOut, User: userid, Time: time.Now()})
}

// Authenticate reports whether the token grants access: either a valid
// access token or a live session token.
func (a *Auth) Authenticate(token string) bool {
	if a.CheckAccessToken(token) == nil {
		return true
	}
	session := a.findSession(token)
	return session != nil && !session.Expired()
}

// ChangePass changes the password associated with the provided userid. Use
// Check prior to this if you'd like to verify the current password.
func (a *Auth) ChangePass(userid, newpass string) error {
	u, err := a.User(userid)
	if err != nil {
		return ErrUserNotFound
	}

	salt := make([]byte, 8)
	_, err = rand.Read(salt)
	if err != nil {
		return err
	}

	key, err := a.key(newpass, salt)
	if err != nil {
		return err
	}

	u.Salt = salt
	u.Key = key

	return a.db.Model(u).Update("salt", u.Salt).Update("key", u.Key).Error
}

// NewAccessToken creates a new JWT token associated with the provided session.
func (a *Auth) NewAccessToken(s Session) (string, error) {
	cfg := a.config.Auth.AccessToken
	token := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.StandardClaims{
			Issuer:    cfg.Issuer,
			Subject:   s.User,
			ExpiresAt: time.Now().Add(cfg.Age).Unix(),
		})
	return token.SignedString([]byte(cfg.Secret))
}

func (a *Auth) CheckAccessToken(signedToken string) error {
	_, _, err := a.processToken(signedToken)
	return err
}

// CheckAccessTokenUser verifies the signed token and returns the user it was
// issued to.
func (a *Auth) CheckAccessTokenUser(signedToken string) (User, error) {
	_, claims, err := a.processToken(signedToken)
	if err != nil {
		return User{}, err
	}
	return a.User(claims.Subject)
}

// processToken parses and verifies the signed token is valid.
func (a *Auth) processToken(signedToken string) (*jwt.Token, *jwt.StandardClaims, error) {
	cfg := a.config.Auth.AccessToken
	token, err := jwt.ParseWithClaims(
		signedToken,
		&jwt.StandardClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return []byte(cfg.Secret), nil
		})
	if err != nil {
		return nil, nil, err
	}
	if token.Method != jwt.SigningMethodHS256 {
		return nil, nil, ErrInvalidTokenMethod
	}
	claims, ok := token.Claims.(*jwt.StandardClaims)
	if !ok {
		return nil, nil, ErrInvalidTokenClaims
	}
	if claims.Issuer != cfg.Issuer {
		return nil, nil, ErrInvalidTokenIssuer
	}
	if claims.ExpiresAt < time.Now().Unix() {
		return nil, nil, ErrTokenExpired
	}
	if claims.Subject == "" {
		return nil, nil, ErrInvalidTokenSubject
	}
	return token, claims, nil
}

// TokenSession will find the session associated with the provided token.
func (a *Auth) TokenSession(token string) *Session {
	return a.findSession(token)
}

func (a *Auth) SessionUser(session *Session) (User, error) {
	return a.User(session.User)
}

// Refresh extends the session expiration.
func (a *Auth) Refresh(session *Session) error {
	if session == nil {
		return ErrSessionNotFound
	}
	return a.touch(session)
}

func (a *Auth) key(pass string, salt []byte) ([]byte, error) {
	return scrypt.Key([]byte(pass), salt, 32768, 8, 1, 32)
}

func (a *Auth) session(u *User) Session {
	token := uuid.New().String()
	expires := time.Now().Add(a.config.Auth.SessionAge)
	return Session{User: u.Name, Token: token, Expires: expires}
}
