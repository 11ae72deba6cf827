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
	"errors"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func (a *Auth) openDB() (err error) {
	var glog logger.Interface
	if a.config.Auth.DB.LogMode == false {
		glog = logger.Discard
	} else {
		glog = logger.Default
	}
	cfg := &gorm.Config{
		Logger: glog,
	}

	switch a.config.Auth.DB.Driver {
	case "sqlite3":
		a.db, err = gorm.Open(sqlite.Open(a.config.Auth.DB.Source), cfg)
	case "mysql":
		a.db, err = gorm.Open(mysql.Open(a.config.Auth.DB.Source), cfg)
	case "postgres":
		a.db, err = gorm.Open(postgres.Open(a.config.Auth.DB.Source), cfg)
	default:
		err = ErrBadDriver
	}

	if err != nil {
		return
	}

	err = a.db.AutoMigrate(&Session{}, &User{})
	return
}

func (a *Auth) closeDB() {
	conn, err := a.db.DB()
	if err != nil {
		return
	}
	conn.Close()
}

func (a *Auth) findSession(token string) *Session {
	var session Session
	err := a.db.Where("token = ?", token).First(&session).Error
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return &session
}

func (a *Auth) createUser(u *User) error {
	return a.db.Create(u).Error
}

func (a *Auth) createSession(s *Session) error {
	return a.db.Create(s).Error
}

func (a *Auth) deleteSession(s Session) {
	a.db.Unscoped().Delete(s)
}

func (a *Auth) deleteUserSessions(userid string) {
	a.db.Unscoped().Where("user = ?", userid).Delete(Session{})
}

func (a *Auth) touch(s *Session) error {
	expires := time.Now().Add(a.config.Auth.SessionAge)
	return a.db.Model(s).Update("expires", expires).Error
}

// PurgeExpired removes all expired sessions. Called from the scheduled
// maintenance job.
func (a *Auth) PurgeExpired() error {
	return a.db.Unscoped().
		Where("expires < ?", time.Now()).
		Delete(Session{}).Error
}
