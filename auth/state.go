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
	"sync"
	"time"
)

type EventType string

const (
	SignedIn  EventType = "signed-in"
	SignedOut EventType = "signed-out"
)

// An Event describes an auth state change delivered to watchers.
type Event struct {
	Type EventType `json:"type"`
	User string    `json:"user"`
	Time time.Time `json:"time"`
}

// A Watcher receives auth state change events until unsubscribed. Slow
// watchers are skipped rather than blocking the notifier.
type Watcher struct {
	C chan Event
}

type watcherList struct {
	mu       sync.Mutex
	watchers map[*Watcher]bool
}

func newWatcherList() *watcherList {
	return &watcherList{watchers: make(map[*Watcher]bool)}
}

// Subscribe registers a new watcher for sign-in/sign-out events.
func (a *Auth) Subscribe() *Watcher {
	w := &Watcher{C: make(chan Event, 8)}
	a.watchers.mu.Lock()
	a.watchers.watchers[w] = true
	a.watchers.mu.Unlock()
	return w
}

// Unsubscribe removes the watcher and closes its channel.
func (a *Auth) Unsubscribe(w *Watcher) {
	a.watchers.mu.Lock()
	defer a.watchers.mu.Unlock()
	if _, ok := a.watchers.watchers[w]; ok {
		delete(a.watchers.watchers, w)
		close(w.C)
	}
}

func (l *watcherList) notify(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for w := range l.watchers {
		select {
		case w.C <- e:
		default:
		}
	}
}

func (l *watcherList) teardown() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for w := range l.watchers {
		delete(l.watchers, w)
		close(w.C)
	}
}
