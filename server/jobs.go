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

package server

import (
	"time"

	"github.com/go-co-op/gocron"
	"github.com/soundcrew/soundcrew/auth"
	"github.com/soundcrew/soundcrew/catalog"
	"github.com/soundcrew/soundcrew/config"
	"github.com/soundcrew/soundcrew/lib/log"
	"github.com/soundcrew/soundcrew/search"
)

// schedule runs background maintenance: expired session purge, album track
// count repair and a full search reindex.
func schedule(config *config.Config, a *auth.Auth, c *catalog.Catalog, s *search.Search) {
	scheduler := gocron.NewScheduler(time.UTC)

	scheduler.Every(config.Catalog.PurgeInterval).WaitForSchedule().Do(func() {
		log.Printf("purge expired sessions\n")
		err := a.PurgeExpired()
		if err != nil {
			log.Println(err)
		}
	})

	scheduler.Every(config.Catalog.SyncInterval).WaitForSchedule().Do(func() {
		log.Printf("catalog sync\n")
		err := c.FixTrackCounts()
		if err != nil {
			log.Println(err)
			return
		}
		err = s.IndexCatalog(c)
		if err != nil {
			log.Println(err)
		}
	})

	scheduler.StartAsync()
}
