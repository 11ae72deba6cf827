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

package main

import (
	"github.com/soundcrew/soundcrew/catalog"
	"github.com/soundcrew/soundcrew/search"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "repair track counts and rebuild the search index",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sync()
	},
}

var syncIndex bool

func sync() error {
	cfg, err := getConfig()
	if err != nil {
		return err
	}

	c := catalog.NewCatalog(cfg)
	err = c.Open()
	if err != nil {
		return err
	}
	defer c.Close()

	err = c.FixTrackCounts()
	if err != nil {
		return err
	}

	if syncIndex {
		s := search.NewSearch(cfg)
		err = s.Open("catalog")
		if err != nil {
			return err
		}
		defer s.Close()
		err = s.IndexCatalog(c)
	}
	return err
}

func init() {
	syncCmd.Flags().StringVarP(&configFile, "config", "c", "", "config file")
	syncCmd.Flags().BoolVarP(&syncIndex, "index", "i", true, "rebuild search index")
	rootCmd.AddCommand(syncCmd)
}
