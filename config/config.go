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

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/soundcrew/soundcrew"
	"github.com/spf13/viper"
)

const (
	MediaAudio = "audio"
	MediaImage = "image"
)

type BucketConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	ObjectPrefix    string
	UseSSL          bool
	URLExpiration   time.Duration
	Media           string
	PublicURL       string
}

type DatabaseConfig struct {
	Driver  string
	Source  string
	LogMode bool
}

type TokenConfig struct {
	Issuer string
	Age    time.Duration
	Secret string
}

type AuthConfig struct {
	DB            DatabaseConfig
	SessionAge    time.Duration
	AccessToken   TokenConfig
	SecureCookies bool
}

type CatalogConfig struct {
	DB            DatabaseConfig
	RecentLimit   int
	SearchLimit   int
	SyncInterval  time.Duration
	PurgeInterval time.Duration
}

type UploadConfig struct {
	MaxAudioSize int64
	MaxImageSize int64
	AudioTypes   []string
}

// AllowedAudioType reports whether the declared MIME type is acceptable
// for audio uploads.
func (uc *UploadConfig) AllowedAudioType(contentType string) bool {
	for _, t := range uc.AudioTypes {
		if strings.EqualFold(t, contentType) {
			return true
		}
	}
	return false
}

type SearchConfig struct {
	BleveDir string
}

type ServerConfig struct {
	Listen string
	URL    string
}

type Config struct {
	Auth    AuthConfig
	Buckets []BucketConfig
	Catalog CatalogConfig
	DataDir string
	Search  SearchConfig
	Server  ServerConfig
	Upload  UploadConfig
}

func configDefaults(v *viper.Viper) {
	v.SetDefault("Auth.DB.Driver", "sqlite3")
	v.SetDefault("Auth.DB.LogMode", "false")
	v.SetDefault("Auth.DB.Source", "auth.db")
	v.SetDefault("Auth.SessionAge", "720h") // 30 days
	v.SetDefault("Auth.AccessToken.Issuer", soundcrew.AppName)
	v.SetDefault("Auth.AccessToken.Age", "4h")
	v.SetDefault("Auth.AccessToken.Secret", os.Getenv("SOUNDCREW_TOKEN_SECRET"))
	v.SetDefault("Auth.SecureCookies", "true")

	v.SetDefault("Catalog.DB.Driver", "sqlite3")
	v.SetDefault("Catalog.DB.Source", "catalog.db")
	v.SetDefault("Catalog.DB.LogMode", "false")
	v.SetDefault("Catalog.RecentLimit", "50")
	v.SetDefault("Catalog.SearchLimit", "100")
	v.SetDefault("Catalog.SyncInterval", "1h")
	v.SetDefault("Catalog.PurgeInterval", "24h")

	v.SetDefault("DataDir", ".")

	v.SetDefault("Search.BleveDir", ".")

	v.SetDefault("Server.Listen", "127.0.0.1:3000")
	v.SetDefault("Server.URL", "https://example.com") // w/o trailing slash

	v.SetDefault("Upload.MaxAudioSize", 20*1024*1024)
	v.SetDefault("Upload.MaxImageSize", 5*1024*1024)
	v.SetDefault("Upload.AudioTypes", []string{
		"audio/mpeg",
		"audio/wav",
		"audio/flac",
		"audio/mp3",
	})
}

func readConfig(v *viper.Viper) (*Config, error) {
	var config Config
	var pathRegexp = regexp.MustCompile(`(file|dir|source)$`)
	err := v.ReadInConfig()
	dir := filepath.Dir(v.ConfigFileUsed())
	for _, k := range v.AllKeys() {
		if pathRegexp.MatchString(k) {
			val := v.Get(k)
			if strings.HasPrefix(val.(string), "/") == false {
				val = fmt.Sprintf("%s/%s", dir, val.(string))
				v.Set(k, val)
			}
		}
	}
	if err == nil {
		err = v.Unmarshal(&config)
	}
	return &config, err
}

var configFile, configPath, configName string

func SetConfigFile(path string) {
	configFile = path
}

func AddConfigPath(path string) {
	configPath = path
}

func SetConfigName(name string) {
	configName = name
}

func GetConfig() (*Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	}
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	if configName != "" {
		v.SetConfigName(configName)
	}
	configDefaults(v)
	return readConfig(v)
}

func (dc DatabaseConfig) String() string {
	return fmt.Sprintf("%s:%s", dc.Driver, dc.Source)
}
