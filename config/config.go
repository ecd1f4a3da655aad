// Copyright (C) 2025-2026 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"reflect"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/spf13/viper"

	"github.com/cardinalhq/gallerykeeper/internal/cloudstorage"
	"github.com/cardinalhq/gallerykeeper/internal/identity"
	"github.com/cardinalhq/gallerykeeper/internal/lifecycle"
	"github.com/cardinalhq/gallerykeeper/internal/storageprofile"
)

// Config aggregates configuration for the application.
// Each field is owned by its respective package.
type Config struct {
	Retention RetentionConfig `mapstructure:"retention"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Identity  identity.Config `mapstructure:"identity"`
	Admin     AdminConfig     `mapstructure:"admin"`
}

type RetentionConfig struct {
	// FreePlan names the plan subject to the one-year age rule. Empty
	// disables the rule.
	FreePlan string `mapstructure:"free_plan"`
	// SweepInterval is how often the sweeper daemon runs both sweeps.
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	// RunTimeout bounds one sweep or admin command.
	RunTimeout time.Duration `mapstructure:"run_timeout"`
}

func (r RetentionConfig) Policy() lifecycle.Policy {
	return lifecycle.Policy{FreePlan: r.FreePlan}
}

type StorageConfig struct {
	Provider          string `mapstructure:"provider"`
	Bucket            string `mapstructure:"bucket"`
	Region            string `mapstructure:"region"`
	Endpoint          string `mapstructure:"endpoint"`
	Role              string `mapstructure:"role"`
	UsePathStyle      bool   `mapstructure:"use_path_style"`
	InsecureTLS       bool   `mapstructure:"insecure_tls"`
	PublicURLBase     string `mapstructure:"public_url_base"`
	StorageAccount    string `mapstructure:"storage_account"`
	LocalRoot         string `mapstructure:"local_root"`
	DeleteConcurrency int    `mapstructure:"delete_concurrency"`
}

func (s StorageConfig) Profile() storageprofile.StorageProfile {
	return storageprofile.StorageProfile{
		CloudProvider:  s.Provider,
		Bucket:         s.Bucket,
		Region:         s.Region,
		Role:           s.Role,
		Endpoint:       s.Endpoint,
		InsecureTLS:    s.InsecureTLS,
		UsePathStyle:   s.UsePathStyle,
		StorageAccount: s.StorageAccount,
		PublicURLBase:  s.PublicURLBase,
		LocalRoot:      s.LocalRoot,
	}
}

type AdminConfig struct {
	// Emails may run the admin commands. Empty allows nobody.
	Emails []string `mapstructure:"emails"`
}

// IsAdmin reports whether email is on the allowlist, ignoring case.
func (a AdminConfig) IsAdmin(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	allowed := mapset.NewThreadUnsafeSet[string]()
	for _, e := range a.Emails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			allowed.Add(e)
		}
	}
	return allowed.Contains(email)
}

func DefaultConfig() *Config {
	return &Config{
		Retention: RetentionConfig{
			FreePlan:      lifecycle.DefaultPolicy().FreePlan,
			SweepInterval: time.Hour,
			RunTimeout:    15 * time.Minute,
		},
		Storage: StorageConfig{
			DeleteConcurrency: cloudstorage.DefaultDeleteConcurrency,
		},
		Identity: identity.DefaultConfig(),
	}
}

// Load reads configuration from files and environment variables.
// Environment variables use the prefix "GALLERYKEEPER" and the dot character
// in keys is replaced by an underscore. For example, "storage.bucket" becomes
// "GALLERYKEEPER_STORAGE_BUCKET".
func Load() (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.SetEnvPrefix("GALLERYKEEPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, cfg)
	_ = v.ReadInConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if e := v.GetString("admin.emails"); e != "" {
		cfg.Admin.Emails = strings.Split(e, ",")
	}
	return cfg, nil
}

// bindEnvs registers all keys within cfg so that viper will look up
// corresponding environment variables when unmarshalling.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	val := reflect.ValueOf(cfg)
	typ := reflect.TypeOf(cfg)
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := append(parts, tag)
		if f.Type.Kind() == reflect.Struct {
			bindEnvs(v, val.Field(i).Interface(), key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, "."))
	}
}
