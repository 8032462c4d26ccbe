// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Xuanwo/go-locale"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kkyr/fig"
	"golang.org/x/text/language"
)

const (
	configEnv = "ADDRESSGW"

	ModeSandbox    = "sandbox"
	ModeProduction = "production"

	// LanguageAuto selects the language of the system locale
	LanguageAuto = "auto"
)

// Config represents the application's configuration structure.
type Config struct {
	LogLevel slog.Level `fig:"loglevel" default:"0"`
	// Allowed values: sandbox, production
	Mode string `fig:"mode" default:"sandbox"`

	Server struct {
		Address         string        `fig:"address" default:":8080"`
		ReadTimeout     time.Duration `fig:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `fig:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `fig:"shutdown_timeout" default:"10s"`
		CORSOrigins     []string      `fig:"cors_origins"`
	} `fig:"server"`

	Geocoder struct {
		// Minimum number of decimal places per coordinate, between 1 and 15. A value of 0
		// is treated as unset and falls back to the default.
		MinPrecision int           `fig:"min_precision" default:"5"`
		Timeout      time.Duration `fig:"timeout" default:"6s"`
		// BCP 47 language tag for the returned addresses, "auto" to use the system locale
		Language string `fig:"language"`
	} `fig:"geocoder"`

	Authorities struct {
		Google struct {
			APIKey  string `fig:"apikey"`
			Disable bool   `fig:"disable"`
		} `fig:"google"`
		Here struct {
			AppID   string `fig:"app_id"`
			AppCode string `fig:"app_code"`
			Disable bool   `fig:"disable"`
		} `fig:"here"`
		// Optional authorities, disabled unless enabled explicitly
		OpenCage struct {
			APIKey string `fig:"apikey"`
			Enable bool   `fig:"enable"`
		} `fig:"opencage"`
		GeocodeEarth struct {
			APIKey string `fig:"apikey"`
			Enable bool   `fig:"enable"`
		} `fig:"geocode_earth"`
		Nominatim struct {
			Enable bool `fig:"enable"`
		} `fig:"nominatim"`
	} `fig:"authorities"`

	Stats struct {
		Interval time.Duration `fig:"interval" default:"15m"`
		Disable  bool          `fig:"disable"`
	} `fig:"stats"`
}

// NewFromFile loads the configuration from the given file, environment variables and an
// optional .env file in the working directory.
func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = loadDotEnv(); err != nil {
		return conf, err
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

// New loads the configuration from environment variables and an optional .env file in
// the working directory.
func New() (*Config, error) {
	conf := new(Config)
	if err := loadDotEnv(); err != nil {
		return conf, err
	}
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	validate := validator.New()
	c.Mode = strings.ToLower(c.Mode)
	if err := validate.Var(c.Mode, "oneof=sandbox production"); err != nil {
		return fmt.Errorf("invalid mode: %s", c.Mode)
	}
	if err := validate.Var(c.Server.Address, "hostname_port"); err != nil {
		return fmt.Errorf("invalid server address: %s", c.Server.Address)
	}
	if err := validate.Var(c.Server.CORSOrigins, "dive,eq=*|http_url"); err != nil {
		return fmt.Errorf("invalid CORS origins: %v", c.Server.CORSOrigins)
	}
	if err := validate.Var(c.Geocoder.MinPrecision, "min=1,max=15"); err != nil {
		return fmt.Errorf("invalid minimum precision: %d", c.Geocoder.MinPrecision)
	}
	if err := validate.Var(c.Geocoder.Timeout, "gt=0"); err != nil {
		return fmt.Errorf("invalid geocoder timeout: %s", c.Geocoder.Timeout)
	}
	if c.Geocoder.Language != "" && !strings.EqualFold(c.Geocoder.Language, LanguageAuto) {
		if _, err := language.Parse(c.Geocoder.Language); err != nil {
			return fmt.Errorf("invalid geocoder language %q: %w", c.Geocoder.Language, err)
		}
	}
	if !c.Stats.Disable {
		if err := validate.Var(c.Stats.Interval, "gt=0"); err != nil {
			return fmt.Errorf("invalid stats interval: %s", c.Stats.Interval)
		}
	}

	auth := c.Authorities
	if auth.Google.Disable && auth.Here.Disable && !auth.OpenCage.Enable && !auth.GeocodeEarth.Enable &&
		!auth.Nominatim.Enable {
		return errors.New("all authorities are disabled")
	}
	if !auth.Google.Disable && auth.Google.APIKey == "" {
		return errors.New("google maps authority requires an API key")
	}
	if !auth.Here.Disable && (auth.Here.AppID == "" || auth.Here.AppCode == "") {
		return errors.New("HERE authority requires an app ID and app code")
	}
	if auth.OpenCage.Enable && auth.OpenCage.APIKey == "" {
		return errors.New("OpenCage authority requires an API key")
	}
	if auth.GeocodeEarth.Enable && auth.GeocodeEarth.APIKey == "" {
		return errors.New("geocode.earth authority requires an API key")
	}

	return nil
}

// IsProduction reports whether the production endpoints should be used
func (c *Config) IsProduction() bool {
	return c.Mode == ModeProduction
}

// LanguageTag returns the configured response language. language.Und means that no
// language is requested from the authorities.
func (c *Config) LanguageTag() language.Tag {
	switch {
	case c.Geocoder.Language == "":
		return language.Und
	case strings.EqualFold(c.Geocoder.Language, LanguageAuto):
		tag, err := locale.Detect()
		if err != nil {
			return language.Und
		}
		return tag
	default:
		return language.Make(c.Geocoder.Language)
	}
}

// loadDotEnv loads a .env file from the working directory if one exists. Variables that
// are already set are not overridden.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	return nil
}
