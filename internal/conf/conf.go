package conf

import (
	"encoding/json"
	"fmt"
	"time"

	// app.timezone must resolve in images without a zoneinfo database
	_ "time/tzdata"
)

// Bootstrap is the root of configs/config.yaml.
type Bootstrap struct {
	Server    *Server    `json:"server"`
	Data      *Data      `json:"data"`
	Catalog   *Catalog   `json:"catalog"`
	Assistant *Assistant `json:"assistant"`
	Log       *Log       `json:"log"`
	App       *App       `json:"app"`
}

type Server struct {
	Http *Server_HTTP `json:"http"`
}

type Server_HTTP struct {
	Network string    `json:"network"`
	Addr    string    `json:"addr"`
	Timeout *Duration `json:"timeout"`
}

type Data struct {
	Database *Data_Database `json:"database"`
	Redis    *Data_Redis    `json:"redis"`
}

// Data_Database selects the gorm dialector. Driver is "postgres" or "sqlite".
type Data_Database struct {
	Driver      string `json:"driver"`
	Source      string `json:"source"`
	AutoMigrate bool   `json:"auto_migrate"`
}

// Data_Redis is optional; an empty Addr disables the cache.
type Data_Redis struct {
	Addr         string    `json:"addr"`
	Password     string    `json:"password"`
	Db           int32     `json:"db"`
	ReadTimeout  *Duration `json:"read_timeout"`
	WriteTimeout *Duration `json:"write_timeout"`
}

// Catalog configures the TMDb client.
type Catalog struct {
	BaseUrl   string    `json:"base_url"`
	ApiKey    string    `json:"api_key"`
	Language  string    `json:"language"`
	Region    string    `json:"region"`
	Timeout   *Duration `json:"timeout"`
	RateLimit float64   `json:"rate_limit"`
	Burst     int32     `json:"burst"`
}

// Assistant configures the chat-completion client. An empty ApiKey disables it.
type Assistant struct {
	ApiKey  string    `json:"api_key"`
	Model   string    `json:"model"`
	BaseUrl string    `json:"base_url"`
	Timeout *Duration `json:"timeout"`
}

type Log struct {
	Level      string `json:"level"`
	Format     string `json:"format"`
	File       string `json:"file"`
	MaxSize    int32  `json:"max_size"`
	MaxBackups int32  `json:"max_backups"`
	MaxAge     int32  `json:"max_age"`
	Compress   bool   `json:"compress"`
}

type App struct {
	Timezone string `json:"timezone"`
}

// Duration decodes "1.5s" style strings or a number of seconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value * float64(time.Second))
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		d.Duration = parsed
	case nil:
		d.Duration = 0
	default:
		return fmt.Errorf("invalid duration %v", v)
	}
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// AsDuration is nil-safe.
func (d *Duration) AsDuration() time.Duration {
	if d == nil {
		return 0
	}
	return d.Duration
}

// Location resolves the configured timezone, falling back to UTC.
func (a *App) Location() *time.Location {
	if a == nil || a.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
