package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port            int           `envconfig:"PORT" default:"8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	TokenSecret     string        `envconfig:"TOKEN_SECRET" default:"dev-secret-change-in-production"`
	TokenTTL        time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	SceneFile       string        `envconfig:"SCENE_FILE" default:""`
	SceneUploads    bool          `envconfig:"SCENE_UPLOADS" default:"false"`
	StaticDir       string        `envconfig:"STATIC_DIR" default:"./web"`
	AllowedOrigins  string        `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	ZoomSpeedFactor float64       `envconfig:"ZOOM_SPEED_FACTOR" default:"0.05"`
	ViewportWidth   float64       `envconfig:"VIEWPORT_WIDTH" default:"800"`
	ViewportHeight  float64       `envconfig:"VIEWPORT_HEIGHT" default:"600"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Origins returns the allowed CORS origins.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// OriginPatterns returns the allowed origins as host patterns for websocket
// upgrades.
func (c *Config) OriginPatterns() []string {
	origins := c.Origins()
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if i := strings.Index(o, "://"); i >= 0 {
			o = o[i+3:]
		}
		patterns = append(patterns, o)
	}
	return patterns
}
