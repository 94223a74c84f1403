package storefront

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"

	"github.com/xenking/kart-storefront/internal/domain/carousel"
	"github.com/xenking/kart-storefront/internal/storeapi"
)

// Session backends.
const (
	SessionFile  = "file"
	SessionRedis = "redis"
)

// Config is the storefront client configuration, loadable from environment
// variables (STOREFRONT_ prefix), flags, or YAML config files.
type Config struct {
	BaseURL string        `default:"https://e-comapi-production.up.railway.app" usage:"Storefront API base URL" flag:"base-url"`
	Timeout time.Duration `default:"0s" usage:"Per-request timeout, 0 for none"`
	LogFile string        `default:"storefront.log" usage:"Log file path" flag:"log-file"`
	Debug   bool          `default:"false" usage:"Log at debug level"`
	Session SessionConfig
	// Carousel is the banner rotation interval.
	Carousel time.Duration `default:"3s" usage:"Banner rotation interval"`
}

// SessionConfig selects where the session token is kept between runs.
type SessionConfig struct {
	Backend string `default:"file" usage:"Session backend: file or redis"`
	// Path defaults to the user config directory.
	Path  string `usage:"Session file path"`
	Redis RedisConfig
}

// RedisConfig locates the Redis key holding the session token.
type RedisConfig struct {
	Addr     string        `default:"localhost:6379" usage:"Redis address"`
	Password string        `usage:"Redis password"`
	DB       int           `default:"0" usage:"Redis database"`
	Key      string        `default:"storefront:session" usage:"Redis key of the session token"`
	TTL      time.Duration `default:"720h" usage:"Session token lifetime in Redis, 0 for none"`
}

func configFiles() []string {
	files := []string{"storefront.yaml"}
	if dir, err := os.UserConfigDir(); err == nil {
		files = append(files, filepath.Join(dir, "storefront", "config.yaml"))
	}
	return files
}

// LoadConfig loads configuration from YAML files, environment variables and
// flags, then validates it.
func LoadConfig() (*Config, error) {
	return loadConfig(false)
}

func loadConfig(skipFlags bool) (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STOREFRONT",
		SkipFlags: skipFlags,
		Files:     configFiles(),
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the session backend and numeric settings.
func (c *Config) Validate() error {
	switch c.Session.Backend {
	case SessionFile, SessionRedis:
	default:
		return errors.Errorf("unknown session backend %q", c.Session.Backend)
	}
	if c.Timeout < 0 {
		return errors.Errorf("negative timeout %s", c.Timeout)
	}
	if c.Carousel < 0 {
		return errors.Errorf("negative carousel interval %s", c.Carousel)
	}
	return nil
}

// carouselInterval falls back to the default rotation for a zero value.
func (c *Config) carouselInterval() time.Duration {
	if c.Carousel == 0 {
		return carousel.DefaultInterval
	}
	return c.Carousel
}

func (c *Config) baseURL() string {
	if c.BaseURL == "" {
		return storeapi.DefaultBaseURL
	}
	return c.BaseURL
}
