package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

const (
	BackendMemory = "memory"
	BackendFS     = "fs"
	BackendPg     = "pg"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Http    Http    `yaml:"http"`
	Log     Log     `yaml:"log"`
	Storage Storage `yaml:"storage"`
	Posts   Posts   `yaml:"posts"`
	Images  Images  `yaml:"images"`
}

type Http struct {
	Port           int           `yaml:"port" validate:"required,min=1,max=65535"`
	ReadTimeout    time.Duration `yaml:"read_timeout" validate:"required"`
	WriteTimeout   time.Duration `yaml:"write_timeout" validate:"required"`
	SecureCookies  bool          `yaml:"secure_cookies"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

type Log struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	JSON  bool   `yaml:"json"`
}

type Storage struct {
	Backend string `yaml:"backend" validate:"required,oneof=memory fs pg"`
	FSPath  string `yaml:"fs_path" validate:"required_if=Backend fs"`
	Watch   bool   `yaml:"watch"` // reload when the fs slot changes outside the process
}

type Posts struct {
	Categories      []string `yaml:"categories" validate:"dive,required,ne=all"`
	TitleMaxLen     int      `yaml:"title_max_len" validate:"required,min=1"`
	ContentMaxLen   int      `yaml:"content_max_len" validate:"required,min=1"`
	TimestampLayout string   `yaml:"timestamp_layout" validate:"required"`
	Markdown        bool     `yaml:"markdown"`
}

type Images struct {
	BaseURL string `yaml:"base_url" validate:"required,url"`
	Width   int    `yaml:"width" validate:"required,min=1"`
	Height  int    `yaml:"height" validate:"required,min=1"`
}

type Private struct {
	Pg Pg `yaml:"pg"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

// Default returns the values used for every field public.yaml leaves out.
func Default() Public {
	return Public{
		Http: Http{
			Port:         8080,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Log:     Log{Level: "info"},
		Storage: Storage{Backend: BackendFS, FSPath: "data"},
		Posts: Posts{
			Categories:      []string{"general", "tech", "life", "food"},
			TitleMaxLen:     100,
			ContentMaxLen:   1000,
			TimestampLayout: "1/2/2006, 3:04:05 PM",
		},
		Images: Images{
			BaseURL: "https://picsum.photos",
			Width:   600,
			Height:  200,
		},
	}
}

func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c.Public); err != nil {
		return fmt.Errorf("public config: %w", err)
	}
	if c.Public.Storage.Backend == BackendPg {
		pg := c.Private.Pg
		if pg.Host == "" || pg.Port == 0 || pg.User == "" || pg.Dbname == "" {
			return errors.New("private config: pg host, port, user and dbname are required for the pg backend")
		}
	}
	return nil
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file " + configPath)
	}

	if err = yaml.Unmarshal(configFile, output); err != nil {
		panic(fmt.Sprintf("can't unmarshal config file %s: %v", configPath, err))
	}
}

// MustLoad reads public.yaml (required) and private.yaml (optional) from configFolder
// on top of Default and panics if the result is invalid.
func MustLoad(configFolder string) *Config {
	public := Default()
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	privatePath := path.Join(configFolder, "private.yaml")
	if _, err := os.Stat(privatePath); err == nil {
		mustLoadPath(privatePath, &private)
	}

	cfg := &Config{Public: public, Private: private}
	if err := cfg.Validate(); err != nil {
		panic(err.Error())
	}
	return cfg
}
