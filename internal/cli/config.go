package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/shadergraph/pkg/cache"
	"github.com/matzehuels/shadergraph/pkg/nodetype"
	"github.com/matzehuels/shadergraph/pkg/pipeline"
	"github.com/matzehuels/shadergraph/pkg/store"
)

// Backend names accepted in the config file.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendMongo = "mongo"
	backendNone  = "none"
)

// Config is the on-disk CLI configuration. Every field is optional; flags
// override the values read from the file.
type Config struct {
	Registry RegistryConfig `toml:"registry"`
	Cache    CacheConfig    `toml:"cache"`
	Store    StoreConfig    `toml:"store"`
	Server   ServerConfig   `toml:"server"`
}

// RegistryConfig selects the node type library.
type RegistryConfig struct {
	Dir    string `toml:"dir"`
	Strict bool   `toml:"strict"`
}

// CacheConfig selects the build cache backend.
type CacheConfig struct {
	Backend   string `toml:"backend"` // file (default), redis or none
	Dir       string `toml:"dir"`
	RedisURL  string `toml:"redis_url"`
	RedisAddr string `toml:"redis_addr"`
	Namespace string `toml:"namespace"`
}

// StoreConfig selects the graph document store used by serve.
type StoreConfig struct {
	Backend  string `toml:"backend"` // file (default) or mongo
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// ServerConfig configures serve.
type ServerConfig struct {
	Addr         string `toml:"addr"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
}

func defaultConfig() Config {
	return Config{
		Cache:  CacheConfig{Backend: backendFile, Namespace: appName},
		Store:  StoreConfig{Backend: backendFile},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// configPath returns the default config file path
// ($XDG_CONFIG_HOME/shadergraph/config.toml or ~/.config/shadergraph/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// loadConfig reads the config file at path over the defaults. An empty path
// selects configPath, and a missing default file is not an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case "", backendFile, backendRedis, backendNone:
	default:
		return fmt.Errorf("cache.backend: unknown backend %q (want file, redis or none)", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case "", backendFile, backendMongo:
	default:
		return fmt.Errorf("store.backend: unknown backend %q (want file or mongo)", c.Store.Backend)
	}
	return nil
}

// pipelineOptions returns the registry part of the pipeline options.
func (c Config) pipelineOptions() pipeline.Options {
	return pipeline.Options{RegistryDir: c.Registry.Dir, Strict: c.Registry.Strict}
}

// newRegistry loads the configured node type library.
func (c Config) newRegistry() (nodetype.Registry, error) {
	return pipeline.LoadRegistry(c.pipelineOptions())
}

// newCache opens the configured cache backend. noCache forces the null cache.
func (c Config) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Cache.Backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			URL:       c.Cache.RedisURL,
			Addr:      c.Cache.RedisAddr,
			Namespace: c.Cache.Namespace,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	default:
		dir := c.Cache.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	}
}

// newStore opens the configured graph store.
func (c Config) newStore(ctx context.Context) (store.Store, error) {
	if c.Store.Backend == backendMongo {
		ms, err := store.NewMongoStore(ctx, store.MongoConfig{
			URI:      c.Store.MongoURI,
			Database: c.Store.Database,
		})
		if err != nil {
			return nil, err
		}
		return ms, nil
	}
	fs, err := store.NewFileStore(c.Store.Dir)
	if err != nil {
		return nil, err
	}
	return fs, nil
}
