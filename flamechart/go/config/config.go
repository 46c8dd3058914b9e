// Package config is the configuration of a flamechart server instance.
package config

import (
	"io"
	"reflect"

	"github.com/flynn/json5"

	"go.skia.org/flamechart/go/skerr"
	"go.skia.org/flamechart/go/util"
)

// Permalink store types.
const (
	MemoryStore    = "memory"
	GCSStore       = "gcs"
	MemcachedStore = "memcached"
)

// PermalinkConfig selects and configures the permalink.Store.
type PermalinkConfig struct {
	// Type is one of "memory", "gcs" or "memcached".
	Type string `json:"type"`

	// CacheSize is the number of trees kept by the memory store.
	CacheSize int `json:"cache_size" optional:"true"`

	// Bucket and Prefix locate the objects of the gcs store.
	Bucket string `json:"bucket" optional:"true"`
	Prefix string `json:"prefix" optional:"true"`

	// MemcachedServers are the servers of the memcached store.
	MemcachedServers []string `json:"memcached_servers" optional:"true"`
}

// InstanceConfig is the configuration of a single server.
type InstanceConfig struct {
	// URL is the root URL of the instance, used to build absolute permalinks,
	// e.g. "https://flamechart.skia.org".
	URL string `json:"url"`

	// MaxUploadBytes limits the size of uploaded and pasted traces.
	MaxUploadBytes int64 `json:"max_upload_bytes"`

	// Tooltips adds hover text to every node.
	Tooltips bool `json:"tooltips"`

	Permalink PermalinkConfig `json:"permalink"`
}

// Default is used for any field not in the config file, and when no config
// file is given.
var Default = InstanceConfig{
	URL:            "http://localhost:8000",
	MaxUploadBytes: 32 * 1024 * 1024,
	Tooltips:       true,
	Permalink: PermalinkConfig{
		Type:      MemoryStore,
		CacheSize: 1000,
	},
}

// Load reads the JSON5 config at path over the defaults. An empty path
// returns the defaults.
func Load(path string) (*InstanceConfig, error) {
	cfg := Default
	if path != "" {
		err := util.WithReadFile(path, func(r io.Reader) error {
			return json5.NewDecoder(r).Decode(&cfg)
		})
		if err != nil {
			return nil, skerr.Wrapf(err, "reading config at %s", path)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, skerr.Wrapf(err, "validating config at %q", path)
	}
	return &cfg, nil
}

// Validate returns an error if the config can't be used.
func (c *InstanceConfig) Validate() error {
	if err := checkRequired(reflect.ValueOf(*c)); err != nil {
		return err
	}
	if c.MaxUploadBytes < 0 {
		return skerr.Fmt("max_upload_bytes must not be negative, got %d", c.MaxUploadBytes)
	}
	p := c.Permalink
	switch p.Type {
	case MemoryStore:
		if p.CacheSize <= 0 {
			return skerr.Fmt("permalink.cache_size must be positive for the %s store", p.Type)
		}
	case GCSStore:
		if p.Bucket == "" {
			return skerr.Fmt("permalink.bucket is required for the %s store", p.Type)
		}
	case MemcachedStore:
		if len(p.MemcachedServers) == 0 {
			return skerr.Fmt("permalink.memcached_servers is required for the %s store", p.Type)
		}
	default:
		return skerr.Fmt("unknown permalink.type %q", p.Type)
	}
	return nil
}

// checkRequired returns an error if any non-struct, non-bool fields of the given value have a zero
// value *unless* they have an optional tag with value true.
func checkRequired(rValue reflect.Value) error {
	rType := rValue.Type()
	for i := 0; i < rValue.NumField(); i++ {
		field := rType.Field(i)
		if field.Type.Kind() == reflect.Struct {
			if err := checkRequired(rValue.Field(i)); err != nil {
				return err
			}
			continue
		}
		// Booleans can't be required, that would force them to be true.
		if field.Type.Kind() == reflect.Bool {
			continue
		}
		if field.Tag.Get("json") == "" || field.Tag.Get("optional") == "true" {
			continue
		}
		if rValue.Field(i).IsZero() {
			return skerr.Fmt("Required %s to be non-zero", field.Name)
		}
	}
	return nil
}
