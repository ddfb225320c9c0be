package repo

import "github.com/systemshift/gitlet/internal/dag"

// DefaultMetaDir is the metadata directory created under the working root.
const DefaultMetaDir = ".gitlet"

// DefaultConcurrency is the number of parallel blob copies during push/fetch.
const DefaultConcurrency = 4

// Options configures a Repository.
type Options struct {
	MetaDir          string
	Compression      bool
	CompressionLevel int
	CacheSize        int
	Concurrency      int
}

// Option is a functional option for Init and Open.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		MetaDir:          DefaultMetaDir,
		Compression:      true,
		CompressionLevel: 2,
		CacheSize:        dag.DefaultCacheSize,
		Concurrency:      DefaultConcurrency,
	}
}

// WithMetaDir sets the name of the metadata directory.
func WithMetaDir(name string) Option {
	return func(o *Options) {
		if name != "" {
			o.MetaDir = name
		}
	}
}

// WithCompression toggles zstd compression of stored objects.
func WithCompression(enabled bool, level int) Option {
	return func(o *Options) {
		o.Compression = enabled
		o.CompressionLevel = level
	}
}

// WithCacheSize bounds the object read cache.
func WithCacheSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.CacheSize = n
		}
	}
}

// WithConcurrency sets the number of parallel blob copies for push/fetch.
func WithConcurrency(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.Concurrency = n
		}
	}
}

func (o *Options) storeOptions() dag.Options {
	return dag.Options{
		Compression:      o.Compression,
		CompressionLevel: o.CompressionLevel,
		CacheSize:        o.CacheSize,
	}
}
