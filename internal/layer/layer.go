package layer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"qm-layer/internal/adapter"
	"qm-layer/internal/archive"
	"qm-layer/internal/cache"
	"qm-layer/internal/diagnostic"
	"qm-layer/internal/tiny"
	"qm-layer/internal/tree"
)

// Namespaces taking part in the composition.
const (
	NsOfficial     = "official"
	NsObfuscated   = "obfuscated"
	NsIntermediary = "intermediary"
	NsNamed        = "named"
)

// Cache file prefixes under the cache root.
const (
	PrefixHashed   = "hashed"
	PrefixQuilt    = "qm"
	PrefixComposed = "qm_to_intermediary"
)

const resolvedCacheSize = 16

// Config selects the mappings to compose.
type Config struct {
	// Coordinate of the quilt-mappings artifact.
	Coordinate string
	// Snapshot selects the snapshot channel for the hashed artifact.
	Snapshot    bool
	GameVersion string
	// IntermediaryFile is the host's tiny v2 obfuscated -> intermediary file.
	IntermediaryFile string
	CacheRoot        string
}

// Validate checks the settings a composition cannot run without.
func (c Config) Validate() error {
	var errs []error

	if c.Coordinate == "" {
		errs = append(errs, errors.New("coordinate is required"))
	}

	if c.GameVersion == "" {
		errs = append(errs, errors.New("game version is required"))
	}

	if c.IntermediaryFile == "" {
		errs = append(errs, errors.New("intermediary file is required"))
	}

	if c.CacheRoot == "" {
		errs = append(errs, errors.New("cache root is required"))
	}

	return errors.Join(errs...)
}

// Result describes a composed cache file.
type Result struct {
	Path string
	// Built is true when this call produced the file.
	Built bool
}

// Layer composes quilt mappings keyed by intermediary.
type Layer struct {
	cfg      Config
	resolver Resolver
	cache    *cache.Manager
	log      logrus.FieldLogger
	resolved *lru.Cache[string, []string]
}

// Option configures a Layer.
type Option func(*Layer)

// WithLogger sets the logger used by the layer and its cache.
func WithLogger(l logrus.FieldLogger) Option {
	return func(ly *Layer) {
		ly.log = l
	}
}

// WithCache replaces the cache manager built from Config.CacheRoot.
func WithCache(m *cache.Manager) Option {
	return func(ly *Layer) {
		ly.cache = m
	}
}

// New creates a Layer. Nothing is resolved or read until Compose or Visit.
func New(cfg Config, resolver Resolver, opts ...Option) (*Layer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layer config: %w", err)
	}

	if resolver == nil {
		return nil, errors.New("layer requires a resolver")
	}

	resolved, err := lru.New[string, []string](resolvedCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating resolver memo: %w", err)
	}

	ly := &Layer{
		cfg:      cfg,
		resolver: resolver,
		log:      logrus.StandardLogger(),
		resolved: resolved,
	}

	for _, opt := range opts {
		opt(ly)
	}

	if ly.cache == nil {
		ly.cache = cache.New(cfg.CacheRoot, cache.WithLogger(ly.log))
	}

	ly.log = ly.log.WithFields(logrus.Fields{
		"coordinate":   cfg.Coordinate,
		"game_version": cfg.GameVersion,
	})

	return ly, nil
}

// SourceNamespace is the namespace the emitted mappings are keyed by.
func (l *Layer) SourceNamespace() string {
	return NsIntermediary
}

// Fingerprint identifies the layer's inputs for host-side caching.
func (l *Layer) Fingerprint() string {
	return strconv.FormatUint(xxhash.Sum64String(l.cfg.Coordinate+"\x00"+strconv.FormatBool(l.cfg.Snapshot)), 16)
}

// Path returns where the composed mappings are cached.
func (l *Layer) Path() string {
	return l.cache.Resolve(PrefixComposed, l.cfg.GameVersion)
}

// Compose makes sure the composed mappings are cached and returns their path.
// A failed composition publishes nothing.
func (l *Layer) Compose(ctx context.Context) (Result, error) {
	path := l.Path()

	built, err := l.cache.Materialize(ctx, path, func(w io.Writer) error {
		merged, err := l.merge(ctx)
		if err != nil {
			return err
		}

		return export(merged, w)
	})
	if err != nil {
		return Result{}, fmt.Errorf("composing %s: %w", path, err)
	}

	return Result{Path: path, Built: built}, nil
}

// Visit composes the mappings if needed and replays the cached file into v.
func (l *Layer) Visit(ctx context.Context, v tree.Visitor) error {
	res, err := l.Compose(ctx)
	if err != nil {
		return err
	}

	return l.read(res.Path, v)
}

// merge reads the quilt mappings and the intermediary file into one tree
// keyed by the official namespace.
func (l *Layer) merge(ctx context.Context) (*tree.MappingTree, error) {
	l.log.Info("merging quilt mappings onto intermediary")

	// The hashed mappings are extracted for the layer's inputs but take no
	// part in the merge.
	if _, err := l.extract(ctx, HashedCoordinate(l.cfg.GameVersion, l.cfg.Snapshot), PrefixHashed); err != nil {
		return nil, err
	}

	quiltPath, err := l.extract(ctx, l.cfg.Coordinate, PrefixQuilt)
	if err != nil {
		return nil, err
	}

	quilt := tree.New()
	if err := l.read(quiltPath, quilt); err != nil {
		return nil, err
	}

	intermediary := tree.New()
	if err := l.read(l.cfg.IntermediaryFile, intermediary); err != nil {
		return nil, err
	}

	merged := tree.New()
	if err := quilt.Accept(merged); err != nil {
		return nil, fmt.Errorf("merging quilt mappings: %w", err)
	}

	renamed := adapter.Chain(merged, adapter.Rename(map[string]string{NsObfuscated: NsOfficial}))
	if err := intermediary.Accept(renamed); err != nil {
		return nil, fmt.Errorf("merging intermediary mappings: %w", err)
	}

	stats := merged.Stats()
	l.log.WithFields(logrus.Fields{
		"namespaces": merged.Namespaces(),
		"classes":    stats.Classes,
		"fields":     stats.Fields,
		"methods":    stats.Methods,
	}).Info("mappings merged")

	return merged, nil
}

// export writes merged keyed by intermediary with only the named namespace.
func export(merged *tree.MappingTree, w io.Writer) error {
	var opts []tiny.WriterOption
	for _, m := range merged.Metadata() {
		if m.Key == tiny.PropEscapedNames {
			opts = append(opts, tiny.WithEscapedNames())
		}
	}

	sink := adapter.Chain(tiny.NewWriter(w, opts...),
		adapter.SwitchSource(NsIntermediary),
		adapter.ReorderDst(NsNamed),
	)

	if err := merged.Accept(sink); err != nil {
		return fmt.Errorf("exporting merged mappings: %w", err)
	}

	return nil
}

// extract caches the mappings entry of the artifact at coordinate under
// prefix. The artifact is only resolved when the cache file is missing.
func (l *Layer) extract(ctx context.Context, coordinate, prefix string) (string, error) {
	path := l.cache.Resolve(prefix, l.cfg.GameVersion)

	_, err := l.cache.Materialize(ctx, path, func(w io.Writer) error {
		artifacts, err := l.resolve(ctx, coordinate)
		if err != nil {
			return err
		}

		return archive.ExtractMappings(artifacts[0], w)
	})
	if err != nil {
		return "", fmt.Errorf("extracting %s: %w", coordinate, err)
	}

	return path, nil
}

func (l *Layer) resolve(ctx context.Context, coordinate string) ([]string, error) {
	if artifacts, ok := l.resolved.Get(coordinate); ok {
		return artifacts, nil
	}

	artifacts, err := l.resolver.Resolve(ctx, coordinate)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", coordinate, err)
	}

	if len(artifacts) == 0 {
		return nil, diagnostic.NotFoundf(coordinate, "resolver returned no artifacts")
	}

	l.log.WithField("artifact", artifacts[0]).Debug("artifact resolved")
	l.resolved.Add(coordinate, artifacts)

	return artifacts, nil
}

// read replays a tiny file into v, logging reader warnings.
func (l *Layer) read(path string, v tree.Visitor) error {
	var diags diagnostic.Diagnostics

	err := tiny.ReadFile(path, v, tiny.WithDiagnostics(&diags))

	for _, d := range diags.Warnings {
		l.log.WithField("code", d.Code).Warn(d.String())
	}

	return err
}
