package layer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"qm-layer/internal/diagnostic"
)

// Resolver turns an artifact coordinate into local artifact files.
type Resolver interface {
	Resolve(ctx context.Context, coordinate string) ([]string, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, coordinate string) ([]string, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, coordinate string) ([]string, error) {
	return f(ctx, coordinate)
}

// DirResolver finds artifacts in a local directory using the maven layout
// <group path>/<artifact>/<version>/<artifact>-<version>[-<classifier>].jar.
type DirResolver struct {
	Root string
}

// Resolve returns the single jar for coordinate group:artifact:version[:classifier].
func (r DirResolver) Resolve(_ context.Context, coordinate string) ([]string, error) {
	parts := strings.Split(coordinate, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return nil, diagnostic.Formatf(coordinate, 0, "coordinate is not group:artifact:version[:classifier]")
	}

	group, artifact, version := parts[0], parts[1], parts[2]

	name := artifact + "-" + version
	if len(parts) == 4 {
		name += "-" + parts[3]
	}

	path := filepath.Join(r.Root, filepath.FromSlash(strings.ReplaceAll(group, ".", "/")), artifact, version, name+".jar")

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, diagnostic.NotFoundf(coordinate, "artifact %s does not exist", path)
		}

		return nil, diagnostic.IO(path, "stat artifact", err)
	}

	return []string{path}, nil
}

// HashedCoordinate returns the coordinate of the hashed mappings for a game
// version on the release or snapshot channel.
func HashedCoordinate(gameVersion string, snapshot bool) string {
	coordinate := "org.quiltmc:hashed:" + gameVersion
	if snapshot {
		coordinate += "-SNAPSHOT"
	}

	return coordinate
}
