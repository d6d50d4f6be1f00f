package docker

import (
	"context"
	"errors"
	"fmt"

	"github.com/distribution/reference"
	"github.com/docker/docker/client"
	"github.com/opencontainers/go-digest"

	"github.com/mmr-tortoise/devpp/internal/ctxlog"
	"github.com/mmr-tortoise/devpp/internal/model"
)

var (
	// ErrImageNotFound is returned when the image is not present in the
	// local image store. Pull it first.
	ErrImageNotFound = errors.New("image not found locally")

	// ErrDigestNotFound is returned when the local image has no repository
	// digest for the requested name, typically because it was built
	// locally and never pushed or pulled.
	ErrDigestNotFound = errors.New("image has no repository digest")
)

// ResolveDigest returns the repository digest the local daemon records for
// ref. A ref that already carries a digest is returned unchanged without a
// daemon round trip.
func ResolveDigest(ctx context.Context, images ImageInspector, ref reference.Named) (digest.Digest, error) {
	if canonical, ok := ref.(reference.Canonical); ok {
		return canonical.Digest(), nil
	}

	name := reference.FamiliarString(ref)
	resp, err := images.ImageInspect(ctx, name)
	if err != nil {
		if client.IsErrNotFound(err) {
			return "", fmt.Errorf("%w: %s", ErrImageNotFound, name)
		}
		return "", model.WrapCLIError(model.ExitDockerNotRunning, fmt.Sprintf("failed to inspect image %s", name), err)
	}

	dgst, err := selectRepoDigest(ref.Name(), resp.RepoDigests)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	ctxlog.FromContext(ctx).Debug("resolved image digest", "image", name, "digest", dgst.String())
	return dgst, nil
}

// selectRepoDigest picks the entry of repoDigests ("name@sha256:...") whose
// repository equals name. Entries that do not parse are skipped.
func selectRepoDigest(name string, repoDigests []string) (digest.Digest, error) {
	for _, rd := range repoDigests {
		parsed, err := reference.ParseNormalizedNamed(rd)
		if err != nil {
			continue
		}
		canonical, ok := parsed.(reference.Canonical)
		if !ok || parsed.Name() != name {
			continue
		}
		dgst := canonical.Digest()
		if err := dgst.Validate(); err != nil {
			continue
		}
		return dgst, nil
	}
	return "", ErrDigestNotFound
}
