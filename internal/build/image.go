package build

import (
	"context"
	"fmt"
	"strings"

	"github.com/distribution/reference"
	"github.com/opencontainers/go-digest"

	"github.com/mmr-tortoise/devpp/internal/containerfile"
)

// DigestResolver looks up the repository digest of an image reference.
type DigestResolver interface {
	ResolveDigest(ctx context.Context, ref reference.Named) (digest.Digest, error)
}

// DigestResolverFunc adapts a function to DigestResolver.
type DigestResolverFunc func(ctx context.Context, ref reference.Named) (digest.Digest, error)

// ResolveDigest calls f.
func (f DigestResolverFunc) ResolveDigest(ctx context.Context, ref reference.Named) (digest.Digest, error) {
	return f(ctx, ref)
}

// ParseImage parses an image reference into a FROM image coordinate. The
// familiar form is kept: "alpine" stays "alpine" rather than becoming
// "docker.io/library/alpine", and no implicit ":latest" is added.
func ParseImage(s string) (containerfile.Image, reference.Named, error) {
	named, err := reference.ParseNormalizedNamed(s)
	if err != nil {
		return containerfile.Image{}, nil, fmt.Errorf("invalid image reference %q: %w", s, err)
	}
	return imageOf(named), named, nil
}

// imageOf splits a parsed reference at the last path separator of its
// familiar name.
func imageOf(named reference.Named) containerfile.Image {
	var img containerfile.Image

	name := reference.FamiliarName(named)
	if i := strings.LastIndex(name, "/"); i >= 0 {
		img.Repo, img.Name = name[:i], name[i+1:]
	} else {
		img.Name = name
	}
	if tagged, ok := named.(reference.Tagged); ok {
		img.Tag = tagged.Tag()
	}
	if canonical, ok := named.(reference.Canonical); ok {
		img.Digest = canonical.Digest().String()
	}
	return img
}

// PinImage returns s with the digest reported by resolver added. A
// reference that already has a digest is returned unchanged.
func PinImage(ctx context.Context, resolver DigestResolver, s string) (string, error) {
	_, named, err := ParseImage(s)
	if err != nil {
		return "", err
	}
	if _, ok := named.(reference.Canonical); ok {
		return s, nil
	}

	dgst, err := resolver.ResolveDigest(ctx, named)
	if err != nil {
		return "", fmt.Errorf("failed to pin %s: %w", s, err)
	}
	pinned, err := reference.WithDigest(named, dgst)
	if err != nil {
		return "", fmt.Errorf("failed to pin %s: %w", s, err)
	}
	return reference.FamiliarString(pinned), nil
}
