package docker

import (
	"context"
	"errors"
	"testing"

	"github.com/distribution/reference"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alpineDigest = digest.Digest("sha256:4bcff63911fcb4448bd4fdacec207030997caf25e9bea4045fa6c8c44de311d1")
	otherDigest  = digest.Digest("sha256:1111111111111111111111111111111111111111111111111111111111111111")
)

// fakeImages is an ImageInspector backed by a map from image name to
// response.
type fakeImages struct {
	images map[string]image.InspectResponse
	err    error
	calls  []string
}

func (f *fakeImages) ImageInspect(_ context.Context, imageID string, _ ...client.ImageInspectOption) (image.InspectResponse, error) {
	f.calls = append(f.calls, imageID)
	if f.err != nil {
		return image.InspectResponse{}, f.err
	}
	resp, ok := f.images[imageID]
	if !ok {
		return image.InspectResponse{}, notFoundError{}
	}
	return resp, nil
}

// notFoundError satisfies the errdefs NotFound interface checked by
// client.IsErrNotFound.
type notFoundError struct{}

func (notFoundError) Error() string { return "No such image" }
func (notFoundError) NotFound()     {}

func mustParse(t *testing.T, s string) reference.Named {
	t.Helper()
	named, err := reference.ParseNormalizedNamed(s)
	require.NoError(t, err)
	return named
}

func TestSelectRepoDigest(t *testing.T) {
	repoDigests := []string{
		"not a reference",
		"ghcr.io/example/alpine@" + otherDigest.String(),
		"alpine@" + alpineDigest.String(),
	}

	got, err := selectRepoDigest("docker.io/library/alpine", repoDigests)
	require.NoError(t, err)
	assert.Equal(t, alpineDigest, got)

	got, err = selectRepoDigest("ghcr.io/example/alpine", repoDigests)
	require.NoError(t, err)
	assert.Equal(t, otherDigest, got)

	_, err = selectRepoDigest("docker.io/library/busybox", repoDigests)
	assert.ErrorIs(t, err, ErrDigestNotFound)

	_, err = selectRepoDigest("docker.io/library/alpine", nil)
	assert.ErrorIs(t, err, ErrDigestNotFound)
}

func TestResolveDigest(t *testing.T) {
	images := &fakeImages{images: map[string]image.InspectResponse{
		"alpine:3.20": {RepoDigests: []string{"alpine@" + alpineDigest.String()}},
		"local/app":   {},
	}}
	ctx := context.Background()

	t.Run("tagged image", func(t *testing.T) {
		got, err := ResolveDigest(ctx, images, mustParse(t, "alpine:3.20"))
		require.NoError(t, err)
		assert.Equal(t, alpineDigest, got)
	})

	t.Run("already pinned skips the daemon", func(t *testing.T) {
		before := len(images.calls)
		got, err := ResolveDigest(ctx, images, mustParse(t, "alpine@"+otherDigest.String()))
		require.NoError(t, err)
		assert.Equal(t, otherDigest, got)
		assert.Len(t, images.calls, before)
	})

	t.Run("locally built image", func(t *testing.T) {
		_, err := ResolveDigest(ctx, images, mustParse(t, "local/app"))
		assert.ErrorIs(t, err, ErrDigestNotFound)
	})

	t.Run("missing image", func(t *testing.T) {
		_, err := ResolveDigest(ctx, images, mustParse(t, "busybox"))
		assert.ErrorIs(t, err, ErrImageNotFound)
	})

	t.Run("daemon failure", func(t *testing.T) {
		failing := &fakeImages{err: errors.New("connection refused")}
		_, err := ResolveDigest(ctx, failing, mustParse(t, "alpine"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrImageNotFound)
	})
}
