// Package docker provides the Docker Engine API access devpp needs to pin
// base images by digest.
//
// devpp never builds or runs containers. With --pin-digest it asks the
// local daemon which repository digest an image tag currently resolves to,
// so the generated Containerfile names an immutable base:
//
//	FROM alpine:3.20@sha256:... AS devpp-base
//
// The package uses github.com/docker/docker/client as the underlying
// Docker SDK, with version negotiation enabled for broad compatibility.
package docker
