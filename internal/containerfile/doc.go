// Package containerfile models Dockerfile-compatible build instructions as a
// closed set of Go types and renders them to the exact text a container
// build engine consumes.
//
// The model is append-only: callers build a Containerfile by pushing
// instructions and render it once. Rendering is a two-pass operation:
//
//  1. Scan the document for parser directives. Directives must precede
//     every other instruction, and the first escape directive fixes the
//     escape character for the whole document (backslash by default).
//  2. Render each instruction on its own line using that escape character.
//
// Every quoted value (ARG defaults, ENV values, COPY paths, RUN arguments)
// goes through Quote, which doubles the escape character and prefixes
// double quotes with it.
//
// Instructions and options without a defined rendering (HEALTHCHECK, LABEL,
// COPY --chmod, cache mount uid and so on) are representable but fail at
// render time with an error wrapping ErrUnsupported. They are never dropped
// silently, since a missing build option would change the produced image.
//
// Reference: https://docs.docker.com/reference/dockerfile/
package containerfile
