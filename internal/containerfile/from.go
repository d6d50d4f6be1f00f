package containerfile

import (
	"strings"
)

// FromKind is the source a FROM instruction or a --from option points at.
// Exactly one of Context, Stage, or Image is active per reference.
type FromKind interface {
	// String renders the reference the way it appears after FROM.
	String() string
	isFromKind()
}

// Context references a named build context (docker buildx --build-context).
type Context struct {
	Name string
}

// Stage references a stage declared earlier in the same document.
type Stage struct {
	Name string
}

// Image references an external image coordinate. Repo, Tag, and Digest are
// independently optional and render as [repo/]image[:tag][@digest].
type Image struct {
	// Repo is the registry and/or namespace part, e.g. "ghcr.io/acme".
	Repo string
	// Name is the image path below Repo, e.g. "alpine" or "library/alpine".
	Name string
	Tag  string
	// Digest is a content digest such as "sha256:...".
	Digest string
}

func (c Context) String() string { return c.Name }
func (s Stage) String() string   { return s.Name }

func (i Image) String() string {
	var b strings.Builder
	if i.Repo != "" {
		b.WriteString(i.Repo)
		b.WriteByte('/')
	}
	b.WriteString(i.Name)
	if i.Tag != "" {
		b.WriteByte(':')
		b.WriteString(i.Tag)
	}
	if i.Digest != "" {
		b.WriteByte('@')
		b.WriteString(i.Digest)
	}
	return b.String()
}

func (Context) isFromKind() {}
func (Stage) isFromKind()   {}
func (Image) isFromKind()   {}

// validateFrom rejects a reference that would render as an empty string.
func validateFrom(kind FromKind, where string) error {
	if kind == nil {
		return emptyf("%s: missing stage reference", where)
	}
	switch k := kind.(type) {
	case Context:
		if k.Name == "" {
			return emptyf("%s: empty build context name", where)
		}
	case Stage:
		if k.Name == "" {
			return emptyf("%s: empty stage name", where)
		}
	case Image:
		if k.Name == "" {
			return emptyf("%s: empty image name", where)
		}
	}
	return nil
}
