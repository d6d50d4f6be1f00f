package containerfile

import (
	"strings"
)

// CopyOptions are the flags of a COPY instruction.
//
// Only From and Link have a rendering. Chmod, Chown, Exclude, and Parents
// are carried so that callers can express them, but rendering a COPY that
// sets any of them fails with an UnsupportedError.
type CopyOptions struct {
	// From copies out of another stage, build context, or image.
	From FromKind
	// Link emits --link, which places the copied files in an independent
	// layer.
	Link bool

	Chmod   string
	Chown   string
	Exclude []string
	Parents bool
}

// render returns the space-joined flags, or "" when no flag is set.
// Flags appear in a fixed order: --from, then --link.
func (o *CopyOptions) render() (string, error) {
	if o == nil {
		return "", nil
	}
	switch {
	case o.Chmod != "":
		return "", unsupported("COPY --chmod")
	case o.Chown != "":
		return "", unsupported("COPY --chown")
	case len(o.Exclude) > 0:
		return "", unsupported("COPY --exclude")
	case o.Parents:
		return "", unsupported("COPY --parents")
	}

	var args []string
	if o.From != nil {
		if err := validateFrom(o.From, "COPY --from"); err != nil {
			return "", err
		}
		args = append(args, "--from="+o.From.String())
	}
	if o.Link {
		args = append(args, "--link")
	}
	return strings.Join(args, " "), nil
}
