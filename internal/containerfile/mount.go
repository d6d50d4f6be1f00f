package containerfile

import (
	"fmt"
	"strings"
)

// Mount is a RUN --mount attachment. It is a closed set: BindMount,
// CacheMount, SecretMount, SSHMount, and TmpfsMount.
type Mount interface {
	isMount()
}

// Sharing is the concurrency mode of a cache mount. The builder defaults
// to SharingShared; the zero value omits the key.
type Sharing string

const (
	SharingShared  Sharing = "shared"
	SharingPrivate Sharing = "private"
	SharingLocked  Sharing = "locked"
)

// BindMount mounts a directory from the build context, a stage, or an
// image. Keys render as destination, from, readwrite, source.
type BindMount struct {
	Destination string
	From        FromKind
	ReadWrite   bool
	Source      string
}

// CacheMount mounts a persistent cache directory. Keys render as
// destination, from, id, readonly, sharing, source. GID, Mode, and UID have
// no rendering; setting any of them fails with an UnsupportedError.
type CacheMount struct {
	Destination string
	From        FromKind
	ID          string
	ReadOnly    bool
	Sharing     Sharing
	Source      string

	GID  *uint32
	Mode *uint32
	UID  *uint32
}

// SecretMount exposes a build secret as a file or environment variable.
// Keys render as destination, env, id, required.
type SecretMount struct {
	Destination string
	Env         string
	ID          string
	Required    bool

	GID  *uint32
	Mode *uint32
	UID  *uint32
}

// SSHMount forwards an SSH agent socket. Keys render as destination, id,
// required.
type SSHMount struct {
	Destination string
	ID          string
	Required    bool

	GID  *uint32
	Mode *uint32
	UID  *uint32
}

// TmpfsMount mounts a tmpfs. Size is passed through verbatim (e.g. "64m").
type TmpfsMount struct {
	Destination string
	Size        string
}

func (BindMount) isMount()   {}
func (CacheMount) isMount()  {}
func (SecretMount) isMount() {}
func (SSHMount) isMount()    {}
func (TmpfsMount) isMount()  {}

// renderMount renders --mount=type=<kind>,<key>=<value>,... with the keys
// of each kind in their fixed order. Mount values are not quoted.
func renderMount(m Mount) (string, error) {
	var args []string
	switch m := m.(type) {
	case BindMount:
		if m.Destination == "" {
			return "", emptyf("bind mount: empty destination")
		}
		args = append(args, "type=bind", "destination="+m.Destination)
		if m.From != nil {
			if err := validateFrom(m.From, "bind mount from"); err != nil {
				return "", err
			}
			args = append(args, "from="+m.From.String())
		}
		if m.ReadWrite {
			args = append(args, "readwrite")
		}
		if m.Source != "" {
			args = append(args, "source="+m.Source)
		}

	case CacheMount:
		if m.Destination == "" {
			return "", emptyf("cache mount: empty destination")
		}
		if err := ownership("cache", m.GID, m.Mode, m.UID); err != nil {
			return "", err
		}
		args = append(args, "type=cache", "destination="+m.Destination)
		if m.From != nil {
			if err := validateFrom(m.From, "cache mount from"); err != nil {
				return "", err
			}
			args = append(args, "from="+m.From.String())
		}
		if m.ID != "" {
			args = append(args, "id="+m.ID)
		}
		if m.ReadOnly {
			args = append(args, "readonly")
		}
		switch m.Sharing {
		case "":
		case SharingShared, SharingPrivate, SharingLocked:
			args = append(args, "sharing="+string(m.Sharing))
		default:
			return "", fmt.Errorf("cache mount: unknown sharing mode %q", m.Sharing)
		}
		if m.Source != "" {
			args = append(args, "source="+m.Source)
		}

	case SecretMount:
		if err := ownership("secret", m.GID, m.Mode, m.UID); err != nil {
			return "", err
		}
		args = append(args, "type=secret")
		if m.Destination != "" {
			args = append(args, "destination="+m.Destination)
		}
		if m.Env != "" {
			args = append(args, "env="+m.Env)
		}
		if m.ID != "" {
			args = append(args, "id="+m.ID)
		}
		if m.Required {
			args = append(args, "required")
		}

	case SSHMount:
		if err := ownership("ssh", m.GID, m.Mode, m.UID); err != nil {
			return "", err
		}
		args = append(args, "type=ssh")
		if m.Destination != "" {
			args = append(args, "destination="+m.Destination)
		}
		if m.ID != "" {
			args = append(args, "id="+m.ID)
		}
		if m.Required {
			args = append(args, "required")
		}

	case TmpfsMount:
		if m.Destination == "" {
			return "", emptyf("tmpfs mount: empty destination")
		}
		args = append(args, "type=tmpfs", "destination="+m.Destination)
		if m.Size != "" {
			args = append(args, "size="+m.Size)
		}

	default:
		return "", unsupported(fmt.Sprintf("mount %T", m))
	}

	return "--mount=" + strings.Join(args, ","), nil
}

// ownership fails for the uid/gid/mode keys, which have no rendering.
func ownership(kind string, gid, mode, uid *uint32) error {
	switch {
	case gid != nil:
		return unsupported(kind + " mount gid")
	case mode != nil:
		return unsupported(kind + " mount mode")
	case uid != nil:
		return unsupported(kind + " mount uid")
	}
	return nil
}
