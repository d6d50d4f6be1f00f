package containerfile

import (
	"fmt"
	"strings"
)

// Network is the --network mode of a RUN instruction. The zero value
// omits the flag.
type Network string

const (
	NetworkDefault Network = "default"
	NetworkHost    Network = "host"
	NetworkNone    Network = "none"
)

// Security is the --security mode of a RUN instruction. The zero value
// omits the flag, which the builder treats as sandbox.
type Security string

const (
	SecuritySandbox  Security = "sandbox"
	SecurityInsecure Security = "insecure"
)

// Device exposes a CDI device to a RUN step (--device=name[,required]).
type Device struct {
	Name     string
	Required bool
}

func (d Device) render() (string, error) {
	if d.Name == "" {
		return "", emptyf("RUN --device: empty device name")
	}
	s := "--device=" + d.Name
	if d.Required {
		s += ",required"
	}
	return s, nil
}

// RunOptions are the flags of a RUN instruction. They render in the fixed
// order devices, mounts, network, security.
type RunOptions struct {
	Devices  []Device
	Mounts   []Mount
	Network  Network
	Security Security
}

func (o *RunOptions) render() (string, error) {
	if o == nil {
		return "", nil
	}

	var args []string
	for _, d := range o.Devices {
		s, err := d.render()
		if err != nil {
			return "", err
		}
		args = append(args, s)
	}
	for _, m := range o.Mounts {
		s, err := renderMount(m)
		if err != nil {
			return "", err
		}
		args = append(args, s)
	}

	switch o.Network {
	case "":
	case NetworkDefault, NetworkHost, NetworkNone:
		args = append(args, "--network="+string(o.Network))
	default:
		return "", fmt.Errorf("RUN --network: unknown mode %q", o.Network)
	}

	switch o.Security {
	case "":
	case SecuritySandbox, SecurityInsecure:
		args = append(args, "--security="+string(o.Security))
	default:
		return "", fmt.Errorf("RUN --security: unknown mode %q", o.Security)
	}

	return strings.Join(args, " "), nil
}
