package build

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"

	"github.com/mmr-tortoise/devpp/internal/containerfile"
	"github.com/mmr-tortoise/devpp/internal/model"
)

// Stdout is the output name that selects standard output.
const Stdout = "-"

// Write renders cf and writes it to output, creating parent directories if
// they don't exist. Output "-" writes to stdout instead of a file. The
// returned digest identifies the written text.
//
// Rendering happens before anything is written, so a render failure
// leaves an existing output file untouched. Files are written with 0644
// permissions, the standard permission for non-executable build files.
func Write(cf *containerfile.Containerfile, output string, stdout io.Writer) (digest.Digest, error) {
	text, err := cf.Render()
	if err != nil {
		return "", err
	}
	data := []byte(text)

	if output == Stdout {
		if _, err := stdout.Write(data); err != nil {
			return "", model.WrapCLIError(model.ExitOutput, "failed to write Containerfile to stdout", err)
		}
		return digest.FromBytes(data), nil
	}

	dir := filepath.Dir(output)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", model.WrapCLIError(model.ExitOutput, fmt.Sprintf("failed to create directory %s", dir), err)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return "", model.WrapCLIError(model.ExitOutput, fmt.Sprintf("failed to write Containerfile to %s", output), err)
	}
	return digest.FromBytes(data), nil
}
