package dictionary

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dshills/cedict-mcp/pkg/types"
)

// ErrNoCompatibleResource is returned when no candidate dataset declares
// types.DataFormatVersion.
var ErrNoCompatibleResource = errors.New("no compatible dictionary resource")

// Resource describes one published dataset.
type Resource struct {
	Name          string `json:"name"`
	Location      string `json:"location"`
	FormatVersion int    `json:"format_version"`
}

// SelectResource returns the first resource whose format version matches
// the version this build reads and writes.
func SelectResource(resources []Resource) (Resource, error) {
	for _, r := range resources {
		if r.FormatVersion == types.DataFormatVersion {
			return r, nil
		}
	}
	return Resource{}, fmt.Errorf("%w: want format version %d among %d candidates",
		ErrNoCompatibleResource, types.DataFormatVersion, len(resources))
}

// ReadRegistry decodes a JSON array of resources.
func ReadRegistry(r io.Reader) ([]Resource, error) {
	var resources []Resource
	if err := json.NewDecoder(r).Decode(&resources); err != nil {
		return nil, fmt.Errorf("failed to decode registry: %w", err)
	}
	return resources, nil
}

// ReadRegistryFile is ReadRegistry on a file.
func ReadRegistryFile(path string) ([]Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadRegistry(f)
}
