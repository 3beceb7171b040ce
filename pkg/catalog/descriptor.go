package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/bindery/pkg/core"
)

// DescriptorFilename is the metadata descriptor each bundle carries at its
// root.
const DescriptorFilename = "bundle.yaml"

// decodeDescriptor parses and validates one bundle descriptor payload.
func decodeDescriptor(data []byte) (core.BundleMetadata, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return core.BundleMetadata{}, errors.New("descriptor is empty")
	}
	var meta core.BundleMetadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return core.BundleMetadata{}, fmt.Errorf("decode descriptor: %w", err)
	}
	if err := validateMetadata(meta); err != nil {
		return core.BundleMetadata{}, err
	}
	return meta, nil
}

func validateMetadata(meta core.BundleMetadata) error {
	if strings.TrimSpace(meta.ID) == "" {
		return errors.New("descriptor missing id")
	}
	if strings.TrimSpace(meta.Name) == "" {
		return errors.New("descriptor missing name")
	}
	if meta.Category != "" && !meta.Category.Valid() {
		return fmt.Errorf("unknown category %q", meta.Category)
	}
	return nil
}
