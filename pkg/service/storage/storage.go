// Package storage keeps uploaded document files on the local filesystem or in a Cloud
// Storage bucket.
package storage

import (
	"path"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
)

var (
	ErrNotFound    = interfaces.ErrNotFound
	ErrInvalidName = interfaces.ErrInvalidName
)

// cleanName rejects names that could escape the storage root
func cleanName(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `\`) || strings.HasPrefix(name, "/") {
		return "", goerr.Wrap(ErrInvalidName, "bad file name", goerr.V("name", name))
	}
	cleaned := path.Clean(name)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", goerr.Wrap(ErrInvalidName, "bad file name", goerr.V("name", name))
	}
	return cleaned, nil
}
