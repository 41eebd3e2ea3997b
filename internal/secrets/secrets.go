// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads private settings from a directory of plain-text
// files. Each file is one secret: the filename is the key and the trimmed
// contents are the value.
//
// Supported key files: contact-email.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDir is where the CLI looks for secrets, relative to the working
// directory.
const DefaultDir = ".secrets"

// KeyContactEmail holds the address sent to arXiv and doi.org in the
// User-Agent so operators can reach us instead of blocking the client.
const KeyContactEmail = "contact-email"

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory is not an error; Load returns an empty
// map. Unreadable files produce a warning on w but do not abort.
func Load(dir string, w io.Writer) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(w, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// ContactEmail returns the configured contact address, or "".
func ContactEmail(secrets map[string]string) string {
	email := secrets[KeyContactEmail]
	if !strings.Contains(email, "@") {
		return ""
	}
	return email
}
