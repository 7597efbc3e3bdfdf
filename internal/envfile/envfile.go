// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package envfile bootstraps and reads the project's .env file.
//
// The live .env is never committed; it is created on first run by copying
// .env.example byte for byte, so comments and key ordering survive. After
// that the file belongs to the developer and is only ever read.
package envfile

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/joho/godotenv"
	"go.chromium.org/luci/common/errors"

	"github.com/Brownbull/ayni-be/internal/site"
)

// ErrExampleMissing means .env is absent and .env.example is too, so there
// is nothing to bootstrap from.
var ErrExampleMissing = errors.New(".env is missing and there is no .env.example to create it from")

// Ensure makes sure dir contains a .env file, creating it from
// .env.example when absent. It reports whether the file was created.
func Ensure(dir string) (created bool, err error) {
	envPath := filepath.Join(dir, site.EnvFilename)
	if _, err := os.Stat(envPath); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, errors.Annotate(err, "stat %s", envPath).Err()
	}
	examplePath := filepath.Join(dir, site.EnvExampleFilename)
	data, err := os.ReadFile(examplePath)
	if os.IsNotExist(err) {
		return false, errors.Annotate(ErrExampleMissing, "bootstrap %s", envPath).Err()
	} else if err != nil {
		return false, errors.Annotate(err, "read %s", examplePath).Err()
	}
	// The live file holds credentials, keep it private to the developer.
	if err := os.WriteFile(envPath, data, 0600); err != nil {
		return false, errors.Annotate(err, "write %s", envPath).Err()
	}
	return true, nil
}

// Read parses the env file at path into a map. A missing file is an error;
// callers that can live without one should call Ensure first.
func Read(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, errors.Annotate(err, "read env file %s", path).Err()
	}
	return env, nil
}

// ReadProject reads dir's .env if it exists. A missing file yields an
// empty map so callers can fall back to defaults.
func ReadProject(dir string) (map[string]string, error) {
	path := filepath.Join(dir, site.EnvFilename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	return Read(path)
}

// MissingKeys returns the keys defined in dir's .env.example that the live
// .env lacks, sorted. It flags stacks whose .env predates additions to the
// committed example.
func MissingKeys(dir string) ([]string, error) {
	example, err := Read(filepath.Join(dir, site.EnvExampleFilename))
	if err != nil {
		return nil, err
	}
	env, err := ReadProject(dir)
	if err != nil {
		return nil, err
	}
	var missing []string
	for k := range example {
		if _, ok := env[k]; !ok {
			missing = append(missing, k)
		}
	}
	sort.Strings(missing)
	return missing, nil
}

// Lookup returns env[key], or def when the key is absent or empty.
func Lookup(env map[string]string, key, def string) string {
	if v, ok := env[key]; ok && v != "" {
		return v
	}
	return def
}

// Port returns env[key] parsed as a port number, or def when absent.
// A present but unparseable value is a configuration error.
func Port(env map[string]string, key string, def int) (int, error) {
	v, ok := env[key]
	if !ok || v == "" {
		return def, nil
	}
	p, err := strconv.Atoi(v)
	if err != nil || p < 1 || p > 65535 {
		return 0, errors.Reason("invalid %s value %q, want a port number", key, v).Err()
	}
	return p, nil
}
