// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package common

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	DirPermissions  = 0755
	FilePermissions = 0644
)

const name = "tandem"

// ConfigFile returns the path of the configuration file, creating its
// parent directories if necessary.
func ConfigFile() (string, error) {
	return xdg.ConfigFile(filepath.Join(name, "config.yaml"))
}

// ArchiveFile returns the path of the game archive, creating its parent
// directories if necessary.
func ArchiveFile() (string, error) {
	return xdg.DataFile(filepath.Join(name, "games.db"))
}

// TryMkdir creates the given directory and its parents if it doesn't
// exist yet.
func TryMkdir(dir string) error {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return os.MkdirAll(dir, DirPermissions)
	}

	return nil
}

// TryCreate writes the given data into the file if it doesn't exist yet.
// It reports whether the file was created.
func TryCreate(file string, data []byte) (bool, error) {
	_, err := os.Stat(file)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, fs.ErrNotExist):
		return false, err
	}

	if err := TryMkdir(filepath.Dir(file)); err != nil {
		return false, err
	}

	return true, os.WriteFile(file, data, FilePermissions)
}
