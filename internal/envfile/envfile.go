// SPDX-License-Identifier: MPL-2.0

// Package envfile loads repository-local .env files into the process
// environment. Variables already set in the real environment always win,
// so CI secrets are never clobbered by a checked-in file.
package envfile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads the .env file in dir, if present, and sets each variable
// that is not already in the environment. A missing file is not an error;
// loaded reports whether a file was read.
func Load(dir string) (loaded bool, err error) {
	path := filepath.Join(dir, ".env")
	if _, statErr := os.Stat(path); statErr != nil {
		return false, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return false, err
	}

	for _, key := range v.AllKeys() {
		// viper lowercases keys; .env names are uppercase by convention.
		name := strings.ToUpper(key)
		if _, exists := os.LookupEnv(name); exists {
			continue
		}
		if err := os.Setenv(name, v.GetString(key)); err != nil {
			return true, err
		}
	}
	return true, nil
}
