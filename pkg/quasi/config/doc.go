/*
Package config provides typed access to quasi configuration and variable
files.

# Overview

Config wraps a map[string]any and returns defaults for missing keys or
type mismatches, so YAML and JSON documents can be read without type
assertions:

	cfg, err := config.FromFile(afero.NewOsFs(), "quasi.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	s := cfg.Settings()

# File Format

	mode: ww                  # q, qq, w or ww
	missing: keep             # error, empty or keep
	hash_escape_in_words: true
	cache: .quasi-cache.db
	cache_ttl: 1h
	vars_files: [common.yaml]
	vars:
	  name: Brian
	  user:
	    lang: go

Nested sections are reached with Map. LoadVars merges standalone variable
files.

Files are read through an afero.Fs so callers and tests can substitute an
in-memory filesystem.
*/
package config
