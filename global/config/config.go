/*
 * Copyright (C) 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you may not
 * use this file except in compliance with the License. You may obtain a copy of
 * the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
 * WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
 * License for the specific language governing permissions and limitations under
 * the License.
 */

// Package config loads catalog client configuration from YAML and builds the
// logger the catalog components share.
package config

import (
	"fmt"
	"os"

	"github.com/datastax/go-cassandra-native-protocol/primitive"
	"gopkg.in/yaml.v2"

	"github.com/rowkeylabs/cassandra-schema-catalog/global/types"
)

const (
	defaultPartitioner     = "org.apache.cassandra.dht.Murmur3Partitioner"
	defaultReleaseVersion  = "4.0.0"
	defaultProtocolVersion = "v4"
	defaultLogLevel        = "info"
)

type yamlCatalogConfig struct {
	Cluster      *yamlClusterConfig `yaml:"cluster"`
	LoggerConfig *LoggerConfig      `yaml:"loggerConfig"`
}

type yamlClusterConfig struct {
	ProtocolVersion string `yaml:"protocolVersion"`
	ReleaseVersion  string `yaml:"releaseVersion"`
	Partitioner     string `yaml:"partitioner"`
	LogLevel        string `yaml:"logLevel"`
}

// LoggerConfig selects console or rotated file output.
type LoggerConfig struct {
	OutputType string `yaml:"outputType"`
	Filename   string `yaml:"fileName"`
	MaxSize    int    `yaml:"maxSize"`    // megabytes
	MaxBackups int    `yaml:"maxBackups"` // rotated files kept
	MaxAge     int    `yaml:"maxAge"`     // days
	Compress   bool   `yaml:"compress"`
}

// CatalogConfig is the resolved configuration for a catalog client.
type CatalogConfig struct {
	ProtocolVersion primitive.ProtocolVersion
	ReleaseVersion  types.VersionNumber
	Partitioner     string
	LogLevel        string
	Logger          *LoggerConfig
}

// Default returns the configuration used when no YAML file is given.
func Default() *CatalogConfig {
	version, _ := parseProtocolVersion(defaultProtocolVersion)
	release, _ := types.ParseVersionNumber(defaultReleaseVersion)
	return &CatalogConfig{
		ProtocolVersion: version,
		ReleaseVersion:  release,
		Partitioner:     defaultPartitioner,
		LogLevel:        defaultLogLevel,
	}
}

// Load reads a YAML configuration file and resolves it against defaults.
func Load(path string) (*CatalogConfig, error) {
	fileData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(fileData)
}

// Parse resolves YAML configuration bytes against defaults.
func Parse(fileData []byte) (*CatalogConfig, error) {
	var raw yamlCatalogConfig
	if err := yaml.Unmarshal(fileData, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	result := Default()
	result.Logger = raw.LoggerConfig
	if raw.Cluster == nil {
		return result, nil
	}

	if raw.Cluster.ProtocolVersion != "" {
		version, ok := parseProtocolVersion(raw.Cluster.ProtocolVersion)
		if !ok {
			return nil, fmt.Errorf("unsupported protocol version: %s", raw.Cluster.ProtocolVersion)
		}
		result.ProtocolVersion = version
	}
	if raw.Cluster.ReleaseVersion != "" {
		release, err := types.ParseVersionNumber(raw.Cluster.ReleaseVersion)
		if err != nil {
			return nil, fmt.Errorf("invalid release version: %w", err)
		}
		result.ReleaseVersion = release
	}
	if raw.Cluster.Partitioner != "" {
		result.Partitioner = raw.Cluster.Partitioner
	}
	if raw.Cluster.LogLevel != "" {
		result.LogLevel = raw.Cluster.LogLevel
	}
	return result, nil
}

func parseProtocolVersion(s string) (primitive.ProtocolVersion, bool) {
	switch s {
	case "3", "v3":
		return primitive.ProtocolVersion3, true
	case "4", "v4":
		return primitive.ProtocolVersion4, true
	case "5", "v5":
		return primitive.ProtocolVersion5, true
	default:
		return 0, false
	}
}
