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
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/datastax/go-cassandra-native-protocol/primitive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowkeylabs/cassandra-schema-catalog/global/types"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, primitive.ProtocolVersion4, cfg.ProtocolVersion)
	assert.Equal(t, types.VersionNumber{Major: 4}, cfg.ReleaseVersion)
	assert.Equal(t, "org.apache.cassandra.dht.Murmur3Partitioner", cfg.Partitioner)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Nil(t, cfg.Logger)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
cluster:
  protocolVersion: v3
  releaseVersion: 2.2.8
  partitioner: org.apache.cassandra.dht.RandomPartitioner
  logLevel: debug
loggerConfig:
  outputType: file
  fileName: /tmp/catalog.log
  maxSize: 50
  compress: true
`))
	require.NoError(t, err)
	assert.Equal(t, primitive.ProtocolVersion3, cfg.ProtocolVersion)
	assert.Equal(t, types.VersionNumber{Major: 2, Minor: 2, Patch: 8}, cfg.ReleaseVersion)
	assert.Equal(t, "org.apache.cassandra.dht.RandomPartitioner", cfg.Partitioner)
	assert.Equal(t, "debug", cfg.LogLevel)
	require.NotNil(t, cfg.Logger)
	assert.Equal(t, "file", cfg.Logger.OutputType)
	assert.Equal(t, "/tmp/catalog.log", cfg.Logger.Filename)
	assert.Equal(t, 50, cfg.Logger.MaxSize)
	assert.True(t, cfg.Logger.Compress)
}

func TestParsePartialFallsBackToDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
cluster:
  logLevel: warn
`))
	require.NoError(t, err)
	assert.Equal(t, primitive.ProtocolVersion4, cfg.ProtocolVersion)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte(`cluster: {protocolVersion: v99}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`cluster: {releaseVersion: bogus}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{{not yaml`))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cluster: {logLevel: error}\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.Info("console logger ready")

	cfg.Logger = &LoggerConfig{
		OutputType: "file",
		Filename:   filepath.Join(t.TempDir(), "out.log"),
	}
	logger, err = NewLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.Info("file logger ready")
	require.NoError(t, logger.Sync())

	cfg.LogLevel = "not-a-level"
	_, err = NewLogger(cfg)
	assert.Error(t, err)
}
