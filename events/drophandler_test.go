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
package events

import (
	"context"
	"testing"

	"github.com/datastax/go-cassandra-native-protocol/datatype"
	"github.com/datastax/go-cassandra-native-protocol/message"
	"github.com/datastax/go-cassandra-native-protocol/primitive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rowkeylabs/cassandra-schema-catalog/catalog"
	"github.com/rowkeylabs/cassandra-schema-catalog/rowset"
)

func keyspacesResult(names ...string) *rowset.ResultSet {
	columns := []*message.ColumnMetadata{
		{Keyspace: "system", Table: "schema_keyspaces", Name: "keyspace_name", Type: datatype.Varchar},
		{Keyspace: "system", Table: "schema_keyspaces", Name: "durable_writes", Type: datatype.Boolean},
		{Keyspace: "system", Table: "schema_keyspaces", Name: "strategy_class", Type: datatype.Varchar},
		{Keyspace: "system", Table: "schema_keyspaces", Name: "strategy_options", Type: datatype.Varchar},
	}
	rows := make([]message.Row, 0, len(names))
	for _, name := range names {
		rows = append(rows, message.Row{
			[]byte(name), {1},
			[]byte("org.apache.cassandra.locator.SimpleStrategy"),
			[]byte(`{"replication_factor":"1"}`),
		})
	}
	return rowset.NewResultSet(primitive.ProtocolVersion4, columns, rows)
}

func TestDropHandlerDropsKeyspace(t *testing.T) {
	logger := zap.NewNop()
	meta := catalog.NewMetadata(logger)
	meta.UpdateKeyspaces(keyspacesResult("ks1", "ks2"))

	d := NewDispatcher(logger)
	defer d.Close()
	d.Register(NewDropHandler(meta, logger))

	require.NoError(t, d.Dispatch(context.Background(), &message.SchemaChangeEvent{
		ChangeType: primitive.SchemaChangeTypeDropped,
		Target:     primitive.SchemaChangeTargetKeyspace,
		Keyspace:   "ks1",
	}))
	require.NoError(t, d.Execute(context.Background(), func() {}))

	snapshot := meta.Snapshot()
	assert.Nil(t, snapshot.Keyspace("ks1"))
	assert.NotNil(t, snapshot.Keyspace("ks2"))
}

func TestDropHandlerIgnoresCreates(t *testing.T) {
	logger := zap.NewNop()
	meta := catalog.NewMetadata(logger)
	meta.UpdateKeyspaces(keyspacesResult("ks1"))
	before := meta.Version()

	handler := NewDropHandler(meta, logger)
	handler.OnEvent(&message.SchemaChangeEvent{
		ChangeType: primitive.SchemaChangeTypeCreated,
		Target:     primitive.SchemaChangeTargetKeyspace,
		Keyspace:   "ks2",
	})

	assert.Equal(t, before, meta.Version())
	assert.NotNil(t, meta.Snapshot().Keyspace("ks1"))
}

func TestDropHandlerDropsFunctionOverload(t *testing.T) {
	logger := zap.NewNop()
	meta := catalog.NewMetadata(logger)
	meta.UpdateKeyspaces(keyspacesResult("ks1"))

	handler := NewDropHandler(meta, logger)
	handler.OnEvent(&message.SchemaChangeEvent{
		ChangeType: primitive.SchemaChangeTypeDropped,
		Target:     primitive.SchemaChangeTargetFunction,
		Keyspace:   "ks1",
		Object:     "f",
		Arguments:  []string{"int"},
	})

	// no such function; the drop is a no-op but still versioned
	assert.Equal(t, uint32(2), meta.Version())
}
