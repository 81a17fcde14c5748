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

// Package catalog maintains the client side view of a cluster's schema: a
// versioned catalog of keyspaces, tables, user types, functions and
// aggregates built from system table query results, readable through
// immutable snapshots while a single control goroutine applies updates.
package catalog

import (
	"sync"
	"sync/atomic"

	"github.com/datastax/go-cassandra-native-protocol/primitive"
	"go.uber.org/zap"

	"github.com/rowkeylabs/cassandra-schema-catalog/global/types"
	"github.com/rowkeylabs/cassandra-schema-catalog/rowset"
	"github.com/rowkeylabs/cassandra-schema-catalog/tokenmap"
	"github.com/rowkeylabs/cassandra-schema-catalog/typeparser"
)

// generation is one buffer of the double-buffered catalog: a handle to an
// immutable keyspace map.
type generation struct {
	keyspaces map[types.Keyspace]*KeyspaceMetadata
}

// Metadata is the schema catalog. All mutating calls must come from a single
// control goroutine; any goroutine may take snapshots concurrently.
//
// Incremental schema events apply directly to the front buffer, published
// under the mutex. A full refresh builds into the back buffer without
// touching the front, then SwapToBackAndUpdateFront exposes it in one step.
type Metadata struct {
	logger *zap.Logger
	parser *typeparser.Parser
	tokens *tokenmap.TokenMap

	mu      sync.Mutex
	version atomic.Uint32

	protocolVersion  primitive.ProtocolVersion
	cassandraVersion types.VersionNumber

	front    generation
	back     generation
	updating *generation
}

func NewMetadata(logger *zap.Logger) *Metadata {
	m := &Metadata{
		logger:          logger,
		parser:          typeparser.NewParser(),
		tokens:          tokenmap.NewTokenMap(logger),
		protocolVersion: primitive.ProtocolVersion4,
		front:           generation{keyspaces: make(map[types.Keyspace]*KeyspaceMetadata)},
		back:            generation{keyspaces: make(map[types.Keyspace]*KeyspaceMetadata)},
	}
	m.updating = &m.front
	return m
}

// SetProtocolVersion records the protocol version negotiated with the
// cluster. Snapshots report it and JSON-derived fields re-encode at it.
func (m *Metadata) SetProtocolVersion(version primitive.ProtocolVersion) {
	m.mu.Lock()
	m.protocolVersion = version
	m.mu.Unlock()
}

// SetCassandraVersion records the server release version, which selects
// between the modern and legacy key derivation paths.
func (m *Metadata) SetCassandraVersion(version types.VersionNumber) {
	m.cassandraVersion = version
}

func (m *Metadata) CassandraVersion() types.VersionNumber {
	return m.cassandraVersion
}

// TokenMap returns the catalog's token map.
func (m *Metadata) TokenMap() *tokenmap.TokenMap {
	return m.tokens
}

// SetPartitioner forwards the cluster partitioner class to the token map.
func (m *Metadata) SetPartitioner(partitionerClass string) {
	m.tokens.SetPartitioner(partitionerClass)
}

// UpdateHost records a host and its ring tokens in the token map.
func (m *Metadata) UpdateHost(host tokenmap.Host, tokenStrings []string) {
	m.tokens.UpdateHost(host, tokenStrings)
}

// RemoveHost removes a host and its tokens from the token map.
func (m *Metadata) RemoveHost(host tokenmap.Host) {
	m.tokens.RemoveHost(host)
}

// BuildTokenMap rebuilds the token ring after a series of host updates.
func (m *Metadata) BuildTokenMap() {
	m.tokens.Build()
}

// Snapshot returns an immutable view of the current schema. The returned
// snapshot is unaffected by later catalog updates and is safe to read from
// any goroutine.
func (m *Metadata) Snapshot() *SchemaSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &SchemaSnapshot{
		version:         m.version.Load(),
		protocolVersion: m.protocolVersion,
		keyspaces:       m.front.keyspaces,
		parser:          m.parser,
	}
}

// Version returns the current schema version counter.
func (m *Metadata) Version() uint32 {
	return m.version.Load()
}

// UpdateKeyspaces applies a result from the keyspaces system table: one
// keyspace created or refreshed per row. Replication settings are forwarded
// to the token map.
func (m *Metadata) UpdateKeyspaces(rs *rowset.ResultSet) {
	m.version.Add(1)
	batch := m.beginBatch()
	updated := make([]*KeyspaceMetadata, 0, rs.Len())

	for i := 0; i < rs.Len(); i++ {
		row := rs.Row(i)
		name, ok := row.StringByName("keyspace_name")
		if !ok {
			m.logger.Error("unable to read keyspace_name column in keyspace metadata row")
			continue
		}
		ks := batch.keyspace(types.Keyspace(name))
		ks.update(rs.Version(), row, m.logger)
		updated = append(updated, ks)
	}

	m.commit(batch)
	for _, ks := range updated {
		m.tokens.UpdateKeyspace(types.Keyspace(ks.Name()), ks.replicationSettings())
	}
}

// UpdateTables applies results from the tables and columns system tables.
// Each table named in tablesResult is rebuilt from scratch; each table that
// owns rows in columnsResult has its columns replaced and its keys rederived.
func (m *Metadata) UpdateTables(tablesResult, columnsResult *rowset.ResultSet) {
	m.version.Add(1)
	batch := m.beginBatch()
	m.updateTableRows(batch, tablesResult)
	m.updateColumnRows(batch, columnsResult)
	m.commit(batch)
}

func (m *Metadata) updateTableRows(batch *updateBatch, rs *rowset.ResultSet) {
	var ks *KeyspaceMetadata
	var ksName types.Keyspace

	for i := 0; i < rs.Len(); i++ {
		row := rs.Row(i)
		keyspaceName, ok := row.StringByName("keyspace_name")
		tableName, ok2 := row.StringByName("columnfamily_name")
		if !ok || !ok2 {
			m.logger.Error("unable to read column(s) in table metadata row")
			continue
		}
		if ks == nil || ksName != types.Keyspace(keyspaceName) {
			ksName = types.Keyspace(keyspaceName)
			ks = batch.keyspace(ksName)
		}
		ks.addTable(newTableFromRow(tableName, rs.Version(), row, m.logger))
	}
}

func (m *Metadata) updateColumnRows(batch *updateBatch, rs *rowset.ResultSet) {
	var ks *KeyspaceMetadata
	var table *TableMetadata
	var ksName types.Keyspace
	var tableName types.TableName

	for i := 0; i < rs.Len(); i++ {
		row := rs.Row(i)
		keyspaceName, ok := row.StringByName("keyspace_name")
		cfName, ok2 := row.StringByName("columnfamily_name")
		columnName, ok3 := row.StringByName("column_name")
		if !ok || !ok2 || !ok3 {
			m.logger.Error("unable to read column(s) in column metadata row")
			continue
		}
		if ks == nil || ksName != types.Keyspace(keyspaceName) {
			if table != nil {
				table.BuildKeysAndSort(m.cassandraVersion, m.parser, m.logger)
				table = nil
			}
			ksName = types.Keyspace(keyspaceName)
			ks = batch.keyspace(ksName)
		}
		if table == nil || tableName != types.TableName(cfName) {
			if table != nil {
				table.BuildKeysAndSort(m.cassandraVersion, m.parser, m.logger)
			}
			tableName = types.TableName(cfName)
			table = ks.resetTableForColumns(tableName)
		}
		table.addColumn(newColumnFromRow(columnName, rs.Version(), m.parser, row, m.logger))
	}
	if table != nil {
		table.BuildKeysAndSort(m.cassandraVersion, m.parser, m.logger)
	}
}

// UpdateUserTypes applies a result from the user types system table.
func (m *Metadata) UpdateUserTypes(rs *rowset.ResultSet) {
	m.version.Add(1)
	batch := m.beginBatch()

	for i := 0; i < rs.Len(); i++ {
		row := rs.Row(i)
		keyspaceName, ok := row.StringByName("keyspace_name")
		typeName, ok2 := row.StringByName("type_name")
		if !ok || !ok2 {
			m.logger.Error("unable to read column(s) in user type metadata row")
			continue
		}

		fieldNames, ok := readStringList(row, "field_names")
		if !ok {
			m.logger.Error("unable to read field_names column in user type metadata row",
				zap.String("type", typeName))
			continue
		}
		fieldTypes, ok := readStringList(row, "field_types")
		if !ok || len(fieldTypes) != len(fieldNames) {
			m.logger.Error("unable to read field_types column in user type metadata row",
				zap.String("type", typeName))
			continue
		}

		fields := make([]UserTypeField, 0, len(fieldNames))
		malformed := false
		for j := range fieldNames {
			dt, err := m.parser.Parse(fieldTypes[j])
			if err != nil {
				m.logger.Error("unable to parse user type field",
					zap.String("type", typeName),
					zap.String("field", fieldNames[j]),
					zap.String("fieldType", fieldTypes[j]),
					zap.Error(err))
				malformed = true
				break
			}
			fields = append(fields, UserTypeField{Name: fieldNames[j], Type: dt})
		}
		if malformed {
			continue
		}

		ks := batch.keyspace(types.Keyspace(keyspaceName))
		ks.addUserType(NewUserType(types.Keyspace(keyspaceName), types.TypeName(typeName), fields))
	}

	m.commit(batch)
}

// UpdateFunctions applies a result from the functions system table.
func (m *Metadata) UpdateFunctions(rs *rowset.ResultSet) {
	m.version.Add(1)
	batch := m.beginBatch()

	for i := 0; i < rs.Len(); i++ {
		row := rs.Row(i)
		keyspaceName, ok := row.StringByName("keyspace_name")
		functionName, ok2 := row.StringByName("function_name")
		if !ok || !ok2 {
			m.logger.Error("unable to read column(s) in function metadata row")
			continue
		}
		signature, ok := readSignature(row)
		if !ok {
			m.logger.Error("unable to read signature column in function metadata row",
				zap.String("function", functionName))
			continue
		}
		ks := batch.keyspace(types.Keyspace(keyspaceName))
		ks.addFunction(newFunctionFromRow(functionName, signature, m.parser, row, m.logger))
	}

	m.commit(batch)
}

// UpdateAggregates applies a result from the aggregates system table. State
// and final functions resolve against the functions already loaded into the
// same keyspace, so function updates must be applied first.
func (m *Metadata) UpdateAggregates(rs *rowset.ResultSet) {
	m.version.Add(1)
	batch := m.beginBatch()

	for i := 0; i < rs.Len(); i++ {
		row := rs.Row(i)
		keyspaceName, ok := row.StringByName("keyspace_name")
		aggregateName, ok2 := row.StringByName("aggregate_name")
		if !ok || !ok2 {
			m.logger.Error("unable to read column(s) in aggregate metadata row")
			continue
		}
		signature, ok := readSignature(row)
		if !ok {
			m.logger.Error("unable to read signature column in aggregate metadata row",
				zap.String("aggregate", aggregateName))
			continue
		}
		ks := batch.keyspace(types.Keyspace(keyspaceName))
		ks.addAggregate(newAggregateFromRow(aggregateName, signature, ks.functions, m.parser, row,
			m.logger))
	}

	m.commit(batch)
}

func readSignature(row rowset.Row) ([]string, bool) {
	return readStringList(row, "signature")
}

func readStringList(row rowset.Row, name string) ([]string, bool) {
	value := row.ByName(name)
	if value == nil || value.IsNull() {
		return nil, false
	}
	return value.AsStringList()
}

// DropKeyspace removes a keyspace and everything in it. Dropping an unknown
// keyspace still advances the version.
func (m *Metadata) DropKeyspace(keyspace types.Keyspace) {
	m.version.Add(1)
	batch := m.beginBatch()
	delete(batch.keyspaces, keyspace)
	m.commit(batch)
	m.tokens.DropKeyspace(keyspace)
}

// DropTable removes a table from a keyspace.
func (m *Metadata) DropTable(keyspace types.Keyspace, table types.TableName) {
	m.version.Add(1)
	batch := m.beginBatch()
	if ks, ok := batch.existing(keyspace); ok {
		ks.dropTable(table)
	}
	m.commit(batch)
}

// DropUserType removes a user type from a keyspace.
func (m *Metadata) DropUserType(keyspace types.Keyspace, name types.TypeName) {
	m.version.Add(1)
	batch := m.beginBatch()
	if ks, ok := batch.existing(keyspace); ok {
		ks.dropUserType(name)
	}
	m.commit(batch)
}

// DropFunction removes the function with the given canonical full signature
// from a keyspace. Other overloads are untouched.
func (m *Metadata) DropFunction(keyspace types.Keyspace, fullName string) {
	m.version.Add(1)
	batch := m.beginBatch()
	if ks, ok := batch.existing(keyspace); ok {
		ks.dropFunction(fullName)
	}
	m.commit(batch)
}

// DropAggregate removes the aggregate with the given canonical full
// signature from a keyspace.
func (m *Metadata) DropAggregate(keyspace types.Keyspace, fullName string) {
	m.version.Add(1)
	batch := m.beginBatch()
	if ks, ok := batch.existing(keyspace); ok {
		ks.dropAggregate(fullName)
	}
	m.commit(batch)
}

// ClearAndUpdateBack starts a full schema refresh: the back buffer is
// emptied and becomes the target of subsequent updates. Readers keep seeing
// the untouched front buffer. The version does not change until the swap.
func (m *Metadata) ClearAndUpdateBack() {
	m.back.keyspaces = make(map[types.Keyspace]*KeyspaceMetadata)
	m.updating = &m.back
	m.tokens.Clear()
}

// SwapToBackAndUpdateFront completes a full refresh: the rebuilt back buffer
// becomes the front in one step, and subsequent updates target the front
// again. The retired schema is released.
func (m *Metadata) SwapToBackAndUpdateFront() {
	m.mu.Lock()
	m.version.Add(1)
	m.front.keyspaces, m.back.keyspaces = m.back.keyspaces, m.front.keyspaces
	m.mu.Unlock()
	m.back.keyspaces = make(map[types.Keyspace]*KeyspaceMetadata)
	m.updating = &m.front
}

// Clear empties both buffers, resets the version to zero and clears the
// token map.
func (m *Metadata) Clear() {
	m.mu.Lock()
	m.version.Store(0)
	m.front.keyspaces = make(map[types.Keyspace]*KeyspaceMetadata)
	m.mu.Unlock()
	m.back.keyspaces = make(map[types.Keyspace]*KeyspaceMetadata)
	m.updating = &m.front
	m.tokens.Clear()
}

// updateBatch stages one mutating call: a copy of the updating buffer's
// keyspace map in which touched keyspaces are cloned exactly once. Published
// keyspaces are never mutated in place.
type updateBatch struct {
	keyspaces map[types.Keyspace]*KeyspaceMetadata
	cloned    map[types.Keyspace]bool
}

func (m *Metadata) beginBatch() *updateBatch {
	current := m.updating.keyspaces
	keyspaces := make(map[types.Keyspace]*KeyspaceMetadata, len(current)+1)
	for name, ks := range current {
		keyspaces[name] = ks
	}
	return &updateBatch{keyspaces: keyspaces, cloned: make(map[types.Keyspace]bool)}
}

// keyspace returns a mutable keyspace for this batch, creating it if absent.
func (b *updateBatch) keyspace(name types.Keyspace) *KeyspaceMetadata {
	ks, ok := b.keyspaces[name]
	if !ok {
		ks = newKeyspace(name)
		b.keyspaces[name] = ks
		b.cloned[name] = true
		return ks
	}
	if !b.cloned[name] {
		ks = ks.clone()
		b.keyspaces[name] = ks
		b.cloned[name] = true
	}
	return ks
}

// existing returns a mutable keyspace for this batch only if it already
// exists.
func (b *updateBatch) existing(name types.Keyspace) (*KeyspaceMetadata, bool) {
	if _, ok := b.keyspaces[name]; !ok {
		return nil, false
	}
	return b.keyspace(name), true
}

// commit publishes the batch's keyspace map. Publishing to the front buffer
// happens under the mutex so concurrent snapshots see either the old or the
// new map, never a partial one.
func (m *Metadata) commit(batch *updateBatch) {
	if m.updating == &m.front {
		m.mu.Lock()
		m.front.keyspaces = batch.keyspaces
		m.mu.Unlock()
		return
	}
	m.back.keyspaces = batch.keyspaces
}
