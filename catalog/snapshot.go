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

package catalog

import (
	"sort"

	"github.com/datastax/go-cassandra-native-protocol/primitive"
	"golang.org/x/exp/maps"

	"github.com/rowkeylabs/cassandra-schema-catalog/global/types"
	"github.com/rowkeylabs/cassandra-schema-catalog/typeparser"
)

// SchemaSnapshot is an immutable, point-in-time view of the catalog. It
// remains valid and unchanged no matter what the catalog does afterwards, so
// callers can navigate it without locks.
type SchemaSnapshot struct {
	version         uint32
	protocolVersion primitive.ProtocolVersion
	keyspaces       map[types.Keyspace]*KeyspaceMetadata
	parser          *typeparser.Parser
}

// Version returns the schema version counter at the time the snapshot was
// taken.
func (s *SchemaSnapshot) Version() uint32 {
	return s.version
}

func (s *SchemaSnapshot) ProtocolVersion() primitive.ProtocolVersion {
	return s.protocolVersion
}

// Keyspace returns the named keyspace, or nil.
func (s *SchemaSnapshot) Keyspace(name types.Keyspace) *KeyspaceMetadata {
	return s.keyspaces[name]
}

// Keyspaces returns all keyspaces sorted by name.
func (s *SchemaSnapshot) Keyspaces() []*KeyspaceMetadata {
	keyspaces := maps.Values(s.keyspaces)
	sort.Slice(keyspaces, func(i, j int) bool { return keyspaces[i].Name() < keyspaces[j].Name() })
	return keyspaces
}

// Table returns the named table, or nil if the keyspace or table is unknown.
func (s *SchemaSnapshot) Table(keyspace types.Keyspace, table types.TableName) *TableMetadata {
	ks := s.keyspaces[keyspace]
	if ks == nil {
		return nil
	}
	return ks.Table(table)
}

// UserType returns the named user type, or nil if the keyspace or type is
// unknown.
func (s *SchemaSnapshot) UserType(keyspace types.Keyspace, name types.TypeName) *UserType {
	ks := s.keyspaces[keyspace]
	if ks == nil {
		return nil
	}
	return ks.UserType(name)
}

// TableKeyColumns returns the partition key column names of a table, falling
// back to the recorded or synthesized key aliases when the table's columns
// predate per-column key metadata. Nil if the keyspace or table is unknown.
func (s *SchemaSnapshot) TableKeyColumns(keyspace types.Keyspace, table types.TableName) []string {
	t := s.Table(keyspace, table)
	if t == nil {
		return nil
	}
	if len(t.PartitionKey()) > 0 {
		names := make([]string, 0, len(t.PartitionKey()))
		for _, col := range t.PartitionKey() {
			names = append(names, col.Name())
		}
		return names
	}
	return t.KeyAliases(s.parser)
}
