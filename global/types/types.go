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

package types

// Keyspace is the name of a Cassandra keyspace as received from the server.
// Names are case-sensitive.
type Keyspace string

// TableName is the name of a table (a.k.a. column family) within a keyspace.
type TableName string

// ColumnName is the name of a column within a table.
type ColumnName string

// TypeName is the name of a user-defined type within a keyspace.
type TypeName string

// ColumnKind classifies a column's role within its table.
type ColumnKind int

const (
	ColumnKindRegular ColumnKind = iota
	ColumnKindPartitionKey
	ColumnKindClusteringKey
	ColumnKindStatic
)

func (k ColumnKind) String() string {
	switch k {
	case ColumnKindPartitionKey:
		return "partition_key"
	case ColumnKindClusteringKey:
		return "clustering_key"
	case ColumnKindStatic:
		return "static"
	default:
		return "regular"
	}
}

// ParseColumnKind maps the 'type' column of system.schema_columns to a
// ColumnKind. Unknown values are treated as regular columns.
func ParseColumnKind(s string) ColumnKind {
	switch s {
	case "partition_key":
		return ColumnKindPartitionKey
	case "clustering_key":
		return ColumnKindClusteringKey
	case "static":
		return ColumnKindStatic
	default:
		return ColumnKindRegular
	}
}
