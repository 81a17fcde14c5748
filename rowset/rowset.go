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

// Package rowset presents decoded query results to the schema catalog: a
// ResultSet of Rows with by-name access to Values that remain views over the
// frame's backing storage.
package rowset

import (
	"github.com/datastax/go-cassandra-native-protocol/message"
	"github.com/datastax/go-cassandra-native-protocol/primitive"
)

// ResultSet wraps the rows of a query result for by-name column access.
type ResultSet struct {
	version primitive.ProtocolVersion
	columns []*message.ColumnMetadata
	byName  map[string]int
	rows    []message.Row
}

// FromRowsResult builds a ResultSet from a decoded RowsResult message.
func FromRowsResult(version primitive.ProtocolVersion, result *message.RowsResult) *ResultSet {
	var columns []*message.ColumnMetadata
	if result.Metadata != nil {
		columns = result.Metadata.Columns
	}
	return NewResultSet(version, columns, result.Data)
}

// NewResultSet builds a ResultSet directly from column metadata and row data.
func NewResultSet(version primitive.ProtocolVersion, columns []*message.ColumnMetadata, rows []message.Row) *ResultSet {
	byName := make(map[string]int, len(columns))
	for i, col := range columns {
		byName[col.Name] = i
	}
	return &ResultSet{
		version: version,
		columns: columns,
		byName:  byName,
		rows:    rows,
	}
}

func (rs *ResultSet) Version() primitive.ProtocolVersion {
	return rs.version
}

func (rs *ResultSet) Len() int {
	return len(rs.rows)
}

func (rs *ResultSet) Row(i int) Row {
	return Row{rs: rs, cells: rs.rows[i]}
}

// Row is one row of a ResultSet.
type Row struct {
	rs    *ResultSet
	cells message.Row
}

// ByName returns the value of the named column, or nil if the result set has
// no such column. A present column with a NULL cell returns a null Value, not
// nil.
func (r Row) ByName(name string) *Value {
	i, ok := r.rs.byName[name]
	if !ok || i >= len(r.cells) {
		return nil
	}
	return &Value{
		Type:    r.rs.columns[i].Type,
		version: r.rs.version,
		raw:     r.cells[i],
	}
}

// StringByName decodes the named column as a string. The second return is
// false if the column is absent or NULL.
func (r Row) StringByName(name string) (string, bool) {
	v := r.ByName(name)
	if v == nil || v.IsNull() {
		return "", false
	}
	return v.AsString(), true
}

// BoolByName decodes the named column as a boolean. The second return is
// false if the column is absent or NULL.
func (r Row) BoolByName(name string) (bool, bool) {
	v := r.ByName(name)
	if v == nil || v.IsNull() {
		return false, false
	}
	return v.AsBool(), true
}

// IntByName decodes the named column as an int32. The second return is false
// if the column is absent or NULL.
func (r Row) IntByName(name string) (int32, bool) {
	v := r.ByName(name)
	if v == nil || v.IsNull() {
		return 0, false
	}
	return v.AsInt32(), true
}
