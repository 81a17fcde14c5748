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
	"encoding/binary"

	"github.com/datastax/go-cassandra-native-protocol/datatype"
	"github.com/datastax/go-cassandra-native-protocol/message"
	"github.com/datastax/go-cassandra-native-protocol/primitive"
	"go.uber.org/zap"

	"github.com/rowkeylabs/cassandra-schema-catalog/global/types"
	"github.com/rowkeylabs/cassandra-schema-catalog/rowset"
)

const testVersion = primitive.ProtocolVersion4

func newTestMetadata() *Metadata {
	m := NewMetadata(zap.NewNop())
	m.SetCassandraVersion(types.VersionNumber{Major: 2, Minor: 2})
	return m
}

func column(name string, dt datatype.DataType) *message.ColumnMetadata {
	return &message.ColumnMetadata{Keyspace: "system", Table: "schema", Name: name, Type: dt}
}

func textCell(s string) []byte {
	return []byte(s)
}

func boolCell(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}

func intCell(i int32) []byte {
	return binary.BigEndian.AppendUint32(nil, uint32(i))
}

func listCell(items ...string) []byte {
	return rowset.EncodeTextList(testVersion, items)
}

func result(columns []*message.ColumnMetadata, rows ...message.Row) *rowset.ResultSet {
	return rowset.NewResultSet(testVersion, columns, rows)
}

var keyspaceColumns = []*message.ColumnMetadata{
	column("keyspace_name", datatype.Varchar),
	column("durable_writes", datatype.Boolean),
	column("strategy_class", datatype.Varchar),
	column("strategy_options", datatype.Varchar),
}

func keyspaceRow(name, strategyClass, strategyOptions string) message.Row {
	return message.Row{textCell(name), boolCell(true), textCell(strategyClass), textCell(strategyOptions)}
}

func keyspaceResult(names ...string) *rowset.ResultSet {
	rows := make([]message.Row, 0, len(names))
	for _, name := range names {
		rows = append(rows, keyspaceRow(name,
			"org.apache.cassandra.locator.SimpleStrategy",
			`{"replication_factor":"1"}`))
	}
	return result(keyspaceColumns, rows...)
}

var tableColumns = []*message.ColumnMetadata{
	column("keyspace_name", datatype.Varchar),
	column("columnfamily_name", datatype.Varchar),
	column("comment", datatype.Varchar),
	column("comparator", datatype.Varchar),
	column("key_validator", datatype.Varchar),
	column("key_aliases", datatype.Varchar),
	column("column_aliases", datatype.Varchar),
}

type tableRowSpec struct {
	keyspace      string
	table         string
	comparator    string
	keyValidator  string
	keyAliases    string // JSON
	columnAliases string // JSON
}

func tableResult(specs ...tableRowSpec) *rowset.ResultSet {
	rows := make([]message.Row, 0, len(specs))
	for _, spec := range specs {
		rows = append(rows, message.Row{
			textCell(spec.keyspace),
			textCell(spec.table),
			textCell("test table"),
			cellOrNull(spec.comparator),
			cellOrNull(spec.keyValidator),
			cellOrNull(spec.keyAliases),
			cellOrNull(spec.columnAliases),
		})
	}
	return result(tableColumns, rows...)
}

func cellOrNull(s string) []byte {
	if s == "" {
		return nil
	}
	return textCell(s)
}

var columnColumns = []*message.ColumnMetadata{
	column("keyspace_name", datatype.Varchar),
	column("columnfamily_name", datatype.Varchar),
	column("column_name", datatype.Varchar),
	column("type", datatype.Varchar),
	column("component_index", datatype.Int),
	column("validator", datatype.Varchar),
}

type columnRowSpec struct {
	keyspace  string
	table     string
	name      string
	kind      string
	position  int32
	validator string
}

func columnResult(specs ...columnRowSpec) *rowset.ResultSet {
	rows := make([]message.Row, 0, len(specs))
	for _, spec := range specs {
		rows = append(rows, message.Row{
			textCell(spec.keyspace),
			textCell(spec.table),
			textCell(spec.name),
			textCell(spec.kind),
			intCell(spec.position),
			textCell(spec.validator),
		})
	}
	return result(columnColumns, rows...)
}

var functionColumns = []*message.ColumnMetadata{
	column("keyspace_name", datatype.Varchar),
	column("function_name", datatype.Varchar),
	column("signature", datatype.NewListType(datatype.Varchar)),
	column("argument_names", datatype.NewListType(datatype.Varchar)),
	column("argument_types", datatype.NewListType(datatype.Varchar)),
	column("body", datatype.Varchar),
	column("language", datatype.Varchar),
	column("return_type", datatype.Varchar),
	column("called_on_null_input", datatype.Boolean),
}

type functionRowSpec struct {
	keyspace      string
	name          string
	signature     []string
	argumentNames []string
	argumentTypes []string
	returnType    string
}

func functionResult(specs ...functionRowSpec) *rowset.ResultSet {
	rows := make([]message.Row, 0, len(specs))
	for _, spec := range specs {
		rows = append(rows, message.Row{
			textCell(spec.keyspace),
			textCell(spec.name),
			listCell(spec.signature...),
			listCell(spec.argumentNames...),
			listCell(spec.argumentTypes...),
			textCell("return 0;"),
			textCell("java"),
			textCell(spec.returnType),
			boolCell(true),
		})
	}
	return result(functionColumns, rows...)
}

var aggregateColumns = []*message.ColumnMetadata{
	column("keyspace_name", datatype.Varchar),
	column("aggregate_name", datatype.Varchar),
	column("signature", datatype.NewListType(datatype.Varchar)),
	column("argument_types", datatype.NewListType(datatype.Varchar)),
	column("final_func", datatype.Varchar),
	column("initcond", datatype.Blob),
	column("return_type", datatype.Varchar),
	column("state_func", datatype.Varchar),
	column("state_type", datatype.Varchar),
}

type aggregateRowSpec struct {
	keyspace   string
	name       string
	signature  []string
	finalFunc  string
	initCond   []byte
	returnType string
	stateFunc  string
	stateType  string
}

func aggregateResult(specs ...aggregateRowSpec) *rowset.ResultSet {
	rows := make([]message.Row, 0, len(specs))
	for _, spec := range specs {
		rows = append(rows, message.Row{
			textCell(spec.keyspace),
			textCell(spec.name),
			listCell(spec.signature...),
			listCell(spec.signature...),
			cellOrNull(spec.finalFunc),
			spec.initCond,
			textCell(spec.returnType),
			cellOrNull(spec.stateFunc),
			textCell(spec.stateType),
		})
	}
	return result(aggregateColumns, rows...)
}

var userTypeColumns = []*message.ColumnMetadata{
	column("keyspace_name", datatype.Varchar),
	column("type_name", datatype.Varchar),
	column("field_names", datatype.NewListType(datatype.Varchar)),
	column("field_types", datatype.NewListType(datatype.Varchar)),
}

func userTypeResult(keyspace, name string, fieldNames, fieldTypes []string) *rowset.ResultSet {
	return result(userTypeColumns, message.Row{
		textCell(keyspace),
		textCell(name),
		listCell(fieldNames...),
		listCell(fieldTypes...),
	})
}
