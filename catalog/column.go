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
	"github.com/datastax/go-cassandra-native-protocol/datatype"
	"github.com/datastax/go-cassandra-native-protocol/primitive"
	"go.uber.org/zap"

	"github.com/rowkeylabs/cassandra-schema-catalog/global/types"
	"github.com/rowkeylabs/cassandra-schema-catalog/rowset"
	"github.com/rowkeylabs/cassandra-schema-catalog/typeparser"
)

// ColumnMetadata describes one column of a table: its role in the primary
// key, its position within that key, and its decoded data type.
type ColumnMetadata struct {
	metadataBase
	kind       types.ColumnKind
	position   int32
	dataType   datatype.DataType
	isReversed bool
}

func newColumn(name string) *ColumnMetadata {
	return &ColumnMetadata{metadataBase: newMetadataBase(name)}
}

// newKeyColumn builds a synthetic key column for pre-2.0 schemas where key
// components live in the comparator rather than in column rows.
func newKeyColumn(name string, position int32, kind types.ColumnKind, dt datatype.DataType, reversed bool) *ColumnMetadata {
	return &ColumnMetadata{
		metadataBase: newMetadataBase(name),
		kind:         kind,
		position:     position,
		dataType:     dt,
		isReversed:   reversed,
	}
}

func newColumnFromRow(name string, version primitive.ProtocolVersion, parser *typeparser.Parser, row rowset.Row, logger *zap.Logger) *ColumnMetadata {
	col := newColumn(name)

	col.addField(row, "keyspace_name")
	col.addField(row, "columnfamily_name")
	col.addField(row, "column_name")

	if kind := col.addField(row, "type"); kind != nil {
		col.kind = types.ParseColumnKind(kind.AsString())
	}

	// a NULL component_index means the sole component, position 0
	if index := col.addField(row, "component_index"); index != nil {
		col.position = index.AsInt32()
	}

	if validator := col.addField(row, "validator"); validator != nil {
		validatorClass := validator.AsString()
		dt, err := parser.Parse(validatorClass)
		if err != nil {
			logger.Error("unable to parse column validator",
				zap.String("column", name),
				zap.String("validator", validatorClass),
				zap.Error(err))
		} else {
			col.dataType = dt
			col.isReversed = typeparser.IsReversed(validatorClass)
		}
	}

	col.addField(row, "index_name")
	col.addJSONMapField(version, row, "index_options", logger)
	col.addField(row, "index_type")

	return col
}

func (c *ColumnMetadata) Kind() types.ColumnKind {
	return c.kind
}

// Position returns the column's zero-based position within its key. Regular
// columns report 0.
func (c *ColumnMetadata) Position() int32 {
	return c.position
}

func (c *ColumnMetadata) DataType() datatype.DataType {
	return c.dataType
}

// IsReversed reports whether the column clusters in descending order.
func (c *ColumnMetadata) IsReversed() bool {
	return c.isReversed
}
