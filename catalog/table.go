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
	"strconv"

	"github.com/datastax/go-cassandra-native-protocol/datatype"
	"github.com/datastax/go-cassandra-native-protocol/primitive"
	"go.uber.org/zap"

	"github.com/rowkeylabs/cassandra-schema-catalog/global/types"
	"github.com/rowkeylabs/cassandra-schema-catalog/rowset"
	"github.com/rowkeylabs/cassandra-schema-catalog/typeparser"
)

// TableMetadata describes one table: its schema attributes, its columns in
// final presentation order, and the derived partition and clustering keys.
type TableMetadata struct {
	metadataBase
	columns       []*ColumnMetadata
	columnsByName map[types.ColumnName]*ColumnMetadata
	partitionKey  []*ColumnMetadata
	clusteringKey []*ColumnMetadata
}

func newTable(name string) *TableMetadata {
	return &TableMetadata{
		metadataBase:  newMetadataBase(name),
		columnsByName: make(map[types.ColumnName]*ColumnMetadata),
	}
}

func newTableFromRow(name string, version primitive.ProtocolVersion, row rowset.Row, logger *zap.Logger) *TableMetadata {
	table := newTable(name)

	table.addField(row, "keyspace_name")
	table.addField(row, "columnfamily_name")
	table.addField(row, "bloom_filter_fp_chance")
	table.addField(row, "caching")
	table.addField(row, "cf_id")
	table.addJSONListField(version, row, "column_aliases", logger)
	table.addField(row, "comment")
	table.addField(row, "compaction_strategy_class")
	table.addJSONMapField(version, row, "compaction_strategy_options", logger)
	table.addField(row, "comparator")
	table.addJSONMapField(version, row, "compression_parameters", logger)
	table.addField(row, "default_time_to_live")
	table.addField(row, "default_validator")
	table.addField(row, "dropped_columns")
	table.addField(row, "gc_grace_seconds")
	table.addField(row, "id")
	table.addField(row, "index_interval")
	table.addField(row, "is_dense")
	table.addJSONListField(version, row, "key_aliases", logger)
	table.addField(row, "key_validator")
	table.addField(row, "local_read_repair_chance")
	table.addField(row, "max_compaction_threshold")
	table.addField(row, "max_index_interval")
	table.addField(row, "memtable_flush_period_in_ms")
	table.addField(row, "min_compaction_threshold")
	table.addField(row, "min_index_interval")
	table.addField(row, "populate_io_cache_on_flush")
	table.addField(row, "read_repair_chance")
	table.addField(row, "replicate_on_write")
	table.addField(row, "speculative_retry")
	table.addField(row, "subcomparator")
	table.addField(row, "type")
	table.addField(row, "value_alias")

	return table
}

// cloneWithoutColumns copies the table's schema attributes but none of its
// columns, ready for a columns-only refresh.
func (t *TableMetadata) cloneWithoutColumns() *TableMetadata {
	return &TableMetadata{
		metadataBase:  metadataBase{name: t.name, fields: t.cloneFields()},
		columnsByName: make(map[types.ColumnName]*ColumnMetadata),
	}
}

// Column returns the named column, or nil.
func (t *TableMetadata) Column(name types.ColumnName) *ColumnMetadata {
	return t.columnsByName[name]
}

// Columns returns the columns in presentation order: partition key, then
// clustering key, then the remaining columns.
func (t *TableMetadata) Columns() []*ColumnMetadata {
	return t.columns
}

func (t *TableMetadata) ColumnAt(i int) (*ColumnMetadata, error) {
	if i < 0 || i >= len(t.columns) {
		return nil, ErrIndexOutOfBounds
	}
	return t.columns[i], nil
}

func (t *TableMetadata) PartitionKey() []*ColumnMetadata {
	return t.partitionKey
}

func (t *TableMetadata) PartitionKeyAt(i int) (*ColumnMetadata, error) {
	if i < 0 || i >= len(t.partitionKey) {
		return nil, ErrIndexOutOfBounds
	}
	return t.partitionKey[i], nil
}

func (t *TableMetadata) ClusteringKey() []*ColumnMetadata {
	return t.clusteringKey
}

func (t *TableMetadata) ClusteringKeyAt(i int) (*ColumnMetadata, error) {
	if i < 0 || i >= len(t.clusteringKey) {
		return nil, ErrIndexOutOfBounds
	}
	return t.clusteringKey[i], nil
}

func (t *TableMetadata) addColumn(col *ColumnMetadata) {
	t.columns = append(t.columns, col)
	t.columnsByName[types.ColumnName(col.Name())] = col
}

// KeyAliases returns the partition key column names for pre-2.0 schemas: the
// recorded key_aliases, padded with synthesized names for any key_validator
// component beyond the alias list.
func (t *TableMetadata) KeyAliases(parser *typeparser.Parser) []string {
	var aliases []string
	if value := t.Field("key_aliases"); value != nil {
		if items, ok := value.AsStringList(); ok {
			aliases = items
		}
	}

	keyValidator := t.StringField("key_validator")
	if keyValidator == "" {
		return aliases
	}
	result, err := parser.ParseWithComposite(keyValidator)
	if err != nil {
		return aliases
	}
	for i := len(aliases); i < len(result.Types); i++ {
		aliases = append(aliases, partitionKeyAlias(nil, i))
	}
	return aliases
}

// BuildKeysAndSort derives the partition and clustering keys once all column
// rows have been added, and reorders the columns into presentation order. For
// servers before 2.0 the key components are reconstructed from the table's
// key_validator and comparator instead of from column rows.
func (t *TableMetadata) BuildKeysAndSort(cassandraVersion types.VersionNumber, parser *typeparser.Parser, logger *zap.Logger) {
	if cassandraVersion.Major >= 2 {
		t.buildKeys()
	} else {
		t.buildLegacyKeys(parser, logger)
	}
}

func (t *TableMetadata) buildKeys() {
	partitionCount := 0
	clusteringCount := 0
	for _, col := range t.columns {
		switch col.kind {
		case types.ColumnKindPartitionKey:
			partitionCount++
		case types.ColumnKindClusteringKey:
			clusteringCount++
		}
	}

	t.partitionKey = make([]*ColumnMetadata, partitionCount)
	t.clusteringKey = make([]*ColumnMetadata, clusteringCount)
	for _, col := range t.columns {
		switch col.kind {
		case types.ColumnKindPartitionKey:
			if col.position >= 0 && int(col.position) < partitionCount {
				t.partitionKey[col.position] = col
			}
		case types.ColumnKindClusteringKey:
			if col.position >= 0 && int(col.position) < clusteringCount {
				t.clusteringKey[col.position] = col
			}
		}
	}

	sort.SliceStable(t.columns, func(i, j int) bool {
		a, b := t.columns[i], t.columns[j]
		ra, rb := keyRank(a.kind), keyRank(b.kind)
		if ra != rb {
			return ra < rb
		}
		if ra < 2 {
			return a.position < b.position
		}
		return false
	})
}

// keyRank orders partition key columns before clustering key columns before
// everything else.
func keyRank(kind types.ColumnKind) int {
	switch kind {
	case types.ColumnKindPartitionKey:
		return 0
	case types.ColumnKindClusteringKey:
		return 1
	default:
		return 2
	}
}

// buildLegacyKeys reconstructs the keys of a pre-2.0 table. The partition key
// comes from the key_validator components named by key_aliases, the
// clustering key from the comparator components named by column_aliases, with
// names synthesized wherever the alias lists fall short.
func (t *TableMetadata) buildLegacyKeys(parser *typeparser.Parser, logger *zap.Logger) {
	var keyAliases []string
	if value := t.Field("key_aliases"); value != nil {
		keyAliases, _ = value.AsStringList()
	}
	keyValidator := &typeparser.ParseResult{}
	if class := t.StringField("key_validator"); class != "" {
		parsed, err := parser.ParseWithComposite(class)
		if err != nil {
			logger.Error("unable to parse key validator",
				zap.String("table", t.name),
				zap.String("keyValidator", class),
				zap.Error(err))
		} else {
			keyValidator = parsed
		}
	}

	t.partitionKey = make([]*ColumnMetadata, 0, len(keyValidator.Types))
	for i, dt := range keyValidator.Types {
		t.partitionKey = append(t.partitionKey, newKeyColumn(
			partitionKeyAlias(keyAliases, i),
			int32(i), types.ColumnKindPartitionKey, dt, false))
	}

	var columnAliases []string
	if value := t.Field("column_aliases"); value != nil {
		columnAliases, _ = value.AsStringList()
	}
	comparator := &typeparser.ParseResult{}
	if class := t.StringField("comparator"); class != "" {
		parsed, err := parser.ParseWithComposite(class)
		if err != nil {
			logger.Error("unable to parse comparator",
				zap.String("table", t.name),
				zap.String("comparator", class),
				zap.Error(err))
		} else {
			comparator = parsed
		}
	}

	size := len(comparator.Types)
	if comparator.IsComposite {
		// a composite comparator's trailing text component is the cell
		// name marker of a sparse table, not a clustering column
		if size > 0 && (len(comparator.Collections) > 0 ||
			(len(columnAliases) == size-1 && isTextType(comparator.Types[size-1]))) {
			size--
		}
	} else if len(columnAliases) == 0 && len(t.columns) > 0 {
		// a bare comparator with no aliases and regular columns present
		// names cells, it does not cluster rows
		size = 0
	}

	t.clusteringKey = make([]*ColumnMetadata, 0, size)
	for i := 0; i < size; i++ {
		reversed := i < len(comparator.ReversedFlags) && comparator.ReversedFlags[i]
		t.clusteringKey = append(t.clusteringKey, newKeyColumn(
			clusteringKeyAlias(columnAliases, i),
			int32(i), types.ColumnKindClusteringKey, comparator.Types[i], reversed))
	}

	ordered := make([]*ColumnMetadata, 0, len(t.partitionKey)+len(t.clusteringKey)+len(t.columns))
	ordered = append(ordered, t.partitionKey...)
	ordered = append(ordered, t.clusteringKey...)
	ordered = append(ordered, t.columns...)
	t.columns = ordered
	for _, col := range t.partitionKey {
		t.columnsByName[types.ColumnName(col.Name())] = col
	}
	for _, col := range t.clusteringKey {
		t.columnsByName[types.ColumnName(col.Name())] = col
	}
}

func isTextType(dt datatype.DataType) bool {
	return dt != nil && dt.GetDataTypeCode() == primitive.DataTypeCodeVarchar
}

// partitionKeyAlias names the i-th partition key component: the recorded
// alias when one exists, otherwise "key", "key2", "key3", ...
func partitionKeyAlias(aliases []string, i int) string {
	return keyAlias(aliases, i, "key")
}

// clusteringKeyAlias names the i-th clustering key component: the recorded
// alias when one exists, otherwise "column", "column2", "column3", ...
func clusteringKeyAlias(aliases []string, i int) string {
	return keyAlias(aliases, i, "column")
}

func keyAlias(aliases []string, i int, base string) string {
	if i < len(aliases) {
		return aliases[i]
	}
	if i == 0 {
		return base
	}
	return base + strconv.Itoa(i+1)
}
