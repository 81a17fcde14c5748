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
package rowset

import (
	"testing"

	"github.com/datastax/go-cassandra-native-protocol/datatype"
	"github.com/datastax/go-cassandra-native-protocol/message"
	"github.com/datastax/go-cassandra-native-protocol/primitive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResultSet(version primitive.ProtocolVersion) *ResultSet {
	columns := []*message.ColumnMetadata{
		{Keyspace: "system", Table: "local", Name: "name", Type: datatype.Varchar},
		{Keyspace: "system", Table: "local", Name: "enabled", Type: datatype.Boolean},
		{Keyspace: "system", Table: "local", Name: "count", Type: datatype.Int},
		{Keyspace: "system", Table: "local", Name: "missing_value", Type: datatype.Varchar},
	}
	rows := []message.Row{
		{[]byte("first"), []byte{1}, []byte{0, 0, 0, 42}, nil},
	}
	return NewResultSet(version, columns, rows)
}

func TestRowByName(t *testing.T) {
	rs := testResultSet(primitive.ProtocolVersion4)
	require.Equal(t, 1, rs.Len())
	row := rs.Row(0)

	name, ok := row.StringByName("name")
	require.True(t, ok)
	assert.Equal(t, "first", name)

	enabled, ok := row.BoolByName("enabled")
	require.True(t, ok)
	assert.True(t, enabled)

	count, ok := row.IntByName("count")
	require.True(t, ok)
	assert.Equal(t, int32(42), count)
}

func TestRowByNameAbsentColumn(t *testing.T) {
	row := testResultSet(primitive.ProtocolVersion4).Row(0)

	assert.Nil(t, row.ByName("no_such_column"))
	_, ok := row.StringByName("no_such_column")
	assert.False(t, ok)
}

func TestRowByNameNullCell(t *testing.T) {
	row := testResultSet(primitive.ProtocolVersion4).Row(0)

	// present column, NULL cell: a null Value, not nil
	value := row.ByName("missing_value")
	require.NotNil(t, value)
	assert.True(t, value.IsNull())
	_, ok := row.StringByName("missing_value")
	assert.False(t, ok)
}

func TestValueWithType(t *testing.T) {
	row := testResultSet(primitive.ProtocolVersion4).Row(0)

	original := row.ByName("count")
	retyped := original.WithType(datatype.Bigint)
	assert.Equal(t, datatype.Bigint, retyped.Type)
	assert.Equal(t, original.Bytes(), retyped.Bytes())
	// the original is untouched
	assert.Equal(t, datatype.Int, original.Type)
}

func TestStringListValue(t *testing.T) {
	for _, version := range []primitive.ProtocolVersion{primitive.ProtocolVersion2, primitive.ProtocolVersion4} {
		value := TextListValue(version, []string{"a", "b", "c"})
		assert.True(t, value.IsStringList())
		assert.False(t, value.IsStringMap())

		items, ok := value.AsStringList()
		require.True(t, ok)
		assert.Equal(t, []string{"a", "b", "c"}, items)
	}
}

func TestStringMapValue(t *testing.T) {
	for _, version := range []primitive.ProtocolVersion{primitive.ProtocolVersion2, primitive.ProtocolVersion4} {
		value := TextMapValue(version, []TextPair{{"k1", "v1"}, {"k2", "v2"}})
		assert.True(t, value.IsStringMap())
		assert.False(t, value.IsStringList())

		members, ok := value.AsStringMap()
		require.True(t, ok)
		assert.Equal(t, map[string]string{"k1": "v1", "k2": "v2"}, members)
	}
}

func TestEmptyList(t *testing.T) {
	value := TextListValue(primitive.ProtocolVersion4, nil)
	assert.False(t, value.IsNull())
	items, ok := value.AsStringList()
	require.True(t, ok)
	assert.Empty(t, items)
}

func TestCollectionIterator(t *testing.T) {
	value := TextListValue(primitive.ProtocolVersion4, []string{"x", "y"})

	it := value.Iterator()
	assert.Equal(t, 2, it.Count())

	var items []string
	for it.Next() {
		items = append(items, it.Value().AsString())
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []string{"x", "y"}, items)
}

func TestMapIteratorAlternatesKeysAndValues(t *testing.T) {
	value := TextMapValue(primitive.ProtocolVersion4, []TextPair{{"k", "v"}})

	it := value.Iterator()
	assert.Equal(t, 2, it.Count())

	require.True(t, it.Next())
	assert.Equal(t, "k", it.Value().AsString())
	require.True(t, it.Next())
	assert.Equal(t, "v", it.Value().AsString())
	assert.False(t, it.Next())
	assert.NoError(t, it.Err())
}

func TestTruncatedCollection(t *testing.T) {
	// count says one element but no element bytes follow
	value := NewValue(datatype.NewListType(datatype.Varchar), primitive.ProtocolVersion4,
		[]byte{0, 0, 0, 1})

	_, ok := value.AsStringList()
	assert.False(t, ok)

	it := value.Iterator()
	assert.False(t, it.Next())
	assert.Error(t, it.Err())
}

func TestCollectionSizeWidthByVersion(t *testing.T) {
	// below protocol v3 sizes are 2 bytes, from v3 they are 4
	v2 := EncodeTextList(primitive.ProtocolVersion2, []string{"a"})
	assert.Equal(t, []byte{0, 1, 0, 1, 'a'}, []byte(v2))

	v4 := EncodeTextList(primitive.ProtocolVersion4, []string{"a"})
	assert.Equal(t, []byte{0, 0, 0, 1, 0, 0, 0, 1, 'a'}, []byte(v4))
}
