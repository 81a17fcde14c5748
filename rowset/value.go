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
	"encoding/binary"

	"github.com/datastax/go-cassandra-native-protocol/datatype"
	"github.com/datastax/go-cassandra-native-protocol/primitive"
)

// Value is a single cell: its declared wire type plus a zero-copy view of the
// encoded bytes.
type Value struct {
	Type    datatype.DataType
	version primitive.ProtocolVersion
	raw     []byte
}

// NewValue builds a Value over encoded bytes.
func NewValue(dt datatype.DataType, version primitive.ProtocolVersion, encoded []byte) *Value {
	return &Value{Type: dt, version: version, raw: encoded}
}

// WithType returns a copy of the value viewed as a different declared type.
// The encoded bytes are shared.
func (v *Value) WithType(dt datatype.DataType) *Value {
	return &Value{Type: dt, version: v.version, raw: v.raw}
}

// IsNull reports whether the cell was NULL or empty on the wire.
func (v *Value) IsNull() bool {
	return len(v.raw) == 0
}

func (v *Value) Size() int {
	return len(v.raw)
}

// Bytes returns the raw encoded bytes. The slice views shared storage and
// must not be modified.
func (v *Value) Bytes() []byte {
	return v.raw
}

func (v *Value) Version() primitive.ProtocolVersion {
	return v.version
}

func (v *Value) AsString() string {
	return string(v.raw)
}

func (v *Value) AsBool() bool {
	return len(v.raw) > 0 && v.raw[0] != 0
}

func (v *Value) AsInt32() int32 {
	if len(v.raw) < 4 {
		return 0
	}
	return int32(binary.BigEndian.Uint32(v.raw))
}

// IsStringList reports whether the declared type is a list or set with a
// textual element type.
func (v *Value) IsStringList() bool {
	switch t := v.Type.(type) {
	case datatype.ListType:
		return isTextual(t.GetElementType())
	case datatype.SetType:
		return isTextual(t.GetElementType())
	default:
		return false
	}
}

// IsStringMap reports whether the declared type is a map from text to text.
func (v *Value) IsStringMap() bool {
	t, ok := v.Type.(datatype.MapType)
	return ok && isTextual(t.GetKeyType()) && isTextual(t.GetValueType())
}

func isTextual(dt datatype.DataType) bool {
	code := dt.GetDataTypeCode()
	return code == primitive.DataTypeCodeVarchar || code == primitive.DataTypeCodeAscii
}

// AsStringList decodes a list<text> or set<text> value into its elements in
// wire order. The second return is false if the value is null or not a
// well-formed collection.
func (v *Value) AsStringList() ([]string, bool) {
	if v.IsNull() {
		return nil, false
	}
	it := v.Iterator()
	items := make([]string, 0, it.Count())
	for it.Next() {
		items = append(items, it.Value().AsString())
	}
	if it.Err() != nil {
		return nil, false
	}
	return items, true
}

// AsStringMap decodes a map<text,text> value. The second return is false if
// the value is null or not a well-formed map.
func (v *Value) AsStringMap() (map[string]string, bool) {
	if v.IsNull() {
		return nil, false
	}
	buf := v.raw
	count, buf, err := readCollectionSize(v.version, buf)
	if err != nil {
		return nil, false
	}
	result := make(map[string]string, count)
	for i := 0; i < count; i++ {
		var key, value []byte
		key, buf, err = readCollectionElement(v.version, buf)
		if err != nil {
			return nil, false
		}
		value, buf, err = readCollectionElement(v.version, buf)
		if err != nil {
			return nil, false
		}
		result[string(key)] = string(value)
	}
	return result, true
}

// Iterator returns an ordered iterator over the elements of a collection
// value. For maps it yields keys and values alternately.
func (v *Value) Iterator() *CollectionIterator {
	it := &CollectionIterator{value: v}
	if v.IsNull() {
		return it
	}
	count, rest, err := readCollectionSize(v.version, v.raw)
	if err != nil {
		it.err = err
		return it
	}
	if _, ok := v.Type.(datatype.MapType); ok {
		count *= 2
	}
	it.remaining = count
	it.buf = rest
	return it
}

// CollectionIterator walks the encoded elements of a collection value.
type CollectionIterator struct {
	value     *Value
	buf       []byte
	remaining int
	current   *Value
	err       error
}

// Count returns the number of elements remaining (keys and values counted
// separately for maps).
func (it *CollectionIterator) Count() int {
	return it.remaining
}

func (it *CollectionIterator) Next() bool {
	if it.err != nil || it.remaining == 0 {
		return false
	}
	raw, rest, err := readCollectionElement(it.value.version, it.buf)
	if err != nil {
		it.err = err
		return false
	}
	it.buf = rest
	it.remaining--
	it.current = &Value{
		Type:    elementType(it.value.Type),
		version: it.value.version,
		raw:     raw,
	}
	return true
}

// Value returns the element produced by the last successful Next.
func (it *CollectionIterator) Value() *Value {
	return it.current
}

func (it *CollectionIterator) Err() error {
	return it.err
}

func elementType(dt datatype.DataType) datatype.DataType {
	switch t := dt.(type) {
	case datatype.ListType:
		return t.GetElementType()
	case datatype.SetType:
		return t.GetElementType()
	default:
		// map iteration alternates key/value; callers that care inspect
		// the map type directly
		return datatype.Varchar
	}
}
