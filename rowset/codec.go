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
	"fmt"

	"github.com/datastax/go-cassandra-native-protocol/datatype"
	"github.com/datastax/go-cassandra-native-protocol/primitive"
)

// Collection counts and element lengths are [short] before protocol v3 and
// [int] from v3 on.

func collectionSizeWidth(version primitive.ProtocolVersion) int {
	if version >= primitive.ProtocolVersion3 {
		return 4
	}
	return 2
}

func readCollectionSize(version primitive.ProtocolVersion, buf []byte) (int, []byte, error) {
	width := collectionSizeWidth(version)
	if len(buf) < width {
		return 0, nil, fmt.Errorf("truncated collection: want %d size bytes, have %d", width, len(buf))
	}
	if width == 4 {
		return int(int32(binary.BigEndian.Uint32(buf))), buf[4:], nil
	}
	return int(binary.BigEndian.Uint16(buf)), buf[2:], nil
}

func readCollectionElement(version primitive.ProtocolVersion, buf []byte) ([]byte, []byte, error) {
	size, rest, err := readCollectionSize(version, buf)
	if err != nil {
		return nil, nil, err
	}
	if size < 0 {
		// null element
		return nil, rest, nil
	}
	if len(rest) < size {
		return nil, nil, fmt.Errorf("truncated collection element: want %d bytes, have %d", size, len(rest))
	}
	return rest[:size:size], rest[size:], nil
}

func appendCollectionSize(version primitive.ProtocolVersion, buf []byte, n int) []byte {
	if collectionSizeWidth(version) == 4 {
		return binary.BigEndian.AppendUint32(buf, uint32(n))
	}
	return binary.BigEndian.AppendUint16(buf, uint16(n))
}

// EncodeTextList encodes items as a list<text> collection value at the given
// protocol version.
func EncodeTextList(version primitive.ProtocolVersion, items []string) []byte {
	buf := appendCollectionSize(version, nil, len(items))
	for _, item := range items {
		buf = appendCollectionSize(version, buf, len(item))
		buf = append(buf, item...)
	}
	return buf
}

// EncodeTextMap encodes pairs as a map<text,text> collection value at the
// given protocol version, preserving the order of pairs.
func EncodeTextMap(version primitive.ProtocolVersion, pairs []TextPair) []byte {
	buf := appendCollectionSize(version, nil, len(pairs))
	for _, pair := range pairs {
		buf = appendCollectionSize(version, buf, len(pair.Key))
		buf = append(buf, pair.Key...)
		buf = appendCollectionSize(version, buf, len(pair.Value))
		buf = append(buf, pair.Value...)
	}
	return buf
}

// TextPair is one entry of an encoded map<text,text>.
type TextPair struct {
	Key   string
	Value string
}

// TextListValue builds a typed list<text> Value over freshly encoded bytes.
func TextListValue(version primitive.ProtocolVersion, items []string) *Value {
	return NewValue(datatype.NewListType(datatype.Varchar), version, EncodeTextList(version, items))
}

// TextMapValue builds a typed map<text,text> Value over freshly encoded
// bytes.
func TextMapValue(version primitive.ProtocolVersion, pairs []TextPair) *Value {
	return NewValue(datatype.NewMapType(datatype.Varchar, datatype.Varchar), version, EncodeTextMap(version, pairs))
}
