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

// Package typeparser parses Cassandra marshal class strings, as found in the
// 'validator', 'key_validator' and 'comparator' columns of the pre-3.0 system
// schema tables, into native-protocol data types.
package typeparser

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/datastax/go-cassandra-native-protocol/datatype"
	lru "github.com/hashicorp/golang-lru"
)

const (
	marshalPrefix      = "org.apache.cassandra.db.marshal."
	compositeClass     = marshalPrefix + "CompositeType"
	reversedClass      = marshalPrefix + "ReversedType"
	frozenClass        = marshalPrefix + "FrozenType"
	listClass          = marshalPrefix + "ListType"
	setClass           = marshalPrefix + "SetType"
	mapClass           = marshalPrefix + "MapType"
	collectionClass    = marshalPrefix + "ColumnToCollectionType"
	parseCacheCapacity = 512
)

// scalarClasses maps non-parameterized marshal classes to their data types.
var scalarClasses = map[string]datatype.DataType{
	marshalPrefix + "AsciiType":         datatype.Ascii,
	marshalPrefix + "BooleanType":       datatype.Boolean,
	marshalPrefix + "ByteType":          datatype.Tinyint,
	marshalPrefix + "BytesType":         datatype.Blob,
	marshalPrefix + "CounterColumnType": datatype.Counter,
	marshalPrefix + "DateType":          datatype.Timestamp,
	marshalPrefix + "DecimalType":       datatype.Decimal,
	marshalPrefix + "DoubleType":        datatype.Double,
	marshalPrefix + "FloatType":         datatype.Float,
	marshalPrefix + "InetAddressType":   datatype.Inet,
	marshalPrefix + "Int32Type":         datatype.Int,
	marshalPrefix + "IntegerType":       datatype.Varint,
	marshalPrefix + "LexicalUUIDType":   datatype.Uuid,
	marshalPrefix + "LongType":          datatype.Bigint,
	marshalPrefix + "ShortType":         datatype.Smallint,
	marshalPrefix + "SimpleDateType":    datatype.Date,
	marshalPrefix + "TimeType":          datatype.Time,
	marshalPrefix + "TimeUUIDType":      datatype.Timeuuid,
	marshalPrefix + "TimestampType":     datatype.Timestamp,
	marshalPrefix + "UTF8Type":          datatype.Varchar,
	marshalPrefix + "UUIDType":          datatype.Uuid,
}

// ParseResult is the outcome of parsing a (possibly composite) comparator or
// key validator string.
type ParseResult struct {
	// IsComposite reports whether the top-level class was a CompositeType.
	IsComposite bool
	// Types holds the component types in declaration order. For a
	// non-composite string this is a single element.
	Types []datatype.DataType
	// ReversedFlags marks, per component, whether it was wrapped in a
	// ReversedType (descending clustering order).
	ReversedFlags []bool
	// Collections maps collection column names to their types when the
	// composite carries a trailing ColumnToCollectionType component. That
	// component is not included in Types.
	Collections map[string]datatype.DataType
}

// Parser converts marshal class strings into data types. Parsed scalar and
// collection types are memoized since the same validator strings repeat for
// every column of every table in a schema refresh.
type Parser struct {
	cache *lru.Cache
}

func NewParser() *Parser {
	cache, err := lru.New(parseCacheCapacity)
	if err != nil {
		// only reachable with a non-positive capacity
		panic(err)
	}
	return &Parser{cache: cache}
}

// Parse parses a single (non-composite) marshal class string. ReversedType
// and FrozenType wrappers are unwrapped. Unknown classes come back as custom
// types rather than errors so that unresolved validators degrade to opaque
// data types downstream.
func (p *Parser) Parse(s string) (datatype.DataType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty type string")
	}
	if cached, ok := p.cache.Get(s); ok {
		return cached.(datatype.DataType), nil
	}
	dt, err := parseOne(s)
	if err != nil {
		return nil, err
	}
	p.cache.Add(s, dt)
	return dt, nil
}

// ParseWithComposite parses a comparator or key validator string that may be
// a CompositeType of several component types.
func (p *Parser) ParseWithComposite(s string) (*ParseResult, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty type string")
	}

	class, params, err := splitClass(s)
	if err != nil {
		return nil, err
	}

	if class != compositeClass {
		dt, err := p.Parse(s)
		if err != nil {
			return nil, err
		}
		return &ParseResult{
			IsComposite:   false,
			Types:         []datatype.DataType{dt},
			ReversedFlags: []bool{IsReversed(s)},
		}, nil
	}

	result := &ParseResult{IsComposite: true}
	for _, param := range params {
		param = strings.TrimSpace(param)
		paramClass, collectionParams, err := splitClass(param)
		if err != nil {
			return nil, err
		}
		if paramClass == collectionClass {
			collections, err := parseCollections(collectionParams)
			if err != nil {
				return nil, err
			}
			result.Collections = collections
			continue
		}
		dt, err := p.Parse(param)
		if err != nil {
			return nil, err
		}
		result.Types = append(result.Types, dt)
		result.ReversedFlags = append(result.ReversedFlags, IsReversed(param))
	}
	return result, nil
}

// IsReversed reports whether the top-level marshal class is a ReversedType
// wrapper, i.e. the column has a descending clustering order.
func IsReversed(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), reversedClass+"(")
}

func parseOne(s string) (datatype.DataType, error) {
	s = strings.TrimSpace(s)
	class, params, err := splitClass(s)
	if err != nil {
		return nil, err
	}

	if dt, ok := scalarClasses[class]; ok {
		return dt, nil
	}

	switch class {
	case reversedClass, frozenClass:
		if len(params) != 1 {
			return nil, fmt.Errorf("%s expects one parameter, got %d", class, len(params))
		}
		return parseOne(params[0])
	case listClass:
		if len(params) != 1 {
			return nil, fmt.Errorf("ListType expects one parameter, got %d", len(params))
		}
		elem, err := parseOne(params[0])
		if err != nil {
			return nil, err
		}
		return datatype.NewListType(elem), nil
	case setClass:
		if len(params) != 1 {
			return nil, fmt.Errorf("SetType expects one parameter, got %d", len(params))
		}
		elem, err := parseOne(params[0])
		if err != nil {
			return nil, err
		}
		return datatype.NewSetType(elem), nil
	case mapClass:
		if len(params) != 2 {
			return nil, fmt.Errorf("MapType expects two parameters, got %d", len(params))
		}
		key, err := parseOne(params[0])
		if err != nil {
			return nil, err
		}
		value, err := parseOne(params[1])
		if err != nil {
			return nil, err
		}
		return datatype.NewMapType(key, value), nil
	}

	// UserType, TupleType and genuinely custom comparators are carried
	// opaquely; the catalog never needs to look inside them.
	return datatype.NewCustomType(s), nil
}

// parseCollections parses ColumnToCollectionType parameters, each of the form
// <hex column name>:<collection type>.
func parseCollections(params []string) (map[string]datatype.DataType, error) {
	collections := make(map[string]datatype.DataType, len(params))
	for _, param := range params {
		sep := strings.Index(param, ":")
		if sep < 0 {
			return nil, fmt.Errorf("malformed collection entry %q", param)
		}
		name, err := hex.DecodeString(strings.TrimSpace(param[:sep]))
		if err != nil {
			return nil, fmt.Errorf("malformed collection column name in %q: %w", param, err)
		}
		dt, err := parseOne(param[sep+1:])
		if err != nil {
			return nil, err
		}
		collections[string(name)] = dt
	}
	return collections, nil
}

// splitClass splits "pkg.Class(a,b(c),d)" into the class name and its
// top-level parameters. A class without parentheses has nil parameters.
func splitClass(s string) (string, []string, error) {
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return s, nil, nil
	}
	if !strings.HasSuffix(s, ")") {
		return "", nil, fmt.Errorf("unbalanced parentheses in type string %q", s)
	}
	class := s[:open]
	inner := s[open+1 : len(s)-1]

	var params []string
	depth := 0
	start := 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return "", nil, fmt.Errorf("unbalanced parentheses in type string %q", s)
			}
		case ',':
			if depth == 0 {
				params = append(params, inner[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return "", nil, fmt.Errorf("unbalanced parentheses in type string %q", s)
	}
	if start < len(inner) || len(params) > 0 {
		params = append(params, inner[start:])
	}
	return class, params, nil
}
