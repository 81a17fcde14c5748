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
	"encoding/json"
	"errors"
	"sort"

	"github.com/datastax/go-cassandra-native-protocol/primitive"
	"go.uber.org/zap"

	"github.com/rowkeylabs/cassandra-schema-catalog/rowset"
)

// MetadataField is one named schema attribute of an entity. A field present
// in the source row but NULL on the wire has a nil Value (presence-only).
type MetadataField struct {
	Name  string
	Value *rowset.Value
}

// metadataBase carries the name and generic field map shared by every schema
// entity.
type metadataBase struct {
	name   string
	fields map[string]MetadataField
}

func newMetadataBase(name string) metadataBase {
	return metadataBase{name: name, fields: make(map[string]MetadataField)}
}

func (m *metadataBase) Name() string {
	return m.name
}

// Field returns the value of a named field, or nil if the field is unset or
// presence-only.
func (m *metadataBase) Field(name string) *rowset.Value {
	field, ok := m.fields[name]
	if !ok {
		return nil
	}
	return field.Value
}

// StringField returns the string decode of a named field, or "" if unset.
func (m *metadataBase) StringField(name string) string {
	value := m.Field(name)
	if value == nil {
		return ""
	}
	return value.AsString()
}

// Fields returns all fields sorted by name.
func (m *metadataBase) Fields() []MetadataField {
	fields := make([]MetadataField, 0, len(m.fields))
	for _, field := range m.fields {
		fields = append(fields, field)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	return fields
}

func (m *metadataBase) cloneFields() map[string]MetadataField {
	fields := make(map[string]MetadataField, len(m.fields))
	for name, field := range m.fields {
		fields[name] = field
	}
	return fields
}

// addField captures the named column from the row as a field. Returns the
// value (nil when the column is absent or NULL) so callers can branch on the
// content without a second lookup.
func (m *metadataBase) addField(row rowset.Row, name string) *rowset.Value {
	value := row.ByName(name)
	if value == nil {
		return nil
	}
	if value.IsNull() {
		m.fields[name] = MetadataField{Name: name}
		return nil
	}
	m.fields[name] = MetadataField{Name: name, Value: value}
	return value
}

// addJSONListField reads the named column as JSON text and stores it
// re-encoded as a wire list<text> value at the given protocol version. A
// parse failure logs and leaves the field unset; valid JSON of the wrong
// shape logs at debug and stores a presence-only field.
func (m *metadataBase) addJSONListField(version primitive.ProtocolVersion, row rowset.Row, name string, logger *zap.Logger) {
	value := row.ByName(name)
	if value == nil {
		return
	}
	if value.IsNull() {
		m.fields[name] = MetadataField{Name: name}
		return
	}

	var items []string
	if err := json.Unmarshal(value.Bytes(), &items); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			logger.Debug("expected JSON array for column (probably null or empty)",
				zap.String("column", name))
			m.fields[name] = MetadataField{Name: name}
			return
		}
		logger.Error("unable to parse JSON (array) for column",
			zap.String("column", name), zap.Error(err))
		return
	}

	m.fields[name] = MetadataField{Name: name, Value: rowset.TextListValue(version, items)}
}

// addJSONMapField reads the named column as JSON text and stores it
// re-encoded as a wire map<text,text> value at the given protocol version.
// Failure policy matches addJSONListField.
func (m *metadataBase) addJSONMapField(version primitive.ProtocolVersion, row rowset.Row, name string, logger *zap.Logger) {
	value := row.ByName(name)
	if value == nil {
		return
	}
	if value.IsNull() {
		m.fields[name] = MetadataField{Name: name}
		return
	}

	var members map[string]string
	if err := json.Unmarshal(value.Bytes(), &members); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			logger.Debug("expected JSON object for column (probably null or empty)",
				zap.String("column", name))
			m.fields[name] = MetadataField{Name: name}
			return
		}
		logger.Error("unable to parse JSON (object) for column",
			zap.String("column", name), zap.Error(err))
		return
	}

	keys := make([]string, 0, len(members))
	for key := range members {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	pairs := make([]rowset.TextPair, 0, len(members))
	for _, key := range keys {
		pairs = append(pairs, rowset.TextPair{Key: key, Value: members[key]})
	}

	m.fields[name] = MetadataField{Name: name, Value: rowset.TextMapValue(version, pairs)}
}
