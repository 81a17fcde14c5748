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

	"github.com/rowkeylabs/cassandra-schema-catalog/global/types"
)

// UserTypeField is one named field of a user defined type.
type UserTypeField struct {
	Name string
	Type datatype.DataType
}

// UserType is a user defined type: an ordered list of named, typed fields
// scoped to a keyspace.
type UserType struct {
	keyspace types.Keyspace
	name     types.TypeName
	fields   []UserTypeField
	byName   map[string]datatype.DataType
}

func NewUserType(keyspace types.Keyspace, name types.TypeName, fields []UserTypeField) *UserType {
	byName := make(map[string]datatype.DataType, len(fields))
	for _, field := range fields {
		byName[field.Name] = field.Type
	}
	return &UserType{keyspace: keyspace, name: name, fields: fields, byName: byName}
}

func (u *UserType) Keyspace() types.Keyspace {
	return u.keyspace
}

func (u *UserType) Name() types.TypeName {
	return u.name
}

// Fields returns the fields in declaration order.
func (u *UserType) Fields() []UserTypeField {
	return u.fields
}

func (u *UserType) FieldAt(i int) (UserTypeField, error) {
	if i < 0 || i >= len(u.fields) {
		return UserTypeField{}, ErrIndexOutOfBounds
	}
	return u.fields[i], nil
}

// FieldType returns the type of the named field, or nil.
func (u *UserType) FieldType(name string) datatype.DataType {
	return u.byName[name]
}
