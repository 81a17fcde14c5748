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

	"github.com/datastax/go-cassandra-native-protocol/primitive"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"

	"github.com/rowkeylabs/cassandra-schema-catalog/global/types"
	"github.com/rowkeylabs/cassandra-schema-catalog/rowset"
	"github.com/rowkeylabs/cassandra-schema-catalog/tokenmap"
)

// KeyspaceMetadata describes one keyspace and owns its tables, user types,
// functions and aggregates. Functions and aggregates are keyed by their
// canonical full signature so overloads never collide.
type KeyspaceMetadata struct {
	metadataBase
	tables     map[types.TableName]*TableMetadata
	userTypes  map[types.TypeName]*UserType
	functions  map[string]*FunctionMetadata
	aggregates map[string]*AggregateMetadata
}

func newKeyspace(name types.Keyspace) *KeyspaceMetadata {
	return &KeyspaceMetadata{
		metadataBase: newMetadataBase(string(name)),
		tables:       make(map[types.TableName]*TableMetadata),
		userTypes:    make(map[types.TypeName]*UserType),
		functions:    make(map[string]*FunctionMetadata),
		aggregates:   make(map[string]*AggregateMetadata),
	}
}

// clone copies the keyspace's attributes and entity maps. The entities
// themselves are shared; a refresh replaces an entity wholesale rather than
// mutating one in place, so published snapshots never see partial updates.
func (k *KeyspaceMetadata) clone() *KeyspaceMetadata {
	clone := &KeyspaceMetadata{
		metadataBase: metadataBase{name: k.name, fields: k.cloneFields()},
		tables:       make(map[types.TableName]*TableMetadata, len(k.tables)),
		userTypes:    make(map[types.TypeName]*UserType, len(k.userTypes)),
		functions:    make(map[string]*FunctionMetadata, len(k.functions)),
		aggregates:   make(map[string]*AggregateMetadata, len(k.aggregates)),
	}
	maps.Copy(clone.tables, k.tables)
	maps.Copy(clone.userTypes, k.userTypes)
	maps.Copy(clone.functions, k.functions)
	maps.Copy(clone.aggregates, k.aggregates)
	return clone
}

// update refreshes the keyspace's own attributes from a keyspace row.
func (k *KeyspaceMetadata) update(version primitive.ProtocolVersion, row rowset.Row, logger *zap.Logger) {
	k.addField(row, "keyspace_name")
	k.addField(row, "durable_writes")
	k.addField(row, "strategy_class")
	k.addJSONMapField(version, row, "strategy_options", logger)
}

func (k *KeyspaceMetadata) DurableWrites() bool {
	if value := k.Field("durable_writes"); value != nil {
		return value.AsBool()
	}
	return false
}

func (k *KeyspaceMetadata) StrategyClass() string {
	return k.StringField("strategy_class")
}

func (k *KeyspaceMetadata) StrategyOptions() map[string]string {
	if value := k.Field("strategy_options"); value != nil {
		if options, ok := value.AsStringMap(); ok {
			return options
		}
	}
	return nil
}

func (k *KeyspaceMetadata) replicationSettings() tokenmap.ReplicationSettings {
	return tokenmap.ReplicationSettings{
		StrategyClass:   k.StrategyClass(),
		StrategyOptions: k.StrategyOptions(),
	}
}

// Table returns the named table, or nil.
func (k *KeyspaceMetadata) Table(name types.TableName) *TableMetadata {
	return k.tables[name]
}

// Tables returns the keyspace's tables sorted by name.
func (k *KeyspaceMetadata) Tables() []*TableMetadata {
	tables := maps.Values(k.tables)
	sort.Slice(tables, func(i, j int) bool { return tables[i].Name() < tables[j].Name() })
	return tables
}

func (k *KeyspaceMetadata) addTable(table *TableMetadata) {
	k.tables[types.TableName(table.Name())] = table
}

func (k *KeyspaceMetadata) dropTable(name types.TableName) {
	delete(k.tables, name)
}

// resetTableForColumns installs a fresh copy of the named table with no
// columns, creating the table if it does not exist yet, and returns it ready
// to receive column rows.
func (k *KeyspaceMetadata) resetTableForColumns(name types.TableName) *TableMetadata {
	table, ok := k.tables[name]
	if ok {
		table = table.cloneWithoutColumns()
	} else {
		table = newTable(string(name))
	}
	k.tables[name] = table
	return table
}

// UserType returns the named user type, or nil.
func (k *KeyspaceMetadata) UserType(name types.TypeName) *UserType {
	return k.userTypes[name]
}

// UserTypes returns the keyspace's user types sorted by name.
func (k *KeyspaceMetadata) UserTypes() []*UserType {
	userTypes := maps.Values(k.userTypes)
	sort.Slice(userTypes, func(i, j int) bool { return userTypes[i].Name() < userTypes[j].Name() })
	return userTypes
}

func (k *KeyspaceMetadata) addUserType(userType *UserType) {
	k.userTypes[userType.Name()] = userType
}

func (k *KeyspaceMetadata) dropUserType(name types.TypeName) {
	delete(k.userTypes, name)
}

// Function returns the function with the given canonical full signature, or
// nil.
func (k *KeyspaceMetadata) Function(fullName string) *FunctionMetadata {
	return k.functions[fullName]
}

// FunctionBySignature returns the overload of the named function with the
// given argument type strings, or nil.
func (k *KeyspaceMetadata) FunctionBySignature(simpleName string, argTypes []string) *FunctionMetadata {
	return k.functions[FullFunctionName(simpleName, argTypes)]
}

// Functions returns the keyspace's functions sorted by full signature.
func (k *KeyspaceMetadata) Functions() []*FunctionMetadata {
	functions := maps.Values(k.functions)
	sort.Slice(functions, func(i, j int) bool { return functions[i].Name() < functions[j].Name() })
	return functions
}

func (k *KeyspaceMetadata) addFunction(fn *FunctionMetadata) {
	k.functions[fn.Name()] = fn
}

func (k *KeyspaceMetadata) dropFunction(fullName string) {
	delete(k.functions, fullName)
}

// Aggregate returns the aggregate with the given canonical full signature,
// or nil.
func (k *KeyspaceMetadata) Aggregate(fullName string) *AggregateMetadata {
	return k.aggregates[fullName]
}

// AggregateBySignature returns the overload of the named aggregate with the
// given argument type strings, or nil.
func (k *KeyspaceMetadata) AggregateBySignature(simpleName string, argTypes []string) *AggregateMetadata {
	return k.aggregates[FullFunctionName(simpleName, argTypes)]
}

// Aggregates returns the keyspace's aggregates sorted by full signature.
func (k *KeyspaceMetadata) Aggregates() []*AggregateMetadata {
	aggregates := maps.Values(k.aggregates)
	sort.Slice(aggregates, func(i, j int) bool { return aggregates[i].Name() < aggregates[j].Name() })
	return aggregates
}

func (k *KeyspaceMetadata) addAggregate(agg *AggregateMetadata) {
	k.aggregates[agg.Name()] = agg
}

func (k *KeyspaceMetadata) dropAggregate(fullName string) {
	delete(k.aggregates, fullName)
}
