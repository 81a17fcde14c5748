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
	"go.uber.org/zap"

	"github.com/rowkeylabs/cassandra-schema-catalog/rowset"
	"github.com/rowkeylabs/cassandra-schema-catalog/typeparser"
)

// AggregateMetadata describes a user defined aggregate. Like functions,
// aggregates are keyed by their canonical full signature. The state and final
// functions are resolved against the keyspace's functions at construction
// time: the state function takes the state type followed by the aggregate's
// argument types, the final function takes just the state type.
type AggregateMetadata struct {
	metadataBase
	simpleName string
	argTypes   []datatype.DataType
	returnType datatype.DataType
	stateType  datatype.DataType
	stateFunc  *FunctionMetadata
	finalFunc  *FunctionMetadata
	initCond   *rowset.Value
}

func newAggregateFromRow(simpleName string, signature []string, functions map[string]*FunctionMetadata, parser *typeparser.Parser, row rowset.Row, logger *zap.Logger) *AggregateMetadata {
	agg := &AggregateMetadata{
		metadataBase: newMetadataBase(FullFunctionName(simpleName, signature)),
		simpleName:   simpleName,
	}

	agg.addField(row, "keyspace_name")
	agg.addField(row, "aggregate_name")
	agg.addField(row, "signature")

	if value := agg.addField(row, "argument_types"); value != nil {
		argumentTypes, _ := value.AsStringList()
		for _, argumentType := range argumentTypes {
			dt, err := parser.Parse(argumentType)
			if err != nil {
				logger.Error("unable to parse aggregate argument type",
					zap.String("aggregate", agg.Name()),
					zap.String("argumentType", argumentType),
					zap.Error(err))
				continue
			}
			agg.argTypes = append(agg.argTypes, dt)
		}
	}

	if value := agg.addField(row, "return_type"); value != nil {
		dt, err := parser.Parse(value.AsString())
		if err != nil {
			logger.Error("unable to parse aggregate return type",
				zap.String("aggregate", agg.Name()),
				zap.String("returnType", value.AsString()),
				zap.Error(err))
		} else {
			agg.returnType = dt
		}
	}

	var stateTypeClass string
	if value := agg.addField(row, "state_type"); value != nil {
		stateTypeClass = value.AsString()
		dt, err := parser.Parse(stateTypeClass)
		if err != nil {
			logger.Error("unable to parse aggregate state type",
				zap.String("aggregate", agg.Name()),
				zap.String("stateType", stateTypeClass),
				zap.Error(err))
		} else {
			agg.stateType = dt
		}
	}

	// the state and final function signatures are built from the same type
	// strings the server used in the functions' own signature column
	if value := agg.addField(row, "state_func"); value != nil {
		stateSignature := append([]string{stateTypeClass}, signature...)
		agg.stateFunc = functions[FullFunctionName(value.AsString(), stateSignature)]
	}
	if value := agg.addField(row, "final_func"); value != nil {
		agg.finalFunc = functions[FullFunctionName(value.AsString(), []string{stateTypeClass})]
	}

	// initcond arrives as a blob; expose it typed as the state type
	if value := agg.addField(row, "initcond"); value != nil {
		if agg.stateType != nil {
			agg.initCond = value.WithType(agg.stateType)
		} else {
			agg.initCond = value
		}
	}

	return agg
}

// SimpleName returns the aggregate name without its signature.
func (a *AggregateMetadata) SimpleName() string {
	return a.simpleName
}

// ArgumentTypes returns the argument types in declaration order.
func (a *AggregateMetadata) ArgumentTypes() []datatype.DataType {
	return a.argTypes
}

func (a *AggregateMetadata) ArgumentTypeAt(i int) (datatype.DataType, error) {
	if i < 0 || i >= len(a.argTypes) {
		return nil, ErrIndexOutOfBounds
	}
	return a.argTypes[i], nil
}

func (a *AggregateMetadata) ReturnType() datatype.DataType {
	return a.returnType
}

func (a *AggregateMetadata) StateType() datatype.DataType {
	return a.stateType
}

// StateFunc returns the resolved state function, or nil if no function with
// the expected signature was loaded.
func (a *AggregateMetadata) StateFunc() *FunctionMetadata {
	return a.stateFunc
}

// FinalFunc returns the resolved final function, or nil if the aggregate has
// none or it was not loaded.
func (a *AggregateMetadata) FinalFunc() *FunctionMetadata {
	return a.finalFunc
}

// InitCond returns the initial state value typed as the state type, or nil if
// the aggregate has no initial condition.
func (a *AggregateMetadata) InitCond() *rowset.Value {
	return a.initCond
}
