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

// FunctionArgument is one named, typed argument of a user defined function.
type FunctionArgument struct {
	Name string
	Type datatype.DataType
}

// FunctionMetadata describes a user defined function. Its entity name is the
// canonical full signature, so overloads coexist in a keyspace's function
// map.
type FunctionMetadata struct {
	metadataBase
	simpleName        string
	args              []FunctionArgument
	argsByName        map[string]datatype.DataType
	returnType        datatype.DataType
	body              string
	language          string
	calledOnNullInput bool
}

func newFunctionFromRow(simpleName string, signature []string, parser *typeparser.Parser, row rowset.Row, logger *zap.Logger) *FunctionMetadata {
	fn := &FunctionMetadata{
		metadataBase: newMetadataBase(FullFunctionName(simpleName, signature)),
		simpleName:   simpleName,
		argsByName:   make(map[string]datatype.DataType),
	}

	fn.addField(row, "keyspace_name")
	fn.addField(row, "function_name")
	fn.addField(row, "signature")

	var argumentNames []string
	if value := fn.addField(row, "argument_names"); value != nil {
		argumentNames, _ = value.AsStringList()
	}
	var argumentTypes []string
	if value := fn.addField(row, "argument_types"); value != nil {
		argumentTypes, _ = value.AsStringList()
	}
	for i := 0; i < len(argumentNames) && i < len(argumentTypes); i++ {
		dt, err := parser.Parse(argumentTypes[i])
		if err != nil {
			logger.Error("unable to parse function argument type",
				zap.String("function", fn.Name()),
				zap.String("argumentType", argumentTypes[i]),
				zap.Error(err))
			continue
		}
		fn.args = append(fn.args, FunctionArgument{Name: argumentNames[i], Type: dt})
		fn.argsByName[argumentNames[i]] = dt
	}

	if value := fn.addField(row, "body"); value != nil {
		fn.body = value.AsString()
	}
	if value := fn.addField(row, "language"); value != nil {
		fn.language = value.AsString()
	}
	if value := fn.addField(row, "return_type"); value != nil {
		dt, err := parser.Parse(value.AsString())
		if err != nil {
			logger.Error("unable to parse function return type",
				zap.String("function", fn.Name()),
				zap.String("returnType", value.AsString()),
				zap.Error(err))
		} else {
			fn.returnType = dt
		}
	}
	if value := fn.addField(row, "called_on_null_input"); value != nil {
		fn.calledOnNullInput = value.AsBool()
	}

	return fn
}

// SimpleName returns the function name without its signature.
func (f *FunctionMetadata) SimpleName() string {
	return f.simpleName
}

// Arguments returns the arguments in declaration order.
func (f *FunctionMetadata) Arguments() []FunctionArgument {
	return f.args
}

func (f *FunctionMetadata) ArgumentAt(i int) (FunctionArgument, error) {
	if i < 0 || i >= len(f.args) {
		return FunctionArgument{}, ErrIndexOutOfBounds
	}
	return f.args[i], nil
}

// ArgumentType returns the type of the named argument, or nil.
func (f *FunctionMetadata) ArgumentType(name string) datatype.DataType {
	return f.argsByName[name]
}

func (f *FunctionMetadata) ReturnType() datatype.DataType {
	return f.returnType
}

func (f *FunctionMetadata) Body() string {
	return f.body
}

func (f *FunctionMetadata) Language() string {
	return f.language
}

func (f *FunctionMetadata) CalledOnNullInput() bool {
	return f.calledOnNullInput
}
