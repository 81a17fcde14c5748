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
	"strings"
	"unicode"
)

// FullFunctionName builds the canonical signature key for a function or
// aggregate: the simple name followed by the parenthesized comma-joined
// argument types. Whitespace inside each argument type is stripped and
// arguments that are empty after stripping are dropped, so overloads hash to
// the same key no matter how the server formatted the type strings.
func FullFunctionName(simpleName string, argTypes []string) string {
	var full strings.Builder
	full.WriteString(simpleName)
	full.WriteByte('(')
	first := true
	for _, argType := range argTypes {
		argType = stripWhitespace(argType)
		if argType == "" {
			continue
		}
		if !first {
			full.WriteByte(',')
		}
		full.WriteString(argType)
		first = false
	}
	full.WriteByte(')')
	return full.String()
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
