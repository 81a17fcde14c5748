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

package types

import (
	"fmt"
	"strconv"
	"strings"
)

// VersionNumber is a Cassandra release version as reported by
// system.local 'release_version', e.g. "2.1.3" or "2.0.17-SNAPSHOT".
type VersionNumber struct {
	Major int
	Minor int
	Patch int
}

// ParseVersionNumber parses the leading "major.minor.patch" portion of a
// release version string. Any suffix after the patch number (build labels,
// snapshot markers) is ignored. Minor and patch are optional.
func ParseVersionNumber(s string) (VersionNumber, error) {
	var v VersionNumber
	s = strings.TrimSpace(s)
	if s == "" {
		return v, fmt.Errorf("empty version string")
	}
	// cut off anything that isn't part of the numeric version
	if i := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	}); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return v, fmt.Errorf("malformed version string")
	}
	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		// release versions can carry a build number, e.g. "4.0.0.6816"
		parts = parts[:3]
	}
	targets := []*int{&v.Major, &v.Minor, &v.Patch}
	for i, part := range parts {
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return VersionNumber{}, fmt.Errorf("invalid version component %q: %w", part, err)
		}
		*targets[i] = n
	}
	return v, nil
}

func (v VersionNumber) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func (v VersionNumber) Compare(other VersionNumber) int {
	if v.Major != other.Major {
		return v.Major - other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor - other.Minor
	}
	return v.Patch - other.Patch
}

func (v VersionNumber) AtLeast(major, minor int) bool {
	return v.Compare(VersionNumber{Major: major, Minor: minor}) >= 0
}
