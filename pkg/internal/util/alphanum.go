// Copyright © 2025 The Patzer Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import (
	"regexp"
	"strconv"
)

var chunkPattern = regexp.MustCompile(`(\d+|\D+)`)

func chunkify(s string) []string {
	return chunkPattern.FindAllString(s, -1)
}

// AlphanumCompare reports whether the first string precedes the second
// in natural order, where runs of digits compare as numbers. Version
// tags like v9 and v10 therefore order the way a human expects.
func AlphanumCompare(a, b string) bool {
	chunksA := chunkify(a)
	chunksB := chunkify(b)

	for i := range chunksA {
		if i >= len(chunksB) {
			return false
		}

		aInt, aErr := strconv.Atoi(chunksA[i])
		bInt, bErr := strconv.Atoi(chunksB[i])

		// If both chunks are numeric, compare them as integers.
		if aErr == nil && bErr == nil {
			if aInt == bInt {
				if i == len(chunksA)-1 {
					// A ran out of chunks first, so it precedes B.
					return true
				} else if i == len(chunksB)-1 {
					return false
				}

				continue
			}

			return aInt < bInt
		}

		// The strings are equal so far, move on to the next chunk.
		if chunksA[i] == chunksB[i] {
			if i == len(chunksA)-1 {
				return true
			} else if i == len(chunksB)-1 {
				return false
			}

			continue
		}

		return chunksA[i] < chunksB[i]
	}

	return false
}
