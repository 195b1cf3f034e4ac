/*
 * Copyright 2024 The Bundler Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSumDeterministic(t *testing.T) {
	tuples := []Tuple{
		{Name: "invoice.pdf", Size: 1024, Source: SourceInline},
		{Name: "ledger.xlsx", Size: 2048, Source: "/data/out/ledger.xlsx"},
	}
	require.Equal(t, Sum(tuples), Sum(tuples))
}

func TestSumOrderSensitive(t *testing.T) {
	a := []Tuple{{Name: "a", Size: 1, Source: SourceInline}, {Name: "b", Size: 2, Source: SourceInline}}
	b := []Tuple{{Name: "b", Size: 2, Source: SourceInline}, {Name: "a", Size: 1, Source: SourceInline}}
	require.NotEqual(t, Sum(a), Sum(b))
}

func TestSumFieldBoundaries(t *testing.T) {
	// "ab"+"c" must not collide with "a"+"bc"
	a := []Tuple{{Name: "ab", Size: 1, Source: "c"}}
	b := []Tuple{{Name: "a", Size: 1, Source: "bc"}}
	require.NotEqual(t, Sum(a), Sum(b))
}

func TestSumSizeSensitive(t *testing.T) {
	a := []Tuple{{Name: "a", Size: 1, Source: SourceInline}}
	b := []Tuple{{Name: "a", Size: 2, Source: SourceInline}}
	require.NotEqual(t, Sum(a), Sum(b))
}

func TestSumEmpty(t *testing.T) {
	require.Len(t, Sum(nil), 32)
}
