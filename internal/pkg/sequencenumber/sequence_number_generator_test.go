// Copyright 2023 ecodeclub
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sequencenumber

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Generate(t *testing.T) {
	t.Parallel()
	sng := NewGeneratorWith(
		func(_ time.Time) int64 { return 1234554320123 },
		func() string { return "nUfojcH2M5j2j3Tk5A1mf2" })

	testCases := []struct {
		name         string
		buyerID      int64
		wantLastFour string
	}{
		{
			name:         "买家ID不足四位时补零",
			buyerID:      1,
			wantLastFour: "0001",
		},
		{
			name:         "买家ID超过四位时取后四位",
			buyerID:      123456789,
			wantLastFour: "6789",
		},
		{
			name:         "恰好四位",
			buyerID:      9999,
			wantLastFour: "9999",
		},
		{
			name:         "后四位恰好是零",
			buyerID:      123450000,
			wantLastFour: "0000",
		},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			sn, err := sng.Generate(tc.buyerID)

			require.NoError(t, err)
			assert.Len(t, sn, SNLength)
			assert.Equal(t, "1234554320123"+tc.wantLastFour, sn[:17])
		})
	}
}

func TestGenerator_Generate_Unique(t *testing.T) {
	t.Parallel()
	sng := NewGenerator()
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		sn, err := sng.Generate(234)
		require.NoError(t, err)
		require.Len(t, sn, SNLength)
		_, ok := seen[sn]
		require.False(t, ok)
		seen[sn] = struct{}{}
	}
}
