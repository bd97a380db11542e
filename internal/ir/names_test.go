package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"c", "$c", false},
		{"$c", "$c", false},
		{"  temp_2 ", "$temp_2", false},
		{"_x", "$_x", false},
		{"", "", true},
		{"$", "", true},
		{"2c", "", true},
		{"a-b", "", true},
		{"$$c", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := CanonicalName(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsInvalidArgument(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReferencedNames(t *testing.T) {
	assert.Equal(t, []string{"$a", "$b"}, ReferencedNames("$a>15 and $b"))
	assert.Equal(t, []string{"$c"}, ReferencedNames("abs($c - 200) + $c"))
	assert.Nil(t, ReferencedNames("200 - 100"))
	assert.Nil(t, ReferencedNames(""))
}

func TestReplaceRefs_WholeTokens(t *testing.T) {
	out := ReplaceRefs("$c + $c2", func(name string) string {
		if name == "$c" {
			return "$c[x]"
		}
		return name
	})
	assert.Equal(t, "$c[x] + $c2", out)
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "$c > 1 and $d", CollapseWhitespace("$c >\t1\n  and   $d"))
}
