package rights

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRightsCovers(t *testing.T) {
	cases := []struct {
		name      string
		held      Rights
		requested Rights
		want      bool
	}{
		{"full covers full", FullRights(), FullRights(), true},
		{"full covers none", FullRights(), Rights{}, true},
		{"none covers none", Rights{}, Rights{}, true},
		{"read only covers read", Rights{Read: true}, Rights{Read: true}, true},
		{"read only rejects write", Rights{Read: true}, Rights{Write: true}, false},
		{"read only rejects grant", Rights{Read: true}, Rights{Grant: true}, false},
		{"missing one bit rejects", Rights{Read: true, Write: true}, FullRights(), false},
		{"grant without read still covers grant", Rights{Grant: true}, Rights{Grant: true}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.held.Covers(tc.requested))
		})
	}
}

func TestFullRights(t *testing.T) {
	full := FullRights()
	require.True(t, full.Read)
	require.True(t, full.Write)
	require.True(t, full.Grant)
}

func TestNormalizeName(t *testing.T) {
	// "café" with a combining acute accent must normalize to the composed
	// form, so both spellings hit the same uniqueness constraint.
	decomposed := "cafe\u0301"
	composed := "caf\u00e9"
	require.Equal(t, composed, NormalizeName(decomposed))
	require.Equal(t, composed, NormalizeName(composed))
	require.Equal(t, "plain-name", NormalizeName("plain-name"))
}
