package constant

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsKnownSport(t *testing.T) {
	for _, sport := range KnownSports {
		require.True(t, IsKnownSport(sport), "listed sport %q should be accepted", sport)
	}

	// common aliases and typos are not listed; the list says "football"
	for _, sport := range []string{"soccer", "Football", "table tennis", ""} {
		require.False(t, IsKnownSport(sport), "unlisted sport %q should be rejected", sport)
	}
}
