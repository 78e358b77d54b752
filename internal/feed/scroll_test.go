package feed

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOnScrollNearTopAwayFromBottom(t *testing.T) {
	anchor := NewAnchor()

	s := anchor.OnScroll(Metrics{Top: 0, ViewHeight: 500, ContentHeight: 2000})
	require.True(t, s.IsNearTop)
	require.False(t, s.IsAtBottom)
	require.False(t, s.AutoFollow)
}

func TestOnScrollThresholds(t *testing.T) {
	cases := []struct {
		name     string
		m        Metrics
		nearTop  bool
		atBottom bool
	}{
		{"just inside top threshold", Metrics{Top: 99, ViewHeight: 500, ContentHeight: 2000}, true, false},
		{"at top threshold", Metrics{Top: 100, ViewHeight: 500, ContentHeight: 2000}, false, false},
		{"exactly at bottom", Metrics{Top: 1500, ViewHeight: 500, ContentHeight: 2000}, false, true},
		{"within bottom slop", Metrics{Top: 1490, ViewHeight: 500, ContentHeight: 2000}, false, true},
		{"outside bottom slop", Metrics{Top: 1489, ViewHeight: 500, ContentHeight: 2000}, false, false},
		{"short content is both", Metrics{Top: 0, ViewHeight: 500, ContentHeight: 300}, true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			anchor := NewAnchor()
			s := anchor.OnScroll(tc.m)
			require.Equal(t, tc.nearTop, s.IsNearTop)
			require.Equal(t, tc.atBottom, s.IsAtBottom)
		})
	}
}

func TestAutoFollowDisabledUntilBackAtBottom(t *testing.T) {
	anchor := NewAnchor()
	require.True(t, anchor.AutoFollow())

	anchor.OnScroll(Metrics{Top: 400, ViewHeight: 500, ContentHeight: 2000})
	require.False(t, anchor.AutoFollow())

	// New content while scrolled away: no move.
	_, follow := anchor.FollowTarget(Metrics{Top: 400, ViewHeight: 500, ContentHeight: 2200})
	require.False(t, follow)

	anchor.OnScroll(Metrics{Top: 1700, ViewHeight: 500, ContentHeight: 2200})
	require.True(t, anchor.AutoFollow())

	target, follow := anchor.FollowTarget(Metrics{Top: 1700, ViewHeight: 500, ContentHeight: 2400})
	require.True(t, follow)
	require.Equal(t, 2400, target)
}

func TestForceBottomReenablesAutoFollow(t *testing.T) {
	anchor := NewAnchor()
	anchor.OnScroll(Metrics{Top: 0, ViewHeight: 500, ContentHeight: 2000})
	require.False(t, anchor.AutoFollow())

	target := anchor.ForceBottom(Metrics{Top: 0, ViewHeight: 500, ContentHeight: 2000})
	require.Equal(t, 2000, target)
	require.True(t, anchor.AutoFollow())
}

func TestCustomThresholdsInLineUnits(t *testing.T) {
	anchor := NewAnchorWith(4, 0)

	s := anchor.OnScroll(Metrics{Top: 3, ViewHeight: 30, ContentHeight: 120})
	require.True(t, s.IsNearTop)
	require.False(t, s.IsAtBottom)

	s = anchor.OnScroll(Metrics{Top: 90, ViewHeight: 30, ContentHeight: 120})
	require.False(t, s.IsNearTop)
	require.True(t, s.IsAtBottom)
}
