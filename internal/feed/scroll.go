package feed

// Default scroll thresholds, in the view's own units.
const (
	DefaultNearTop    = 100
	DefaultBottomSlop = 10
)

// Metrics describes the viewport at one scroll event.
type Metrics struct {
	// Top is the scroll offset from the start of the content.
	Top int

	// ViewHeight is the visible extent of the viewport.
	ViewHeight int

	// ContentHeight is the total extent of the content.
	ContentHeight int
}

// ScrollState is derived from Metrics on each scroll event. Not persisted;
// its lifecycle is the mounted view's.
type ScrollState struct {
	IsNearTop  bool
	IsAtBottom bool
	AutoFollow bool
}

// Anchor decides whether the view should auto-follow newly arrived messages
// or stay put because the user has scrolled away.
type Anchor struct {
	nearTop    int
	bottomSlop int
	autoFollow bool
}

// NewAnchor returns an Anchor with the default thresholds. Auto-follow
// starts enabled.
func NewAnchor() *Anchor {
	return NewAnchorWith(DefaultNearTop, DefaultBottomSlop)
}

// NewAnchorWith returns an Anchor with explicit thresholds, for views whose
// scroll units are not pixels.
func NewAnchorWith(nearTop, bottomSlop int) *Anchor {
	return &Anchor{
		nearTop:    nearTop,
		bottomSlop: bottomSlop,
		autoFollow: true,
	}
}

// OnScroll derives the scroll state for one scroll event. Scrolling away
// from the bottom disables auto-follow until the user returns to the bottom.
func (a *Anchor) OnScroll(m Metrics) ScrollState {
	s := ScrollState{
		IsNearTop:  m.Top < a.nearTop,
		IsAtBottom: m.Top+m.ViewHeight >= m.ContentHeight-a.bottomSlop,
	}
	a.autoFollow = s.IsAtBottom
	s.AutoFollow = a.autoFollow
	return s
}

// FollowTarget reports where the viewport should move after content was
// merged: the new content height when auto-follow holds, otherwise no move.
func (a *Anchor) FollowTarget(m Metrics) (int, bool) {
	if !a.autoFollow {
		return 0, false
	}
	return m.ContentHeight, true
}

// ForceBottom pins the viewport to the bottom and re-enables auto-follow.
// Used exactly once, after the initial load.
func (a *Anchor) ForceBottom(m Metrics) int {
	a.autoFollow = true
	return m.ContentHeight
}

// AutoFollow reports whether auto-follow is currently enabled.
func (a *Anchor) AutoFollow() bool {
	return a.autoFollow
}
