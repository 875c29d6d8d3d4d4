package catalog

// LayoutStatus tracks the lifecycle of a seating layout. DRAFT layouts
// are freely editable; PUBLISHED ones are frozen forever.
type LayoutStatus string

const (
	LayoutDraft     LayoutStatus = "DRAFT"
	LayoutPublished LayoutStatus = "PUBLISHED"
)

func (s LayoutStatus) IsValid() bool {
	return s == LayoutDraft || s == LayoutPublished
}

func (s LayoutStatus) String() string {
	return string(s)
}

// BaseSeatStatus describes a seat in the geometry template, before any
// event exists. IMPOSSIBLE seats (pillars, gaps, broken chairs) become
// DISABLED inventory seats at materialization.
type BaseSeatStatus string

const (
	BaseSeatNormal     BaseSeatStatus = "NORMAL"
	BaseSeatImpossible BaseSeatStatus = "IMPOSSIBLE"
)

func (s BaseSeatStatus) IsValid() bool {
	return s == BaseSeatNormal || s == BaseSeatImpossible
}
