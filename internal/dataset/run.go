package dataset

// Placement records where a stage put a single file.
type Placement struct {
	Stage string
	Split string
	Label string
	File  string
}

// Run is the mutable state shared by the stages of one pipeline execution.
type Run struct {
	ID         string
	Layout     Layout
	Placements []Placement
}

// NewRun starts an empty run for the given layout.
func NewRun(id string, layout Layout) *Run {
	return &Run{ID: id, Layout: layout}
}

// Place appends a placement for the named stage.
func (r *Run) Place(stage, split, label, file string) {
	r.Placements = append(r.Placements, Placement{
		Stage: stage,
		Split: split,
		Label: label,
		File:  file,
	})
}

// PlacementsSince returns placements appended after the first n entries.
func (r *Run) PlacementsSince(n int) []Placement {
	if n < 0 {
		n = 0
	}
	if n >= len(r.Placements) {
		return nil
	}
	out := make([]Placement, len(r.Placements)-n)
	copy(out, r.Placements[n:])
	return out
}
