package models

// Snapshot is a whole-collection fetch of the gradebook tables taken before
// any computation runs.
type Snapshot struct {
	Students []Student     `json:"students"`
	Subjects []Subject     `json:"subjects"`
	Grades   []GradeRecord `json:"grades"`
}
