package storage

// OperatorTeam maps one operator spelling to its organizational team.
// Synonym rows (accented vs bare spellings of the same person) are
// intentional: the source list is hand-typed and both spellings occur.
type OperatorTeam struct {
	Operator string
	Team     string
}

// TeamColor is the display color for a team, including the Overview
// pseudo-team used by the rotation.
type TeamColor struct {
	Team  string
	Color string
}

// FieldMapping renames one raw list column to a canonical field name.
type FieldMapping struct {
	RawKey    string
	Canonical string
}
