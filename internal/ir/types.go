package ir

// CollectionMapping describes how one positional collection attribute is
// stored: one row per element, keyed by owner and position.
type CollectionMapping struct {
	Name           string `json:"name"`
	Table          string `json:"table"`
	OwnerColumn    string `json:"owner_column"`
	PositionColumn string `json:"position_column"`
	ElementColumn  string `json:"element_column"`
	PositionBase   int    `json:"position_base"` // 0 or 1: stored position of the first element
}

// StoredPosition converts a list index to the value kept in the position column.
func (m CollectionMapping) StoredPosition(index int) int {
	return index + m.PositionBase
}

// ValidPositionBases lists the allowed position_base values.
var ValidPositionBases = map[int]bool{
	0: true,
	1: true,
}
