package grid

import "math"

// CellKey identifies a grid cell occupied by an agent.
type CellKey struct {
	X int
	Y int
}

// DefaultCellSize matches the detection ranges the index is queried with:
// most lookups touch a handful of cells.
const DefaultCellSize = 80.0

// Index maintains grid occupancy for point entities so radius queries touch
// only nearby cells instead of the whole roster.
type Index struct {
	cellSize    float64
	invCellSize float64
	cells       map[CellKey][]string
	entries     map[string]CellKey
}

// NewIndex constructs an Index with an optional custom cell size.
func NewIndex(cellSize float64) *Index {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Index{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cells:       make(map[CellKey][]string),
		entries:     make(map[string]CellKey),
	}
}

// Upsert inserts or moves an entity to the cell covering (x, y).
func (idx *Index) Upsert(id string, x, y float64) {
	if idx == nil || id == "" {
		return
	}
	cell := CellKey{X: idx.coordToCell(x), Y: idx.coordToCell(y)}
	if prev, ok := idx.entries[id]; ok {
		if prev == cell {
			return
		}
		idx.removeFromCell(id, prev)
	}
	idx.entries[id] = cell
	idx.cells[cell] = append(idx.cells[cell], id)
}

// Remove deletes an entity from the index.
func (idx *Index) Remove(id string) {
	if idx == nil || id == "" {
		return
	}
	cell, ok := idx.entries[id]
	if !ok {
		return
	}
	idx.removeFromCell(id, cell)
	delete(idx.entries, id)
}

// Len reports the number of tracked entities.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// QueryCircle visits every entity whose cell intersects the circle at (x, y)
// with the given radius. Visited entities may lie outside the radius; callers
// apply their own distance filter. Returning false from the visitor stops the
// scan early.
func (idx *Index) QueryCircle(x, y, radius float64, visit func(id string) bool) {
	if idx == nil || visit == nil || radius <= 0 {
		return
	}
	minX := idx.coordToCell(x - radius)
	maxX := idx.coordToCell(x + radius)
	minY := idx.coordToCell(y - radius)
	maxY := idx.coordToCell(y + radius)
	for row := minY; row <= maxY; row++ {
		for col := minX; col <= maxX; col++ {
			for _, id := range idx.cells[CellKey{X: col, Y: row}] {
				if !visit(id) {
					return
				}
			}
		}
	}
}

func (idx *Index) removeFromCell(id string, cell CellKey) {
	bucket := idx.cells[cell]
	for i := range bucket {
		if bucket[i] != id {
			continue
		}
		bucket[i] = bucket[len(bucket)-1]
		bucket = bucket[:len(bucket)-1]
		break
	}
	if len(bucket) == 0 {
		delete(idx.cells, cell)
	} else {
		idx.cells[cell] = bucket
	}
}

func (idx *Index) coordToCell(value float64) int {
	return int(math.Floor(value * idx.invCellSize))
}
