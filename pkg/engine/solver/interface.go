package solver

// Matrix is the directed cost surface the search walks. Cost(i,j) and
// Cost(j,i) may differ, the search never assumes symmetry.
type Matrix interface {
	Dim() int
	Cost(i, j int) float64
}

// ProgressEvent is emitted after each neighborhood scan settles.
type ProgressEvent struct {
	pass         int
	moves        int
	cost         float64
	neighborhood string
}

func NewProgressEvent(pass, moves int, cost float64, neighborhood string) ProgressEvent {
	return ProgressEvent{
		pass:         pass,
		moves:        moves,
		cost:         cost,
		neighborhood: neighborhood,
	}
}

func (e ProgressEvent) GetPass() int {
	return e.pass
}

func (e ProgressEvent) GetMoves() int {
	return e.moves
}

func (e ProgressEvent) GetCost() float64 {
	return e.cost
}

func (e ProgressEvent) GetNeighborhood() string {
	return e.neighborhood
}

type ProgressFunc func(event ProgressEvent)
