package itemtree

import (
	"github.com/delaneyj/proptree/value"
)

// Peer is notified of model changes. Models hold peers weakly: a peer that
// reports it is no longer alive is dropped at the next notification.
type Peer interface {
	Alive() bool
	RowChanged(row int)
	RowsAdded(index, count int)
	RowsRemoved(index, count int)
}

// Model is the data source of a repeater. A repeater keeps its instances
// while its model expression keeps returning an equal model; pointer models
// compare by identity, and models of a non-comparable type count as a new
// model on every evaluation.
type Model interface {
	RowCount() int
	// RowData returns the data of a row. Out of range rows are clamped.
	RowData(row int) value.Value
	SetRowData(row int, v value.Value)
	Attach(p Peer)
}

// ModelNotify keeps the peers of a model. Embed it in model implementations.
type ModelNotify struct {
	peers []Peer
}

func (n *ModelNotify) Attach(p Peer) {
	n.prune()
	n.peers = append(n.peers, p)
}

// Peers counts the peers still alive.
func (n *ModelNotify) Peers() int {
	n.prune()
	return len(n.peers)
}

func (n *ModelNotify) prune() {
	live := n.peers[:0]
	for _, p := range n.peers {
		if p.Alive() {
			live = append(live, p)
		}
	}
	for i := len(live); i < len(n.peers); i++ {
		n.peers[i] = nil
	}
	n.peers = live
}

func (n *ModelNotify) each(fn func(Peer)) {
	n.prune()
	for _, p := range append([]Peer(nil), n.peers...) {
		fn(p)
	}
}

func (n *ModelNotify) RowChanged(row int) {
	n.each(func(p Peer) { p.RowChanged(row) })
}

func (n *ModelNotify) RowsAdded(index, count int) {
	n.each(func(p Peer) { p.RowsAdded(index, count) })
}

func (n *ModelNotify) RowsRemoved(index, count int) {
	n.each(func(p Peer) { p.RowsRemoved(index, count) })
}

// IntModel has n rows whose data is the row number.
type IntModel int

func (m IntModel) RowCount() int {
	if m < 0 {
		return 0
	}
	return int(m)
}

func (m IntModel) RowData(row int) value.Value {
	n := m.RowCount()
	if n == 0 {
		return value.Void()
	}
	return value.Int(int64(clamp(row, n)))
}

func (IntModel) SetRowData(int, value.Value) {}
func (IntModel) Attach(Peer)                 {}

// VectorModel is a mutable list of rows.
type VectorModel struct {
	ModelNotify
	rows []value.Value
}

func NewVectorModel(rows ...value.Value) *VectorModel {
	return &VectorModel{rows: rows}
}

func (m *VectorModel) RowCount() int { return len(m.rows) }

func (m *VectorModel) RowData(row int) value.Value {
	if len(m.rows) == 0 {
		return value.Void()
	}
	return m.rows[clamp(row, len(m.rows))]
}

// SetRowData replaces a row. Rows out of range are ignored.
func (m *VectorModel) SetRowData(row int, v value.Value) {
	if row < 0 || row >= len(m.rows) || m.rows[row] == v {
		return
	}
	m.rows[row] = v
	m.RowChanged(row)
}

func (m *VectorModel) Set(row int, v value.Value) {
	m.SetRowData(row, v)
}

func (m *VectorModel) Push(rows ...value.Value) {
	if len(rows) == 0 {
		return
	}
	at := len(m.rows)
	m.rows = append(m.rows, rows...)
	m.RowsAdded(at, len(rows))
}

// Insert adds v before index, which is clamped to [0, len].
func (m *VectorModel) Insert(index int, v value.Value) {
	if index < 0 {
		index = 0
	}
	if index > len(m.rows) {
		index = len(m.rows)
	}
	m.rows = append(m.rows, value.Value{})
	copy(m.rows[index+1:], m.rows[index:])
	m.rows[index] = v
	m.RowsAdded(index, 1)
}

// Remove deletes a row. Rows out of range are ignored.
func (m *VectorModel) Remove(index int) {
	if index < 0 || index >= len(m.rows) {
		return
	}
	m.rows = append(m.rows[:index], m.rows[index+1:]...)
	m.RowsRemoved(index, 1)
}

func (m *VectorModel) Rows() []value.Value {
	return append([]value.Value(nil), m.rows...)
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
