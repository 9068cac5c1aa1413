// ringbuffer.go --  This file is part of goFT project.
// Mirzaeva Irina, 2023
//
//	goFT is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
//	You should have received a copy of the GNU General Public License
//	along with this program.  If not, see http://www.gnu.org/licenses/
//
// ------------------------------------------------
package iterator

// RingBuffer is a fixed-capacity FIFO of equal-length vectors stored in one
// arena. Get(0) is the most recently appended vector.
type RingBuffer struct {
	arena    []float64
	n        int
	capacity int
	head     int // slot of the most recent vector
	size     int
}

// NewRingBuffer allocates room for capacity vectors of length n.
func NewRingBuffer(capacity, n int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer{
		arena:    make([]float64, capacity*n),
		n:        n,
		capacity: capacity,
		head:     capacity - 1,
	}
}

func (b *RingBuffer) slot(s int) []float64 { return b.arena[s*b.n : (s+1)*b.n] }

// Append copies v into the buffer, evicting the oldest vector when full.
func (b *RingBuffer) Append(v []float64) {
	if len(v) != b.n {
		panic("iterator: ring buffer vector length mismatch")
	}
	b.head = (b.head + 1) % b.capacity
	copy(b.slot(b.head), v)
	if b.size < b.capacity {
		b.size++
	}
}

// Get returns the i-th most recent vector. The slice aliases the buffer.
func (b *RingBuffer) Get(i int) []float64 {
	if i < 0 || i >= b.size {
		panic("iterator: ring buffer index out of range")
	}
	return b.slot((b.head - i + b.capacity) % b.capacity)
}

// Truncate keeps only the n most recent vectors.
func (b *RingBuffer) Truncate(n int) {
	if n < b.size {
		b.size = n
	}
}

func (b *RingBuffer) Size() int     { return b.size }
func (b *RingBuffer) Capacity() int { return b.capacity }
func (b *RingBuffer) Len() int      { return b.n }
func (b *RingBuffer) Clear()        { b.size = 0 }
