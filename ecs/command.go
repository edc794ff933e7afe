package ecs

type cmdKind uint8

const (
	cmdDestroy cmdKind = iota
	cmdAdd
	cmdRemove
)

// command is one deferred structural change. Only adds carry payload
// bytes, allocated from the owning buffer's arena.
type command struct {
	data   []byte
	entity Entity
	comp   CompID
	kind   cmdKind
}

// cmdBuffer is one task slot's deferred-mutation log: an append-only command
// vector plus a bump arena for staged add payloads. Exactly one task
// writes to a given buffer at a time, so no locking is needed.
type cmdBuffer struct {
	cmds  []command
	arena arena
}

func newCmdBuffer() *cmdBuffer {
	return &cmdBuffer{
		cmds: make([]command, 0, CommandBufferInitialCapacity),
		arena: arena{
			chunkSize: CommandDataInitialCapacity,
		},
	}
}

// stageAdd records an add and returns the zeroed staged payload. The
// bytes stay valid until the buffer is reset at the next sync.
func (cb *cmdBuffer) stageAdd(e Entity, c CompID, size int) []byte {
	data := cb.arena.alloc(size)
	cb.cmds = append(cb.cmds, command{kind: cmdAdd, entity: e, comp: c, data: data})
	return data
}

func (cb *cmdBuffer) stageRemove(e Entity, c CompID) {
	cb.cmds = append(cb.cmds, command{kind: cmdRemove, entity: e, comp: c})
}

func (cb *cmdBuffer) stageDestroy(e Entity) {
	cb.cmds = append(cb.cmds, command{kind: cmdDestroy, entity: e})
}

// reset empties the buffer, retaining command capacity and the arena's
// first chunk.
func (cb *cmdBuffer) reset() {
	cb.cmds = cb.cmds[:0]
	cb.arena.reset()
}

// arena is a chunked bump allocator. Growth adds a chunk instead of
// moving the existing ones, so slices handed out earlier stay valid until
// reset.
type arena struct {
	chunks    [][]byte
	used      int // bytes used in the last chunk
	chunkSize int
}

// alloc returns n zeroed bytes from the arena.
func (a *arena) alloc(n int) []byte {
	if len(a.chunks) == 0 {
		a.chunks = append(a.chunks, make([]byte, a.chunkSize))
	}

	last := a.chunks[len(a.chunks)-1]
	if a.used+n > len(last) {
		size := a.chunkSize
		for size < n {
			size *= 2
		}
		last = make([]byte, size)
		a.chunks = append(a.chunks, last)
		a.used = 0
	}

	b := last[a.used : a.used+n : a.used+n]
	a.used += n
	clear(b)
	return b
}

// reset drops all but the first chunk and rewinds it.
func (a *arena) reset() {
	if len(a.chunks) > 1 {
		a.chunks = a.chunks[:1]
	}
	a.used = 0
}
