package sched

import (
	"math/rand"
	"sort"
)

// RegionKind classifies a MemRegion's backing medium.
type RegionKind uint8

const (
	RegionSRAM RegionKind = iota
	RegionFlash
	RegionMMIO
)

// Permissions gates read/write access to a MemRegion.
type Permissions uint8

const (
	PermRead Permissions = 1 << iota
	PermWrite
)

// MemRegion is one contiguous address range served by a single bus,
// with its own latency and access rights — the same shape as the
// teacher's MapIO entries in machine_bus.go, generalized with explicit
// read/write latencies instead of a single fixed-cost MMIO read.
type MemRegion struct {
	Base        uint64
	Size        uint64
	ReadLatency uint32
	WriteLatency uint32
	Kind        RegionKind
	BusID       int
	Permissions Permissions
}

func (r MemRegion) contains(addr uint64) bool {
	return addr >= r.Base && addr < r.Base+r.Size
}

// ReqKind distinguishes a load from a store MemRequest.
type ReqKind uint8

const (
	ReqLoad ReqKind = iota
	ReqStore
)

// MemRequest is one pending bus transaction, issued by a component
// during its own Tick.
type MemRequest struct {
	OriginatorID ComponentID
	Addr         uint64
	Size         int
	Kind         ReqKind
	Tag          uint64
	IssuedAt     uint64
	Payload      []byte // store data; nil for loads
}

// MemResponse completes a MemRequest: for loads, Data holds the bytes
// read at the cycle the response matures (never at issue time).
type MemResponse struct {
	OriginatorID ComponentID
	Tag          uint64
	Data         []byte
	CompletesAt  uint64
}

// ArbitrationPolicy selects which pending request a free port services
// next.
type ArbitrationPolicy int

const (
	ArbitratePriority ArbitrationPolicy = iota
	ArbitrateRoundRobin
	ArbitrateSeededRandom
)

type inFlightReq struct {
	req         MemRequest
	completesAt uint64
	port        int
}

// Bus models one memory bus: a fixed set of regions, a byte-addressable
// backing store, a bounded number of ports, and a pending-request queue
// arbitrated one grant per free port per cycle. A request occupies its
// port for the request's full latency, matching the "single port,
// round-robin, two cores, second waits for the first to complete"
// scenario the spec's bus latency test describes.
type Bus struct {
	ID      int
	Regions []MemRegion
	mem     []byte

	ports         []uint64 // portBusyUntil; 0 == free
	pending       []MemRequest
	inFlight      map[uint64]*inFlightReq
	policy        ArbitrationPolicy
	priorityOrder []ComponentID // used by ArbitratePriority
	rrLast        ComponentID
	rrHasLast     bool
}

// NewBus allocates a Bus with memSize bytes of backing store, ports
// concurrent in-flight transactions, and the given arbitration policy.
func NewBus(id int, memSize uint64, ports int, policy ArbitrationPolicy) *Bus {
	if ports < 1 {
		ports = 1
	}
	return &Bus{
		ID:       id,
		mem:      make([]byte, memSize),
		ports:    make([]uint64, ports),
		inFlight: make(map[uint64]*inFlightReq),
		policy:   policy,
	}
}

// MapRegion adds r to the bus's address map.
func (b *Bus) MapRegion(r MemRegion) {
	b.Regions = append(b.Regions, r)
}

// SetPriorityOrder configures the component-id order ArbitratePriority
// consults, highest priority first.
func (b *Bus) SetPriorityOrder(order []ComponentID) {
	b.priorityOrder = append([]ComponentID(nil), order...)
}

func (b *Bus) regionFor(addr uint64) (MemRegion, bool) {
	for _, r := range b.Regions {
		if r.contains(addr) {
			return r, true
		}
	}
	return MemRegion{}, false
}

// Issue enqueues req. Callers (component Tick implementations) should
// call Issue in same-time order so the pending queue's FIFO order
// matches the scheduler's same-time ordering, per §5's ordering
// guarantee.
func (b *Bus) Issue(req MemRequest) {
	b.pending = append(b.pending, req)
}

// Tick drains any responses maturing at now, then grants pending
// requests to any now-free ports, returning the responses that matured
// this cycle in ascending tag order.
func (b *Bus) Tick(now uint64, arbRNG *rand.Rand) []MemResponse {
	var responses []MemResponse

	var matured []uint64
	for tag, inf := range b.inFlight {
		if inf.completesAt == now {
			matured = append(matured, tag)
		}
	}
	sort.Slice(matured, func(i, j int) bool { return matured[i] < matured[j] })
	for _, tag := range matured {
		inf := b.inFlight[tag]
		region, _ := b.regionFor(inf.req.Addr)
		var data []byte
		if inf.req.Kind == ReqStore {
			b.writeMem(inf.req.Addr, inf.req.Payload)
		} else {
			data = b.readMem(inf.req.Addr, inf.req.Size)
		}
		_ = region
		responses = append(responses, MemResponse{
			OriginatorID: inf.req.OriginatorID,
			Tag:          tag,
			Data:         data,
			CompletesAt:  now,
		})
		b.ports[inf.port] = 0
		delete(b.inFlight, tag)
	}

	for port := range b.ports {
		if b.ports[port] != 0 {
			continue
		}
		if len(b.pending) == 0 {
			break
		}
		idx := b.selectPending(arbRNG)
		req := b.pending[idx]
		b.pending = append(b.pending[:idx], b.pending[idx+1:]...)

		latency := uint32(1)
		if region, ok := b.regionFor(req.Addr); ok {
			if req.Kind == ReqStore {
				latency = region.WriteLatency
			} else {
				latency = region.ReadLatency
			}
		}
		completesAt := now + uint64(latency)
		b.inFlight[req.Tag] = &inFlightReq{req: req, completesAt: completesAt, port: port}
		b.ports[port] = completesAt
		b.rrLast = req.OriginatorID
		b.rrHasLast = true
	}

	return responses
}

func (b *Bus) selectPending(arbRNG *rand.Rand) int {
	switch b.policy {
	case ArbitratePriority:
		return b.selectByPriority()
	case ArbitrateSeededRandom:
		if arbRNG == nil {
			return 0
		}
		return arbRNG.Intn(len(b.pending))
	default: // ArbitrateRoundRobin
		return b.selectRoundRobin()
	}
}

func (b *Bus) selectByPriority() int {
	rank := make(map[ComponentID]int, len(b.priorityOrder))
	for i, id := range b.priorityOrder {
		rank[id] = i
	}
	best := 0
	bestRank := rankOf(rank, b.pending[0].OriginatorID)
	for i := 1; i < len(b.pending); i++ {
		r := rankOf(rank, b.pending[i].OriginatorID)
		if r < bestRank {
			best, bestRank = i, r
		}
	}
	return best
}

func rankOf(rank map[ComponentID]int, id ComponentID) int {
	if r, ok := rank[id]; ok {
		return r
	}
	return len(rank) + int(id) + 1
}

// selectRoundRobin grants the oldest-queued request belonging to the
// distinct originator that follows rrLast cyclically, so repeated
// contention rotates fairly among originators instead of always
// favoring the first in the queue.
func (b *Bus) selectRoundRobin() int {
	if !b.rrHasLast {
		return 0
	}
	originators := distinctOriginators(b.pending)
	sort.Slice(originators, func(i, j int) bool { return originators[i] < originators[j] })
	next := nextAfter(originators, b.rrLast)
	for i, req := range b.pending {
		if req.OriginatorID == next {
			return i
		}
	}
	return 0
}

func distinctOriginators(pending []MemRequest) []ComponentID {
	seen := make(map[ComponentID]bool)
	var out []ComponentID
	for _, r := range pending {
		if !seen[r.OriginatorID] {
			seen[r.OriginatorID] = true
			out = append(out, r.OriginatorID)
		}
	}
	return out
}

func nextAfter(ordered []ComponentID, last ComponentID) ComponentID {
	for _, id := range ordered {
		if id > last {
			return id
		}
	}
	return ordered[0]
}

func (b *Bus) readMem(addr uint64, size int) []byte {
	if addr+uint64(size) > uint64(len(b.mem)) {
		return make([]byte, size)
	}
	out := make([]byte, size)
	copy(out, b.mem[addr:addr+uint64(size)])
	return out
}

func (b *Bus) writeMem(addr uint64, payload []byte) {
	if addr+uint64(len(payload)) > uint64(len(b.mem)) {
		return
	}
	copy(b.mem[addr:], payload)
}

// LoadBytes seeds the bus's backing store directly (program/firmware
// load), bypassing request/response latency.
func (b *Bus) LoadBytes(addr uint64, data []byte) {
	b.writeMem(addr, data)
}

// FetchWithFault reads size bytes at addr directly from the bus's
// backing store, bypassing request/response latency — instruction
// fetch is modeled as zero-latency, matching the decoder contract's
// "reads straddling memory-region boundaries fail with FetchFault and
// never produce a partial instruction" requirement at the boundary of
// a mapped, readable region. Satisfies decode.MemorySource.
func (b *Bus) FetchWithFault(addr uint64, size int) ([]byte, bool) {
	region, ok := b.regionFor(addr)
	if !ok || region.Permissions&PermRead == 0 {
		return nil, false
	}
	if addr+uint64(size) > region.Base+region.Size {
		return nil, false
	}
	if addr+uint64(size) > uint64(len(b.mem)) {
		return nil, false
	}
	out := make([]byte, size)
	copy(out, b.mem[addr:addr+uint64(size)])
	return out, true
}

// Pending reports whether any request is queued or in flight.
func (b *Bus) Pending() bool {
	return len(b.pending) > 0 || len(b.inFlight) > 0
}
