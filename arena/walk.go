package arena

// Visitor receives callbacks from Walk as it descends a type tree.
// Returning false from EnterAggregate skips that subtree's members.
type Visitor interface {
	EnterAggregate(id TypeId, rec TypeRecord) bool
	ExitAggregate(id TypeId, rec TypeRecord)
	VisitScalar(id TypeId, rec TypeRecord, offsetBits uint32)
	VisitBitField(id TypeId, rec TypeRecord, offsetBits uint32)
	VisitArrayElem(elemID TypeId, index uint32, offsetBits uint32)
}

// frame describes one level of a walk. The Walker keeps a frame slice
// backed by an inline array, but the traversal itself does not push or
// pop frames (see Walker).
type frame struct {
	typeID     TypeId
	memberIdx  uint32
	offsetBits uint32
}

const walkerInlineDepth = 4

// Walker performs a depth-first traversal of a type tree rooted at a
// given TypeId. Traversal recurses through walkOne, one Go call per
// nesting level, so walk depth is bounded by the goroutine stack; the
// stack and inline fields are reset by Walk but not used by the
// traversal.
type Walker struct {
	arena *Arena
	stack []frame
	inline [walkerInlineDepth]frame
}

// NewWalker returns a Walker bound to arena.
func NewWalker(arena *Arena) *Walker {
	w := &Walker{arena: arena}
	w.stack = w.inline[:0]
	return w
}

// Walk visits the type tree rooted at root, starting at bit offset 0.
func (w *Walker) Walk(root TypeId, v Visitor) error {
	w.stack = w.stack[:0]
	return w.walkOne(root, 0, v)
}

func (w *Walker) walkOne(id TypeId, offsetBits uint32, v Visitor) error {
	rec, ok := w.arena.Type(id)
	if !ok {
		return ErrUnknownType
	}

	switch rec.Kind {
	case KindAggregate, KindCallable:
		if !v.EnterAggregate(id, rec) {
			return nil
		}
		members := w.arena.Members(rec.Members)
		for i, m := range members {
			memberOffset := offsetBits + m.OffsetBits
			if err := w.walkOne(m.TypeID, memberOffset, v); err != nil {
				return err
			}
			_ = i
		}
		v.ExitAggregate(id, rec)

	case KindArray:
		if rec.Count.Kind != CountStatic {
			// Dynamic counts require a runtime EvalContext the Walker
			// does not have; callers needing to walk a dynamic array
			// evaluate Count.Expr themselves and call WalkN.
			return nil
		}
		elemRec, ok := w.arena.Type(rec.Elem)
		if !ok {
			return ErrUnknownType
		}
		stride := elemRec.BitSize
		if stride == 0 {
			stride = elemRec.ByteSize * 8
		}
		for i := uint32(0); i < rec.Count.N; i++ {
			v.VisitArrayElem(rec.Elem, i, offsetBits+i*stride)
			if err := w.walkOne(rec.Elem, offsetBits+i*stride, v); err != nil {
				return err
			}
		}

	case KindBitField:
		v.VisitBitField(id, rec, offsetBits)

	default:
		v.VisitScalar(id, rec, offsetBits)
	}

	return nil
}

// WalkN behaves like Walk but treats root as a dynamically-sized array
// with n elements, bypassing the static Count check — used when the
// caller has already evaluated a Dynamic TypeRecord's SizeExpr or a
// CountDynamic Array's Count.Expr via arena.Eval.
func (w *Walker) WalkN(elem TypeId, n uint32, v Visitor) error {
	elemRec, ok := w.arena.Type(elem)
	if !ok {
		return ErrUnknownType
	}
	stride := elemRec.BitSize
	if stride == 0 {
		stride = elemRec.ByteSize * 8
	}
	for i := uint32(0); i < n; i++ {
		v.VisitArrayElem(elem, i, i*stride)
		if err := w.walkOne(elem, i*stride, v); err != nil {
			return err
		}
	}
	return nil
}
