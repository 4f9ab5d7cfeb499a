package arena

import "strings"

// ResolvedPath is the result of resolving a dotted member path against a
// root type: the TypeId of the member found and its bit offset and bit
// length within the root instance.
type ResolvedPath struct {
	TypeID     TypeId
	BitOffset  uint32
	BitLen     uint32
}

// ResolvePath walks a dot-separated path (e.g. "status.carry",
// "regs.3.lo") starting at root, descending into Aggregate members by
// name and Array elements by numeric index, and returns the resolved
// type, its absolute bit offset from the start of root, and its bit
// length.
func ResolvePath(a *Arena, root TypeId, path string) (ResolvedPath, error) {
	segments := strings.Split(path, ".")

	curID := root
	var curOffset uint32

	for _, seg := range segments {
		rec, ok := a.Type(curID)
		if !ok {
			return ResolvedPath{}, ErrUnknownType
		}

		switch rec.Kind {
		case KindAggregate, KindCallable:
			members := a.Members(rec.Members)
			found := false
			for _, m := range members {
				name, ok := a.Name(m.NameID)
				if ok && name == seg {
					curOffset += m.OffsetBits
					curID = m.TypeID
					found = true
					break
				}
			}
			if !found {
				return ResolvedPath{}, ErrPathNotFound
			}

		case KindArray:
			idx, err := parseIndex(seg)
			if err != nil {
				return ResolvedPath{}, err
			}
			if rec.Count.Kind == CountStatic && idx >= rec.Count.N {
				return ResolvedPath{}, ErrIndexOutOfRange
			}
			elemRec, ok := a.Type(rec.Elem)
			if !ok {
				return ResolvedPath{}, ErrUnknownType
			}
			stride := elemRec.BitSize
			if stride == 0 {
				stride = elemRec.ByteSize * 8
			}
			curOffset += idx * stride
			curID = rec.Elem

		default:
			return ResolvedPath{}, ErrPathNotFound
		}
	}

	finalRec, ok := a.Type(curID)
	if !ok {
		return ResolvedPath{}, ErrUnknownType
	}
	bitLen := finalRec.BitSize
	if bitLen == 0 {
		bitLen = finalRec.ByteSize * 8
	}

	return ResolvedPath{TypeID: curID, BitOffset: curOffset, BitLen: bitLen}, nil
}

func parseIndex(s string) (uint32, error) {
	if s == "" {
		return 0, ErrIndexOutOfRange
	}
	var v uint32
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, ErrPathNotFound
		}
		v = v*10 + uint32(c-'0')
	}
	return v, nil
}
