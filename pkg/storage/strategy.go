package storage

// Strategy implements the representation-specific half of the storage
// contract for one Kind. Bounds, acceptance and allocation limits are
// checked by the Registry before a Strategy is called.
type Strategy interface {
	Kind() Kind
	// Accepts reports whether every value of the other kind can be stored
	// in this representation without loss. It must accept its own kind.
	Accepts(other Kind) bool
	// New returns a zeroed store of exactly capacity slots.
	New(capacity int) Store
	// Expand returns a new store of the same kind with the given capacity
	// and the first s.Capacity() slots copied from s.
	Expand(s Store, capacity int) Store
	// CopyContents copies length slots of src, which has this strategy's
	// kind, into dst. dst's kind accepts src's kind.
	CopyContents(src Store, srcStart int, dst Store, dstStart, length int)
}

// copyBoxed is the slow path shared by every strategy: element-wise
// through the boxed accessors. Acceptance is already established, so Set
// cannot fail.
func copyBoxed(src Store, srcStart int, dst Store, dstStart, length int) {
	for i := 0; i < length; i++ {
		if err := dst.Set(dstStart+i, src.Get(srcStart+i)); err != nil {
			Violate("copyContents", "%v", err)
		}
	}
}

type emptyStrategy struct{}

func (emptyStrategy) Kind() Kind                  { return KindEmpty }
func (emptyStrategy) Accepts(other Kind) bool     { return other == KindEmpty }
func (emptyStrategy) New(capacity int) Store      { return Empty }
func (emptyStrategy) Expand(s Store, _ int) Store { return Empty }

func (emptyStrategy) CopyContents(src Store, srcStart int, dst Store, dstStart, length int) {
	// Registry bounds checks leave length == 0 as the only legal call.
}

type intStrategy struct{}

func (intStrategy) Kind() Kind { return KindInt }

func (intStrategy) Accepts(other Kind) bool {
	return other == KindEmpty || other == KindInt
}

func (intStrategy) New(capacity int) Store {
	return &IntStore{values: make([]int32, capacity)}
}

func (intStrategy) Expand(s Store, capacity int) Store {
	grown := make([]int32, capacity)
	copy(grown, s.(*IntStore).values)
	return &IntStore{values: grown}
}

func (intStrategy) CopyContents(src Store, srcStart int, dst Store, dstStart, length int) {
	from := src.(*IntStore).values[srcStart : srcStart+length]
	switch d := dst.(type) {
	case *IntStore:
		copy(d.values[dstStart:], from)
	case *LongStore:
		for i, v := range from {
			d.values[dstStart+i] = int64(v)
		}
	case *ObjectStore:
		for i, v := range from {
			d.values[dstStart+i] = int64(v)
		}
	default:
		copyBoxed(src, srcStart, dst, dstStart, length)
	}
}

type longStrategy struct{}

func (longStrategy) Kind() Kind { return KindLong }

func (longStrategy) Accepts(other Kind) bool {
	return other == KindEmpty || other == KindInt || other == KindLong
}

func (longStrategy) New(capacity int) Store {
	return &LongStore{values: make([]int64, capacity)}
}

func (longStrategy) Expand(s Store, capacity int) Store {
	grown := make([]int64, capacity)
	copy(grown, s.(*LongStore).values)
	return &LongStore{values: grown}
}

func (longStrategy) CopyContents(src Store, srcStart int, dst Store, dstStart, length int) {
	from := src.(*LongStore).values[srcStart : srcStart+length]
	switch d := dst.(type) {
	case *LongStore:
		copy(d.values[dstStart:], from)
	case *ObjectStore:
		for i, v := range from {
			d.values[dstStart+i] = v
		}
	default:
		copyBoxed(src, srcStart, dst, dstStart, length)
	}
}

type doubleStrategy struct{}

func (doubleStrategy) Kind() Kind { return KindDouble }

func (doubleStrategy) Accepts(other Kind) bool {
	return other == KindEmpty || other == KindDouble
}

func (doubleStrategy) New(capacity int) Store {
	return &DoubleStore{values: make([]float64, capacity)}
}

func (doubleStrategy) Expand(s Store, capacity int) Store {
	grown := make([]float64, capacity)
	copy(grown, s.(*DoubleStore).values)
	return &DoubleStore{values: grown}
}

func (doubleStrategy) CopyContents(src Store, srcStart int, dst Store, dstStart, length int) {
	from := src.(*DoubleStore).values[srcStart : srcStart+length]
	switch d := dst.(type) {
	case *DoubleStore:
		copy(d.values[dstStart:], from)
	case *ObjectStore:
		for i, v := range from {
			d.values[dstStart+i] = v
		}
	default:
		copyBoxed(src, srcStart, dst, dstStart, length)
	}
}

type objectStrategy struct{}

func (objectStrategy) Kind() Kind              { return KindObject }
func (objectStrategy) Accepts(other Kind) bool { return other.Valid() }

func (objectStrategy) New(capacity int) Store {
	return &ObjectStore{values: make([]any, capacity)}
}

func (objectStrategy) Expand(s Store, capacity int) Store {
	grown := make([]any, capacity)
	copy(grown, s.(*ObjectStore).values)
	return &ObjectStore{values: grown}
}

func (objectStrategy) CopyContents(src Store, srcStart int, dst Store, dstStart, length int) {
	from := src.(*ObjectStore).values[srcStart : srcStart+length]
	if d, ok := dst.(*ObjectStore); ok {
		copy(d.values[dstStart:], from)
		return
	}
	copyBoxed(src, srcStart, dst, dstStart, length)
}
