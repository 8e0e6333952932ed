package nlcodec

// List serializes a sequence of values back to back, padding every item but
// the last to the netlink word size. This is the layout of an attribute run or
// of records following a header.
//
// A List has no owned decoding: item boundaries are not self-describing, so
// the enclosing type decodes its own items (see nlmsg.ParseAttrs).
type List[T Serializer] struct {
	Items []T
}

// Statically ensure that List implements Serializer.
var _ Serializer = (*List[Serializer])(nil)

// NewList creates a new List over items.
func NewList[T Serializer](items ...T) *List[T] {
	return &List[T]{Items: items}
}

func (l *List[T]) Len() int { return len(l.Items) }

// Append adds items to the end of the list.
func (l *List[T]) Append(items ...T) { l.Items = append(l.Items, items...) }

// Size calculates the total binary size of the list, including the padding between items.
func (l *List[T]) Size() int {
	if len(l.Items) == 0 {
		return 0
	}

	totalSize := 0
	lastIndex := len(l.Items) - 1

	for i, item := range l.Items {
		if i < lastIndex {
			totalSize += ASize(item)
		} else {
			totalSize += item.Size()
		}
	}
	return totalSize
}

func (*List[T]) TypeSize() (int, bool) { return 0, false }

// Serialize hands each item an exactly sized sub-buffer of mem and pads between items.
func (l *List[T]) Serialize(mem *BytesWriter) (*BytesWriter, error) {
	if err := CheckSize(mem, l.Size()); err != nil {
		return mem, err
	}

	lastIndex := len(l.Items) - 1
	for i, item := range l.Items {
		sub, err := mem.Split(item.Size())
		if err != nil {
			return ioErr(err, mem)
		}
		if _, err := item.Serialize(sub); err != nil {
			return serErr(err, mem)
		}
		if i < lastIndex {
			if _, err := Pad(item, mem); err != nil {
				return serErr(err, mem)
			}
		}
	}
	return mem, nil
}
