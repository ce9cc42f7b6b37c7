package media

// Item is one classified reference, ready to be planned.
type Item struct {
	Ref Reference
	// Decoded is set for binary references that decoded cleanly.
	Decoded *Decoded
	// DecodeErr is set for binary references that failed to decode.
	DecodeErr error
	// Caption is the request caption on the first item and empty everywhere else.
	Caption string
}

// Classified partitions references while keeping the merged extraction order in Items.
type Classified struct {
	Items  []Item
	Binary []Item
	Remote []Item
}

// AllBinary reports whether every item is a binary reference. It is false for an empty set.
func (c Classified) AllBinary() bool {
	return len(c.Items) > 0 && len(c.Remote) == 0
}

// CaptionOwnerIsRemote reports whether the caption was assigned to a remote item.
func (c Classified) CaptionOwnerIsRemote() bool {
	return len(c.Items) > 0 && !c.Items[0].Ref.IsBinary()
}

// Classify decodes binary references and assigns caption to the first item only.
// Each binary item gets its own freshly decoded buffer.
func Classify(refs []Reference, caption string) Classified {
	out := Classified{
		Items: make([]Item, 0, len(refs)),
	}
	for i, ref := range refs {
		item := Item{Ref: ref}
		if i == 0 {
			item.Caption = caption
		}
		if ref.IsBinary() {
			decoded, err := DecodeDataURL(ref.Raw())
			if err != nil {
				item.DecodeErr = err
			} else {
				item.Decoded = &decoded
			}
			out.Binary = append(out.Binary, item)
		} else {
			out.Remote = append(out.Remote, item)
		}
		out.Items = append(out.Items, item)
	}
	return out
}
