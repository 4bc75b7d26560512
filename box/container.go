package box

import (
	"fmt"
	"io"
)

// ContainerBox is a box whose contents are a sequence of boxes. Children are
// kept and written in insertion order.
type ContainerBox struct {
	frame
	typ      Type
	children []Box
}

// NewContainerBox returns an empty container of type t.
func NewContainerBox(t Type) *ContainerBox {
	return &ContainerBox{typ: t}
}

// Type returns the box type code.
func (c *ContainerBox) Type() Type { return c.typ }

// Children returns the child boxes in order.
func (c *ContainerBox) Children() []Box { return c.children }

// Find returns the first child of type t, or nil.
func (c *ContainerBox) Find(t Type) Box {
	for _, b := range c.children {
		if b.Type() == t {
			return b
		}
	}
	return nil
}

// FindAll returns every child of type t.
func (c *ContainerBox) FindAll(t Type) []Box {
	var out []Box
	for _, b := range c.children {
		if b.Type() == t {
			out = append(out, b)
		}
	}
	return out
}

// Add appends b to the container.
func (c *ContainerBox) Add(b Box) error {
	if b == nil {
		return fmt.Errorf("%w: nil child", ErrMalformedBox)
	}
	c.children = append(c.children, b)
	return nil
}

// PayloadLen returns the summed size of the children, or ToEOF when the
// container or any child runs to the end of its scope.
func (c *ContainerBox) PayloadLen() int64 {
	if c.eof {
		return ToEOF
	}
	var n int64
	for _, b := range c.children {
		l := b.PayloadLen()
		if l == ToEOF {
			return ToEOF
		}
		n += HeaderSize + l
	}
	return n
}

// WritePayload writes every child box.
func (c *ContainerBox) WritePayload(w io.Writer) error {
	for _, b := range c.children {
		if err := WriteBox(w, b); err != nil {
			return err
		}
	}
	return nil
}

// Describe exports the container and its children.
func (c *ContainerBox) Describe() *Node {
	return c.describe("ContainerBox", c.typ)
}

func (c *ContainerBox) describe(name string, t Type) *Node {
	n := newNode(name, t)
	for _, b := range c.children {
		n.Add(b.Describe())
	}
	return n
}

func (c *ContainerBox) readPayload(p *payload) error {
	return readChildren(p, c.Add)
}

// ResolutionSuperBox ("res ") holds at most one capture and one default
// display resolution box.
type ResolutionSuperBox struct {
	ContainerBox
	capture *ResolutionBox
	display *ResolutionBox
}

// NewResolutionSuperBox returns a res box holding the given children; nil
// arguments are skipped.
func NewResolutionSuperBox(capture, display *ResolutionBox) (*ResolutionSuperBox, error) {
	r := &ResolutionSuperBox{}
	for _, b := range []*ResolutionBox{capture, display} {
		if b == nil {
			continue
		}
		if err := r.Add(b); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Type returns TypeResolution.
func (r *ResolutionSuperBox) Type() Type { return TypeResolution }

// Capture returns the resc child, or nil.
func (r *ResolutionSuperBox) Capture() *ResolutionBox { return r.capture }

// Display returns the resd child, or nil.
func (r *ResolutionSuperBox) Display() *ResolutionBox { return r.display }

// Add appends b, rejecting a second resc or resd.
func (r *ResolutionSuperBox) Add(b Box) error {
	if rb, ok := b.(*ResolutionBox); ok {
		switch rb.Type() {
		case TypeCaptureRes:
			if r.capture != nil {
				return fmt.Errorf("%w: resc", ErrDuplicateBox)
			}
			r.capture = rb
		case TypeDisplayRes:
			if r.display != nil {
				return fmt.Errorf("%w: resd", ErrDuplicateBox)
			}
			r.display = rb
		}
	}
	return r.ContainerBox.Add(b)
}

// Describe exports the resolution super-box.
func (r *ResolutionSuperBox) Describe() *Node {
	return r.describe("ResolutionSuperBox", TypeResolution)
}

func (r *ResolutionSuperBox) readPayload(p *payload) error {
	return readChildren(p, r.Add)
}

// UUIDInfoBox ("uinf") pairs a UUID list with the URL where the vendor
// information for those UUIDs lives.
type UUIDInfoBox struct {
	ContainerBox
	list *UUIDListBox
	url  *URLBox
}

// NewUUIDInfoBox returns a uinf box holding list and url.
func NewUUIDInfoBox(list *UUIDListBox, url *URLBox) (*UUIDInfoBox, error) {
	u := &UUIDInfoBox{}
	if list != nil {
		if err := u.Add(list); err != nil {
			return nil, err
		}
	}
	if url != nil {
		if err := u.Add(url); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// Type returns TypeUUIDInfo.
func (u *UUIDInfoBox) Type() Type { return TypeUUIDInfo }

// List returns the ulst child, or nil.
func (u *UUIDInfoBox) List() *UUIDListBox { return u.list }

// URL returns the url child, or nil.
func (u *UUIDInfoBox) URL() *URLBox { return u.url }

// Add appends b, rejecting a second ulst or url.
func (u *UUIDInfoBox) Add(b Box) error {
	switch v := b.(type) {
	case *UUIDListBox:
		if u.list != nil {
			return fmt.Errorf("%w: ulst", ErrDuplicateBox)
		}
		u.list = v
	case *URLBox:
		if u.url != nil {
			return fmt.Errorf("%w: url", ErrDuplicateBox)
		}
		u.url = v
	}
	return u.ContainerBox.Add(b)
}

// Describe exports the UUID info super-box.
func (u *UUIDInfoBox) Describe() *Node {
	return u.describe("UUIDInfoBox", TypeUUIDInfo)
}

func (u *UUIDInfoBox) readPayload(p *payload) error {
	return readChildren(p, u.Add)
}
