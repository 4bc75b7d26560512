package box

// Registered lists the type codes New maps to a dedicated variant.
var Registered = [...]Type{
	TypeFileType,
	TypeJP2Header,
	TypeImageHeader,
	TypeBitsPerComp,
	TypeColorSpec,
	TypePalette,
	TypeComponentMap,
	TypeChannelDef,
	TypeResolution,
	TypeCaptureRes,
	TypeDisplayRes,
	TypeContCodestream,
	TypeCodestreamH,
	TypeTilePartH,
	TypeXML,
	TypeUUID,
	TypeUUIDInfo,
	TypeUUIDList,
	TypeURL,
}

// New returns an empty box of the variant registered for t. Unknown type
// codes yield an *OpaqueBox that passes its contents through unchanged.
func New(t Type) Box {
	switch t {
	case TypeFileType:
		return &FileTypeBox{}
	case TypeJP2Header:
		return &HeaderBox{}
	case TypeImageHeader:
		return &ImageHeaderBox{}
	case TypeBitsPerComp:
		return &BitsPerCompBox{}
	case TypeColorSpec:
		return &ColorSpecBox{}
	case TypePalette:
		return &PaletteBox{}
	case TypeComponentMap:
		return &ComponentMapBox{}
	case TypeChannelDef:
		return &ChannelDefBox{}
	case TypeResolution:
		return &ResolutionSuperBox{}
	case TypeCaptureRes, TypeDisplayRes:
		return &ResolutionBox{kind: t}
	case TypeContCodestream:
		return &CodestreamBox{}
	case TypeCodestreamH, TypeTilePartH:
		return NewContainerBox(t)
	case TypeXML:
		return &XMLBox{}
	case TypeUUID:
		return &UUIDBox{}
	case TypeUUIDInfo:
		return &UUIDInfoBox{}
	case TypeUUIDList:
		return &UUIDListBox{}
	case TypeURL:
		return &URLBox{}
	default:
		return &OpaqueBox{typ: t}
	}
}

// IsRegistered reports whether t has a dedicated variant.
func IsRegistered(t Type) bool {
	for _, r := range Registered {
		if r == t {
			return true
		}
	}
	return false
}
