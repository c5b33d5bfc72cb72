package headless

import "fmt"

// Enum is a GL enumerant.
type Enum uint32

// Bitfield is a GL bit mask, as passed to Clear.
type Bitfield uint32

const (
	NO_ERROR                      Enum = 0
	INVALID_ENUM                  Enum = 0x0500
	INVALID_VALUE                 Enum = 0x0501
	INVALID_OPERATION             Enum = 0x0502
	OUT_OF_MEMORY                 Enum = 0x0505
	INVALID_FRAMEBUFFER_OPERATION Enum = 0x0506

	FRAMEBUFFER      Enum = 0x8D40
	READ_FRAMEBUFFER Enum = 0x8CA8
	DRAW_FRAMEBUFFER Enum = 0x8CA9

	ARRAY_BUFFER         Enum = 0x8892
	ELEMENT_ARRAY_BUFFER Enum = 0x8893
	STREAM_DRAW          Enum = 0x88E0
	STATIC_DRAW          Enum = 0x88E4
	DYNAMIC_DRAW         Enum = 0x88E8

	POINTS         Enum = 0x0000
	LINES          Enum = 0x0001
	LINE_STRIP     Enum = 0x0003
	TRIANGLES      Enum = 0x0004
	TRIANGLE_STRIP Enum = 0x0005

	UNSIGNED_BYTE  Enum = 0x1401
	UNSIGNED_SHORT Enum = 0x1403
	UNSIGNED_INT   Enum = 0x1405
	FLOAT          Enum = 0x1406

	RGBA Enum = 0x1908

	FRAGMENT_SHADER Enum = 0x8B30
	VERTEX_SHADER   Enum = 0x8B31
	DELETE_STATUS   Enum = 0x8B80
	COMPILE_STATUS  Enum = 0x8B81
	LINK_STATUS     Enum = 0x8B82
	INFO_LOG_LENGTH Enum = 0x8B84
	SHADER_TYPE     Enum = 0x8B4F
)

const (
	DEPTH_BUFFER_BIT   Bitfield = 0x00000100
	STENCIL_BUFFER_BIT Bitfield = 0x00000400
	COLOR_BUFFER_BIT   Bitfield = 0x00004000
)

const (
	FALSE = 0
	TRUE  = 1
)

var enumNames = map[Enum]string{
	INVALID_ENUM:                  "INVALID_ENUM",
	INVALID_VALUE:                 "INVALID_VALUE",
	INVALID_OPERATION:             "INVALID_OPERATION",
	OUT_OF_MEMORY:                 "OUT_OF_MEMORY",
	INVALID_FRAMEBUFFER_OPERATION: "INVALID_FRAMEBUFFER_OPERATION",
	FRAMEBUFFER:                   "FRAMEBUFFER",
	READ_FRAMEBUFFER:              "READ_FRAMEBUFFER",
	DRAW_FRAMEBUFFER:              "DRAW_FRAMEBUFFER",
	ARRAY_BUFFER:                  "ARRAY_BUFFER",
	ELEMENT_ARRAY_BUFFER:          "ELEMENT_ARRAY_BUFFER",
	STREAM_DRAW:                   "STREAM_DRAW",
	STATIC_DRAW:                   "STATIC_DRAW",
	DYNAMIC_DRAW:                  "DYNAMIC_DRAW",
	UNSIGNED_BYTE:                 "UNSIGNED_BYTE",
	UNSIGNED_SHORT:                "UNSIGNED_SHORT",
	UNSIGNED_INT:                  "UNSIGNED_INT",
	FLOAT:                         "FLOAT",
	RGBA:                          "RGBA",
	FRAGMENT_SHADER:               "FRAGMENT_SHADER",
	VERTEX_SHADER:                 "VERTEX_SHADER",
	DELETE_STATUS:                 "DELETE_STATUS",
	COMPILE_STATUS:                "COMPILE_STATUS",
	LINK_STATUS:                   "LINK_STATUS",
	INFO_LOG_LENGTH:               "INFO_LOG_LENGTH",
	SHADER_TYPE:                   "SHADER_TYPE",
}

// String returns the GL name of e. Primitive modes share values with other
// enumerants and print as hex.
func (e Enum) String() string {
	if e == NO_ERROR {
		return "NO_ERROR"
	}
	if s, ok := enumNames[e]; ok {
		return s
	}
	return fmt.Sprintf("0x%04X", uint32(e))
}
