package native

// Ptr is an opaque handle to a resource owned by a Library.
// The zero value is the null handle.
type Ptr uintptr

// IsNull returns true for the null handle
func (p Ptr) IsNull() bool {
	return p == 0
}

// AlgoKind selects the algorithm reported by ParamsAlgo
type AlgoKind uint

// Algorithm kinds, values match PGPVAL_* of librpmio
const (
	AlgoPubKey AlgoKind = 6
	AlgoHash   AlgoKind = 9
)

// PacketTag is an OpenPGP packet tag
type PacketTag uint

// TagSignature is the tag of a signature packet
const TagSignature PacketTag = 2

// MacroLevelCmdline marks a macro as set on the command line (RMIL_CMDLINE)
const MacroLevelCmdline = -7

// MacroDBPath is the macro overridden by the configuration path
const MacroDBPath = "_dbpath"

// Library is the set of native entry points used for signature intake.
type Library interface {
	// Name returns the engine name
	Name() string

	// ReadConfigFiles loads the library configuration.
	// Must be called once, before any other call.
	ReadConfigFiles() error

	// PushMacro defines a macro with the given value at the given level
	PushMacro(name, value string, level int) error

	// ParseParams parses a packet of the given tag and returns a handle
	// to its parameters. The input must already be validated.
	ParseParams(pkt []byte, tag PacketTag) (Ptr, error)

	// ParamsAlgo returns the algorithm of the given kind
	ParamsAlgo(params Ptr, kind AlgoKind) uint

	// FreeParams releases the parameters and returns the null handle.
	// Freeing the null handle is a no-op.
	FreeParams(params Ptr) Ptr

	// DigestInit creates a digest context for the hash algorithm,
	// or returns the null handle if the algorithm is not supported.
	DigestInit(algo uint8) Ptr

	// DigestUpdate feeds data into the digest context
	DigestUpdate(ctx Ptr, data []byte)

	// DigestFree releases the digest context.
	// Freeing the null handle is a no-op.
	DigestFree(ctx Ptr)

	// DigestLength returns the output size of the hash algorithm,
	// or zero if the algorithm is not supported.
	DigestLength(algo uint8) int
}
