package listcrdt

// Algorithm selects which integration kernel and local-insert generator a
// Doc uses. This is the "tagged variant selecting the integration kernel
// and generator at document construction" from the design notes — plain
// enum dispatch, not an interface hierarchy.
type Algorithm int

const (
	// YjsClassic reproduces upstream Yjs's tie-breaking, including its
	// forward/back-interleaving resolution.
	YjsClassic Algorithm = iota
	// YjsMod is the simplified/modified Yjs tie-break used by the rest of
	// this family of implementations.
	YjsMod
	// RGA is the Automerge-compatible variant: only originLeft (parent)
	// plus a Lamport seq are used for tie-breaking.
	RGA
	// Sync9 is the Sync9/Loom algorithm, including split markers.
	Sync9
	// Fugue is the tree-backed variant; Doc values never carry this tag —
	// Fugue documents live in the listcrdt/fugue package. It is listed
	// here only so config/demo code has one Algorithm enum to name all
	// five variants with.
	Fugue
)

func (a Algorithm) String() string {
	switch a {
	case YjsClassic:
		return "yjs"
	case YjsMod:
		return "yjs-mod"
	case RGA:
		return "rga"
	case Sync9:
		return "sync9"
	case Fugue:
		return "fugue"
	default:
		return "unknown"
	}
}

// ParseAlgorithm maps a config string onto an Algorithm. Used by storage
// and config to select a variant by name.
func ParseAlgorithm(s string) (Algorithm, bool) {
	switch s {
	case "yjs", "yjs-classic":
		return YjsClassic, true
	case "yjs-mod", "yjsmod":
		return YjsMod, true
	case "rga", "automerge":
		return RGA, true
	case "sync9":
		return Sync9, true
	case "fugue":
		return Fugue, true
	default:
		return 0, false
	}
}
