package mate

// Options holds the searcher's configuration knobs. Each setter on
// KomoringHeights takes effect on the next Search; the USI layer maps
// setoption key/value pairs onto them one at a time.
type Options struct {
	// USIHash is the transposition table size in MiB.
	USIHash int
	// DepthLimit is the maximum ply depth; 0 means unlimited.
	DepthLimit int
	// NodesLimit is the maximum node-effort count per search; 0 means
	// unlimited.
	NodesLimit uint64
	// PvIntervalMs is the info emission period in milliseconds.
	PvIntervalMs int
	// YozumeNodeCount and YozumePath are accepted and stored so
	// setoption never errors; nothing downstream reads them yet.
	YozumeNodeCount int
	YozumePath      int
	// RootIsAndNodeIfChecked: if true and the root is in check, treat
	// the root as an AND node rather than an OR node.
	RootIsAndNodeIfChecked bool
}

// DefaultOptions returns the defaults advertised by the "usi"
// handshake.
func DefaultOptions() Options {
	return Options{
		USIHash:         64,
		DepthLimit:      0,
		NodesLimit:      0,
		PvIntervalMs:    1000,
		YozumeNodeCount: 300,
		YozumePath:      10000,
	}
}
