package renderer

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Number of row-block workers. Zero selects one per logical CPU.
	Workers int

	// Number of frames to render before stopping. Zero means unbounded
	// (interactive mode keeps accumulating probe history).
	FrameCount uint32

	// Also run the edge-aware filter over the direct lighting buffer.
	DenoiseDirect bool
}
