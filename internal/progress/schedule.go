package progress

// Progress checkpoints of a chunked run, in percent.
const (
	PctValidated   = 5
	PctStrategy    = 10
	PctCountStart  = 15
	PctCountEnd    = 25
	PctReference   = 30
	PctChunksStart = 35
	PctChunksEnd   = 90
	PctCombine     = 92
	PctSave        = 95
	PctDone        = 100
)

// ChunkProgress maps a finished chunk to a percentage between PctChunksStart
// and PctChunksEnd. Unknown totals report PctChunksStart.
func ChunkProgress(chunk, totalChunks int) int {
	if totalChunks <= 0 {
		return PctChunksStart
	}
	p := PctChunksStart + chunk*(PctChunksEnd-PctChunksStart)/totalChunks
	if p > PctChunksEnd {
		p = PctChunksEnd
	}
	return p
}

// TotalChunks is the number of chunks needed for rows, rounding up.
func TotalChunks(rows, chunkSize int) int {
	if rows <= 0 || chunkSize <= 0 {
		return 0
	}
	return (rows + chunkSize - 1) / chunkSize
}
