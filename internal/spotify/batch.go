package spotify

import "fmt"

// Per-request item caps documented by the Spotify Web API.
const (
	maxPlaylistTracksPerRequest = 100
	maxTrackIDsPerRequest       = 50
	maxArtistIDsPerRequest      = 50
	maxAlbumIDsPerRequest       = 20
)

// chunkStrings partitions xs into contiguous chunks of at most size elements,
// preserving order. An empty input produces no chunks.
func chunkStrings(xs []string, size int) [][]string {
	if size <= 0 || len(xs) == 0 {
		return nil
	}

	chunks := make([][]string, 0, (len(xs)+size-1)/size)
	for start := 0; start < len(xs); start += size {
		end := start + size
		if end > len(xs) {
			end = len(xs)
		}
		chunks = append(chunks, xs[start:end])
	}

	return chunks
}

// BatchError reports a failed chunk within a batched operation. Chunks before
// the failing one were already issued and are not rolled back.
type BatchError struct {
	Chunk   int // 1-based index of the failing chunk
	Applied int // number of chunks successfully issued before the failure
	Chunks  int // total chunks planned
	Err     error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch chunk %d of %d failed (%d applied): %v", e.Chunk, e.Chunks, e.Applied, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// batched splits items into chunks of at most size elements and issues them
// strictly in order through fn. It stops at the first failing chunk and
// surfaces a [BatchError]; already-issued chunks keep their effect. On
// success the result of the last chunk is returned, matching the snapshot
// semantics of Spotify's bulk playlist mutations. Zero items means zero
// calls and a zero result.
func batched[R any](items []string, size int, fn func(chunk []string) (R, error)) (R, error) {
	var last R

	chunks := chunkStrings(items, size)
	for i, chunk := range chunks {
		result, err := fn(chunk)
		if err != nil {
			return last, &BatchError{Chunk: i + 1, Applied: i, Chunks: len(chunks), Err: err}
		}
		last = result
	}

	return last, nil
}
