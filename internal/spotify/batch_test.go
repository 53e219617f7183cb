package spotify

import (
	"errors"
	"testing"
)

func TestChunkStrings(t *testing.T) {
	t.Run("empty input produces no chunks", func(t *testing.T) {
		if got := chunkStrings(nil, 10); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
		if got := chunkStrings([]string{}, 10); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("non-positive size produces no chunks", func(t *testing.T) {
		if got := chunkStrings([]string{"a"}, 0); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("exact multiple", func(t *testing.T) {
		chunks := chunkStrings([]string{"a", "b", "c", "d"}, 2)
		if len(chunks) != 2 {
			t.Fatalf("expected 2 chunks, got %d", len(chunks))
		}
		if len(chunks[0]) != 2 || len(chunks[1]) != 2 {
			t.Errorf("expected chunks of 2, got %d and %d", len(chunks[0]), len(chunks[1]))
		}
	})

	t.Run("remainder goes in final chunk", func(t *testing.T) {
		chunks := chunkStrings([]string{"a", "b", "c", "d", "e"}, 2)
		if len(chunks) != 3 {
			t.Fatalf("expected 3 chunks, got %d", len(chunks))
		}
		if len(chunks[2]) != 1 || chunks[2][0] != "e" {
			t.Errorf("expected final chunk [e], got %v", chunks[2])
		}
	})

	t.Run("order preserved across chunks", func(t *testing.T) {
		input := []string{"a", "b", "c", "d", "e", "f", "g"}
		var flat []string
		for _, chunk := range chunkStrings(input, 3) {
			flat = append(flat, chunk...)
		}
		if len(flat) != len(input) {
			t.Fatalf("expected %d items, got %d", len(input), len(flat))
		}
		for i := range input {
			if flat[i] != input[i] {
				t.Errorf("position %d: expected %s, got %s", i, input[i], flat[i])
			}
		}
	})
}

func TestBatched(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e", "f", "g"}

	t.Run("returns last chunk result", func(t *testing.T) {
		calls := 0
		result, err := batched(items, 3, func(chunk []string) (string, error) {
			calls++
			return chunk[len(chunk)-1], nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 3 {
			t.Errorf("expected 3 calls, got %d", calls)
		}
		if result != "g" {
			t.Errorf("expected last chunk result g, got %s", result)
		}
	})

	t.Run("zero items means zero calls", func(t *testing.T) {
		calls := 0
		result, err := batched(nil, 3, func(chunk []string) (int, error) {
			calls++
			return 42, nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 0 {
			t.Errorf("expected no calls, got %d", calls)
		}
		if result != 0 {
			t.Errorf("expected zero result, got %d", result)
		}
	})

	t.Run("stops at first failing chunk", func(t *testing.T) {
		boom := errors.New("boom")
		calls := 0
		_, err := batched(items, 3, func(chunk []string) (struct{}, error) {
			calls++
			if calls == 2 {
				return struct{}{}, boom
			}
			return struct{}{}, nil
		})

		if calls != 2 {
			t.Errorf("expected 2 calls, got %d", calls)
		}

		var batchErr *BatchError
		if !errors.As(err, &batchErr) {
			t.Fatalf("expected BatchError, got %v", err)
		}
		if batchErr.Chunk != 2 {
			t.Errorf("expected failing chunk 2, got %d", batchErr.Chunk)
		}
		if batchErr.Applied != 1 {
			t.Errorf("expected 1 applied chunk, got %d", batchErr.Applied)
		}
		if batchErr.Chunks != 3 {
			t.Errorf("expected 3 planned chunks, got %d", batchErr.Chunks)
		}
		if !errors.Is(err, boom) {
			t.Errorf("expected error to unwrap to cause, got %v", err)
		}
	})
}
