package embeddings

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
)

// stubClient returns deterministic vectors and records every chunk it saw.
type stubClient struct {
	calls      [][]string
	inputTypes []InputType
	failOnCall int // 1-based call ordinal to fail on, 0 means never
}

func (s *stubClient) Embed(ctx context.Context, texts []string, inputType InputType) ([][]float32, error) {
	s.calls = append(s.calls, append([]string(nil), texts...))
	s.inputTypes = append(s.inputTypes, inputType)
	if s.failOnCall > 0 && len(s.calls) == s.failOnCall {
		return nil, errors.New("stub: remote call failed")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = stubVector(t)
	}
	return out, nil
}

func stubVector(s string) []float32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = h*16777619 ^ uint32(s[i])
	}
	return []float32{float32(h % 10000), float32(len(s))}
}

func TestBatcher_ChunkCounts(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		batchSize int
		wantCalls int
	}{
		{name: "empty input", count: 0, batchSize: 4, wantCalls: 0},
		{name: "single chunk", count: 3, batchSize: 4, wantCalls: 1},
		{name: "exact multiple", count: 8, batchSize: 4, wantCalls: 2},
		{name: "trailing partial chunk", count: 9, batchSize: 4, wantCalls: 3},
		{name: "batch size one", count: 5, batchSize: 1, wantCalls: 5},
		{name: "batch larger than input", count: 2, batchSize: 100, wantCalls: 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubClient{}
			b, err := NewBatcher(stub, WithBatchSize(tc.batchSize))
			if err != nil {
				t.Fatalf("new batcher: %v", err)
			}
			texts := make([]string, tc.count)
			for i := range texts {
				texts[i] = fmt.Sprintf("text-%d", i)
			}
			vecs, err := b.EmbedDocuments(context.Background(), texts)
			if err != nil {
				t.Fatalf("embed: %v", err)
			}
			if len(stub.calls) != tc.wantCalls {
				t.Fatalf("expected %d calls, got %d", tc.wantCalls, len(stub.calls))
			}
			if len(vecs) != tc.count {
				t.Fatalf("expected %d vectors, got %d", tc.count, len(vecs))
			}
			for i, text := range texts {
				if !reflect.DeepEqual(vecs[i], stubVector(text)) {
					t.Fatalf("vector %d out of order", i)
				}
			}
		})
	}
}

func TestBatcher_ChunkBoundaries(t *testing.T) {
	stub := &stubClient{}
	b, err := NewBatcher(stub, WithBatchSize(2))
	if err != nil {
		t.Fatalf("new batcher: %v", err)
	}
	vecs, err := b.EmbedDocuments(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	wantCalls := [][]string{{"a", "b"}, {"c"}}
	if !reflect.DeepEqual(stub.calls, wantCalls) {
		t.Fatalf("expected calls %v, got %v", wantCalls, stub.calls)
	}
	if len(vecs) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vecs))
	}
	if !reflect.DeepEqual(vecs[2], stubVector("c")) {
		t.Fatalf("result[2] not derived from the second call")
	}
}

func TestBatcher_QueryEqualsSingleDocument(t *testing.T) {
	b, err := NewBatcher(&stubClient{}, WithBatchSize(8))
	if err != nil {
		t.Fatalf("new batcher: %v", err)
	}
	single, err := b.EmbedQuery(context.Background(), "hello")
	if err != nil {
		t.Fatalf("embed query: %v", err)
	}
	batch, err := b.EmbedDocuments(context.Background(), []string{"hello"})
	if err != nil {
		t.Fatalf("embed documents: %v", err)
	}
	if !reflect.DeepEqual(single, batch[0]) {
		t.Fatalf("query vector %v differs from batch vector %v", single, batch[0])
	}
}

func TestBatcher_InputType(t *testing.T) {
	stub := &stubClient{}
	b, err := NewBatcher(stub, WithBatchSize(2))
	if err != nil {
		t.Fatalf("new batcher: %v", err)
	}
	if _, err := b.EmbedDocuments(context.Background(), []string{"a", "b", "c"}); err != nil {
		t.Fatalf("embed documents: %v", err)
	}
	if _, err := b.EmbedQuery(context.Background(), "q"); err != nil {
		t.Fatalf("embed query: %v", err)
	}
	want := []InputType{Document, Document, Query}
	if !reflect.DeepEqual(stub.inputTypes, want) {
		t.Fatalf("expected input types %v, got %v", want, stub.inputTypes)
	}
}

func TestBatcher_Idempotent(t *testing.T) {
	b, err := NewBatcher(&stubClient{}, WithBatchSize(2))
	if err != nil {
		t.Fatalf("new batcher: %v", err)
	}
	texts := []string{"a", "b", "c", "d", "e"}
	first, err := b.EmbedDocuments(context.Background(), texts)
	if err != nil {
		t.Fatalf("first embed: %v", err)
	}
	second, err := b.EmbedDocuments(context.Background(), texts)
	if err != nil {
		t.Fatalf("second embed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical input produced different output")
	}
}

func TestBatcher_FailureSuppressesPartialResults(t *testing.T) {
	stub := &stubClient{failOnCall: 2}
	b, err := NewBatcher(stub, WithBatchSize(1))
	if err != nil {
		t.Fatalf("new batcher: %v", err)
	}
	vecs, err := b.EmbedDocuments(context.Background(), []string{"a", "b", "c"})
	if err == nil {
		t.Fatalf("expected failure from second chunk")
	}
	if vecs != nil {
		t.Fatalf("expected no partial results, got %d vectors", len(vecs))
	}
	if len(stub.calls) != 2 {
		t.Fatalf("expected dispatch to stop after the failing chunk, got %d calls", len(stub.calls))
	}
}

func TestBatcher_AsyncMatchesSync(t *testing.T) {
	texts := []string{"a", "b", "c", "d", "e"}
	sync, err := NewBatcher(&stubClient{}, WithBatchSize(2))
	if err != nil {
		t.Fatalf("new batcher: %v", err)
	}
	want, err := sync.EmbedDocuments(context.Background(), texts)
	if err != nil {
		t.Fatalf("sync embed: %v", err)
	}
	asyncStub := &stubClient{}
	async, err := NewBatcher(asyncStub, WithBatchSize(2))
	if err != nil {
		t.Fatalf("new batcher: %v", err)
	}
	result := <-async.EmbedDocumentsAsync(context.Background(), texts)
	if result.Err != nil {
		t.Fatalf("async embed: %v", result.Err)
	}
	if !reflect.DeepEqual(result.Vectors, want) {
		t.Fatalf("async output differs from sync output")
	}
	if len(asyncStub.calls) != 3 {
		t.Fatalf("expected 3 chunk calls, got %d", len(asyncStub.calls))
	}
}

func TestBatcher_Progress(t *testing.T) {
	var steps []int
	var totals []int
	b, err := NewBatcher(&stubClient{}, WithBatchSize(2), WithProgress(func(done, total int) {
		steps = append(steps, done)
		totals = append(totals, total)
	}))
	if err != nil {
		t.Fatalf("new batcher: %v", err)
	}
	if _, err := b.EmbedDocuments(context.Background(), []string{"a", "b", "c", "d", "e"}); err != nil {
		t.Fatalf("embed: %v", err)
	}
	if !reflect.DeepEqual(steps, []int{1, 2, 3}) {
		t.Fatalf("expected one notification per completed chunk, got %v", steps)
	}
	for i, total := range totals {
		if total != 3 {
			t.Fatalf("notification %d reported total %d, expected 3", i, total)
		}
	}
}

func TestBatcher_ProgressUnavailable(t *testing.T) {
	stub := &stubClient{}
	b, err := NewBatcher(stub, WithBatchSize(2), WithShowProgress(true))
	if err != nil {
		t.Fatalf("new batcher: %v", err)
	}
	_, err = b.EmbedDocuments(context.Background(), []string{"a"})
	if !errors.Is(err, ErrProgressUnavailable) {
		t.Fatalf("expected ErrProgressUnavailable, got %v", err)
	}
	if len(stub.calls) != 0 {
		t.Fatalf("expected no remote calls, got %d", len(stub.calls))
	}
}

func TestNewBatcher_Validation(t *testing.T) {
	if _, err := NewBatcher(nil); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if _, err := NewBatcher(&stubClient{}, WithBatchSize(0)); err == nil {
		t.Fatalf("expected error for zero batch size")
	}
	if _, err := NewBatcher(&stubClient{}, WithBatchSize(-3)); err == nil {
		t.Fatalf("expected error for negative batch size")
	}
}
