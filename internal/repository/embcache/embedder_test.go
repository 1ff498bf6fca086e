package embcache

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/Shuvo1998/ThesisManagementSystem/internal/db"
	"github.com/Shuvo1998/ThesisManagementSystem/internal/domain"
)

type fakeKV struct {
	data   map[string][]byte
	getErr error
	setErr error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string][]byte)}
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	return nil
}

type countingEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (e *countingEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	e.calls++
	if e.err != nil {
		return domain.EmbeddingResult{}, e.err
	}
	return domain.EmbeddingResult{Embedding: e.vec}, nil
}

func TestEmbed_CachesSecondCall(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{0.1, -2.5, 3}}
	cache := New(inner, newFakeKV(), nil, zap.NewNop())

	first, err := cache.Embed(context.Background(), "Title. Abstract")
	if err != nil {
		t.Fatalf("first embed: %v", err)
	}

	second, err := cache.Embed(context.Background(), "Title. Abstract")
	if err != nil {
		t.Fatalf("second embed: %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", inner.calls)
	}
	if len(second.Embedding) != len(first.Embedding) {
		t.Fatalf("cached vector length mismatch")
	}
	for i := range first.Embedding {
		if first.Embedding[i] != second.Embedding[i] {
			t.Errorf("dim %d: %f != %f", i, first.Embedding[i], second.Embedding[i])
		}
	}
}

func TestEmbed_DifferentTextMisses(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{1}}
	cache := New(inner, newFakeKV(), nil, zap.NewNop())

	_, _ = cache.Embed(context.Background(), "one")
	_, _ = cache.Embed(context.Background(), "two")

	if inner.calls != 2 {
		t.Errorf("different texts must miss, got %d calls", inner.calls)
	}
}

func TestEmbed_StoreFailureFallsThrough(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{1}}
	kv := newFakeKV()
	kv.getErr = errors.New("connection reset")
	kv.setErr = errors.New("connection reset")
	cache := New(inner, kv, nil, zap.NewNop())

	res, err := cache.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("cache trouble must not fail embedding: %v", err)
	}
	if len(res.Embedding) != 1 {
		t.Errorf("unexpected result: %v", res.Embedding)
	}
}

func TestEmbed_InnerErrorPropagates(t *testing.T) {
	inner := &countingEmbedder{err: domain.ErrEmbeddingUnavailable}
	cache := New(inner, newFakeKV(), nil, zap.NewNop())

	if _, err := cache.Embed(context.Background(), "text"); !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
}

func TestVectorCodecRoundTrip(t *testing.T) {
	want := []float32{0, 1.5, -2.25, 3.14159}
	got, err := bytesToVector(vectorToCacheBytes(want))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("dim %d: %f != %f", i, got[i], want[i])
		}
	}

	if _, err := bytesToVector([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for truncated data")
	}
}
