/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package async_test

import (
	"context"
	"errors"
	"testing"

	"github.com/suparena/keyvalue/async"
	kverrors "github.com/suparena/keyvalue/errors"
)

func TestStream(t *testing.T) {
	ctx := context.Background()

	t.Run("ProduceAndCollect", func(t *testing.T) {
		s := async.Produce(ctx, func(ctx context.Context, yield func(int) bool) error {
			for i := 1; i <= 5; i++ {
				if !yield(i) {
					return nil
				}
			}
			return nil
		})
		got, err := s.Collect(ctx)
		if err != nil {
			t.Fatalf("Collect failed: %v", err)
		}
		if len(got) != 5 || got[0] != 1 || got[4] != 5 {
			t.Fatalf("unexpected elements: %v", got)
		}
	})

	t.Run("Of", func(t *testing.T) {
		got, err := async.Of("a", "b").Collect(ctx)
		if err != nil || len(got) != 2 {
			t.Fatalf("got %v, %v", got, err)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		got, err := async.Empty[int]().Collect(ctx)
		if err != nil {
			t.Fatalf("Collect failed: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected no elements, got %v", got)
		}
	})

	t.Run("ProducerError", func(t *testing.T) {
		boom := errors.New("boom")
		s := async.Produce(ctx, func(ctx context.Context, yield func(int) bool) error {
			yield(1)
			return boom
		})
		if _, err := s.Collect(ctx); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
	})

	t.Run("FailStream", func(t *testing.T) {
		boom := errors.New("boom")
		_, ok, err := async.FailStream[int](boom).Next(ctx)
		if ok || !errors.Is(err, boom) {
			t.Fatalf("got ok=%v err=%v", ok, err)
		}
	})

	t.Run("NextAfterExhaustion", func(t *testing.T) {
		s := async.Of(1)
		if _, ok, err := s.Next(ctx); !ok || err != nil {
			t.Fatalf("first Next: ok=%v err=%v", ok, err)
		}
		if _, ok, err := s.Next(ctx); ok || err != nil {
			t.Fatalf("exhausted Next: ok=%v err=%v", ok, err)
		}
	})

	t.Run("CancelStopsProducer", func(t *testing.T) {
		stopped := make(chan struct{})
		s := async.Produce(ctx, func(ctx context.Context, yield func(int) bool) error {
			defer close(stopped)
			i := 0
			for yield(i) {
				i++
			}
			return nil
		}, async.WithBufferSize(1))
		if _, ok, err := s.Next(ctx); !ok || err != nil {
			t.Fatalf("Next: ok=%v err=%v", ok, err)
		}
		s.Cancel()
		<-stopped
	})

	t.Run("Transform", func(t *testing.T) {
		src := async.Of(1, 2, 3, 4)
		evens := async.Transform(ctx, src, func(v int) (string, bool, error) {
			if v%2 != 0 {
				return "", false, nil
			}
			return string(rune('a' + v)), true, nil
		})
		got, err := evens.Collect(ctx)
		if err != nil {
			t.Fatalf("Collect failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 elements, got %v", got)
		}
	})

	t.Run("TransformError", func(t *testing.T) {
		boom := errors.New("boom")
		derived := async.Transform(ctx, async.Of(1), func(v int) (int, bool, error) {
			return 0, false, boom
		})
		if _, err := derived.Collect(ctx); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
	})
}

func TestCardinality(t *testing.T) {
	ctx := context.Background()

	t.Run("OneExactly", func(t *testing.T) {
		got, err := async.One(ctx, async.Of(9))
		if err != nil || got != 9 {
			t.Fatalf("got %d, %v", got, err)
		}
	})

	t.Run("OneEmpty", func(t *testing.T) {
		_, err := async.One(ctx, async.Empty[int]())
		if !kverrors.IsMultiplicity(err) {
			t.Fatalf("expected multiplicity error, got %v", err)
		}
	})

	t.Run("OneTooMany", func(t *testing.T) {
		_, err := async.One(ctx, async.Of(1, 2))
		if !kverrors.IsMultiplicity(err) {
			t.Fatalf("expected multiplicity error, got %v", err)
		}
	})

	t.Run("AtMostOneEmpty", func(t *testing.T) {
		_, ok, err := async.AtMostOne(ctx, async.Empty[int]())
		if err != nil || ok {
			t.Fatalf("got ok=%v err=%v", ok, err)
		}
	})

	t.Run("AtMostOneSingle", func(t *testing.T) {
		got, ok, err := async.AtMostOne(ctx, async.Of(3))
		if err != nil || !ok || got != 3 {
			t.Fatalf("got %d ok=%v err=%v", got, ok, err)
		}
	})

	t.Run("AtMostOneTooMany", func(t *testing.T) {
		_, _, err := async.AtMostOne(ctx, async.Of(1, 2))
		if !kverrors.IsMultiplicity(err) {
			t.Fatalf("expected multiplicity error, got %v", err)
		}
	})
}
