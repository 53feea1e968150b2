/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package async_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/suparena/keyvalue/async"
)

func TestTask(t *testing.T) {
	ctx := context.Background()

	t.Run("RunAndAwait", func(t *testing.T) {
		task := async.Run(ctx, func(ctx context.Context) (int, error) {
			return 42, nil
		})
		got, err := task.Await(ctx)
		if err != nil {
			t.Fatalf("Await failed: %v", err)
		}
		if got != 42 {
			t.Fatalf("expected 42, got %d", got)
		}
	})

	t.Run("AwaitIsRepeatable", func(t *testing.T) {
		task := async.Done("hello")
		for i := 0; i < 3; i++ {
			got, err := task.Await(ctx)
			if err != nil || got != "hello" {
				t.Fatalf("Await #%d: got %q, %v", i, got, err)
			}
		}
	})

	t.Run("Fail", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := async.Fail[int](boom).Await(ctx)
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
	})

	t.Run("RunError", func(t *testing.T) {
		boom := errors.New("boom")
		task := async.Run(ctx, func(ctx context.Context) (int, error) {
			return 0, boom
		})
		if _, err := task.Await(ctx); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
	})

	t.Run("Then", func(t *testing.T) {
		task := async.Then(ctx, async.Done(7), func(v int) (string, error) {
			if v != 7 {
				t.Errorf("Then received %d", v)
			}
			return "seven", nil
		})
		got, err := task.Await(ctx)
		if err != nil || got != "seven" {
			t.Fatalf("got %q, %v", got, err)
		}
	})

	t.Run("ThenSkipsOnError", func(t *testing.T) {
		boom := errors.New("boom")
		called := false
		task := async.Then(ctx, async.Fail[int](boom), func(v int) (int, error) {
			called = true
			return v, nil
		})
		if _, err := task.Await(ctx); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
		if called {
			t.Fatal("Then ran after a failed task")
		}
	})

	t.Run("Cancel", func(t *testing.T) {
		started := make(chan struct{})
		task := async.Run(ctx, func(ctx context.Context) (int, error) {
			close(started)
			<-ctx.Done()
			return 0, ctx.Err()
		})
		<-started
		task.Cancel()
		if _, err := task.Await(ctx); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("AwaitHonorsContext", func(t *testing.T) {
		task := async.Run(ctx, func(ctx context.Context) (int, error) {
			time.Sleep(time.Second)
			return 1, nil
		})
		short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()
		if _, err := task.Await(short); !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected deadline exceeded, got %v", err)
		}
	})
}
