/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package dynamo_test

import (
	"context"
	"sort"
	"sync"
	"testing"

	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/keyvalue/dynamo"
	kverrors "github.com/suparena/keyvalue/errors"
	"github.com/suparena/keyvalue/query"
)

func adapterQuery(criteria string) *query.Query {
	return query.New().WithCriteria(criteria)
}

type product struct {
	Name  string `dynamodbav:"Name"`
	Price int    `dynamodbav:"Price"`
}

// fakeClient is an in-memory stand-in for the DynamoDB API: a two-level
// keyspace → id → item map keyed off the reserved key attributes.
type fakeClient struct {
	mu    sync.Mutex
	items map[string]map[string]map[string]types.AttributeValue
}

func newFakeClient() *fakeClient {
	return &fakeClient{items: make(map[string]map[string]map[string]types.AttributeValue)}
}

func keyStrings(key map[string]types.AttributeValue) (ks, id string) {
	if s, ok := key["KS"].(*types.AttributeValueMemberS); ok {
		ks = s.Value
	}
	if s, ok := key["KID"].(*types.AttributeValueMemberS); ok {
		id = s.Value
	}
	return ks, id
}

func (f *fakeClient) GetItem(ctx context.Context, in *sdk.GetItemInput, _ ...func(*sdk.Options)) (*sdk.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ks, id := keyStrings(in.Key)
	item, ok := f.items[ks][id]
	if !ok {
		return &sdk.GetItemOutput{}, nil
	}
	return &sdk.GetItemOutput{Item: item}, nil
}

func (f *fakeClient) PutItem(ctx context.Context, in *sdk.PutItemInput, _ ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ks, id := keyStrings(in.Item)
	if f.items[ks] == nil {
		f.items[ks] = make(map[string]map[string]types.AttributeValue)
	}
	prev := f.items[ks][id]
	f.items[ks][id] = in.Item
	return &sdk.PutItemOutput{Attributes: prev}, nil
}

func (f *fakeClient) DeleteItem(ctx context.Context, in *sdk.DeleteItemInput, _ ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ks, id := keyStrings(in.Key)
	prev := f.items[ks][id]
	delete(f.items[ks], id)
	return &sdk.DeleteItemOutput{Attributes: prev}, nil
}

func (f *fakeClient) Query(ctx context.Context, in *sdk.QueryInput, _ ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ks := ""
	if s, ok := in.ExpressionAttributeValues[":ks"].(*types.AttributeValueMemberS); ok {
		ks = s.Value
	}

	ids := make([]string, 0, len(f.items[ks]))
	for id := range f.items[ks] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := &sdk.QueryOutput{Count: int32(len(ids))}
	for _, id := range ids {
		out.Items = append(out.Items, f.items[ks][id])
	}
	return out, nil
}

func (f *fakeClient) Scan(ctx context.Context, in *sdk.ScanInput, _ ...func(*sdk.Options)) (*sdk.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := &sdk.ScanOutput{}
	for _, byID := range f.items {
		for _, item := range byID {
			out.Items = append(out.Items, item)
		}
	}
	return out, nil
}

func (f *fakeClient) BatchWriteItem(ctx context.Context, in *sdk.BatchWriteItemInput, _ ...func(*sdk.Options)) (*sdk.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, writes := range in.RequestItems {
		for _, w := range writes {
			if w.DeleteRequest == nil {
				continue
			}
			ks, id := keyStrings(w.DeleteRequest.Key)
			delete(f.items[ks], id)
		}
	}
	return &sdk.BatchWriteItemOutput{}, nil
}

func newAdapter() (*dynamo.Adapter, *fakeClient) {
	client := newFakeClient()
	a := dynamo.New(client, "test-table")
	dynamo.RegisterDecoderFor[product](a, "products")
	return a, client
}

func TestAdapterCRUD(t *testing.T) {
	ctx := context.Background()

	t.Run("PutGetDelete", func(t *testing.T) {
		a, _ := newAdapter()

		prev, err := a.Put(ctx, "1", "products", product{Name: "bolt", Price: 3}).Await(ctx)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if prev != nil {
			t.Fatalf("expected no previous value, got %v", prev)
		}

		got, err := a.Get(ctx, "1", "products").Await(ctx)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		p, ok := got.(*product)
		if !ok || p.Name != "bolt" || p.Price != 3 {
			t.Fatalf("unexpected value: %#v", got)
		}

		removed, err := a.Delete(ctx, "1", "products").Await(ctx)
		if err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if removed.(*product).Name != "bolt" {
			t.Fatalf("Delete returned %v", removed)
		}

		if got, _ := a.Get(ctx, "1", "products").Await(ctx); got != nil {
			t.Fatalf("expected absence after delete, got %v", got)
		}
	})

	t.Run("PutReturnsPrevious", func(t *testing.T) {
		a, _ := newAdapter()
		a.Put(ctx, "1", "products", product{Name: "old", Price: 1}).Await(ctx)

		prev, err := a.Put(ctx, "1", "products", product{Name: "new", Price: 2}).Await(ctx)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if prev.(*product).Name != "old" {
			t.Fatalf("expected previous value, got %v", prev)
		}
	})

	t.Run("ContainsWithoutDecoder", func(t *testing.T) {
		a, _ := newAdapter()
		a.Put(ctx, "1", "undecoded", map[string]string{"k": "v"}).Await(ctx)

		ok, err := a.Contains(ctx, "1", "undecoded").Await(ctx)
		if err != nil || !ok {
			t.Fatalf("Contains: %v, %v", ok, err)
		}
	})

	t.Run("MissingDecoderFailsReads", func(t *testing.T) {
		a, _ := newAdapter()
		a.Put(ctx, "1", "undecoded", map[string]string{"k": "v"}).Await(ctx)

		if _, err := a.Get(ctx, "1", "undecoded").Await(ctx); !kverrors.IsInvalidUsage(err) {
			t.Fatalf("expected invalid usage, got %v", err)
		}
	})

	t.Run("EmptyArgumentsRejected", func(t *testing.T) {
		a, _ := newAdapter()
		if _, err := a.Put(ctx, "", "products", product{}).Await(ctx); !kverrors.IsInvalidUsage(err) {
			t.Fatalf("expected invalid usage, got %v", err)
		}
	})
}

func TestAdapterEnumeration(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) *dynamo.Adapter {
		t.Helper()
		a, _ := newAdapter()
		for _, p := range []struct {
			id string
			v  product
		}{
			{"1", product{Name: "bolt", Price: 3}},
			{"2", product{Name: "nut", Price: 8}},
			{"3", product{Name: "gear", Price: 21}},
		} {
			if _, err := a.Put(ctx, p.id, "products", p.v).Await(ctx); err != nil {
				t.Fatalf("seed failed: %v", err)
			}
		}
		return a
	}

	t.Run("Count", func(t *testing.T) {
		a := seed(t)
		n, err := a.Count(ctx, "products").Await(ctx)
		if err != nil || n != 3 {
			t.Fatalf("Count: %d, %v", n, err)
		}
	})

	t.Run("Entries", func(t *testing.T) {
		a := seed(t)
		entries, err := a.Entries(ctx, "products").Collect(ctx)
		if err != nil {
			t.Fatalf("Entries failed: %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(entries))
		}
		if entries[0].ID != "1" || entries[0].Value.(*product).Name != "bolt" {
			t.Fatalf("unexpected first entry: %+v", entries[0])
		}
	})

	t.Run("GetAllOf", func(t *testing.T) {
		a := seed(t)
		values, err := a.GetAllOf(ctx, "products").Collect(ctx)
		if err != nil || len(values) != 3 {
			t.Fatalf("GetAllOf: %d values, %v", len(values), err)
		}
	})

	t.Run("FindThroughEngine", func(t *testing.T) {
		a := seed(t)
		got, err := a.Find(ctx, adapterQuery("Price > 5"), "products").Collect(ctx)
		if err != nil {
			t.Fatalf("Find failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 matches, got %v", got)
		}
	})

	t.Run("DeleteAllOf", func(t *testing.T) {
		a := seed(t)
		if _, err := a.DeleteAllOf(ctx, "products").Await(ctx); err != nil {
			t.Fatalf("DeleteAllOf failed: %v", err)
		}
		if n, _ := a.Count(ctx, "products").Await(ctx); n != 0 {
			t.Fatalf("keyspace not emptied: %d", n)
		}
	})
}

func TestDecoderRegistration(t *testing.T) {
	t.Run("DuplicatePanics", func(t *testing.T) {
		a, _ := newAdapter()
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic on duplicate decoder registration")
			}
		}()
		dynamo.RegisterDecoderFor[product](a, "products")
	})
}
