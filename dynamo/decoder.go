/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package dynamo

import (
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	kverrors "github.com/suparena/keyvalue/errors"
)

// Decoder reconstructs a stored value from its raw item attributes. The
// reserved key attributes are still present in the map; attributevalue
// unmarshalling ignores them for structs without matching fields.
type Decoder func(item map[string]types.AttributeValue) (any, error)

// RegisterDecoder wires the decoder used for every read in the keyspace.
// Registering a keyspace twice panics, mirroring the write-once rule for
// other registries.
func (a *Adapter) RegisterDecoder(keyspace string, dec Decoder) {
	if keyspace == "" || dec == nil {
		panic("dynamo: RegisterDecoder requires a keyspace and a decoder")
	}
	a.decMu.Lock()
	defer a.decMu.Unlock()
	if _, exists := a.decoders[keyspace]; exists {
		panic("dynamo: decoder already registered for keyspace " + keyspace)
	}
	a.decoders[keyspace] = dec
}

// RegisterDecoderFor registers a decoder that unmarshals items into *T.
func RegisterDecoderFor[T any](a *Adapter, keyspace string) {
	a.RegisterDecoder(keyspace, func(item map[string]types.AttributeValue) (any, error) {
		out := new(T)
		if err := attributevalue.UnmarshalMap(item, out); err != nil {
			return nil, err
		}
		return out, nil
	})
}

func (a *Adapter) decodeItem(keyspace string, item map[string]types.AttributeValue) (any, error) {
	a.decMu.RLock()
	dec, ok := a.decoders[keyspace]
	a.decMu.RUnlock()
	if !ok {
		return nil, kverrors.NewInvalidUsageError("no decoder registered for keyspace %q", keyspace)
	}
	return dec(item)
}
