/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package dynamo stores entries in a single Amazon DynamoDB table. Each item
// carries the keyspace as its partition key and the entry id as its sort key,
// with the entity's own attributes flattened alongside. Reads go through
// per-keyspace decoders registered up front, so the adapter hands back typed
// values rather than raw attribute maps.
package dynamo
