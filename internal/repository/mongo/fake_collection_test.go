package mongo

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// fakeCollection keeps documents in memory and answers the filters the
// backends issue (match-all and {"id": n}).
type fakeCollection struct {
	mu   sync.Mutex
	docs []bson.M
	err  error

	deleteCalls int
}

var _ Collection = (*fakeCollection)(nil)

func toM(doc any) bson.M {
	b, err := bson.Marshal(doc)
	if err != nil {
		panic(err)
	}
	var m bson.M
	if err := bson.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	return m
}

func filterID(filter any) (int64, bool) {
	d, ok := filter.(bson.D)
	if !ok || len(d) == 0 || d[0].Key != "id" {
		return 0, false
	}
	return asInt64(d[0].Value)
}

func (f *fakeCollection) find(filter any) (int, bool) {
	id, ok := filterID(filter)
	if !ok {
		return -1, false
	}
	for i, doc := range f.docs {
		if v, ok := asInt64(doc["id"]); ok && v == id {
			return i, true
		}
	}
	return -1, false
}

func (f *fakeCollection) InsertOne(_ context.Context, document any, _ ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.docs = append(f.docs, toM(document))
	return &mongo.InsertOneResult{InsertedID: bson.NewObjectID()}, nil
}

func (f *fakeCollection) InsertMany(_ context.Context, documents any, _ ...options.Lister[options.InsertManyOptions]) (*mongo.InsertManyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	res := &mongo.InsertManyResult{}
	for _, d := range documents.([]any) {
		f.docs = append(f.docs, toM(d))
		res.InsertedIDs = append(res.InsertedIDs, bson.NewObjectID())
	}
	return res, nil
}

func (f *fakeCollection) DeleteMany(_ context.Context, _ any, _ ...options.Lister[options.DeleteManyOptions]) (*mongo.DeleteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.err != nil {
		return nil, f.err
	}
	n := len(f.docs)
	f.docs = nil
	return &mongo.DeleteResult{DeletedCount: int64(n)}, nil
}

func (f *fakeCollection) Find(_ context.Context, _ any, _ ...options.Lister[options.FindOptions]) (*mongo.Cursor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	docs := make([]any, 0, len(f.docs))
	for _, d := range f.docs {
		docs = append(docs, d)
	}
	return mongo.NewCursorFromDocuments(docs, nil, nil)
}

func (f *fakeCollection) FindOne(_ context.Context, filter any, _ ...options.Lister[options.FindOneOptions]) *mongo.SingleResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, f.err, nil)
	}
	i, ok := f.find(filter)
	if !ok {
		return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
	}
	return mongo.NewSingleResultFromDocument(f.docs[i], nil, nil)
}

func (f *fakeCollection) FindOneAndUpdate(_ context.Context, filter any, update any, opts ...options.Lister[options.FindOneAndUpdateOptions]) *mongo.SingleResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, f.err, nil)
	}
	i, ok := f.find(filter)
	if !ok {
		return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
	}

	var o options.FindOneAndUpdateOptions
	for _, l := range opts {
		for _, set := range l.List() {
			if err := set(&o); err != nil {
				return mongo.NewSingleResultFromDocument(bson.D{}, err, nil)
			}
		}
	}

	before := maps.Clone(f.docs[i])
	if err := applyUpdate(f.docs[i], update); err != nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, err, nil)
	}
	if o.ReturnDocument != nil && *o.ReturnDocument == options.After {
		return mongo.NewSingleResultFromDocument(f.docs[i], nil, nil)
	}
	return mongo.NewSingleResultFromDocument(before, nil, nil)
}

// applyUpdate understands $set stages, either as a plain update document or
// inside an aggregation pipeline. Pipeline values may be literals, "$field"
// references or {$not: ["$field"]}.
func applyUpdate(doc bson.M, update any) error {
	switch u := update.(type) {
	case mongo.Pipeline:
		for _, stage := range u {
			if err := applyStage(doc, stage, true); err != nil {
				return err
			}
		}
		return nil
	case bson.D:
		return applyStage(doc, u, false)
	default:
		return fmt.Errorf("fake collection: unsupported update %T", update)
	}
}

func applyStage(doc bson.M, stage bson.D, pipeline bool) error {
	for _, op := range stage {
		if op.Key != "$set" {
			return fmt.Errorf("fake collection: unsupported operator %s", op.Key)
		}
		fields, ok := op.Value.(bson.D)
		if !ok {
			return fmt.Errorf("fake collection: $set wants a document, got %T", op.Value)
		}
		for _, f := range fields {
			if !pipeline {
				doc[f.Key] = f.Value
				continue
			}
			v, err := evalExpr(doc, f.Value)
			if err != nil {
				return err
			}
			doc[f.Key] = v
		}
	}
	return nil
}

func evalExpr(doc bson.M, expr any) (any, error) {
	switch e := expr.(type) {
	case string:
		if strings.HasPrefix(e, "$") {
			return doc[strings.TrimPrefix(e, "$")], nil
		}
		return e, nil
	case bson.D:
		if len(e) != 1 || e[0].Key != "$not" {
			return nil, fmt.Errorf("fake collection: unsupported expression %v", e)
		}
		args, ok := e[0].Value.(bson.A)
		if !ok || len(args) != 1 {
			return nil, fmt.Errorf("fake collection: $not wants one argument")
		}
		v, err := evalExpr(doc, args[0])
		if err != nil {
			return nil, err
		}
		b, _ := v.(bool)
		return !b, nil
	default:
		return e, nil
	}
}

func TestFakeCollection_FindOneAndUpdateReturnDocument(t *testing.T) {
	ctx := context.Background()
	coll := &fakeCollection{docs: []bson.M{{"id": int64(7), "status": false}}}
	filter := bson.D{{Key: "id", Value: int64(7)}}
	set := bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: true}}}}

	var before bson.M
	require.NoError(t, coll.FindOneAndUpdate(ctx, filter, set).Decode(&before))
	assert.Equal(t, false, before["status"])
	assert.Equal(t, true, coll.docs[0]["status"])

	var after bson.M
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	require.NoError(t, coll.FindOneAndUpdate(ctx, filter, set, opts).Decode(&after))
	assert.Equal(t, true, after["status"])
}
