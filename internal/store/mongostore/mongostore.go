// Package mongostore keeps contacts as documents in a MongoDB collection.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"gitlab.com/dirk.krummacker/contact-details/pkg/model"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// document is a contact as it is stored in the collection. The store key is the ObjectID in _id;
// the caller-supplied id lives in its own field.
type document struct {
	Key        bson.ObjectID `bson:"_id,omitempty"`
	Id         *int64        `bson:"id,omitempty"`
	FirstName  string        `bson:"FirstName"`
	LastName   string        `bson:"LastName"`
	Email      string        `bson:"Email"`
	Phone      string        `bson:"Phone"`
	PictureUrl string        `bson:"PictureUrl,omitempty"`
}

// Store is a contact store backed by a MongoDB collection.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Connect opens a connection to the MongoDB deployment at uri and uses the given collection.
func Connect(ctx context.Context, uri, database, collection string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", uri, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping %s: %w", uri, err)
	}
	return &Store{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// Close disconnects from the deployment.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndex creates the index used for the equality lookups on id.
func (s *Store) EnsureIndex(ctx context.Context) (string, error) {
	return s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetName("id_1"),
	})
}

// Insert adds a document for c and returns c with the new ObjectID as its store key.
func (s *Store) Insert(ctx context.Context, c model.Contact) (model.Contact, error) {
	doc := toDocument(c)
	doc.Key = bson.NewObjectID()
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return model.Contact{}, err
	}
	return doc.toContact(), nil
}

// FindAll returns all documents in natural order.
func (s *Store) FindAll(ctx context.Context) ([]model.Contact, error) {
	cursor, err := s.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	var docs []document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	contacts := make([]model.Contact, 0, len(docs))
	for _, doc := range docs {
		contacts = append(contacts, doc.toContact())
	}
	return contacts, nil
}

// FindOne returns the first document whose id equals the given id.
func (s *Store) FindOne(ctx context.Context, id int64) (model.Contact, bool, error) {
	var doc document
	err := s.collection.FindOne(ctx, idFilter(id)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Contact{}, false, nil
	}
	if err != nil {
		return model.Contact{}, false, err
	}
	return doc.toContact(), true, nil
}

// DeleteOne removes the first document whose id equals the given id.
func (s *Store) DeleteOne(ctx context.Context, id int64) (int64, error) {
	result, err := s.collection.DeleteOne(ctx, idFilter(id))
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// Replace overwrites the document with the ObjectID of c. The whole document is written at once.
func (s *Store) Replace(ctx context.Context, c model.Contact) (bool, error) {
	key, err := bson.ObjectIDFromHex(c.Key)
	if err != nil {
		return false, fmt.Errorf("invalid store key %q: %w", c.Key, err)
	}
	doc := toDocument(c)
	doc.Key = key
	result, err := s.collection.ReplaceOne(ctx, bson.D{{Key: "_id", Value: key}}, doc)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

// Ping checks that the primary can be reached.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func idFilter(id int64) bson.D {
	return bson.D{{Key: "id", Value: id}}
}

func toDocument(c model.Contact) document {
	doc := document{
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Email:      c.Email,
		Phone:      c.Phone,
		PictureUrl: c.PictureUrl,
	}
	if c.Id != nil {
		doc.Id = model.Int64(*c.Id)
	}
	return doc
}

func (d document) toContact() model.Contact {
	c := model.Contact{
		FirstName:  d.FirstName,
		LastName:   d.LastName,
		Email:      d.Email,
		Phone:      d.Phone,
		PictureUrl: d.PictureUrl,
	}
	if !d.Key.IsZero() {
		c.Key = d.Key.Hex()
	}
	if d.Id != nil {
		c.Id = model.Int64(*d.Id)
	}
	return c
}
