package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/dirk.krummacker/contact-details/pkg/model"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// TestDocumentMapping converts a contact to a document and back.
func TestDocumentMapping(t *testing.T) {
	key := bson.NewObjectID()
	c := model.Contact{
		Key:        key.Hex(),
		Id:         model.Int64(29),
		FirstName:  "Erika",
		LastName:   "Mustermann",
		Email:      "erika@example.com",
		Phone:      "0123456789",
		PictureUrl: "data:image/png;base64,AA",
	}

	doc := toDocument(c)
	assert.True(t, doc.Key.IsZero(), "the key is set by the store operations")
	doc.Key = key
	assert.Equal(t, c, doc.toContact())

	withoutId := toDocument(model.Contact{FirstName: "Rudi"})
	assert.Nil(t, withoutId.Id)
	assert.Equal(t, "", withoutId.toContact().Key)
}

// TestDocumentBSON checks the field names as they appear in the collection.
func TestDocumentBSON(t *testing.T) {
	raw, err := bson.Marshal(toDocument(model.Contact{Id: model.Int64(3), FirstName: "Erika"}))
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	assert.Equal(t, int64(3), m["id"])
	assert.Equal(t, "Erika", m["FirstName"])
	_, hasKey := m["_id"]
	assert.False(t, hasKey)
	_, hasPicture := m["PictureUrl"]
	assert.False(t, hasPicture)
}

func TestReplaceInvalidKey(t *testing.T) {
	s := &Store{}
	_, err := s.Replace(context.Background(), model.Contact{Key: "17"})
	assert.ErrorContains(t, err, "invalid store key")
}

// connectTestStore connects to the deployment given by MONGO_TEST_URI and uses a fresh collection.
// The test is skipped without a deployment.
func connectTestStore(t *testing.T) *Store {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s, err := Connect(ctx, uri, "contact_details_test", "contacts_"+bson.NewObjectID().Hex())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.collection.Drop(context.Background())
		_ = s.Close(context.Background())
	})
	return s
}

func TestStoreLifecycle(t *testing.T) {
	s := connectTestStore(t)
	ctx := context.Background()

	_, err := s.EnsureIndex(ctx)
	require.NoError(t, err)

	all, err := s.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	saved, err := s.Insert(ctx, model.Contact{Id: model.Int64(1), FirstName: "A", LastName: "B"})
	require.NoError(t, err)
	assert.Len(t, saved.Key, 24)

	found, ok, err := s.FindOne(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, saved, found)

	found.FirstName = "C"
	replaced, err := s.Replace(ctx, found)
	require.NoError(t, err)
	assert.True(t, replaced)

	found, _, _ = s.FindOne(ctx, 1)
	assert.Equal(t, "C", found.FirstName)
	assert.Equal(t, "B", found.LastName)

	deleted, err := s.DeleteOne(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	deleted, err = s.DeleteOne(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)

	_, ok, err = s.FindOne(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}
