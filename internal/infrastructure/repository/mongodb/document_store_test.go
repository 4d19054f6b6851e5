package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDocumentFromBSON(t *testing.T) {
	created := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	raw := bson.M{
		"_id":    "u1",
		"name":   "Ann",
		"badges": bson.A{"rookie", "sniper"},
		"stats":  bson.D{{Key: "wins", Value: int32(3)}},
		"joined": primitive.NewDateTimeFromTime(created),
	}

	doc := documentFromBSON("u1", raw)

	assert.Equal(t, "u1", doc.ID)
	assert.NotContains(t, doc.Fields, "_id")
	assert.Equal(t, []any{"rookie", "sniper"}, doc.Fields["badges"])
	assert.Equal(t, map[string]any{"wins": int32(3)}, doc.Fields["stats"])
	assert.Equal(t, created, doc.Fields["joined"])
}

func TestNormalizeObjectID(t *testing.T) {
	oid := primitive.NewObjectID()
	assert.Equal(t, oid.Hex(), normalize(oid))
}
