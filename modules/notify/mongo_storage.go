package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const mongoCollection = "notifications"

// MongoStorage implements Storage on a MongoDB collection. It covers only
// the notification records; member and role lookups stay with a
// relational or in-memory Directory.
type MongoStorage struct {
	coll *mongo.Collection
}

// NewMongoStorage binds to the notifications collection of db.
func NewMongoStorage(db *mongo.Database) *MongoStorage {
	return &MongoStorage{coll: db.Collection(mongoCollection)}
}

// mongoNotification is the persisted document shape. UUIDs are stored as
// strings to keep documents readable in shell tooling.
type mongoNotification struct {
	ID          string    `bson:"_id"`
	MemberID    string    `bson:"member_id"`
	MemberEmail string    `bson:"member_email"`
	RoleID      string    `bson:"role_id"`
	RoleName    string    `bson:"role_name"`
	Content     string    `bson:"content"`
	Read        bool      `bson:"read"`
	CreatedAt   time.Time `bson:"created_at"`
}

func toMongoNotification(n Notification) mongoNotification {
	return mongoNotification{
		ID:          n.ID.String(),
		MemberID:    n.MemberID.String(),
		MemberEmail: n.MemberEmail,
		RoleID:      n.RoleID.String(),
		RoleName:    n.RoleName,
		Content:     n.Content,
		Read:        n.Read,
		CreatedAt:   n.CreatedAt,
	}
}

func (d mongoNotification) toDomain() (Notification, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return Notification{}, fmt.Errorf("parse notification id: %w", err)
	}
	memberID, err := uuid.Parse(d.MemberID)
	if err != nil {
		return Notification{}, fmt.Errorf("parse member id: %w", err)
	}
	roleID, err := uuid.Parse(d.RoleID)
	if err != nil {
		return Notification{}, fmt.Errorf("parse role id: %w", err)
	}
	return Notification{
		ID:          id,
		MemberID:    memberID,
		MemberEmail: d.MemberEmail,
		RoleID:      roleID,
		RoleName:    d.RoleName,
		Content:     d.Content,
		Read:        d.Read,
		CreatedAt:   d.CreatedAt,
	}, nil
}

func (s *MongoStorage) SaveNotification(ctx context.Context, n Notification) (Notification, error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if _, err := s.coll.InsertOne(ctx, toMongoNotification(n)); err != nil {
		return Notification{}, fmt.Errorf("insert notification: %w", err)
	}
	return n, nil
}

func (s *MongoStorage) CountUnread(ctx context.Context, member Member) (int, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{
		"member_id": member.ID.String(),
		"read":      false,
	})
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return int(count), nil
}

func (s *MongoStorage) FindUnread(ctx context.Context, member Member) ([]Notification, error) {
	return s.findByMember(ctx, bson.M{
		"member_id": member.ID.String(),
		"read":      false,
	})
}

func (s *MongoStorage) FindAll(ctx context.Context, member Member) ([]Notification, error) {
	return s.findByMember(ctx, bson.M{"member_id": member.ID.String()})
}

func (s *MongoStorage) findByMember(ctx context.Context, filter bson.M) ([]Notification, error) {
	cursor, err := s.coll.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var out []Notification
	for cursor.Next(ctx) {
		var doc mongoNotification
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode notification: %w", err)
		}
		n, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, cursor.Err()
}

func (s *MongoStorage) MarkRead(ctx context.Context, id uuid.UUID) error {
	res, err := s.coll.UpdateByID(ctx, id.String(), bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("notify: notification %s not found", id)
	}
	return nil
}
