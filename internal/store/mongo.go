package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jonathan/resume-builder/internal/types"
)

// Collection names.
const (
	ProfilesCollection    = "profiles"
	JobPostingsCollection = "jobPostings"
)

// Mongo implements ProfileStore and JobPostingStore on MongoDB.
type Mongo struct {
	client   *mongo.Client
	profiles *mongo.Collection
	postings *mongo.Collection
}

// ConnectMongo connects to uri, pings it, and uses database.
func ConnectMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	db := client.Database(database)
	m := &Mongo{
		client:   client,
		profiles: db.Collection(ProfilesCollection),
		postings: db.Collection(JobPostingsCollection),
	}
	if err := m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return m, nil
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	_, err := m.postings.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "recruiterId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create job posting index: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// FindOne returns the profile for userID, or ErrNotFound.
func (m *Mongo) FindOne(ctx context.Context, userID string) (*types.Profile, error) {
	var p types.Profile
	err := m.profiles.FindOne(ctx, bson.M{"_id": userID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile %s: %w", userID, err)
	}
	return &p, nil
}

// Upsert replaces the profile for userID, creating it when absent.
func (m *Mongo) Upsert(ctx context.Context, userID string, profile *types.Profile) error {
	if profile == nil {
		return errNilProfile
	}
	doc := withEmptyCollections(profile.Clone())
	doc.UserID = userID
	_, err := m.profiles.ReplaceOne(ctx, bson.M{"_id": userID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert profile %s: %w", userID, err)
	}
	return nil
}

// AppendToArray pushes element onto a profile section, creating the profile when absent.
func (m *Mongo) AppendToArray(ctx context.Context, userID, section string, element any) error {
	if err := checkElement(section, element); err != nil {
		return err
	}
	_, err := m.profiles.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$push": bson.M{section: element}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to append to %s for %s: %w", section, userID, err)
	}
	return nil
}

// CreateJobPosting inserts a job posting.
func (m *Mongo) CreateJobPosting(ctx context.Context, posting *types.JobPosting) error {
	posting.ID = ensureID(posting.ID)
	if posting.CreatedAt.IsZero() {
		posting.CreatedAt = time.Now().UTC()
	}
	if _, err := m.postings.InsertOne(ctx, posting); err != nil {
		return fmt.Errorf("failed to insert job posting: %w", err)
	}
	return nil
}

// GetJobPosting returns the posting with id, or ErrNotFound.
func (m *Mongo) GetJobPosting(ctx context.Context, id string) (*types.JobPosting, error) {
	var p types.JobPosting
	err := m.postings.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find job posting %s: %w", id, err)
	}
	return &p, nil
}

// ListJobPostings returns the recruiter's postings, newest first.
func (m *Mongo) ListJobPostings(ctx context.Context, recruiterID string) ([]types.JobPosting, error) {
	cur, err := m.postings.Find(ctx,
		bson.M{"recruiterId": recruiterID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list job postings: %w", err)
	}
	defer cur.Close(ctx)

	postings := []types.JobPosting{}
	if err := cur.All(ctx, &postings); err != nil {
		return nil, fmt.Errorf("failed to decode job postings: %w", err)
	}
	return postings, nil
}
