package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dive-roast/dive"
	"dive-roast/utils"
)

type MongoClient struct {
	client *mongo.Client
	db     *mongo.Database
}

type sampleDoc struct {
	SessionID    string   `bson:"session_id"`
	Seq          int      `bson:"seq"`
	DiveNumber   string   `bson:"dive_number"`
	Time         float64  `bson:"time"`
	Depth        float64  `bson:"depth"`
	Temperature  *float64 `bson:"temperature,omitempty"`
	Pressure     *float64 `bson:"pressure,omitempty"`
	RBT          *float64 `bson:"rbt,omitempty"`
	NDL          *float64 `bson:"ndl,omitempty"`
	SACRate      *float64 `bson:"sac_rate,omitempty"`
	Rating       *int     `bson:"rating,omitempty"`
	DiveSiteName string   `bson:"dive_site_name,omitempty"`
	TripName     string   `bson:"trip_name,omitempty"`
	Latitude     *float64 `bson:"latitude,omitempty"`
	Longitude    *float64 `bson:"longitude,omitempty"`
}

type promptDoc struct {
	Name string `bson:"_id"`
	Text string `bson:"text"`
}

func NewMongoClient(uri string) (*MongoClient, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("error connecting to MongoDB: %s", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("error pinging MongoDB: %s", err)
	}

	dbName := utils.GetEnv("DB_NAME", "dive-roast")
	return &MongoClient{client: client, db: client.Database(dbName)}, nil
}

func (c *MongoClient) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}

func (c *MongoClient) StoreDiveLog(sessionID string, samples []dive.Sample) error {
	if len(samples) == 0 {
		return nil
	}
	docs := make([]interface{}, len(samples))
	for i, s := range samples {
		docs[i] = sampleDoc{
			SessionID:    sessionID,
			Seq:          i,
			DiveNumber:   s.DiveNumber,
			Time:         s.Time,
			Depth:        s.Depth,
			Temperature:  s.Temperature,
			Pressure:     s.Pressure,
			RBT:          s.RBT,
			NDL:          s.NDL,
			SACRate:      s.SACRate,
			Rating:       s.Rating,
			DiveSiteName: s.DiveSiteName,
			TripName:     s.TripName,
			Latitude:     s.Latitude,
			Longitude:    s.Longitude,
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := c.db.Collection("dive_samples").InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("error storing dive samples: %s", err)
	}
	return nil
}

func (c *MongoClient) GetDiveLog(sessionID string) ([]dive.Sample, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	cursor, err := c.db.Collection("dive_samples").Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error querying dive samples: %s", err)
	}
	defer cursor.Close(ctx)

	var samples []dive.Sample
	for cursor.Next(ctx) {
		var doc sampleDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("error decoding dive sample: %s", err)
		}
		samples = append(samples, dive.Sample{
			DiveNumber:   doc.DiveNumber,
			Time:         doc.Time,
			Depth:        doc.Depth,
			Temperature:  doc.Temperature,
			Pressure:     doc.Pressure,
			RBT:          doc.RBT,
			NDL:          doc.NDL,
			SACRate:      doc.SACRate,
			Rating:       doc.Rating,
			DiveSiteName: doc.DiveSiteName,
			TripName:     doc.TripName,
			Latitude:     doc.Latitude,
			Longitude:    doc.Longitude,
		})
	}
	return samples, cursor.Err()
}

func (c *MongoClient) DeleteDiveLog(sessionID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := c.db.Collection("dive_samples").DeleteMany(ctx, bson.M{"session_id": sessionID}); err != nil {
		return fmt.Errorf("error deleting dive log: %s", err)
	}
	return nil
}

func (c *MongoClient) GetPrompt(name string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var doc promptDoc
	err := c.db.Collection("prompts").FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("error retrieving prompt: %s", err)
	}
	return doc.Text, true, nil
}

func (c *MongoClient) StorePrompt(name, text string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	if _, err := c.db.Collection("prompts").ReplaceOne(ctx, bson.M{"_id": name}, promptDoc{Name: name, Text: text}, opts); err != nil {
		return fmt.Errorf("error storing prompt: %s", err)
	}
	return nil
}
