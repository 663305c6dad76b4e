package repository

import (
	"context"
	"errors"
	"rental-backend/internal/models"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrBookingNotFound = errors.New("booking not found")
var ErrInvalidBookingID = errors.New("invalid booking ID")

// ErrBookingOverlap is returned when an insert loses to an existing active
// booking on the same vehicle and an overlapping window.
var ErrBookingOverlap = errors.New("vehicle is already booked for the selected time period")

type BookingRepository struct {
	collection *mongo.Collection
	// useTransactions enables the atomic check-and-insert path. Requires a
	// replica set; on a standalone server the plain two-step path is used and
	// the check/insert race window remains open.
	useTransactions bool
}

func NewBookingRepository(db *mongo.Database, useTransactions bool) *BookingRepository {
	return &BookingRepository{
		collection:      db.Collection("bookings"),
		useTransactions: useTransactions,
	}
}

// overlapFilter builds the shared overlap predicate:
// existing.start <= window.end AND existing.end >= window.start, restricted
// to statuses that actually hold the vehicle. Boundaries are inclusive, so
// windows that merely touch are treated as overlapping.
func overlapFilter(vehicleID primitive.ObjectID, window models.TimeWindow) bson.M {
	return bson.M{
		"vehicle_id": vehicleID,
		"status":     bson.M{"$in": models.ActiveStatuses},
		"start_time": bson.M{"$lte": window.End},
		"end_time":   bson.M{"$gte": window.Start},
	}
}

// FindOverlapping returns one active booking overlapping the window on the
// vehicle, or nil if the window is free.
func (r *BookingRepository) FindOverlapping(vehicleID primitive.ObjectID, window models.TimeWindow) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var booking models.Booking
	err := r.collection.FindOne(ctx, overlapFilter(vehicleID, window)).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}

	return &booking, nil
}

// CreateIfNoOverlap re-checks the overlap predicate and inserts the booking.
// With transactions enabled both steps run in one Mongo transaction, closing
// the check-then-insert race; otherwise they are two separate store calls.
func (r *BookingRepository) CreateIfNoOverlap(booking *models.Booking) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if !r.useTransactions {
		return r.checkAndInsert(ctx, booking)
	}

	session, err := r.collection.Database().Client().StartSession()
	if err != nil {
		// Session support missing (standalone server); fall back.
		return r.checkAndInsert(ctx, booking)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		count, err := r.collection.CountDocuments(sc, overlapFilter(booking.VehicleID, booking.Window()))
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrBookingOverlap
		}

		insertResult, err := r.collection.InsertOne(sc, booking)
		if err != nil {
			return nil, err
		}
		return insertResult.InsertedID, nil
	})
	if err != nil {
		return nil, err
	}

	booking.ID = result.(primitive.ObjectID)
	return booking, nil
}

func (r *BookingRepository) checkAndInsert(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	count, err := r.collection.CountDocuments(ctx, overlapFilter(booking.VehicleID, booking.Window()))
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrBookingOverlap
	}

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return nil, err
	}

	booking.ID = result.InsertedID.(primitive.ObjectID)
	return booking, nil
}

func (r *BookingRepository) FindByID(id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidBookingID
	}

	var booking models.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	return &booking, nil
}

func (r *BookingRepository) FindByCustomer(customerID string) ([]*models.Booking, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"customer_id": customerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []*models.Booking
	for cursor.Next(ctx) {
		var booking models.Booking
		if err := cursor.Decode(&booking); err != nil {
			return nil, err
		}
		bookings = append(bookings, &booking)
	}

	return bookings, nil
}

// UpdateStatus persists a status change and returns the updated booking.
// Transition legality is the service's responsibility.
func (r *BookingRepository) UpdateStatus(id string, status string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidBookingID
	}

	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": time.Now(),
		},
	}

	result := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updated models.Booking
	if err := result.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	return &updated, nil
}

// HasActiveForVehicle reports whether any active booking still claims the
// vehicle, regardless of window.
func (r *BookingRepository) HasActiveForVehicle(vehicleID primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{
		"vehicle_id": vehicleID,
		"status":     bson.M{"$in": models.ActiveStatuses},
	})
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// FindOverdueInProgress returns in_progress bookings whose window has already
// ended. The reconciler moves these to completed.
func (r *BookingRepository) FindOverdueInProgress(now time.Time) ([]*models.Booking, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{
		"status":   models.BookingInProgress,
		"end_time": bson.M{"$lt": now},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []*models.Booking
	for cursor.Next(ctx) {
		var booking models.Booking
		if err := cursor.Decode(&booking); err != nil {
			return nil, err
		}
		bookings = append(bookings, &booking)
	}

	return bookings, nil
}

func (r *BookingRepository) Count() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return r.collection.CountDocuments(ctx, bson.M{})
}

// CreateIndexes creates necessary indexes for the bookings collection
func (r *BookingRepository) CreateIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "vehicle_id", Value: 1},
				{Key: "start_time", Value: 1},
				{Key: "end_time", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "customer_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
