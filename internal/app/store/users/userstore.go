package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mobilizabr/mobiliza/internal/app/system/normalize"
	"github.com/mobilizabr/mobiliza/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when a user with that email already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrDuplicateCPF is returned when a user with that CPF already exists.
	ErrDuplicateCPF = errors.New("a user with this CPF already exists")
	// ErrLastAdmin is returned when a role change would leave zero admins.
	ErrLastAdmin = errors.New("cannot demote the last remaining admin")

	errBadRole = errors.New(`role must be "SUPPORTER"|"LEADER"|"ADMIN"`)
)

// mapDup translates a Mongo duplicate-key error into the sentinel for the
// index that fired. Both the email and the cpf unique indexes live on this
// collection, so the index name in the error text is the only way to tell
// them apart.
func mapDup(err error) error {
	if !wafflemongo.IsDup(err) {
		return err
	}
	if strings.Contains(err.Error(), "cpf") {
		return ErrDuplicateCPF
	}
	return ErrDuplicateEmail
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by normalized email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByAuthID looks up a user by identity account ID.
func (s *Store) GetByAuthID(ctx context.Context, authID string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"auth_id": authID}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetLeaderByID loads a user by ObjectID, returning an error if the user
// does not exist or cannot refer supporters. Admins share their own referral
// links too, so both roles qualify.
func (s *Store) GetLeaderByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	filter := bson.M{
		"_id":  id,
		"role": bson.M{"$in": []string{models.RoleLeader, models.RoleAdmin}},
	}
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Name = normalize.Name(u.Name)
	u.NameCI = text.Fold(u.Name)
	u.Email = normalize.Email(u.Email)
	u.CPF = normalize.CPFDigits(u.CPF)

	switch u.Role {
	case models.RoleSupporter, models.RoleLeader, models.RoleAdmin:
		// ok
	default:
		return models.User{}, errBadRole
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		return models.User{}, mapDup(err)
	}
	return u, nil
}

// EmailExists reports whether any user already has the email.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"email": normalize.Email(email)})
	return n > 0, err
}

// EmailExistsForOther reports whether a user other than excludeID has the email.
func (s *Store) EmailExistsForOther(ctx context.Context, email string, excludeID primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"email": normalize.Email(email),
		"_id":   bson.M{"$ne": excludeID},
	})
	return n > 0, err
}

// CPFExists reports whether any user already has the CPF (11 digits).
func (s *Store) CPFExists(ctx context.Context, cpf string) (bool, error) {
	cpf = normalize.CPFDigits(cpf)
	if cpf == "" {
		return false, nil
	}
	n, err := s.c.CountDocuments(ctx, bson.M{"cpf": cpf})
	return n > 0, err
}

// CPFExistsForOther reports whether a user other than excludeID has the CPF.
func (s *Store) CPFExistsForOther(ctx context.Context, cpf string, excludeID primitive.ObjectID) (bool, error) {
	cpf = normalize.CPFDigits(cpf)
	if cpf == "" {
		return false, nil
	}
	n, err := s.c.CountDocuments(ctx, bson.M{
		"cpf": cpf,
		"_id": bson.M{"$ne": excludeID},
	})
	return n > 0, err
}

// LeaderUpgrade holds the fields set when a supporter row becomes a leader
// account. The row keeps its ObjectID so existing referrals stay attached.
type LeaderUpgrade struct {
	AuthID      string
	Name        string
	PhoneNumber string
	CPF         string
	BirthDate   string // YYYY-MM-DD, empty = not provided
	RegionID    *primitive.ObjectID
	Occupation  string
	Motivation  string
}

// UpgradeToLeader promotes an existing supporter row in place: attaches the
// identity account, sets role LEADER, and fills in the sign-up fields.
func (s *Store) UpgradeToLeader(ctx context.Context, id primitive.ObjectID, upd LeaderUpgrade) error {
	name := normalize.Name(upd.Name)
	set := bson.M{
		"auth_id":      upd.AuthID,
		"role":         models.RoleLeader,
		"name":         name,
		"name_ci":      text.Fold(name),
		"phone_number": normalize.Phone(upd.PhoneNumber),
		"cpf":          normalize.CPFDigits(upd.CPF),
		"occupation":   upd.Occupation,
		"motivation":   upd.Motivation,
		"updated_at":   time.Now(),
	}
	if upd.BirthDate != "" {
		set["birth_date"] = upd.BirthDate
	}
	if upd.RegionID != nil {
		set["region_id"] = *upd.RegionID
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return mapDup(err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ClearAuth detaches the identity account and restores the supporter role.
// This is the compensation for a failed leader upgrade.
func (s *Store) ClearAuth(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$unset": bson.M{"auth_id": ""},
		"$set":   bson.M{"role": models.RoleSupporter, "updated_at": time.Now()},
	})
	return err
}

// CoreInfoUpdate holds the identity fields an admin can edit on any user.
type CoreInfoUpdate struct {
	Name        string
	Email       string
	CPF         string
	PhoneNumber string
	BirthDate   string
	RegionID    *primitive.ObjectID
}

// UpdateCoreInfo updates a user's identity fields. Callers are expected to
// have run the uniqueness pre-checks; the unique indexes still backstop them.
func (s *Store) UpdateCoreInfo(ctx context.Context, id primitive.ObjectID, upd CoreInfoUpdate) error {
	name := normalize.Name(upd.Name)
	set := bson.M{
		"name":         name,
		"name_ci":      text.Fold(name),
		"email":        normalize.Email(upd.Email),
		"phone_number": normalize.Phone(upd.PhoneNumber),
		"updated_at":   time.Now(),
	}
	unset := bson.M{}

	if cpf := normalize.CPFDigits(upd.CPF); cpf != "" {
		set["cpf"] = cpf
	} else {
		unset["cpf"] = ""
	}
	if upd.BirthDate != "" {
		set["birth_date"] = upd.BirthDate
	} else {
		unset["birth_date"] = ""
	}
	if upd.RegionID != nil {
		set["region_id"] = *upd.RegionID
	} else {
		unset["region_id"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return mapDup(err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ProfileUpdate holds the fields a user can edit on their own profile.
type ProfileUpdate struct {
	Name        string
	PhoneNumber string
	BirthDate   string
	RegionID    *primitive.ObjectID
	Occupation  string
	Motivation  string
}

// UpdateProfile updates the user's own editable fields.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error {
	name := normalize.Name(upd.Name)
	set := bson.M{
		"name":         name,
		"name_ci":      text.Fold(name),
		"phone_number": normalize.Phone(upd.PhoneNumber),
		"occupation":   upd.Occupation,
		"motivation":   upd.Motivation,
		"updated_at":   time.Now(),
	}
	if upd.BirthDate != "" {
		set["birth_date"] = upd.BirthDate
	}
	if upd.RegionID != nil {
		set["region_id"] = *upd.RegionID
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetProfilePictureURL records the public URL of an uploaded avatar.
func (s *Store) SetProfilePictureURL(ctx context.Context, id primitive.ObjectID, url string) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"profile_picture_url": url, "updated_at": time.Now()},
	})
	return err
}

// UpdateRole changes a user's role. Demoting the last remaining admin is
// refused with ErrLastAdmin so the admin area can never be locked out.
func (s *Store) UpdateRole(ctx context.Context, id primitive.ObjectID, newRole string) error {
	newRole = normalize.Role(newRole)
	switch newRole {
	case models.RoleSupporter, models.RoleLeader, models.RoleAdmin:
		// ok
	default:
		return errBadRole
	}

	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if cur.Role == models.RoleAdmin && newRole != models.RoleAdmin {
		n, err := s.c.CountDocuments(ctx, bson.M{"role": models.RoleAdmin})
		if err != nil {
			return err
		}
		if n <= 1 {
			return ErrLastAdmin
		}
	}

	_, err = s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"role": newRole, "updated_at": time.Now()},
	})
	return err
}

// Delete removes the user row.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// OrphanReferrals clears leader_id on every user referred by the given
// leader. Run before deleting a leader so referred supporters survive with
// no attribution instead of a dangling reference.
func (s *Store) OrphanReferrals(ctx context.Context, leaderID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"leader_id": leaderID},
		bson.M{"$unset": bson.M{"leader_id": ""}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// ListByLeader returns the users referred by a leader, newest first.
func (s *Store) ListByLeader(ctx context.Context, leaderID primitive.ObjectID) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{"leader_id": leaderID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Search returns users matching an optional folded-name prefix and optional
// role filter, paginated and sorted by name.
func (s *Store) Search(ctx context.Context, q, role string, page, perPage int64) ([]models.User, int64, error) {
	filter := bson.M{}
	if q = strings.TrimSpace(q); q != "" {
		filter["name_ci"] = bson.M{"$regex": "^" + escapeRegex(text.Fold(q))}
	}
	if role = normalize.Role(role); role != "" {
		filter["role"] = role
	}

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "name_ci", Value: 1}}).
		SetSkip((page - 1) * perPage).
		SetLimit(perPage)

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// CountByRole returns how many users carry the given role.
func (s *Store) CountByRole(ctx context.Context, role string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"role": normalize.Role(role)})
}

// Count returns the total number of user rows.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// LeaderboardEntry is one leader's referral tally.
type LeaderboardEntry struct {
	LeaderID   primitive.ObjectID `bson:"_id"`
	LeaderName string             `bson:"leader_name"`
	Referred   int64              `bson:"referred"`
}

// Leaderboard groups users by leader_id, joins the leader's name, and
// returns the top referrers in descending order.
func (s *Store) Leaderboard(ctx context.Context, limit int64) ([]LeaderboardEntry, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"leader_id": bson.M{"$exists": true}}}},
		{{Key: "$group", Value: bson.M{
			"_id":      "$leader_id",
			"referred": bson.M{"$sum": 1},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "leader",
		}}},
		{{Key: "$unwind", Value: "$leader"}},
		{{Key: "$project", Value: bson.M{
			"referred":    1,
			"leader_name": "$leader.name",
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "referred", Value: -1}, {Key: "leader_name", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var out []LeaderboardEntry
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RegionCount is one region's supporter tally.
type RegionCount struct {
	RegionID   primitive.ObjectID `bson:"_id"`
	RegionName string             `bson:"region_name"`
	Users      int64              `bson:"users"`
}

// CountByRegion groups users by region for the admin dashboard. Users with
// no region are omitted.
func (s *Store) CountByRegion(ctx context.Context) ([]RegionCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"region_id": bson.M{"$exists": true}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$region_id",
			"users": bson.M{"$sum": 1},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "regions",
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "region",
		}}},
		{{Key: "$unwind", Value: "$region"}},
		{{Key: "$project", Value: bson.M{
			"users":       1,
			"region_name": "$region.name",
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "users", Value: -1}, {Key: "region_name", Value: 1}}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var out []RegionCount
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// escapeRegex quotes regex metacharacters so user search input is treated
// literally.
func escapeRegex(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`\.+*?()|[]{}^$`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
