package handlers

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"concierge-backend/internal/models"
	"concierge-backend/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// fakeUserStore is an in-memory UserStore and ConciergeSearcher mirroring
// the query behavior the Mongo repository delegates to the server:
// case-insensitive city matching, 50km-capped nearest-first geo search,
// per-key service merging.
type fakeUserStore struct {
	users map[bson.ObjectID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[bson.ObjectID]*models.User{}}
}

func (f *fakeUserStore) add(user models.User) bson.ObjectID {
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	f.users[user.ID] = &user
	return user.ID
}

func (f *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return mongo.CommandError{Code: 11000, Message: "duplicate key error"}
		}
	}
	user.ID = bson.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, nil
}

func (f *fakeUserStore) FindAll(ctx context.Context) ([]models.User, error) {
	out := []models.User{}
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserStore) UpdateByID(ctx context.Context, id bson.ObjectID, set bson.M) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for key, value := range set {
		applyField(u, key, value)
	}
	u.UpdatedAt = time.Now()
	clone := *u
	return &clone, nil
}

func (f *fakeUserStore) ReplaceAddresses(ctx context.Context, id bson.ObjectID, addresses []models.Address) (*models.User, error) {
	return f.UpdateByID(ctx, id, bson.M{"addresses": addresses})
}

func (f *fakeUserStore) MergeServices(ctx context.Context, id bson.ObjectID, services map[string]bool) (*models.User, error) {
	set := bson.M{}
	for k, v := range services {
		set["services."+k] = v
	}
	return f.UpdateByID(ctx, id, set)
}

func (f *fakeUserStore) Delete(ctx context.Context, id bson.ObjectID) error {
	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserStore) SetResetToken(ctx context.Context, email, resetToken string, expiresAt time.Time) error {
	for _, u := range f.users {
		if u.Email == email {
			u.ResetToken = resetToken
			u.ResetTokenExpiration = expiresAt
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeUserStore) FindByResetToken(ctx context.Context, resetToken string) (*models.User, error) {
	for _, u := range f.users {
		if u.ResetToken != "" && u.ResetToken == resetToken {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) ResetPassword(ctx context.Context, id bson.ObjectID, passwordHash string) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Password = passwordHash
	u.ResetToken = ""
	u.ResetTokenExpiration = time.Time{}
	return nil
}

func applyField(u *models.User, key string, value interface{}) {
	if flag, ok := strings.CutPrefix(key, "services."); ok {
		setServiceFlag(&u.Services, flag, value == true)
		return
	}
	switch key {
	case "first_name":
		u.FirstName, _ = value.(string)
	case "last_name":
		u.LastName, _ = value.(string)
	case "email":
		u.Email, _ = value.(string)
	case "profile_image":
		u.ProfileImage, _ = value.(string)
	case "is_host":
		u.IsHost, _ = value.(bool)
	case "is_active":
		u.IsActive, _ = value.(bool)
	case "is_admin":
		u.IsAdmin, _ = value.(bool)
	case "is_ban":
		u.IsBan, _ = value.(bool)
	case "addresses":
		u.Addresses, _ = value.([]models.Address)
	case "updated_at":
		// set by UpdateByID
	}
}

func setServiceFlag(s *models.ServiceSet, key string, enabled bool) {
	switch key {
	case "listing_creation":
		s.ListingCreation = enabled
	case "housekeeping":
		s.Housekeeping = enabled
	case "laundry":
		s.Laundry = enabled
	case "price_optimization":
		s.PriceOptimization = enabled
	case "key_handover":
		s.KeyHandover = enabled
	case "checkin":
		s.CheckIn = enabled
	case "checkout":
		s.CheckOut = enabled
	case "key_lockbox":
		s.KeyLockbox = enabled
	}
}

// --- ConciergeSearcher over the same roster ---

func (f *fakeUserStore) activeHosts() []models.User {
	out := []models.User{}
	for _, u := range f.users {
		if u.IsHost && u.IsActive {
			out = append(out, *u)
		}
	}
	return out
}

func (f *fakeUserStore) FindConciergesByCity(ctx context.Context, city string) ([]models.User, error) {
	out := []models.User{}
	for _, u := range f.activeHosts() {
		for _, addr := range u.Addresses {
			if strings.Contains(strings.ToLower(addr.City), strings.ToLower(city)) {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeUserStore) FindConciergesNear(ctx context.Context, lon, lat float64) ([]models.User, error) {
	type scored struct {
		user models.User
		dist float64
	}
	matches := []scored{}
	for _, u := range f.activeHosts() {
		best := math.Inf(1)
		for _, addr := range u.Addresses {
			if len(addr.Coordinates.Coordinates) == 2 {
				d := haversineMeters(lat, lon, addr.Coordinates.Coordinates[1], addr.Coordinates.Coordinates[0])
				if d < best {
					best = d
				}
			}
		}
		if best <= 50000 {
			matches = append(matches, scored{u, best})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].dist < matches[j].dist })
	if len(matches) > 10 {
		matches = matches[:10]
	}
	out := []models.User{}
	for _, m := range matches {
		out = append(out, m.user)
	}
	return out, nil
}

func (f *fakeUserStore) FindAllConcierges(ctx context.Context) ([]models.User, error) {
	return f.activeHosts(), nil
}

func (f *fakeUserStore) SearchConcierges(ctx context.Context, services []string, city, postalCode string) ([]models.User, error) {
	out := []models.User{}
	for _, u := range f.users {
		if !u.IsHost {
			continue
		}
		if !hasAllServices(u.Services, services) {
			continue
		}
		if city != "" || postalCode != "" {
			matched := false
			for _, addr := range u.Addresses {
				cityOK := city == "" || strings.Contains(strings.ToLower(addr.City), strings.ToLower(city))
				postalOK := postalCode == "" || addr.PostalCode == postalCode
				if cityOK && postalOK {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		out = append(out, *u)
	}
	return out, nil
}

func hasAllServices(s models.ServiceSet, keys []string) bool {
	flags := map[string]bool{
		"listing_creation":   s.ListingCreation,
		"housekeeping":       s.Housekeeping,
		"laundry":            s.Laundry,
		"price_optimization": s.PriceOptimization,
		"key_handover":       s.KeyHandover,
		"checkin":            s.CheckIn,
		"checkout":           s.CheckOut,
		"key_lockbox":        s.KeyLockbox,
	}
	for _, k := range keys {
		if !flags[k] {
			return false
		}
	}
	return true
}

func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371000.0
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadius * math.Asin(math.Sqrt(a))
}

// fakeAssignmentStore records detach calls made by account deletion.
type fakeAssignmentStore struct {
	detached []bson.ObjectID
}

func (f *fakeAssignmentStore) DetachConcierge(ctx context.Context, conciergeID bson.ObjectID) error {
	f.detached = append(f.detached, conciergeID)
	return nil
}
