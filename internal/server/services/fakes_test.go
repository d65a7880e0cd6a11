package services

import (
	"context"
	"database/sql"
	"io"
	"time"

	"github.com/melly/timerocket/internal/dbx"
	"github.com/melly/timerocket/internal/logging"
	"github.com/melly/timerocket/internal/server/displaycache"
	"github.com/melly/timerocket/internal/server/models"
	"github.com/melly/timerocket/internal/server/pagination"
	"github.com/melly/timerocket/internal/server/repositories/chests"
	"github.com/melly/timerocket/internal/server/repositories/rocketfiles"
	"github.com/melly/timerocket/internal/server/repositories/rockets"
	"github.com/melly/timerocket/internal/server/repositories/sentchests"
	"github.com/melly/timerocket/internal/server/repositories/users"
	"github.com/melly/timerocket/internal/server/slots"
)

// Fakes embed the repository interfaces so each test only fills in the
// methods it exercises; calling anything else panics, which is the point.

type fakeChestRepo struct {
	chests.Repository
	createFn               func(ctx context.Context, chest *models.Chest) (int64, error)
	getOwnedActiveFn       func(ctx context.Context, chestID, ownerUserID int64) (*models.Chest, error)
	getOwnedDeletedFn      func(ctx context.Context, chestID, ownerUserID int64) (*models.Chest, error)
	getPublicFn            func(ctx context.Context, chestID int64) (*models.Chest, error)
	getByLocationFn        func(ctx context.Context, ownerUserID int64, location string) (*models.Chest, error)
	getByDisplayLocationFn func(ctx context.Context, ownerUserID, displayLocation int64) (*models.Chest, error)
	listActiveFn           func(ctx context.Context, ownerUserID int64, category slots.Category, rocketName string, p pagination.Pageable) ([]models.ChestListItem, int64, error)
	countActiveFn          func(ctx context.Context, ownerUserID int64) (int64, error)
	countPublicFn          func(ctx context.Context, ownerUserID int64) (int64, error)
	listPublicFn           func(ctx context.Context, ownerUserID int64) ([]models.PublicChest, error)
	locationsByPageFn      func(ctx context.Context, ownerUserID int64, category slots.Category, page int) ([]string, error)
	maxDisplayLocationFn   func(ctx context.Context, ownerUserID int64) (*int64, error)
	updateLocationFn       func(ctx context.Context, chestID int64, location *string) error
	updateDisplayFn        func(ctx context.Context, chestID int64, displayLocation *int64) error
	setVisibilityFn        func(ctx context.Context, chestID int64, isPublic bool, publicAt *time.Time, displayLocation *int64) error
	softDeleteFn           func(ctx context.Context, chestID int64, deletedAt time.Time) error
	restoreFn              func(ctx context.Context, chestID int64, location string) error
}

func (f *fakeChestRepo) Create(ctx context.Context, chest *models.Chest) (int64, error) {
	return f.createFn(ctx, chest)
}
func (f *fakeChestRepo) GetOwnedActive(ctx context.Context, chestID, ownerUserID int64) (*models.Chest, error) {
	return f.getOwnedActiveFn(ctx, chestID, ownerUserID)
}
func (f *fakeChestRepo) GetOwnedDeleted(ctx context.Context, chestID, ownerUserID int64) (*models.Chest, error) {
	return f.getOwnedDeletedFn(ctx, chestID, ownerUserID)
}
func (f *fakeChestRepo) GetPublic(ctx context.Context, chestID int64) (*models.Chest, error) {
	return f.getPublicFn(ctx, chestID)
}
func (f *fakeChestRepo) GetByLocation(ctx context.Context, ownerUserID int64, location string) (*models.Chest, error) {
	return f.getByLocationFn(ctx, ownerUserID, location)
}
func (f *fakeChestRepo) GetByDisplayLocation(ctx context.Context, ownerUserID, displayLocation int64) (*models.Chest, error) {
	return f.getByDisplayLocationFn(ctx, ownerUserID, displayLocation)
}
func (f *fakeChestRepo) ListActive(ctx context.Context, ownerUserID int64, category slots.Category, rocketName string, p pagination.Pageable) ([]models.ChestListItem, int64, error) {
	return f.listActiveFn(ctx, ownerUserID, category, rocketName, p)
}
func (f *fakeChestRepo) CountActiveByOwner(ctx context.Context, ownerUserID int64) (int64, error) {
	return f.countActiveFn(ctx, ownerUserID)
}
func (f *fakeChestRepo) CountPublicByOwner(ctx context.Context, ownerUserID int64) (int64, error) {
	return f.countPublicFn(ctx, ownerUserID)
}
func (f *fakeChestRepo) ListPublicByOwner(ctx context.Context, ownerUserID int64) ([]models.PublicChest, error) {
	return f.listPublicFn(ctx, ownerUserID)
}
func (f *fakeChestRepo) LocationsByPage(ctx context.Context, ownerUserID int64, category slots.Category, page int) ([]string, error) {
	return f.locationsByPageFn(ctx, ownerUserID, category, page)
}
func (f *fakeChestRepo) MaxDisplayLocation(ctx context.Context, ownerUserID int64) (*int64, error) {
	return f.maxDisplayLocationFn(ctx, ownerUserID)
}
func (f *fakeChestRepo) UpdateLocation(ctx context.Context, chestID int64, location *string) error {
	return f.updateLocationFn(ctx, chestID, location)
}
func (f *fakeChestRepo) UpdateDisplayLocation(ctx context.Context, chestID int64, displayLocation *int64) error {
	return f.updateDisplayFn(ctx, chestID, displayLocation)
}
func (f *fakeChestRepo) SetVisibility(ctx context.Context, chestID int64, isPublic bool, publicAt *time.Time, displayLocation *int64) error {
	return f.setVisibilityFn(ctx, chestID, isPublic, publicAt, displayLocation)
}
func (f *fakeChestRepo) SoftDelete(ctx context.Context, chestID int64, deletedAt time.Time) error {
	return f.softDeleteFn(ctx, chestID, deletedAt)
}
func (f *fakeChestRepo) Restore(ctx context.Context, chestID int64, location string) error {
	return f.restoreFn(ctx, chestID, location)
}

type fakeRocketRepo struct {
	rockets.Repository
	createFn          func(ctx context.Context, rocket *models.Rocket) (int64, error)
	getByIDFn         func(ctx context.Context, id int64) (*models.Rocket, error)
	getLockedFn       func(ctx context.Context, id int64) (*models.Rocket, error)
	unlockFn          func(ctx context.Context, id int64) error
	getTempBySenderFn func(ctx context.Context, senderUserID int64) (*models.Rocket, error)
	upsertTempFn      func(ctx context.Context, rocket *models.Rocket, savedAt time.Time) error
}

func (f *fakeRocketRepo) Create(ctx context.Context, rocket *models.Rocket) (int64, error) {
	return f.createFn(ctx, rocket)
}
func (f *fakeRocketRepo) GetByID(ctx context.Context, id int64) (*models.Rocket, error) {
	return f.getByIDFn(ctx, id)
}
func (f *fakeRocketRepo) GetLocked(ctx context.Context, id int64) (*models.Rocket, error) {
	return f.getLockedFn(ctx, id)
}
func (f *fakeRocketRepo) Unlock(ctx context.Context, id int64) error {
	return f.unlockFn(ctx, id)
}
func (f *fakeRocketRepo) GetTempBySender(ctx context.Context, senderUserID int64) (*models.Rocket, error) {
	return f.getTempBySenderFn(ctx, senderUserID)
}
func (f *fakeRocketRepo) UpsertTemp(ctx context.Context, rocket *models.Rocket, savedAt time.Time) error {
	return f.upsertTempFn(ctx, rocket, savedAt)
}

type fakeUserRepo struct {
	users.Repository
	getByIDFn    func(ctx context.Context, id int64) (*models.User, error)
	getByEmailFn func(ctx context.Context, email string) (*models.User, error)
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return f.getByIDFn(ctx, id)
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.getByEmailFn(ctx, email)
}

type fakeFileRepo struct {
	rocketfiles.Repository
	createFn       func(ctx context.Context, file *models.RocketFile) (int64, error)
	listByRocketFn func(ctx context.Context, rocketID int64) ([]*models.RocketFile, error)
}

func (f *fakeFileRepo) Create(ctx context.Context, file *models.RocketFile) (int64, error) {
	return f.createFn(ctx, file)
}
func (f *fakeFileRepo) ListByRocket(ctx context.Context, rocketID int64) ([]*models.RocketFile, error) {
	return f.listByRocketFn(ctx, rocketID)
}

type fakeSentRepo struct {
	sentchests.Repository
	createFn         func(ctx context.Context, chest *models.SentChest) (int64, error)
	getOwnedActiveFn func(ctx context.Context, sentChestID, ownerUserID int64) (*models.SentChest, error)
	listActiveFn     func(ctx context.Context, ownerUserID int64, rocketName string, p pagination.Pageable) ([]models.SentChestListItem, int64, error)
	countActiveFn    func(ctx context.Context, ownerUserID int64) (int64, error)
	softDeleteFn     func(ctx context.Context, sentChestID int64, deletedAt time.Time) error
}

func (f *fakeSentRepo) Create(ctx context.Context, chest *models.SentChest) (int64, error) {
	return f.createFn(ctx, chest)
}
func (f *fakeSentRepo) GetOwnedActive(ctx context.Context, sentChestID, ownerUserID int64) (*models.SentChest, error) {
	return f.getOwnedActiveFn(ctx, sentChestID, ownerUserID)
}
func (f *fakeSentRepo) ListActive(ctx context.Context, ownerUserID int64, rocketName string, p pagination.Pageable) ([]models.SentChestListItem, int64, error) {
	return f.listActiveFn(ctx, ownerUserID, rocketName, p)
}
func (f *fakeSentRepo) CountActiveByOwner(ctx context.Context, ownerUserID int64) (int64, error) {
	return f.countActiveFn(ctx, ownerUserID)
}
func (f *fakeSentRepo) SoftDelete(ctx context.Context, sentChestID int64, deletedAt time.Time) error {
	return f.softDeleteFn(ctx, sentChestID, deletedAt)
}

// fakeRepoManager hands out the same fakes whatever DBTX it is given.
type fakeRepoManager struct {
	chests  *fakeChestRepo
	rockets *fakeRocketRepo
	users   *fakeUserRepo
	files   *fakeFileRepo
	sent    *fakeSentRepo
}

func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository                  { return m.users }
func (m *fakeRepoManager) Rockets(db dbx.DBTX) rockets.Repository              { return m.rockets }
func (m *fakeRepoManager) RocketFiles(db dbx.DBTX) rocketfiles.Repository      { return m.files }
func (m *fakeRepoManager) Chests(db dbx.DBTX) chests.Repository                { return m.chests }
func (m *fakeRepoManager) SentChests(db dbx.DBTX) sentchests.Repository        { return m.sent }

type fakeStorage struct {
	uploadFn  func(ctx context.Context, key, contentType string, body io.Reader) error
	presignFn func(ctx context.Context, key string) (string, error)
	uploaded  []string
	presigned []string
}

func (f *fakeStorage) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	f.uploaded = append(f.uploaded, key)
	if f.uploadFn != nil {
		return f.uploadFn(ctx, key, contentType, body)
	}
	return nil
}

func (f *fakeStorage) GetPresignedGetURL(ctx context.Context, key string) (string, error) {
	f.presigned = append(f.presigned, key)
	if f.presignFn != nil {
		return f.presignFn(ctx, key)
	}
	return "https://example.test/" + key, nil
}

// fakeCache is an in-memory displaycache.Cache.
type fakeCache struct {
	entries map[int64][]models.PublicChest
	getErr  error
	setErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[int64][]models.PublicChest{}}
}

func (c *fakeCache) Get(ctx context.Context, userID int64) ([]models.PublicChest, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	chests, ok := c.entries[userID]
	if !ok {
		return nil, displaycache.ErrCacheMiss
	}
	return chests, nil
}

func (c *fakeCache) Set(ctx context.Context, userID int64, chests []models.PublicChest) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[userID] = chests
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context, userID int64) error {
	delete(c.entries, userID)
	return nil
}

func (c *fakeCache) Close() error { return nil }

type fakeRefresher struct {
	calls []int64
	err   error
}

func (f *fakeRefresher) UpdateDisplayCache(ctx context.Context, userID int64) error {
	f.calls = append(f.calls, userID)
	return f.err
}

// fixedRand always picks the first free option.
type fixedRand struct{}

func (fixedRand) Intn(n int) int { return 0 }

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (nopLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Error(ctx context.Context, msg string, args ...any) {}
func (nopLogger) With(args ...any) logging.Logger                    { return nopLogger{} }
