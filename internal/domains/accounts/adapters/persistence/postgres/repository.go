package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/freshcart-api/internal/domains/accounts/domain"
	"github.com/Apurer/freshcart-api/internal/domains/accounts/ports"
)

var (
	_ ports.Repository        = (*Repository)(nil)
	_ ports.ProfileRepository = (*ProfileRepository)(nil)
)

// Repository persists users in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type userRecord struct {
	ID           string         `gorm:"primaryKey;column:id;size:36"`
	Name         string         `gorm:"column:name"`
	Email        string         `gorm:"column:email;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash"`
	Roles        pq.StringArray `gorm:"column:roles;type:text[]"`
	CreatedAt    time.Time      `gorm:"column:created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }

func (r *Repository) Create(ctx context.Context, user *domain.User) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if user == nil {
		return errors.New("user is nil")
	}
	record := toUserRecord(user)
	err := r.db.WithContext(ctx).Create(&record).Error
	if isUniqueViolation(err) {
		return ports.ErrEmailTaken
	}
	return err
}

func (r *Repository) Update(ctx context.Context, user *domain.User) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if user == nil {
		return errors.New("user is nil")
	}
	result := r.db.WithContext(ctx).Model(&userRecord{}).Where("id = ?", user.ID).Updates(map[string]any{
		"name":          user.Name,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"roles":         pq.StringArray(user.Roles),
		"updated_at":    gorm.Expr("NOW()"),
	})
	if isUniqueViolation(result.Error) {
		return ports.ErrEmailTaken
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "id = ?", strings.TrimSpace(id))
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *Repository) first(ctx context.Context, query string, arg string) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record userRecord
	if err := r.db.WithContext(ctx).First(&record, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres user repository not configured")
	}
	return nil
}

func toUserRecord(user *domain.User) userRecord {
	return userRecord{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Roles:        pq.StringArray(user.Roles),
		CreatedAt:    user.CreatedAt,
	}
}

func (r userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Roles:        []string(r.Roles),
		CreatedAt:    r.CreatedAt,
	}
}

// ProfileRepository persists profiles with a structured address.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

type profileRecord struct {
	UserID    string    `gorm:"primaryKey;column:user_id;size:36"`
	FullName  string    `gorm:"column:full_name"`
	Phone     string    `gorm:"column:phone"`
	Street    string    `gorm:"column:street"`
	City      string    `gorm:"column:city"`
	State     string    `gorm:"column:state"`
	ZipCode   string    `gorm:"column:zip_code"`
	Address   string    `gorm:"column:address"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (profileRecord) TableName() string { return "profiles" }

// Get loads a profile. Rows written before the structured columns existed
// only carry the single address line, which is parsed as a fallback.
func (r *ProfileRepository) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("postgres profile repository not configured")
	}
	var record profileRecord
	if err := r.db.WithContext(ctx).First(&record, "user_id = ?", strings.TrimSpace(userID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrProfileNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *ProfileRepository) Save(ctx context.Context, profile domain.Profile) error {
	if r == nil || r.db == nil {
		return errors.New("postgres profile repository not configured")
	}
	if strings.TrimSpace(profile.UserID) == "" {
		return errors.New("profile user id is required")
	}
	record := toProfileRecord(profile)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"full_name", "phone", "street", "city", "state", "zip_code", "address", "updated_at"}),
		}).
		Create(&record).Error
}

func toProfileRecord(p domain.Profile) profileRecord {
	return profileRecord{
		UserID:    p.UserID,
		FullName:  p.FullName,
		Phone:     p.Phone,
		Street:    p.Address.Street,
		City:      p.Address.City,
		State:     p.Address.State,
		ZipCode:   p.Address.ZipCode,
		Address:   p.FormattedAddress(),
		UpdatedAt: p.UpdatedAt,
	}
}

func (r profileRecord) toDomain() *domain.Profile {
	addr := domain.Address{Street: r.Street, City: r.City, State: r.State, ZipCode: r.ZipCode}
	if addr.IsZero() && r.Address != "" {
		addr = domain.ParseLegacyAddress(r.Address)
	}
	return &domain.Profile{
		UserID:    r.UserID,
		FullName:  r.FullName,
		Phone:     r.Phone,
		Address:   addr,
		UpdatedAt: r.UpdatedAt,
	}
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "SQLSTATE 23505")
}
