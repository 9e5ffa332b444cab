package devserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	pkgerrors "github.com/tiffino/tiffino-go/pkg/errors"
)

// Store is the dev backend's sqlite persistence layer.
type Store struct {
	db *gorm.DB
}

// OpenStore creates or opens the dev database. ":memory:" gives an
// ephemeral database, used by tests.
func OpenStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("devserver: db path is required")
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("devserver: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&User{}, &CartItem{}, &Order{}, &OrderItem{}, &Subscription{}, &Address{}); err != nil {
		return nil, fmt.Errorf("devserver: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SeedDefaults provisions the dev account with a subscription and two
// addresses so a fresh database is immediately usable. Idempotent: an
// existing account is left untouched.
func (s *Store) SeedDefaults(email, password string) (*User, error) {
	var existing User
	err := s.db.First(&existing, "email = ?", email).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("devserver: seed lookup: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("devserver: hash seed password: %w", err)
	}

	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         "Dev User",
		Phone:        "9876543210",
		PasswordHash: string(hash),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		sub := Subscription{
			ID:              uuid.NewString(),
			UserID:          user.ID,
			PlanName:        "Monthly Thali",
			DiscountPercent: 20,
			Status:          "ACTIVE",
		}
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}
		addresses := []Address{
			{
				ID:                   uuid.NewString(),
				UserID:               user.ID,
				FlatNoOrBuildingName: "12B Shanti Residency",
				Street:               "MG Road",
				Landmark:             "Opp. City Mall",
				City:                 "Pune",
				State:                "MH",
				Pincode:              "411001",
			},
			{
				ID:                   uuid.NewString(),
				UserID:               user.ID,
				FlatNoOrBuildingName: "4 Lakeview Apartments",
				Street:               "FC Road",
				City:                 "Pune",
				State:                "MH",
				Pincode:              "411004",
			},
		}
		return tx.Create(&addresses).Error
	})
	if err != nil {
		return nil, fmt.Errorf("devserver: seed: %w", err)
	}
	return &user, nil
}

// UserByEmail looks up an account for login.
func (s *Store) UserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	return &user, nil
}

// CartForUser returns the user's pending cart lines.
func (s *Store) CartForUser(ctx context.Context, userID string) ([]CartItem, error) {
	var items []CartItem
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id asc").Find(&items).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return items, nil
}

// UpsertCartItem adds the line, or raises the stored quantity when the
// food already sits in the cart.
func (s *Store) UpsertCartItem(ctx context.Context, item CartItem) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing CartItem
		err := tx.First(&existing, "user_id = ? AND food_id = ?", item.UserID, item.FoodID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&item).Error
		}
		if err != nil {
			return err
		}
		existing.Quantity += item.Quantity
		return tx.Save(&existing).Error
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert cart item")
	}
	return nil
}

// SetCartQuantity sets an absolute quantity for a line.
func (s *Store) SetCartQuantity(ctx context.Context, userID, foodID string, quantity int) error {
	result := s.db.WithContext(ctx).
		Model(&CartItem{}).
		Where("user_id = ? AND food_id = ?", userID, foodID).
		Update("quantity", quantity)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "update cart item")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return nil
}

// RemoveCartItem deletes a line.
func (s *Store) RemoveCartItem(ctx context.Context, userID, foodID string) error {
	result := s.db.WithContext(ctx).Delete(&CartItem{}, "user_id = ? AND food_id = ?", userID, foodID)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "remove cart item")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return nil
}

// ClearCart drops every line for the user.
func (s *Store) ClearCart(ctx context.Context, userID string) error {
	if err := s.db.WithContext(ctx).Delete(&CartItem{}, "user_id = ?", userID).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return nil
}

// CreateOrder persists an order and its item snapshots, then clears the
// user's cart in the same transaction.
func (s *Store) CreateOrder(ctx context.Context, order Order) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return tx.Delete(&CartItem{}, "user_id = ?", order.UserID).Error
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}
	return nil
}

// OrdersForUser returns the user's orders, newest first, with items.
func (s *Store) OrdersForUser(ctx context.Context, userID string) ([]Order, error) {
	var orders []Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load orders")
	}
	return orders, nil
}

// OrderByID returns one order with items.
func (s *Store) OrderByID(ctx context.Context, orderID string) (*Order, error) {
	var order Order
	err := s.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return &order, nil
}

// UpdateOrder saves the mutated order row.
func (s *Store) UpdateOrder(ctx context.Context, order *Order) error {
	if err := s.db.WithContext(ctx).Save(order).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order")
	}
	return nil
}

// SubscriptionByID returns one subscription record.
func (s *Store) SubscriptionByID(ctx context.Context, id string) (*Subscription, error) {
	var sub Subscription
	err := s.db.WithContext(ctx).First(&sub, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load subscription")
	}
	return &sub, nil
}

// SubscriptionsForUser returns the user's subscriptions.
func (s *Store) SubscriptionsForUser(ctx context.Context, userID string) ([]Subscription, error) {
	var subs []Subscription
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load subscriptions")
	}
	return subs, nil
}

// AddressesForUser returns the user's saved addresses.
func (s *Store) AddressesForUser(ctx context.Context, userID string) ([]Address, error) {
	var addresses []Address
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&addresses).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load addresses")
	}
	return addresses, nil
}
