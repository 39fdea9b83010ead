package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Customer list filter keys
const (
	FilterMembership = "membership"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by ID, address included
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	var c customer.Customer
	if err := r.db.WithContext(ctx).Preload("Address").First(&c, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &c, nil
}

// FindByUserID finds the customer profile of a user
func (r *GormCustomerRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*customer.Customer, error) {
	var c customer.Customer
	if err := r.db.WithContext(ctx).Preload("Address").First(&c, "user_id = ?", userID).Error; err != nil {
		return nil, translateError(err)
	}
	return &c, nil
}

// FindAll lists customers ordered by first and last name by default
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]customer.Customer, error) {
	var customers []customer.Customer
	query := r.applyFilter(r.db.WithContext(ctx).Model(&customer.Customer{}), filter)
	if filter.OrderBy == "" {
		query = query.Order("first_name ASC").Order("last_name ASC").Order("id ASC")
	} else {
		query = applyOrder(query, filter, CustomerSortFields, "first_name", "asc")
	}
	if err := applyPage(query, filter).Preload("Address").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// Count counts customers matching the filter
func (r *GormCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&customer.Customer{}), filter).Count(&count).Error
	return count, err
}

// Save creates or updates a customer. The address is stored by AddressRepository.
func (r *GormCustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Save(c).Error)
}

// Delete removes a customer and the address owned by it.
// Customers with orders are protected by the orders foreign key.
func (r *GormCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&customer.Address{}, "customer_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&customer.Customer{}, "id = ?", id)
		if result.Error != nil {
			return translateError(result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// ExistsByEmail checks if another customer already uses the email
func (r *GormCustomerRepository) ExistsByEmail(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&customer.Customer{}).
		Where("LOWER(email) = ?", strings.ToLower(email))
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountOrders returns how many orders reference the customer
func (r *GormCustomerRepository) CountOrders(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("orders").Where("customer_id = ?", id).Count(&count).Error
	return count, err
}

// OrderCounts returns order counts keyed by customer id
func (r *GormCustomerRepository) OrderCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}
	var rows []struct {
		CustomerID uuid.UUID
		Count      int64
	}
	if err := r.db.WithContext(ctx).Table("orders").
		Select("customer_id, COUNT(*) AS count").
		Where("customer_id IN ?", ids).
		Group("customer_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.CustomerID] = row.Count
	}
	return counts, nil
}

// SetMembership bulk-updates membership and returns the number of rows changed
func (r *GormCustomerRepository) SetMembership(ctx context.Context, ids []uuid.UUID, m customer.Membership) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&customer.Customer{}).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"membership": m,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
			"version":    gorm.Expr("version + 1"),
		})
	return result.RowsAffected, result.Error
}

// applyFilter matches the search term as a prefix of first or last name
func (r *GormCustomerRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		prefix := strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", prefix, prefix)
	}
	if m, ok := filter.Filters[FilterMembership]; ok {
		query = query.Where("membership = ?", m)
	}
	return query
}

var _ customer.CustomerRepository = (*GormCustomerRepository)(nil)

// GormAddressRepository implements AddressRepository using GORM
type GormAddressRepository struct {
	db *gorm.DB
}

// NewGormAddressRepository creates a new GormAddressRepository
func NewGormAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// FindByCustomer finds the address of a customer
func (r *GormAddressRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) (*customer.Address, error) {
	var a customer.Address
	if err := r.db.WithContext(ctx).First(&a, "customer_id = ?", customerID).Error; err != nil {
		return nil, translateError(err)
	}
	return &a, nil
}

// Save creates or replaces the address of a customer
func (r *GormAddressRepository) Save(ctx context.Context, a *customer.Address) error {
	return translateError(r.db.WithContext(ctx).Save(a).Error)
}

// Delete removes the address of a customer
func (r *GormAddressRepository) Delete(ctx context.Context, customerID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&customer.Address{}, "customer_id = ?", customerID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ customer.AddressRepository = (*GormAddressRepository)(nil)
