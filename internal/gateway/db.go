package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"
)

// Service implements Gateway on top of the Postgres schema and the Alita
// order-management API.
type Service struct {
	db  *gorm.DB
	api *APIClient
}

func NewService(db *gorm.DB, api *APIClient) *Service {
	return &Service{db: db, api: api}
}

type orderRow struct {
	ID             int64  `gorm:"column:id"`
	NoSP           string `gorm:"column:no_sp"`
	CustomerName   string `gorm:"column:customer_name"`
	ExtendedAmount int64  `gorm:"column:extended_amount"`
	Status         string `gorm:"column:status"`
}

type storeRow struct {
	ID       int64  `gorm:"column:id"`
	Name     string `gorm:"column:name"`
	Category string `gorm:"column:category"`
}

type userRow struct {
	ID    int64  `gorm:"column:id"`
	Name  string `gorm:"column:name"`
	Email string `gorm:"column:email"`
}

type creatorRow struct {
	ID          int64  `gorm:"column:id"`
	NoSP        string `gorm:"column:no_sp"`
	Creator     int64  `gorm:"column:creator"`
	CreatorName string `gorm:"column:creator_name"`
}

type productRow struct {
	ID           int64  `gorm:"column:id"`
	Brand        string `gorm:"column:brand"`
	Tipe         string `gorm:"column:tipe"`
	Ukuran       string `gorm:"column:ukuran"`
	Pricelist    int64  `gorm:"column:pricelist"`
	EndUserPrice int64  `gorm:"column:end_user_price"`
}

func (s *Service) FindOrder(ctx context.Context, noSP string) (Order, error) {
	trimmed := strings.TrimSpace(noSP)
	if trimmed == "" {
		return Order{}, ErrNotFound
	}
	var row orderRow
	err := s.db.WithContext(ctx).
		Table("order_letters").
		Select("id, no_sp, customer_name, extended_amount, status").
		Where("no_sp = ?", trimmed).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, &InfrastructureError{Op: "find order", Err: err}
	}
	return Order{
		ID:             row.ID,
		NoSP:           row.NoSP,
		CustomerName:   row.CustomerName,
		ExtendedAmount: row.ExtendedAmount,
		Status:         row.Status,
	}, nil
}

const storeSearchLimit = 5

func (s *Service) SearchStores(ctx context.Context, keyword string) ([]Store, error) {
	terms := strings.Fields(strings.TrimSpace(keyword))
	if len(terms) == 0 {
		return nil, nil
	}
	tx := s.db.WithContext(ctx).
		Table("work_places").
		Select("id, name, category")
	for _, term := range terms {
		p := "%" + term + "%"
		tx = tx.Where("name ILIKE ? OR category ILIKE ?", p, p)
	}
	var rows []storeRow
	if err := tx.Limit(storeSearchLimit).Find(&rows).Error; err != nil {
		return nil, &InfrastructureError{Op: "search stores", Err: err}
	}
	stores := make([]Store, 0, len(rows))
	for _, r := range rows {
		stores = append(stores, Store{ID: r.ID, Name: r.Name, Category: r.Category})
	}
	return stores, nil
}

// SearchUsers resolves a salesperson by exact email. The display name is
// taken from contact_work_experiences when the API answers, with the local
// users.name as fallback.
func (s *Service) SearchUsers(ctx context.Context, email string) (User, error) {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return User{}, ErrNotFound
	}
	var row userRow
	err := s.db.WithContext(ctx).
		Table("users").
		Select("id, name, email").
		Where("email = ?", trimmed).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, &InfrastructureError{Op: "find user", Err: err}
	}
	name := row.Name
	if s.api != nil {
		if official, err := s.api.OfficialName(ctx, row.ID); err == nil && official != "" {
			name = official
		} else if err != nil {
			log.Printf("official name lookup failed for user %d: %v", row.ID, err)
		}
	}
	return User{ID: row.ID, Name: name, Email: row.Email}, nil
}

func (s *Service) GetOrderCreator(ctx context.Context, noSP string) (OrderCreator, error) {
	trimmed := strings.TrimSpace(noSP)
	if trimmed == "" {
		return OrderCreator{}, ErrNotFound
	}
	var row creatorRow
	err := s.db.WithContext(ctx).Raw(
		`SELECT
		   o.id,
		   o.no_sp,
		   o.creator,
		   COALESCE(u.name, 'User #' || COALESCE(o.creator, '?')) AS creator_name
		 FROM order_letters o
		 LEFT JOIN users u ON (o.creator)::bigint = u.id
		 WHERE o.no_sp = ?
		 LIMIT 1`, trimmed,
	).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return OrderCreator{}, ErrNotFound
	}
	if err != nil {
		return OrderCreator{}, &InfrastructureError{Op: "find order creator", Err: err}
	}
	return OrderCreator{
		OrderID:     row.ID,
		NoSP:        row.NoSP,
		CreatorID:   row.Creator,
		CreatorName: row.CreatorName,
	}, nil
}

const productPageSize = 20

var productSearchColumns = []string{
	"brand", "tipe", "series", "ukuran", "program", "kasur", "divan", "headboard",
}

// ilikeAnyClause builds "col1 ILIKE ? OR col2 ILIKE ? ..." over the given
// columns; the caller supplies one copy of the pattern per column.
func ilikeAnyClause(columns []string) string {
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = col + " ILIKE ?"
	}
	return strings.Join(parts, " OR ")
}

func patternArgs(pattern string, n int) []interface{} {
	args := make([]interface{}, n)
	for i := range args {
		args[i] = pattern
	}
	return args
}

func (s *Service) SearchProducts(ctx context.Context, keyword string, page int) (ProductPage, error) {
	if page < 1 {
		page = 1
	}
	tx := s.db.WithContext(ctx).
		Table("rawdata_price_lists").
		Select("id, brand, tipe, ukuran, pricelist, end_user_price")
	clause := ilikeAnyClause(productSearchColumns)
	for _, term := range strings.Fields(strings.TrimSpace(keyword)) {
		tx = tx.Where(clause, patternArgs("%"+term+"%", len(productSearchColumns))...)
	}
	var rows []productRow
	err := tx.Order("id DESC").
		Limit(productPageSize).
		Offset((page - 1) * productPageSize).
		Find(&rows).Error
	if err != nil {
		return ProductPage{}, &InfrastructureError{Op: "search products", Err: err}
	}
	products := make([]Product, 0, len(rows))
	for _, r := range rows {
		products = append(products, Product{
			ID:           r.ID,
			Brand:        r.Brand,
			Tipe:         r.Tipe,
			Ukuran:       r.Ukuran,
			Pricelist:    r.Pricelist,
			EndUserPrice: r.EndUserPrice,
		})
	}
	return ProductPage{Products: products, HasMore: len(rows) == productPageSize}, nil
}

// VoidOrder is remote-only; the datastore copy is updated by the Alita API.
func (s *Service) VoidOrder(ctx context.Context, orderID int64, accessToken string) error {
	return s.api.VoidOrder(ctx, orderID, accessToken)
}

func (s *Service) MoveOrderStore(ctx context.Context, noSP string, storeID int64) error {
	trimmed := strings.TrimSpace(noSP)
	if trimmed == "" {
		return &MutationError{Reason: "Nomor SP diperlukan."}
	}
	res := s.db.WithContext(ctx).Exec(
		`UPDATE order_letters SET work_place_id = ?, updated_at = NOW() WHERE no_sp = ?`,
		storeID, trimmed,
	)
	if res.Error != nil {
		return &InfrastructureError{Op: "move order store", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return &MutationError{Reason: "Nomor SP tidak ditemukan."}
	}
	return nil
}

// ReassignCreator performs the two dependent writes of the ganti-sales
// workflow: the order's creator column, then the level-1 discount approver
// record. They are not wrapped in a transaction; when the second write
// fails the first has already landed and the caller reports failure.
func (s *Service) ReassignCreator(ctx context.Context, noSP string, newUserID int64, newUserName string) error {
	trimmed := strings.TrimSpace(noSP)
	if trimmed == "" {
		return &MutationError{Reason: "Nomor SP diperlukan."}
	}
	var row struct {
		ID int64 `gorm:"column:id"`
	}
	err := s.db.WithContext(ctx).
		Table("order_letters").
		Select("id").
		Where("no_sp = ?", trimmed).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &MutationError{Reason: "Nomor SP tidak ditemukan."}
	}
	if err != nil {
		return &InfrastructureError{Op: "reassign creator", Err: err}
	}

	if err := s.db.WithContext(ctx).Exec(
		`UPDATE order_letters SET creator = ?, updated_at = NOW() WHERE id = ?`,
		newUserID, row.ID,
	).Error; err != nil {
		return &InfrastructureError{Op: "reassign creator", Err: err}
	}

	if err := s.db.WithContext(ctx).Exec(
		`UPDATE order_letter_discounts
		 SET approver = ?, approver_name = ?, updated_at = NOW()
		 WHERE order_letter_id = ? AND approver_level_id = 1`,
		newUserID, newUserName, row.ID,
	).Error; err != nil {
		return &InfrastructureError{
			Op:  "reassign creator",
			Err: fmt.Errorf("approver record update after creator change: %w", err),
		}
	}
	return nil
}
