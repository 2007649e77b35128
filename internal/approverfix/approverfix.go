package approverfix

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Result reports one run of the repair job.
type Result struct {
	Updated int64
	Checked int64
}

// Fixer repairs broken approver_name values on order_letter_discounts.
// A row is broken when the name is NULL, blank, shorter than 3 characters,
// or does not match the full name registered in contacts (first, middle,
// last). Approver levels 1-3 are covered.
type Fixer struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Fixer {
	return &Fixer{db: db}
}

func (f *Fixer) Run(ctx context.Context) (Result, error) {
	res := f.db.WithContext(ctx).Exec(
		`UPDATE order_letter_discounts o
		 SET approver_name = INITCAP(TRIM(CONCAT_WS(' ', c.first_name, c.middle_name, c.last_name))), updated_at = NOW()
		 FROM users u
		 JOIN contacts c ON c.user_id = u.id
		 WHERE (o.approver)::bigint = u.id
		   AND (
		     o.approver_name IS NULL
		     OR TRIM(COALESCE(o.approver_name, '')) = ''
		     OR LENGTH(TRIM(o.approver_name)) < 3
		     OR TRIM(o.approver_name) != INITCAP(TRIM(CONCAT_WS(' ', c.first_name, c.middle_name, c.last_name)))
		   )
		   AND o.approver_level_id IN (1, 2, 3)`,
	)
	if res.Error != nil {
		return Result{}, fmt.Errorf("repair approver names: %w", res.Error)
	}

	var checked int64
	err := f.db.WithContext(ctx).
		Table("order_letter_discounts").
		Where("approver_level_id IN (1, 2, 3)").
		Count(&checked).Error
	if err != nil {
		return Result{Updated: res.RowsAffected}, fmt.Errorf("count approver rows: %w", err)
	}

	return Result{Updated: res.RowsAffected, Checked: checked}, nil
}
