package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Skotchmaster/laundry_service/internal/domain"
	"github.com/Skotchmaster/laundry_service/internal/events"
	"github.com/Skotchmaster/laundry_service/internal/logging"
	"github.com/Skotchmaster/laundry_service/internal/models"
	"github.com/Skotchmaster/laundry_service/internal/pricing"
	"github.com/Skotchmaster/laundry_service/internal/repo"
	"github.com/Skotchmaster/laundry_service/internal/transport"
	"github.com/Skotchmaster/laundry_service/internal/util"
)

// VoucherLedger owns the voucher catalog and the per-user claims.
type VoucherLedger struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Now    func() time.Time
}

func NewVoucherLedger(r *repo.GormRepo, p events.Publisher) *VoucherLedger {
	return &VoucherLedger{Repo: r, Events: p, Now: time.Now}
}

type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason"`
	err    error
}

// Err is the domain error behind an invalid result, nil when valid.
func (v ValidationResult) Err() error {
	return v.err
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (l *VoucherLedger) now() time.Time {
	return clock(l.Now)
}

func clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}

func (l *VoucherLedger) ListActiveVouchers(ctx context.Context) ([]models.Voucher, error) {
	return l.Repo.ListVouchers(ctx, true)
}

func (l *VoucherLedger) ListVouchers(ctx context.Context) ([]models.Voucher, error) {
	return l.Repo.ListVouchers(ctx, false)
}

// FindVoucherByCode looks among active vouchers only.
func (l *VoucherLedger) FindVoucherByCode(ctx context.Context, code string) (*models.Voucher, error) {
	code = NormalizeCode(code)
	v, err := l.Repo.GetVoucherByCode(ctx, code, false)
	if err != nil {
		return nil, err
	}
	if !v.IsActive {
		return nil, fmt.Errorf("%w: %s", domain.ErrVoucherNotFound, code)
	}
	return v, nil
}

func (l *VoucherLedger) ListClaimsForUser(ctx context.Context, userID uint) ([]models.UserVoucherClaim, error) {
	return l.Repo.ListClaims(ctx, userID, false)
}

// ListAvailableClaims returns the unused, unexpired claims of a user.
func (l *VoucherLedger) ListAvailableClaims(ctx context.Context, userID uint) ([]models.UserVoucherClaim, error) {
	claims, err := l.Repo.ListClaims(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	now := l.now()
	out := claims[:0]
	for _, c := range claims {
		if c.Terms.ExpiryDate.After(now) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (l *VoucherLedger) GetClaim(ctx context.Context, id uint) (*models.UserVoucherClaim, error) {
	return l.Repo.GetClaim(ctx, id, false)
}

// Claim attaches a voucher to a user. ref is a voucher id or code.
func (l *VoucherLedger) Claim(ctx context.Context, userID uint, ref string) (*models.UserVoucherClaim, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty voucher reference", domain.ErrVoucherNotFound)
	}

	now := l.now()
	var claim *models.UserVoucherClaim
	err := l.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		v, err := lookupVoucher(ctx, tx, ref)
		if err != nil {
			return err
		}
		if !v.IsActive {
			return fmt.Errorf("%w: %s", domain.ErrVoucherInactive, v.Code)
		}
		if v.Exhausted() {
			return fmt.Errorf("%w: %s", domain.ErrVoucherExhausted, v.Code)
		}

		exists, err := tx.ClaimExists(ctx, userID, v.ID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", domain.ErrAlreadyClaimed, v.Code)
		}

		claim = &models.UserVoucherClaim{
			UserID:    userID,
			VoucherID: v.ID,
			Terms:     v.Snapshot(),
			ClaimedAt: now,
		}
		return tx.CreateClaim(ctx, claim)
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("voucher_claimed", "user_id", userID, "voucher_id", claim.VoucherID, "claim_id", claim.ID)
	events.Publish(ctx, l.Events, events.TopicVouchers, claim.Terms.Code, events.New(events.VoucherClaimed, now, map[string]any{
		"claim_id":   claim.ID,
		"user_id":    userID,
		"voucher_id": claim.VoucherID,
		"code":       claim.Terms.Code,
	}))
	return claim, nil
}

func lookupVoucher(ctx context.Context, tx *repo.GormRepo, ref string) (*models.Voucher, error) {
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		v, err := tx.GetVoucher(ctx, uint(id), true)
		if err == nil || !errors.Is(err, domain.ErrVoucherNotFound) {
			return v, err
		}
	}
	return tx.GetVoucherByCode(ctx, NormalizeCode(ref), true)
}

// Validate never fails: any problem, storage errors included, comes back as
// an invalid result.
func (l *VoucherLedger) Validate(ctx context.Context, claimID uint, amount int64) ValidationResult {
	claim, err := l.Repo.GetClaim(ctx, claimID, false)
	if err != nil {
		if errors.Is(err, domain.ErrClaimNotFound) {
			return checkClaim(nil, amount, l.now())
		}
		logging.FromContext(ctx).Error("validate_claim_error", "claim_id", claimID, "error", err)
		return ValidationResult{Reason: "voucher cannot be checked right now", err: err}
	}
	return checkClaim(claim, amount, l.now())
}

// ValidateForUser is Validate restricted to the caller's own claims.
func (l *VoucherLedger) ValidateForUser(ctx context.Context, userID, claimID uint, amount int64) ValidationResult {
	claim, err := l.Repo.GetClaim(ctx, claimID, false)
	switch {
	case err == nil && claim.UserID == userID:
		return checkClaim(claim, amount, l.now())
	case err == nil || errors.Is(err, domain.ErrClaimNotFound):
		return checkClaim(nil, amount, l.now())
	}
	logging.FromContext(ctx).Error("validate_claim_error", "claim_id", claimID, "error", err)
	return ValidationResult{Reason: "voucher cannot be checked right now", err: err}
}

// checkClaim applies the redemption rules in order: existence, usage,
// expiry, minimum order.
func checkClaim(c *models.UserVoucherClaim, amount int64, now time.Time) ValidationResult {
	switch {
	case c == nil:
		return invalid(domain.ErrClaimNotFound, "voucher not found")
	case c.IsUsed:
		return invalid(domain.ErrAlreadyUsed, "voucher already used")
	case c.Terms.ExpiryDate.Before(now):
		return invalid(domain.ErrVoucherExpired, "voucher expired")
	case amount < c.Terms.MinimumOrder:
		reason := "minimum order " + util.FormatRupiah(c.Terms.MinimumOrder) + " required"
		return invalid(fmt.Errorf("%w: %s", domain.ErrBelowMinimumOrder, reason), reason)
	}
	return ValidationResult{Valid: true, Reason: "voucher can be used"}
}

func invalid(err error, reason string) ValidationResult {
	return ValidationResult{Reason: reason, err: err}
}

// MarkUsed consumes a claim outside of order creation.
func (l *VoucherLedger) MarkUsed(ctx context.Context, claimID uint) (*models.UserVoucherClaim, error) {
	now := l.now()
	var claim *models.UserVoucherClaim
	err := l.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		c, err := tx.GetClaim(ctx, claimID, true)
		if err != nil {
			return err
		}
		if c.IsUsed {
			return fmt.Errorf("%w: claim %d", domain.ErrAlreadyUsed, claimID)
		}
		if err := consumeClaim(ctx, tx, c, now); err != nil {
			return err
		}
		claim = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishVoucherUsed(ctx, l.Events, claim, nil, now)
	return claim, nil
}

// consumeClaim marks the claim used and counts one redemption on its voucher.
func consumeClaim(ctx context.Context, tx *repo.GormRepo, c *models.UserVoucherClaim, now time.Time) error {
	if err := tx.ConsumeClaim(ctx, c.ID, now); err != nil {
		return err
	}
	if err := tx.IncrementVoucherUsage(ctx, c.VoucherID); err != nil {
		return err
	}
	c.IsUsed = true
	c.UsedAt = &now
	return nil
}

func publishVoucherUsed(ctx context.Context, p events.Publisher, c *models.UserVoucherClaim, orderID *uint, now time.Time) {
	data := map[string]any{
		"claim_id":   c.ID,
		"user_id":    c.UserID,
		"voucher_id": c.VoucherID,
		"code":       c.Terms.Code,
	}
	if orderID != nil {
		data["order_id"] = *orderID
	}
	events.Publish(ctx, p, events.TopicVouchers, c.Terms.Code, events.New(events.VoucherUsed, now, data))
}

func (l *VoucherLedger) CreateVoucher(ctx context.Context, req transport.CreateVoucherRequest) (*models.Voucher, error) {
	v := &models.Voucher{
		Code:          NormalizeCode(req.Code),
		Kind:          req.Kind,
		DiscountValue: req.DiscountValue,
		FreeWeightKg:  req.FreeWeightKg,
		MinimumOrder:  req.MinimumOrder,
		MaxUsage:      req.MaxUsage,
		ExpiryDate:    req.ExpiryDate.UTC(),
		IsActive:      true,
		Description:   strings.TrimSpace(req.Description),
	}
	if req.IsActive != nil {
		v.IsActive = *req.IsActive
	}
	if v.Code == "" {
		return nil, fmt.Errorf("%w: code is required", domain.ErrInvalidVoucher)
	}
	if err := validateVoucher(v); err != nil {
		return nil, err
	}
	if err := l.Repo.CreateVoucher(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// UpdateVoucher edits the catalog entry. Existing claims keep their copy of
// the old terms. A nil field is left unchanged; ClearMaxUsage lifts the cap.
func (l *VoucherLedger) UpdateVoucher(ctx context.Context, id uint, req transport.PatchVoucherRequest) (*models.Voucher, error) {
	var v *models.Voucher
	err := l.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		var err error
		v, err = tx.GetVoucher(ctx, id, true)
		if err != nil {
			return err
		}
		if req.DiscountValue != nil {
			v.DiscountValue = req.DiscountValue
		}
		if req.FreeWeightKg != nil {
			v.FreeWeightKg = req.FreeWeightKg
		}
		if req.MinimumOrder != nil {
			v.MinimumOrder = *req.MinimumOrder
		}
		switch {
		case req.ClearMaxUsage:
			v.MaxUsage = nil
		case req.MaxUsage != nil:
			v.MaxUsage = req.MaxUsage
		}
		if req.ExpiryDate != nil {
			v.ExpiryDate = req.ExpiryDate.UTC()
		}
		if req.IsActive != nil {
			v.IsActive = *req.IsActive
		}
		if req.Description != nil {
			v.Description = strings.TrimSpace(*req.Description)
		}
		if err := validateVoucher(v); err != nil {
			return err
		}
		return tx.SaveVoucher(ctx, v)
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func validateVoucher(v *models.Voucher) error {
	switch v.Kind {
	case models.VoucherPercentage:
		if v.DiscountValue == nil || *v.DiscountValue < 1 || *v.DiscountValue > 100 {
			return fmt.Errorf("%w: percentage must be between 1 and 100", domain.ErrInvalidVoucher)
		}
		if v.FreeWeightKg != nil {
			return fmt.Errorf("%w: percentage voucher has no free weight", domain.ErrInvalidVoucher)
		}
	case models.VoucherFixed:
		if v.DiscountValue == nil || *v.DiscountValue <= 0 {
			return fmt.Errorf("%w: fixed discount must be > 0", domain.ErrInvalidVoucher)
		}
		if v.FreeWeightKg != nil {
			return fmt.Errorf("%w: fixed voucher has no free weight", domain.ErrInvalidVoucher)
		}
	case models.VoucherFreeWeight:
		if v.FreeWeightKg == nil || !(*v.FreeWeightKg > 0) {
			return fmt.Errorf("%w: free weight must be > 0", domain.ErrInvalidVoucher)
		}
		if *v.FreeWeightKg > pricing.MaxWeightKg {
			return fmt.Errorf("%w: free weight exceeds %g kg", domain.ErrInvalidVoucher, pricing.MaxWeightKg)
		}
		if v.DiscountValue != nil {
			return fmt.Errorf("%w: free weight voucher has no discount value", domain.ErrInvalidVoucher)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidVoucher, v.Kind)
	}

	if v.MinimumOrder < 0 {
		return fmt.Errorf("%w: minimum order must be >= 0", domain.ErrInvalidVoucher)
	}
	if v.MaxUsage != nil && *v.MaxUsage <= 0 {
		return fmt.Errorf("%w: max usage must be > 0", domain.ErrInvalidVoucher)
	}
	if v.MaxUsage != nil && *v.MaxUsage < v.UsedCount {
		return fmt.Errorf("%w: max usage %d is below used count %d", domain.ErrInvalidVoucher, *v.MaxUsage, v.UsedCount)
	}
	if v.ExpiryDate.IsZero() {
		return fmt.Errorf("%w: expiry date is required", domain.ErrInvalidVoucher)
	}
	return nil
}
