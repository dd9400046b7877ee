package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/laundry_service/internal/logging"
	"github.com/Skotchmaster/laundry_service/internal/service"
	"github.com/Skotchmaster/laundry_service/internal/transport"
)

type VoucherHTTP struct {
	Ledger *service.VoucherLedger
}

func (h *VoucherHTTP) ListActive(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "voucher.list_active")

	vouchers, err := h.Ledger.ListActiveVouchers(ctx)
	if err != nil {
		return fail(l, "list_vouchers_error", err, "cannot list vouchers")
	}
	return c.JSON(http.StatusOK, vouchers)
}

func (h *VoucherHTTP) GetByCode(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "voucher.get_by_code")

	v, err := h.Ledger.FindVoucherByCode(ctx, c.Param("code"))
	if err != nil {
		return fail(l, "get_voucher_error", err, "cannot get voucher")
	}
	return c.JSON(http.StatusOK, v)
}

func (h *VoucherHTTP) Claim(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "voucher.claim")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.ClaimVoucherRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "claim_voucher_error", "invalid body", err)
	}

	claim, err := h.Ledger.Claim(ctx, userID, req.Voucher)
	if err != nil {
		return fail(l, "claim_voucher_error", err, "cannot claim voucher")
	}
	return c.JSON(http.StatusCreated, claim)
}

func (h *VoucherHTTP) MyClaims(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "voucher.my_claims")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	claims, err := h.Ledger.ListClaimsForUser(ctx, userID)
	if err != nil {
		return fail(l, "list_claims_error", err, "cannot list claims")
	}
	return c.JSON(http.StatusOK, claims)
}

func (h *VoucherHTTP) AvailableClaims(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "voucher.available_claims")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	claims, err := h.Ledger.ListAvailableClaims(ctx, userID)
	if err != nil {
		return fail(l, "list_claims_error", err, "cannot list claims")
	}
	return c.JSON(http.StatusOK, claims)
}

// ValidateClaim always answers 200 with the {valid, reason} pair.
func (h *VoucherHTTP) ValidateClaim(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "voucher.validate_claim")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	claimID, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "validate_claim_error", err.Error(), err)
	}
	var req transport.ValidateClaimRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "validate_claim_error", "invalid body", err)
	}

	return c.JSON(http.StatusOK, h.Ledger.ValidateForUser(ctx, userID, claimID, req.OrderAmount))
}

func (h *VoucherHTTP) AdminList(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "voucher.admin_list")

	vouchers, err := h.Ledger.ListVouchers(ctx)
	if err != nil {
		return fail(l, "list_vouchers_error", err, "cannot list vouchers")
	}
	return c.JSON(http.StatusOK, vouchers)
}

func (h *VoucherHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "voucher.create")

	var req transport.CreateVoucherRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_voucher_error", "invalid body", err)
	}

	v, err := h.Ledger.CreateVoucher(ctx, req)
	if err != nil {
		return fail(l, "create_voucher_error", err, "cannot create voucher")
	}
	l.Info("create_voucher_success", "voucher_id", v.ID, "code", v.Code)
	return c.JSON(http.StatusCreated, v)
}

func (h *VoucherHTTP) Patch(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "voucher.patch")

	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "patch_voucher_error", err.Error(), err)
	}
	var req transport.PatchVoucherRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "patch_voucher_error", "invalid body", err)
	}

	v, err := h.Ledger.UpdateVoucher(ctx, id, req)
	if err != nil {
		return fail(l, "patch_voucher_error", err, "cannot update voucher")
	}
	l.Info("patch_voucher_success", "voucher_id", v.ID)
	return c.JSON(http.StatusOK, v)
}

// MarkUsed consumes a claim without creating an order.
func (h *VoucherHTTP) MarkUsed(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "voucher.mark_used")

	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "mark_used_error", err.Error(), err)
	}

	claim, err := h.Ledger.MarkUsed(ctx, id)
	if err != nil {
		return fail(l, "mark_used_error", err, "cannot mark claim used")
	}
	return c.JSON(http.StatusOK, claim)
}
