package controllers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/gamehaven/GameHaven/internal/pkg/constants"
	"github.com/gamehaven/GameHaven/internal/pkg/env"
	"github.com/gamehaven/GameHaven/internal/pkg/session"
	"github.com/gamehaven/GameHaven/internal/pkg/tebex"
	"github.com/gamehaven/GameHaven/internal/pkg/usercontext"
)

const checkoutTimeout = 20 * time.Second

// HandleCheckoutStart opens a provider basket for the selected package and
// redirects the user to the hosted checkout.
func HandleCheckoutStart(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	packageID, err := strconv.ParseInt(strings.TrimSpace(c.FormValue("package_id")), 10, 64)
	if err != nil || packageID <= 0 {
		fm := fiber.Map{"type": "error", "message": "Ungültiges Paket ausgewählt"}
		return flash.WithError(c, fm).Redirect(constants.PricingRoute)
	}

	base := env.GetEnv("PUBLIC_DOMAIN", "http://localhost:4000")
	client := tebex.NewClientFromEnv()
	ctx, cancel := context.WithTimeout(context.Background(), checkoutTimeout)
	defer cancel()

	basket, err := client.CreateBasket(
		ctx,
		strconv.FormatUint(uint64(userCtx.UserID), 10),
		base+constants.CheckoutCompleteRoute,
		base+constants.PricingRoute,
	)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Checkout konnte nicht gestartet werden"}
		return flash.WithError(c, fm).Redirect(constants.PricingRoute)
	}

	if err := client.AddPackage(ctx, basket.Ident, packageID, nil); err != nil {
		fm := fiber.Map{"type": "error", "message": "Paket konnte nicht zum Warenkorb hinzugefügt werden"}
		return flash.WithError(c, fm).Redirect(constants.PricingRoute)
	}

	if basket.Links.Checkout == "" {
		fm := fiber.Map{"type": "error", "message": "Checkout-Link fehlt"}
		return flash.WithError(c, fm).Redirect(constants.PricingRoute)
	}
	return c.Redirect(basket.Links.Checkout, fiber.StatusSeeOther)
}

// HandleCheckoutComplete is the return URL after a successful payment. The
// transaction id in the query is verified against the provider before a
// subscription row is created, so the parameter cannot be forged.
func HandleCheckoutComplete(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	txn := strings.TrimSpace(c.Query("txn_id"))
	if txn == "" {
		fm := fiber.Map{"type": "error", "message": "Transaktions-ID fehlt"}
		return flash.WithError(c, fm).Redirect(constants.PricingRoute)
	}

	client := tebex.NewClientFromEnv()
	ctx, cancel := context.WithTimeout(context.Background(), checkoutTimeout)
	defer cancel()

	payment, err := client.GetPayment(ctx, txn)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Zahlung konnte nicht bestätigt werden"}
		return flash.WithError(c, fm).Redirect(constants.PricingRoute)
	}
	if strings.TrimSpace(payment.Custom.UserID) != strconv.FormatUint(uint64(userCtx.UserID), 10) {
		fm := fiber.Map{"type": "error", "message": "Zahlung gehört zu einem anderen Konto"}
		return flash.WithError(c, fm).Redirect(constants.PricingRoute)
	}

	svc := newBillingService()
	sub, err := svc.RegisterPayment(ctx, payment)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Abo konnte nicht angelegt werden"}
		return flash.WithError(c, fm).Redirect(constants.PricingRoute)
	}

	session.SetSessionValue(c, "user_plan", sub.Plan)
	fm := fiber.Map{"type": "success", "message": "Danke! Dein " + sub.Plan + "-Abo ist jetzt aktiv."}
	return flash.WithSuccess(c, fm).Redirect(constants.HomeRoute)
}
