package handler

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/AccelByte/extend-rpg-localserver/pkg/domain"
	"github.com/AccelByte/extend-rpg-localserver/pkg/errors"
	"github.com/AccelByte/extend-rpg-localserver/pkg/limit"
	"github.com/AccelByte/extend-rpg-localserver/pkg/reward"
	"github.com/AccelByte/extend-rpg-localserver/pkg/timeauth"
)

// MaxPurchaseQuantity is the most units a single purchase may buy.
const MaxPurchaseQuantity = 99

// ProductCatalog resolves shop product definitions.
type ProductCatalog interface {
	GetProductByID(productID string) *domain.ProductDefinition
}

// ShopOptions tunes a ShopHandler.
type ShopOptions struct {
	// StaminaRecoveryInterval is the time to recover one stamina point.
	StaminaRecoveryInterval time.Duration
}

// ShopHandler handles product purchases.
type ShopHandler struct {
	time     *timeauth.Authority
	limits   *limit.Validator
	rewards  *reward.Engine
	products ProductCatalog
	wallet   wallet
	logger   *slog.Logger
}

// NewShopHandler creates a ShopHandler.
func NewShopHandler(
	auth *timeauth.Authority,
	limits *limit.Validator,
	rewards *reward.Engine,
	products ProductCatalog,
	opts ShopOptions,
	logger *slog.Logger,
) *ShopHandler {
	return &ShopHandler{
		time:     auth,
		limits:   limits,
		rewards:  rewards,
		products: products,
		wallet:   wallet{staminaInterval: opts.StaminaRecoveryInterval},
		logger:   logger,
	}
}

// Purchase buys req.Quantity units of a product. A quantity below 1 buys one.
// Each unit counts against the purchase limit and multiplies both price and rewards.
//
// Validations run in this order: product exists, product enabled, quantity at
// most MaxPurchaseQuantity, purchase limit, price affordable. Nothing is
// modified unless all pass.
func (h *ShopHandler) Purchase(player *domain.PlayerAggregate, req PurchaseRequest) PurchaseResponse {
	now := h.time.Now()
	quantity := max(req.Quantity, 1)

	product, remaining, gameErr := h.validatePurchase(player, req.ProductID, quantity, now)
	if gameErr != nil {
		h.logger.Debug("Purchase rejected",
			"player_id", player.PlayerID,
			"product_id", req.ProductID,
			"quantity", quantity,
			"error_code", gameErr.Code.String(),
			"reason", gameErr.Message,
		)
		return PurchaseResponse{Response: failed(gameErr), ProductID: req.ProductID, Remaining: remaining}
	}

	price, _ := product.Price.Times(quantity)
	delta := h.wallet.charge(player, price, now)

	rewards, _ := scaleRewards(product.Rewards, quantity)
	delta.Merge(h.rewards.Grant(rewards, player))

	record := h.limits.UpdateRecordBy(product.ID, product.LimitPolicy, player.FindPurchaseRecord(product.ID), quantity)
	player.SetPurchaseRecord(record)

	h.logger.Info("Product purchased",
		"player_id", player.PlayerID,
		"product_id", product.ID,
		"quantity", quantity,
		"purchase_count", record.Count,
	)

	return PurchaseResponse{
		Response:       succeeded(),
		ProductID:      product.ID,
		Rewards:        rewards,
		Delta:          delta,
		PurchaseRecord: &record,
		Remaining:      h.limits.Remaining(product.LimitPolicy, product.LimitCount, &record),
	}
}

func (h *ShopHandler) validatePurchase(player *domain.PlayerAggregate, productID string, quantity int, now time.Time) (*domain.ProductDefinition, int, *errors.GameError) {
	if h.products == nil {
		return nil, 0, errors.ErrServerError("product catalog not configured", nil)
	}

	product := h.products.GetProductByID(productID)
	if product == nil {
		return nil, 0, errors.ErrProductNotFound(productID)
	}
	if !product.Enabled {
		return nil, 0, errors.ErrProductDisabled(product.ID)
	}

	record := player.FindPurchaseRecord(product.ID)
	if quantity > MaxPurchaseQuantity {
		remaining := h.limits.Remaining(product.LimitPolicy, product.LimitCount, record)
		return nil, remaining, errors.ErrQuantityTooLarge(product.ID, quantity, MaxPurchaseQuantity)
	}

	allowed, remaining := h.limits.CanProceedBy(product.LimitPolicy, product.LimitCount, record, quantity)
	if !allowed {
		return nil, remaining, errors.ErrLimitExceeded(product.ID, remaining)
	}

	price, ok := product.Price.Times(quantity)
	if !ok {
		return nil, remaining, errors.ErrInsufficientCurrency(string(product.Price.Kind), math.MaxInt64, h.wallet.available(player, product.Price, now))
	}
	if err := h.wallet.validateCost(price); err != nil {
		return nil, remaining, errors.ErrServerError("invalid price for product "+product.ID, err)
	}
	if ok, available := h.wallet.canAfford(player, price, now); !ok {
		return nil, remaining, errors.ErrInsufficientCurrency(string(price.Kind), price.Amount, available)
	}

	if err := reward.ValidateRewards(product.Rewards); err != nil {
		return nil, remaining, errors.ErrServerError("invalid rewards for product "+product.ID, err)
	}
	if _, ok := scaleRewards(product.Rewards, quantity); !ok {
		return nil, remaining, errors.ErrServerError(fmt.Sprintf("rewards for %d x %s overflow", quantity, product.ID), nil)
	}
	return product, remaining, nil
}

// scaleRewards multiplies grants for a multi-unit purchase. Character grants
// are repeated since each grant yields exactly one instance. ok is false when
// a scaled amount overflows.
func scaleRewards(grants []domain.RewardGrant, quantity int) ([]domain.RewardGrant, bool) {
	if quantity <= 1 {
		return append([]domain.RewardGrant(nil), grants...), true
	}

	scaled := make([]domain.RewardGrant, 0, len(grants))
	for _, g := range grants {
		if g.Kind == domain.RewardKindCharacter {
			for i := 0; i < quantity; i++ {
				scaled = append(scaled, g)
			}
			continue
		}
		amount, ok := domain.MulAmount(g.Amount, quantity)
		if !ok {
			return nil, false
		}
		g.Amount = amount
		scaled = append(scaled, g)
	}
	return scaled, true
}
