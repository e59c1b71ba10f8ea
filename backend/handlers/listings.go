package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	webmodels "github.com/fantasyrun/runner-market/backend/models"
	"github.com/fantasyrun/runner-market/backend/utils"
	"github.com/fantasyrun/runner-market/internal/config"
	"github.com/fantasyrun/runner-market/internal/domain/marketplace"
	"github.com/fantasyrun/runner-market/internal/gateways/database/models"
)

func CreateListing(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.CreateListingRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "invalid request body", map[string]string{"body": err.Error()})
		}

		listing, err := webApp.Market.CreateListing(c.UserContext(), marketplace.CreateListingInput{
			CardID:         req.CardID,
			SellerID:       utils.UserID(c),
			Price:          req.Price,
			Order:          req.Order,
			ExpirationTime: req.ExpirationTime,
		})
		if err != nil {
			return utils.SendMarketError(c, err)
		}
		return utils.SendCreated(c, webmodels.NewListingResponse(listing), "Listing created")
	}
}

// GetListings accepts min_price, max_price, rarity (comma separated), runner,
// sort, limit and offset query parameters.
func GetListings(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter, details := parseListingFilter(c)
		if len(details) > 0 {
			return utils.SendBadRequest(c, "invalid listing filter", details)
		}

		listings, err := webApp.Market.GetListings(c.UserContext(), filter)
		if err != nil {
			return utils.SendMarketError(c, err)
		}
		return utils.SendPage(c, webmodels.NewListingResponses(listings), pageSize(filter.Limit), filter.Offset, len(listings))
	}
}

func CancelListing(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := webApp.Market.CancelListing(c.UserContext(), c.Params("id"), utils.UserID(c)); err != nil {
			return utils.SendMarketError(c, err)
		}
		return utils.SendSuccess(c, fiber.Map{"id": c.Params("id"), "status": models.ListingInactive}, "Listing cancelled")
	}
}

func parseListingFilter(c *fiber.Ctx) (marketplace.ListingFilter, map[string]string) {
	details := map[string]string{}
	filter := marketplace.ListingFilter{
		Runner: strings.TrimSpace(c.Query("runner")),
		Sort:   marketplace.ListingSort(c.Query("sort")),
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}

	if raw := c.Query("min_price"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			details["min_price"] = "must be a decimal integer"
		} else {
			filter.MinPrice = decimal.NewNullDecimal(d)
		}
	}
	if raw := c.Query("max_price"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			details["max_price"] = "must be a decimal integer"
		} else {
			filter.MaxPrice = decimal.NewNullDecimal(d)
		}
	}
	if raw := c.Query("rarity"); raw != "" {
		for _, r := range strings.Split(raw, ",") {
			if r = strings.TrimSpace(strings.ToLower(r)); r != "" {
				filter.Rarities = append(filter.Rarities, models.Rarity(r))
			}
		}
	}
	return filter, details
}

func pageSize(limit int) int {
	switch {
	case limit <= 0:
		return config.DefaultPageSize
	case limit > config.MaxPageSize:
		return config.MaxPageSize
	}
	return limit
}
