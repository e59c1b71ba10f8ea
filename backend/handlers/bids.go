package handlers

import (
	"github.com/gofiber/fiber/v2"

	webmodels "github.com/fantasyrun/runner-market/backend/models"
	"github.com/fantasyrun/runner-market/backend/utils"
	"github.com/fantasyrun/runner-market/internal/domain/marketplace"
)

func PlaceListingBid(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.ListingBidRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "invalid request body", map[string]string{"body": err.Error()})
		}

		result, err := webApp.Market.PlaceListingBid(c.UserContext(), marketplace.ListingBidInput{
			ListingID: c.Params("id"),
			BidderID:  utils.UserID(c),
			Amount:    req.Amount,
			Order:     req.Order,
		})
		if err != nil {
			return utils.SendMarketError(c, err)
		}

		resp := &webmodels.PlaceBidResponse{
			Bid:        webmodels.NewBidResponse(result.Bid),
			Settled:    result.Settled(),
			Settlement: webmodels.NewSettlementResponse(result.Settlement),
		}
		message := "Bid placed"
		if resp.Settled {
			message = "Bid met the asking price, card transferred"
		}
		return utils.SendCreated(c, resp, message)
	}
}

func PlaceOpenBid(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.OpenBidRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "invalid request body", map[string]string{"body": err.Error()})
		}

		bid, err := webApp.Market.PlaceOpenBid(c.UserContext(), marketplace.OpenBidInput{
			CardID:         c.Params("id"),
			BidderID:       utils.UserID(c),
			Amount:         req.Amount,
			Order:          req.Order,
			ExpirationTime: req.ExpirationTime,
		})
		if err != nil {
			return utils.SendMarketError(c, err)
		}
		return utils.SendCreated(c, webmodels.NewBidResponse(bid), "Open bid placed")
	}
}

func GetOpenBidsForCard(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bids, err := webApp.Market.GetOpenBidsForCard(c.UserContext(), c.Params("id"))
		if err != nil {
			return utils.SendMarketError(c, err)
		}
		return utils.SendSuccess(c, webmodels.NewBidResponses(bids), "")
	}
}

func AcceptOpenBid(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.AcceptBidRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "invalid request body", map[string]string{"body": err.Error()})
		}

		settlement, err := webApp.Market.AcceptOpenBid(c.UserContext(), c.Params("id"), utils.UserID(c), req.TxHash)
		if err != nil {
			return utils.SendMarketError(c, err)
		}
		return utils.SendSuccess(c, webmodels.NewSettlementResponse(settlement), "Bid accepted")
	}
}

// GetUserBids only serves the caller's own bids.
func GetUserBids(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Params("id")
		if userID != utils.UserID(c) {
			return utils.SendForbidden(c, "bids of other users are not visible")
		}

		bids, err := webApp.Market.GetAllUserBids(c.UserContext(), userID)
		if err != nil {
			return utils.SendMarketError(c, err)
		}
		return utils.SendSuccess(c, webmodels.NewBidResponses(bids), "")
	}
}
