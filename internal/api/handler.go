package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coinwatch/coinpulse/internal/domain/dto"
	"github.com/coinwatch/coinpulse/internal/domain/errs"
	"github.com/coinwatch/coinpulse/internal/service"
)

// Handler provides HTTP handlers for the history and coin listing endpoints.
//
// Responsibilities:
//   - Pull query parameters off the request
//   - Delegate to the service layer
//   - Map the closed error taxonomy onto HTTP status codes
//   - Return structured JSON responses
type Handler struct {
	history service.HistoryService
	coins   service.CoinService
}

// NewHandler constructs a Handler with its service dependencies.
func NewHandler(history service.HistoryService, coins service.CoinService) *Handler {
	return &Handler{history: history, coins: coins}
}

// GetHistory handles GET /history requests.
//
// Query Parameters:
//   - coin (string, required): coin id (e.g. "bitcoin").
//   - from (string, required): window start, ISO 8601.
//   - to (string, required): window end, ISO 8601; must be after from.
//   - interval (string, required): bucket width, number + m/h/d (e.g. "1h").
//
// Responses:
//   - 200 OK: ascending HistoryRecord array.
//   - 400 Bad Request: missing or invalid query parameters.
//   - 502 Bad Gateway: upstream fetch failed after retries.
//   - 500 Internal Server Error: anything else.
//
// GetHistory godoc
// @Summary      Get aggregated price history
// @Description  Returns OHLCV buckets with percent change for a coin over a time window
// @Tags         history
// @Produce      json
// @Param        coin      query     string  true  "Coin id"             example(bitcoin)
// @Param        from      query     string  true  "Window start (ISO)"  example(2024-01-01T00:00:00Z)
// @Param        to        query     string  true  "Window end (ISO)"    example(2024-01-02T00:00:00Z)
// @Param        interval  query     string  true  "Bucket width"        example(1h)
// @Success      200       {array}   models.HistoryRecord  "Success"
// @Failure      400       {object}  dto.ErrorResponse     "Bad Request"
// @Failure      502       {object}  dto.ErrorResponse     "Upstream Failure"
// @Failure      500       {object}  dto.ErrorResponse     "Internal Error"
// @Router       /history [get]
func (h *Handler) GetHistory(c *gin.Context) {
	records, err := h.history.GetHistory(
		c.Request.Context(),
		c.Query("coin"),
		c.Query("from"),
		c.Query("to"),
		c.Query("interval"),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// GetCoins handles GET /coins requests.
//
// GetCoins godoc
// @Summary      List coins
// @Description  Returns the coin market listing ordered by market cap
// @Tags         coins
// @Produce      json
// @Success      200  {array}   models.CoinSummary  "Success"
// @Failure      502  {object}  dto.ErrorResponse   "Upstream Failure"
// @Failure      500  {object}  dto.ErrorResponse   "Internal Error"
// @Router       /coins [get]
func (h *Handler) GetCoins(c *gin.Context) {
	coins, err := h.coins.GetCoins(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, coins)
}

// respondError narrows the error taxonomy onto status codes. Cache errors
// never reach this point (the cache absorbs its own failures), so anything
// unrecognized is an internal error.
func respondError(c *gin.Context, err error) {
	var ve *errs.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(ve.Reason, ve.Unwrap()))
		return
	}
	var ue *errs.UpstreamError
	if errors.As(err, &ue) {
		c.JSON(http.StatusBadGateway, dto.NewErrorResponse("upstream fetch failed", err))
		return
	}
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("internal server error", err))
}
