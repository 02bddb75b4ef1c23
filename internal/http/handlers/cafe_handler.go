// Cafe HTTP handlers.
//
// This file exposes the REST endpoints of the cafe directory:
//   - GET    /              (landing page)
//   - GET    /all           (list every cafe, behind the daily quota)
//   - GET    /random        (one cafe chosen uniformly)
//   - GET    /search?loc=   (cafes at a location)
//   - POST   /add           (form body, optional Idempotency-Key)
//   - PATCH  /update/{id}   (form field new_price)
//   - DELETE /delete/{id}   (query parameter api_key)
//
// Handlers are transport-thin: they check input presence, call the service
// and translate results and sentinel errors into HTTP responses.
package handlers

import (
	"context"
	_ "embed"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-cafe-api/internal/domain"
	"github.com/tbourn/go-cafe-api/internal/http/middleware"
	"github.com/tbourn/go-cafe-api/internal/services"
	"github.com/tbourn/go-cafe-api/internal/utils"
)

//go:embed templates/index.html
var indexHTML []byte

// landingCSP allows the inline styles of the landing page and nothing else.
const landingCSP = "default-src 'none'; style-src 'unsafe-inline'; img-src 'self' data:; base-uri 'none'; frame-ancestors 'none'"

//
// Service contracts (context-aware)
//

// CafeService defines the directory operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type CafeService interface {
	// All returns every cafe.
	All(ctx context.Context) ([]domain.Cafe, error)
	// Search returns the cafes at loc or services.ErrNoCafesAtLocation.
	Search(ctx context.Context, loc string) ([]domain.Cafe, error)
	// Random returns one cafe or services.ErrNoCafes.
	Random(ctx context.Context) (*domain.Cafe, error)
	// Add stores a new cafe.
	Add(ctx context.Context, in domain.CafeInput) (*domain.Cafe, error)
	// UpdatePrice replaces the coffee price of a cafe.
	UpdatePrice(ctx context.Context, id uint, price string) error
	// Delete removes a cafe when apiKey matches the shared secret.
	Delete(ctx context.Context, id uint, apiKey string) error
}

// IdempotencyStore remembers which cafe a client created with an
// Idempotency-Key.
type IdempotencyStore interface {
	// Seen reports whether (client, key) already completed.
	Seen(ctx context.Context, client, key string) (bool, error)
	// Record stores the outcome of a completed add.
	Record(ctx context.Context, client, key string, cafeID uint) error
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints of the directory.
type Handlers struct {
	svc  CafeService
	idem IdempotencyStore
}

// New constructs Handlers bound to svc. idem may be nil, which disables
// idempotent adds.
func New(svc CafeService, idem IdempotencyStore) *Handlers {
	return &Handlers{svc: svc, idem: idem}
}

//
// Helpers
//

// cafeID parses the :id path parameter. Anything but a positive integer is
// treated like an unknown route.
func cafeID(c *gin.Context) (uint, bool) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		RouteNotFound(c)
	}
	return id, ok
}

// missingFields reports whether any required add field is absent from the
// form body. Presence is what counts; blank values are checked later.
func missingFields(c *gin.Context) bool {
	for _, f := range domain.RequiredAddFields {
		if _, ok := c.GetPostForm(f); !ok {
			return true
		}
	}
	return false
}

// inputFromForm maps the add form onto a CafeInput.
func inputFromForm(c *gin.Context) domain.CafeInput {
	price := c.PostForm("coffee_price")
	return domain.CafeInput{
		Name:         c.PostForm("name"),
		MapURL:       c.PostForm("map_url"),
		ImgURL:       c.PostForm("img_url"),
		Location:     c.PostForm("location"),
		Seats:        c.PostForm("seats"),
		HasToilet:    domain.ParseFlag(c.PostForm("has_toilet")),
		HasWifi:      domain.ParseFlag(c.PostForm("has_wifi")),
		HasSockets:   domain.ParseFlag(c.PostForm("has_sockets")),
		CanTakeCalls: domain.ParseFlag(c.PostForm("can_take_calls")),
		CoffeePrice:  &price,
	}
}

// RouteNotFound writes the 404 used for unknown routes.
func RouteNotFound(c *gin.Context) {
	fail(c, http.StatusNotFound, ErrCodeNotFound, MsgRouteNotFound)
}

// MethodNotAllowed writes the 405 used for known routes hit with the wrong verb.
func MethodNotAllowed(c *gin.Context) {
	fail(c, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, MsgMethodNotAllowed)
}

func serverError(c *gin.Context, err error) {
	_ = c.Error(err)
	fail(c, http.StatusInternalServerError, ErrCodeInternal, MsgInternal)
}

//
// Handlers
//

// Home godoc
// @ID          home
// @Summary     Landing page
// @Description Static HTML page documenting the API.
// @Tags        Pages
// @Produce     html
// @Success     200  {string}  string  "HTML page"
// @Router      / [get]
func (h *Handlers) Home(c *gin.Context) {
	c.Header("Content-Security-Policy", landingCSP)
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

// AllCafes godoc
// @ID          allCafes
// @Summary     List all cafes
// @Description Returns every cafe ordered by id. Limited to a daily quota per client.
// @Tags        Cafes
// @Produce     json
// @Success     200  {object}  handlers.CafesResponse
// @Header      200  {string}  X-RateLimit-Remaining  "Requests left today"
// @Failure     429  {object}  handlers.ErrorResponse  "Daily quota exhausted"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /all [get]
func (h *Handlers) AllCafes(c *gin.Context) {
	items, err := h.svc.All(c.Request.Context())
	if err != nil {
		serverError(c, err)
		return
	}
	ok(c, http.StatusOK, CafesResponse{Cafe: items})
}

// RandomCafe godoc
// @ID          randomCafe
// @Summary     Random cafe
// @Description Returns one cafe chosen uniformly at random.
// @Tags        Cafes
// @Produce     json
// @Success     200  {object}  handlers.CafeResponse
// @Failure     404  {object}  handlers.ErrorResponse  "No cafes stored"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /random [get]
func (h *Handlers) RandomCafe(c *gin.Context) {
	cafe, err := h.svc.Random(c.Request.Context())
	switch {
	case errors.Is(err, services.ErrNoCafes):
		fail(c, http.StatusNotFound, ErrCodeNoCafes, kind(KindNotFound, MsgNoCafes))
		return
	case err != nil:
		serverError(c, err)
		return
	}
	ok(c, http.StatusOK, CafeResponse{Cafe: *cafe})
}

// SearchCafes godoc
// @ID          searchCafes
// @Summary     Search cafes by location
// @Description Returns the cafes whose location matches loc exactly.
// @Tags        Cafes
// @Produce     json
// @Param       loc  query  string  true  "Location"  example(Peckham)
// @Success     200  {object}  handlers.CafesResponse
// @Failure     404  {object}  handlers.ErrorResponse  "No cafe at that location"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /search [get]
func (h *Handlers) SearchCafes(c *gin.Context) {
	items, err := h.svc.Search(c.Request.Context(), c.Query("loc"))
	switch {
	case errors.Is(err, services.ErrNoCafesAtLocation):
		fail(c, http.StatusNotFound, ErrCodeNotFound, kind(KindNotFound, MsgNoCafeAtLocation))
		return
	case err != nil:
		serverError(c, err)
		return
	}
	ok(c, http.StatusOK, CafesResponse{Cafe: items})
}

// AddCafe godoc
// @ID          addCafe
// @Summary     Add a cafe
// @Description Creates a cafe from a form body. All fields must be present. Flags are true only for the value "true" (any case).
// @Description With an Idempotency-Key header a retried request is answered with the original success.
// @Tags        Cafes
// @Accept      x-www-form-urlencoded
// @Produce     json
// @Param       Idempotency-Key  header    string  false  "Client-chosen retry key"  example(add-7f3a)
// @Param       name             formData  string  true   "Name"
// @Param       map_url          formData  string  true   "Map URL"
// @Param       img_url          formData  string  true   "Image URL"
// @Param       location         formData  string  true   "Location"
// @Param       seats            formData  string  true   "Seats"  example(20-30)
// @Param       has_toilet       formData  string  true   "Has toilet"  example(true)
// @Param       has_wifi         formData  string  true   "Has wifi"  example(true)
// @Param       has_sockets      formData  string  true   "Has sockets"  example(false)
// @Param       can_take_calls   formData  string  true   "Can take calls"  example(true)
// @Param       coffee_price     formData  string  true   "Coffee price (may be blank)"  example(£2.40)
// @Success     200  {object}  handlers.SuccessResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing field or duplicate name"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /add [post]
func (h *Handlers) AddCafe(c *gin.Context) {
	ctx := c.Request.Context()
	client := middleware.ClientKey(c)
	key, hasKey := middleware.GetIdempotencyKey(c)
	hasKey = hasKey && h.idem != nil

	if hasKey && middleware.IsReplay(c) {
		ok(c, http.StatusOK, success(MsgAdded))
		return
	}

	if missingFields(c) {
		fail(c, http.StatusBadRequest, ErrCodeMissingFields, MsgMissingFields)
		return
	}

	cafe, err := h.svc.Add(ctx, inputFromForm(c))
	switch {
	case errors.Is(err, services.ErrMissingFields):
		fail(c, http.StatusBadRequest, ErrCodeMissingFields, MsgMissingFields)
		return
	case errors.Is(err, services.ErrDuplicateName):
		// A concurrent retry may have won the insert.
		if hasKey {
			if seen, _ := h.idem.Seen(ctx, client, key); seen {
				ok(c, http.StatusOK, success(MsgAdded))
				return
			}
		}
		fail(c, http.StatusBadRequest, ErrCodeDuplicateName, MsgDuplicateName)
		return
	case err != nil:
		serverError(c, err)
		return
	}

	if hasKey {
		if err := h.idem.Record(ctx, client, key, cafe.ID); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Uint("cafe_id", cafe.ID).Msg("idempotency record not stored")
		}
	}
	middleware.LoggerFrom(c).Info().Uint("cafe_id", cafe.ID).Msg("cafe added")
	ok(c, http.StatusOK, success(MsgAdded))
}

// UpdatePrice godoc
// @ID          updatePrice
// @Summary     Update coffee price
// @Description Replaces the coffee price of a cafe.
// @Tags        Cafes
// @Accept      x-www-form-urlencoded
// @Produce     json
// @Param       id         path      int     true  "Cafe ID"  minimum(1)
// @Param       new_price  formData  string  true  "New price"  example(£3.00)
// @Success     200  {object}  handlers.SuccessResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing new_price"
// @Failure     404  {object}  handlers.ErrorResponse  "Cafe not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /update/{id} [patch]
func (h *Handlers) UpdatePrice(c *gin.Context) {
	id, valid := cafeID(c)
	if !valid {
		return
	}

	err := h.svc.UpdatePrice(c.Request.Context(), id, c.PostForm("new_price"))
	switch {
	case errors.Is(err, services.ErrMissingPrice):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, MsgMissingNewPrice)
		return
	case errors.Is(err, services.ErrCafeNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, kind(KindNotFound, MsgCafeIDNotFound))
		return
	case err != nil:
		serverError(c, err)
		return
	}
	ok(c, http.StatusOK, success(MsgUpdated))
}

// DeleteCafe godoc
// @ID          deleteCafe
// @Summary     Delete a cafe
// @Description Removes a cafe. Requires the shared API key; the key is checked before the id.
// @Tags        Cafes
// @Produce     json
// @Param       id       path   int     true  "Cafe ID"  minimum(1)
// @Param       api_key  query  string  true  "Shared API key"
// @Success     200  {object}  handlers.SuccessResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing api_key"
// @Failure     403  {object}  handlers.ErrorResponse  "Invalid api_key"
// @Failure     404  {object}  handlers.ErrorResponse  "Cafe not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /delete/{id} [delete]
func (h *Handlers) DeleteCafe(c *gin.Context) {
	id, valid := cafeID(c)
	if !valid {
		return
	}

	err := h.svc.Delete(c.Request.Context(), id, c.Query("api_key"))
	switch {
	case errors.Is(err, services.ErrMissingAPIKey):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, MsgMissingAPIKey)
		return
	case errors.Is(err, services.ErrInvalidAPIKey):
		middleware.LoggerFrom(c).Warn().Uint("cafe_id", id).Msg("delete with invalid api key")
		fail(c, http.StatusForbidden, ErrCodeForbidden, kind(KindInvalid, MsgInvalidAPIKey))
		return
	case errors.Is(err, services.ErrCafeNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, kind(KindNotFound, MsgCafeIDNotFound))
		return
	case err != nil:
		serverError(c, err)
		return
	}
	middleware.LoggerFrom(c).Info().Uint("cafe_id", id).Msg("cafe deleted")
	ok(c, http.StatusOK, success(MsgDeleted))
}
