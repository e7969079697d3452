package catalog

import (
	"veloce-backend/internal/constants"
	"veloce-backend/internal/domain"
	"veloce-backend/internal/middleware"
	"veloce-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

type createCarBody struct {
	Name           string   `json:"name"`
	Brand          string   `json:"brand"`
	Category       string   `json:"category"`
	Year           int      `json:"year"`
	Color          string   `json:"color"`
	Transmission   string   `json:"transmission"`
	FuelType       string   `json:"fuel_type"`
	Mileage        *float64 `json:"mileage"`
	Description    string   `json:"description"`
	PriceType      string   `json:"price_type"`
	Amount         float64  `json:"amount"`
	VatRate        float64  `json:"vat_rate"`
	Currency       string   `json:"currency"`
	IsNewCar       bool     `json:"is_new_car"`
	SellerType     string   `json:"seller_type"`
	DealershipName *string  `json:"dealership_name"`
}

// CreateCar POST /create-car
func (h *Handlers) CreateCar(c *fiber.Ctx) error {
	var body createCarBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	userID, err := uuid.Parse(middleware.GetUserID(c))
	if err != nil {
		return response.Error(c, "Invalid session user", 401, nil)
	}
	if body.SellerType == "" {
		body.SellerType = domain.SellerIndividual
	}
	if body.Currency == "" {
		body.Currency = "EUR"
	}
	car, fieldErrs, err := h.Service.CreateCar(c.Context(), CreateCarInput{
		UserID:         userID,
		Name:           body.Name,
		Brand:          body.Brand,
		Category:       body.Category,
		Year:           body.Year,
		Color:          body.Color,
		Transmission:   body.Transmission,
		FuelType:       body.FuelType,
		Mileage:        body.Mileage,
		Description:    body.Description,
		PriceType:      domain.PriceType(body.PriceType),
		Amount:         body.Amount,
		VatRate:        body.VatRate,
		Currency:       body.Currency,
		IsNewCar:       body.IsNewCar,
		SellerType:     body.SellerType,
		DealershipName: body.DealershipName,
	})
	if err != nil {
		return response.Error(c, err.Error(), 500, nil)
	}
	if !fieldErrs.Empty() {
		return response.ValidationError(c, fieldErrs)
	}
	return response.SuccessCreated(c, "Car created successfully", car, nil)
}

// GetMyCars GET /get-my-cars
func (h *Handlers) GetMyCars(c *fiber.Ctx) error {
	userID, err := uuid.Parse(middleware.GetUserID(c))
	if err != nil {
		return response.Error(c, "Invalid session user", 401, nil)
	}
	cars, err := h.Service.GetUserCars(c.Context(), userID)
	if err != nil {
		return response.Error(c, err.Error(), 500, nil)
	}
	return response.Success(c, "Cars fetched successfully", cars, nil)
}

// GetCarByID GET /get-car/:car_id
func (h *Handlers) GetCarByID(c *fiber.Ctx) error {
	carID, err := uuid.Parse(c.Params("car_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for car_id", 400, nil)
	}
	car, err := h.Service.GetCarByID(c.Context(), carID)
	if err != nil {
		if err == ErrCarNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, err.Error(), 500, nil)
	}
	return response.Success(c, "Car fetched successfully", car, nil)
}

type editCarBody struct {
	CarID       string   `json:"car_id"`
	NewPrice    *float64 `json:"new_price"`
	Description *string  `json:"description"`
}

// EditCar PUT /edit-car
func (h *Handlers) EditCar(c *fiber.Ctx) error {
	var body editCarBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	if body.CarID == "" {
		return response.Error(c, "Missing required field: car_id", 400, nil)
	}
	carID, err := uuid.Parse(body.CarID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for car_id", 400, nil)
	}
	userID, err := uuid.Parse(middleware.GetUserID(c))
	if err != nil {
		return response.Error(c, "Invalid session user", 401, nil)
	}
	car, err := h.Service.EditCar(c.Context(), EditCarInput{
		CarID:       carID,
		UserID:      userID,
		IsAdmin:     middleware.GetUserRole(c) == constants.Admin,
		NewPrice:    body.NewPrice,
		Description: body.Description,
	})
	if err != nil {
		return editErrorResponse(c, err)
	}
	return response.Success(c, "Car updated successfully", car, nil)
}

type carActionBody struct {
	CarID string `json:"car_id"`
}

// PublishCar POST /publish-car — gated on admin OR netto pricing OR a
// settled (paid/waived) fee.
func (h *Handlers) PublishCar(c *fiber.Ctx) error {
	carID, actorID, ok := h.parseCarAction(c)
	if !ok {
		return nil // response already written
	}
	car, err := h.Service.PublishCar(c.Context(), carID, actorID, middleware.GetUserRole(c) == constants.Admin)
	if err != nil {
		if err == ErrFeeNotSettled {
			return response.Error(c, err.Error(), 403, nil)
		}
		return editErrorResponse(c, err)
	}
	return response.Success(c, "Car published successfully", car, nil)
}

// MarkSold POST /mark-sold
func (h *Handlers) MarkSold(c *fiber.Ctx) error {
	carID, actorID, ok := h.parseCarAction(c)
	if !ok {
		return nil
	}
	car, err := h.Service.MarkSold(c.Context(), carID, actorID, middleware.GetUserRole(c) == constants.Admin)
	if err != nil {
		return editErrorResponse(c, err)
	}
	return response.Success(c, "Car marked as sold", car, nil)
}

// WaiveFee POST /waive-fee — admin console only (route carries the
// WAIVE_FEE permission).
func (h *Handlers) WaiveFee(c *fiber.Ctx) error {
	carID, actorID, ok := h.parseCarAction(c)
	if !ok {
		return nil
	}
	car, err := h.Service.WaiveFee(c.Context(), carID, actorID)
	if err != nil {
		return editErrorResponse(c, err)
	}
	return response.Success(c, "Publishing fee waived", car, nil)
}

// GetCarEvents GET /get-car-events/:car_id
func (h *Handlers) GetCarEvents(c *fiber.Ctx) error {
	carID, err := uuid.Parse(c.Params("car_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for car_id", 400, nil)
	}
	events, err := h.Service.GetCarEvents(c.Context(), carID)
	if err != nil {
		return response.Error(c, err.Error(), 500, nil)
	}
	return response.Success(c, "Car events fetched successfully", events, nil)
}

func (h *Handlers) parseCarAction(c *fiber.Ctx) (carID, actorID uuid.UUID, ok bool) {
	var body carActionBody
	if err := c.BodyParser(&body); err != nil || body.CarID == "" {
		_ = response.Error(c, "Missing required field: car_id", 400, nil)
		return uuid.Nil, uuid.Nil, false
	}
	carID, err := uuid.Parse(body.CarID)
	if err != nil {
		_ = response.Error(c, "Invalid UUID format for car_id", 400, nil)
		return uuid.Nil, uuid.Nil, false
	}
	actorID, err = uuid.Parse(middleware.GetUserID(c))
	if err != nil {
		_ = response.Error(c, "Invalid session user", 401, nil)
		return uuid.Nil, uuid.Nil, false
	}
	return carID, actorID, true
}

func editErrorResponse(c *fiber.Ctx, err error) error {
	switch err {
	case ErrCarNotFound:
		return response.Error(c, err.Error(), 404, nil)
	case ErrNotOwner:
		return response.Error(c, err.Error(), 403, nil)
	case ErrAlreadySold, ErrNothingToApply:
		return response.Error(c, err.Error(), 400, nil)
	default:
		return response.Error(c, err.Error(), 500, nil)
	}
}
