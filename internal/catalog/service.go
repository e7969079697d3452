package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"veloce-backend/internal/domain"
	"veloce-backend/internal/pkg/validation"
	"veloce-backend/internal/pricing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Sentinel errors surfaced as 4xx by handlers.
var (
	ErrCarNotFound    = errors.New("Car not found")
	ErrNotOwner       = errors.New("Unauthorized car edit")
	ErrAlreadySold    = errors.New("Car is already sold")
	ErrFeeNotSettled  = errors.New("Publishing fee has not been paid or waived")
	ErrNothingToApply = errors.New("No valid changes provided")
)

// Service owns car listings: the catalog the discovery engine consumes and
// the seller-dashboard mutations, each audited with a CarEvent in the same
// transaction.
type Service struct {
	DB *gorm.DB
}

// FetchCatalog implements search.CatalogProvider: published, unsold cars,
// newest first. Sold records never reach the discovery core.
func (s *Service) FetchCatalog(ctx context.Context) ([]domain.CarRecord, error) {
	var cars []domain.CarRecord
	err := s.DB.WithContext(ctx).
		Where("is_published = ? AND is_sold = ?", true, false).
		Order(`"createdAt" DESC`).
		Find(&cars).Error
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch catalog: %v", err)
	}
	return cars, nil
}

// CreateCarInput carries the seller dashboard's new-car form.
type CreateCarInput struct {
	UserID         uuid.UUID
	Name           string
	Brand          string
	Category       string
	Year           int
	Color          string
	Transmission   string
	FuelType       string
	Mileage        *float64
	Description    string
	PriceType      domain.PriceType
	Amount         float64
	VatRate        float64
	Currency       string
	IsNewCar       bool
	SellerType     string
	DealershipName *string
}

// CreateCar validates the form, normalizes the entered price into the
// stored breakdown and writes the car plus its CREATED event in one
// transaction. Validation failures come back as a field→message map.
func (s *Service) CreateCar(ctx context.Context, in CreateCarInput) (*domain.CarRecord, domain.FieldErrors, error) {
	errs := domain.FieldErrors{}
	for field, value := range map[string]string{
		"name": in.Name, "brand": in.Brand, "category": in.Category,
		"color": in.Color, "transmission": in.Transmission, "fuel_type": in.FuelType,
	} {
		if value == "" {
			errs[field] = "Required"
		}
	}
	if !validation.IsValidYear(in.Year) {
		errs["year"] = "Invalid year"
	}
	if in.Currency != "" && !validation.IsValidCurrency(in.Currency) {
		errs["currency"] = "Currency must be a 3-letter ISO code"
	}
	if in.SellerType != domain.SellerIndividual && in.SellerType != domain.SellerDealership {
		errs["seller_type"] = "Must be individual or dealership"
	}
	if in.Mileage != nil && (!validation.IsFiniteNumber(*in.Mileage) || *in.Mileage < 0) {
		errs["mileage"] = "Mileage must be a non-negative number"
	}
	breakdown, priceErrs := pricing.Normalize(domain.PriceInput{
		Type:     in.PriceType,
		Amount:   in.Amount,
		VatRate:  in.VatRate,
		Currency: in.Currency,
	})
	for k, v := range priceErrs {
		errs[k] = v
	}
	if !errs.Empty() {
		return nil, errs, nil
	}

	car := &domain.CarRecord{
		UserID:         in.UserID,
		Name:           in.Name,
		Brand:          in.Brand,
		Category:       in.Category,
		Year:           in.Year,
		Color:          in.Color,
		Transmission:   in.Transmission,
		FuelType:       in.FuelType,
		Mileage:        in.Mileage,
		Description:    in.Description,
		Price:          breakdown.PriceInclVat,
		Currency:       in.Currency,
		IsNewCar:       in.IsNewCar,
		IsNettoPrice:   in.PriceType == domain.PriceNoVat,
		SellerType:     in.SellerType,
		DealershipName: in.DealershipName,
	}
	if in.PriceType != domain.PriceNoVat {
		excl, rate, vat := breakdown.PriceExclVat, breakdown.VatRate, breakdown.VatAmount
		car.PriceExclVat, car.VatRate, car.VatAmount = &excl, &rate, &vat
	}

	tx := s.DB.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()
	if err := tx.Create(car).Error; err != nil {
		tx.Rollback()
		return nil, nil, fmt.Errorf("Failed to create car: %v", err)
	}
	eventData, _ := json.Marshal(map[string]interface{}{
		"price":      car.Price,
		"price_type": string(in.PriceType),
		"currency":   car.Currency,
	})
	if err := tx.Create(&domain.CarEvent{
		CarID:     car.ID,
		EventType: domain.CarEventCreated,
		ActorID:   &in.UserID,
		EventData: datatypes.JSON(eventData),
	}).Error; err != nil {
		tx.Rollback()
		return nil, nil, fmt.Errorf("Failed to create car event: %v", err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, nil, fmt.Errorf("Failed to create car: %v", err)
	}
	return car, nil, nil
}

// GetCarByID returns one car regardless of publish state (sellers preview
// their drafts).
func (s *Service) GetCarByID(ctx context.Context, carID uuid.UUID) (*domain.CarRecord, error) {
	var car domain.CarRecord
	if err := s.DB.WithContext(ctx).Where("car_id = ?", carID).First(&car).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCarNotFound
		}
		return nil, err
	}
	return &car, nil
}

// GetUserCars lists one seller's cars, drafts included, newest first.
func (s *Service) GetUserCars(ctx context.Context, userID uuid.UUID) ([]domain.CarRecord, error) {
	var cars []domain.CarRecord
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order(`"createdAt" DESC`).Find(&cars).Error; err != nil {
		return nil, err
	}
	return cars, nil
}

// EditCarInput: only price and description are editable after creation.
type EditCarInput struct {
	CarID       uuid.UUID
	UserID      uuid.UUID
	IsAdmin     bool
	NewPrice    *float64
	Description *string
}

// EditCar updates an unsold car owned by the caller (admins may edit any)
// and appends an UPDATED event in the same transaction.
func (s *Service) EditCar(ctx context.Context, in EditCarInput) (*domain.CarRecord, error) {
	var car domain.CarRecord
	if err := s.DB.WithContext(ctx).Where("car_id = ?", in.CarID).First(&car).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCarNotFound
		}
		return nil, err
	}
	if car.IsSold {
		return nil, ErrAlreadySold
	}
	if !in.IsAdmin && car.UserID != in.UserID {
		return nil, ErrNotOwner
	}

	updates := map[string]interface{}{}
	eventData := map[string]interface{}{}
	if in.NewPrice != nil {
		price := *in.NewPrice
		if !validation.IsFiniteNumber(price) || price <= 0 {
			return nil, errors.New("Invalid price")
		}
		if price != car.Price {
			updates["price"] = price
			eventData["new_price"] = price
			// Re-derive the VAT split for non-netto listings.
			if !car.IsNettoPrice && car.VatRate != nil {
				breakdown, _ := pricing.Normalize(domain.PriceInput{
					Type:     domain.PriceInclude,
					Amount:   price,
					VatRate:  *car.VatRate,
					Currency: car.Currency,
				})
				updates["price_excl_vat"] = breakdown.PriceExclVat
				updates["vat_amount"] = breakdown.VatAmount
			}
		}
	}
	if in.Description != nil && *in.Description != car.Description {
		updates["description"] = *in.Description
		eventData["description_changed"] = true
	}
	if len(updates) == 0 {
		return nil, ErrNothingToApply
	}

	tx := s.DB.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()
	if err := tx.Model(&car).Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	eventDataBytes, _ := json.Marshal(eventData)
	if err := tx.Create(&domain.CarEvent{
		CarID:     car.ID,
		EventType: domain.CarEventUpdated,
		ActorID:   &in.UserID,
		EventData: datatypes.JSON(eventDataBytes),
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	s.DB.WithContext(ctx).Where("car_id = ?", in.CarID).First(&car)
	return &car, nil
}

// FeeSettled reports whether the publishing fee for a car has been paid
// (a succeeded FeePayment exists) or waived by an admin.
func (s *Service) FeeSettled(ctx context.Context, car *domain.CarRecord) (bool, error) {
	if car.FeeWaived {
		return true, nil
	}
	var count int64
	err := s.DB.WithContext(ctx).Model(&domain.FeePayment{}).
		Where("car_id = ? AND status = ?", car.ID, "succeeded").
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// PublishCar flips is_published once the gate passes: admins publish
// anything, netto listings publish free, everyone else needs the fee paid
// or waived.
func (s *Service) PublishCar(ctx context.Context, carID, actorID uuid.UUID, isAdmin bool) (*domain.CarRecord, error) {
	var car domain.CarRecord
	if err := s.DB.WithContext(ctx).Where("car_id = ?", carID).First(&car).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCarNotFound
		}
		return nil, err
	}
	if car.IsSold {
		return nil, ErrAlreadySold
	}
	if !isAdmin && car.UserID != actorID {
		return nil, ErrNotOwner
	}
	if !isAdmin && !car.IsNettoPrice {
		settled, err := s.FeeSettled(ctx, &car)
		if err != nil {
			return nil, err
		}
		if !settled {
			return nil, ErrFeeNotSettled
		}
	}
	if car.IsPublished {
		return &car, nil
	}

	tx := s.DB.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()
	if err := tx.Model(&car).Update("is_published", true).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	eventData, _ := json.Marshal(map[string]interface{}{"by_admin": isAdmin})
	if err := tx.Create(&domain.CarEvent{
		CarID:     car.ID,
		EventType: domain.CarEventPublished,
		ActorID:   &actorID,
		EventData: datatypes.JSON(eventData),
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	car.IsPublished = true
	return &car, nil
}

// WaiveFee marks the publishing fee as waived (admin console action).
func (s *Service) WaiveFee(ctx context.Context, carID, adminID uuid.UUID) (*domain.CarRecord, error) {
	var car domain.CarRecord
	if err := s.DB.WithContext(ctx).Where("car_id = ?", carID).First(&car).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCarNotFound
		}
		return nil, err
	}
	if car.FeeWaived {
		return &car, nil
	}

	tx := s.DB.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()
	if err := tx.Model(&car).Update("fee_waived", true).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	eventData, _ := json.Marshal(map[string]interface{}{})
	if err := tx.Create(&domain.CarEvent{
		CarID:     car.ID,
		EventType: domain.CarEventFeeWaived,
		ActorID:   &adminID,
		EventData: datatypes.JSON(eventData),
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	car.FeeWaived = true
	return &car, nil
}

// MarkSold flips is_sold; the car drops out of the next catalog fetch.
func (s *Service) MarkSold(ctx context.Context, carID, actorID uuid.UUID, isAdmin bool) (*domain.CarRecord, error) {
	var car domain.CarRecord
	if err := s.DB.WithContext(ctx).Where("car_id = ?", carID).First(&car).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCarNotFound
		}
		return nil, err
	}
	if car.IsSold {
		return nil, ErrAlreadySold
	}
	if !isAdmin && car.UserID != actorID {
		return nil, ErrNotOwner
	}

	tx := s.DB.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()
	if err := tx.Model(&car).Update("is_sold", true).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	eventData, _ := json.Marshal(map[string]interface{}{"price": car.Price})
	if err := tx.Create(&domain.CarEvent{
		CarID:     car.ID,
		EventType: domain.CarEventSold,
		ActorID:   &actorID,
		EventData: datatypes.JSON(eventData),
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	car.IsSold = true
	return &car, nil
}

// GetCarEvents returns the audit trail for one car, oldest first.
func (s *Service) GetCarEvents(ctx context.Context, carID uuid.UUID) ([]domain.CarEvent, error) {
	var events []domain.CarEvent
	if err := s.DB.WithContext(ctx).Where("car_id = ?", carID).Order(`"createdAt" ASC`).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
