package catalog

import (
	"context"
	"testing"
	"time"

	"veloce-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupService(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.CarRecord{}, &domain.CarEvent{}, &domain.FeePayment{},
	))
	return &Service{DB: db}
}

func validInput(userID uuid.UUID) CreateCarInput {
	return CreateCarInput{
		UserID:       userID,
		Name:         "BMW M3 Competition",
		Brand:        "BMW",
		Category:     "Sedan",
		Year:         2022,
		Color:        "Black",
		Transmission: "Automatic",
		FuelType:     "Petrol",
		PriceType:    domain.PriceExclude,
		Amount:       100000,
		VatRate:      19,
		Currency:     "EUR",
		SellerType:   domain.SellerIndividual,
	}
}

func TestCreateCar_StoresVatBreakdown(t *testing.T) {
	svc := setupService(t)
	userID := uuid.New()

	car, fieldErrs, err := svc.CreateCar(context.Background(), validInput(userID))
	require.NoError(t, err)
	require.True(t, fieldErrs.Empty())
	require.NotNil(t, car)

	assert.Equal(t, 119000.0, car.Price)
	require.NotNil(t, car.PriceExclVat)
	assert.Equal(t, 100000.0, *car.PriceExclVat)
	require.NotNil(t, car.VatAmount)
	assert.Equal(t, 19000.0, *car.VatAmount)
	assert.False(t, car.IsNettoPrice)
	assert.False(t, car.IsPublished)

	events, err := svc.GetCarEvents(context.Background(), car.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.CarEventCreated, events[0].EventType)
}

func TestCreateCar_NettoPrice(t *testing.T) {
	svc := setupService(t)
	in := validInput(uuid.New())
	in.PriceType = domain.PriceNoVat
	in.Amount = 88000

	car, fieldErrs, err := svc.CreateCar(context.Background(), in)
	require.NoError(t, err)
	require.True(t, fieldErrs.Empty())

	assert.Equal(t, 88000.0, car.Price)
	assert.True(t, car.IsNettoPrice)
	assert.Nil(t, car.PriceExclVat)
	assert.Nil(t, car.VatAmount)
}

func TestCreateCar_ValidationErrors(t *testing.T) {
	svc := setupService(t)
	in := validInput(uuid.New())
	in.Name = ""
	in.Year = 1850
	in.Amount = -1
	in.SellerType = "fleet"

	car, fieldErrs, err := svc.CreateCar(context.Background(), in)
	require.NoError(t, err)
	assert.Nil(t, car)
	assert.Contains(t, fieldErrs, "name")
	assert.Contains(t, fieldErrs, "year")
	assert.Contains(t, fieldErrs, "amount")
	assert.Contains(t, fieldErrs, "seller_type")

	// Nothing persisted on validation failure.
	var count int64
	svc.DB.Model(&domain.CarRecord{}).Count(&count)
	assert.Zero(t, count)
}

func seedCar(t *testing.T, svc *Service, userID uuid.UUID, mutate func(*domain.CarRecord)) *domain.CarRecord {
	t.Helper()
	car, fieldErrs, err := svc.CreateCar(context.Background(), validInput(userID))
	require.NoError(t, err)
	require.True(t, fieldErrs.Empty())
	if mutate != nil {
		mutate(car)
		require.NoError(t, svc.DB.Save(car).Error)
	}
	return car
}

func TestFetchCatalog_OnlyPublishedUnsold(t *testing.T) {
	svc := setupService(t)
	userID := uuid.New()

	published := seedCar(t, svc, userID, func(c *domain.CarRecord) { c.IsPublished = true })
	seedCar(t, svc, userID, nil) // draft
	seedCar(t, svc, userID, func(c *domain.CarRecord) {
		c.IsPublished = true
		c.IsSold = true
	})

	catalog, err := svc.FetchCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, catalog, 1)
	assert.Equal(t, published.ID, catalog[0].ID)
}

func TestFetchCatalog_NewestFirst(t *testing.T) {
	svc := setupService(t)
	userID := uuid.New()

	older := seedCar(t, svc, userID, func(c *domain.CarRecord) {
		c.IsPublished = true
		c.CreatedAt = time.Now().Add(-48 * time.Hour)
	})
	newer := seedCar(t, svc, userID, func(c *domain.CarRecord) {
		c.IsPublished = true
		c.CreatedAt = time.Now().Add(-1 * time.Hour)
	})

	catalog, err := svc.FetchCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, catalog, 2)
	assert.Equal(t, newer.ID, catalog[0].ID)
	assert.Equal(t, older.ID, catalog[1].ID)
}

func TestPublishCar_RequiresSettledFee(t *testing.T) {
	svc := setupService(t)
	userID := uuid.New()
	car := seedCar(t, svc, userID, nil)

	_, err := svc.PublishCar(context.Background(), car.ID, userID, false)
	assert.ErrorIs(t, err, ErrFeeNotSettled)
}

func TestPublishCar_AfterFeePayment(t *testing.T) {
	svc := setupService(t)
	userID := uuid.New()
	car := seedCar(t, svc, userID, nil)

	require.NoError(t, svc.DB.Create(&domain.FeePayment{
		StripePaymentIntentID: "pi_test_1",
		CarID:                 car.ID,
		FeeModel:              domain.FeeModelVatOnTop,
		AmountPaidCents:       296905,
		Currency:              "EUR",
		Status:                "succeeded",
	}).Error)

	published, err := svc.PublishCar(context.Background(), car.ID, userID, false)
	require.NoError(t, err)
	assert.True(t, published.IsPublished)
}

func TestPublishCar_PendingPaymentDoesNotCount(t *testing.T) {
	svc := setupService(t)
	userID := uuid.New()
	car := seedCar(t, svc, userID, nil)

	require.NoError(t, svc.DB.Create(&domain.FeePayment{
		StripePaymentIntentID: "pi_test_pending",
		CarID:                 car.ID,
		FeeModel:              domain.FeeModelVatOnTop,
		Currency:              "EUR",
		Status:                "processing",
	}).Error)

	_, err := svc.PublishCar(context.Background(), car.ID, userID, false)
	assert.ErrorIs(t, err, ErrFeeNotSettled)
}

func TestPublishCar_AfterWaive(t *testing.T) {
	svc := setupService(t)
	userID := uuid.New()
	adminID := uuid.New()
	car := seedCar(t, svc, userID, nil)

	waived, err := svc.WaiveFee(context.Background(), car.ID, adminID)
	require.NoError(t, err)
	assert.True(t, waived.FeeWaived)

	published, err := svc.PublishCar(context.Background(), car.ID, userID, false)
	require.NoError(t, err)
	assert.True(t, published.IsPublished)

	events, _ := svc.GetCarEvents(context.Background(), car.ID)
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.EventType
	}
	assert.Contains(t, types, domain.CarEventFeeWaived)
	assert.Contains(t, types, domain.CarEventPublished)
}

func TestPublishCar_NettoPublishesFree(t *testing.T) {
	svc := setupService(t)
	userID := uuid.New()
	in := validInput(userID)
	in.PriceType = domain.PriceNoVat
	car, _, err := svc.CreateCar(context.Background(), in)
	require.NoError(t, err)

	published, err := svc.PublishCar(context.Background(), car.ID, userID, false)
	require.NoError(t, err)
	assert.True(t, published.IsPublished)
}

func TestPublishCar_AdminBypassesGate(t *testing.T) {
	svc := setupService(t)
	car := seedCar(t, svc, uuid.New(), nil)

	published, err := svc.PublishCar(context.Background(), car.ID, uuid.New(), true)
	require.NoError(t, err)
	assert.True(t, published.IsPublished)
}

func TestPublishCar_OnlyOwnerOrAdmin(t *testing.T) {
	svc := setupService(t)
	car := seedCar(t, svc, uuid.New(), func(c *domain.CarRecord) { c.FeeWaived = true })

	_, err := svc.PublishCar(context.Background(), car.ID, uuid.New(), false)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestMarkSold(t *testing.T) {
	svc := setupService(t)
	userID := uuid.New()
	car := seedCar(t, svc, userID, func(c *domain.CarRecord) { c.IsPublished = true })

	sold, err := svc.MarkSold(context.Background(), car.ID, userID, false)
	require.NoError(t, err)
	assert.True(t, sold.IsSold)

	// The sold car drops out of the discovery catalog.
	catalog, err := svc.FetchCatalog(context.Background())
	require.NoError(t, err)
	assert.Empty(t, catalog)

	_, err = svc.MarkSold(context.Background(), car.ID, userID, false)
	assert.ErrorIs(t, err, ErrAlreadySold)
}

func TestEditCar_PriceChangeRederivesVat(t *testing.T) {
	svc := setupService(t)
	userID := uuid.New()
	car := seedCar(t, svc, userID, nil)

	newPrice := 107100.0 // VAT-inclusive
	updated, err := svc.EditCar(context.Background(), EditCarInput{
		CarID:    car.ID,
		UserID:   userID,
		NewPrice: &newPrice,
	})
	require.NoError(t, err)
	assert.Equal(t, 107100.0, updated.Price)
	require.NotNil(t, updated.PriceExclVat)
	assert.InDelta(t, 90000.0, *updated.PriceExclVat, 0.01)
	require.NotNil(t, updated.VatAmount)
	assert.InDelta(t, 17100.0, *updated.VatAmount, 0.01)

	events, _ := svc.GetCarEvents(context.Background(), car.ID)
	require.Len(t, events, 2)
	assert.Equal(t, domain.CarEventUpdated, events[1].EventType)
}

func TestEditCar_Guards(t *testing.T) {
	svc := setupService(t)
	userID := uuid.New()
	car := seedCar(t, svc, userID, nil)
	price := 50000.0

	_, err := svc.EditCar(context.Background(), EditCarInput{CarID: uuid.New(), UserID: userID, NewPrice: &price})
	assert.ErrorIs(t, err, ErrCarNotFound)

	_, err = svc.EditCar(context.Background(), EditCarInput{CarID: car.ID, UserID: uuid.New(), NewPrice: &price})
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.EditCar(context.Background(), EditCarInput{CarID: car.ID, UserID: userID})
	assert.ErrorIs(t, err, ErrNothingToApply)

	sold := seedCar(t, svc, userID, func(c *domain.CarRecord) { c.IsSold = true })
	_, err = svc.EditCar(context.Background(), EditCarInput{CarID: sold.ID, UserID: userID, NewPrice: &price})
	assert.ErrorIs(t, err, ErrAlreadySold)
}

func TestGetUserCars_IncludesDrafts(t *testing.T) {
	svc := setupService(t)
	userID := uuid.New()
	seedCar(t, svc, userID, nil)
	seedCar(t, svc, userID, func(c *domain.CarRecord) { c.IsPublished = true })
	seedCar(t, svc, uuid.New(), nil)

	cars, err := svc.GetUserCars(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, cars, 2)
}
