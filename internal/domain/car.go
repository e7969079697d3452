package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SellerType distinguishes private sellers from dealerships.
const (
	SellerIndividual = "individual"
	SellerDealership = "dealership"
)

// CarRecord is an immutable snapshot of a car listing as seen by the
// discovery engine. Price is always the VAT-inclusive display price;
// PriceExclVat/VatRate/VatAmount are set when the seller entered a
// tax-exclusive or tax-inclusive price, and nil for netto listings.
type CarRecord struct {
	ID             uuid.UUID  `gorm:"column:car_id;type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"column:user_id;type:uuid;not null" json:"user_id"`
	Name           string     `gorm:"column:name;not null" json:"name"`
	Brand          string     `gorm:"column:brand;not null" json:"brand"`
	Category       string     `gorm:"column:category;not null" json:"category"`
	Year           int        `gorm:"column:year;not null" json:"year"`
	Color          string     `gorm:"column:color;not null" json:"color"`
	Transmission   string     `gorm:"column:transmission;not null" json:"transmission"`
	FuelType       string     `gorm:"column:fuel_type;not null" json:"fuel_type"`
	Mileage        *float64   `gorm:"column:mileage;type:decimal(12,1)" json:"mileage"`
	Description    string     `gorm:"column:description" json:"description"`
	Price          float64    `gorm:"column:price;type:decimal(18,2);not null" json:"price"`
	PriceExclVat   *float64   `gorm:"column:price_excl_vat;type:decimal(18,2)" json:"price_excl_vat"`
	VatRate        *float64   `gorm:"column:vat_rate;type:decimal(5,2)" json:"vat_rate"`
	VatAmount      *float64   `gorm:"column:vat_amount;type:decimal(18,2)" json:"vat_amount"`
	Currency       string     `gorm:"column:currency;type:varchar(3);not null;default:'EUR'" json:"currency"`
	IsNewCar       bool       `gorm:"column:is_new_car;not null;default:false" json:"is_new_car"`
	IsNettoPrice   bool       `gorm:"column:is_netto_price;not null;default:false" json:"is_netto_price"`
	IsPublished    bool       `gorm:"column:is_published;not null;default:false" json:"is_published"`
	IsSold         bool       `gorm:"column:is_sold;not null;default:false" json:"is_sold"`
	FeeWaived      bool       `gorm:"column:fee_waived;not null;default:false" json:"fee_waived"`
	SellerType     string     `gorm:"column:seller_type;type:varchar(20);not null;default:'individual'" json:"seller_type"`
	DealershipName *string    `gorm:"column:dealership_name" json:"dealership_name"`
	CreatedAt      time.Time  `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt      time.Time  `gorm:"column:updatedAt" json:"updatedAt"`
}

func (CarRecord) TableName() string {
	return "Cars"
}

// BeforeCreate sets car_id if not already set (DBs without default uuid).
func (c *CarRecord) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// FacetKey is one filterable dimension of a car record. Closed enum;
// anything else is a programmer error.
type FacetKey string

const (
	FacetBrand    FacetKey = "brand"
	FacetModel    FacetKey = "model"
	FacetCategory FacetKey = "category"
	FacetYear     FacetKey = "year"
	FacetColor    FacetKey = "color"
	FacetGearbox  FacetKey = "gearbox"
	FacetFuel     FacetKey = "fuel"
)

// FacetKeys lists every valid facet key, in sidebar order.
var FacetKeys = []FacetKey{
	FacetBrand, FacetModel, FacetCategory, FacetYear,
	FacetColor, FacetGearbox, FacetFuel,
}
