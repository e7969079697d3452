package constants

// Permissions checked by middleware.AuthorizePermission.
const (
	CreateCar   = "CREATE_CAR"
	EditCar     = "EDIT_CAR"
	PublishCar  = "PUBLISH_CAR"
	MarkSold    = "MARK_SOLD"
	WaiveFee    = "WAIVE_FEE"
	ModerateCar = "MODERATE_CAR"
)

// Roles.
const (
	Seller     = "seller"
	Dealership = "dealership"
	Admin      = "admin"
)
