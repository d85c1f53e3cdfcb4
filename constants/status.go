package constants

// Resource types
const (
	ResourceRoom    = "room"
	ResourceEvent   = "event"
	ResourceMassage = "massage"
)

// Reservation status
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Unit types used by pricing
const (
	UnitPerNight = "per-night"
	UnitFlat     = "flat"
)

// Staff roles carried in the session token
const (
	RoleStaff = 1
	RoleAdmin = 2
)

// DefaultRoomLetters lists the bookable rooms when ROOM_LETTERS is not set.
const DefaultRoomLetters = "ABCDEFGHIJKLMNO"

// DefaultEventHall is the resource id every event books.
const DefaultEventHall = "SALON"

// LinkedRoomNights is how many nights a room linked to an event covers by default.
const LinkedRoomNights = 1

// PathTypes maps the REST path segment to a resource type.
var PathTypes = map[string]string{
	"habitaciones": ResourceRoom,
	"eventos":      ResourceEvent,
	"masajes":      ResourceMassage,
}

// StatusAliases accepts the Spanish status names used by the dashboards and spreadsheets.
var StatusAliases = map[string]string{
	"pendiente":  StatusPending,
	"confirmada": StatusConfirmed,
	"cancelada":  StatusCancelled,
	"pending":    StatusPending,
	"confirmed":  StatusConfirmed,
	"cancelled":  StatusCancelled,
}
