package constants

// Spreadsheet sheet names
const (
	SheetRooms  = "Habitaciones"
	SheetEvents = "Eventos"
)

// Sheet tags used in row errors
const (
	SheetTagRooms  = "rooms"
	SheetTagEvents = "events"
)

// Column headers
const (
	ColRoom          = "Habitación"
	ColRoomType      = "Tipo Habitación"
	ColCheckIn       = "Fecha Entrada"
	ColCheckOut      = "Fecha Salida"
	ColTotalPrice    = "Precio Total"
	ColContactName   = "Nombre Contacto"
	ColContactLast   = "Apellidos Contacto"
	ColContactEmail  = "Email Contacto"
	ColContactPhone  = "Teléfono Contacto"
	ColEventDate     = "Fecha Evento"
	ColEventPrice    = "Precio Evento"
	ColEventType     = "Tipo Evento"
	ColEventName     = "Nombre Evento"
	ColStartTime     = "Hora Inicio"
	ColEndTime       = "Hora Fin"
	ColGuestCount    = "Num Invitados"
	ColGuests        = "Huéspedes"
	ColStatus        = "Estado"
	ColNotes         = "Notas"
)

// RoomRequiredColumns must be present and non-empty on every Habitaciones row.
var RoomRequiredColumns = []string{ColRoom, ColRoomType, ColCheckIn, ColCheckOut, ColTotalPrice}

// RoomOptionalColumns are understood but may be blank.
var RoomOptionalColumns = []string{ColContactName, ColContactLast, ColContactEmail, ColContactPhone, ColGuests, ColStatus, ColNotes}

// EventRequiredColumns must be present on the Eventos sheet. Every one except
// ColRoom must also be non-empty; a blank ColRoom means the event books no rooms.
var EventRequiredColumns = []string{
	ColContactName, ColContactLast, ColContactEmail, ColContactPhone,
	ColEventDate, ColEventPrice, ColEventType, ColEventName,
	ColStartTime, ColEndTime, ColGuestCount, ColRoom,
}

// EventOptionalColumns are understood but may be blank.
var EventOptionalColumns = []string{ColStatus, ColNotes}

// Cache keys
const (
	CacheReservationsPrefix = "reservations:"
	CacheReservationsAll    = "reservations:*"
	LockResourcePrefix      = "lock:resource:"
)
