package validator

import (
	"regexp"
	"strings"

	"reservas/constants"
	"reservas/errors"
	"reservas/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

var phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 ]{6,16}$`)

// ValidateEmail checks the e-mail format
func ValidateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return errors.NewAppError(errors.ErrCodeInvalidEmail, "Email no válido: "+email, nil)
	}
	return nil
}

// ValidatePhone accepts digits and spaces with an optional leading +
func ValidatePhone(phone string) error {
	if !phoneRegex.MatchString(strings.TrimSpace(phone)) {
		return errors.NewAppError(errors.ErrCodeInvalidPhone, "Teléfono no válido: "+phone, nil)
	}
	return nil
}

// ValidateAmount rejects negative prices
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return errors.NewAppError(errors.ErrCodeInvalidAmount, "El precio no puede ser negativo", nil)
	}
	return nil
}

// ValidateContact requires a name and valid e-mail and phone
func ValidateContact(c models.Contact) error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.NewAppError(errors.ErrCodeRequiredField, "El nombre de contacto es obligatorio", nil)
	}
	if err := ValidateEmail(c.Email); err != nil {
		return err
	}
	return ValidatePhone(c.Phone)
}

// ValidateResourceType checks the resource type tag
func ValidateResourceType(resourceType string) error {
	switch resourceType {
	case constants.ResourceRoom, constants.ResourceEvent, constants.ResourceMassage:
		return nil
	}
	return errors.NewAppError(errors.ErrCodeInvalidResource, "Tipo de reserva no válido: "+resourceType, nil)
}

// ValidateRoomLetter checks letter against the configured rooms
func ValidateRoomLetter(letter string, letters []string) error {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	for _, l := range letters {
		if l == letter {
			return nil
		}
	}
	return errors.NewAppError(errors.ErrCodeInvalidResource, "Habitación no válida: "+letter, nil)
}

// NormalizeStatus maps Spanish and English status names to a status constant
func NormalizeStatus(status string) (string, error) {
	if s, ok := constants.StatusAliases[strings.ToLower(strings.TrimSpace(status))]; ok {
		return s, nil
	}
	return "", errors.NewAppError(errors.ErrCodeInvalidStatus, "Estado no válido: "+status, nil)
}

// ValidateReservation checks a reservation before it is stored
func ValidateReservation(r *models.Reservation, letters []string) error {
	if err := ValidateResourceType(r.ResourceType); err != nil {
		return err
	}
	if strings.TrimSpace(r.ResourceID) == "" {
		return errors.NewAppError(errors.ErrCodeRequiredField, "El recurso es obligatorio", nil)
	}
	if r.IsRoom() {
		if err := ValidateRoomLetter(r.ResourceID, letters); err != nil {
			return err
		}
	}
	if r.IsEvent() && strings.TrimSpace(r.Title) == "" {
		return errors.NewAppError(errors.ErrCodeRequiredField, "El nombre del evento es obligatorio", nil)
	}
	if err := r.Range().Validate(); err != nil {
		return errors.NewAppError(errors.ErrCodeInvalidRange, "La fecha de fin debe ser posterior a la de inicio", err)
	}
	if _, err := NormalizeStatus(r.Status); err != nil {
		return err
	}
	// rows imported from the rooms sheet may carry no contact
	if r.ImportBatchID == "" || r.Contact != (models.Contact{}) {
		if err := ValidateContact(r.Contact); err != nil {
			return err
		}
	}
	if r.GuestCount < 0 {
		return errors.NewAppError(errors.ErrCodeValidation, "El número de invitados no puede ser negativo", nil)
	}
	return ValidateAmount(r.Price)
}

// ValidateRate checks a resource rate
func ValidateRate(rate *models.ResourceRate) error {
	if err := ValidateResourceType(rate.ResourceType); err != nil {
		return err
	}
	if strings.TrimSpace(rate.ResourceID) == "" {
		return errors.NewAppError(errors.ErrCodeRequiredField, "El tipo de recurso es obligatorio", nil)
	}
	if rate.UnitType != constants.UnitPerNight && rate.UnitType != constants.UnitFlat {
		return errors.NewAppError(errors.ErrCodeValidation, "Unidad no válida: "+rate.UnitType, nil)
	}
	if rate.Capacity < 0 {
		return errors.NewAppError(errors.ErrCodeValidation, "La capacidad no puede ser negativa", nil)
	}
	return ValidateAmount(rate.PricePerUnit)
}
