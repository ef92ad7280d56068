// Package directive encodes and decodes structured actions that the model
// embeds in its free-text replies between DATA_START and DATA_END markers.
package directive

import (
	"errors"
	"fmt"
	"strings"
)

const (
	StartSentinel = "DATA_START"
	EndSentinel   = "DATA_END"

	// Placeholder is stored for every optional field the model left out.
	Placeholder = "-"

	KindField = "ACCION"
)

type Kind string

const (
	SaveVehicle    Kind = "GUARDAR_AUTO"
	DeleteVehicle  Kind = "ELIMINAR_AUTO"
	SaveLead       Kind = "GUARDAR_LEED"
	DeleteLead     Kind = "ELIMINAR_LEED"
	WhatsApp       Kind = "WHATSAPP"
	CancelReminder Kind = "BORRAR_EVENTO"
)

var kinds = map[Kind]bool{
	SaveVehicle:    true,
	DeleteVehicle:  true,
	SaveLead:       true,
	DeleteLead:     true,
	WhatsApp:       true,
	CancelReminder: true,
}

// Kinds returns every recognised directive kind in a stable order.
func Kinds() []Kind {
	return []Kind{SaveVehicle, DeleteVehicle, SaveLead, DeleteLead, WhatsApp, CancelReminder}
}

func (k Kind) Valid() bool { return kinds[k] }

// Field names used by the model.
const (
	FieldCustomer = "Cliente"
	FieldVehicle  = "Vehiculo"
	FieldYear     = "Año"
	FieldKm       = "Km"
	FieldColor    = "Color"
	FieldPlate    = "Patente"
	FieldPhone    = "Telefono"
	FieldMessage  = "Mensaje"
	FieldSearch   = "Busca"
	FieldNote     = "Nota"
	FieldRemind   = "Fecha_Remind"
)

var aliases = map[string][]string{
	FieldKm: {"KM", "km"},
}

type Directive struct {
	Kind   Kind
	Fields map[string]string
}

func New(kind Kind, fields map[string]string) Directive {
	d := Directive{Kind: kind, Fields: make(map[string]string, len(fields))}
	for k, v := range fields {
		d.Fields[k] = v
	}
	return d
}

// Field returns the trimmed value of name (or one of its aliases), or
// Placeholder when absent or blank.
func (d Directive) Field(name string) string {
	if v, ok := d.Lookup(name); ok {
		return v
	}
	return Placeholder
}

// Lookup is like Field but reports whether a non-blank value was present.
func (d Directive) Lookup(name string) (string, bool) {
	for _, key := range append([]string{name}, aliases[name]...) {
		if v := strings.TrimSpace(d.Fields[key]); v != "" {
			return v, true
		}
	}
	return "", false
}

var ErrMalformedDirective = errors.New("malformed directive")

// MalformedError describes a sentinel block whose body could not be decoded.
type MalformedError struct {
	Body   string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed directive: %s", e.Reason)
}

func (e *MalformedError) Is(target error) bool { return target == ErrMalformedDirective }
