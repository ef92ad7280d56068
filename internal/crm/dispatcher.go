package crm

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"autocrm/internal/directive"
)

const (
	DefaultCustomer = "Agency"
	// LinkUnavailable replaces the asset link when folder creation fails.
	LinkUnavailable = "unavailable"

	dateLayout = "02/01/2006"
)

type Status string

const (
	StatusOK       Status = "ok"
	StatusWarning  Status = "warning"
	StatusNotFound Status = "not_found"
	StatusFailed   Status = "failed"
)

// Outcome is what the operator sees for one executed directive.
type Outcome struct {
	Kind     directive.Kind
	Status   Status
	Message  string
	Link     string
	RecordID string
}

func (o Outcome) String() string {
	icon := "✅"
	switch o.Status {
	case StatusWarning:
		icon = "⚠️"
	case StatusNotFound:
		icon = "🔎"
	case StatusFailed:
		icon = "❌"
	}
	return icon + " " + o.Message
}

var folderRe = regexp.MustCompile(`/folders/([A-Za-z0-9_-]+)`)

// Dispatcher executes decoded directives against the external stores. Store
// errors are never returned; they are folded into the Outcome.
type Dispatcher struct {
	Stock    Sheet
	Leads    Sheet
	Folders  Folders
	Calendar Calendar
	Location *time.Location

	// Location defaults to UTC; Now and NewID to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

func NewDispatcher(stock, leads Sheet, folders Folders, cal Calendar, loc *time.Location) *Dispatcher {
	if loc == nil {
		loc = time.UTC
	}
	return &Dispatcher{Stock: stock, Leads: leads, Folders: folders, Calendar: cal, Location: loc}
}

func (d *Dispatcher) Execute(ctx context.Context, dir directive.Directive) Outcome {
	var out Outcome
	switch dir.Kind {
	case directive.SaveVehicle:
		out = d.saveVehicle(ctx, dir)
	case directive.DeleteVehicle:
		out = d.deleteVehicle(ctx, dir)
	case directive.SaveLead:
		out = d.saveLead(ctx, dir)
	case directive.DeleteLead:
		out = d.deleteLead(ctx, dir)
	case directive.CancelReminder:
		out = d.cancelReminder(ctx, dir)
	case directive.WhatsApp:
		out = whatsApp(dir)
	default:
		out = Outcome{Status: StatusFailed, Message: fmt.Sprintf("Acción desconocida: %s", dir.Kind)}
	}
	out.Kind = dir.Kind
	log.Printf("🛠️ directive %s -> %s: %s", dir.Kind, out.Status, out.Message)
	return out
}

func (d *Dispatcher) saveVehicle(ctx context.Context, dir directive.Directive) Outcome {
	customer, ok := dir.Lookup(directive.FieldCustomer)
	if !ok {
		customer = DefaultCustomer
	}
	vehicle, ok := dir.Lookup(directive.FieldVehicle)
	if !ok {
		return Outcome{Status: StatusFailed, Message: "Falta la descripción del vehículo."}
	}
	if d.Stock == nil {
		return Outcome{Status: StatusFailed, Message: "La planilla de stock no está configurada."}
	}

	var warnings []string
	link := LinkUnavailable
	if d.Folders == nil {
		warnings = append(warnings, "sin carpeta de Drive")
	} else if l, err := d.Folders.CreateFolder(ctx, customer+" - "+vehicle); err != nil {
		log.Printf("⚠️ drive folder for %q failed: %v", vehicle, err)
		warnings = append(warnings, "no se pudo crear la carpeta de Drive")
	} else {
		link = l
	}

	rec := InventoryRecord{
		ID:         d.id(),
		Date:       d.today().Format(dateLayout),
		Customer:   customer,
		Vehicle:    vehicle,
		Year:       dir.Field(directive.FieldYear),
		Mileage:    dir.Field(directive.FieldKm),
		Color:      dir.Field(directive.FieldColor),
		Inspection: directive.Placeholder,
		Origin:     directive.Placeholder,
		Plate:      dir.Field(directive.FieldPlate),
		AssetLink:  link,
	}
	if err := d.Stock.Append(ctx, rec.Values()); err != nil {
		log.Printf("❌ stock append failed: %v", err)
		return Outcome{Status: StatusFailed, Message: fmt.Sprintf("No pude guardar %s en el stock.", rec), Link: link}
	}

	out := Outcome{Status: StatusOK, Message: fmt.Sprintf("Guardado en stock: %s.", rec), Link: link, RecordID: rec.ID}
	if len(warnings) > 0 {
		out.Status = StatusWarning
		out.Message += " (" + strings.Join(warnings, "; ") + ")"
	}
	return out
}

func (d *Dispatcher) deleteVehicle(ctx context.Context, dir directive.Directive) Outcome {
	row, out, ok := d.resolve(ctx, d.Stock, StockSchema, dir)
	if !ok {
		return out
	}
	label := fmt.Sprintf("%s (%s)", row.Value(2), row.Value(StockSchema.Customer))

	var warnings []string
	if m := folderRe.FindStringSubmatch(row.Value(StockSchema.Link)); m != nil && d.Folders != nil {
		if err := d.Folders.DeleteFolder(ctx, m[1]); err != nil {
			log.Printf("⚠️ drive folder %s delete failed: %v", m[1], err)
			warnings = append(warnings, "la carpeta de Drive no se pudo borrar")
		}
	}
	if err := d.Stock.DeleteRow(ctx, row.Index); err != nil {
		log.Printf("❌ stock delete row %d failed: %v", row.Index, err)
		return Outcome{Status: StatusFailed, Message: fmt.Sprintf("No pude borrar %s del stock.", label)}
	}
	out = Outcome{Status: StatusOK, Message: fmt.Sprintf("Eliminado del stock: %s.", label), RecordID: row.Value(StockSchema.ID)}
	if len(warnings) > 0 {
		out.Status = StatusWarning
		out.Message += " (" + strings.Join(warnings, "; ") + ")"
	}
	return out
}

func (d *Dispatcher) saveLead(ctx context.Context, dir directive.Directive) Outcome {
	customer, ok := dir.Lookup(directive.FieldCustomer)
	if !ok {
		return Outcome{Status: StatusFailed, Message: "Falta el nombre del cliente."}
	}
	if d.Leads == nil {
		return Outcome{Status: StatusFailed, Message: "La planilla de leads no está configurada."}
	}
	rec := LeadRecord{
		ID:         d.id(),
		Date:       d.today().Format(dateLayout),
		Customer:   customer,
		Wants:      dir.Field(directive.FieldSearch),
		Phone:      dir.Field(directive.FieldPhone),
		Note:       dir.Field(directive.FieldNote),
		RemindDate: dir.Field(directive.FieldRemind),
	}
	if err := d.Leads.Append(ctx, rec.Values()); err != nil {
		log.Printf("❌ leads append failed: %v", err)
		return Outcome{Status: StatusFailed, Message: fmt.Sprintf("No pude guardar el lead %s.", customer)}
	}

	out := Outcome{Status: StatusOK, Message: fmt.Sprintf("Lead guardado: %s.", customer), RecordID: rec.ID}
	if rec.RemindDate == directive.Placeholder {
		return out
	}
	day, err := ParseDay(rec.RemindDate, d.Location)
	if err != nil {
		out.Status = StatusWarning
		out.Message += fmt.Sprintf(" (fecha de recordatorio inválida: %s)", rec.RemindDate)
		return out
	}
	if d.Calendar == nil {
		out.Status = StatusWarning
		out.Message += " (calendario no configurado)"
		return out
	}
	link, err := d.Calendar.CreateReminder(ctx, ReminderSummary(customer), day)
	if err != nil {
		log.Printf("⚠️ calendar reminder for %q failed: %v", customer, err)
		out.Status = StatusWarning
		out.Message += " (no se pudo agendar el recordatorio)"
		return out
	}
	out.Link = link
	out.Message += fmt.Sprintf(" Recordatorio el %s.", day.Format(dateLayout))
	return out
}

func (d *Dispatcher) deleteLead(ctx context.Context, dir directive.Directive) Outcome {
	row, out, ok := d.resolve(ctx, d.Leads, LeadSchema, dir)
	if !ok {
		return out
	}
	customer := row.Value(LeadSchema.Customer)

	var warnings []string
	if remind := row.Value(LeadSchema.Remind); remind != "" && remind != directive.Placeholder && d.Calendar != nil {
		if _, err := d.Calendar.CancelReminders(ctx, ReminderSummary(customer)); err != nil {
			log.Printf("⚠️ cancel reminders for %q failed: %v", customer, err)
			warnings = append(warnings, "el recordatorio no se pudo cancelar")
		}
	}
	if err := d.Leads.DeleteRow(ctx, row.Index); err != nil {
		log.Printf("❌ leads delete row %d failed: %v", row.Index, err)
		return Outcome{Status: StatusFailed, Message: fmt.Sprintf("No pude borrar el lead %s.", customer)}
	}
	out = Outcome{Status: StatusOK, Message: fmt.Sprintf("Lead eliminado: %s.", customer), RecordID: row.Value(LeadSchema.ID)}
	if len(warnings) > 0 {
		out.Status = StatusWarning
		out.Message += " (" + strings.Join(warnings, "; ") + ")"
	}
	return out
}

func (d *Dispatcher) cancelReminder(ctx context.Context, dir directive.Directive) Outcome {
	customer, ok := dir.Lookup(directive.FieldCustomer)
	if !ok {
		return Outcome{Status: StatusFailed, Message: "Falta el nombre del cliente."}
	}
	if d.Calendar == nil {
		return Outcome{Status: StatusFailed, Message: "El calendario no está configurado."}
	}
	n, err := d.Calendar.CancelReminders(ctx, ReminderSummary(customer))
	if err != nil {
		log.Printf("⚠️ cancel reminders for %q failed: %v", customer, err)
		return Outcome{Status: StatusFailed, Message: fmt.Sprintf("No pude cancelar el recordatorio de %s.", customer)}
	}
	if n == 0 {
		return Outcome{Status: StatusNotFound, Message: fmt.Sprintf("No hay recordatorios para %s.", customer)}
	}
	return Outcome{Status: StatusOK, Message: fmt.Sprintf("Recordatorio cancelado: %s (%d).", customer, n)}
}

// resolve performs the flexible lookup and then re-reads the tab to find the
// matched record's current row, so a delete never hits a row that shifted in
// between.
func (d *Dispatcher) resolve(ctx context.Context, sheet Sheet, schema Schema, dir directive.Directive) (Row, Outcome, bool) {
	query, ok := dir.Lookup(directive.FieldSearch)
	if !ok {
		query, ok = dir.Lookup(directive.FieldCustomer)
	}
	if !ok {
		return Row{}, Outcome{Status: StatusNotFound, Message: "No indicaste qué registro borrar."}, false
	}
	notFound := Outcome{Status: StatusNotFound, Message: fmt.Sprintf("No encontré %q en %s.", query, schema.Name)}
	if sheet == nil {
		return Row{}, notFound, false
	}

	rows, err := sheet.Rows(ctx)
	if err != nil {
		log.Printf("⚠️ read %s failed: %v", schema.Name, err)
		return Row{}, notFound, false
	}
	m, ok := Lookup(rows, query)
	if !ok {
		return Row{}, notFound, false
	}
	if len(m.Ambiguous) > 0 {
		log.Printf("⚠️ lookup %q in %s matched positions %d and %v, using %d", query, schema.Name, m.Position, m.Ambiguous, m.Position)
	}

	fresh, err := sheet.Rows(ctx)
	if err != nil {
		log.Printf("⚠️ re-read %s failed: %v", schema.Name, err)
		return Row{}, notFound, false
	}
	row, ok := FindRecord(fresh, m.Row, schema)
	if !ok {
		return Row{}, notFound, false
	}
	return row, Outcome{}, true
}

// FindRecord locates target in rows by its ID column, or by identical values
// for rows written before IDs existed.
func FindRecord(rows []Row, target Row, schema Schema) (Row, bool) {
	id := target.Value(schema.ID)
	for _, r := range rows {
		if id != "" {
			if r.Value(schema.ID) == id {
				return r, true
			}
			continue
		}
		if sameValues(r, target) {
			return r, true
		}
	}
	return Row{}, false
}

func sameValues(a, b Row) bool {
	n := len(a.Values)
	if len(b.Values) > n {
		n = len(b.Values)
	}
	for i := 0; i < n; i++ {
		if a.Value(i) != b.Value(i) {
			return false
		}
	}
	return true
}

func whatsApp(dir directive.Directive) Outcome {
	link, ok := WhatsAppLink(dir.Field(directive.FieldPhone), dir.Field(directive.FieldMessage))
	if !ok {
		return Outcome{Status: StatusFailed, Message: "Falta un teléfono válido para WhatsApp."}
	}
	name, _ := dir.Lookup(directive.FieldCustomer)
	if name == "" {
		name = dir.Field(directive.FieldPhone)
	}
	return Outcome{Status: StatusOK, Message: "WhatsApp listo para " + name + ".", Link: link}
}

// WhatsAppLink builds a wa.me deep link. Non-digit characters are stripped
// from phone; ok is false when no digits remain.
func WhatsAppLink(phone, message string) (string, bool) {
	var digits strings.Builder
	for _, c := range phone {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}
	if digits.Len() == 0 {
		return "", false
	}
	link := "https://wa.me/" + digits.String()
	if message != "" && message != directive.Placeholder {
		link += "?text=" + strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	}
	return link, true
}

func ReminderSummary(customer string) string { return "Call " + customer }

// ParseDay accepts ISO (2006-01-02) and local (02/01/2006) dates.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", dateLayout} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func (d *Dispatcher) today() time.Time {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	return now().In(loc)
}

func (d *Dispatcher) id() string {
	if d.NewID != nil {
		return d.NewID()
	}
	return uuid.NewString()
}
