package crm

import "fmt"

// Schema describes the positional layout of a tab.
type Schema struct {
	Name     string
	Columns  []string
	Customer int
	ID       int
	Link     int
	Remind   int
}

var StockSchema = Schema{
	Name: "Stock",
	Columns: []string{
		"Fecha", "Cliente", "Vehiculo", "Año", "Km", "Color",
		"VTV", "Origen", "Patente", "Link", "ID",
	},
	Customer: 1,
	Link:     9,
	ID:       10,
	Remind:   -1,
}

var LeadSchema = Schema{
	Name:     "Leeds",
	Columns:  []string{"Fecha", "Cliente", "Busca", "Telefono", "Nota", "Fecha_Remind", "ID"},
	Customer: 1,
	Remind:   5,
	ID:       6,
	Link:     -1,
}

// InventoryRecord is a vehicle in stock.
type InventoryRecord struct {
	ID         string
	Date       string
	Customer   string
	Vehicle    string
	Year       string
	Mileage    string
	Color      string
	Inspection string
	Origin     string
	Plate      string
	AssetLink  string
}

func (r InventoryRecord) Values() []string {
	return []string{
		r.Date, r.Customer, r.Vehicle, r.Year, r.Mileage, r.Color,
		r.Inspection, r.Origin, r.Plate, r.AssetLink, r.ID,
	}
}

func (r InventoryRecord) String() string {
	return fmt.Sprintf("%s (%s)", r.Vehicle, r.Customer)
}

// LeadRecord is a prospective buyer.
type LeadRecord struct {
	ID         string
	Date       string
	Customer   string
	Wants      string
	Phone      string
	Note       string
	RemindDate string
}

func (r LeadRecord) Values() []string {
	return []string{r.Date, r.Customer, r.Wants, r.Phone, r.Note, r.RemindDate, r.ID}
}
