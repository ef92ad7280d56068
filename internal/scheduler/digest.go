package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"autocrm/internal/crm"
	"autocrm/internal/directive"
)

// Digest lists the leads whose reminder falls on the current day.
type Digest struct {
	Leads    crm.Sheet
	Location *time.Location
	Notify   func(ctx context.Context, text string) error
	Now      func() time.Time
}

func (d *Digest) Run(ctx context.Context) error {
	rows, err := d.Leads.Rows(ctx)
	if err != nil {
		return fmt.Errorf("read leads: %w", err)
	}
	text, n := d.Build(rows, d.today())
	if n == 0 {
		log.Println("📭 No reminders for today")
		return nil
	}
	log.Printf("📬 Sending digest with %d reminders", n)
	return d.Notify(ctx, text)
}

// Build renders the reminders due on day. It returns the number of leads
// listed.
func (d *Digest) Build(rows []crm.Row, day time.Time) (string, int) {
	s := crm.LeadSchema
	var bld strings.Builder
	n := 0
	for i, r := range rows {
		raw := r.Value(s.Remind)
		if raw == "" || raw == directive.Placeholder {
			continue
		}
		due, err := crm.ParseDay(raw, d.loc())
		if err != nil {
			log.Printf("⚠️ lead row %d: bad reminder date %q", r.Index, raw)
			continue
		}
		if !sameDay(due, day) {
			continue
		}
		n++
		fmt.Fprintf(&bld, "%d. %s", i+1, r.Value(s.Customer))
		if wants := r.Value(column(s, "Busca")); wants != "" && wants != directive.Placeholder {
			fmt.Fprintf(&bld, " busca %s", wants)
		}
		if phone := r.Value(column(s, "Telefono")); phone != "" && phone != directive.Placeholder {
			fmt.Fprintf(&bld, " 📞 %s", phone)
		}
		if note := r.Value(column(s, "Nota")); note != "" && note != directive.Placeholder {
			fmt.Fprintf(&bld, " (%s)", note)
		}
		bld.WriteString("\n")
	}
	if n == 0 {
		return "", 0
	}
	header := fmt.Sprintf("⏰ Llamadas para hoy %s:\n", day.Format("02/01/2006"))
	return header + strings.TrimRight(bld.String(), "\n"), n
}

func (d *Digest) loc() *time.Location {
	if d.Location != nil {
		return d.Location
	}
	return time.UTC
}

func (d *Digest) today() time.Time {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	return now().In(d.loc())
}

func column(s crm.Schema, name string) int {
	for i, c := range s.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
