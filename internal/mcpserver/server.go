// Package mcpserver exposes the CRM actions as MCP tools so other agents can
// drive the spreadsheets without going through the chat bot.
package mcpserver

import (
	"context"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"autocrm/internal/crm"
	"autocrm/internal/directive"
)

type Executor interface {
	Execute(ctx context.Context, d directive.Directive) crm.Outcome
}

type SaveVehicleParams struct {
	Customer string `json:"customer,omitempty" mcp:"owner of the vehicle; defaults to the agency"`
	Vehicle  string `json:"vehicle" mcp:"make and model, e.g. 'Toyota Corolla'"`
	Year     string `json:"year,omitempty" mcp:"model year"`
	Km       string `json:"km,omitempty" mcp:"mileage in kilometres"`
	Color    string `json:"color,omitempty" mcp:"body colour"`
	Plate    string `json:"plate,omitempty" mcp:"licence plate"`
}

type DeleteParams struct {
	Query string `json:"query" mcp:"row number as listed, or any text contained in the row"`
}

type SaveLeadParams struct {
	Customer string `json:"customer" mcp:"prospect name"`
	Wants    string `json:"wants,omitempty" mcp:"vehicle the prospect is looking for"`
	Phone    string `json:"phone,omitempty" mcp:"contact phone"`
	Note     string `json:"note,omitempty" mcp:"free-form note"`
	Remind   string `json:"remind,omitempty" mcp:"follow-up call date, dd/mm/yyyy or yyyy-mm-dd"`
}

type CancelReminderParams struct {
	Customer string `json:"customer" mcp:"customer whose 'Call' reminders should be cancelled"`
}

type WhatsAppParams struct {
	Customer string `json:"customer,omitempty" mcp:"recipient name, used for the confirmation text"`
	Phone    string `json:"phone" mcp:"recipient phone; non-digits are ignored"`
	Message  string `json:"message,omitempty" mcp:"pre-filled message"`
}

type Server struct {
	exec Executor
}

func New(exec Executor) *Server {
	return &Server{exec: exec}
}

// Register adds every CRM tool to server.
func (s *Server) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "save_vehicle",
		Description: "Adds a vehicle to the Stock sheet and creates its Drive folder",
	}, s.SaveVehicle)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_vehicle",
		Description: "Removes a vehicle from the Stock sheet and deletes its Drive folder",
	}, s.DeleteVehicle)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "save_lead",
		Description: "Adds a prospect to the Leads sheet and schedules the follow-up call",
	}, s.SaveLead)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_lead",
		Description: "Removes a prospect from the Leads sheet and cancels its reminders",
	}, s.DeleteLead)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "cancel_reminder",
		Description: "Cancels every follow-up call reminder for a customer",
	}, s.CancelReminder)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "whatsapp_link",
		Description: "Builds a wa.me link with a pre-filled message",
	}, s.WhatsAppLink)
	log.Printf("📋 Registered CRM MCP tools: save_vehicle, delete_vehicle, save_lead, delete_lead, cancel_reminder, whatsapp_link")
}

func (s *Server) SaveVehicle(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[SaveVehicleParams]) (*mcp.CallToolResultFor[any], error) {
	a := params.Arguments
	return s.run(ctx, directive.SaveVehicle, map[string]string{
		directive.FieldCustomer: a.Customer,
		directive.FieldVehicle:  a.Vehicle,
		directive.FieldYear:     a.Year,
		directive.FieldKm:       a.Km,
		directive.FieldColor:    a.Color,
		directive.FieldPlate:    a.Plate,
	}), nil
}

func (s *Server) DeleteVehicle(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[DeleteParams]) (*mcp.CallToolResultFor[any], error) {
	return s.run(ctx, directive.DeleteVehicle, map[string]string{directive.FieldSearch: params.Arguments.Query}), nil
}

func (s *Server) SaveLead(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[SaveLeadParams]) (*mcp.CallToolResultFor[any], error) {
	a := params.Arguments
	return s.run(ctx, directive.SaveLead, map[string]string{
		directive.FieldCustomer: a.Customer,
		directive.FieldSearch:   a.Wants,
		directive.FieldPhone:    a.Phone,
		directive.FieldNote:     a.Note,
		directive.FieldRemind:   a.Remind,
	}), nil
}

func (s *Server) DeleteLead(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[DeleteParams]) (*mcp.CallToolResultFor[any], error) {
	return s.run(ctx, directive.DeleteLead, map[string]string{directive.FieldSearch: params.Arguments.Query}), nil
}

func (s *Server) CancelReminder(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[CancelReminderParams]) (*mcp.CallToolResultFor[any], error) {
	return s.run(ctx, directive.CancelReminder, map[string]string{directive.FieldCustomer: params.Arguments.Customer}), nil
}

func (s *Server) WhatsAppLink(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[WhatsAppParams]) (*mcp.CallToolResultFor[any], error) {
	a := params.Arguments
	return s.run(ctx, directive.WhatsApp, map[string]string{
		directive.FieldCustomer: a.Customer,
		directive.FieldPhone:    a.Phone,
		directive.FieldMessage:  a.Message,
	}), nil
}

// run executes one directive. Failed and not-found outcomes are tool
// errors; warnings still succeed.
func (s *Server) run(ctx context.Context, kind directive.Kind, fields map[string]string) *mcp.CallToolResultFor[any] {
	log.Printf("🔧 MCP Server: %s", kind)
	out := s.exec.Execute(ctx, directive.New(kind, fields))
	meta := map[string]interface{}{
		"action": string(out.Kind),
		"status": string(out.Status),
	}
	if out.Link != "" {
		meta["link"] = out.Link
	}
	if out.RecordID != "" {
		meta["record_id"] = out.RecordID
	}
	text := out.String()
	if out.Link != "" {
		text += "\n" + out.Link
	}
	return &mcp.CallToolResultFor[any]{
		IsError: out.Status == crm.StatusFailed || out.Status == crm.StatusNotFound,
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		Meta: meta,
	}
}
