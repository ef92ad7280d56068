package telegram

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"autocrm/internal/analytics"
	"autocrm/internal/auth"
	"autocrm/internal/crm"
	"autocrm/internal/directive"
	"autocrm/internal/llm"
	"autocrm/internal/session"
)

// maxPhotoBytes bounds the photo we forward to the model.
const maxPhotoBytes = 10 << 20

const helpText = "🚗 Hola! Escribime lo que necesites:\n" +
	"• \"Guardá un Corolla 2019 gris, 80000 km, patente AB123CD\"\n" +
	"• \"Anotá a Juan, busca una Hilux, tel 11 5555 5555, llamarlo el 20/11\"\n" +
	"• \"Borrá el auto 3\" / \"Mandale un WhatsApp a Juan\"\n\n" +
	"Comandos: /stock, /leads, /usage, /reset"

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	userID := msg.From.ID
	switch msg.Command() {
	case "start", "help":
		if !b.authSvc.IsAllowed(userID) {
			b.requestAccess(msg)
			return
		}
		out := tgbotapi.NewMessage(msg.Chat.ID, helpText)
		out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🧹 Borrar contexto", resetCmd)),
		)
		_, _ = b.s.Send(out)
		return
	case "reset", "stock", "leads", "usage":
		if !b.authSvc.IsAllowed(userID) {
			b.requestAccess(msg)
			return
		}
		b.handleOperatorCommand(msg)
		return
	}

	// admin-only commands
	if userID != b.adminUserID {
		b.sendMessage(msg.Chat.ID, "Comando disponible sólo para el administrador")
		return
	}
	switch msg.Command() {
	case "allowlist":
		b.sendMessage(msg.Chat.ID, renderOperators("Operadores habilitados:", b.authSvc.List()))
	case "pending":
		b.sendMessage(msg.Chat.ID, renderOperators("Solicitudes pendientes:", b.authSvc.Pending()))
	case "report":
		b.handleReportCommand(msg)
	case "remove", "approve", "deny":
		uid, ok := b.userIDArg(msg)
		if !ok {
			return
		}
		switch msg.Command() {
		case "remove":
			if err := b.authSvc.Remove(uid); err != nil {
				b.sendMessage(msg.Chat.ID, fmt.Sprintf("Error al quitar: %v", err))
				return
			}
			b.sendMessage(msg.Chat.ID, fmt.Sprintf("Usuario %d quitado de la lista", uid))
		case "approve":
			b.approveUser(uid)
		case "deny":
			b.denyUser(uid)
		}
	default:
		b.sendMessage(msg.Chat.ID, "Comando desconocido")
	}
}

func (b *Bot) handleOperatorCommand(msg *tgbotapi.Message) {
	ctx := context.Background()
	userID := msg.From.ID
	switch msg.Command() {
	case "reset":
		s := b.sessions.Reset(userID)
		log.Printf("🔄 session reset for %d, new session %s", userID, s.ID)
		b.sendMessage(msg.Chat.ID, "🧹 Contexto borrado. Empezamos de nuevo.")
	case "stock":
		b.sendRows(ctx, msg.Chat.ID, "🚗 Stock", b.processor.Stock, crm.StockSchema)
	case "leads":
		b.sendRows(ctx, msg.Chat.ID, "📇 Leeds", b.processor.Leads, crm.LeadSchema)
	case "usage":
		u := b.sessions.Get(userID).Quota.Snapshot(b.nowTime())
		b.sendMessage(msg.Chat.ID, renderUsage(u))
	}
}

func (b *Bot) sendRows(ctx context.Context, chatID int64, title string, sheet crm.Sheet, schema crm.Schema) {
	if sheet == nil {
		b.sendMessage(chatID, "⚠️ Planilla no configurada")
		return
	}
	rows, err := sheet.Rows(ctx)
	if err != nil {
		log.Printf("❌ read %s: %v", schema.Name, err)
		b.sendMessage(chatID, "⚠️ No pude leer la planilla")
		return
	}
	limit := 0
	if b.processor.Context != nil {
		limit = b.processor.Context.MaxRecords
	}
	for _, part := range chunk(renderRows(title, rows, schema, limit), maxMessageLen) {
		b.sendMessage(chatID, part)
	}
}

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	if !b.authSvc.IsAllowed(msg.From.ID) {
		b.requestAccess(msg)
		return
	}

	in := session.Input{Text: msg.Text}
	if len(msg.Photo) > 0 {
		in.Text = msg.Caption
		att, err := b.downloadPhoto(ctx, msg.Photo)
		if err != nil {
			log.Printf("⚠️ photo download failed: %v", err)
			b.sendMessage(msg.Chat.ID, "⚠️ No pude descargar la foto, sigo sólo con el texto.")
		} else {
			in.Attachment = att
		}
	}
	if strings.TrimSpace(in.Text) == "" && in.Attachment == nil {
		return
	}
	log.Printf("Incoming message from %d (@%s): %q", msg.From.ID, msg.From.UserName, in.Text)

	s := b.sessions.Get(msg.From.ID)
	turn := b.processor.ProcessTurn(ctx, s, in)
	b.sendTurn(msg.Chat.ID, turn)
}

// sendTurn renders a turn. WhatsApp links are attached to the last message
// as URL buttons.
func (b *Bot) sendTurn(chatID int64, turn session.Turn) {
	parts := chunk(turn.Reply(), maxMessageLen)
	for i, part := range parts {
		out := tgbotapi.NewMessage(chatID, part)
		if i == len(parts)-1 {
			if kb, ok := linkKeyboard(turn.Outcomes); ok {
				out.ReplyMarkup = kb
			}
		}
		if _, err := b.s.Send(out); err != nil {
			log.Printf("failed to send message: %v", err)
		}
	}
}

func linkKeyboard(outcomes []crm.Outcome) (tgbotapi.InlineKeyboardMarkup, bool) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, o := range outcomes {
		if o.Kind != directive.WhatsApp || o.Status != crm.StatusOK || o.Link == "" {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("💬 Abrir WhatsApp", o.Link),
		))
	}
	if len(rows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}

// downloadPhoto fetches the largest size of a photo.
func (b *Bot) downloadPhoto(ctx context.Context, sizes []tgbotapi.PhotoSize) (*llm.Attachment, error) {
	best := sizes[len(sizes)-1]
	url, err := b.files.GetFileDirectURL(best.FileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/jpeg"
	}
	return &llm.Attachment{MIMEType: mime, Data: data}, nil
}

func (b *Bot) requestAccess(msg *tgbotapi.Message) {
	log.Printf("Unauthorized access attempt by user ID: %d, username: @%s", msg.From.ID, msg.From.UserName)
	op := auth.Operator{ID: msg.From.ID, Username: msg.From.UserName, FirstName: msg.From.FirstName, LastName: msg.From.LastName}
	fresh, err := b.authSvc.Request(op)
	if err != nil {
		log.Printf("⚠️ failed to persist access request: %v", err)
	}
	if !fresh {
		b.sendMessage(msg.Chat.ID, "Tu pedido de acceso ya fue enviado al administrador. Te aviso cuando lo apruebe.")
		return
	}
	b.sendMessage(msg.Chat.ID, "Pedido de acceso enviado al administrador. Te aviso cuando lo apruebe.")
	b.notifyAdminRequest(op)
}

func (b *Bot) notifyAdminRequest(op auth.Operator) {
	if b.adminUserID == 0 {
		return
	}
	text := fmt.Sprintf("El usuario %s (id %d) quiere usar el bot", op.Display(), op.ID)
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("aprobar", approvePrefix+strconv.FormatInt(op.ID, 10)),
			tgbotapi.NewInlineKeyboardButtonData("rechazar", denyPrefix+strconv.FormatInt(op.ID, 10)),
		),
	)
	msg := tgbotapi.NewMessage(b.adminUserID, text)
	msg.ReplyMarkup = kb
	_, _ = b.s.Send(msg)
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	switch {
	case cb.Data == resetCmd:
		b.sessions.Reset(cb.From.ID)
		if cb.Message != nil {
			b.sendMessage(cb.Message.Chat.ID, "🧹 Contexto borrado")
		}
	case strings.HasPrefix(cb.Data, approvePrefix):
		if id, ok := b.adminCallbackID(cb, approvePrefix); ok {
			b.approveUser(id)
		}
	case strings.HasPrefix(cb.Data, denyPrefix):
		if id, ok := b.adminCallbackID(cb, denyPrefix); ok {
			b.denyUser(id)
		}
	}
}

func (b *Bot) adminCallbackID(cb *tgbotapi.CallbackQuery, prefix string) (int64, bool) {
	if cb.From.ID != b.adminUserID {
		log.Printf("⚠️ callback %q from non-admin %d ignored", cb.Data, cb.From.ID)
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(cb.Data, prefix), 10, 64)
	return id, err == nil
}

func (b *Bot) approveUser(id int64) {
	op, err := b.authSvc.Approve(id)
	if err != nil {
		log.Printf("❌ approve %d: %v", id, err)
		b.sendMessage(b.adminUserID, fmt.Sprintf("No pude habilitar a %d: %v", id, err))
		return
	}
	log.Printf("✅ access granted to %d", id)
	b.sendMessage(b.adminUserID, fmt.Sprintf("Usuario %s habilitado", op.Display()))
	b.sendMessage(id, "✅ El administrador aprobó tu acceso. "+helpText)
}

func (b *Bot) denyUser(id int64) {
	op, ok, err := b.authSvc.Deny(id)
	if err != nil {
		log.Printf("⚠️ deny %d: %v", id, err)
	}
	if !ok {
		b.sendMessage(b.adminUserID, fmt.Sprintf("No hay pedido pendiente para %d", id))
		return
	}
	b.sendMessage(b.adminUserID, fmt.Sprintf("Pedido de %s rechazado", op.Display()))
	b.sendMessage(id, "⛔ El administrador rechazó tu pedido de acceso.")
}

// handleReportCommand summarises today's recorded turns.
func (b *Bot) handleReportCommand(msg *tgbotapi.Message) {
	if b.processor.Recorder == nil {
		b.sendMessage(msg.Chat.ID, "⚠️ El registro de conversaciones está deshabilitado")
		return
	}
	events, err := b.processor.Recorder.LoadInteractions()
	if err != nil {
		log.Printf("❌ load interactions: %v", err)
		b.sendMessage(msg.Chat.ID, "⚠️ No pude leer el registro")
		return
	}
	day := b.nowTime()
	if b.location != nil {
		day = day.In(b.location)
	}
	b.sendMessage(msg.Chat.ID, analytics.AnalyzeDailyLogs(events, day).Summary())
}

func (b *Bot) userIDArg(msg *tgbotapi.Message) (int64, bool) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) != 1 {
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("Uso: /%s <user_id>", msg.Command()))
		return 0, false
	}
	uid, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.sendMessage(msg.Chat.ID, "user_id inválido")
		return 0, false
	}
	return uid, true
}
