package session

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"autocrm/internal/crm"
	"autocrm/internal/directive"
	"autocrm/internal/llm"
	"autocrm/internal/promptctx"
	"autocrm/internal/storage"
)

type Executor interface {
	Execute(ctx context.Context, d directive.Directive) crm.Outcome
}

type Input struct {
	Text       string
	Attachment *llm.Attachment
}

// Turn is the rendered result of one processed input.
type Turn struct {
	Input    string
	Visible  string
	Model    string
	Outcomes []crm.Outcome
	Warnings []string
	Err      error
}

// Reply is the text shown to the operator for this turn.
func (t Turn) Reply() string {
	if t.Err != nil {
		return "⚠️ No pude obtener respuesta del modelo. Probá de nuevo en un momento."
	}
	var parts []string
	if t.Visible != "" {
		parts = append(parts, t.Visible)
	}
	var lines []string
	for _, o := range t.Outcomes {
		lines = append(lines, o.String())
	}
	lines = append(lines, t.Warnings...)
	if len(lines) > 0 {
		parts = append(parts, strings.Join(lines, "\n"))
	}
	if len(parts) == 0 {
		return "🤷"
	}
	return strings.Join(parts, "\n\n")
}

type Processor struct {
	LLM        llm.Client
	Dispatcher Executor
	Stock      crm.Sheet
	Leads      crm.Sheet
	Context    *promptctx.Builder
	Recorder   storage.Recorder
	Now        func() time.Time
}

func (p *Processor) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// ProcessTurn runs a whole turn on s. The user's input is appended to the
// transcript before anything else; on success exactly one assistant message
// follows it. Errors never escape: they are rendered into the Turn.
func (p *Processor) ProcessTurn(ctx context.Context, s *Session, in Input) Turn {
	s.turn.Lock()
	defer s.turn.Unlock()
	defer s.setState(AwaitingInput)

	turn := Turn{Input: in.Text}

	s.setState(Assembling)
	s.Transcript.AppendUser(in.Text)
	now := p.now()
	msgs := p.Context.Build(now, p.readRows(ctx, p.Stock), p.readRows(ctx, p.Leads), s.Transcript.All())
	if in.Attachment != nil && len(msgs) > 0 && msgs[len(msgs)-1].Role == llm.RoleUser {
		msgs[len(msgs)-1].Attachment = in.Attachment
	}

	s.setState(AwaitingModelResponse)
	resp, err := p.LLM.Generate(WithSession(ctx, s), msgs)
	if err != nil {
		log.Printf("❌ session %s: model call failed: %v", s.ID, err)
		turn.Err = err
		s.setState(Rendered)
		p.record(s, turn)
		return turn
	}
	turn.Model = resp.Model
	log.Printf("LLM response [model=%s, tokens: prompt=%d, completion=%d, total=%d]",
		resp.Model, resp.PromptTokens, resp.CompletionTokens, resp.TotalTokens)

	s.setState(Decoding)
	visible, directives, errs := directive.Decode(resp.Content)
	turn.Visible = visible
	for _, e := range errs {
		log.Printf("⚠️ session %s: %v", s.ID, e)
		turn.Warnings = append(turn.Warnings, fmt.Sprintf("⚠️ Ignoré una acción mal formada (%v).", e))
	}

	s.setState(Dispatching)
	for _, d := range directives {
		turn.Outcomes = append(turn.Outcomes, p.Dispatcher.Execute(ctx, d))
	}

	s.Transcript.AppendAssistant(visible)
	s.setState(Rendered)
	p.record(s, turn)
	return turn
}

func (p *Processor) readRows(ctx context.Context, sheet crm.Sheet) []crm.Row {
	if sheet == nil {
		return nil
	}
	rows, err := sheet.Rows(ctx)
	if err != nil {
		log.Printf("⚠️ snapshot read failed: %v", err)
		return nil
	}
	return rows
}

func (p *Processor) record(s *Session, t Turn) {
	if p.Recorder == nil {
		return
	}
	ev := storage.Event{
		Timestamp:         p.now().UTC(),
		SessionID:         s.ID,
		UserID:            s.UserID,
		UserMessage:       t.Input,
		AssistantResponse: t.Visible,
		Model:             t.Model,
		Warnings:          t.Warnings,
	}
	for _, o := range t.Outcomes {
		ev.Actions = append(ev.Actions, storage.Action{Kind: string(o.Kind), Status: string(o.Status), Message: o.Message, Link: o.Link})
	}
	if t.Err != nil {
		ev.Error = t.Err.Error()
	}
	if err := p.Recorder.AppendInteraction(ev); err != nil {
		log.Printf("⚠️ failed to record turn: %v", err)
	}
}
