package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autocrm/internal/crm"
	"autocrm/internal/crm/crmtest"
	"autocrm/internal/directive"
	"autocrm/internal/llm"
	"autocrm/internal/promptctx"
	"autocrm/internal/storage"
)

type fakeLLM struct {
	replies []string
	errs    []error
	calls   int
	seen    [][]llm.Message
}

func (f *fakeLLM) Generate(ctx context.Context, msgs []llm.Message) (llm.Response, error) {
	f.calls++
	f.seen = append(f.seen, msgs)
	if f.calls <= len(f.errs) && f.errs[f.calls-1] != nil {
		return llm.Response{}, f.errs[f.calls-1]
	}
	reply := ""
	if len(f.replies) > 0 {
		reply = f.replies[0]
		f.replies = f.replies[1:]
	}
	return llm.Response{Content: reply, Model: "fake"}, nil
}

type recordingExecutor struct {
	inner *crm.Dispatcher
	kinds []directive.Kind
}

func (r *recordingExecutor) Execute(ctx context.Context, d directive.Directive) crm.Outcome {
	r.kinds = append(r.kinds, d.Kind)
	return r.inner.Execute(ctx, d)
}

type memRecorder struct{ events []storage.Event }

func (m *memRecorder) AppendInteraction(ev storage.Event) error {
	m.events = append(m.events, ev)
	return nil
}
func (m *memRecorder) LoadInteractions() ([]storage.Event, error) { return m.events, nil }

type harness struct {
	stock *crmtest.Sheet
	leads *crmtest.Sheet
	exec  *recordingExecutor
	rec   *memRecorder
	p     *Processor
	s     *Session
}

func newHarness(client llm.Client) *harness {
	h := &harness{
		stock: crmtest.NewSheet(crm.StockSchema),
		leads: crmtest.NewSheet(crm.LeadSchema),
		rec:   &memRecorder{},
	}
	d := crm.NewDispatcher(h.stock, h.leads, &crmtest.Folders{}, &crmtest.Calendar{}, time.UTC)
	h.exec = &recordingExecutor{inner: d}
	h.p = &Processor{
		LLM:        client,
		Dispatcher: h.exec,
		Stock:      h.stock,
		Leads:      h.leads,
		Context:    promptctx.NewBuilder("", 0, 0, 0),
		Recorder:   h.rec,
		Now:        func() time.Time { return time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC) },
	}
	h.s = New(7, 30)
	return h
}

func TestProcessTurn_SaveVehicleScenario(t *testing.T) {
	client := &fakeLLM{replies: []string{
		`DATA_START {"ACCION":"GUARDAR_AUTO","Cliente":"Juan","Vehiculo":"Fiesta 2018"} DATA_END Listo.`,
	}}
	h := newHarness(client)

	turn := h.p.ProcessTurn(context.Background(), h.s, Input{Text: "Guardá el Fiesta 2018 de Juan"})

	require.NoError(t, turn.Err)
	assert.Equal(t, "Listo.", turn.Visible)
	require.Len(t, turn.Outcomes, 1)
	assert.Equal(t, directive.SaveVehicle, turn.Outcomes[0].Kind)
	last := h.stock.Last()
	assert.Equal(t, "Juan", last[1])
	assert.Equal(t, "Fiesta 2018", last[2])
	assert.NotEmpty(t, last[9])

	msgs := h.s.Transcript.All()
	require.Len(t, msgs, 2)
	assert.Equal(t, llm.RoleUser, msgs[0].Role)
	assert.Equal(t, llm.Message{Role: llm.RoleAssistant, Content: "Listo."}, msgs[1])
	assert.Equal(t, AwaitingInput, h.s.State())

	require.Len(t, h.rec.events, 1)
	assert.Equal(t, h.s.ID, h.rec.events[0].SessionID)
	assert.Equal(t, "GUARDAR_AUTO", h.rec.events[0].Actions[0].Kind)
	assert.Contains(t, turn.Reply(), "Listo.")
	assert.Contains(t, turn.Reply(), "✅")
}

func TestProcessTurn_TwoDirectivesInDocumentOrder(t *testing.T) {
	client := &fakeLLM{replies: []string{
		`Hecho. DATA_START {"ACCION":"GUARDAR_LEED","Cliente":"Marta","Busca":"SUV"} DATA_END ` +
			`DATA_START {"ACCION":"WHATSAPP","Telefono":"1155556666","Mensaje":"Hola"} DATA_END`,
	}}
	h := newHarness(client)

	turn := h.p.ProcessTurn(context.Background(), h.s, Input{Text: "anotá a Marta y mandale un whatsapp"})
	require.NoError(t, turn.Err)
	assert.Equal(t, []directive.Kind{directive.SaveLead, directive.WhatsApp}, h.exec.kinds)
	require.Len(t, turn.Outcomes, 2)
	assert.Equal(t, "https://wa.me/1155556666?text=Hola", turn.Outcomes[1].Link)
	assert.Equal(t, "Hecho.", turn.Visible)
}

func TestProcessTurn_QuotaRetriesThenSucceeds(t *testing.T) {
	quota := &openai.APIError{HTTPStatusCode: 429, Message: "quota"}
	client := &fakeLLM{errs: []error{quota, quota}, replies: []string{"Todo bien."}}
	res := llm.NewResilient([]llm.NamedClient{{Name: "openai", Client: client}}, 3, 0)
	res.OnAttempt = RecordAttempt
	h := newHarness(res)

	turn := h.p.ProcessTurn(context.Background(), h.s, Input{Text: "hola"})
	require.NoError(t, turn.Err)
	assert.Equal(t, 3, client.calls)
	assert.Equal(t, "Todo bien.", turn.Visible)
	assert.Equal(t, 3, h.s.Quota.Count(time.Now()))

	msgs := h.s.Transcript.All()
	require.Len(t, msgs, 2)
	assert.Equal(t, llm.RoleAssistant, msgs[1].Role)
}

func TestProcessTurn_ModelFailureKeepsUserInput(t *testing.T) {
	client := &fakeLLM{errs: []error{errors.New("connection reset")}}
	h := newHarness(client)

	turn := h.p.ProcessTurn(context.Background(), h.s, Input{Text: "borrá el gol"})
	require.Error(t, turn.Err)
	assert.Contains(t, turn.Reply(), "⚠️")
	msgs := h.s.Transcript.All()
	require.Len(t, msgs, 1)
	assert.Equal(t, "borrá el gol", msgs[0].Content)
	assert.Equal(t, AwaitingInput, h.s.State())
	assert.Empty(t, h.exec.kinds)
	require.Len(t, h.rec.events, 1)
	assert.NotEmpty(t, h.rec.events[0].Error)
}

func TestProcessTurn_MalformedDirectiveIsWarning(t *testing.T) {
	client := &fakeLLM{replies: []string{`Ok DATA_START {"ACCION":"GUARDAR_AUTO", DATA_END listo`}}
	h := newHarness(client)

	turn := h.p.ProcessTurn(context.Background(), h.s, Input{Text: "x"})
	require.NoError(t, turn.Err)
	assert.Equal(t, "Ok  listo", turn.Visible)
	assert.Empty(t, turn.Outcomes)
	require.Len(t, turn.Warnings, 1)
	assert.Zero(t, h.stock.Appends)
}

func TestProcessTurn_AttachmentAndContext(t *testing.T) {
	client := &fakeLLM{replies: []string{"uno", "dos"}}
	h := newHarness(client)
	h.stock.Data = [][]string{{"01/03/2024", "Ana", "Up"}}

	h.p.ProcessTurn(context.Background(), h.s, Input{Text: "primero"})
	photo := &llm.Attachment{MIMEType: "image/jpeg", Data: []byte{1, 2, 3}}
	h.p.ProcessTurn(context.Background(), h.s, Input{Text: "mirá esta foto", Attachment: photo})

	require.Len(t, client.seen, 2)
	second := client.seen[1]
	require.Len(t, second, 4)
	assert.Equal(t, llm.RoleSystem, second[0].Role)
	assert.Contains(t, second[0].Content, `"Cliente":"Ana"`)
	assert.Equal(t, "primero", second[1].Content)
	assert.Equal(t, "uno", second[2].Content)
	assert.Equal(t, photo, second[3].Attachment)
	assert.Nil(t, h.s.Transcript.All()[2].Attachment)
}

func TestStore_GetAndReset(t *testing.T) {
	st := NewStore(10)
	a := st.Get(1)
	assert.Same(t, a, st.Get(1))
	assert.NotSame(t, a, st.Get(2))
	b := st.Reset(1)
	assert.NotSame(t, a, b)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Same(t, b, st.Get(1))
}
